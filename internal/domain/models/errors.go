package models

import "fmt"

// ErrorKind classifies scan failures.
type ErrorKind string

const (
	ErrKindFetch               ErrorKind = "fetch_failure"
	ErrKindInsufficientHistory ErrorKind = "insufficient_history"
	ErrKindAuth                ErrorKind = "auth_failure"
	ErrKindPersistence         ErrorKind = "persistence_failure"
)

// ScanError carries the failure kind and the symbol it belongs to.
type ScanError struct {
	Kind   ErrorKind
	Symbol string
	Err    error
}

func (e *ScanError) Error() string {
	switch {
	case e.Symbol != "" && e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Symbol, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Symbol != "":
		return fmt.Sprintf("%s %s", e.Kind, e.Symbol)
	default:
		return string(e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *ScanError) Unwrap() error { return e.Err }

// NewScanError builds a ScanError.
func NewScanError(kind ErrorKind, symbol string, err error) *ScanError {
	return &ScanError{Kind: kind, Symbol: symbol, Err: err}
}

// Record converts the error into its serializable form.
func (e *ScanError) Record() SymbolError {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return SymbolError{Symbol: e.Symbol, Kind: e.Kind, Message: msg}
}
