package service

import "WaveScan/internal/domain/models"

// Detector turns a candle series into signals. Implementations are pure: the same
// series always yields the same signals, in the same order.
type Detector interface {
	Strategy() models.Strategy
	Detect(series models.Series) []models.Signal
}
