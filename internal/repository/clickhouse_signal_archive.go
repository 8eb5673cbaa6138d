package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	pkgch "WaveScan/pkg/clickhouse"
)

const (
	signalArchiveTable = "signal_history"
	archiveChunkSize   = 1000
)

var archiveColumns = []string{
	"cycle_id", "generated_at", "grp", "strategy", "interval", "symbol", "side", "bar_ts",
	"price", "volume", "avg_volume", "high_volume", "volume_conf", "rsi", "rsi_conf",
	"confidence", "take_profit", "stop_loss",
}

// CHSignalArchive appends every cycle's signals to a history table.
type CHSignalArchive struct {
	db    *sql.DB
	table string
}

func NewCHSignalArchive(ch *pkgch.Client, database string) *CHSignalArchive {
	return &CHSignalArchive{db: ch.DB(), table: database + "." + signalArchiveTable}
}

func (s *CHSignalArchive) Name() string { return "clickhouse" }

func (s *CHSignalArchive) Publish(ctx context.Context, res *models.AggregateResult) error {
	rows := archiveRows(res)
	if len(rows) == 0 {
		return nil
	}
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(archiveColumns)), ", ") + ")"
	for start := 0; start < len(rows); start += archiveChunkSize {
		end := start + archiveChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*len(archiveColumns))
		for _, r := range rows[start:end] {
			values = append(values, placeholder)
			args = append(args, r...)
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, strings.Join(archiveColumns, ", "), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("archive signals: %w", err)
		}
	}
	return nil
}

// archiveRows flattens the aggregate into one argument list per signal, in archiveColumns order.
func archiveRows(res *models.AggregateResult) [][]interface{} {
	if res == nil {
		return nil
	}
	var out [][]interface{}
	for _, g := range res.Groups {
		for _, sig := range g.Signals {
			out = append(out, []interface{}{
				res.ID,
				res.GeneratedAt.UTC(),
				g.Group,
				string(sig.Strategy),
				g.Interval,
				sig.Symbol,
				string(sig.Type),
				sig.Timestamp.UTC(),
				sig.Price,
				uint64(sig.Volume),
				uint64(sig.AverageVolume),
				boolToUInt8(sig.HighVolume),
				boolToUInt8(sig.VolumeConfirmed),
				sig.RSI,
				boolToUInt8(sig.RSIConfirmed),
				optionalInt32(sig.Confidence),
				sig.TakeProfit,
				sig.StopLoss,
			})
		}
	}
	return out
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func optionalInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	x := int32(*v)
	return &x
}

var _ domrepo.SignalSink = (*CHSignalArchive)(nil)
