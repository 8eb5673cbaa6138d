package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	pkgch "WaveScan/pkg/clickhouse"
	applogger "WaveScan/pkg/logger"
	"WaveScan/pkg/util"
)

var candleTables = map[domrepo.Timeframe]string{
	domrepo.TF15m: "candles_15m",
	domrepo.TF1h:  "candles_1h",
	domrepo.TF1d:  "candles_1d",
	domrepo.TF1wk: "candles_1wk",
}

// CHCandleProvider serves OHLCV bars stored in ClickHouse, for deployments that ingest
// market data themselves instead of calling a chart API.
type CHCandleProvider struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
	now      func() time.Time
}

func NewCHCandleProvider(ch *pkgch.Client, database string, l *applogger.Logger) *CHCandleProvider {
	return &CHCandleProvider{db: ch.DB(), database: database, l: l, now: time.Now}
}

func (s *CHCandleProvider) Fetch(ctx context.Context, symbol, interval, rng string) (models.Series, error) {
	start := time.Now()
	q, from, err := s.candleQuery(interval, rng)
	if err != nil {
		return models.Series{}, err
	}

	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		s.l.Error("clickhouse candles query error",
			applogger.String("symbol", symbol),
			applogger.String("interval", interval),
			applogger.Error(err),
		)
		return models.Series{}, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	series := models.Series{Symbol: symbol, Interval: interval, Candles: make([]models.Candle, 0, 512)}
	for rows.Next() {
		var c models.Candle
		var vol uint64
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &vol); err != nil {
			return models.Series{}, fmt.Errorf("scan candle: %w", err)
		}
		c.Volume = int64(vol)
		series.Candles = append(series.Candles, c)
	}
	if err := rows.Err(); err != nil {
		return models.Series{}, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse candles ok",
		applogger.String("symbol", symbol),
		applogger.String("interval", interval),
		applogger.Int("rows", series.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return series, nil
}

// candleQuery picks the table for interval and the lower bound implied by rng.
func (s *CHCandleProvider) candleQuery(interval, rng string) (string, time.Time, error) {
	table, ok := candleTables[domrepo.Timeframe(interval)]
	if !ok {
		return "", time.Time{}, fmt.Errorf("unsupported interval: %s", interval)
	}
	window, err := util.ParseLookback(rng)
	if err != nil {
		return "", time.Time{}, err
	}
	var from time.Time
	if window > 0 {
		from = s.now().Add(-window).UTC()
	}
	q := fmt.Sprintf(`
        SELECT bucket, open, high, low, close, volume
        FROM %s.%s FINAL
        WHERE symbol = ? AND bucket >= ?
        ORDER BY bucket ASC`, s.database, table)
	return q, from, nil
}

var _ domrepo.MarketDataProvider = (*CHCandleProvider)(nil)
