package repository

import "fmt"

// ClickHouseSchema returns the idempotent DDL for the candle tables and the signal archive.
func ClickHouseSchema(database string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, table := range candleTables {
		stmts = append(stmts, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            bucket DateTime64(3, 'UTC'),
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume UInt64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, bucket)`, database, table))
	}
	stmts = append(stmts, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            cycle_id     String,
            generated_at DateTime64(3, 'UTC'),
            grp          LowCardinality(String),
            strategy     LowCardinality(String),
            interval     LowCardinality(String),
            symbol       LowCardinality(String),
            side         LowCardinality(String),
            bar_ts       DateTime64(3, 'UTC'),
            price        Float64,
            volume       UInt64,
            avg_volume   UInt64,
            high_volume  UInt8,
            volume_conf  UInt8,
            rsi          Nullable(Float64),
            rsi_conf     UInt8,
            confidence   Nullable(Int32),
            take_profit  Nullable(Float64),
            stop_loss    Nullable(Float64)
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMM(generated_at)
        ORDER BY (strategy, symbol, bar_ts)`, database, signalArchiveTable))
	return stmts
}
