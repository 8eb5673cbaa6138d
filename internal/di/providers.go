package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domrepo "WaveScan/internal/domain/repository"
	"WaveScan/internal/handler/api"
	"WaveScan/internal/handler/ws"
	internalrepo "WaveScan/internal/repository"
	"WaveScan/internal/service/ratelimit"
	"WaveScan/internal/service/yahoo"
	"WaveScan/internal/services/detectors"
	"WaveScan/internal/usecase"
	"WaveScan/pkg/cache"
	pkgch "WaveScan/pkg/clickhouse"
	"WaveScan/pkg/config"
	xhttp "WaveScan/pkg/http"
	pkgkafka "WaveScan/pkg/kafka"
	applogger "WaveScan/pkg/logger"
	"WaveScan/pkg/metrics"
	"WaveScan/pkg/server"
)

// ProvideLogger builds the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry, which
// is what /metrics serves.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCache picks the snapshot backend. Memory is only safe for a single replica.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.L1Size)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 4*time.Second),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "layered" {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.L1Size),
			cache.WithLayeredMemoryTTL(cfg.Cache.L1TTL),
		), nil
	}
	return rc, nil
}

func ProvideSnapshotStore(c cache.Service, cfg *config.Config) domrepo.SnapshotStore {
	return internalrepo.NewCacheSnapshotStore(c, cfg.Scan.SnapshotKey, cfg.Scan.SnapshotTTL)
}

func ProvideScanLock(c cache.Service, cfg *config.Config) domrepo.ScanLock {
	return internalrepo.NewCacheScanLock(c, "", cfg.Scan.LockTTL)
}

// ProvideClickHouseClient connects only when the archive or the candle provider needs it.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled && cfg.Provider.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(4, 2, 5*time.Minute),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if !cfg.ClickHouse.InitSchema {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(-1, 3),
		pkgkafka.WithBatching(100, 50*time.Millisecond),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvideMarketData(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (domrepo.MarketDataProvider, error) {
	if cfg.Provider.Type == "clickhouse" {
		if ch == nil {
			return nil, fmt.Errorf("clickhouse provider selected but no client configured")
		}
		return internalrepo.NewCHCandleProvider(ch, cfg.ClickHouse.Database, l), nil
	}
	y := cfg.Provider.Yahoo
	return yahoo.New(l,
		yahoo.WithBaseURL(y.BaseURL),
		yahoo.WithTimeout(y.Timeout),
		yahoo.WithRateLimit(y.RateLimit, y.Burst),
		yahoo.WithRetry(y.Attempts, y.RetryBackoff),
	), nil
}

// ProvideRegistry builds detector params once; they are passed by value from here on.
func ProvideRegistry(cfg *config.Config) *detectors.Registry {
	wt := cfg.WaveTrend
	bo := cfg.Breakout
	return detectors.NewRegistry(
		detectors.WaveTrendParams{
			ChannelLength:    wt.ChannelLength,
			AverageLength:    wt.AverageLength,
			Overbought:       wt.Overbought,
			Oversold:         wt.Oversold,
			SignalLength:     wt.SignalLength,
			RSIPeriod:        wt.RSIPeriod,
			RSIOversold:      wt.RSIOversold,
			RSIOverbought:    wt.RSIOverbought,
			VolumeThreshold:  wt.VolumeThreshold,
			VolumeWindow:     wt.VolumeWindow,
			RecentVolumeBars: wt.RecentVolumeBars,
		},
		detectors.BreakoutParams{
			FastEMA:          bo.FastEMA,
			MidEMA:           bo.MidEMA,
			SlowEMA:          bo.SlowEMA,
			RSIPeriod:        bo.RSIPeriod,
			RSIBuyAbove:      bo.RSIBuyAbove,
			RSISellBelow:     bo.RSISellBelow,
			ATRPeriod:        bo.ATRPeriod,
			ChannelPeriod:    bo.ChannelPeriod,
			VolumeWindow:     bo.VolumeWindow,
			VolumeMultiplier: bo.VolumeMultiplier,
			Warmup:           bo.Warmup,
			MinConfidence:    bo.MinConfidence,
			TakeProfitATR:    bo.TakeProfitATR,
			StopLossATR:      bo.StopLossATR,
		},
	)
}

func ProvideSnapshotReader(store domrepo.SnapshotStore) *usecase.SnapshotReader {
	return usecase.NewSnapshotReader(store)
}

func ProvideHub(reader *usecase.SnapshotReader, l *applogger.Logger) *ws.Hub {
	return ws.NewHub(reader, l)
}

// ProvideSinks lists the best-effort consumers of every finished cycle.
func ProvideSinks(cfg *config.Config, producer *pkgkafka.Producer, ch *pkgch.Client, hub *ws.Hub) []domrepo.SignalSink {
	sinks := []domrepo.SignalSink{hub}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic, cfg.Kafka.SummaryTopic))
	}
	if ch != nil && cfg.ClickHouse.Enabled {
		sinks = append(sinks, internalrepo.NewCHSignalArchive(ch, cfg.ClickHouse.Database))
	}
	return sinks
}

func ProvideScanner(provider domrepo.MarketDataProvider, registry *detectors.Registry, m domrepo.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.Scanner {
	return usecase.NewScanner(provider, registry, m, l,
		usecase.WithWorkers(cfg.Scan.Workers),
		usecase.WithFetchTimeout(cfg.Scan.FetchTimeout),
	)
}

func ProvideAggregator(store domrepo.SnapshotStore, m domrepo.Metrics, l *applogger.Logger, sinks []domrepo.SignalSink) *usecase.Aggregator {
	return usecase.NewAggregator(store, m, l, usecase.WithSinks(sinks...))
}

func ProvideScanCycle(scanner *usecase.Scanner, agg *usecase.Aggregator, lock domrepo.ScanLock, m domrepo.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.ScanCycle {
	return usecase.NewScanCycle(scanner, agg, lock, cfg.ScanGroups(), m, l)
}

func ProvideScheduler(cycle *usecase.ScanCycle, cfg *config.Config, l *applogger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(cycle, cfg.Scan.Interval, cfg.Scan.RunOnStart, l)
}

// ProvideKafkaConsumer returns nil unless a trigger topic is configured.
func ProvideKafkaConsumer(cfg *config.Config, cycle *usecase.ScanCycle, m domrepo.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.TriggerTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerRetry(cfg.Kafka.RetryMax, 100*time.Millisecond, 5*time.Second),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewKafkaScanTrigger(cfg.Kafka.TriggerTopic, cfg.Auth.CronSecret, cycle, m, l))
	return consumer, nil
}

func ProvideSignalsHandler(cfg *config.Config, l *applogger.Logger, reader *usecase.SnapshotReader, cycle *usecase.ScanCycle, m domrepo.Metrics) *api.SignalsHandler {
	limiter := ratelimit.New(cfg.Server.ScanRateLimit, cfg.Server.ScanBurst)
	return api.NewSignalsHandler(l, reader, cycle, m, cfg.Auth.CronSecret, limiter)
}

func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, signals *api.SignalsHandler, hub *ws.Hub) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.SlowRequest),
	}
	if len(cfg.Server.AllowOrigins) > 0 {
		opts = append(opts, xhttp.WithAllowOrigins(cfg.Server.AllowOrigins))
	}
	return xhttp.NewServer(l, []xhttp.Handler{signals, hub}, opts...)
}

// ProvideApp assembles the lifecycle. The Kafka log collector is attached here because it
// needs both the logger and the producer.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	scheduler *usecase.Scheduler,
	hub *ws.Hub,
	consumer *pkgkafka.Consumer,
	c cache.Service,
	ch *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	closers := []server.Closer{{Name: "cache", Close: c.Close}}
	if producer != nil {
		if cfg.Log.Topic != "" {
			l.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   30 * time.Second,
				CountThreshold: 100,
				Topic:          cfg.Log.Topic,
				Publisher:      producer,
			})
			closers = append(closers, server.Closer{Name: "log_collector", Close: func() error {
				l.RemoveCollector()
				return nil
			}})
		}
		closers = append(closers, server.Closer{Name: "kafka_producer", Close: producer.Close})
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}

	workers := []server.Worker{hub, scheduler}
	return server.New(l, srv, workers, consumer, closers, cfg.Server.ShutdownTimeout)
}
