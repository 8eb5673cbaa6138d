//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	domrepo "WaveScan/internal/domain/repository"
	"WaveScan/pkg/config"
	"WaveScan/pkg/metrics"
	"WaveScan/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(domrepo.Metrics), new(*metrics.Recorder)),

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSnapshotStore,
		ProvideScanLock,
		ProvideMarketData,

		// Detectors and use cases
		ProvideRegistry,
		ProvideSnapshotReader,
		ProvideHub,
		ProvideSinks,
		ProvideScanner,
		ProvideAggregator,
		ProvideScanCycle,
		ProvideScheduler,
		ProvideKafkaConsumer,

		// Transport
		ProvideSignalsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
