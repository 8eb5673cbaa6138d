package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xhttp "WaveScan/pkg/http"
	pkgkafka "WaveScan/pkg/kafka"
	applogger "WaveScan/pkg/logger"
)

// Worker is a background loop that returns once ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// Closer releases an infrastructure client during shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	l               *applogger.Logger
	httpServer      *xhttp.Server
	workers         []Worker
	consumer        *pkgkafka.Consumer
	closers         []Closer
	shutdownTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an App. consumer may be nil; closers run in order after everything stopped.
func New(l *applogger.Logger, httpServer *xhttp.Server, workers []Worker, consumer *pkgkafka.Consumer, closers []Closer, shutdownTimeout time.Duration) *App {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	return &App{
		l:               l,
		httpServer:      httpServer,
		workers:         workers,
		consumer:        consumer,
		closers:         closers,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.l.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Start launches the workers, the Kafka consumer and the HTTP server without blocking.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)
	for _, w := range a.workers {
		a.wg.Add(1)
		go func(w Worker) {
			defer a.wg.Done()
			w.Run(ctx)
		}(w)
	}

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.l.Error("http server start error", applogger.Error(err))
			return err
		}
	}
	a.l.Info("app started", applogger.Int("workers", len(a.workers)))
	return nil
}

// Shutdown stops intake first (HTTP, consumer), then the workers, then the clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.l.Info("shutting down")

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.cancel != nil {
		a.cancel()
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.l.Warn("workers did not stop before the shutdown deadline")
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("component", c.Name), applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
	return nil
}
