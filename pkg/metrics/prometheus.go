package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles       *prometheus.CounterVec
	cycleSeconds prometheus.Histogram
	lastCycle    prometheus.Gauge
	groupSignals *prometheus.GaugeVec
	symbolErrors *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the scanner metrics on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wavescan_cycles_total",
			Help: "Scan cycles by result",
		}, []string{"result"}),
		cycleSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavescan_cycle_duration_seconds",
			Help:    "Wall time of a full scan cycle",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		}),
		lastCycle: f.NewGauge(prometheus.GaugeOpts{
			Name: "wavescan_last_cycle_timestamp_seconds",
			Help: "Unix time of the last finished cycle",
		}),
		groupSignals: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wavescan_group_signals",
			Help: "Signals produced by the last run of a group",
		}, []string{"group", "strategy"}),
		symbolErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wavescan_symbol_errors_total",
			Help: "Per-symbol scan failures",
		}, []string{"group", "kind"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wavescan_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wavescan_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (r *Recorder) RecordCycle(seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.cycles.WithLabelValues(result).Inc()
	r.cycleSeconds.Observe(seconds)
	r.lastCycle.SetToCurrentTime()
}

func (r *Recorder) RecordGroup(group string, strategy models.Strategy, signals, _ int) {
	r.groupSignals.WithLabelValues(group, string(strategy)).Set(float64(signals))
}

func (r *Recorder) RecordSymbolError(group string, kind models.ErrorKind) {
	r.symbolErrors.WithLabelValues(group, string(kind)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var _ domrepo.Metrics = (*Recorder)(nil)
