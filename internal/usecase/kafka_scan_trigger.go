package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	pkgkafka "WaveScan/pkg/kafka"
	"WaveScan/pkg/logger"
	"WaveScan/pkg/util"
)

// ScanRunner runs one cycle on demand.
type ScanRunner interface {
	Run(ctx context.Context, source string) (*models.AggregateResult, error)
}

// KafkaScanTrigger starts a cycle for every authorized message on the trigger topic.
type KafkaScanTrigger struct {
	topic   string
	secret  string
	runner  ScanRunner
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewKafkaScanTrigger(topic, secret string, runner ScanRunner, metrics domrepo.Metrics, log *logger.Logger) *KafkaScanTrigger {
	return &KafkaScanTrigger{topic: topic, secret: secret, runner: runner, metrics: metrics, log: log}
}

func (h *KafkaScanTrigger) Topic() string { return h.topic }

// Handle returns nil for messages that must not be retried: malformed payloads,
// a wrong secret and a cycle that is already running.
func (h *KafkaScanTrigger) Handle(ctx context.Context, b []byte) error {
	var m models.ScanTrigger
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("trigger_unmarshal")
		h.log.Warn("trigger message dropped", logger.Error(err))
		return nil
	}
	if !util.SecretMatches(h.secret, m.Secret) {
		h.metrics.RecordError(string(models.ErrKindAuth))
		h.log.Warn("trigger message unauthorized", logger.String("source", m.Source))
		return nil
	}

	source := "kafka"
	if m.Source != "" {
		source = "kafka:" + m.Source
	}
	if _, err := h.runner.Run(ctx, source); err != nil {
		if errors.Is(err, ErrScanInProgress) {
			h.log.Info("trigger ignored, scan in progress", logger.String("source", source))
			return nil
		}
		return fmt.Errorf("triggered scan: %w", err)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaScanTrigger)(nil)
