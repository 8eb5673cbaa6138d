package repository

import (
	"context"
	"fmt"
	"time"

	"WaveScan/internal/domain/models"
	domrepo "WaveScan/internal/domain/repository"
	pkgkafka "WaveScan/pkg/kafka"
)

type kafkaProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// SignalEvent is one signal on the signals topic, keyed by symbol.
type SignalEvent struct {
	CycleID  string `json:"cycleId"`
	Group    string `json:"group"`
	Interval string `json:"interval"`
	models.Signal
}

// CycleSummary is published once per cycle on the summary topic, keyed by cycle ID.
type CycleSummary struct {
	CycleID     string         `json:"cycleId"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	SymbolCount int            `json:"symbolCount"`
	SignalCount int            `json:"signalCount"`
	ErrorCount  int            `json:"errorCount"`
	Groups      []GroupSummary `json:"groups"`
}

type GroupSummary struct {
	Group    string          `json:"group"`
	Strategy models.Strategy `json:"strategy"`
	Signals  int             `json:"signals"`
	Errors   int             `json:"errors"`
}

// KafkaSignalPublisher fans a finished cycle out to Kafka.
type KafkaSignalPublisher struct {
	producer     kafkaProducer
	topic        string
	summaryTopic string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic, summaryTopic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic, summaryTopic: summaryTopic}
}

func (p *KafkaSignalPublisher) Name() string { return "kafka" }

func (p *KafkaSignalPublisher) Publish(ctx context.Context, res *models.AggregateResult) error {
	msgs := make([]pkgkafka.Message, 0, res.SignalCount)
	summary := CycleSummary{
		CycleID:     res.ID,
		UpdatedAt:   res.GeneratedAt,
		SymbolCount: res.SymbolCount,
		SignalCount: res.SignalCount,
		ErrorCount:  res.ErrorCount,
		Groups:      make([]GroupSummary, 0, len(res.Groups)),
	}
	for _, g := range res.Groups {
		summary.Groups = append(summary.Groups, GroupSummary{
			Group:    g.Group,
			Strategy: g.Strategy,
			Signals:  len(g.Signals),
			Errors:   g.ErrorCount,
		})
		for _, sig := range g.Signals {
			msgs = append(msgs, pkgkafka.Message{
				Key:   []byte(sig.Symbol),
				Value: SignalEvent{CycleID: res.ID, Group: g.Group, Interval: g.Interval, Signal: sig},
			})
		}
	}

	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish %d signals: %w", len(msgs), err)
	}
	if p.summaryTopic == "" {
		return nil
	}
	if err := p.producer.Publish(ctx, p.summaryTopic, []byte(res.ID), summary); err != nil {
		return fmt.Errorf("publish cycle summary: %w", err)
	}
	return nil
}

var _ domrepo.SignalSink = (*KafkaSignalPublisher)(nil)
