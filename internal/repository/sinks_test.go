package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "WaveScan/pkg/kafka"
)

type recordingProducer struct {
	batches map[string][]pkgkafka.Message
	singles map[string][]pkgkafka.Message
	err     error
}

func newRecordingProducer() *recordingProducer {
	return &recordingProducer{batches: map[string][]pkgkafka.Message{}, singles: map[string][]pkgkafka.Message{}}
}

func (p *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.singles[topic] = append(p.singles[topic], pkgkafka.Message{Key: key, Value: value})
	return p.err
}

func (p *recordingProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	p.batches[topic] = append(p.batches[topic], msgs...)
	return p.err
}

func TestKafkaSignalPublisherKeysBySymbol(t *testing.T) {
	prod := newRecordingProducer()
	pub := &KafkaSignalPublisher{producer: prod, topic: "wavescan.signals", summaryTopic: "wavescan.cycles"}
	res := sampleAggregate()

	require.NoError(t, pub.Publish(context.Background(), res))

	msgs := prod.batches["wavescan.signals"]
	require.Len(t, msgs, 2)
	assert.Equal(t, "AAPL", string(msgs[0].Key))
	assert.Equal(t, "NVDA", string(msgs[1].Key))

	b, err := json.Marshal(msgs[0].Value)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "cycle-1", decoded["cycleId"])
	assert.Equal(t, "wt_1h", decoded["group"])
	assert.Equal(t, "AAPL", decoded["symbol"])
	assert.Equal(t, "buy", decoded["type"])

	summaries := prod.singles["wavescan.cycles"]
	require.Len(t, summaries, 1)
	assert.Equal(t, "cycle-1", string(summaries[0].Key))
	sum := summaries[0].Value.(CycleSummary)
	assert.Equal(t, 2, sum.SignalCount)
	require.Len(t, sum.Groups, 2)
	assert.Equal(t, 1, sum.Groups[0].Errors)
}

func TestKafkaSignalPublisherWrapsErrors(t *testing.T) {
	prod := newRecordingProducer()
	prod.err = errors.New("leader not available")
	pub := &KafkaSignalPublisher{producer: prod, topic: "t"}
	err := pub.Publish(context.Background(), sampleAggregate())
	assert.ErrorIs(t, err, prod.err)
}

func TestArchiveRowsMatchColumns(t *testing.T) {
	rows := archiveRows(sampleAggregate())
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Len(t, r, len(archiveColumns))
	}
	assert.Equal(t, "cycle-1", rows[0][0])
	assert.Equal(t, "wt_1h", rows[0][2])
	assert.Equal(t, uint8(1), rows[0][11])
	assert.Nil(t, rows[0][15].(*int32))
	assert.Equal(t, int32(60), *rows[1][15].(*int32))
	assert.Empty(t, archiveRows(nil))
}

func TestClickHouseSchemaCoversTables(t *testing.T) {
	stmts := ClickHouseSchema("wavescan")
	assert.Len(t, stmts, 1+len(candleTables)+1)
	assert.Contains(t, stmts[0], "CREATE DATABASE IF NOT EXISTS wavescan")
	assert.Contains(t, stmts[len(stmts)-1], "wavescan.signal_history")
}

var fixedNow = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

func TestCandleQueryBounds(t *testing.T) {
	p := &CHCandleProvider{database: "wavescan", now: func() time.Time { return fixedNow }}
	q, from, err := p.candleQuery("1d", "1y")
	require.NoError(t, err)
	assert.Contains(t, q, "wavescan.candles_1d")
	assert.Equal(t, fixedNow.Add(-365*24*time.Hour), from)

	_, _, err = p.candleQuery("3m", "1y")
	assert.Error(t, err)
	_, _, err = p.candleQuery("1h", "soon")
	assert.Error(t, err)
}
