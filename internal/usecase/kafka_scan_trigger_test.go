package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WaveScan/internal/domain/models"
	"WaveScan/pkg/logger"
)

func TestKafkaScanTriggerChecksSecret(t *testing.T) {
	runner := &fakeRunner{}
	m := newFakeMetrics()
	h := NewKafkaScanTrigger("wavescan.scan", "s3cret", runner, m, logger.Nop())
	assert.Equal(t, "wavescan.scan", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"secret":"nope"}`)))
	assert.Empty(t, runner.calls)
	assert.Equal(t, 1, m.errorCount(string(models.ErrKindAuth)))

	require.NoError(t, h.Handle(context.Background(), []byte(`{"secret":"s3cret","source":"cron"}`)))
	assert.Equal(t, []string{"kafka:cron"}, runner.calls)
}

func TestKafkaScanTriggerDropsMalformed(t *testing.T) {
	runner := &fakeRunner{}
	h := NewKafkaScanTrigger("t", "", runner, newFakeMetrics(), logger.Nop())
	require.NoError(t, h.Handle(context.Background(), []byte(`not json`)))
	assert.Empty(t, runner.calls)
}

func TestKafkaScanTriggerIgnoresBusyCycle(t *testing.T) {
	h := NewKafkaScanTrigger("t", "", &fakeRunner{err: ErrScanInProgress}, newFakeMetrics(), logger.Nop())
	assert.NoError(t, h.Handle(context.Background(), []byte(`{}`)))

	h = NewKafkaScanTrigger("t", "", &fakeRunner{err: errUpstream}, newFakeMetrics(), logger.Nop())
	assert.ErrorIs(t, h.Handle(context.Background(), []byte(`{}`)), errUpstream)
}
