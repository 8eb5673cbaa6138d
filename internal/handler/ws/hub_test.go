package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WaveScan/internal/domain/models"
	applogger "WaveScan/pkg/logger"
)

type staticReader struct{ view models.SnapshotView }

func (r staticReader) Latest(context.Context) (models.SnapshotView, error) { return r.view, nil }

func TestHubSendsSnapshotThenBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(staticReader{view: models.EmptySnapshotView()}, applogger.Nop())
	go hub.Run(ctx)

	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first models.SnapshotView
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, models.StatusInitializing, first.Status)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	res := &models.AggregateResult{ID: "cycle-9", SignalCount: 0, Groups: []models.ScanResult{}}
	require.NoError(t, hub.Publish(ctx, res))

	var raw map[string]interface{}
	require.NoError(t, conn.ReadJSON(&raw))
	assert.Equal(t, "ok", raw["status"])
	assert.Equal(t, "cycle-9", raw["id"])
}

func TestHubPublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(staticReader{}, applogger.Nop())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	for i := 0; i < 3; i++ {
		assert.NoError(t, hub.Publish(context.Background(), &models.AggregateResult{}))
	}
	assert.Equal(t, "websocket", hub.Name())
}
