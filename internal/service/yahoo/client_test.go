package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "WaveScan/pkg/http"
	applogger "WaveScan/pkg/logger"
)

var fixedNow = time.Date(2025, 6, 3, 20, 0, 0, 0, time.UTC)

const chartBody = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL"},
  "timestamp":[1748874600,1748878200,1748881800,1748885400],
  "indicators":{"quote":[{
    "open":[200.1,null,201.0,202.0],
    "high":[201.5,null,null,203.2],
    "low":[199.8,null,200.5,null],
    "close":[201.0,null,200.9,203.0],
    "volume":[1200000,null,null,987654]
  }]}
}],"error":null}}`

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(srv.URL), WithRetry(3, time.Millisecond), withClock(func() time.Time { return fixedNow })}, opts...)
	return New(applogger.Nop(), opts...)
}

func TestFetchParsesChart(t *testing.T) {
	var gotPath, gotInterval, gotP1, gotP2, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotP1 = r.URL.Query().Get("period1")
		gotP2 = r.URL.Query().Get("period2")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	series, err := newTestClient(srv).Fetch(context.Background(), "AAPL", "1h", "14d")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "1h", gotInterval)
	assert.Equal(t, "1747771200", gotP1)
	assert.Equal(t, "1748980800", gotP2)
	assert.NotEmpty(t, gotUA)

	require.Equal(t, 3, series.Len())
	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, "1h", series.Interval)

	first := series.Candles[0]
	assert.Equal(t, time.Unix(1748874600, 0).UTC(), first.Timestamp)
	assert.Equal(t, int64(1200000), first.Volume)

	second := series.Candles[1]
	assert.Equal(t, 200.9, second.High)
	assert.Equal(t, 200.5, second.Low)
	assert.Equal(t, int64(0), second.Volume)

	third := series.Candles[2]
	assert.Equal(t, 203.2, third.High)
	assert.Equal(t, 203.0, third.Low)
}

func TestFetchChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), "ZZZZ", "1d", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestFetchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	series, err := newTestClient(srv).Fetch(context.Background(), "AAPL", "1d", "1y")
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	series, err := newTestClient(srv).Fetch(context.Background(), "AAPL", "1h", "14d")
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), "AAPL", "1h", "14d")
	require.Error(t, err)
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchRejectsBadRange(t *testing.T) {
	c := New(applogger.Nop())
	_, err := c.Fetch(context.Background(), "AAPL", "1h", "fortnight")
	assert.Error(t, err)
}

func TestQueryParamsWithoutWindowAsksForMax(t *testing.T) {
	c := New(applogger.Nop(), withClock(func() time.Time { return fixedNow }))
	params, err := c.queryParams("1wk", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"max"}, params["range"])
	assert.NotContains(t, params, "period1")
}
