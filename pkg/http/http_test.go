package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "slow down", se.Body)
	assert.True(t, se.Temporary())
	assert.False(t, (&StatusError{Code: 404}).Temporary())
}

func TestSendAndParseDecodesJSONWithQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"interval": r.URL.Query().Get("interval"), "ua": r.UserAgent()})
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient(WithUserAgent("wavescan-test")).SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"interval": {"1h"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "1h", out["interval"])
	assert.Equal(t, "wavescan-test", out["ua"])
}

type searchReq struct {
	Strategy string `query:"strategy" validate:"omitempty,oneof=wavetrend breakout"`
	Limit    int    `query:"limit" default:"100" validate:"gte=1,lte=500"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?strategy=breakout", nil), httptest.NewRecorder())
	var ok searchReq
	assert.Empty(t, ReadAndValidateRequest(c, &ok))
	assert.Equal(t, "breakout", ok.Strategy)
	assert.Equal(t, 100, ok.Limit)

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?strategy=macd&limit=900", nil), httptest.NewRecorder())
	var bad searchReq
	errs := ReadAndValidateRequest(c, &bad)
	require.Len(t, errs, 2)
	assert.Equal(t, "ERR_ONEOF", errs[0].Code)
	assert.Equal(t, "strategy", errs[0].Field)
	assert.Equal(t, []string{"wavetrend", "breakout"}, errs[0].Params["options"])
	assert.Equal(t, "ERR_LTE", errs[1].Code)
	assert.Equal(t, "limit must be less than or equal to 500", errs[1].Message)
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, ConflictError("scan already running")))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, body.Status)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
