package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"WaveScan/internal/domain/models"
	drepo "WaveScan/internal/domain/repository"
	xhttp "WaveScan/pkg/http"
	applogger "WaveScan/pkg/logger"
	"WaveScan/pkg/util"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (compatible; wavescan/1.0)"
)

type Option func(*Client)

// WithBaseURL points the client at another chart host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRateLimit paces outbound requests across all workers.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.backoff = backoff
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client fetches candles from the Yahoo Finance v8 chart endpoint.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	limiter  *rate.Limiter
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	now      func() time.Time
	l        *applogger.Logger
}

func New(l *applogger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		attempts: 3,
		backoff:  250 * time.Millisecond,
		timeout:  10 * time.Second,
		now:      time.Now,
		l:        l,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout), xhttp.WithUserAgent(defaultUserAgent))
	return c
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *chartError) Error() string {
	return fmt.Sprintf("chart error %s: %s", e.Code, e.Description)
}

// Fetch returns ascending bars for symbol. A chart without results yields an empty series.
func (c *Client) Fetch(ctx context.Context, symbol, interval, rng string) (models.Series, error) {
	params, err := c.queryParams(interval, rng)
	if err != nil {
		return models.Series{}, err
	}
	opts := &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		QueryParams: params,
	}

	start := c.now()
	var resp chartResponse
	var attempt int
	for attempt = 1; ; attempt++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return models.Series{}, err
		}
		resp = chartResponse{}
		err = c.http.SendAndParse(ctx, opts, &resp)
		if err == nil || attempt >= c.attempts || !retryable(err) {
			break
		}
		c.l.Debug("yahoo chart retry",
			applogger.String("symbol", symbol),
			applogger.Int("attempt", attempt),
			applogger.Error(err),
		)
		select {
		case <-time.After(time.Duration(attempt) * c.backoff):
		case <-ctx.Done():
			return models.Series{}, ctx.Err()
		}
	}
	if err != nil {
		return models.Series{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return models.Series{}, fmt.Errorf("yahoo chart %s: %w", symbol, resp.Chart.Error)
	}

	series := models.Series{Symbol: symbol, Interval: interval}
	if len(resp.Chart.Result) > 0 {
		series.Candles = toCandles(resp.Chart.Result[0])
	}
	c.l.Debug("yahoo chart ok",
		applogger.String("symbol", symbol),
		applogger.String("interval", interval),
		applogger.Int("bars", series.Len()),
		applogger.Int("attempts", attempt),
		applogger.Duration("duration_ms", c.now().Sub(start)),
	)
	return series, nil
}

// queryParams prefers an explicit period window; spans Yahoo does not parse as a range
// ("14d", "36h") still work that way.
func (c *Client) queryParams(interval, rng string) (map[string][]string, error) {
	window, err := util.ParseLookback(rng)
	if err != nil {
		return nil, err
	}
	params := map[string][]string{
		"interval":       {interval},
		"includePrePost": {"false"},
		"events":         {"div,splits"},
	}
	if window <= 0 {
		params["range"] = []string{"max"}
		return params, nil
	}
	now := c.now()
	params["period1"] = []string{strconv.FormatInt(now.Add(-window).Unix(), 10)}
	params["period2"] = []string{strconv.FormatInt(now.Unix(), 10)}
	return params, nil
}

// toCandles drops bars without a close. Missing high and low fall back to the close,
// missing open to the close, and missing volume to zero.
func toCandles(r chartResult) []models.Candle {
	if len(r.Indicators.Quote) == 0 {
		return []models.Candle{}
	}
	q := r.Indicators.Quote[0]
	out := make([]models.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closePx, ok := at(q.Close, i)
		if !ok {
			continue
		}
		c := models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      closePx,
			High:      closePx,
			Low:       closePx,
			Close:     closePx,
		}
		if v, ok := at(q.Open, i); ok {
			c.Open = v
		}
		if v, ok := at(q.High, i); ok {
			c.High = v
		}
		if v, ok := at(q.Low, i); ok {
			c.Low = v
		}
		if v, ok := at(q.Volume, i); ok {
			c.Volume = int64(math.Round(v))
		}
		out = append(out, c)
	}
	return out
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	v := *values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

var _ drepo.MarketDataProvider = (*Client)(nil)
