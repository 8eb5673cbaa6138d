package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"WaveScan/internal/domain/models"
	"WaveScan/pkg/util"
)

// DefaultSymbols is the scan universe used when neither the file nor SYMBOLS set one.
var DefaultSymbols = []string{
	"AAPL", "MSFT", "NVDA", "META", "GOOGL", "AMZN", "TSLA", "AVGO",
	"AMD", "QCOM", "INTC", "MU", "TXN", "ASML", "LRCX", "AMAT",
	"CRM", "ADBE", "ORCL", "NOW", "SNOW", "DDOG", "CRWD", "ZS", "NET", "PANW",
	"NFLX", "SHOP", "ABNB", "PYPL", "RBLX",
	"PLTR", "AI", "ARM", "SMCI", "MSTR",
	"COIN", "HOOD", "SOFI",
	"DELL", "HPQ", "CSCO",
}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
		ScanRateLimit   time.Duration `yaml:"scan_rate_limit" default:"30s"`
		ScanBurst       int           `yaml:"scan_burst" default:"2" validate:"gte=1"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Topic  string `yaml:"topic"`
	} `yaml:"log"`
	Metrics struct {
		Enabled     bool          `yaml:"enabled" default:"true"`
		SlowRequest time.Duration `yaml:"slow_request" default:"2s"`
	} `yaml:"metrics"`
	Auth struct {
		CronSecret string `yaml:"cron_secret"`
	} `yaml:"auth"`
	Scan struct {
		Interval     time.Duration `yaml:"interval" default:"5m"`
		RunOnStart   bool          `yaml:"run_on_start" default:"true"`
		Workers      int           `yaml:"workers" default:"8" validate:"gte=1,lte=64"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"15s"`
		LockTTL      time.Duration `yaml:"lock_ttl" default:"10m"`
		SnapshotKey  string        `yaml:"snapshot_key" default:"wt_signals"`
		SnapshotTTL  time.Duration `yaml:"snapshot_ttl"`
		Symbols      []string      `yaml:"symbols"`
		Groups       []GroupConfig `yaml:"groups" validate:"dive"`
	} `yaml:"scan"`
	WaveTrend WaveTrendConfig `yaml:"wavetrend"`
	Breakout  BreakoutConfig  `yaml:"breakout"`
	Provider  struct {
		Type  string `yaml:"type" default:"yahoo" validate:"oneof=yahoo clickhouse"`
		Yahoo struct {
			BaseURL      string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
			Timeout      time.Duration `yaml:"timeout" default:"10s"`
			RateLimit    float64       `yaml:"rate_limit" default:"8"`
			Burst        int           `yaml:"burst" default:"4"`
			Attempts     int           `yaml:"attempts" default:"3" validate:"gte=1"`
			RetryBackoff time.Duration `yaml:"retry_backoff" default:"250ms"`
		} `yaml:"yahoo"`
	} `yaml:"provider"`
	Cache struct {
		Backend  string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
		L1TTL    time.Duration `yaml:"l1_ttl" default:"30s"`
		L1Size   int           `yaml:"l1_size" default:"256"`
		Redis    struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"wavescan"`
			PoolSize int    `yaml:"pool_size" default:"10"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"wavescan"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
		InitSchema  bool          `yaml:"init_schema" default:"true"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic" default:"wavescan.signals"`
		SummaryTopic string   `yaml:"summary_topic" default:"wavescan.cycles"`
		TriggerTopic string   `yaml:"trigger_topic"`
		GroupID      string   `yaml:"group_id" default:"wavescan"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		RetryMax     int      `yaml:"retry_max" default:"3"`
	} `yaml:"kafka"`
}

// GroupConfig is one strategy over one timeframe. Symbols falls back to scan.symbols.
type GroupConfig struct {
	Name     string   `yaml:"name" validate:"required"`
	Strategy string   `yaml:"strategy" validate:"oneof=wavetrend breakout"`
	Interval string   `yaml:"interval" validate:"oneof=15m 1h 1d 1wk"`
	Range    string   `yaml:"range" default:"14d"`
	Lookback string   `yaml:"lookback" default:"2d"`
	MinBars  int      `yaml:"min_bars" default:"30" validate:"gte=2"`
	Symbols  []string `yaml:"symbols"`
}

type WaveTrendConfig struct {
	ChannelLength    int     `yaml:"channel_length" default:"10" validate:"gte=1"`
	AverageLength    int     `yaml:"average_length" default:"21" validate:"gte=1"`
	Overbought       float64 `yaml:"overbought" default:"53"`
	Oversold         float64 `yaml:"oversold" default:"-53"`
	SignalLength     int     `yaml:"signal_length" default:"4" validate:"gte=1"`
	RSIPeriod        int     `yaml:"rsi_period" default:"14" validate:"gte=1"`
	RSIOversold      float64 `yaml:"rsi_oversold" default:"30"`
	RSIOverbought    float64 `yaml:"rsi_overbought" default:"70"`
	VolumeThreshold  float64 `yaml:"volume_threshold" default:"500000"`
	VolumeWindow     int     `yaml:"volume_window" default:"10" validate:"gte=1"`
	RecentVolumeBars int     `yaml:"recent_volume_bars" default:"5" validate:"gte=1"`
}

type BreakoutConfig struct {
	FastEMA          int     `yaml:"fast_ema" default:"20" validate:"gte=1"`
	MidEMA           int     `yaml:"mid_ema" default:"50" validate:"gte=1"`
	SlowEMA          int     `yaml:"slow_ema" default:"200" validate:"gte=1"`
	RSIPeriod        int     `yaml:"rsi_period" default:"14" validate:"gte=1"`
	RSIBuyAbove      float64 `yaml:"rsi_buy_above" default:"60"`
	RSISellBelow     float64 `yaml:"rsi_sell_below" default:"40"`
	ATRPeriod        int     `yaml:"atr_period" default:"14" validate:"gte=1"`
	ChannelPeriod    int     `yaml:"channel_period" default:"20" validate:"gte=1"`
	VolumeWindow     int     `yaml:"volume_window" default:"20" validate:"gte=1"`
	VolumeMultiplier float64 `yaml:"volume_multiplier" default:"1.5" validate:"gt=0"`
	Warmup           int     `yaml:"warmup" default:"200" validate:"gte=1"`
	MinConfidence    int     `yaml:"min_confidence" default:"40" validate:"gte=0,lte=60"`
	TakeProfitATR    float64 `yaml:"take_profit_atr" default:"3" validate:"gt=0"`
	StopLossATR      float64 `yaml:"stop_loss_atr" default:"1.5" validate:"gt=0"`
}

var validate = validator.New()

// Load reads a YAML file, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse is Load without the file read. Defaults are applied before decoding so an
// explicit false or zero in the file wins.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) finish() error {
	for i := range c.Scan.Groups {
		if err := defaults.Set(&c.Scan.Groups[i]); err != nil {
			return fmt.Errorf("config defaults: %w", err)
		}
	}
	c.Scan.Symbols = util.SplitList(strings.Join(c.Scan.Symbols, ","))
	if len(c.Scan.Symbols) == 0 {
		c.Scan.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if len(c.Scan.Groups) == 0 {
		c.Scan.Groups = defaultGroups()
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func defaultGroups() []GroupConfig {
	return []GroupConfig{
		{Name: "wt_1h", Strategy: "wavetrend", Interval: "1h", Range: "14d", Lookback: "2d", MinBars: 30},
		{Name: "wt_1d", Strategy: "wavetrend", Interval: "1d", Range: "6mo", Lookback: "5d", MinBars: 30},
		{Name: "breakout_1d", Strategy: "breakout", Interval: "1d", Range: "2y", Lookback: "5d", MinBars: 60},
	}
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("CRON_SECRET"); v != "" {
		c.Auth.CronSecret = v
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Scan.Symbols = util.SplitList(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		if c.Cache.Backend == "memory" {
			c.Cache.Backend = "redis"
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitTrim(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate runs the struct tags plus the cross-field checks tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Scan.Symbols) == 0 {
		return fmt.Errorf("scan.symbols cannot be empty")
	}
	names := make(map[string]struct{}, len(c.Scan.Groups))
	for _, g := range c.Scan.Groups {
		if _, dup := names[g.Name]; dup {
			return fmt.Errorf("scan.groups: duplicate name %q", g.Name)
		}
		names[g.Name] = struct{}{}
		if _, err := util.ParseLookback(g.Range); err != nil {
			return fmt.Errorf("scan.groups[%s].range: %w", g.Name, err)
		}
		if _, err := util.ParseLookback(g.Lookback); err != nil {
			return fmt.Errorf("scan.groups[%s].lookback: %w", g.Name, err)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.WaveTrend.Oversold >= c.WaveTrend.Overbought {
		return fmt.Errorf("wavetrend.oversold must be below overbought")
	}
	return nil
}

// ScanGroups resolves the configured groups into domain values.
func (c *Config) ScanGroups() []models.ScanGroup {
	out := make([]models.ScanGroup, 0, len(c.Scan.Groups))
	for _, g := range c.Scan.Groups {
		lookback, _ := util.ParseLookback(g.Lookback)
		symbols := g.Symbols
		if len(symbols) == 0 {
			symbols = c.Scan.Symbols
		} else {
			symbols = util.SplitList(strings.Join(symbols, ","))
		}
		out = append(out, models.ScanGroup{
			Name:     g.Name,
			Strategy: models.Strategy(g.Strategy),
			Interval: g.Interval,
			Range:    g.Range,
			Lookback: lookback,
			MinBars:  g.MinBars,
			Symbols:  symbols,
		})
	}
	return out
}
