// Package config provides configuration parsing for the forecaster.
//
// Values come from command-line flags with environment-variable fallbacks;
// flags take precedence. The Config struct covers:
//   - Zone identification and data source settings (adapter kind + config)
//   - Framing parameters (lag set, horizon, history window)
//   - Forecast loop timing (interval)
//   - Model selection and tuning
//   - Snapshot store backend (memory or redis)
//   - HTTP listener and logging settings
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"loadcast/pkg/dataset"
)

// Config holds all forecaster configuration.
type Config struct {
	Listen    string
	LogLevel  string
	LogFormat string

	Zone          string
	Adapter       string
	AdapterConfig map[string]string

	Lags         dataset.LagSpec
	HorizonHours int
	WindowDays   int

	Model             string
	MovingAverageDays int
	RidgeLambda       float64

	Interval time.Duration

	UnitCapacityMW float64
	ReserveMargin  float64
	MinUnits       int
	MaxUnits       int

	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// ParseFlags parses flags and environment variables into a Config.
// It exits with a usage message on malformed values, matching flag behavior.
func ParseFlags() *Config {
	cfg := &Config{}

	var lags, adapterConfig string

	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8081"), "HTTP listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "log format: text, json")

	flag.StringVar(&cfg.Zone, "zone", getEnv("ZONE", "ES"), "bidding zone the forecast covers")
	flag.StringVar(&cfg.Adapter, "adapter", getEnv("ADAPTER", "esios"), "data source: esios, http, csv")
	flag.StringVar(&adapterConfig, "adapter-config", getEnv("ADAPTER_CONFIG", "{}"), "adapter settings as JSON object")

	flag.StringVar(&lags, "lags", getEnv("LAGS", defaultLags), "comma-separated lag hours")
	flag.IntVar(&cfg.HorizonHours, "horizon", getEnvInt("HORIZON_HOURS", 24), "forecast horizon in hours")
	flag.IntVar(&cfg.WindowDays, "window-days", getEnvInt("WINDOW_DAYS", 60), "history window in days")

	flag.StringVar(&cfg.Model, "model", getEnv("MODEL", "ridge"), "model: previous-day, moving-average, year-ago, ridge")
	flag.IntVar(&cfg.MovingAverageDays, "ma-days", getEnvInt("MA_DAYS", 3), "trailing days for the moving-average model")
	flag.Float64Var(&cfg.RidgeLambda, "ridge-lambda", getEnvFloat("RIDGE_LAMBDA", 1.0), "L2 penalty for the ridge model")

	flag.DurationVar(&cfg.Interval, "interval", getEnvDuration("INTERVAL", time.Hour), "forecast loop interval")

	flag.Float64Var(&cfg.UnitCapacityMW, "unit-capacity-mw", getEnvFloat("UNIT_CAPACITY_MW", 0), "MW per committed generation unit; 0 disables commitment planning")
	flag.Float64Var(&cfg.ReserveMargin, "reserve-margin", getEnvFloat("RESERVE_MARGIN", 1.1), "multiplicative reserve over the point forecast")
	flag.IntVar(&cfg.MinUnits, "min-units", getEnvInt("MIN_UNITS", 0), "must-run unit floor")
	flag.IntVar(&cfg.MaxUnits, "max-units", getEnvInt("MAX_UNITS", 0), "fleet size cap; 0 means unbounded")

	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "snapshot store: memory, redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "redis address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "redis database number")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 6*time.Hour), "redis snapshot TTL")

	flag.Parse()

	parsed, err := ParseLags(lags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -lags: %v\n", err)
		os.Exit(2)
	}
	cfg.Lags = parsed

	if err := json.Unmarshal([]byte(adapterConfig), &cfg.AdapterConfig); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -adapter-config: %v\n", err)
		os.Exit(2)
	}
	if cfg.AdapterConfig == nil {
		cfg.AdapterConfig = map[string]string{}
	}
	if token := getEnv("ESIOS_TOKEN", ""); token != "" && cfg.AdapterConfig["token"] == "" {
		cfg.AdapterConfig["token"] = token
	}

	return cfg
}

// defaultLags frames the previous three days hour by hour plus the same day
// one week back. Three full days cover the previous-day reference (lags
// 1-24) and the 3-day moving average (lags up to 72), and give ridge a
// reasonable fit.
const defaultLags = "1-72,145-168"

// ParseLags parses a lag list such as "1,2,24,48" or "1-48,145-168".
// Ranges are inclusive.
func ParseLags(s string) (dataset.LagSpec, error) {
	var lags dataset.LagSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			lo, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, fmt.Errorf("bad range start %q", from)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("bad range end %q", to)
			}
			if hi < lo {
				return nil, fmt.Errorf("range %q is inverted", part)
			}
			for lag := lo; lag <= hi; lag++ {
				lags = append(lags, lag)
			}
			continue
		}

		lag, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad lag %q", part)
		}
		lags = append(lags, lag)
	}

	if len(lags) == 0 {
		return nil, fmt.Errorf("no lags specified")
	}
	return lags.Normalize(), nil
}

// Validate checks cross-field constraints flag parsing cannot.
func (c *Config) Validate() error {
	if c.Zone == "" {
		return fmt.Errorf("zone cannot be empty")
	}
	if err := c.Lags.Validate(); err != nil {
		return err
	}
	if c.HorizonHours < 1 {
		return fmt.Errorf("horizon must be >= 1 hour")
	}
	if c.WindowDays*24 < c.Lags.Max()+c.HorizonHours {
		return fmt.Errorf("window of %d days is shorter than max lag %dh + horizon %dh",
			c.WindowDays, c.Lags.Max(), c.HorizonHours)
	}
	if c.UnitCapacityMW < 0 {
		return fmt.Errorf("unit capacity cannot be negative")
	}
	if c.UnitCapacityMW > 0 && c.ReserveMargin < 1 {
		return fmt.Errorf("reserve margin must be >= 1 when commitment planning is enabled")
	}
	if c.Storage != "memory" && c.Storage != "redis" {
		return fmt.Errorf("storage must be memory or redis, got %q", c.Storage)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
