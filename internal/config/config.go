package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Cache struct {
		Dir               string `yaml:"dir"`
		PriceTTLDays      int    `yaml:"price_ttl_days"`
		OptionsTTLMinutes int    `yaml:"options_ttl_minutes"`
	} `yaml:"cache"`
	Market struct {
		Benchmark string `yaml:"benchmark"`
		Interval  string `yaml:"interval"`
	} `yaml:"market"`
	Options struct {
		RiskFreeRate float64 `yaml:"risk_free_rate"`
		Volatility   float64 `yaml:"volatility"`
		MaxExpiry    string  `yaml:"max_expiry"`
	} `yaml:"options"`
	Prefetch struct {
		Tickers     []string `yaml:"tickers"`
		PricesCron  string   `yaml:"prices_cron"`
		OptionsCron string   `yaml:"options_cron"`
	} `yaml:"prefetch"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FPLOT_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("FPLOT_BENCHMARK"); v != "" {
		cfg.Market.Benchmark = v
	}
	if v := os.Getenv("FPLOT_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FPLOT_OPTIONS_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.OptionsTTLMinutes = n
		}
	}

	// Defaults
	if cfg.Cache.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.Cache.Dir = filepath.Join(home, ".cache", "fplot")
	}
	if cfg.Cache.PriceTTLDays == 0 {
		cfg.Cache.PriceTTLDays = 1825 // OHLCV history keeps for years
	}
	if cfg.Cache.OptionsTTLMinutes == 0 {
		cfg.Cache.OptionsTTLMinutes = 60
	}
	if cfg.Market.Benchmark == "" {
		cfg.Market.Benchmark = "SPY"
	}
	if cfg.Market.Interval == "" {
		cfg.Market.Interval = "1d"
	}
	if cfg.Options.RiskFreeRate == 0 {
		cfg.Options.RiskFreeRate = 0.05
	}
	if cfg.Options.Volatility == 0 {
		cfg.Options.Volatility = 0.30
	}
	if cfg.Options.MaxExpiry == "" {
		cfg.Options.MaxExpiry = "6m"
	}
	if cfg.Prefetch.PricesCron == "" {
		cfg.Prefetch.PricesCron = "0 30 22 * * 1-5"
	}
	if cfg.Prefetch.OptionsCron == "" {
		cfg.Prefetch.OptionsCron = "0 0 * * * *"
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Cache.PriceTTLDays <= 0 {
		return fmt.Errorf("cache.price_ttl_days must be positive")
	}
	if c.Cache.OptionsTTLMinutes <= 0 {
		return fmt.Errorf("cache.options_ttl_minutes must be positive")
	}
	if c.Market.Benchmark == "" {
		return fmt.Errorf("market.benchmark is required")
	}
	if c.Options.Volatility <= 0 {
		return fmt.Errorf("options.volatility must be positive")
	}
	return nil
}

// PriceTTL returns the price cache retention as a duration.
func (c *Config) PriceTTL() time.Duration {
	return time.Duration(c.Cache.PriceTTLDays) * 24 * time.Hour
}

// OptionsTTL returns the options cache freshness threshold as a duration.
func (c *Config) OptionsTTL() time.Duration {
	return time.Duration(c.Cache.OptionsTTLMinutes) * time.Minute
}
