package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Symbol     string `yaml:"symbol"`
	DataSource struct {
		Days     int    `yaml:"days"`
		XLSXPath string `yaml:"xlsx_path"` // set to read a workbook instead of Yahoo
		Sheet    string `yaml:"sheet"`
	} `yaml:"data_source"`
	Analysis struct {
		Bandwidth      int       `yaml:"bandwidth"`
		Estimators     []string  `yaml:"estimators"` // empty means all
		ConeEstimator  string    `yaml:"cone_estimator"`
		ConeBandwidths []int     `yaml:"cone_bandwidths"`
		Quantiles      []float64 `yaml:"quantiles"`
		Bins           int       `yaml:"bins"`
	} `yaml:"analysis"`
	Cache struct {
		Capacity   int    `yaml:"capacity"`
		SQLitePath string `yaml:"sqlite_path"` // empty disables the bar store
	} `yaml:"cache"`
	Report struct {
		XLSXPath string `yaml:"xlsx_path"` // empty disables workbook export
	} `yaml:"report"`
	Schedule struct {
		WatchCron string `yaml:"watch_cron"` // empty means one-shot mode
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
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
	if v := os.Getenv("HV_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("HV_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.Days = days
		}
	}
	if v := os.Getenv("HV_XLSX_PATH"); v != "" {
		cfg.DataSource.XLSXPath = v
	}
	if v := os.Getenv("HV_BANDWIDTH"); v != "" {
		if bw, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Bandwidth = bw
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("HV_REPORT_PATH"); v != "" {
		cfg.Report.XLSXPath = v
	}
	if v := os.Getenv("HV_WATCH_CRON"); v != "" {
		cfg.Schedule.WatchCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Symbol == "" {
		cfg.Symbol = "SPX500"
	}
	if cfg.DataSource.Days == 0 {
		cfg.DataSource.Days = 730
	}
	if cfg.Analysis.Bandwidth == 0 {
		cfg.Analysis.Bandwidth = 30
	}
	if cfg.Analysis.ConeEstimator == "" {
		cfg.Analysis.ConeEstimator = "YZ"
	}
	if len(cfg.Analysis.ConeBandwidths) == 0 {
		cfg.Analysis.ConeBandwidths = []int{30, 60, 90, 120}
	}
	if len(cfg.Analysis.Quantiles) == 0 {
		cfg.Analysis.Quantiles = []float64{0.10, 0.25, 0.50, 0.75, 0.90}
	}
	if cfg.Analysis.Bins == 0 {
		cfg.Analysis.Bins = 20
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 16
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Analysis.Bandwidth < 2 || c.Analysis.Bandwidth > 252 {
		return fmt.Errorf("analysis.bandwidth must be within [2, 252]")
	}
	if c.DataSource.Days <= c.Analysis.Bandwidth {
		return fmt.Errorf("data_source.days must exceed analysis.bandwidth")
	}
	for _, bw := range c.Analysis.ConeBandwidths {
		if bw < 2 || bw > 252 {
			return fmt.Errorf("analysis.cone_bandwidths entry %d out of [2, 252]", bw)
		}
		if bw >= c.DataSource.Days {
			return fmt.Errorf("analysis.cone_bandwidths entry %d exceeds data_source.days", bw)
		}
	}
	for _, q := range c.Analysis.Quantiles {
		if q <= 0 || q >= 1 {
			return fmt.Errorf("analysis.quantiles entry %v out of (0, 1)", q)
		}
	}
	if c.Analysis.Bins < 1 {
		return fmt.Errorf("analysis.bins must be positive")
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be positive")
	}
	return nil
}
