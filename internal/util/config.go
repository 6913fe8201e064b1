// Package util provides common utilities for conndetect.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Monitored hosts and probe cadence
	Hosts         []string      `mapstructure:"hosts"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`

	// Outage detection
	OutageThreshold   int           `mapstructure:"outage_threshold"`
	WindowSize        int           `mapstructure:"window_size"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`

	// Latency classification thresholds (ms)
	LatencyGreenMs  float64 `mapstructure:"latency_green_ms"`
	LatencyYellowMs float64 `mapstructure:"latency_yellow_ms"`

	// Outage journal
	JournalPath    string        `mapstructure:"journal_path"`
	JournalMaxSize int64         `mapstructure:"journal_max_size"`
	JournalMaxAge  time.Duration `mapstructure:"journal_max_age"`

	// Speed test side feature
	SpeedtestEnabled   bool          `mapstructure:"speedtest_enabled"`
	SpeedtestInterval  time.Duration `mapstructure:"speedtest_interval"`
	SpeedtestRetention time.Duration `mapstructure:"speedtest_retention"`

	// Weather panel side feature
	WeatherEnabled  bool          `mapstructure:"weather_enabled"`
	WeatherLocation string        `mapstructure:"weather_location"`
	WeatherInterval time.Duration `mapstructure:"weather_interval"`

	// Dashboard refresh rate and status file cadence
	UIRefreshInterval time.Duration `mapstructure:"ui_refresh_interval"`
	StatusInterval    time.Duration `mapstructure:"status_interval"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".conndetect")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "conndetect.log"),

		Hosts: []string{
			"8.8.8.8", // Google DNS
			"1.1.1.1", // Cloudflare DNS
			"9.9.9.9", // Quad9 DNS
			"github.com",
			"aws.amazon.com",
		},
		ProbeInterval: 3 * time.Second,
		ProbeTimeout:  1 * time.Second,

		OutageThreshold:   3,
		WindowSize:        50,
		ReconcileInterval: 1 * time.Second,

		LatencyGreenMs:  60,
		LatencyYellowMs: 150,

		JournalPath:    filepath.Join(dataDir, "connection_down.log"),
		JournalMaxSize: 1 << 30, // 1GB
		JournalMaxAge:  90 * 24 * time.Hour,

		SpeedtestEnabled:   true,
		SpeedtestInterval:  1 * time.Hour,
		SpeedtestRetention: 90 * 24 * time.Hour,

		WeatherEnabled:  false,
		WeatherLocation: "Prague",
		WeatherInterval: 10 * time.Minute,

		UIRefreshInterval: 500 * time.Millisecond,
		StatusInterval:    10 * time.Second,
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Ensure config directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(cfg.DataDir)
	viper.AddConfigPath(".")

	// Set defaults in viper
	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("hosts", cfg.Hosts)
	viper.SetDefault("probe_interval", cfg.ProbeInterval)
	viper.SetDefault("probe_timeout", cfg.ProbeTimeout)
	viper.SetDefault("outage_threshold", cfg.OutageThreshold)
	viper.SetDefault("window_size", cfg.WindowSize)
	viper.SetDefault("reconcile_interval", cfg.ReconcileInterval)
	viper.SetDefault("latency_green_ms", cfg.LatencyGreenMs)
	viper.SetDefault("latency_yellow_ms", cfg.LatencyYellowMs)
	viper.SetDefault("journal_path", cfg.JournalPath)
	viper.SetDefault("journal_max_size", cfg.JournalMaxSize)
	viper.SetDefault("journal_max_age", cfg.JournalMaxAge)
	viper.SetDefault("speedtest_enabled", cfg.SpeedtestEnabled)
	viper.SetDefault("speedtest_interval", cfg.SpeedtestInterval)
	viper.SetDefault("speedtest_retention", cfg.SpeedtestRetention)
	viper.SetDefault("weather_enabled", cfg.WeatherEnabled)
	viper.SetDefault("weather_location", cfg.WeatherLocation)
	viper.SetDefault("weather_interval", cfg.WeatherInterval)
	viper.SetDefault("ui_refresh_interval", cfg.UIRefreshInterval)
	viper.SetDefault("status_interval", cfg.StatusInterval)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the monitor cannot run with.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("config: at least one host is required")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("config: probe_interval must be positive")
	}
	if c.ProbeTimeout <= 0 || c.ProbeTimeout > c.ProbeInterval {
		return fmt.Errorf("config: probe_timeout must be positive and not exceed probe_interval")
	}
	if c.OutageThreshold < 1 {
		return fmt.Errorf("config: outage_threshold must be at least 1")
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("config: window_size must be at least 1")
	}
	if c.LatencyYellowMs < c.LatencyGreenMs {
		return fmt.Errorf("config: latency_yellow_ms must not be below latency_green_ms")
	}
	return nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a path exists and is a regular file. Any stat
// error reads as absent.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
