package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	ScanWorkers      int `mapstructure:"SCAN_WORKERS"`
	MaxPagesDefault  int `mapstructure:"MAX_PAGES_DEFAULT"`
	NavTimeoutSec    int `mapstructure:"NAV_TIMEOUT_SEC"`
	CommitTimeoutSec int `mapstructure:"COMMIT_TIMEOUT_SEC"`
	SettleDelayMS    int `mapstructure:"SETTLE_DELAY_MS"`
	PageDelayMS      int `mapstructure:"PAGE_DELAY_MS"`
	LinkCheckSec     int `mapstructure:"LINK_CHECK_SEC"`
	MaxLinkChecks    int `mapstructure:"MAX_LINK_CHECKS"`
	AnomalyThreshold int `mapstructure:"ANOMALY_THRESHOLD"`
	NarrativeSec     int `mapstructure:"NARRATIVE_SEC"`

	ReportDir         string `mapstructure:"REPORT_DIR"`
	ScreenshotDir     string `mapstructure:"SCREENSHOT_DIR"`
	Screenshots       bool   `mapstructure:"SCREENSHOTS"`
	DeduplicationDays int    `mapstructure:"DEDUPLICATION_DAYS"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SCAN_WORKERS", 4)
	viper.SetDefault("MAX_PAGES_DEFAULT", 25)
	viper.SetDefault("NAV_TIMEOUT_SEC", 30)
	viper.SetDefault("COMMIT_TIMEOUT_SEC", 15)
	viper.SetDefault("SETTLE_DELAY_MS", 2000)
	viper.SetDefault("PAGE_DELAY_MS", 500)
	viper.SetDefault("LINK_CHECK_SEC", 8)
	viper.SetDefault("MAX_LINK_CHECKS", 50)
	viper.SetDefault("ANOMALY_THRESHOLD", 3)
	viper.SetDefault("NARRATIVE_SEC", 20)
	viper.SetDefault("REPORT_DIR", "reports")
	viper.SetDefault("SCREENSHOT_DIR", "reports/screenshots")
	viper.SetDefault("SCREENSHOTS", false)
	viper.SetDefault("DEDUPLICATION_DAYS", 2)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
