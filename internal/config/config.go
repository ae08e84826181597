package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	DataDir        string `mapstructure:"DATA_DIR"`
	ReportPath     string `mapstructure:"REPORT_PATH"`
	APIBaseURL     string `mapstructure:"HN_API_BASE_URL"`
	FrontPageURL   string `mapstructure:"HN_FRONT_PAGE_URL"`
	RequestTimeout int    `mapstructure:"REQUEST_TIMEOUT_S"`
	ThrottleMS     int    `mapstructure:"THROTTLE_MS"`
	APIWorkers     int    `mapstructure:"API_WORKERS"`
}

// Load reads configuration from the .env file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// The .env file is optional; environment variables alone are fine.
	_ = viper.ReadInConfig()

	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("REPORT_PATH", "reports/optimization_report.html")
	viper.SetDefault("HN_API_BASE_URL", "https://hacker-news.firebaseio.com/v0")
	viper.SetDefault("HN_FRONT_PAGE_URL", "https://news.ycombinator.com/")
	viper.SetDefault("REQUEST_TIMEOUT_S", 15)
	viper.SetDefault("THROTTLE_MS", 200)
	viper.SetDefault("API_WORKERS", 5)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) Throttle() time.Duration {
	return time.Duration(c.ThrottleMS) * time.Millisecond
}
