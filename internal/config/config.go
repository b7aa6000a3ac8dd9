package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	MarketplaceBaseURL string `mapstructure:"MARKETPLACE_BASE_URL"`

	NavigationTimeout int `mapstructure:"NAVIGATION_TIMEOUT"` // seconds
	ReadinessTimeout  int `mapstructure:"READINESS_TIMEOUT"`  // seconds
	SettleDelay       int `mapstructure:"SETTLE_DELAY"`       // seconds
	ScrollSettleDelay int `mapstructure:"SCROLL_SETTLE_DELAY"`

	// SalesFactor converts a rating count into estimated units sold.
	// Business heuristic, kept overridable.
	SalesFactor int `mapstructure:"SALES_FACTOR"`

	ScanIntervalHours int    `mapstructure:"SCAN_INTERVAL_HOURS"`
	ScanRateLimitSec  int    `mapstructure:"SCAN_RATE_LIMIT_SEC"`
	ScanDedupHours    int    `mapstructure:"SCAN_DEDUP_HOURS"`
	ScanKeywords      string `mapstructure:"SCAN_KEYWORDS"` // comma-separated

	PayPalClientID     string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `mapstructure:"PAYPAL_CLIENT_SECRET"`
	PayPalBaseURL      string `mapstructure:"PAYPAL_BASE_URL"`
	PayPalProPlanID    string `mapstructure:"PAYPAL_PRO_PLAN_ID"`
	PayPalExpertPlanID string `mapstructure:"PAYPAL_EXPERT_PLAN_ID"`
	FrontendURL        string `mapstructure:"FRONTEND_URL"`
}

// defaultScanKeywords is the monitored list the background scanner walks
// when SCAN_KEYWORDS is not set.
var defaultScanKeywords = []string{
	"phonics worksheets",
	"math centers kindergarten",
	"reading comprehension",
	"sight words activities",
	"science experiments elementary",
	"writing prompts",
	"spelling activities",
	"fraction worksheets",
	"alphabet activities",
	"social studies projects",
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables in production.
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MARKETPLACE_BASE_URL", "https://www.teacherspayteachers.com")
	viper.SetDefault("NAVIGATION_TIMEOUT", 90)
	viper.SetDefault("READINESS_TIMEOUT", 15)
	viper.SetDefault("SETTLE_DELAY", 4)
	viper.SetDefault("SCROLL_SETTLE_DELAY", 2)
	viper.SetDefault("SALES_FACTOR", 10)
	viper.SetDefault("SCAN_INTERVAL_HOURS", 4)
	viper.SetDefault("SCAN_RATE_LIMIT_SEC", 5)
	viper.SetDefault("SCAN_DEDUP_HOURS", 24)
	viper.SetDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScanKeywordList returns the keyword list for the background scanner,
// falling back to the built-in monitored list.
func (c *Config) ScanKeywordList() []string {
	if strings.TrimSpace(c.ScanKeywords) == "" {
		return defaultScanKeywords
	}
	var out []string
	for _, kw := range strings.Split(c.ScanKeywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
