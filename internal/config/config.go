// Package config reads findash settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/logger"
)

type Config struct {
	// Inputs
	DataFile     string
	SettingsFile string
	ColumnsFile  string // optional header alias override

	// Logging
	LogLevel string

	// Quote providers
	HTTPTimeout        time.Duration
	CBRDailyURL        string
	AlphaVantageURL    string
	AlphaVantageAPIKey string
}

func Load() *Config {
	return &Config{
		DataFile:     getEnv("FINDASH_DATA_FILE", "data/operations.xlsx"),
		SettingsFile: getEnv("FINDASH_SETTINGS_FILE", "user_settings.json"),
		ColumnsFile:  getEnv("FINDASH_COLUMNS_FILE", ""),

		LogLevel: getEnv("FINDASH_LOG_LEVEL", "info"),

		HTTPTimeout:        getEnvDuration("FINDASH_HTTP_TIMEOUT", 10*time.Second),
		CBRDailyURL:        getEnv("CBR_DAILY_URL", "https://www.cbr-xml-daily.ru/daily_json.js"),
		AlphaVantageURL:    getEnv("ALPHAVANTAGE_URL", "https://www.alphavantage.co/query"),
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.DataFile == "" {
		errors = append(errors, "data file path cannot be empty")
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if c.ColumnsFile != "" {
		if _, err := os.Stat(c.ColumnsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("columns file does not exist: %s", c.ColumnsFile))
		}
	}

	if c.HTTPTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 100ms", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	for name, raw := range map[string]string{
		"CBR daily URL":     c.CBRDailyURL,
		"Alpha Vantage URL": c.AlphaVantageURL,
	} {
		if err := validateHTTPURL(raw); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", name, raw, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
