package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Input   InputConfig
	Output  OutputConfig
	Reports ReportsConfig
	Logger  LoggerConfig
}

type InputConfig struct {
	CSVFile     string
	LoadTimeout time.Duration
}

type OutputConfig struct {
	Dir string
}

type ReportsConfig struct {
	File    string
	TopN    int
	Workers int
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment. Every key has a default, so
// a bare invocation needs no flags or variables at all. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Input: InputConfig{
			CSVFile:     getEnvString("CSV_FILE", "superstore.csv"),
			LoadTimeout: getEnvDuration("LOAD_TIMEOUT", 30*time.Second),
		},
		Output: OutputConfig{
			Dir: getEnvString("OUTPUT_DIR", "charts"),
		},
		Reports: ReportsConfig{
			File:    getEnvString("REPORTS_FILE", ""),
			TopN:    getEnvInt("TOP_N", 10),
			Workers: getEnvInt("REPORT_WORKERS", 4),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Input.CSVFile == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	if c.Input.LoadTimeout <= 0 {
		return fmt.Errorf("load timeout must be positive")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	if c.Reports.TopN <= 0 {
		return fmt.Errorf("top-n must be positive, got %d", c.Reports.TopN)
	}

	if c.Reports.Workers <= 0 {
		return fmt.Errorf("report workers must be positive, got %d", c.Reports.Workers)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text", "console"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
