package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"spendsmart/internal/core"
)

// FileEnv names the variable pointing at an optional TOML config file.
const FileEnv = "SPENDSMART_CONFIG"

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP Server
	Port               string `toml:"port"`
	CORSOrigin         string `toml:"cors_origin"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`

	// Backend selection
	DataBackend  string `toml:"data_backend"`
	SQLiteDBPath string `toml:"sqlite_db_path"`

	// AMQP (optional)
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Google Sheets export (optional)
	GoogleSpreadsheetID      string `toml:"google_spreadsheet_id"`
	GoogleSheetName          string `toml:"google_sheet_name"`
	GoogleServiceAccountFile string `toml:"google_service_account_file"`
	GoogleServiceAccountJSON string `toml:"google_service_account_json"`
	GoogleOAuthClientFile    string `toml:"google_oauth_client_file"`
	GoogleOAuthClientJSON    string `toml:"google_oauth_client_json"`
	GoogleOAuthTokenFile     string `toml:"google_oauth_token_file"`
	OAuthRedirectPort        string `toml:"oauth_redirect_port"`

	// Analytics
	DefaultBalance float64 `toml:"default_balance"`
	ForecastDays   int     `toml:"forecast_days"`
	CurrencySymbol string  `toml:"currency_symbol"`

	// Worker
	InsightInterval time.Duration `toml:"insight_interval"`

	LogLevel string `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		Port:               "4001",
		CORSOrigin:         "*",
		RateLimitPerMinute: 60,

		DataBackend:  BackendSQLite,
		SQLiteDBPath: "./data/spendsmart.db",

		AMQPExchange: "spendsmart",
		AMQPQueue:    "transaction_events",

		GoogleSheetName:      "Transactions",
		GoogleOAuthTokenFile: "token.json",
		OAuthRedirectPort:    "8085",

		DefaultBalance: 20000,
		ForecastDays:   30,
		CurrencySymbol: "₹",

		InsightInterval: time.Hour,

		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional TOML file named
// by SPENDSMART_CONFIG, then environment variables. Later sources win.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)
	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", c.GoogleSheetName)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.GoogleOAuthClientFile = getEnv("GOOGLE_OAUTH_CLIENT_FILE", c.GoogleOAuthClientFile)
	c.GoogleOAuthClientJSON = getEnv("GOOGLE_OAUTH_CLIENT_JSON", c.GoogleOAuthClientJSON)
	c.GoogleOAuthTokenFile = getEnv("GOOGLE_OAUTH_TOKEN_FILE", c.GoogleOAuthTokenFile)
	c.OAuthRedirectPort = getEnv("OAUTH_REDIRECT_PORT", c.OAuthRedirectPort)
	c.CurrencySymbol = getEnv("CURRENCY_SYMBOL", c.CurrencySymbol)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var err error
	if c.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute); err != nil {
		errs = append(errs, err)
	}
	if c.ForecastDays, err = getEnvInt("FORECAST_DAYS", c.ForecastDays); err != nil {
		errs = append(errs, err)
	}
	if c.DefaultBalance, err = getEnvFloat("DEFAULT_BALANCE", c.DefaultBalance); err != nil {
		errs = append(errs, err)
	}
	if c.InsightInterval, err = getEnvDuration("INSIGHT_INTERVAL", c.InsightInterval); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// AMQPEnabled reports whether an event bus is configured.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// SheetsEnabled reports whether transactions are exported to Google Sheets.
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendMemory, BackendSQLite}
	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.GoogleOAuthClientFile != "" {
		if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
		}
	}
	if port, err := strconv.Atoi(c.OAuthRedirectPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid OAuth redirect port '%s': must be between 1 and 65535", c.OAuthRedirectPort))
	}

	if math.IsNaN(c.DefaultBalance) || math.IsInf(c.DefaultBalance, 0) {
		problems = append(problems, "invalid default balance: must be a finite number")
	}
	if c.ForecastDays < 1 || c.ForecastDays > 3650 {
		problems = append(problems, fmt.Sprintf("invalid forecast days %d: must be between 1 and 3650", c.ForecastDays))
	}
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		problems = append(problems, "currency symbol cannot be empty")
	}

	if c.InsightInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid insight interval %v: must be at least 1 second", c.InsightInterval))
	} else if c.InsightInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid insight interval %v: must be at most 24 hours", c.InsightInterval))
	}

	if c.RateLimitPerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s %q: must be an integer", key, value)
	}
	return i, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := core.ParseDecimal(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s %q: must be a number", key, value)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s %q: must be a duration like 30m or 1h", key, value)
	}
	return d, nil
}
