package config

import (
	"os"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	Fanout   FanoutConfig
	Sender   SenderConfig
}

// SenderConfig points at the external delivery gateway. An empty URL keeps
// dispatches local (logged only), which is what tests and dev use.
type SenderConfig struct {
	WebhookURL string
	Timeout    int // seconds
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type DatabaseConfig struct {
	Driver   string // "sqlite" (default) or "postgres"
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type FanoutConfig struct {
	Workers   int
	QueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	var trustedProxies []string
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		trustedProxies = strings.Split(v, ",")
	}

	cfg := &Config{
		App: AppConfig{
			Version:            "v1.4.0",
			Port:               getEnv("APP_PORT", "3000"),
			Debug:              debug,
			Environment:        getEnv("APP_ENV", "development"),
			BasicAuth:          basicAuth,
			BasePath:           getEnv("APP_BASE_PATH", ""),
			TrustedProxies:     trustedProxies,
			BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			CorsAllowedOrigins: corsOrigins,
			ServerID:           getEnv("SERVER_ID", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "jobcast"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "storages/jobcast.db"),
		},
		Valkey: ValkeyConfig{
			Enabled:   getEnvBool("VALKEY_ENABLED", false),
			Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "jobcast"),
		},
		Fanout: FanoutConfig{
			Workers:   getEnvInt("FANOUT_WORKERS", 8),
			QueueSize: getEnvInt("FANOUT_QUEUE_SIZE", 256),
		},
		Sender: SenderConfig{
			WebhookURL: getEnv("SENDER_WEBHOOK_URL", ""),
			Timeout:    getEnvInt("SENDER_TIMEOUT_SECONDS", 15),
		},
	}

	Global = cfg
	return cfg, nil
}
