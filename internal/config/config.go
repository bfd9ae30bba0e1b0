// Package config loads the service configuration once at startup.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the server and the admin CLI
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Database    DatabaseConfig  `toml:"database"`
	Auth        AuthConfig      `toml:"auth"`
	Ledger      LedgerConfig    `toml:"ledger"`
	Quotes      QuotesConfig    `toml:"quotes"`
	Media       MediaConfig     `toml:"media"`
	Logging     LoggingConfig   `toml:"logging"`
	Superuser   SuperuserConfig `toml:"superuser"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	GinMode     string   `toml:"gin_mode"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig selects and configures the storage backend.
// Driver is "postgres" or "memory". URL, when set, wins over the parts.
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	URL             string `toml:"url"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	Name            string `toml:"name"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return normalizeURL(c.URL)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetConnMaxLifetime parses the lifetime, defaulting to five minutes.
func (c DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return parseDuration(c.ConnMaxLifetime, 5*time.Minute)
}

// normalizeURL accepts SQLAlchemy style schemes such as postgresql+psycopg://.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if scheme, _, ok := strings.Cut(u.Scheme, "+"); ok {
		u.Scheme = scheme
	}
	return u.String()
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	SecretKey           string `toml:"secret_key"`
	AccessTokenExpiry   string `toml:"access_token_expiry"`
	RefreshTokenExpiry  string `toml:"refresh_token_expiry"`
	PasswordResetExpiry string `toml:"password_reset_expiry"`
}

func (c AuthConfig) GetAccessTokenExpiry() time.Duration {
	return parseDuration(c.AccessTokenExpiry, 30*time.Minute)
}

func (c AuthConfig) GetRefreshTokenExpiry() time.Duration {
	return parseDuration(c.RefreshTokenExpiry, 7*24*time.Hour)
}

func (c AuthConfig) GetPasswordResetExpiry() time.Duration {
	return parseDuration(c.PasswordResetExpiry, 30*time.Minute)
}

// LedgerConfig tunes the transaction unit of work
type LedgerConfig struct {
	MaxRetries int `toml:"max_retries"`
}

// QuotesConfig configures the quote providers and the job worker pool
type QuotesConfig struct {
	Workers       int    `toml:"workers"`
	QueueSize     int    `toml:"queue_size"`
	MaxConcurrent int    `toml:"max_concurrent"`
	Timeout       string `toml:"timeout"`
	RateLimit     int    `toml:"rate_limit"`
	ResultTTL     string `toml:"result_ttl"`
	BrapiURL      string `toml:"brapi_url"`
	CoinGeckoURL  string `toml:"coingecko_url"`
	AwesomeAPIURL string `toml:"awesomeapi_url"`
}

func (c QuotesConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

func (c QuotesConfig) GetResultTTL() time.Duration {
	return parseDuration(c.ResultTTL, time.Hour)
}

// MediaConfig locates uploaded files on disk and on the web
type MediaConfig struct {
	Root           string `toml:"root"`
	URL            string `toml:"url"`
	MaxAvatarBytes int64  `toml:"max_avatar_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SuperuserConfig seeds an administrator at startup when both fields are set
type SuperuserConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
	FullName string `toml:"full_name"`
}

// Enabled reports whether a superuser should be ensured.
func (c SuperuserConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
}

// NewDefaultConfig returns a Config with development defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Name:            "investorion",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "5m",
		},
		Auth: AuthConfig{
			SecretKey:           "change-me",
			AccessTokenExpiry:   "30m",
			RefreshTokenExpiry:  "168h",
			PasswordResetExpiry: "30m",
		},
		Ledger: LedgerConfig{MaxRetries: 3},
		Quotes: QuotesConfig{
			Workers:       5,
			QueueSize:     100,
			MaxConcurrent: 8,
			Timeout:       "10s",
			RateLimit:     5,
			ResultTTL:     "1h",
			BrapiURL:      "https://brapi.dev",
			CoinGeckoURL:  "https://api.coingecko.com",
			AwesomeAPIURL: "https://economia.awesomeapi.com.br",
		},
		Media: MediaConfig{
			Root:           "media",
			URL:            "/media",
			MaxAvatarBytes: 2 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration: defaults, then each TOML file that exists
// (later files override earlier ones), then a .env file, then environment
// variables.
func Load(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.GinMode, "GIN_MODE")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")

	setString(&cfg.Auth.SecretKey, "SECRET_KEY")
	setMinutes(&cfg.Auth.AccessTokenExpiry, "ACCESS_TOKEN_EXPIRE_MINUTES")
	setMinutes(&cfg.Auth.RefreshTokenExpiry, "REFRESH_TOKEN_EXPIRE_MINUTES")
	setMinutes(&cfg.Auth.PasswordResetExpiry, "PASSWORD_RESET_EXPIRE_MINUTES")

	setInt(&cfg.Ledger.MaxRetries, "LEDGER_MAX_RETRIES")

	setInt(&cfg.Quotes.Workers, "NUM_WORKERS")
	setInt(&cfg.Quotes.QueueSize, "QUOTE_QUEUE_SIZE")
	setString(&cfg.Quotes.Timeout, "QUOTE_TIMEOUT")

	setString(&cfg.Media.Root, "MEDIA_ROOT")
	setString(&cfg.Media.URL, "MEDIA_URL")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	setString(&cfg.Superuser.Email, "FIRST_SUPERUSER_EMAIL")
	setString(&cfg.Superuser.Password, "FIRST_SUPERUSER_PASSWORD")
	setString(&cfg.Superuser.FullName, "FIRST_SUPERUSER_FULL_NAME")
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setMinutes(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = (time.Duration(n) * time.Minute).String()
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d == 0 {
		return fallback
	}
	return d
}
