package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "DB_DRIVER", "LEDGER_MAX_RETRIES", "FIRST_SUPERUSER_EMAIL"} {
		t.Setenv(key, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 30*time.Minute, cfg.Auth.GetAccessTokenExpiry())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.GetRefreshTokenExpiry())
	assert.Equal(t, time.Hour, cfg.Quotes.GetResultTTL())
	assert.False(t, cfg.Superuser.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "production"

[server]
port = 9000
cors_origins = ["https://app.example.com"]

[database]
driver = "memory"

[quotes]
workers = 2
timeout = "3s"
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("FIRST_SUPERUSER_EMAIL", "admin@example.com")
	t.Setenv("FIRST_SUPERUSER_PASSWORD", "root")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "0.0.0.0:9100", cfg.Server.Addr())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 2, cfg.Quotes.Workers)
	assert.Equal(t, 3*time.Second, cfg.Quotes.GetTimeout())
	assert.Equal(t, 100, cfg.Quotes.QueueSize, "unset keys keep defaults")
	assert.Equal(t, 5*time.Minute, cfg.Auth.GetAccessTokenExpiry())
	assert.True(t, cfg.Superuser.Enabled())
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = 1"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())

	c.URL = "postgresql+psycopg://u:p@db:5432/n?sslmode=disable"
	assert.Equal(t, "postgresql://u:p@db:5432/n?sslmode=disable", c.DSN())
}
