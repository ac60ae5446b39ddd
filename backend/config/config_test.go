package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.HTTP.Addr())
	assert.True(t, cfg.Debug)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "bugtracker", cfg.DB.Name)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "bugtracker", cfg.JWT.Issuer)
	assert.True(t, cfg.DevSecret)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "bugtracker:notifications", cfg.Redis.Queue)
	assert.False(t, cfg.NotifyViaTelegram())
	assert.Equal(t, 1, cfg.Notify.Workers)
	assert.Equal(t, 100, cfg.Notify.Buffer)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend:
  host: 0.0.0.0
  port: 9000
  debug: false
  db:
    driver: mysql
    dsn: root:pw@tcp(db:3306)
    name: bugs
  jwt:
    secret: s3cret
    access_token_expire_minutes: 15
  redis:
    addr: redis:6379
  telegram:
    token: "123:abc"
    chat_id: "-100"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr())
	assert.False(t, cfg.Debug)
	assert.Equal(t, DB{Driver: "mysql", DSN: "root:pw@tcp(db:3306)", Name: "bugs", Migrate: true}, cfg.DB)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.False(t, cfg.DevSecret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.NotifyViaTelegram())
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "backend:\n  port: 9000\n")
	t.Setenv("PORT", "9100")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("TELEGRAM_TOKEN", "t")
	t.Setenv("TELEGRAM_CHAT_ID", "c")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.True(t, cfg.NotifyViaTelegram())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad driver", body: "backend:\n  db:\n    driver: mongo\n"},
		{name: "mysql without dsn", body: "backend:\n  db:\n    driver: mysql\n"},
		{name: "bad port", body: "backend:\n  port: 70000\n"},
		{name: "bad yaml", body: "backend: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestWatchReloads(t *testing.T) {
	path := writeConfig(t, "backend:\n  debug: true\n")

	changes := make(chan *Config, 4)
	Watch(path, func(cfg *Config) {
		select {
		case changes <- cfg:
		default:
		}
	}, func(err error) {})

	require.NoError(t, os.WriteFile(path, []byte("backend:\n  debug: false\n"), 0o600))
	select {
	case cfg := <-changes:
		assert.False(t, cfg.Debug)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}
}
