package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const devSecret = "dev-secret"

type HTTP struct {
	Host string
	Port int
}

func (h HTTP) Addr() string { return fmt.Sprintf("%s:%d", h.Host, h.Port) }

type DB struct {
	Driver  string
	DSN     string
	Name    string
	Migrate bool
}

type JWT struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

type Telegram struct {
	APIURL string
	Token  string
	ChatID string
}

type Notify struct {
	Workers int
	Buffer  int
}

type Config struct {
	HTTP         HTTP
	Debug        bool
	DB           DB
	JWT          JWT
	Redis        Redis
	Telegram     Telegram
	Notify       Notify
	PasswordCost int
	// DevSecret is set when no signing secret was configured.
	DevSecret bool
}

// envKeys maps configuration keys to the plain environment variables the
// service has always honoured.
var envKeys = map[string]string{
	"backend.host":                            "HOST",
	"backend.port":                            "PORT",
	"backend.debug":                           "DEBUG",
	"backend.db.driver":                       "DB_DRIVER",
	"backend.db.dsn":                          "MONGODB_URL",
	"backend.db.name":                         "MONGODB_DB_NAME",
	"backend.jwt.secret":                      "JWT_SECRET_KEY",
	"backend.jwt.access_token_expire_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",
	"backend.redis.addr":                      "REDIS_ADDR",
	"backend.redis.password":                  "REDIS_PASSWORD",
	"backend.telegram.token":                  "TELEGRAM_TOKEN",
	"backend.telegram.chat_id":                "TELEGRAM_CHAT_ID",
}

// Load reads the yaml file at path, if any, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("backend.host", "127.0.0.1")
	v.SetDefault("backend.port", 8000)
	v.SetDefault("backend.debug", true)
	v.SetDefault("backend.db.driver", "sqlite")
	v.SetDefault("backend.db.dsn", "")
	v.SetDefault("backend.db.name", "bugtracker")
	v.SetDefault("backend.db.migrate", true)
	v.SetDefault("backend.jwt.issuer", "bugtracker")
	v.SetDefault("backend.jwt.access_token_expire_minutes", 30)
	v.SetDefault("backend.redis.db", 0)
	v.SetDefault("backend.redis.queue", "bugtracker:notifications")
	v.SetDefault("backend.telegram.api_url", "https://api.telegram.org")
	v.SetDefault("backend.notify.workers", 1)
	v.SetDefault("backend.notify.buffer", 100)
	v.SetDefault("backend.password.cost", 10)

	v.SetEnvPrefix("BUGTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envKeys {
		if err := v.BindEnv(key, "BUGTRACKER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		HTTP:  HTTP{Host: v.GetString("backend.host"), Port: v.GetInt("backend.port")},
		Debug: v.GetBool("backend.debug"),
		DB: DB{
			Driver:  v.GetString("backend.db.driver"),
			DSN:     v.GetString("backend.db.dsn"),
			Name:    v.GetString("backend.db.name"),
			Migrate: v.GetBool("backend.db.migrate"),
		},
		JWT: JWT{
			Secret: v.GetString("backend.jwt.secret"),
			Issuer: v.GetString("backend.jwt.issuer"),
			TTL:    time.Duration(v.GetInt("backend.jwt.access_token_expire_minutes")) * time.Minute,
		},
		Redis: Redis{
			Addr:     v.GetString("backend.redis.addr"),
			Password: v.GetString("backend.redis.password"),
			DB:       v.GetInt("backend.redis.db"),
			Queue:    v.GetString("backend.redis.queue"),
		},
		Telegram: Telegram{
			APIURL: v.GetString("backend.telegram.api_url"),
			Token:  v.GetString("backend.telegram.token"),
			ChatID: v.GetString("backend.telegram.chat_id"),
		},
		Notify: Notify{
			Workers: v.GetInt("backend.notify.workers"),
			Buffer:  v.GetInt("backend.notify.buffer"),
		},
		PasswordCost: v.GetInt("backend.password.cost"),
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = devSecret
		cfg.DevSecret = true
	}
	if cfg.JWT.TTL <= 0 {
		cfg.JWT.TTL = 30 * time.Minute
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.HTTP.Port)
	}
	switch cfg.DB.Driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	if cfg.DB.Driver == "mysql" && cfg.DB.DSN == "" {
		return nil, errors.New("db dsn is required for mysql")
	}
	return cfg, nil
}

// NotifyViaTelegram reports whether chat credentials are configured.
func (c *Config) NotifyViaTelegram() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

// Watch reloads the file at path on every write and hands the result to
// onChange. Edits that fail to load go to onError and are otherwise ignored.
func Watch(path string, onChange func(*Config), onError func(error)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
