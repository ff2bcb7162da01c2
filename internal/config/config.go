// Package config loads server settings from defaults, an optional config
// file and PIXEL_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	// DevSessionSecret is the fallback signing key. The server warns when it
	// is still in use.
	DevSessionSecret = "change-me-in-production"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Reset    ResetConfig    `mapstructure:"reset"`
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
	Store    string         `mapstructure:"store"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Secret      string        `mapstructure:"secret"`
	TTL         time.Duration `mapstructure:"ttl"`
	RememberTTL time.Duration `mapstructure:"remember_ttl"`
	Secure      bool          `mapstructure:"secure"`
}

type ResetConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type CanvasConfig struct {
	MaxDimension int `mapstructure:"max_dimension"`
	DefaultSize  int `mapstructure:"default_size"`
}

type SMTPConfig struct {
	Server       string `mapstructure:"server"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"`
	AuthDisabled bool   `mapstructure:"auth_disabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.base_url", "http://localhost:8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.secret", DevSessionSecret)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.remember_ttl", 7*24*time.Hour)
	v.SetDefault("session.secure", false)
	v.SetDefault("reset.ttl", 30*time.Minute)
	v.SetDefault("canvas.max_dimension", 256)
	v.SetDefault("canvas.default_size", 32)
	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@pixel-canvas.local")
	v.SetDefault("smtp.auth_disabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("store", StorePostgres)
}

// Load reads the configuration. path may be empty, in which case PIXEL_CONFIG
// is consulted, and without either only defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PIXEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "PIXEL_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv("PIXEL_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret must not be empty"))
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		errs = append(errs, errors.New("session lifetimes must be positive"))
	}
	if c.Canvas.MaxDimension < 1 {
		errs = append(errs, errors.New("canvas.max_dimension must be at least 1"))
	}
	if c.Canvas.DefaultSize < 1 || c.Canvas.DefaultSize > c.Canvas.MaxDimension {
		errs = append(errs, errors.New("canvas.default_size must be between 1 and canvas.max_dimension"))
	}
	return errors.Join(errs...)
}

// UsesDevSecret reports whether sessions are signed with the fallback key.
func (c *Config) UsesDevSecret() bool {
	return c.Session.Secret == DevSessionSecret
}
