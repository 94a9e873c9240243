package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "MINES"

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Empty file disables the rotating file sink.
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxSessions   int           `mapstructure:"max_sessions"`
}

type LimitsConfig struct {
	MaxWidth  int `mapstructure:"max_width"`
	MaxHeight int `mapstructure:"max_height"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Mode    string        `mapstructure:"mode"`
	Addr    string        `mapstructure:"addr"`
	Log     LogConfig     `mapstructure:"log"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Session SessionConfig `mapstructure:"session"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Cors    CorsConfig    `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "development")
	v.SetDefault("addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_lifetime", 24*time.Hour)

	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("session.max_sessions", 10_000)

	v.SetDefault("limits.max_width", 100)
	v.SetDefault("limits.max_height", 100)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads configuration from the file at path, or from mines.yaml in the
// working directory or /etc/mines when path is empty. A missing default file
// is not an error. MINES_* environment variables override file values, with
// dots in keys replaced by underscores (MINES_SESSION_TTL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("mines")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mines")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("unable to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if !slices.Contains([]string{"development", "production"}, c.Mode) {
		return invalid("unknown mode %q", c.Mode)
	}
	if c.Addr == "" {
		return invalid("addr is empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return invalid("%s", err)
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		return invalid("log rotation settings must not be negative")
	}
	if c.Production() && c.Auth.Secret == "" {
		return invalid("auth.secret is required in production")
	}
	if c.Auth.TokenLifetime < 0 {
		return invalid("auth.token_lifetime must not be negative")
	}
	if c.Session.TTL < 0 || c.Session.MaxSessions < 0 {
		return invalid("session settings must not be negative")
	}
	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return invalid("session.sweep_interval must be positive when session.ttl is set")
	}
	if c.Limits.MaxWidth < 1 || c.Limits.MaxHeight < 1 {
		return invalid("board limits must be positive")
	}
	return nil
}

func (c Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":                   c.Mode,
		"addr":                   c.Addr,
		"log_level":              c.Log.Level,
		"log_file":               c.Log.File,
		"auth_secret_set":        c.Auth.Secret != "",
		"auth_token_lifetime":    c.Auth.TokenLifetime.String(),
		"session_ttl":            c.Session.TTL.String(),
		"session_sweep_interval": c.Session.SweepInterval.String(),
		"session_max_sessions":   c.Session.MaxSessions,
		"limits_max_width":       c.Limits.MaxWidth,
		"limits_max_height":      c.Limits.MaxHeight,
		"cors_allowed_origins":   strings.Join(c.Cors.AllowedOrigins, ","),
	}
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}
