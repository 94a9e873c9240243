package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Mode)
	assert.True(t, cfg.Development())
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel())
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifetime)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 10_000, cfg.Session.MaxSessions)
	assert.Equal(t, 100, cfg.Limits.MaxWidth)
	assert.Equal(t, []string{"*"}, cfg.Cors.AllowedOrigins)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
mode: production
addr: 127.0.0.1:9000
log:
  level: debug
  file: /var/log/mines.log
  max_backups: 7
auth:
  secret: hunter2
  token_lifetime: 30m
session:
  ttl: 2h
  max_sessions: 50
limits:
  max_width: 40
  max_height: 20
cors:
  allowed_origins:
    - https://example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "/var/log/mines.log", cfg.Log.File)
	assert.Equal(t, 7, cfg.Log.MaxBackups)
	assert.Equal(t, 10, cfg.Log.MaxSize)
	assert.Equal(t, "hunter2", cfg.Auth.Secret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenLifetime)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 50, cfg.Session.MaxSessions)
	assert.Equal(t, 40, cfg.Limits.MaxWidth)
	assert.Equal(t, 20, cfg.Limits.MaxHeight)
	assert.Equal(t, []string{"https://example.com"}, cfg.Cors.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "addr: \":9000\"\nsession:\n  ttl: 2h\n")
	t.Setenv("MINES_ADDR", ":7000")
	t.Setenv("MINES_SESSION_TTL", "5m")
	t.Setenv("MINES_LIMITS_MAX_WIDTH", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 12, cfg.Limits.MaxWidth)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, "mode: production\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func validConfig() Config {
	return Config{
		Mode:    "development",
		Addr:    ":8080",
		Log:     LogConfig{Level: "info"},
		Session: SessionConfig{TTL: time.Hour, SweepInterval: time.Minute},
		Limits:  LimitsConfig{MaxWidth: 10, MaxHeight: 10},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "staging" }},
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative backups", func(c *Config) { c.Log.MaxBackups = -1 }},
		{"production without secret", func(c *Config) { c.Mode = "production" }},
		{"negative lifetime", func(c *Config) { c.Auth.TokenLifetime = -time.Second }},
		{"negative ttl", func(c *Config) { c.Session.TTL = -time.Second }},
		{"no sweep interval", func(c *Config) { c.Session.SweepInterval = 0 }},
		{"zero width", func(c *Config) { c.Limits.MaxWidth = 0 }},
	}

	require.NoError(t, validConfig().Validate())
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestFieldsHideSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Secret = "hunter2"
	fields := cfg.Fields()
	assert.Equal(t, true, fields["auth_secret_set"])
	for _, v := range fields {
		assert.NotEqual(t, "hunter2", v)
	}
}
