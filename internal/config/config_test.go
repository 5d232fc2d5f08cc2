package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, RealtimeBackendMemory, cfg.Realtime.Backend)
	assert.Equal(t, 128, cfg.Realtime.SendBuffer)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_MODE", "External")
	t.Setenv("AUTH_EXTERNAL_URL", "https://idp.example.com/")
	t.Setenv("AUTH_EXTERNAL_API_KEY", "anon-key")
	t.Setenv("REALTIME_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, AuthModeExternal, cfg.Auth.Mode)
	assert.Equal(t, "https://idp.example.com", cfg.Auth.ExternalURL)
	assert.Equal(t, RealtimeBackendRedis, cfg.Realtime.Backend)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Database.AutoMigrate)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown auth mode":       {"AUTH_MODE": "magic"},
		"external without url":    {"AUTH_MODE": "external"},
		"unknown realtime":        {"REALTIME_BACKEND": "kafka"},
		"non positive rate limit": {"RATE_LIMIT_REQUESTS": "-1"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
