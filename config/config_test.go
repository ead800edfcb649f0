package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE", "")
	t.Setenv("PORT", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("LOG_DIR", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8000", cfg.APIBase)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, ":8080", cfg.Addr())
	require.Empty(t, cfg.TelegramToken)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE", "https://detect.example.com/")
	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("SESSION_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://detect.example.com", cfg.APIBase)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "123:abc", cfg.TelegramToken)
	require.Equal(t, 90*time.Second, cfg.SessionTTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("API_BASE", "localhost:8000")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("API_BASE", "")
	t.Setenv("PORT", "eighty")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("PORT", "70000")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "-1m")
	_, err = Load()
	require.Error(t, err)
}
