package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	for _, k := range []string{"CART_BASE_URL", "POLL_INTERVAL", "FETCH_TIMEOUT", "STORE", "CURRENCY_SYMBOL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "csrftoken", cfg.CSRFCookieName)
	assert.Equal(t, "X-CSRFToken", cfg.CSRFHeaderName)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "S$", cfg.CurrencySymbol)
	assert.Equal(t, "memory", cfg.Store)
}

func TestLoad_FromEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("CART_BASE_URL", "https://shop.example")
	t.Setenv("POLL_INTERVAL", "5")
	t.Setenv("FETCH_TIMEOUT", "1500ms")
	t.Setenv("STORE", "redis")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchTimeout)
	assert.Equal(t, "redis", cfg.Store)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CURRENCY_SYMBOL=RM\nSESSION_ID=abc\n"), 0o600))
	t.Setenv("CURRENCY_SYMBOL", "US$")
	t.Setenv("SESSION_ID", "")
	os.Unsetenv("SESSION_ID")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "US$", cfg.CurrencySymbol)
	assert.Equal(t, "abc", cfg.SessionID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"POLL_INTERVAL", "soon"},
		{"FETCH_TIMEOUT", "-1s"},
		{"STORE", "mongo"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			inTempDir(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
