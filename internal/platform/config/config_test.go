package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_DefaultValues checks defaults without any YAML file present.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "my-portfolio", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultClientRetryMaxAttempts, cfg.Client.Retry.MaxAttempts)

	assert.Equal(t, DefaultRelayURL, cfg.Relay.URL)
	assert.Equal(t, DefaultRelayMaxAttempts, cfg.Relay.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.Relay.Timeout)
	assert.Empty(t, cfg.Relay.AccessKey)

	assert.True(t, cfg.Content.StrictSlugs)
	assert.Equal(t, "/images/articles", cfg.Content.ImageBase)
	assert.Equal(t, DefaultRenderCacheSize, cfg.Content.RenderCacheSize)

	assert.Equal(t, "memory", cfg.Quiz.Store)
	assert.Equal(t, "quiz_session", cfg.Quiz.CookieName)
	assert.Equal(t, DefaultCookieMaxAge, cfg.Quiz.CookieMaxAge)

	require.NoError(t, cfg.Validate(), "defaults must be valid")
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER__PORT", "9090")
	t.Setenv("APP_LOG__LEVEL", "warn")
	t.Setenv("APP_RELAY__ACCESS_KEY", "key-123")
	t.Setenv("APP_QUIZ__STORE_PATH", "/tmp/quiz.db")
	t.Setenv("APP_CONTENT__STRICT_SLUGS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "key-123", cfg.Relay.AccessKey)
	assert.Equal(t, "/tmp/quiz.db", cfg.Quiz.StorePath)
	assert.False(t, cfg.Content.StrictSlugs)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "APP_SERVER__PORT", want: "server.port"},
		{in: "APP_RELAY__ACCESS_KEY", want: "relay.access_key"},
		{in: "APP_CLIENT__CIRCUIT_BREAKER__MAX_FAILURES", want: "client.circuit_breaker.max_failures"},
		{in: "APP_LOG__FILE__ENABLED", want: "log.file.enabled"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envKey(tt.in), tt.in)
	}
}

func TestLoadFrom_ProfileOverridesBase(t *testing.T) {
	dir := t.TempDir()

	base := "app:\n  environment: dev\nquiz:\n  cookie_name: base_cookie\nrelay:\n  timeout: 20s\n"
	profile := "quiz:\n  cookie_name: profile_cookie\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa.yaml"), []byte(profile), 0o600))

	cfg, err := LoadFrom(dir, "qa")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Environment)
	assert.Equal(t, "profile_cookie", cfg.Quiz.CookieName)
	assert.Equal(t, 20*time.Second, cfg.Relay.Timeout)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadFrom(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "my-portfolio", cfg.App.Name)
}

func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 20*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Client.Retry.InitialInterval)
	assert.Equal(t, 90*time.Second, cfg.Client.Transport.IdleConnTimeout)
}

func TestLoad_LogFileDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, "./logs/portfolio.log", cfg.Log.File.Path)
	assert.Equal(t, DefaultLogFileMaxSizeMB, cfg.Log.File.MaxSizeMB)
	assert.Equal(t, DefaultLogFileMaxBackups, cfg.Log.File.MaxBackups)
	assert.Equal(t, DefaultLogFileMaxAgeDays, cfg.Log.File.MaxAgeDays)
	assert.True(t, cfg.Log.File.Compress)
}

func TestDefaults(t *testing.T) {
	d := defaults()

	for _, key := range []string{
		"app.name", "server.port", "log.level", "client.timeout",
		"relay.url", "relay.max_attempts", "content.strict_slugs", "quiz.store", "quiz.cookie_name",
	} {
		assert.Contains(t, d, key)
	}
}
