package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, `
api:
  base_url: https://catalog.example.com/api
  timeout: 5s
log:
  level: debug
storage:
  driver: redis
  profile: staging
  redis:
    addr: cache:6379
    db: 3
picker:
  debounce: 150ms
  min_chars: 3
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "staging", cfg.Storage.Profile)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.Equal(t, 150*time.Millisecond, cfg.Picker.Debounce)
	assert.Equal(t, 3, cfg.Picker.MinChars)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeFile(t, "api:\n  base_url: https://file.example.com\n")
	t.Setenv("MA_API_URL", "https://env.example.com/api")
	t.Setenv("MA_API_TIMEOUT", "2s")
	t.Setenv("MA_STORAGE", "REDIS")
	t.Setenv("MA_REDIS_DB", "5")
	t.Setenv("MA_PICKER_MIN_CHARS", "1")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Storage.Redis.DB)
	assert.Equal(t, 1, cfg.Picker.MinChars)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "api: [\n"},
		{name: "relative url", file: "api:\n  base_url: /api\n"},
		{name: "unknown driver", env: map[string]string{"MA_STORAGE": "s3"}},
		{name: "bad duration", env: map[string]string{"MA_API_TIMEOUT": "soon"}},
		{name: "bad int", env: map[string]string{"MA_REDIS_DB": "x"}},
		{name: "negative min chars", env: map[string]string{"MA_PICKER_MIN_CHARS": "-1"}},
		{name: "zero min chars", file: "picker:\n  min_chars: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			p := ""
			if tt.file != "" {
				p = writeFile(t, tt.file)
			}
			_, err := Load(p)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("x", "config.yaml"), DefaultPath("x"))
}
