// Package config loads client settings from defaults, a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Picker  PickerConfig  `yaml:"picker"`
}

// APIConfig points at the catalog backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig selects where the session record lives.
type StorageConfig struct {
	Driver  string      `yaml:"driver"`
	Dir     string      `yaml:"dir"`
	Profile string      `yaml:"profile"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PickerConfig tunes the interactive search.
type PickerConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	MinChars int           `yaml:"min_chars"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API:     APIConfig{BaseURL: "http://localhost:8080/api", Timeout: 30 * time.Second},
		Log:     LogConfig{Level: "warn"},
		Storage: StorageConfig{Driver: DriverFile, Profile: "default", Redis: RedisConfig{Addr: "localhost:6379"}},
		Picker:  PickerConfig{Debounce: 300 * time.Millisecond, MinChars: 2},
	}
}

// Load layers defaults, the YAML file at path (missing is fine), .env and MA_* variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath is config.yaml inside dir.
func DefaultPath(dir string) string { return filepath.Join(dir, "config.yaml") }

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid api.timeout %s", c.API.Timeout)
	}
	switch c.Storage.Driver {
	case DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Picker.MinChars < 1 {
		return fmt.Errorf("invalid picker.min_chars %d, want at least 1", c.Picker.MinChars)
	}
	return nil
}

func applyEnv(c *Config) error {
	c.API.BaseURL = getEnv("MA_API_URL", c.API.BaseURL)
	c.Log.Level = getEnv("MA_LOG_LEVEL", c.Log.Level)
	c.Storage.Driver = strings.ToLower(getEnv("MA_STORAGE", c.Storage.Driver))
	c.Storage.Dir = getEnv("MA_STORAGE_DIR", c.Storage.Dir)
	c.Storage.Profile = getEnv("MA_PROFILE", c.Storage.Profile)
	c.Storage.Redis.Addr = getEnv("MA_REDIS_ADDR", c.Storage.Redis.Addr)
	c.Storage.Redis.Password = getEnv("MA_REDIS_PASSWORD", c.Storage.Redis.Password)

	var err error
	if c.API.Timeout, err = getEnvAsDuration("MA_API_TIMEOUT", c.API.Timeout); err != nil {
		return err
	}
	if c.Picker.Debounce, err = getEnvAsDuration("MA_PICKER_DEBOUNCE", c.Picker.Debounce); err != nil {
		return err
	}
	if c.Storage.Redis.DB, err = getEnvAsInt("MA_REDIS_DB", c.Storage.Redis.DB); err != nil {
		return err
	}
	if c.Picker.MinChars, err = getEnvAsInt("MA_PICKER_MIN_CHARS", c.Picker.MinChars); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
