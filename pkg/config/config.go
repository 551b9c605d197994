// Package config loads memoir settings from defaults, an optional .memoir.yaml,
// a .env file and MEMOIR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultAPI  = "http://localhost:8000/api"
	DefaultPath = "~/.memoir"
)

// Config is the resolved configuration for one memoir process.
type Config struct {
	// API is the base URL of the remote journal service, without a trailing slash.
	API string
	// Path is the directory holding the persisted session credential.
	Path string
	// Timeout bounds each outbound request; zero leaves the transport default.
	Timeout time.Duration

	Log       LogConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig throttles outbound calls; RPS <= 0 disables the limiter.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// BreakerConfig trips after Failures consecutive failed exchanges and stays
// open for Cooldown.
type BreakerConfig struct {
	Enabled  bool
	Failures uint32
	Cooldown time.Duration
}

// BasePath returns the credential directory.
func (c *Config) BasePath() string {
	return c.Path
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	path, err := homedir.Expand(DefaultPath)
	if err != nil {
		path = ".memoir"
	}
	return &Config{
		API:       DefaultAPI,
		Path:      path,
		Log:       LogConfig{Level: "error", Format: "console"},
		RateLimit: RateLimitConfig{Burst: 1},
		Breaker:   BreakerConfig{Failures: 5, Cooldown: 30 * time.Second},
	}
}

// Load resolves the configuration. A missing config or .env file is fine; a
// malformed one is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	def := Default()
	v := viper.New()
	v.SetDefault("api", def.API)
	v.SetDefault("path", DefaultPath)
	v.SetDefault("timeout", "0s")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("ratelimit.rps", 0)
	v.SetDefault("ratelimit.burst", def.RateLimit.Burst)
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.failures", def.Breaker.Failures)
	v.SetDefault("breaker.cooldown", def.Breaker.Cooldown.String())

	v.SetConfigName(".memoir") // .yaml is implicit
	v.SetEnvPrefix("MEMOIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("MEMOIR_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}

	cfg := &Config{
		API:     strings.TrimRight(strings.TrimSpace(v.GetString("api")), "/"),
		Path:    path,
		Timeout: v.GetDuration("timeout"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("ratelimit.rps"),
			Burst: v.GetInt("ratelimit.burst"),
		},
		Breaker: BreakerConfig{
			Enabled:  v.GetBool("breaker.enabled"),
			Failures: uint32(v.GetUint("breaker.failures")),
			Cooldown: v.GetDuration("breaker.cooldown"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a working client.
func (c *Config) Validate() error {
	if c.API == "" {
		return errors.New("config: api base url required")
	}
	if !strings.HasPrefix(c.API, "http://") && !strings.HasPrefix(c.API, "https://") {
		return fmt.Errorf("config: api %q must be an http(s) url", c.API)
	}
	if c.Path == "" {
		return errors.New("config: credential path required")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return errors.New("config: ratelimit burst must be at least 1")
	}
	return nil
}
