package cmd_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/coffee-indicators/internal/cli"
	"github.com/rohmanhakim/coffee-indicators/internal/config"
	"github.com/rs/zerolog"
)

// TestInitConfigNoFlags tests that InitConfigWithError returns the default config when nothing is set
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	defaultCfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	gotSource := cfg.SourceURL()
	wantSource := defaultCfg.SourceURL()
	if gotSource.String() != wantSource.String() {
		t.Errorf("Expected SourceURL %s, got %s", wantSource.String(), gotSource.String())
	}
	if cfg.Timeout() != defaultCfg.Timeout() {
		t.Errorf("Expected Timeout %v, got %v", defaultCfg.Timeout(), cfg.Timeout())
	}
	if cfg.CacheTTLSeconds() != defaultCfg.CacheTTLSeconds() {
		t.Errorf("Expected CacheTTLSeconds %d, got %d", defaultCfg.CacheTTLSeconds(), cfg.CacheTTLSeconds())
	}
	if cfg.CacheBackend() != defaultCfg.CacheBackend() {
		t.Errorf("Expected CacheBackend %s, got %s", defaultCfg.CacheBackend(), cfg.CacheBackend())
	}
	if cfg.Timezone() != defaultCfg.Timezone() {
		t.Errorf("Expected Timezone %s, got %s", defaultCfg.Timezone(), cfg.Timezone())
	}
}

// TestInitConfigWithFlags tests that CLI flags override defaults
func TestInitConfigWithFlags(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetSourceURLForTest("http://localhost:9000/wp/")
	cmd.SetUserAgentForTest("flag-agent")
	cmd.SetTimeoutForTest(4 * time.Second)
	cmd.SetCacheTTLForTest(0)
	cmd.SetCacheBackendForTest("sqlite")
	cmd.SetCacheCodecForTest("msgpack")
	cmd.SetSQLitePathForTest("/tmp/flags.db")
	cmd.SetTimezoneForTest("UTC")
	cmd.SetLogLevelForTest("debug")
	cmd.SetListenAddrForTest(":9090")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	source := cfg.SourceURL()
	if source.String() != "http://localhost:9000/wp/" {
		t.Errorf("Expected flag source URL, got %s", source.String())
	}
	if cfg.UserAgent() != "flag-agent" {
		t.Errorf("Expected UserAgent flag-agent, got %s", cfg.UserAgent())
	}
	if cfg.Timeout() != 4*time.Second {
		t.Errorf("Expected Timeout 4s, got %v", cfg.Timeout())
	}
	if cfg.CacheTTLSeconds() != 0 {
		t.Errorf("Expected CacheTTLSeconds 0, got %d", cfg.CacheTTLSeconds())
	}
	if cfg.CacheBackend() != config.BackendSQLite {
		t.Errorf("Expected sqlite backend, got %s", cfg.CacheBackend())
	}
	if cfg.CacheCodec() != "msgpack" {
		t.Errorf("Expected msgpack, got %s", cfg.CacheCodec())
	}
	if cfg.SQLitePath() != "/tmp/flags.db" {
		t.Errorf("Expected sqlite path, got %s", cfg.SQLitePath())
	}
	if cfg.LogLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug, got %s", cfg.LogLevel())
	}
	if cfg.ListenAddr() != ":9090" {
		t.Errorf("Expected :9090, got %s", cfg.ListenAddr())
	}
}

// TestInitConfigFlagsOverrideEnv tests precedence between environment variables and flags
func TestInitConfigFlagsOverrideEnv(t *testing.T) {
	cmd.ResetFlags()
	t.Setenv(config.EnvUserAgent, "env-agent")
	t.Setenv(config.EnvTimezone, "UTC")
	cmd.SetUserAgentForTest("flag-agent")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.UserAgent() != "flag-agent" {
		t.Errorf("Expected flag to win, got %s", cfg.UserAgent())
	}
	if cfg.Timezone() != "UTC" {
		t.Errorf("Expected env timezone UTC, got %s", cfg.Timezone())
	}
}

func TestInitConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		apply func()
	}{
		{"relative source url", func() { cmd.SetSourceURLForTest("federaciondecafeteros.org/wp/") }},
		{"unknown backend", func() { cmd.SetCacheBackendForTest("memcached") }},
		{"unknown codec", func() { cmd.SetCacheCodecForTest("gob") }},
		{"unknown timezone", func() { cmd.SetTimezoneForTest("Nowhere/Land") }},
		{"unknown log level", func() { cmd.SetLogLevelForTest("loud") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			tt.apply()

			_, err := cmd.InitConfigWithError()
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

// TestInitConfigWithConfigFile tests that a config file is used as-is
func TestInitConfigWithConfigFile(t *testing.T) {
	cmd.ResetFlags()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"cacheBackend": "redis", "redisAddr": "cache:6379"}`), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	cmd.SetConfigFileForTest(path)
	cmd.SetUserAgentForTest("ignored")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.CacheBackend() != config.BackendRedis {
		t.Errorf("Expected redis backend, got %s", cfg.CacheBackend())
	}
	if cfg.Redis().Addr != "cache:6379" {
		t.Errorf("Expected redis addr cache:6379, got %s", cfg.Redis().Addr)
	}
	if cfg.UserAgent() == "ignored" {
		t.Errorf("flags should not override a config file")
	}
}

func TestInitConfigWithMissingConfigFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest(filepath.Join(t.TempDir(), "missing.json"))

	_, err := cmd.InitConfigWithError()
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("Expected ErrFileDoesNotExist, got: %v", err)
	}
}
