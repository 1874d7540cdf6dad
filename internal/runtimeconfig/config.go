package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

var ErrLoggingProviderRequired = errors.New("crossref config: logging provider is required when logging is enabled")
var ErrLoggingProviderUnknown = errors.New("crossref config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("crossref config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("crossref config: logging format is invalid")
var ErrCacheProviderUnknown = errors.New("crossref config: cache provider is invalid")
var ErrCacheSizeRequired = errors.New("crossref config: bounded cache requires a positive max entries")
var ErrBatchWorkersInvalid = errors.New("crossref config: batch workers must be zero or positive")
var ErrBatchTimeoutInvalid = errors.New("crossref config: batch timeout must be zero or positive")
var ErrWatcherIdleInvalid = errors.New("crossref config: watcher idle interval must be zero or positive")
var ErrOverridePathInvalid = errors.New("crossref config: URL override path must carry a :target parameter")

// Config aggregates tunables and adapter bindings for the cross-reference
// engine. Fields use simple types so host applications can map them from
// their own configuration sources.
type Config struct {
	Overrides map[interfaces.Kind]interfaces.URLOverride
	Render    RenderConfig
	Cache     CacheConfig
	Batch     BatchConfig
	Watcher   WatcherConfig
	Logging   LoggingConfig
}

// RenderConfig mirrors interfaces.RenderOptions for runtime configuration.
type RenderConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	Provider   string
	MaxEntries int
	DefaultTTL time.Duration
}

// BatchConfig bounds the concurrent validation engine.
type BatchConfig struct {
	MaxWorkers int
	Threshold  int
	Timeout    time.Duration
}

// WatcherConfig captures behaviour of the continuous validation worker.
type WatcherConfig struct {
	Enabled      bool
	IdleInterval time.Duration
	Paths        []string
	Recursive    bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Enabled   bool
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for embedding hosts.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Enabled:    true,
			Provider:   "memory",
			DefaultTTL: time.Minute,
		},
		Batch: BatchConfig{
			MaxWorkers: 8,
			Threshold:  10,
			Timeout:    30 * time.Second,
		},
		Watcher: WatcherConfig{
			IdleInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	for kind, override := range cfg.Overrides {
		if override.Path != "" && !strings.Contains(override.Path, ":target") {
			return fmt.Errorf("%w: %s", ErrOverridePathInvalid, kind)
		}
	}
	if cfg.Cache.Enabled {
		provider := normalizeName(cfg.Cache.Provider)
		switch provider {
		case "", "memory":
		case "lru":
			if cfg.Cache.MaxEntries <= 0 {
				return ErrCacheSizeRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, provider)
		}
	}
	if cfg.Batch.MaxWorkers < 0 {
		return ErrBatchWorkersInvalid
	}
	if cfg.Batch.Timeout < 0 {
		return ErrBatchTimeoutInvalid
	}
	if cfg.Watcher.IdleInterval < 0 {
		return ErrWatcherIdleInvalid
	}
	if cfg.Logging.Enabled {
		provider := normalizeName(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
