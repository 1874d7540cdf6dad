package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-crossref/internal/runtimeconfig"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidateRejectsOverrideWithoutTargetParam(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Overrides = map[interfaces.Kind]interfaces.URLOverride{
		interfaces.KindResource: {Path: "/api/resources/static"},
	}
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrOverridePathInvalid) {
		t.Fatalf("Validate() = %v, want ErrOverridePathInvalid", err)
	}
}

func TestValidateAllowsBaseURLOnlyOverride(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Overrides = map[interfaces.Kind]interfaces.URLOverride{
		interfaces.KindDevDoc: {BaseURL: "https://docs.example.com"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownCacheProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Provider = "redis"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheProviderUnknown) {
		t.Fatalf("Validate() = %v, want ErrCacheProviderUnknown", err)
	}
}

func TestValidateRequiresLRUSize(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Provider = "lru"
	cfg.Cache.MaxEntries = 0
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheSizeRequired) {
		t.Fatalf("Validate() = %v, want ErrCacheSizeRequired", err)
	}
}

func TestValidateRejectsNegativeBatchWorkers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Batch.MaxWorkers = -1
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBatchWorkersInvalid) {
		t.Fatalf("Validate() = %v, want ErrBatchWorkersInvalid", err)
	}
}

func TestValidateRejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Enabled = true
	cfg.Logging.Provider = "zap"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("Validate() = %v, want ErrLoggingProviderUnknown", err)
	}
}

func TestValidateRejectsInvalidLoggingLevel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Enabled = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("Validate() = %v, want ErrLoggingLevelInvalid", err)
	}
}
