package crossref

import "github.com/goliatone/go-crossref/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrCacheProviderUnknown    = runtimeconfig.ErrCacheProviderUnknown
	ErrCacheSizeRequired       = runtimeconfig.ErrCacheSizeRequired
	ErrBatchWorkersInvalid     = runtimeconfig.ErrBatchWorkersInvalid
	ErrBatchTimeoutInvalid     = runtimeconfig.ErrBatchTimeoutInvalid
	ErrWatcherIdleInvalid      = runtimeconfig.ErrWatcherIdleInvalid
	ErrOverridePathInvalid     = runtimeconfig.ErrOverridePathInvalid
)

type (
	Config        = runtimeconfig.Config
	RenderConfig  = runtimeconfig.RenderConfig
	CacheConfig   = runtimeconfig.CacheConfig
	BatchConfig   = runtimeconfig.BatchConfig
	WatcherConfig = runtimeconfig.WatcherConfig
	LoggingConfig = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
