package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

const (
	rootModule      = "crossref"
	scannerModule   = "crossref.scanner"
	resolverModule  = "crossref.resolver"
	validatorModule = "crossref.validator"
	pipelineModule  = "crossref.pipeline"
	batchModule     = "crossref.batch"
	watcherModule   = "crossref.watcher"
)

const (
	fieldDocumentPath = "document_path"
	fieldRefKind      = "ref_kind"
	fieldRefTarget    = "ref_target"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ScannerLogger returns the logger namespace reserved for the marker scanner.
func ScannerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, scannerModule)
}

// ResolverLogger returns the logger namespace reserved for URL resolution.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

// ValidatorLogger returns the logger namespace reserved for registry validation.
func ValidatorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, validatorModule)
}

// PipelineLogger returns the logger namespace reserved for the render pipeline.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// BatchLogger returns the logger namespace reserved for batch validation runs.
func BatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, batchModule)
}

// WatcherLogger returns the logger namespace reserved for the continuous
// validation watcher.
func WatcherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watcherModule)
}

// WithReferenceContext enriches the provided logger with the common reference
// fields. Empty values are ignored.
func WithReferenceContext(logger interfaces.Logger, path string, kind interfaces.Kind, target string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if kind != "" {
		fields[fieldRefKind] = string(kind)
	}
	if trimmed := strings.TrimSpace(target); trimmed != "" {
		fields[fieldRefTarget] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
