// Package crossref resolves and validates typed cross-reference markers in
// markdown documents. It scans sources for [text](kind:target) markers,
// shields them from the markdown renderer behind opaque tokens, resolves
// each reference to a canonical URL, and validates targets against per-kind
// registries with suggestion-backed diagnostics.
package crossref

import (
	"context"
	"os"

	"github.com/goliatone/go-crossref/internal/batch"
	"github.com/goliatone/go-crossref/internal/cache"
	"github.com/goliatone/go-crossref/internal/logging"
	"github.com/goliatone/go-crossref/internal/logging/gologger"
	"github.com/goliatone/go-crossref/internal/markdown"
	"github.com/goliatone/go-crossref/internal/pipeline"
	"github.com/goliatone/go-crossref/internal/registry"
	"github.com/goliatone/go-crossref/internal/resolver"
	"github.com/goliatone/go-crossref/internal/scanner"
	"github.com/goliatone/go-crossref/internal/validator"
	"github.com/goliatone/go-crossref/internal/watcher"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// Kind exports the marker kind enumeration.
type Kind = interfaces.Kind

const (
	KindResource = interfaces.KindResource
	KindModule   = interfaces.KindModule
	KindDevDoc   = interfaces.KindDevDoc
	KindUserDoc  = interfaces.KindUserDoc
	KindUnknown  = interfaces.KindUnknown
)

// Reference exports the discovered cross-reference record.
type Reference = interfaces.Reference

// Severity grades invalid references.
type Severity = interfaces.Severity

const (
	SeverityError    = interfaces.SeverityError
	SeverityWarning  = interfaces.SeverityWarning
	SeverityCritical = interfaces.SeverityCritical
)

// ValidationReport exports the per-document validation aggregate.
type ValidationReport = interfaces.ValidationReport

// BatchResult exports the batch validation aggregate.
type BatchResult = interfaces.BatchResult

// ErrorReport exports the grouped diagnostics report.
type ErrorReport = interfaces.ErrorReport

// Preview exports the source line excerpt record.
type Preview = interfaces.Preview

// ExportRecord exports the machine-readable document projection.
type ExportRecord = interfaces.ExportRecord

// Result exports the processing envelope.
type Result = interfaces.Result

// Document pairs a path with markdown content for multi-document runs.
type Document = interfaces.Document

// ProcessOptions exports the per-call processing switches.
type ProcessOptions = interfaces.ProcessOptions

// RenderOptions exports the markdown renderer switches.
type RenderOptions = interfaces.RenderOptions

// URLOverride exports the per-kind resolution override.
type URLOverride = interfaces.URLOverride

// Registry exports the per-kind existence registry contract.
type Registry = interfaces.Registry

// RegistrySet exports the kind-to-registry binding.
type RegistrySet = interfaces.RegistrySet

// CacheProvider exports the cache contract consumed by the engine.
type CacheProvider = interfaces.CacheProvider

// MarkdownRenderer exports the external renderer contract.
type MarkdownRenderer = interfaces.MarkdownRenderer

// LoggerProvider exports the logging provider contract.
type LoggerProvider = interfaces.LoggerProvider

// RenderError reports a failed external markdown render.
type RenderError = pipeline.RenderError

// BrokenLinksError carries the offending references when the broken-links
// policy fails a processing call.
type BrokenLinksError = batch.BrokenLinksError

// ValidationRule exports the custom validation hook applied after registry checks.
type ValidationRule = validator.Rule

// ValidationOverride exports the partial verdict a ValidationRule may return.
type ValidationOverride = validator.Override

// Watcher exports the continuous validation worker.
type Watcher = watcher.Watcher

// WatchEvent exports the re-validation event delivered to watcher callbacks.
type WatchEvent = watcher.Event

// WatchCallback exports the watcher event sink.
type WatchCallback = watcher.Callback

// StaticRegistry exports the in-memory registry implementation.
type StaticRegistry = registry.Static

// NewStaticRegistry constructs an in-memory registry seeded with targets.
func NewStaticRegistry(targets ...string) *StaticRegistry {
	return registry.NewStatic(targets...)
}

// FuncRegistry exports the function-backed registry adapter.
type FuncRegistry = registry.FuncRegistry

// Module is the top level cross-reference engine facade.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	registry  interfaces.RegistrySet
	renderer  interfaces.MarkdownRenderer
	cacheProv interfaces.CacheProvider
	rules     []validator.Rule
	process   watcher.ProcessFunc
	callback  watcher.Callback

	resolver  *resolver.Resolver
	validator *validator.Validator
	pipeline  *pipeline.Pipeline
	engine    *batch.Engine
	watcher   *watcher.Watcher
}

// Option overrides a collaborator before the module wires itself.
type Option func(*Module)

// WithLoggerProvider replaces the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithRegistries binds the per-kind existence registries.
func WithRegistries(registries interfaces.RegistrySet) Option {
	return func(m *Module) {
		m.registry = registries
	}
}

// WithRegistry binds a single kind to a registry.
func WithRegistry(kind Kind, reg Registry) Option {
	return func(m *Module) {
		if m.registry == nil {
			m.registry = interfaces.RegistrySet{}
		}
		m.registry[kind] = reg
	}
}

// WithRenderer replaces the external markdown renderer.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(m *Module) {
		m.renderer = renderer
	}
}

// WithCacheProvider replaces the configured cache provider.
func WithCacheProvider(provider interfaces.CacheProvider) Option {
	return func(m *Module) {
		m.cacheProv = provider
	}
}

// WithValidationRules appends custom validation hooks run after registry checks.
func WithValidationRules(rules ...ValidationRule) Option {
	return func(m *Module) {
		m.rules = append(m.rules, rules...)
	}
}

// WithWatcherProcess replaces the watcher re-validation function. The default
// reads the triggered path from disk and processes it with validation on.
func WithWatcherProcess(process watcher.ProcessFunc) Option {
	return func(m *Module) {
		m.process = process
	}
}

// WithWatchCallback registers the sink receiving watcher re-validation events.
func WithWatchCallback(callback watcher.Callback) Option {
	return func(m *Module) {
		m.callback = callback
	}
}

// New constructs the engine from configuration plus optional collaborator
// overrides. The zero-dependency path works out of the box: goldmark renders,
// registries default to empty (permissive validation), and logging is a no-op
// unless enabled.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.renderer == nil {
		m.renderer = markdown.NewGoldmarkRenderer(interfaces.RenderOptions{
			Extensions: cfg.Render.Extensions,
			Sanitize:   cfg.Render.Sanitize,
			HardWraps:  cfg.Render.HardWraps,
			SafeMode:   cfg.Render.SafeMode,
		})
	}

	if m.cacheProv == nil && cfg.Cache.Enabled {
		provider, err := buildCacheProvider(cfg.Cache)
		if err != nil {
			return nil, err
		}
		m.cacheProv = provider
	}

	m.resolver = resolver.New(cfg.Overrides)
	m.validator = validator.New(m.registry,
		validator.WithRules(m.rules...),
		validator.WithLogger(logging.ValidatorLogger(m.provider)),
	)
	m.pipeline = pipeline.New(
		pipeline.WithRenderer(m.renderer),
		pipeline.WithResolver(m.resolver),
		pipeline.WithLogger(logging.PipelineLogger(m.provider)),
	)
	m.engine = batch.New(m.validator, m.pipeline,
		batch.WithCache(m.cacheProv),
		batch.WithCacheTTL(cfg.Cache.DefaultTTL),
		batch.WithThreshold(cfg.Batch.Threshold),
		batch.WithLogger(logging.BatchLogger(m.provider)),
	)

	if m.process == nil {
		m.process = m.revalidateFile
	}
	watcherOpts := []watcher.Option{
		watcher.WithLogger(logging.WatcherLogger(m.provider)),
		watcher.WithIdleInterval(cfg.Watcher.IdleInterval),
	}
	if m.callback != nil {
		watcherOpts = append(watcherOpts, watcher.WithCallback(m.callback))
	}
	m.watcher = watcher.New(m.process, watcherOpts...)

	return m, nil
}

// Scan extracts cross-reference markers from source in document order.
// Markers inside fenced code blocks are ignored.
func (m *Module) Scan(source string) []Reference {
	return scanner.Scan(source)
}

// Resolve fills in the canonical URL for each reference.
func (m *Module) Resolve(refs []Reference) []Reference {
	return m.resolver.ResolveAll(refs)
}

// ResolveURL resolves a single kind/target pair to its canonical URL.
func (m *Module) ResolveURL(kind Kind, target string) string {
	return m.resolver.Resolve(kind, target)
}

// Validate checks a single reference against its kind's registry.
func (m *Module) Validate(ref Reference) Reference {
	return m.validator.Validate(ref)
}

// ValidateAll validates every reference and builds an aggregate report.
func (m *Module) ValidateAll(refs []Reference) ([]Reference, *ValidationReport) {
	return m.validator.ValidateAll(refs)
}

// ValidateBatch validates references with the configured concurrency policy.
func (m *Module) ValidateBatch(ctx context.Context, refs []Reference, opts ProcessOptions) *BatchResult {
	return m.engine.ValidateBatch(ctx, refs, m.withBatchDefaults(opts))
}

// Process runs the full scan, resolve, render, and optionally validate
// pipeline over one document.
func (m *Module) Process(ctx context.Context, source string, opts ProcessOptions) (*Result, error) {
	return m.engine.ProcessDocument(ctx, source, m.withBatchDefaults(opts))
}

// ProcessDocuments processes many documents, fanning out when the options
// request concurrency. Failed documents yield placeholder results in their
// slots.
func (m *Module) ProcessDocuments(ctx context.Context, docs []Document, opts ProcessOptions) []*Result {
	return m.engine.ProcessDocuments(ctx, docs, m.withBatchDefaults(opts))
}

// Watcher exposes the continuous validation worker.
func (m *Module) Watcher() *Watcher {
	return m.watcher
}

// FileSource feeds file-system change notifications into the watcher.
// Callers own the returned source and must Close it.
func (m *Module) FileSource(filters ...watcher.FileFilter) (*watcher.FileSource, error) {
	source, err := watcher.NewFileSource(m.watcher, logging.WatcherLogger(m.provider), filters...)
	if err != nil {
		return nil, err
	}
	for _, path := range m.cfg.Watcher.Paths {
		if m.cfg.Watcher.Recursive {
			err = source.AddRecursive(path)
		} else {
			err = source.Add(path)
		}
		if err != nil {
			source.Close()
			return nil, err
		}
	}
	return source, nil
}

// InvalidateCache drops a single memoised result.
func (m *Module) InvalidateCache(ctx context.Context, key string) error {
	if m.cacheProv == nil {
		return nil
	}
	return m.cacheProv.Delete(ctx, key)
}

// ClearCache drops every memoised result.
func (m *Module) ClearCache(ctx context.Context) error {
	if m.cacheProv == nil {
		return nil
	}
	return m.cacheProv.Clear(ctx)
}

// CacheKey derives a stable cache key from arbitrary parts.
func CacheKey(parts ...string) string {
	return cache.Key(parts...)
}

func (m *Module) withBatchDefaults(opts ProcessOptions) ProcessOptions {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = m.cfg.Batch.MaxWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = m.cfg.Batch.Timeout
	}
	return opts
}

func (m *Module) revalidateFile(ctx context.Context, path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := m.withBatchDefaults(ProcessOptions{
		ValidateCrossRefs:    true,
		GenerateErrorReports: true,
	})
	return m.engine.ProcessDocument(ctx, string(content), opts)
}

func buildLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	format := cfg.Format
	if format == "" && cfg.Provider == "console" {
		format = "console"
	}
	return gologger.NewProvider(gologger.Config{
		Level:     cfg.Level,
		Format:    format,
		AddSource: cfg.AddSource,
		Focus:     cfg.Focus,
	})
}

func buildCacheProvider(cfg CacheConfig) (interfaces.CacheProvider, error) {
	if cfg.Provider == "lru" {
		return cache.NewLRU(cfg.MaxEntries)
	}
	return cache.NewMemory(), nil
}
