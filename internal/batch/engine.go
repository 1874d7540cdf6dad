package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-crossref/internal/cache"
	"github.com/goliatone/go-crossref/internal/export"
	"github.com/goliatone/go-crossref/internal/logging"
	"github.com/goliatone/go-crossref/internal/pipeline"
	"github.com/goliatone/go-crossref/internal/validator"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

const (
	// DefaultThreshold is the reference count above which a concurrent
	// batch actually fans out.
	DefaultThreshold = 10
	// DefaultTimeout bounds a whole concurrent batch.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxWorkers bounds in-flight validations.
	DefaultMaxWorkers = 8
)

const processTimedOutMsg = "document processing timed out"

// ValidateFunc validates a single reference. Injectable so tests can model
// slow or failing validators.
type ValidateFunc func(ref interfaces.Reference) interfaces.Reference

// Engine runs validation over many references or documents with bounded
// concurrency, per-unit timeouts, and aggregate reporting. Shared registries
// are read-only; each unit writes only its own result slot and aggregation
// happens after all units settle.
type Engine struct {
	pipeline  *pipeline.Pipeline
	validate  ValidateFunc
	cacheTTL  time.Duration
	cache     interfaces.CacheProvider
	logger    interfaces.Logger
	clock     func() time.Time
	threshold int
}

// Option customises engine behaviour.
type Option func(*Engine)

// WithCache supplies the provider used when processing options request
// memoisation.
func WithCache(provider interfaces.CacheProvider) Option {
	return func(e *Engine) {
		e.cache = provider
	}
}

// WithCacheTTL bounds the lifetime of memoised results. Zero keeps entries
// until invalidated.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock injects a clock for deterministic timing tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithThreshold overrides the reference count above which concurrency kicks in.
func WithThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

// WithValidateFunc replaces the per-reference validation function.
func WithValidateFunc(fn ValidateFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.validate = fn
		}
	}
}

// New constructs an engine over the supplied validator and pipeline. A nil
// validator degrades to permissive validation; a nil pipeline gets defaults.
func New(v *validator.Validator, p *pipeline.Pipeline, opts ...Option) *Engine {
	if v == nil {
		v = validator.New(nil)
	}
	if p == nil {
		p = pipeline.New()
	}
	e := &Engine{
		pipeline:  p,
		validate:  v.Validate,
		logger:    logging.NoOp(),
		clock:     time.Now,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateBatch validates the references, fanning out when the options ask
// for concurrency and the batch is large enough to justify it. Units that do
// not settle before the batch timeout are abandoned and excluded from the
// results; TimedOut communicates the under-count.
func (e *Engine) ValidateBatch(ctx context.Context, refs []interfaces.Reference, opts interfaces.ProcessOptions) *interfaces.BatchResult {
	start := e.clock()
	concurrent := opts.Concurrent && len(refs) > e.threshold

	result := &interfaces.BatchResult{Concurrent: concurrent}
	if concurrent {
		result.Results, result.TimedOut = e.validateConcurrent(ctx, refs, opts)
	} else {
		results := make([]interfaces.Reference, len(refs))
		for i, ref := range refs {
			results[i] = e.validate(ref)
		}
		result.Results = results
	}
	result.ProcessingTime = e.clock().Sub(start)

	logging.WithFields(e.baseLogger(ctx), map[string]any{
		"operation":   "crossref.validate_batch",
		"references":  len(refs),
		"concurrent":  concurrent,
		"timed_out":   result.TimedOut,
		"duration_ms": result.ProcessingTime.Milliseconds(),
	}).Debug("batch.validate_completed")

	return result
}

func (e *Engine) validateConcurrent(ctx context.Context, refs []interfaces.Reference, opts interfaces.ProcessOptions) ([]interfaces.Reference, bool) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		slots = make([]*interfaces.Reference, len(refs))
		sem   = make(chan struct{}, workers)
	)

	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			verdict := e.validate(refs[i])

			// Late units are abandoned: past the deadline nothing may
			// contribute a result.
			mu.Lock()
			if ctx.Err() == nil {
				slots[i] = &verdict
			}
			mu.Unlock()
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	results := make([]interfaces.Reference, 0, len(refs))
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	return results, len(results) < len(refs)
}

// ProcessDocument runs the full pipeline over one document, gated by the
// option flags. On failure it returns a failure envelope alongside the typed
// error so callers can consume either shape; broken links populate the
// envelope's BrokenLinks list.
func (e *Engine) ProcessDocument(ctx context.Context, source string, opts interfaces.ProcessOptions) (*interfaces.Result, error) {
	if err := validateOptions(opts); err != nil {
		wrapped := wrapOptionsError(err)
		return failure(wrapped.Error(), nil), wrapped
	}

	key := opts.CacheKey
	if key == "" && opts.Cache {
		key = cache.Key(source, optionsFingerprint(opts))
	}

	value, hit, err := cache.GetOrCompute(ctx, e.cache, key, e.cacheTTL, func() (any, error) {
		return e.processDocument(ctx, source, opts)
	})
	if err != nil {
		return failureFromError(err), wrapProcessError(err)
	}

	result, ok := value.(*interfaces.Result)
	if !ok {
		// A foreign value under our key; recompute rather than failing.
		result, err = e.processDocument(ctx, source, opts)
		if err != nil {
			return failureFromError(err), wrapProcessError(err)
		}
		hit = false
	}

	if hit {
		// Callers may mutate the returned result, so the cached entry
		// hands out a deep copy.
		copied := cloneResult(result)
		copied.CacheHit = true
		return copied, nil
	}
	return result, nil
}

func cloneResult(in *interfaces.Result) *interfaces.Result {
	out := *in
	out.CrossRefs = cloneRefs(in.CrossRefs)
	out.BrokenLinks = cloneRefs(in.BrokenLinks)
	if in.Previews != nil {
		out.Previews = append([]interfaces.Preview(nil), in.Previews...)
	}
	if in.ValidationReport != nil {
		report := *in.ValidationReport
		report.Entries = cloneRefs(in.ValidationReport.Entries)
		out.ValidationReport = &report
	}
	if in.ErrorReport != nil {
		report := *in.ErrorReport
		report.Entries = cloneRefs(in.ErrorReport.Entries)
		if in.ErrorReport.ByKind != nil {
			report.ByKind = make(map[interfaces.Kind]int, len(in.ErrorReport.ByKind))
			for kind, count := range in.ErrorReport.ByKind {
				report.ByKind[kind] = count
			}
		}
		out.ErrorReport = &report
	}
	if in.ExportData != nil {
		record := *in.ExportData
		record.References = cloneRefs(in.ExportData.References)
		if in.ExportData.Kinds != nil {
			record.Kinds = append([]interfaces.Kind(nil), in.ExportData.Kinds...)
		}
		out.ExportData = &record
	}
	return &out
}

func cloneRefs(in []interfaces.Reference) []interfaces.Reference {
	if in == nil {
		return nil
	}
	out := make([]interfaces.Reference, len(in))
	for i, ref := range in {
		if ref.Valid != nil {
			valid := *ref.Valid
			ref.Valid = &valid
		}
		if ref.Exists != nil {
			exists := *ref.Exists
			ref.Exists = &exists
		}
		if ref.Suggestions != nil {
			ref.Suggestions = append([]string(nil), ref.Suggestions...)
		}
		if ref.Metadata != nil {
			meta := make(map[string]any, len(ref.Metadata))
			for k, v := range ref.Metadata {
				meta[k] = v
			}
			ref.Metadata = meta
		}
		out[i] = ref
	}
	return out
}

func (e *Engine) processDocument(ctx context.Context, source string, opts interfaces.ProcessOptions) (*interfaces.Result, error) {
	html, refs, err := e.pipeline.Process(ctx, source, opts)
	if err != nil {
		return nil, err
	}

	result := &interfaces.Result{
		Success:   true,
		HTML:      html,
		CrossRefs: refs,
	}

	if opts.ValidateCrossRefs || opts.FailOnBrokenLinks {
		validated := make([]interfaces.Reference, len(refs))
		for i, ref := range refs {
			validated[i] = e.validate(ref)
		}
		report := validator.BuildReport(validated)
		result.CrossRefs = validated
		result.ValidationReport = report

		if opts.GenerateErrorReports {
			result.ErrorReport = export.BuildErrorReport(validated)
		}

		if opts.FailOnBrokenLinks && report.HasErrors {
			var broken []interfaces.Reference
			for _, ref := range validated {
				if !ref.IsValid() {
					broken = append(broken, ref)
				}
			}
			return nil, &BrokenLinksError{Refs: broken}
		}
	}

	if opts.GeneratePreviews {
		result.Previews = pipeline.BuildPreviews(source, result.CrossRefs)
	}
	if opts.ExportData {
		result.ExportData = export.Build(source, result.CrossRefs, result.ValidationReport)
	}

	return result, nil
}

// ProcessDocuments fans ProcessDocument over many documents with the batch
// concurrency policy. A document exceeding the per-document timeout yields a
// failed-result placeholder in its slot instead of aborting the whole run.
func (e *Engine) ProcessDocuments(ctx context.Context, docs []interfaces.Document, opts interfaces.ProcessOptions) []*interfaces.Result {
	results := make([]*interfaces.Result, len(docs))
	if len(docs) == 0 {
		return results
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	if !opts.Concurrent {
		workers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.processWithDeadline(ctx, docs[i], opts)
		}(i)
	}
	wg.Wait()
	return results
}

func (e *Engine) processWithDeadline(ctx context.Context, doc interfaces.Document, opts interfaces.ProcessOptions) *interfaces.Result {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	done := make(chan *interfaces.Result, 1)
	go func() {
		result, err := e.ProcessDocument(ctx, doc.Content, opts)
		if err != nil && result == nil {
			result = failure(err.Error(), nil)
		}
		done <- result
	}()

	select {
	case result := <-done:
		return result
	case <-time.After(timeout):
		logging.WithFields(e.baseLogger(ctx), map[string]any{
			"document": doc.Path,
		}).Warn("batch.document_timed_out")
		return failure(processTimedOutMsg, nil)
	}
}

func failure(message string, broken []interfaces.Reference) *interfaces.Result {
	return &interfaces.Result{
		Success:     false,
		Error:       message,
		BrokenLinks: broken,
	}
}

func failureFromError(err error) *interfaces.Result {
	var brokenErr *BrokenLinksError
	if errors.As(err, &brokenErr) {
		return failure(err.Error(), brokenErr.Refs)
	}
	return failure(err.Error(), nil)
}

func validateOptions(opts interfaces.ProcessOptions) error {
	return validation.ValidateStruct(&opts,
		validation.Field(&opts.MaxWorkers, validation.Min(0)),
		validation.Field(&opts.Timeout, validation.By(func(value any) error {
			if d, ok := value.(time.Duration); ok && d < 0 {
				return validation.NewError("crossref.process.timeout_negative", "timeout must not be negative")
			}
			return nil
		})),
	)
}

// optionsFingerprint reduces the options that influence output to a
// deterministic string for cache-key derivation.
func optionsFingerprint(opts interfaces.ProcessOptions) string {
	parts := []string{
		"validate=" + strconv.FormatBool(opts.ValidateCrossRefs),
		"fail=" + strconv.FormatBool(opts.FailOnBrokenLinks),
		"previews=" + strconv.FormatBool(opts.GeneratePreviews),
		"errors=" + strconv.FormatBool(opts.GenerateErrorReports),
		"export=" + strconv.FormatBool(opts.ExportData),
		"sanitize=" + strconv.FormatBool(opts.Render.Sanitize),
		"hardwraps=" + strconv.FormatBool(opts.Render.HardWraps),
		"safemode=" + strconv.FormatBool(opts.Render.SafeMode),
	}

	if len(opts.Render.Extensions) > 0 {
		parts = append(parts, "exts="+strings.Join(opts.Render.Extensions, ","))
	}

	disabled := make([]string, 0, len(opts.DisabledKinds))
	for _, kind := range opts.DisabledKinds {
		disabled = append(disabled, string(kind))
	}
	sort.Strings(disabled)
	parts = append(parts, "disabled="+strings.Join(disabled, ","))

	overrides := make([]string, 0, len(opts.URLOverrides))
	for kind, override := range opts.URLOverrides {
		overrides = append(overrides, fmt.Sprintf("%s=%s|%s", kind, override.BaseURL, override.Path))
	}
	sort.Strings(overrides)
	parts = append(parts, "overrides="+strings.Join(overrides, ";"))

	return strings.Join(parts, "&")
}

func (e *Engine) baseLogger(ctx context.Context) interfaces.Logger {
	logger := e.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}
