package pipeline

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-crossref/internal/logging"
	"github.com/goliatone/go-crossref/internal/markdown"
	"github.com/goliatone/go-crossref/internal/resolver"
	"github.com/goliatone/go-crossref/internal/scanner"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// RenderError wraps an external renderer failure. The pipeline never returns
// partial HTML alongside it.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("crossref: markdown render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Pipeline produces final HTML for a document while shielding cross-reference
// markers from the external markdown renderer. Markers are swapped for opaque
// tokens before rendering and restored as the engine's own anchor markup
// afterwards, so the renderer never sees the custom URI scheme.
type Pipeline struct {
	renderer    interfaces.MarkdownRenderer
	resolver    *resolver.Resolver
	logger      interfaces.Logger
	tokenPrefix func() string
}

// Option configures the pipeline instance.
type Option func(*Pipeline)

// WithRenderer overrides the markdown renderer collaborator.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(p *Pipeline) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

// WithResolver overrides the default URL resolver.
func WithResolver(res *resolver.Resolver) Option {
	return func(p *Pipeline) {
		if res != nil {
			p.resolver = res
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTokenPrefix fixes the per-document token prefix, mainly for tests that
// assert on intermediate output.
func WithTokenPrefix(prefix string) Option {
	return func(p *Pipeline) {
		p.tokenPrefix = func() string { return prefix }
	}
}

// New constructs a pipeline with the goldmark renderer and default resolver.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer:    markdown.NewGoldmarkRenderer(interfaces.RenderOptions{}),
		resolver:    resolver.New(nil),
		logger:      logging.NoOp(),
		tokenPrefix: defaultTokenPrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process renders the document and returns the final HTML plus the resolved
// references, in document order. Disabled kinds are left for the renderer to
// treat as ordinary text. A renderer failure returns a RenderError and no
// HTML.
func (p *Pipeline) Process(ctx context.Context, source string, opts interfaces.ProcessOptions) (string, []interfaces.Reference, error) {
	logger := logging.WithFields(p.baseLogger(ctx), map[string]any{
		"operation": "crossref.process",
	})

	matches := scanner.ScanMatches(source)
	filtered := matches[:0:0]
	for _, m := range matches {
		if opts.Disabled(m.Ref.Kind) {
			continue
		}
		filtered = append(filtered, m)
	}

	// Call overrides layer on top of the configured ones rather than
	// replacing them, so module-level overrides survive per-call tweaks.
	res := p.resolver.With(opts.URLOverrides)

	refs := make([]interfaces.Reference, len(filtered))
	for i, m := range filtered {
		ref := m.Ref
		ref.URL = res.Resolve(ref.Kind, ref.Target)
		refs[i] = ref
	}

	// Substitute line by line so marker-shaped text inside fenced code
	// blocks is never touched.
	prefix := p.tokenPrefix()
	lines := strings.Split(source, "\n")
	tokens := make([]string, len(filtered))
	for i, m := range filtered {
		token := fmt.Sprintf("%s-%d", prefix, i)
		tokens[i] = token
		idx := m.Ref.LineNumber - 1
		lines[idx] = strings.Replace(lines[idx], m.Raw, token, 1)
	}

	rendered, err := p.renderer.RenderWithOptions([]byte(strings.Join(lines, "\n")), opts.Render)
	if err != nil {
		logging.WithFields(logger, map[string]any{
			"error": err,
		}).Error("pipeline.render_failed")
		return "", nil, &RenderError{Err: err}
	}

	output := string(rendered)
	for i, token := range tokens {
		output = strings.ReplaceAll(output, token, Anchor(refs[i]))
	}

	logging.WithFields(logger, map[string]any{
		"references": len(refs),
	}).Debug("pipeline.process_completed")

	return output, refs, nil
}

// Anchor builds the engine's anchor markup for a resolved reference. The CSS
// class encodes the kind, with an internal variant for documentation-only
// kinds; data attributes carry kind and target for client-side tooling.
func Anchor(ref interfaces.Reference) string {
	classes := "xref xref-" + string(ref.Kind)
	if ref.Kind.Internal() {
		classes += " xref-internal"
	}
	return fmt.Sprintf(
		`<a href="%s" class="%s" data-xref-kind="%s" data-xref-target="%s">%s</a>`,
		html.EscapeString(ref.URL),
		classes,
		html.EscapeString(string(ref.Kind)),
		html.EscapeString(ref.Target),
		html.EscapeString(ref.DisplayText),
	)
}

// BuildPreviews extracts the source-line excerpt for each reference.
func BuildPreviews(source string, refs []interfaces.Reference) []interfaces.Preview {
	if len(refs) == 0 {
		return nil
	}
	lines := strings.Split(source, "\n")
	previews := make([]interfaces.Preview, 0, len(refs))
	for _, ref := range refs {
		excerpt := ""
		if ref.LineNumber >= 1 && ref.LineNumber <= len(lines) {
			excerpt = strings.TrimSpace(lines[ref.LineNumber-1])
		}
		previews = append(previews, interfaces.Preview{
			LineNumber: ref.LineNumber,
			Target:     ref.Target,
			Excerpt:    excerpt,
		})
	}
	return previews
}

func (p *Pipeline) baseLogger(ctx context.Context) interfaces.Logger {
	logger := p.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

// defaultTokenPrefix yields a per-document sentinel that cannot collide with
// document content or renderer output.
func defaultTokenPrefix() string {
	return "xref-tok-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
