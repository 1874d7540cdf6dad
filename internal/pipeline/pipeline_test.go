package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-crossref/internal/resolver"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

type failingRenderer struct{}

func (failingRenderer) Render([]byte) ([]byte, error) {
	return nil, errors.New("renderer exploded")
}

func (failingRenderer) RenderWithOptions([]byte, interfaces.RenderOptions) ([]byte, error) {
	return nil, errors.New("renderer exploded")
}

type echoRenderer struct{}

func (echoRenderer) Render(markdown []byte) ([]byte, error) {
	return markdown, nil
}

func (echoRenderer) RenderWithOptions(markdown []byte, _ interfaces.RenderOptions) ([]byte, error) {
	return markdown, nil
}

func TestPipeline_TokenRoundTrip(t *testing.T) {
	p := New()
	source := "See [User](ash:Accounts.User) and [Guide](dev:guides/setup)."

	html, refs, err := p.Process(context.Background(), source, interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("Process() expected 2 references, got %d", len(refs))
	}
	if got := strings.Count(html, `data-xref-kind=`); got != 2 {
		t.Fatalf("Process() expected 2 anchors, got %d in %q", got, html)
	}
	if strings.Contains(html, "ash:") || strings.Contains(html, "dev:") {
		t.Fatalf("Process() leaked marker syntax: %q", html)
	}
	if strings.Contains(html, "xref-tok-") {
		t.Fatalf("Process() leaked placeholder tokens: %q", html)
	}
	if !strings.Contains(html, `href="/api/ash/Accounts.User"`) {
		t.Fatalf("Process() missing resolved URL: %q", html)
	}
}

func TestPipeline_InternalClassForDocKinds(t *testing.T) {
	p := New()

	html, _, err := p.Process(context.Background(), "[Guide](user:getting-started)", interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(html, "xref-internal") {
		t.Fatalf("Process() expected internal class for user docs: %q", html)
	}

	html, _, err = p.Process(context.Background(), "[User](ash:Accounts.User)", interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Contains(html, "xref-internal") {
		t.Fatalf("Process() must not mark resource refs internal: %q", html)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	p := New()
	source := "# Title\n\n[A](ash:One) then [B](exdoc:Two)\n"
	opts := interfaces.ProcessOptions{}

	first, refs1, err := p.Process(context.Background(), source, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	second, refs2, err := p.Process(context.Background(), source, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if first != second {
		t.Fatalf("Process() not idempotent:\n%q\n%q", first, second)
	}
	if !reflect.DeepEqual(refs1, refs2) {
		t.Fatalf("Process() reference lists differ across runs:\n%#v\n%#v", refs1, refs2)
	}
}

func TestPipeline_CodeBlocksUntouched(t *testing.T) {
	p := New()
	source := "```\n[X](ash:Foo)\n```\n\n[Y](ash:Bar)"

	html, refs, err := p.Process(context.Background(), source, interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(refs) != 1 {
		t.Fatalf("Process() expected 1 reference, got %d", len(refs))
	}
	// The literal marker must survive inside the code block.
	if !strings.Contains(html, "[X](ash:Foo)") {
		t.Fatalf("Process() corrupted code block content: %q", html)
	}
	if got := strings.Count(html, "data-xref-kind"); got != 1 {
		t.Fatalf("Process() expected exactly 1 anchor, got %d", got)
	}
}

func TestPipeline_DuplicateMarkersGetDistinctTokens(t *testing.T) {
	p := New()
	source := "[U](ash:User) and again [U](ash:User)"

	html, refs, err := p.Process(context.Background(), source, interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("Process() expected 2 references, got %d", len(refs))
	}
	if got := strings.Count(html, "data-xref-target"); got != 2 {
		t.Fatalf("Process() expected 2 anchors for duplicate markers, got %d", got)
	}
}

func TestPipeline_DisabledKindsSkipped(t *testing.T) {
	p := New()
	source := "[A](ash:One) and [D](dev:two)"

	html, refs, err := p.Process(context.Background(), source, interfaces.ProcessOptions{
		DisabledKinds: []interfaces.Kind{interfaces.KindDevDoc},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(refs) != 1 || refs[0].Kind != interfaces.KindResource {
		t.Fatalf("Process() expected only resource ref, got %v", refs)
	}
	if strings.Contains(html, "xref-dev") {
		t.Fatalf("Process() rendered a disabled kind: %q", html)
	}
}

func TestPipeline_RenderFailureReturnsNoPartialHTML(t *testing.T) {
	p := New(WithRenderer(failingRenderer{}))

	html, refs, err := p.Process(context.Background(), "[A](ash:One)", interfaces.ProcessOptions{})
	if err == nil {
		t.Fatalf("Process() expected render error")
	}
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Process() expected RenderError, got %T", err)
	}
	if html != "" || refs != nil {
		t.Fatalf("Process() must not return partial output on failure")
	}
}

func TestPipeline_TokensSubstitutedBeforeRendering(t *testing.T) {
	p := New(WithRenderer(echoRenderer{}), WithTokenPrefix("xref-tok-fixed"))

	html, _, err := p.Process(context.Background(), "[A](ash:One)", interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// The echo renderer returns its input, so the anchor replaces the
	// token exactly where the marker used to be.
	if html != `<a href="/api/ash/One" class="xref xref-ash" data-xref-kind="ash" data-xref-target="One">A</a>` {
		t.Fatalf("Process() wrong final markup: %q", html)
	}
}

func TestPipeline_URLOverridesApply(t *testing.T) {
	p := New(WithRenderer(echoRenderer{}))

	html, _, err := p.Process(context.Background(), "[A](ash:One)", interfaces.ProcessOptions{
		URLOverrides: map[interfaces.Kind]interfaces.URLOverride{
			interfaces.KindResource: {BaseURL: "https://api.example.com"},
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(html, `href="https://api.example.com/api/ash/One"`) {
		t.Fatalf("Process() expected overridden URL: %q", html)
	}
}

func TestPipeline_URLOverridesLayerOnConfigured(t *testing.T) {
	res := resolver.New(map[interfaces.Kind]interfaces.URLOverride{
		interfaces.KindResource: {BaseURL: "https://api.example.com"},
	})
	p := New(WithRenderer(echoRenderer{}), WithResolver(res))

	html, _, err := p.Process(context.Background(), "[A](ash:One) [B](dev:setup)", interfaces.ProcessOptions{
		URLOverrides: map[interfaces.Kind]interfaces.URLOverride{
			interfaces.KindDevDoc: {BaseURL: "https://dev.example.com"},
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// The configured resource override survives a call override that only
	// touches dev docs.
	if !strings.Contains(html, `href="https://api.example.com/api/ash/One"`) {
		t.Fatalf("Process() dropped configured override: %q", html)
	}
	if !strings.Contains(html, `href="https://dev.example.com/docs/dev/setup"`) {
		t.Fatalf("Process() expected call override applied: %q", html)
	}
}

func TestPipeline_EmptyDocument(t *testing.T) {
	p := New()

	html, refs, err := p.Process(context.Background(), "", interfaces.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("Process() expected no references, got %d", len(refs))
	}
	_ = html
}

func TestBuildPreviews(t *testing.T) {
	source := "intro\nSee [User](ash:Accounts.User) here.\n"
	refs := []interfaces.Reference{{Kind: interfaces.KindResource, Target: "Accounts.User", LineNumber: 2}}

	previews := BuildPreviews(source, refs)

	if len(previews) != 1 {
		t.Fatalf("BuildPreviews() expected 1 preview, got %d", len(previews))
	}
	if previews[0].Excerpt != "See [User](ash:Accounts.User) here." {
		t.Fatalf("BuildPreviews() wrong excerpt: %q", previews[0].Excerpt)
	}
}
