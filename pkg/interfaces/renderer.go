package interfaces

// MarkdownRenderer converts Markdown into HTML. The engine treats the renderer
// as an opaque collaborator: it never inspects the output beyond restoring its
// own placeholder tokens, and a renderer error fails the whole operation.
type MarkdownRenderer interface {
	// Render converts Markdown into HTML using the renderer's defaults.
	Render(markdown []byte) ([]byte, error)
	// RenderWithOptions converts Markdown into HTML using the supplied
	// overrides.
	RenderWithOptions(markdown []byte, opts RenderOptions) ([]byte, error)
}

// RenderOptions customises Markdown rendering, keeping option names readable
// for configuration unmarshalling.
type RenderOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}
