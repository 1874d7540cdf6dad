package interfaces

// Registry answers existence queries for one kind's targets. Registries are
// supplied by the host application (its resource/module catalogs); the engine
// never writes to them.
type Registry interface {
	// Exists reports whether the target is known.
	Exists(target string) bool
	// Targets lists every known target. The slice feeds the suggestion
	// search; order is not significant.
	Targets() []string
}

// RegistryDescriber is an optional registry upgrade exposing per-target
// metadata (supported actions, exported functions, and so on). Metadata
// absence never fails validation.
type RegistryDescriber interface {
	Describe(target string) (map[string]any, bool)
}

// RegistrySet maps each kind to its registry. Missing entries degrade to a
// permissive "nothing exists" lookup rather than an error.
type RegistrySet map[Kind]Registry
