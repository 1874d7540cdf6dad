package resolver

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// routeName is the single named route registered per kind group.
const routeName = "ref"

// targetParam is the placeholder each route template must carry.
const targetParam = ":target"

// defaultPaths are the canonical URL templates per kind.
var defaultPaths = map[interfaces.Kind]string{
	interfaces.KindResource: "/api/ash/:target",
	interfaces.KindModule:   "/api/exdoc/:target",
	interfaces.KindDevDoc:   "/docs/dev/:target",
	interfaces.KindUserDoc:  "/docs/user/:target",
}

// unknownKindPath keeps resolution total for kinds outside the closed set.
const unknownKindPath = "/docs/:target"

// Resolver maps a (kind, target) pair onto a canonical URL. Resolution is a
// pure template substitution: no I/O, no existence check, and it never fails.
// One go-urlkit route group is registered per kind so each kind can carry its
// own base URL.
type Resolver struct {
	manager   *urlkit.RouteManager
	paths     map[interfaces.Kind]string
	bases     map[interfaces.Kind]string
	overrides map[interfaces.Kind]interfaces.URLOverride

	groupCache map[interfaces.Kind]*urlkit.Group
	mu         sync.RWMutex
}

// New constructs a resolver from the default templates, applying any per-kind
// overrides. An override with an empty Path keeps the default template and
// only swaps the base URL.
func New(overrides map[interfaces.Kind]interfaces.URLOverride) *Resolver {
	paths := make(map[interfaces.Kind]string, len(defaultPaths))
	bases := make(map[interfaces.Kind]string, len(defaultPaths))
	kept := make(map[interfaces.Kind]interfaces.URLOverride, len(overrides))

	for kind, path := range defaultPaths {
		paths[kind] = path
	}
	for kind, override := range overrides {
		if !kind.Known() {
			continue
		}
		if trimmed := strings.TrimSpace(override.Path); trimmed != "" {
			paths[kind] = trimmed
		}
		bases[kind] = strings.TrimSpace(override.BaseURL)
		kept[kind] = override
	}

	groups := make([]urlkit.GroupConfig, 0, len(paths))
	for _, kind := range interfaces.Kinds() {
		groups = append(groups, urlkit.GroupConfig{
			Name:    string(kind),
			BaseURL: bases[kind],
			Paths: map[string]string{
				routeName: paths[kind],
			},
		})
	}

	return &Resolver{
		manager:    urlkit.NewRouteManager(&urlkit.Config{Groups: groups}),
		paths:      paths,
		bases:      bases,
		overrides:  kept,
		groupCache: make(map[interfaces.Kind]*urlkit.Group),
	}
}

// With layers the supplied overrides on top of the resolver's own,
// returning a new resolver. Per kind, an empty Path or BaseURL inherits
// from the existing override so callers can swap only the piece they
// care about. With no overrides the receiver is returned unchanged.
func (r *Resolver) With(overrides map[interfaces.Kind]interfaces.URLOverride) *Resolver {
	if len(overrides) == 0 {
		return r
	}

	merged := make(map[interfaces.Kind]interfaces.URLOverride, len(r.overrides)+len(overrides))
	for kind, override := range r.overrides {
		merged[kind] = override
	}
	for kind, override := range overrides {
		base := merged[kind]
		if trimmed := strings.TrimSpace(override.Path); trimmed != "" {
			base.Path = trimmed
		}
		if trimmed := strings.TrimSpace(override.BaseURL); trimmed != "" {
			base.BaseURL = trimmed
		}
		merged[kind] = base
	}

	return New(merged)
}

// Resolve returns the canonical URL for the reference. Unknown targets still
// resolve; existence is the registry validator's concern. Unknown kinds fall
// back to a generic documentation path.
func (r *Resolver) Resolve(kind interfaces.Kind, target string) string {
	if !kind.Known() {
		return strings.ReplaceAll(unknownKindPath, targetParam, target)
	}

	// Route params are single path segments; multi-segment targets go
	// through plain template substitution instead.
	if !strings.Contains(target, "/") {
		if url, err := r.build(kind, target); err == nil && url != "" {
			return url
		}
	}

	return r.bases[kind] + strings.ReplaceAll(r.paths[kind], targetParam, target)
}

// ResolveAll populates the URL field of every reference in place-of-copy
// fashion, returning a new slice.
func (r *Resolver) ResolveAll(refs []interfaces.Reference) []interfaces.Reference {
	out := make([]interfaces.Reference, len(refs))
	for i, ref := range refs {
		ref.URL = r.Resolve(ref.Kind, ref.Target)
		out[i] = ref
	}
	return out
}

func (r *Resolver) build(kind interfaces.Kind, target string) (string, error) {
	group, err := r.group(kind)
	if err != nil || group == nil {
		return "", err
	}

	builder, err := safeBuilder(group, routeName)
	if err != nil || builder == nil {
		return "", err
	}

	return builder.WithParam("target", target).Build()
}

func (r *Resolver) group(kind interfaces.Kind) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[kind]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	group, err := lookupGroup(r.manager, string(kind))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.groupCache[kind] = group
	r.mu.Unlock()
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("resolver: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("resolver: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("resolver: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}
