package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// Static is a thread-safe in-memory implementation of interfaces.Registry.
// Hosts that keep their catalog in memory (resource modules, generated doc
// slugs) can seed one per kind; anything answering the Registry contract
// works equally well.
type Static struct {
	mu      sync.RWMutex
	targets map[string]struct{}
	meta    map[string]map[string]any
}

// NewStatic constructs a registry pre-seeded with the supplied targets.
func NewStatic(targets ...string) *Static {
	s := &Static{
		targets: make(map[string]struct{}, len(targets)),
		meta:    make(map[string]map[string]any),
	}
	for _, target := range targets {
		s.Add(target)
	}
	return s
}

// Add registers a target. Empty targets are ignored.
func (s *Static) Add(target string) {
	if strings.TrimSpace(target) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[target] = struct{}{}
}

// AddWithMetadata registers a target along with descriptive metadata, e.g.
// the actions a resource supports.
func (s *Static) AddWithMetadata(target string, meta map[string]any) {
	if strings.TrimSpace(target) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[target] = struct{}{}
	if len(meta) > 0 {
		copied := make(map[string]any, len(meta))
		for k, v := range meta {
			copied[k] = v
		}
		s.meta[target] = copied
	}
}

// Remove deletes the target if it exists.
func (s *Static) Remove(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, target)
	delete(s.meta, target)
}

// Exists reports whether the target is known.
func (s *Static) Exists(target string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.targets[target]
	return ok
}

// Targets returns all known targets in lexical order.
func (s *Static) Targets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.targets))
	for target := range s.targets {
		result = append(result, target)
	}
	sort.Strings(result)
	return result
}

// Describe satisfies interfaces.RegistryDescriber.
func (s *Static) Describe(target string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.meta[target]
	if !ok {
		return nil, false
	}
	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied, true
}

// Ensure Static implements the registry contracts.
var _ interfaces.Registry = (*Static)(nil)
var _ interfaces.RegistryDescriber = (*Static)(nil)

// FuncRegistry adapts a pair of functions to the Registry contract so hosts
// backed by a database or query API can avoid materialising target sets.
type FuncRegistry struct {
	ExistsFunc  func(target string) bool
	TargetsFunc func() []string
}

func (f FuncRegistry) Exists(target string) bool {
	if f.ExistsFunc == nil {
		return false
	}
	return f.ExistsFunc(target)
}

func (f FuncRegistry) Targets() []string {
	if f.TargetsFunc == nil {
		return nil
	}
	return f.TargetsFunc()
}

var _ interfaces.Registry = FuncRegistry{}
