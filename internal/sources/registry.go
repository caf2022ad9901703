package sources

import (
	"sort"
	"sync"
)

// Registry holds the configured source adapters together with their
// static profiles. Registration happens at startup; after that the
// registry is effectively read-only and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]SourceAdapter
	profiles *Profiles
}

// NewRegistry creates a registry over the given profile table.
func NewRegistry(profiles *Profiles) *Registry {
	if profiles == nil {
		profiles = NewProfiles(nil)
	}
	return &Registry{
		adapters: make(map[string]SourceAdapter),
		profiles: profiles,
	}
}

// Register adds an adapter to the registry, replacing any adapter with
// the same name.
func (r *Registry) Register(adapter SourceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Name()] = adapter
}

// Get returns an adapter by name, or nil if not registered.
func (r *Registry) Get(name string) SourceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[name]
}

// Profile returns the static profile for a source.
func (r *Registry) Profile(name string) Profile {
	return r.profiles.Get(name)
}

// Names returns the names of all registered adapters, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the adapter set for one request. An empty allow-list
// selects all enabled adapters; otherwise only the named adapters that
// are registered and enabled are returned. Unknown names are skipped.
// The result is ordered by name for deterministic dispatch.
func (r *Registry) Select(allowList []string) []SourceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	if len(allowList) == 0 {
		for name := range r.adapters {
			names = append(names, name)
		}
	} else {
		seen := make(map[string]bool, len(allowList))
		for _, name := range allowList {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := r.adapters[name]; ok {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	selected := make([]SourceAdapter, 0, len(names))
	for _, name := range names {
		if a := r.adapters[name]; a.IsEnabled() {
			selected = append(selected, a)
		}
	}
	return selected
}
