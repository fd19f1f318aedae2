package capability

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Registry maps provider names to invocation handles. It is safe for
// concurrent reads during turns; registration normally happens at startup
// or from the config watcher, never from within a turn.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider

	// allowlists maps provider name to glob patterns of permitted actions.
	// A provider with no allowlist accepts every action.
	allowlists map[string][]string
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		providers:  make(map[string]Provider),
		allowlists: make(map[string][]string),
	}
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Deregister removes a provider and its allowlist.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
	delete(r.allowlists, name)
}

// SetAllowlist restricts a provider to actions matching the given glob
// patterns (doublestar syntax, e.g. "get_*", "fetch_*"). An empty pattern
// list removes the restriction.
func (r *Registry) SetAllowlist(name string, patterns []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(patterns) == 0 {
		delete(r.allowlists, name)
		return
	}
	r.allowlists[name] = append([]string(nil), patterns...)
}

// Resolve returns the provider registered under name, or nil.
func (r *Registry) Resolve(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// List returns all registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// actionAllowed checks a provider's allowlist for the given action.
func (r *Registry) actionAllowed(provider, action string) bool {
	r.mu.RLock()
	patterns, restricted := r.allowlists[provider]
	r.mu.RUnlock()

	if !restricted {
		return true
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, action); err == nil && ok {
			return true
		}
	}
	return false
}

// Invoke resolves a provider by name, checks the action allowlist, and
// executes the action. Lookup failures and allowlist rejections come back
// as structured Fail responses so callers can apply their partial-failure
// policy uniformly.
func (r *Registry) Invoke(ctx context.Context, provider, action string, params map[string]Value) (*Response, error) {
	p := r.Resolve(provider)
	if p == nil {
		return Fail(fmt.Sprintf("provider %s not available", provider)), nil
	}
	if !r.actionAllowed(provider, action) {
		return Fail(fmt.Sprintf("action %s not permitted for provider %s", action, provider)), nil
	}
	return p.Invoke(ctx, action, params)
}
