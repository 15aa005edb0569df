package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Router manages completion providers and picks one per call
type Router struct {
	providers      map[string]Provider
	factories      map[string]ProviderFactory
	localProvider  string
	remoteProvider string
	mu             sync.RWMutex
}

// NewRouter creates a router that answers with local when the profile is not in
// remote mode and with remote otherwise
func NewRouter(local, remote string) *Router {
	return &Router{
		providers:      make(map[string]Provider),
		factories:      make(map[string]ProviderFactory),
		localProvider:  local,
		remoteProvider: remote,
	}
}

// RegisterProvider registers a provider
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// RegisterFactory registers a provider built on first use
func (r *Router) RegisterFactory(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// GetProvider returns a provider by name, building it from its factory if needed
func (r *Router) GetProvider(name string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	factory, hasFactory := r.factories[name]
	r.mu.RUnlock()

	if ok {
		return p, nil
	}
	if !hasFactory {
		return nil, fmt.Errorf("provider not found: %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	p = factory()
	r.providers[name] = p
	return p, nil
}

// Select returns the provider for the profile's current mode
func (r *Router) Select(usingRemote bool) (Provider, error) {
	if usingRemote {
		return r.GetProvider(r.remoteProvider)
	}
	return r.GetProvider(r.localProvider)
}

// Remote returns the provider credentials are validated against
func (r *Router) Remote() (Provider, error) {
	return r.GetProvider(r.remoteProvider)
}

// RemoteName returns the configured remote provider name
func (r *Router) RemoteName() string {
	return r.remoteProvider
}

// ProviderInfo contains information about a completion provider
type ProviderInfo struct {
	Name   string `json:"name"`
	Remote bool   `json:"remote"`
	Active bool   `json:"active"`
}

// ProvidersInfo lists registered providers sorted by name
func (r *Router) ProvidersInfo() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]struct{}, len(r.providers)+len(r.factories))
	for name := range r.providers {
		names[name] = struct{}{}
	}
	for name := range r.factories {
		names[name] = struct{}{}
	}

	infos := make([]ProviderInfo, 0, len(names))
	for name := range names {
		info := ProviderInfo{
			Name:   name,
			Remote: name != r.localProvider,
			Active: name == r.localProvider || name == r.remoteProvider,
		}
		if p, ok := r.providers[name]; ok {
			info.Remote = p.Remote()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
