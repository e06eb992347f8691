package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Connector is a per-vendor integration module: a wrapper exposing that
// vendor's operations behind the gateway's uniform dispatch surface.
type Connector interface {
	// Vendor returns the URL slug this connector is mounted under.
	Vendor() string
	// Operations lists the operation names Execute accepts.
	Operations() []string
	// Execute runs one vendor operation for a tenant and returns the
	// business result to embed in the response envelope.
	Execute(ctx context.Context, tenantID, op string, params map[string]any) (map[string]any, error)
}

// TokenProvider yields a current access token for a tenant/vendor pair,
// refreshing through the vendor's OAuth endpoint when needed.
type TokenProvider interface {
	AccessToken(ctx context.Context, tenantID, vendor string) (string, error)
}

// Registry holds the mounted connectors keyed by vendor slug.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register mounts a connector. Registering the same vendor twice is a wiring
// bug and panics at startup.
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.connectors[c.Vendor()]; dup {
		panic(fmt.Sprintf("integration: duplicate connector for vendor %q", c.Vendor()))
	}
	r.connectors[c.Vendor()] = c
}

// Get returns the connector for a vendor slug.
func (r *Registry) Get(vendor string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}
	return c, nil
}

// Vendors returns the registered vendor slugs, sorted.
func (r *Registry) Vendors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.connectors))
	for v := range r.connectors {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
