package server

import "sync"

// Registry hands out one Server per logical name for the life of the
// process. It belongs to the composition root; there is no package-level
// instance.
type Registry struct {
	mu      sync.Mutex
	servers map[string]*Server
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{servers: make(map[string]*Server)}
}

// GetOrCreate returns the server registered under name, creating it from
// opts on first request. Later calls for the same name return the
// original server; their options are ignored.
func (g *Registry) GetOrCreate(name string, opts Options) (*Server, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s, ok := g.servers[name]; ok {
		return s, nil
	}

	s, err := New(opts)
	if err != nil {
		return nil, err
	}
	g.servers[name] = s
	return s, nil
}

// Names returns the registered server names.
func (g *Registry) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.servers))
	for name := range g.servers {
		names = append(names, name)
	}
	return names
}
