package result

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Renderer formats a View for a particular surface.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}

// Registry stores renderers by name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// DefaultRegistry registers the built-in text, JSON and HTML renderers.
func DefaultRegistry() (*Registry, error) {
	reg := NewRegistry()
	for _, renderer := range []Renderer{NewTextRenderer(), NewJSONRenderer()} {
		if err := reg.Register(renderer); err != nil {
			return nil, err
		}
	}
	html, err := NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(html); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("result: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("result: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("result: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("result: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
