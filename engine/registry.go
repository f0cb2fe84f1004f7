// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"slices"
	"sync"
)

// Factory constructs a fresh Engine.
type Factory func() (Engine, error)

// Registry of engine factories by name (e.g., "loopback", "csound").
type Registry struct {
	factories map[string]Factory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		mtx:       &sync.Mutex{},
	}
}

func (r *Registry) Register(name string, f Factory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.factories[name] = f
}

func (r *Registry) Get(name string) (Factory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open constructs the engine registered under name.
func (r *Registry) Open(name string) (Engine, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}

	e, err := f()
	if err != nil {
		return nil, NewError("open "+name, ErrEngineInit, 0, err)
	}
	return e, nil
}

// Default is the process-wide registry engine implementations add
// themselves to from init functions.
var Default = NewRegistry()

// Register adds f to the Default registry.
func Register(name string, f Factory) { Default.Register(name, f) }

// Open constructs an engine from the Default registry.
func Open(name string) (Engine, error) { return Default.Open(name) }
