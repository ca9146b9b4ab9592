package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/stepwise/internal/page"
)

// ErrUnknownController is returned when a descriptor names a controller
// nobody registered.
var ErrUnknownController = errors.New("unknown controller")

// Constructor builds a fresh, unbound controller.
type Constructor func() page.Controller

// Factory maps controller names to constructors.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

// Register adds a constructor. Names are unique.
func (f *Factory) Register(name string, ctor Constructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ctors[name]; ok {
		return fmt.Errorf("controller %q already registered", name)
	}
	f.ctors[name] = ctor
	return nil
}

// New builds a controller by name.
func (f *Factory) New(name string) (page.Controller, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q: %w", page.ErrInvalidPageContent, name, ErrUnknownController)
	}
	return ctor(), nil
}

// Names returns the registered names, sorted.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.ctors))
	for n := range f.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
