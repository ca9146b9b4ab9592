package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/stepwise/internal/logger"
)

// Status is the lifecycle position of a resolved page.
type Status int

const (
	StatusUninitialized Status = iota
	StatusInitialized
	StatusActive
	StatusInactive
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitialized:
		return "initialized"
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// Entry is a read-only view of a resolved page.
type Entry struct {
	ID         ID
	Root       Root
	Controller Controller
	Status     Status
}

type resolved struct {
	root       Root
	controller Controller
	status     Status
}

// Loader resolves page identifiers eagerly, at registration time, and keeps
// the resolved controllers in registration order.
type Loader struct {
	mu       sync.RWMutex
	resolver Resolver
	parent   Parent
	order    []ID
	pages    map[ID]*resolved
	closed   bool
	log      *logger.Component
}

// NewLoader creates a loader backed by resolver. BindParent must be called
// before pages can be added.
func NewLoader(resolver Resolver) *Loader {
	return &Loader{
		resolver: resolver,
		pages:    make(map[ID]*resolved),
		log:      logger.Named("loader"),
	}
}

// BindParent binds the wizard that supplies the shared context. Only the
// first call has an effect. It reports whether p is the bound parent after
// the call.
func (l *Loader) BindParent(p Parent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p == nil {
		return false
	}
	if l.parent == nil {
		l.parent = p
	}
	return l.parent == p
}

// Bound reports whether a parent has been bound.
func (l *Loader) Bound() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.parent != nil
}

// AddPage appends id to the sequence and resolves it immediately: the
// controller is constructed, bound to the parent's shared context and its
// rendered root, then initialized once.
func (l *Loader) AddPage(ctx context.Context, id ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.parent == nil {
		return fmt.Errorf("adding page %q: %w", id, ErrUnboundParent)
	}
	if l.closed {
		return fmt.Errorf("adding page %q: %w", id, ErrClosed)
	}
	if _, exists := l.pages[id]; exists {
		return fmt.Errorf("adding page %q: %w", id, ErrDuplicatePage)
	}

	rendered, err := l.resolver.Resolve(ctx, KindPage, id)
	if err != nil {
		return fmt.Errorf("resolving page %q: %w", id, err)
	}
	if rendered == nil || rendered.Controller == nil {
		return fmt.Errorf("resolving page %q: %w: no controller", id, ErrInvalidPageContent)
	}

	entry := &resolved{root: rendered.Root, controller: rendered.Controller}
	if err := entry.controller.Bind(l.parent.Shared(), entry.root); err != nil {
		return fmt.Errorf("binding page %q: %w", id, err)
	}
	if err := entry.controller.Initialize(); err != nil {
		return fmt.Errorf("initializing page %q: %w", id, err)
	}
	entry.status = StatusInitialized

	l.pages[id] = entry
	l.order = append(l.order, id)
	l.log.Debug("registered page %s (%d total)", id, len(l.order))
	return nil
}

// Close stops further registration. The wizard calls it when navigation
// begins.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// Len returns the number of registered pages.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// At returns the identifier and controller at index i.
func (l *Loader) At(i int) (ID, Controller, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.order) {
		return "", nil, false
	}
	id := l.order[i]
	return id, l.pages[id].controller, true
}

// Controller returns the resolved controller for id.
func (l *Loader) Controller(id ID) (Controller, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pages[id]
	if !ok {
		return nil, false
	}
	return p.controller, true
}

// Activate marks id as the displayed page and the previously active page as
// inactive.
func (l *Loader) Activate(id ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.pages {
		if p.status == StatusActive {
			p.status = StatusInactive
		}
	}
	if p, ok := l.pages[id]; ok {
		p.status = StatusActive
	}
}

// Deactivate marks every page inactive. Used when the run ends.
func (l *Loader) Deactivate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.pages {
		if p.status == StatusActive {
			p.status = StatusInactive
		}
	}
}

// Pages returns a copy of the ordered identifiers.
func (l *Loader) Pages() []ID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]ID(nil), l.order...)
}

// PageMap returns the resolved pages in registration order.
func (l *Loader) PageMap() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		p := l.pages[id]
		out = append(out, Entry{ID: id, Root: p.root, Controller: p.controller, Status: p.status})
	}
	return out
}

// ControllerMap returns a copy of the identifier → controller mapping.
func (l *Loader) ControllerMap() map[ID]Controller {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[ID]Controller, len(l.pages))
	for id, p := range l.pages {
		out[id] = p.controller
	}
	return out
}

// Root returns the rendered root for id.
func (l *Loader) Root(id ID) (Root, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pages[id]
	if !ok {
		return Root{}, false
	}
	return p.root, true
}
