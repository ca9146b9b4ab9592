// Package wizard drives a user through an ordered sequence of pages. It gates
// forward moves on the current page's validity, fires page hooks in a fixed
// order around each transition and derives the legal navigation actions from
// the current position.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/uuid"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/shared"
)

// State is the run state of a wizard.
type State int

const (
	StateIdle State = iota
	StateActive
	StateCancelled
	StateFinished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCancelled:
		return "cancelled"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{StateIdle, StateActive, StateCancelled, StateFinished} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown wizard state %q", b)
}

// Terminal reports whether no further transitions are accepted.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateFinished
}

var (
	// ErrNoPages is a configuration error: there is no page to start on.
	ErrNoPages = errors.New("wizard has no pages")
	// ErrInvalidState is returned for transitions not legal in the current state.
	ErrInvalidState = errors.New("invalid wizard state")
	// ErrTransitionInProgress is returned for re-entrant transition calls.
	ErrTransitionInProgress = errors.New("transition already in progress")

	ErrFirstPage   = fmt.Errorf("%w: already on the first page", ErrInvalidState)
	ErrNotLastPage = fmt.Errorf("%w: not on the last page", ErrInvalidState)
)

// Result reports the outcome of a forward request. A failed validation is
// not an error: Advanced is false and Message explains why.
type Result struct {
	Advanced   bool     `json:"advanced"`
	Finished   bool     `json:"finished"`
	Message    string   `json:"message,omitempty"`
	Advisories []string `json:"advisories,omitempty"`
}

// Wizard is the navigation state machine. All methods are safe for
// concurrent use; hooks run outside the internal lock and a transition
// requested from inside a hook fails with ErrTransitionInProgress.
type Wizard struct {
	mu        sync.Mutex
	loader    *page.Loader
	shared    *shared.Context
	runID     string
	index     int
	state     State
	busy      bool
	listeners []Listener
	log       *logger.Component
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(w *Wizard) {
		if id != "" {
			w.runID = id
		}
	}
}

// WithSeed merges initial values into the shared context.
func WithSeed(seed *shared.Context) Option {
	return func(w *Wizard) {
		w.shared.Merge(seed)
	}
}

// New creates an idle wizard and binds it as the loader's parent. A loader
// serves one wizard: New panics with page.ErrForeignParent when loader is
// already bound to another.
func New(loader *page.Loader, opts ...Option) *Wizard {
	w := &Wizard{
		loader: loader,
		shared: shared.New(),
		runID:  uuid.NewString(),
		state:  StateIdle,
		log:    logger.Named("wizard"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if !loader.BindParent(w) {
		panic(fmt.Errorf("creating wizard %s: %w", w.runID, page.ErrForeignParent))
	}
	return w
}

// Shared returns the run's shared context.
func (w *Wizard) Shared() *shared.Context {
	return w.shared
}

// RunID returns the run identifier.
func (w *Wizard) RunID() string {
	return w.runID
}

// Loader returns the page loader.
func (w *Wizard) Loader() *page.Loader {
	return w.loader
}

// AddPages registers and resolves pages in order. Registration is only legal
// before Start.
func (w *Wizard) AddPages(ctx context.Context, ids ...page.ID) error {
	w.mu.Lock()
	state := w.state
	w.mu.Unlock()
	if state != StateIdle {
		return fmt.Errorf("adding pages in state %s: %w", state, ErrInvalidState)
	}

	for _, id := range ids {
		if err := w.loader.AddPage(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a listener for transition events.
func (w *Wizard) Subscribe(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// State returns the run state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Index returns the current page index.
func (w *Wizard) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// Len returns the number of registered pages.
func (w *Wizard) Len() int {
	return w.loader.Len()
}

// Current returns the current page. ok is false before Start.
func (w *Wizard) Current() (page.ID, page.Controller, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateIdle {
		return "", nil, false
	}
	return w.loader.At(w.index)
}

// Actions returns the currently legal actions.
func (w *Wizard) Actions() ActionSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return DeriveActions(w.index, w.loader.Len(), w.state)
}

// Check evaluates the current page without moving.
func (w *Wizard) Check() Result {
	_, ctrl, ok := w.Current()
	if !ok {
		return Result{}
	}
	return Result{Message: ctrl.FailureMessage(), Advisories: advisories(ctrl)}
}

// Start enters the first page. It fires no hooks.
func (w *Wizard) Start() error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrTransitionInProgress
	}
	if w.state != StateIdle {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("starting in state %s: %w", state, ErrInvalidState)
	}
	if w.loader.Len() == 0 {
		w.mu.Unlock()
		return ErrNoPages
	}
	w.loader.Close()
	w.index = 0
	w.state = StateActive
	id, _, _ := w.loader.At(0)
	w.mu.Unlock()

	w.loader.Activate(id)
	w.log.Info("run %s started on %s (%d pages)", w.runID, id, w.loader.Len())
	w.emit(EventStarted, 0, 0, id, "")
	return nil
}

// Next validates the current page and moves forward. On the last page it
// finishes the run.
func (w *Wizard) Next() (Result, error) {
	return w.forward(false)
}

// Finish is Next restricted to the last page.
func (w *Wizard) Finish() (Result, error) {
	return w.forward(true)
}

func (w *Wizard) forward(requireLast bool) (Result, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return Result{}, ErrTransitionInProgress
	}
	if w.state != StateActive {
		state := w.state
		w.mu.Unlock()
		return Result{}, fmt.Errorf("next in state %s: %w", state, ErrInvalidState)
	}
	from := w.index
	length := w.loader.Len()
	if requireLast && from != length-1 {
		w.mu.Unlock()
		return Result{}, ErrNotLastPage
	}
	id, ctrl, _ := w.loader.At(from)
	w.busy = true
	w.mu.Unlock()
	defer w.release()

	if !ctrl.IsValid() {
		msg := ctrl.FailureMessage()
		w.log.Debug("page %s rejected next: %s", id, msg)
		w.emit(EventValidationFailed, from, from, id, msg)
		return Result{Message: msg, Advisories: advisories(ctrl)}, nil
	}

	before := w.contextSnapshot()
	if err := ctrl.BeforeNext(); err != nil {
		return Result{}, fmt.Errorf("before next on page %q: %w", id, err)
	}
	w.logContextDiff(id, before)

	if from == length-1 {
		w.mu.Lock()
		w.state = StateFinished
		w.mu.Unlock()
		w.loader.Deactivate()

		err := ctrl.AfterFinished()
		w.log.Info("run %s finished on %s", w.runID, id)
		w.emit(EventFinished, from, from, id, "")
		if err != nil {
			return Result{Advanced: true, Finished: true}, fmt.Errorf("after finished on page %q: %w", id, err)
		}
		return Result{Advanced: true, Finished: true}, nil
	}

	w.mu.Lock()
	w.index = from + 1
	w.mu.Unlock()

	nextID, nextCtrl, _ := w.loader.At(from + 1)
	w.loader.Activate(nextID)
	err := nextCtrl.AfterNext()
	w.log.Debug("advanced %s -> %s", id, nextID)
	w.emit(EventAdvanced, from, from+1, nextID, "")
	if err != nil {
		return Result{Advanced: true}, fmt.Errorf("after next on page %q: %w", nextID, err)
	}
	return Result{Advanced: true}, nil
}

// Previous moves back one page. Retreating never consults the page's
// conditions.
func (w *Wizard) Previous() error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrTransitionInProgress
	}
	if w.state != StateActive {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("previous in state %s: %w", state, ErrInvalidState)
	}
	from := w.index
	if from == 0 {
		w.mu.Unlock()
		return ErrFirstPage
	}
	id, ctrl, _ := w.loader.At(from)
	w.busy = true
	w.mu.Unlock()
	defer w.release()

	if err := ctrl.BeforePrevious(); err != nil {
		return fmt.Errorf("before previous on page %q: %w", id, err)
	}

	w.mu.Lock()
	w.index = from - 1
	w.mu.Unlock()

	prevID, prevCtrl, _ := w.loader.At(from - 1)
	w.loader.Activate(prevID)
	err := prevCtrl.AfterPrevious()
	w.log.Debug("retreated %s -> %s", id, prevID)
	w.emit(EventRetreated, from, from-1, prevID, "")
	if err != nil {
		return fmt.Errorf("after previous on page %q: %w", prevID, err)
	}
	return nil
}

// Cancel abandons the run. OnCancel fires on the current page only; the
// wizard is cancelled even if the hook fails.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrTransitionInProgress
	}
	if w.state.Terminal() {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("cancel in state %s: %w", state, ErrInvalidState)
	}
	var (
		id   page.ID
		ctrl page.Controller
	)
	if w.state == StateActive {
		id, ctrl, _ = w.loader.At(w.index)
	}
	from := w.index
	w.state = StateCancelled
	w.busy = true
	w.mu.Unlock()
	defer w.release()

	w.loader.Close()
	w.loader.Deactivate()

	var err error
	if ctrl != nil {
		err = ctrl.OnCancel()
	}
	w.log.Info("run %s cancelled on %q", w.runID, id)
	w.emit(EventCancelled, from, from, id, "")
	if err != nil {
		return fmt.Errorf("on cancel on page %q: %w", id, err)
	}
	return nil
}

func (w *Wizard) release() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

func (w *Wizard) emit(t EventType, from, to int, id page.ID, msg string) {
	w.mu.Lock()
	listeners := append([]Listener(nil), w.listeners...)
	ev := Event{
		Type:    t,
		RunID:   w.runID,
		From:    from,
		To:      to,
		Page:    id,
		Length:  w.loader.Len(),
		State:   w.state,
		Actions: DeriveActions(w.index, w.loader.Len(), w.state),
		Message: msg,
	}
	w.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

func (w *Wizard) contextSnapshot() string {
	if !w.log.Enabled(logger.LevelDebug) {
		return ""
	}
	out, err := w.shared.YAML()
	if err != nil {
		return ""
	}
	return out
}

// logContextDiff logs what a page committed into the shared context.
func (w *Wizard) logContextDiff(id page.ID, before string) {
	if !w.log.Enabled(logger.LevelDebug) {
		return
	}
	after := w.contextSnapshot()
	if after == before {
		return
	}
	diff := udiff.Unified("context", "context+"+string(id), before, after)
	w.log.Debug("page %s committed:\n%s", id, diff)
}

func advisories(ctrl page.Controller) []string {
	if a, ok := ctrl.(page.Advisor); ok {
		return a.Advisories()
	}
	return nil
}
