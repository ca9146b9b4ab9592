// Package page defines the contract every wizard page implements and the
// loader that resolves page identifiers into bound controllers.
package page

import (
	"context"
	"errors"

	"github.com/mark3labs/stepwise/internal/shared"
)

// ID names a wizard step.
type ID string

// Kind is the resource kind requested from a Resolver.
type Kind string

const (
	KindPage   Kind = "page"
	KindDialog Kind = "dialog"
)

// Style describes the shape of a rendered resource.
type Style string

const (
	StylePage   Style = "page"
	StyleDialog Style = "dialog"
)

// Configuration errors returned by the loader and resolvers.
var (
	ErrUnboundParent      = errors.New("page loader has no parent wizard")
	ErrDuplicatePage      = errors.New("page already registered")
	ErrInvalidPageContent = errors.New("invalid page content")
	ErrPageNotFound       = errors.New("page not found")
	ErrAlreadyBound       = errors.New("controller already bound")
	ErrClosed             = errors.New("page registration closed")
	ErrForeignParent      = errors.New("page loader bound to another wizard")
)

// Field editing errors.
var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid field value")
)

// Root is the displayable content of a resolved page. Body is already
// rendered for display; Source keeps the unrendered text.
type Root struct {
	ID     ID     `json:"id"`
	Title  string `json:"title"`
	Style  Style  `json:"style"`
	Body   string `json:"body"`
	Source string `json:"source"`
}

// Rendered is the result of resolving one identifier.
type Rendered struct {
	Root       Root
	Controller Controller
}

// Resolver turns an identifier into renderable content plus a fresh
// controller. It fails with ErrPageNotFound for unknown identifiers.
type Resolver interface {
	Resolve(ctx context.Context, kind Kind, id ID) (*Rendered, error)
}

// Parent supplies the shared context to pages. The wizard implements it.
type Parent interface {
	Shared() *shared.Context
}

// Controller is the capability set every page implements. Hooks bracket
// navigation transitions: Before* fire on the page being left, After* on the
// page being entered. A hook error halts the transition and is returned to
// the caller unchanged in chain.
type Controller interface {
	// Bind hands the controller its shared context and rendered root. It is
	// called once during resolution.
	Bind(ctx *shared.Context, root Root) error
	// Initialize is called exactly once after Bind.
	Initialize() error

	IsValid() bool
	FailureMessage() string

	BeforeNext() error
	AfterNext() error
	BeforePrevious() error
	AfterPrevious() error
	OnCancel() error
	AfterFinished() error
}

// FieldKind tells a host how to edit a field.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldSecret FieldKind = "secret"
	FieldToggle FieldKind = "toggle"
	FieldChoice FieldKind = "choice"
)

// Field describes one user-editable input of a page.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Choices []string  `json:"choices,omitempty"`
}

// FieldEditor is implemented by pages that take user input. Hosts (TUI, MCP)
// edit values through it; the page keeps ownership of the state.
type FieldEditor interface {
	Fields() []Field
	FieldValue(name string) string
	SetField(name, value string) error
}

// Summarizer is implemented by pages that show a text summary, usually of
// the shared context.
type Summarizer interface {
	Summary() string
}

// Advisor is implemented by pages with non-blocking hints.
type Advisor interface {
	Advisories() []string
}
