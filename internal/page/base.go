package page

import (
	"fmt"

	"github.com/mark3labs/stepwise/internal/condition"
	"github.com/mark3labs/stepwise/internal/shared"
)

// Base is embedded by concrete pages. It stores the shared context and root,
// owns the page's conditions and supplies no-op hooks.
type Base struct {
	shared     *shared.Context
	root       Root
	bound      bool
	Conditions condition.Set
}

// Bind implements Controller.
func (b *Base) Bind(ctx *shared.Context, root Root) error {
	if b.bound {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, root.ID)
	}
	b.shared = ctx
	b.root = root
	b.bound = true
	return nil
}

// Shared returns the wizard's shared context, nil before Bind.
func (b *Base) Shared() *shared.Context {
	return b.shared
}

// Root returns the rendered root set during resolution.
func (b *Base) Root() Root {
	return b.root
}

// Initialize implements Controller.
func (b *Base) Initialize() error { return nil }

// IsValid reports whether all required conditions hold.
func (b *Base) IsValid() bool {
	return b.Conditions.Check().OK
}

// FailureMessage returns the message of the first failing required
// condition, or "" when the page is valid.
func (b *Base) FailureMessage() string {
	return b.Conditions.Check().Message
}

// Advisories returns failing advisory messages.
func (b *Base) Advisories() []string {
	return b.Conditions.Advisories()
}

func (b *Base) BeforeNext() error     { return nil }
func (b *Base) AfterNext() error      { return nil }
func (b *Base) BeforePrevious() error { return nil }
func (b *Base) AfterPrevious() error  { return nil }
func (b *Base) OnCancel() error       { return nil }
func (b *Base) AfterFinished() error  { return nil }
