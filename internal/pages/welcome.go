package pages

import "github.com/mark3labs/stepwise/internal/shared"

// Welcome greets the user. It has no conditions.
type Welcome struct {
	pageBase
}

// NewWelcome creates the welcome page.
func NewWelcome(deps Deps) *Welcome {
	return &Welcome{pageBase{deps: deps}}
}

// BeforeNext stamps the start time once.
func (w *Welcome) BeforeNext() error {
	if !shared.Has(w.Shared(), StartedAt) {
		shared.Set(w.Shared(), StartedAt, w.deps.now())
	}
	return nil
}
