package pages

import (
	"github.com/mark3labs/stepwise/internal/shared"
)

// Finish summarizes the run.
type Finish struct {
	pageBase
}

// NewFinish creates the finish page.
func NewFinish(deps Deps) *Finish {
	return &Finish{pageBase{deps: deps}}
}

// Summary returns the shared context as YAML.
func (f *Finish) Summary() string {
	out, err := f.Shared().YAML()
	if err != nil {
		return err.Error()
	}
	return out
}

// AfterFinished records the completion time.
func (f *Finish) AfterFinished() error {
	shared.Set(f.Shared(), CompletedAt, f.deps.now())
	return nil
}
