// Package pages holds the built-in wizard pages and their content.
package pages

import (
	"embed"
	"io/fs"
	"time"

	"github.com/mark3labs/stepwise/internal/lookup"
	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/resource"
	"github.com/mark3labs/stepwise/internal/shared"
)

//go:embed content/*.yaml
var content embed.FS

// Page and dialog identifiers of the built-in content.
const (
	WelcomeID       page.ID = "welcome"
	LoginID         page.ID = "login"
	FinishID        page.ID = "finish"
	ConfirmCancelID page.ID = "confirm-cancel"
)

// DefaultFlow is the page order used when none is configured.
var DefaultFlow = []page.ID{WelcomeID, LoginID, FinishID}

// Keys the built-in pages write to the shared context.
var (
	StartedAt     = shared.NewKey[time.Time]("started_at")
	Username      = shared.NewKey[string]("username")
	Role          = shared.NewKey[string]("role")
	TermsAccepted = shared.NewKey[bool]("terms_accepted")
	CompletedAt   = shared.NewKey[time.Time]("completed_at")
)

// Content returns the embedded page descriptors.
func Content() fs.FS {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

// Deps are the services pages need.
type Deps struct {
	Lookups lookup.Service
	Now     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Register adds the built-in controllers to f.
func Register(f *resource.Factory, deps Deps) error {
	ctors := []struct {
		id   page.ID
		ctor resource.Constructor
	}{
		{WelcomeID, func() page.Controller { return NewWelcome(deps) }},
		{LoginID, func() page.Controller { return NewLogin(deps) }},
		{FinishID, func() page.Controller { return NewFinish(deps) }},
	}
	for _, c := range ctors {
		if err := f.Register(string(c.id), c.ctor); err != nil {
			return err
		}
	}
	return nil
}
