// Package testfixtures holds shared helpers for the terminal UI tests.
package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/pages"
	"github.com/mark3labs/stepwise/internal/resource"
	"github.com/mark3labs/stepwise/internal/wizard"
	"github.com/stretchr/testify/require"
)

// FixedTime is the clock of every page built by NewResolver.
var FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// NewResolver returns a resolver over the built-in pages with plain
// rendering and a private cache.
func NewResolver(t *testing.T) *resource.Resolver {
	t.Helper()
	f := resource.NewFactory()
	require.NoError(t, pages.Register(f, pages.Deps{Now: func() time.Time { return FixedTime }}))
	return resource.NewResolver(resource.NewFSSource(pages.Content(), ""), resource.PlainRenderer{}, resource.NewMemoryCache(), f)
}

// StartedRun returns a started wizard over the default flow.
func StartedRun(t *testing.T, r *resource.Resolver) *wizard.Wizard {
	t.Helper()
	w := wizard.New(page.NewLoader(r), wizard.WithRunID("test-run"))
	require.NoError(t, w.AddPages(context.Background(), pages.DefaultFlow...))
	require.NoError(t, w.Start())
	return w
}

// CancelDialog resolves the built-in cancel confirmation.
func CancelDialog(t *testing.T, r *resource.Resolver) page.Root {
	t.Helper()
	root, err := r.Dialog(context.Background(), pages.ConfirmCancelID)
	require.NoError(t, err)
	return root
}
