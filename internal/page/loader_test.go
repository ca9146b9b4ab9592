package page

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/stepwise/internal/condition"
	"github.com/mark3labs/stepwise/internal/shared"
	"github.com/stretchr/testify/require"
)

type stubParent struct {
	ctx *shared.Context
}

func (p *stubParent) Shared() *shared.Context { return p.ctx }

type countingPage struct {
	Base
	inits int
}

func (c *countingPage) Initialize() error {
	c.inits++
	c.Conditions.Require(condition.New("always", func() bool { return true }, ""))
	return nil
}

type failingInitPage struct {
	Base
}

func (f *failingInitPage) Initialize() error {
	return errors.New("lookup list unavailable")
}

type stubResolver struct {
	calls map[ID]int
	pages map[ID]func() Controller
}

func newStubResolver(ids ...ID) *stubResolver {
	r := &stubResolver{calls: map[ID]int{}, pages: map[ID]func() Controller{}}
	for _, id := range ids {
		r.pages[id] = func() Controller { return &countingPage{} }
	}
	return r
}

func (r *stubResolver) Resolve(_ context.Context, kind Kind, id ID) (*Rendered, error) {
	r.calls[id]++
	if id == "modal" {
		return nil, ErrInvalidPageContent
	}
	ctor, ok := r.pages[id]
	if !ok {
		return nil, ErrPageNotFound
	}
	return &Rendered{
		Root:       Root{ID: id, Title: string(id), Style: StylePage, Body: "body of " + string(id)},
		Controller: ctor(),
	}, nil
}

func TestLoader_AddPageRequiresParent(t *testing.T) {
	l := NewLoader(newStubResolver("welcome"))

	err := l.AddPage(context.Background(), "welcome")
	require.ErrorIs(t, err, ErrUnboundParent)
	require.Empty(t, l.Pages())
}

func TestLoader_BindParentFirstWins(t *testing.T) {
	first := &stubParent{ctx: shared.New()}
	second := &stubParent{ctx: shared.New()}

	l := NewLoader(newStubResolver("welcome"))
	require.False(t, l.BindParent(nil))
	require.False(t, l.Bound())
	require.True(t, l.BindParent(first))
	require.False(t, l.BindParent(second), "a second parent is refused")
	require.True(t, l.BindParent(first), "rebinding the same parent is accepted")
	require.True(t, l.Bound())

	require.NoError(t, l.AddPage(context.Background(), "welcome"))
	ctrl, ok := l.Controller("welcome")
	require.True(t, ok)
	require.Same(t, first.ctx, ctrl.(*countingPage).Shared())
}

func TestLoader_EagerResolution(t *testing.T) {
	res := newStubResolver("welcome", "login", "finish")
	l := NewLoader(res)
	l.BindParent(&stubParent{ctx: shared.New()})

	for _, id := range []ID{"welcome", "login", "finish"} {
		require.NoError(t, l.AddPage(context.Background(), id))
		require.Equal(t, 1, res.calls[id], "resolved at registration time")
	}

	require.Equal(t, []ID{"welcome", "login", "finish"}, l.Pages())
	require.Equal(t, 3, l.Len())

	for _, e := range l.PageMap() {
		cp := e.Controller.(*countingPage)
		require.Equal(t, 1, cp.inits, "initialized exactly once")
		require.Equal(t, e.ID, cp.Root().ID)
		require.Equal(t, StatusInitialized, e.Status)
	}

	id, ctrl, ok := l.At(1)
	require.True(t, ok)
	require.Equal(t, ID("login"), id)
	require.NotNil(t, ctrl)

	_, _, ok = l.At(3)
	require.False(t, ok)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      ID
		wantErr error
	}{
		{"unknown identifier", "missing", ErrPageNotFound},
		{"dialog content", "modal", ErrInvalidPageContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(newStubResolver("welcome"))
			l.BindParent(&stubParent{ctx: shared.New()})

			err := l.AddPage(context.Background(), tt.id)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, l.Pages(), "failed pages are not registered")
		})
	}
}

func TestLoader_DuplicateRejected(t *testing.T) {
	l := NewLoader(newStubResolver("welcome"))
	l.BindParent(&stubParent{ctx: shared.New()})

	require.NoError(t, l.AddPage(context.Background(), "welcome"))
	err := l.AddPage(context.Background(), "welcome")
	require.ErrorIs(t, err, ErrDuplicatePage)
	require.Equal(t, []ID{"welcome"}, l.Pages())
}

func TestLoader_InitializeErrorPropagates(t *testing.T) {
	res := newStubResolver()
	res.pages["broken"] = func() Controller { return &failingInitPage{} }
	l := NewLoader(res)
	l.BindParent(&stubParent{ctx: shared.New()})

	err := l.AddPage(context.Background(), "broken")
	require.ErrorContains(t, err, "lookup list unavailable")
	_, ok := l.Controller("broken")
	require.False(t, ok)
}

func TestLoader_ClosedRejectsPages(t *testing.T) {
	l := NewLoader(newStubResolver("welcome", "login"))
	l.BindParent(&stubParent{ctx: shared.New()})
	require.NoError(t, l.AddPage(context.Background(), "welcome"))

	l.Close()
	require.ErrorIs(t, l.AddPage(context.Background(), "login"), ErrClosed)
}

func TestLoader_ViewsAreCopies(t *testing.T) {
	l := NewLoader(newStubResolver("welcome", "login"))
	l.BindParent(&stubParent{ctx: shared.New()})
	require.NoError(t, l.AddPage(context.Background(), "welcome"))
	require.NoError(t, l.AddPage(context.Background(), "login"))

	pages := l.Pages()
	pages[0] = "hijacked"

	controllers := l.ControllerMap()
	delete(controllers, "welcome")

	entries := l.PageMap()
	entries[0].ID = "also-hijacked"

	require.Equal(t, []ID{"welcome", "login"}, l.Pages())
	_, ok := l.Controller("welcome")
	require.True(t, ok)
	require.Len(t, l.ControllerMap(), 2)
	require.Equal(t, ID("welcome"), l.PageMap()[0].ID)
}

func TestLoader_Activate(t *testing.T) {
	l := NewLoader(newStubResolver("welcome", "login"))
	l.BindParent(&stubParent{ctx: shared.New()})
	require.NoError(t, l.AddPage(context.Background(), "welcome"))
	require.NoError(t, l.AddPage(context.Background(), "login"))

	l.Activate("welcome")
	l.Activate("login")
	entries := l.PageMap()
	require.Equal(t, StatusInactive, entries[0].Status)
	require.Equal(t, StatusActive, entries[1].Status)

	l.Deactivate()
	require.Equal(t, StatusInactive, l.PageMap()[1].Status)
}

func TestBase_BindOnce(t *testing.T) {
	var b Base
	ctx := shared.New()
	require.NoError(t, b.Bind(ctx, Root{ID: "welcome"}))
	require.ErrorIs(t, b.Bind(shared.New(), Root{ID: "other"}), ErrAlreadyBound)
	require.Same(t, ctx, b.Shared())
	require.Equal(t, ID("welcome"), b.Root().ID)
}

func TestBase_Validity(t *testing.T) {
	var b Base
	name := ""
	b.Conditions.Require(condition.New("name", func() bool { return name != "" }, "Name is required"))
	b.Conditions.Advise(condition.New("short", func() bool { return len(name) > 3 }, "Name is short"))

	require.False(t, b.IsValid())
	require.Equal(t, "Name is required", b.FailureMessage())
	require.Equal(t, []string{"Name is short"}, b.Advisories())

	name = "alice"
	require.True(t, b.IsValid())
	require.Empty(t, b.FailureMessage())
	require.Empty(t, b.Advisories())
}
