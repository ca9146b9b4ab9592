package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/shared"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	page.Base
}

type testParent struct {
	ctx *shared.Context
}

func (p *testParent) Shared() *shared.Context { return p.ctx }

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"welcome.yaml": {Data: []byte("title: Welcome\nbody: |\n  Hello **there**.\n")},
		"login.yml":    {Data: []byte("title: Sign in\ncontroller: welcome\nbody: Enter your credentials.\n")},
		"Confirm Cancel.yaml": {Data: []byte(
			"style: dialog\ntitle: Cancel?\nbody: Discard your answers?\n")},
		"renamed.yaml": {Data: []byte("id: summary\ntitle: Summary\ncontroller: welcome\nbody: Done.\n")},
		"orphan.yaml":  {Data: []byte("title: Orphan\ncontroller: nobody\nbody: x\n")},
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	f := NewFactory()
	require.NoError(t, f.Register("welcome", func() page.Controller { return &testPage{} }))
	return NewResolver(NewFSSource(testFS(), ""), PlainRenderer{}, NewMemoryCache(), f)
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		want    Descriptor
		wantErr bool
	}{
		{
			name: "defaults from file name",
			file: "Getting Started.yaml",
			data: "body: hi\n",
			want: Descriptor{ID: "getting-started", Title: "getting-started", Style: page.StylePage,
				Controller: "getting-started", Body: "hi", File: "Getting Started.yaml"},
		},
		{
			name: "explicit fields",
			file: "x.yaml",
			data: "id: login\ntitle: Sign in\ncontroller: auth\nbody: b\n",
			want: Descriptor{ID: "login", Title: "Sign in", Style: page.StylePage,
				Controller: "auth", Body: "b", File: "x.yaml"},
		},
		{
			name: "dialog has no controller",
			file: "confirm.yaml",
			data: "style: dialog\nbody: sure?\n",
			want: Descriptor{ID: "confirm", Title: "confirm", Style: page.StyleDialog,
				Body: "sure?", File: "confirm.yaml"},
		},
		{name: "unknown style", file: "x.yaml", data: "style: popup\n", wantErr: true},
		{name: "malformed yaml", file: "x.yaml", data: "title: [unclosed\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.file, []byte(tt.data))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDescriptor)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, *d)
		})
	}
}

func TestFSSource(t *testing.T) {
	ctx := context.Background()
	src := NewFSSource(testFS(), "")

	d, err := src.Load(ctx, "login")
	require.NoError(t, err)
	require.Equal(t, "Sign in", d.Title)

	d, err = src.Load(ctx, "summary")
	require.NoError(t, err, "IDs that differ from the file name are found by scanning")
	require.Equal(t, "renamed.yaml", d.File)

	_, err = src.Load(ctx, "missing")
	require.ErrorIs(t, err, page.ErrPageNotFound)

	all, err := src.List(ctx)
	require.NoError(t, err)
	var ids []page.ID
	for _, d := range all {
		ids = append(ids, d.ID)
	}
	require.Equal(t, []page.ID{"confirm-cancel", "login", "orphan", "summary", "welcome"}, ids)
}

func TestResolver_ResolvePage(t *testing.T) {
	r := newTestResolver(t)

	rendered, err := r.Resolve(context.Background(), page.KindPage, "welcome")
	require.NoError(t, err)
	require.Equal(t, "Welcome", rendered.Root.Title)
	require.Equal(t, "Hello **there**.", rendered.Root.Body)
	require.IsType(t, &testPage{}, rendered.Controller)
	require.EqualValues(t, 1, r.Loads())
}

func TestResolver_Errors(t *testing.T) {
	tests := []struct {
		name    string
		kind    page.Kind
		id      page.ID
		wantErr error
	}{
		{"missing page", page.KindPage, "missing", page.ErrPageNotFound},
		{"dialog as page", page.KindPage, "confirm-cancel", page.ErrInvalidPageContent},
		{"page as dialog", page.KindDialog, "welcome", page.ErrInvalidPageContent},
		{"unregistered controller", page.KindPage, "orphan", ErrUnknownController},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t)
			_, err := r.Resolve(context.Background(), tt.kind, tt.id)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolver_StyleCheckedOnCacheHit(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	root, err := r.Dialog(ctx, "confirm-cancel")
	require.NoError(t, err)
	require.Equal(t, "Cancel?", root.Title)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(ctx, page.KindPage, "confirm-cancel")
		require.ErrorIs(t, err, page.ErrInvalidPageContent)
	}
	require.EqualValues(t, 1, r.Loads(), "later resolutions are served from cache")
}

func TestResolver_ReusedAcrossLoaders(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	var controllers []page.Controller
	for i := 0; i < 3; i++ {
		l := page.NewLoader(r)
		l.BindParent(&testParent{ctx: shared.New()})
		require.NoError(t, l.AddPage(ctx, "welcome"))
		ctrl, ok := l.Controller("welcome")
		require.True(t, ok)
		controllers = append(controllers, ctrl)
	}

	require.EqualValues(t, 1, r.Loads(), "content is loaded once and shared")
	require.NotSame(t, controllers[0], controllers[1], "each loader gets its own controller")
}

func TestResolver_InvalidateReloads(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, page.KindPage, "welcome")
	require.NoError(t, err)
	require.NoError(t, r.Cache().Invalidate(ctx, "welcome"))
	_, err = r.Resolve(ctx, page.KindPage, "welcome")
	require.NoError(t, err)
	require.EqualValues(t, 2, r.Loads())
}

func TestMemoryCache_KeepsFirst(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Put(ctx, "a", &Content{Root: page.Root{Title: "first"}}))
	require.NoError(t, c.Put(ctx, "a", &Content{Root: page.Root{Title: "second"}}))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", got.Root.Title)
	require.Equal(t, 1, c.Len())

	require.NoError(t, c.Invalidate(ctx, "a"))
	_, ok, _ = c.Get(ctx, "a")
	require.False(t, ok)
}

func TestNewResolver_NilCacheIsPrivate(t *testing.T) {
	ctx := context.Background()
	other := testFS()
	other["welcome.yaml"] = &fstest.MapFile{Data: []byte("title: Custom welcome\nbody: Hi.\n")}

	first := NewResolver(NewFSSource(testFS(), ""), PlainRenderer{}, nil, nil)
	second := NewResolver(NewFSSource(other, ""), PlainRenderer{}, nil, nil)

	got, err := first.content(ctx, "welcome")
	require.NoError(t, err)
	require.Equal(t, "Welcome", got.Root.Title)

	got, err = second.content(ctx, "welcome")
	require.NoError(t, err)
	require.Equal(t, "Custom welcome", got.Root.Title, "content comes from this resolver's own source")

	require.NotSame(t, first.Cache(), second.Cache())
	require.EqualValues(t, 1, first.Loads())
	require.EqualValues(t, 1, second.Loads())
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	require.NoError(t, f.Register("b", func() page.Controller { return &testPage{} }))
	require.NoError(t, f.Register("a", func() page.Controller { return &testPage{} }))
	require.Error(t, f.Register("a", func() page.Controller { return &testPage{} }))
	require.Equal(t, []string{"a", "b"}, f.Names())

	_, err := f.New("c")
	require.ErrorIs(t, err, page.ErrInvalidPageContent)
}

func TestMarkdownRenderer(t *testing.T) {
	d := &Descriptor{ID: "x", Title: "X", Style: page.StylePage, Body: "# Heading\n\nSome *text*."}
	root := MarkdownRenderer{Width: 40}.Render(d)
	require.Contains(t, root.Body, "Heading")
	require.Contains(t, root.Body, "text")
	require.Equal(t, d.Body, root.Source)
}

func TestWatch_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "welcome.yaml")
	require.NoError(t, os.WriteFile(file, []byte("title: One\n"), 0o644))

	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cache.Put(ctx, "welcome", &Content{Root: page.Root{Title: "One"}}))

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, cache) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(file, []byte("title: Two\n"), 0o644)
		return cache.Len() == 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_RemovalInvalidatesDeclaredID(t *testing.T) {
	dir := t.TempDir()
	renamed := filepath.Join(dir, "renamed.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(renamed, []byte("id: summary\ntitle: Summary\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("title: Other\n"), 0o644))

	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cache.Put(ctx, "summary", &Content{Root: page.Root{Title: "Summary"}}))
	require.NoError(t, cache.Put(ctx, "other", &Content{Root: page.Root{Title: "Other"}}))

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, cache) }()

	// Wait until the watcher is live.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(other, []byte("title: Other again\n"), 0o644)
		_, ok, _ := cache.Get(ctx, "other")
		return !ok
	}, 5*time.Second, 50*time.Millisecond)

	_, ok, err := cache.Get(ctx, "summary")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.Remove(renamed))
	require.Eventually(t, func() bool {
		_, ok, _ := cache.Get(ctx, "summary")
		return !ok
	}, 5*time.Second, 50*time.Millisecond, "removing a file invalidates the ID it declared")

	cancel()
	require.NoError(t, <-done)
}
