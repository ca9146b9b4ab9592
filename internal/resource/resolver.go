package resource

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/page"
)

// Resolver implements page.Resolver over a source, a renderer, a cache and
// a controller factory. Resolvers are safe to share between loaders; that
// is how several wizards reuse one rendering.
type Resolver struct {
	source   Source
	renderer Renderer
	cache    Cache
	factory  *Factory
	loads    atomic.Int64
	log      *logger.Component
}

// NewResolver creates a resolver. A nil cache gets a private MemoryCache.
func NewResolver(source Source, renderer Renderer, cache Cache, factory *Factory) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Resolver{
		source:   source,
		renderer: renderer,
		cache:    cache,
		factory:  factory,
		log:      logger.Named("resource"),
	}
}

// Loads returns how many times content was read from the source.
func (r *Resolver) Loads() int64 {
	return r.loads.Load()
}

// Source returns the descriptor source.
func (r *Resolver) Source() Source {
	return r.source
}

// Cache returns the content cache.
func (r *Resolver) Cache() Cache {
	return r.cache
}

// Resolve implements page.Resolver. The style check runs on every call,
// including cache hits. Dialogs resolve without a controller.
func (r *Resolver) Resolve(ctx context.Context, kind page.Kind, id page.ID) (*page.Rendered, error) {
	content, err := r.content(ctx, id)
	if err != nil {
		return nil, err
	}

	switch kind {
	case page.KindPage:
		if content.Root.Style != page.StylePage {
			return nil, fmt.Errorf("%w: %q has style %q", page.ErrInvalidPageContent, id, content.Root.Style)
		}
		ctrl, err := r.factory.New(content.Controller)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", id, err)
		}
		return &page.Rendered{Root: content.Root, Controller: ctrl}, nil
	case page.KindDialog:
		if content.Root.Style != page.StyleDialog {
			return nil, fmt.Errorf("%w: %q is not a dialog", page.ErrInvalidPageContent, id)
		}
		return &page.Rendered{Root: content.Root}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", page.ErrInvalidPageContent, kind)
	}
}

// Dialog resolves a dialog resource.
func (r *Resolver) Dialog(ctx context.Context, id page.ID) (page.Root, error) {
	rendered, err := r.Resolve(ctx, page.KindDialog, id)
	if err != nil {
		return page.Root{}, err
	}
	return rendered.Root, nil
}

func (r *Resolver) content(ctx context.Context, id page.ID) (*Content, error) {
	cached, ok, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache lookup for %s failed, loading from source: %v", id, err)
	}
	if ok {
		return cached, nil
	}

	d, err := r.source.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	r.loads.Add(1)
	content := &Content{Root: r.renderer.Render(d), Controller: d.Controller}

	if err := r.cache.Put(ctx, id, content); err != nil {
		r.log.Warn("caching %s: %v", id, err)
	}
	r.log.Debug("loaded %s from %s", id, d.File)
	return content, nil
}
