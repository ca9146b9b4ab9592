package resource

import (
	"strings"

	"charm.land/glamour/v2"
	"github.com/mark3labs/stepwise/internal/page"
)

// DefaultWidth is the wrap width used when a renderer is built with width 0.
const DefaultWidth = 76

// Renderer turns a descriptor into displayable content.
type Renderer interface {
	Render(d *Descriptor) page.Root
}

// MarkdownRenderer renders descriptor bodies as terminal markdown.
type MarkdownRenderer struct {
	Width int
	Style string // glamour standard style, "dark" when empty
}

// Render implements Renderer. It falls back to the raw body when glamour
// cannot render it.
func (r MarkdownRenderer) Render(d *Descriptor) page.Root {
	root := rootOf(d)
	root.Body = r.markdown(d.Body)
	return root
}

func (r MarkdownRenderer) markdown(body string) string {
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}
	style := r.Style
	if style == "" {
		style = "dark"
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.TrimSpace(body)
	}
	out, err := tr.Render(body)
	if err != nil {
		return strings.TrimSpace(body)
	}
	return strings.Trim(out, "\n")
}

// PlainRenderer keeps bodies as written. Headless drivers use it.
type PlainRenderer struct{}

// Render implements Renderer.
func (PlainRenderer) Render(d *Descriptor) page.Root {
	root := rootOf(d)
	root.Body = strings.TrimSpace(d.Body)
	return root
}

func rootOf(d *Descriptor) page.Root {
	return page.Root{
		ID:     d.ID,
		Title:  d.Title,
		Style:  d.Style,
		Source: d.Body,
	}
}
