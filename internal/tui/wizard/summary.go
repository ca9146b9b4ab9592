package wizard

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
)

// highlightYAML colors a YAML document for the given terminal profile.
// Terminals without color get the source unchanged.
func highlightYAML(source string, profile colorprofile.Profile) string {
	source = strings.TrimRight(source, "\n")

	var name string
	switch profile {
	case colorprofile.TrueColor:
		name = "terminal16m"
	case colorprofile.ANSI256:
		name = "terminal256"
	case colorprofile.ANSI:
		name = "terminal16"
	default:
		return source
	}

	lexer := lexers.Get("yaml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter := formatters.Get(name)
	if formatter == nil {
		return source
	}
	style := styles.Get("catppuccin-mocha")
	if style == nil {
		style = styles.Fallback
	}

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}
