package wizard

import (
	"slices"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepwise/internal/page"
)

var inputStyles = textinput.Styles{
	Focused: textinput.StyleState{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")),
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color("#b4befe")),
	},
	Blurred: textinput.StyleState{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")),
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")),
	},
	Cursor: textinput.CursorStyle{
		Color: lipgloss.Color("#cba6f7"),
		Shape: tea.CursorBar,
		Blink: true,
	},
}

type formField struct {
	def   page.Field
	input textinput.Model // text and secret fields only
}

func (ff *formField) typed() bool {
	return ff.def.Kind == page.FieldText || ff.def.Kind == page.FieldSecret
}

// form edits a page's fields. Every change is written straight back to the
// page so its conditions see the current values.
type form struct {
	editor page.FieldEditor
	fields []*formField
	focus  int
	width  int
	err    string
}

func newForm(editor page.FieldEditor, width int) *form {
	f := &form{editor: editor, width: width}
	for _, def := range editor.Fields() {
		ff := &formField{def: def}
		if ff.typed() {
			in := textinput.New()
			in.Prompt = ""
			in.Placeholder = def.Label
			in.SetStyles(inputStyles)
			in.SetWidth(inputWidth(width))
			if def.Kind == page.FieldSecret {
				in.EchoMode = textinput.EchoPassword
			}
			in.SetValue(editor.FieldValue(def.Name))
			ff.input = in
		}
		f.fields = append(f.fields, ff)
	}
	return f
}

func inputWidth(width int) int {
	if width < 30 {
		return 20
	}
	return width - 10
}

func (f *form) SetWidth(width int) {
	f.width = width
	for _, ff := range f.fields {
		if ff.typed() {
			ff.input.SetWidth(inputWidth(width))
		}
	}
}

// Focus focuses the current field.
func (f *form) Focus() tea.Cmd {
	if f == nil || len(f.fields) == 0 {
		return nil
	}
	for i, ff := range f.fields {
		if i != f.focus && ff.typed() {
			ff.input.Blur()
		}
	}
	if cur := f.fields[f.focus]; cur.typed() {
		return cur.input.Focus()
	}
	return nil
}

// Move shifts focus by delta, wrapping around.
func (f *form) Move(delta int) tea.Cmd {
	if f == nil || len(f.fields) == 0 {
		return nil
	}
	n := len(f.fields)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.Focus()
}

// Focused returns the focused field name.
func (f *form) Focused() string {
	if f == nil || len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focus].def.Name
}

// Update routes input to the focused field.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if f == nil || len(f.fields) == 0 {
		return nil
	}
	cur := f.fields[f.focus]

	switch cur.def.Kind {
	case page.FieldText, page.FieldSecret:
		before := cur.input.Value()
		var cmd tea.Cmd
		cur.input, cmd = cur.input.Update(msg)
		if v := cur.input.Value(); v != before {
			f.set(cur.def.Name, v)
		}
		return cmd

	case page.FieldToggle:
		key, ok := msg.(tea.KeyPressMsg)
		if !ok {
			return nil
		}
		switch key.String() {
		case "space", "x":
			on, _ := strconv.ParseBool(f.editor.FieldValue(cur.def.Name))
			f.set(cur.def.Name, strconv.FormatBool(!on))
		}

	case page.FieldChoice:
		key, ok := msg.(tea.KeyPressMsg)
		if !ok || len(cur.def.Choices) == 0 {
			return nil
		}
		idx := slices.Index(cur.def.Choices, f.editor.FieldValue(cur.def.Name))
		switch key.String() {
		case "right", "l", "space":
			idx++
		case "left", "h":
			idx--
		default:
			return nil
		}
		n := len(cur.def.Choices)
		f.set(cur.def.Name, cur.def.Choices[(idx%n+n)%n])
	}
	return nil
}

func (f *form) set(name, value string) {
	if err := f.editor.SetField(name, value); err != nil {
		f.err = err.Error()
		return
	}
	f.err = ""
}

// View renders one line per field.
func (f *form) View() string {
	var b strings.Builder
	for i, ff := range f.fields {
		focused := i == f.focus
		marker := "  "
		label := styleFieldLabel.Render(ff.def.Label)
		if focused {
			marker = styleFieldLabelFocused.Render("› ")
			label = styleFieldLabelFocused.Render(ff.def.Label)
		}

		var value string
		switch ff.def.Kind {
		case page.FieldText, page.FieldSecret:
			value = ff.input.View()
		case page.FieldToggle:
			box := "[ ]"
			if on, _ := strconv.ParseBool(f.editor.FieldValue(ff.def.Name)); on {
				box = "[x]"
			}
			value = styleFieldValue.Render(box)
		case page.FieldChoice:
			value = styleFieldValue.Render("‹ " + f.editor.FieldValue(ff.def.Name) + " ›")
		}

		if ff.def.Kind == page.FieldToggle {
			b.WriteString(marker + value + " " + label)
		} else {
			b.WriteString(marker + label + "\n  " + value)
		}
		if i < len(f.fields)-1 {
			b.WriteString("\n")
		}
	}
	if f.err != "" {
		b.WriteString("\n" + styleFailure.Render(f.err))
	}
	return b.String()
}
