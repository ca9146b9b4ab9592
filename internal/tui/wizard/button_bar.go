package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	engine "github.com/mark3labs/stepwise/internal/wizard"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Enabled
	ButtonDisabled                    // Grayed out
	ButtonFocused                     // Default action
)

// Button is one entry of the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar lays out buttons centered on one line.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a button bar.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width the bar is centered in.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

var (
	buttonNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cdd6f4")).
			Background(lipgloss.Color("#313244")).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)

	buttonDisabled = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")).
			Background(lipgloss.Color("#181825")).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)

	buttonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1e1e2e")).
			Background(lipgloss.Color("#b4befe")).
			Bold(true).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)
)

// Render renders the bar.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, buttonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, buttonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, buttonNormal.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// ButtonsFor builds Back, Next or Finish, and Cancel from the legal action
// set. The forward button is the focused default.
func ButtonsFor(actions engine.ActionSet) []Button {
	legend := actions.Legend()
	buttons := make([]Button, 0, len(legend))
	for _, item := range legend {
		state := ButtonNormal
		switch {
		case !item.Enabled:
			state = ButtonDisabled
		case item.Action == engine.ActionNext || item.Action == engine.ActionFinish:
			state = ButtonFocused
		}

		label := item.Label
		if item.Action == engine.ActionPrevious {
			label = "← " + label
		}
		buttons = append(buttons, Button{Label: label, State: state})
	}
	return buttons
}
