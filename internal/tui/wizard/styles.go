package wizard

import (
	"strings"

	"github.com/mark3labs/stepwise/internal/tui/theme"
)

var themeStyles = theme.Current().S()

var (
	styleModalContainer  = themeStyles.ModalContainer
	styleDialogContainer = themeStyles.DialogContainer
	styleModalTitle      = themeStyles.ModalTitle

	styleFieldLabel        = themeStyles.FieldLabel
	styleFieldLabelFocused = themeStyles.FieldLabelFocused
	styleFieldValue        = themeStyles.FieldValue

	styleFailure  = themeStyles.Failure
	styleAdvisory = themeStyles.Advisory

	styleHintKey       = themeStyles.HintKey
	styleHintDesc      = themeStyles.HintDesc
	styleHintSeparator = themeStyles.HintSeparator
)

// renderHintBar renders key-description pairs.
// Example: renderHintBar("enter", "next", "esc", "back")
// Returns: "enter next • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + styleHintSeparator.Render("•") + " ")
		}
		b.WriteString(styleHintKey.Render(pairs[i]) + " " + styleHintDesc.Render(pairs[i+1]))
	}
	return b.String()
}
