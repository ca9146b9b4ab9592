package wizard

import "strings"

// renderDialog renders the cancel confirmation.
func (m *Model) renderDialog() string {
	width := min(m.contentWidth(), 60)
	sections := []string{
		styleModalTitle.Width(width - 4).Render(m.dialog.Title),
		"",
		m.dialog.Body,
		"",
		renderHintBar("y", "cancel wizard", "n", "keep going"),
	}
	return styleDialogContainer.Width(width).Render(strings.Join(sections, "\n"))
}
