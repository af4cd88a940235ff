package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
)

// SuccessBox returns the bordered style for the success banner.
func SuccessBox() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}).
		Padding(1, 2)
}

// FieldLabel renders a field label, highlighted when focused and marked
// when invalid.
func FieldLabel(label string, focused, invalid bool) string {
	prefix := "  "
	if focused {
		prefix = "› "
	}
	switch {
	case invalid:
		return errorStyle.Render(prefix + label)
	case focused:
		return focusedLabelStyle.Render(prefix + label)
	default:
		return labelStyle.Render(prefix + label)
	}
}
