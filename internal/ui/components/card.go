package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/ui/theme"
)

// Card wraps content in a rounded-border box of the given outer width.
func Card(content string, width int, highlight bool) string {
	border := theme.Border
	if highlight {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width - 2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// Center places content in the middle of a width x height area.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
