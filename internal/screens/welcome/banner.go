package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prava/internal/ui/theme"
)

const bannerArt = `██████╗ ██████╗  █████╗ ██╗   ██╗ █████╗
██╔══██╗██╔══██╗██╔══██╗██║   ██║██╔══██╗
██████╔╝██████╔╝███████║██║   ██║███████║
██╔═══╝ ██╔══██╗██╔══██║╚██╗ ██╔╝██╔══██║
██║     ██║  ██║██║  ██║ ╚████╔╝ ██║  ██║
╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝  ╚═══╝  ╚═╝  ╚═╝`

const bannerCompact = "P R A V A"

// RenderBanner returns the PRAVA banner in the primary color, or a compact
// fallback for terminals narrower than 46 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 46 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
