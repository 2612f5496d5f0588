package components

import (
	"fmt"

	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ShareBar renders pct (0..1) as a solid bar followed by the percentage.
func ShareBar(pct float64, width int, color lipgloss.Color) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return bar.ViewAs(pct) + pctStyle.Render(fmt.Sprintf(" %5.1f%%", pct*100))
}
