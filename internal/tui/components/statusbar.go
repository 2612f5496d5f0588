package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the refresh loop.
type StatusInfo struct {
	LastRefresh time.Time
	Took        time.Duration
	Refreshing  bool
	AutoRefresh bool
	Failed      int
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")

	var right []string
	if info.Failed > 0 {
		right = append(right, warn.Render(fmt.Sprintf("%d failed", info.Failed)))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("refreshing…"))
	case !info.LastRefresh.IsZero():
		right = append(right, base.Render(fmt.Sprintf("updated %s (%.1fs)",
			info.LastRefresh.Format("15:04:05"), info.Took.Seconds())))
	}
	if info.AutoRefresh {
		right = append(right, accent.Render("auto"))
	} else {
		right = append(right, base.Render("manual"))
	}
	rightStr := strings.Join(right, base.Render("  ")) + base.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(rightStr), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + rightStr
}
