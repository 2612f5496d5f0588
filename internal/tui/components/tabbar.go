package components

import (
	"strings"

	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the tab bar. Key is highlighted at KeyPos when the
// tab is inactive.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int
}

// Tabs are the dashboard views in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Accounts", Key: 'a', KeyPos: 0},
	{Name: "Products", Key: 'p', KeyPos: 0},
}

// TabVisualWidth is the rendered width of a tab, used for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += 2 // brackets around the shortcut
	}
	return w
}

// RenderTabBar renders a single row of tabs with the active one highlighted.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	gapStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		before, key, after := tab.Name[:tab.KeyPos], tab.Name[tab.KeyPos:tab.KeyPos+1], tab.Name[tab.KeyPos+1:]
		parts[i] = gapStyle.Render(" ") +
			inactiveStyle.Render(before) +
			dimStyle.Render("[") + keyStyle.Render(key) + dimStyle.Render("]") +
			inactiveStyle.Render(after) +
			gapStyle.Render(" ")
	}

	row := strings.Join(parts, gapStyle.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a shortcut key, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
