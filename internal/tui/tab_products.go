package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/adburn/internal/cli"
	"github.com/theirongolddev/adburn/internal/tui/components"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderProductsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	total := a.dash.Global.Spend

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const nameW = 22
	const fixed = nameW + 6 + 12 + 8 + 10 + 14 + 6
	barW := max(innerW-fixed-7, 8)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %12s %-*s %8s %10s %14s",
		nameW, "Product", "Camps", "Spend", barW+7, "Share", "Conv.", "CPR", "Status")))

	for _, p := range a.dash.Products {
		share := 0.0
		if total.IsPositive() {
			share = p.Spend.Div(total).InexactFloat64()
		}
		body.WriteString("\n")
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(p.Code+" "+p.Label, nameW))))
		body.WriteString(valueStyle.Render(fmt.Sprintf("%6d %12s ", p.Campaigns, cli.FormatMoney(p.Spend))))
		body.WriteString(components.ShareBar(share, barW, t.Blue))
		body.WriteString(valueStyle.Render(fmt.Sprintf(" %8s %10s ",
			cli.FormatNumber(p.Conversions), cli.FormatCPR(p.CostPerResult))))
		body.WriteString(lipgloss.NewStyle().Foreground(t.StatusColor(p.Status)).Background(t.Surface).
			Render(fmt.Sprintf("%14s", p.Status.Label())))
	}
	if len(a.dash.Products) == 0 {
		body.WriteString("\n")
		body.WriteString(valueStyle.Render("No product spend yet today."))
	}

	return components.ContentCard("Products", body.String(), cw)
}
