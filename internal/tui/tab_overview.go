package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/adburn/internal/cli"
	"github.com/theirongolddev/adburn/internal/tui/components"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.dash
	g := d.Global

	accountsNote := ""
	if n := a.failedCount(); n > 0 {
		accountsNote = fmt.Sprintf("%d failed", n)
	}
	statusNote := ""
	if g.Spend.IsZero() {
		statusNote = "no spend yet today"
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Spend today", Value: cli.FormatMoney(g.Spend)},
		{Label: "Conversations", Value: cli.FormatNumber(g.Conversions)},
		{Label: "Cost / result", Value: cli.FormatCPR(g.CostPerResult), Color: t.StatusColor(g.Status)},
		{Label: "Status", Value: g.Status.Label(), Note: statusNote, Color: t.StatusColor(g.Status)},
		{Label: "Active accounts", Value: fmt.Sprintf("%d / %d", d.ActiveAccounts, len(a.cfg.Accounts.IDs)), Note: accountsNote},
	}, cw))
	b.WriteString("\n")

	chartW := cw * 3 / 5
	sideW := cw - chartW
	b.WriteString(components.CardRow([]string{
		a.renderHourlyCard(chartW),
		a.renderProductSummaryCard(sideW),
	}))
	return b.String()
}

func (a App) renderHourlyCard(w int) string {
	t := theme.Active
	hourly := a.dash.Hourly

	values := make([]float64, len(hourly))
	labels := make([]string, len(hourly))
	for i, h := range hourly {
		values[i] = float64(h.Conversions)
		labels[i] = h.Label
	}

	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true)
	body := components.BarChart(values, labels, t.Accent, components.CardInnerWidth(w), 8) +
		"\n" + noteStyle.Render("projected from today's total, not measured per hour")
	return components.ContentCard("Hourly rhythm", body, w)
}

func (a App) renderProductSummaryCard(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.dash.Products) == 0 {
		return components.ContentCard("Products", valueStyle.Render("No product spend yet today."), w)
	}

	valueW := 12
	nameW := max(innerW-valueW-2, 8)

	var body strings.Builder
	for i, p := range a.dash.Products {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(p.Label, nameW))))
		body.WriteString(valueStyle.Render(fmt.Sprintf("%*s ", valueW, cli.FormatMoney(p.Spend))))
		body.WriteString(lipgloss.NewStyle().Foreground(t.StatusColor(p.Status)).Background(t.Surface).Render("●"))
	}
	return components.ContentCard("Products", body.String(), w)
}
