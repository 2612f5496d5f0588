package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/adburn/internal/cli"
	"github.com/theirongolddev/adburn/internal/tui/components"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderAccountsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	const fixed = 6 + 12 + 8 + 10 + 14 + 5
	nameW := max(innerW-fixed, 14)

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %12s %8s %10s %14s",
		nameW, "Account", "Camps", "Spend", "Conv.", "CPR", "Status")))
	for _, acct := range a.dash.Accounts {
		style := nameStyle
		if !acct.Active {
			style = dimStyle
		}
		table.WriteString("\n")
		table.WriteString(style.Render(fmt.Sprintf("%-*s ", nameW, truncStr(cli.FormatAccount(acct.Label), nameW))))
		table.WriteString(valueStyle.Render(fmt.Sprintf("%6d %12s %8s %10s ",
			acct.Campaigns,
			cli.FormatMoney(acct.Spend),
			cli.FormatNumber(acct.Conversions),
			cli.FormatCPR(acct.CostPerResult))))
		table.WriteString(lipgloss.NewStyle().Foreground(t.StatusColor(acct.Status)).Background(t.Surface).
			Render(fmt.Sprintf("%14s", acct.Status.Label())))
	}
	if len(a.dash.Accounts) == 0 {
		table.WriteString("\n")
		table.WriteString(dimStyle.Render("No account returned data."))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Accounts", table.String(), cw))

	if a.report != nil && len(a.report.Failed) > 0 {
		var failed strings.Builder
		for i, f := range a.report.Failed {
			if i > 0 {
				failed.WriteString("\n")
			}
			failed.WriteString(warnStyle.Render(fmt.Sprintf("%-20s ", f.AccountID)))
			failed.WriteString(dimStyle.Render(truncStr(f.Reason, max(innerW-21, 10))))
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Left out of totals", failed.String(), cw))
	}

	if a.report != nil {
		b.WriteString("\n")
		b.WriteString(a.renderTopCampaigns(cw))
	}
	return b.String()
}

// renderTopCampaigns lists each active account's campaigns in upstream order.
func (a App) renderTopCampaigns(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	acctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	nameW := max(innerW-12-8-4, 14)

	var body strings.Builder
	first := true
	for _, acct := range a.report.Accounts {
		if !acct.Active {
			continue
		}
		if !first {
			body.WriteString("\n")
		}
		first = false
		body.WriteString(acctStyle.Render(cli.FormatAccount(acct.Label)))
		for _, c := range acct.Campaigns {
			body.WriteString("\n")
			body.WriteString(nameStyle.Render(fmt.Sprintf("  %-*s ", nameW, truncStr(c.Name, nameW))))
			body.WriteString(valueStyle.Render(fmt.Sprintf("%12s %8s",
				cli.FormatMoney(c.Spend), cli.FormatNumber(c.Conversions))))
		}
	}
	if first {
		body.WriteString(valueStyle.Render("No campaign has spent today."))
	}
	return components.ContentCard("Campaigns", body.String(), cw)
}
