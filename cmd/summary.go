package cmd

import (
	"fmt"

	"github.com/theirongolddev/adburn/internal/cli"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Today's totals, cost per result and status",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	cfg, dash, err := runCycle()
	if err != nil {
		return err
	}
	g := dash.Global

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("AD SPEND  Today  %s", dash.Report.GeneratedAt.In(cfg.Location()).Format("Jan 2 15:04"))))
	fmt.Println()

	rows := [][]string{
		{"Spend", cli.FormatMoney(g.Spend)},
		{"Conversations", cli.FormatNumber(g.Conversions)},
		{"Cost / result", cli.FormatCPR(g.CostPerResult)},
		{"Status", cli.RenderStatus(g.Status)},
		{"---"},
		{"Active accounts", fmt.Sprintf("%d / %d", dash.ActiveAccounts, len(cfg.Accounts.IDs))},
		{"Campaigns", cli.FormatNumber(int64(dash.Report.CampaignCount()))},
	}
	fmt.Print(cli.RenderTable(cli.Table{Rows: rows}))

	if len(dash.Products) > 0 {
		fmt.Println()
		prodRows := make([][]string, 0, len(dash.Products))
		for _, p := range dash.Products {
			prodRows = append(prodRows, []string{
				p.Label,
				cli.FormatMoney(p.Spend),
				cli.FormatShare(p.Spend, g.Spend),
				cli.RenderStatus(p.Status),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By product",
			Headers: []string{"Product", "Spend", "Share", "Status"},
			Rows:    prodRows,
		}))
	}

	if g.Spend.IsZero() {
		fmt.Println()
		fmt.Println(cli.RenderMuted("  No spend recorded yet today."))
	}
	printFailures(dash.Report)
	fmt.Println()
	return nil
}
