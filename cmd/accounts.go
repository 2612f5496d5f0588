package cmd

import (
	"fmt"

	"github.com/theirongolddev/adburn/internal/cli"

	"github.com/spf13/cobra"
)

var flagShowCampaigns bool

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Per-account spend, conversations and cost per result",
	RunE:  runAccounts,
}

func init() {
	accountsCmd.Flags().BoolVar(&flagShowCampaigns, "campaigns", false, "List each account's campaigns")
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(_ *cobra.Command, _ []string) error {
	_, dash, err := runCycle()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ACCOUNTS  Today"))
	fmt.Println()

	rows := make([][]string, 0, len(dash.Accounts)+2)
	for _, a := range dash.Accounts {
		rows = append(rows, []string{
			cli.FormatAccount(a.Label),
			cli.FormatNumber(int64(a.Campaigns)),
			cli.FormatMoney(a.Spend),
			cli.FormatNumber(a.Conversions),
			cli.FormatCPR(a.CostPerResult),
			cli.RenderStatus(a.Status),
		})
	}
	if len(rows) > 0 {
		g := dash.Global
		rows = append(rows, []string{"---"}, []string{
			"Total",
			cli.FormatNumber(int64(dash.Report.CampaignCount())),
			cli.FormatMoney(g.Spend),
			cli.FormatNumber(g.Conversions),
			cli.FormatCPR(g.CostPerResult),
			cli.RenderStatus(g.Status),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Campaigns", "Spend", "Conv.", "CPR", "Status"},
		Rows:    rows,
	}))

	if flagShowCampaigns {
		for _, a := range dash.Report.Accounts {
			if !a.Active {
				continue
			}
			campRows := make([][]string, 0, len(a.Campaigns))
			for _, c := range a.Campaigns {
				campRows = append(campRows, []string{c.Name, cli.FormatMoney(c.Spend), cli.FormatNumber(c.Conversions)})
			}
			fmt.Println()
			fmt.Print(cli.RenderTable(cli.Table{
				Title:   cli.FormatAccount(a.Label),
				Headers: []string{"Campaign", "Spend", "Conv."},
				Rows:    campRows,
			}))
		}
	}

	printFailures(dash.Report)
	fmt.Println()
	return nil
}
