package cmd

import (
	"fmt"

	"github.com/theirongolddev/adburn/internal/cli"

	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Spend and cost per result by product line",
	RunE:  runProducts,
}

func init() {
	rootCmd.AddCommand(productsCmd)
}

func runProducts(_ *cobra.Command, _ []string) error {
	_, dash, err := runCycle()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PRODUCTS  Today"))
	fmt.Println()

	if len(dash.Products) == 0 {
		fmt.Println(cli.RenderMuted("  No product spend yet today."))
		printFailures(dash.Report)
		fmt.Println()
		return nil
	}

	total := dash.Global.Spend
	rows := make([][]string, 0, len(dash.Products))
	for _, p := range dash.Products {
		rows = append(rows, []string{
			p.Code + "  " + p.Label,
			cli.FormatNumber(int64(p.Campaigns)),
			cli.FormatMoney(p.Spend),
			cli.FormatShare(p.Spend, total),
			cli.FormatNumber(p.Conversions),
			cli.FormatCPR(p.CostPerResult),
			cli.RenderStatus(p.Status),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Product", "Campaigns", "Spend", "Share", "Conv.", "CPR", "Status"},
		Rows:    rows,
	}))

	fmt.Println()
	maxSpend := 0.0
	for _, p := range dash.Products {
		maxSpend = max(maxSpend, p.Spend.InexactFloat64())
	}
	for _, p := range dash.Products {
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-4s", p.Code), p.Spend.InexactFloat64(), maxSpend, 40, cli.FormatMoney(p.Spend)))
	}

	printFailures(dash.Report)
	fmt.Println()
	return nil
}
