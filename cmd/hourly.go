package cmd

import (
	"fmt"

	"github.com/theirongolddev/adburn/internal/cli"

	"github.com/spf13/cobra"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Projected conversations by hour of today",
	Long: "Spread today's conversation total across the operating hours.\n" +
		"The curve is an estimate from the current total, not measured per hour.",
	RunE: runHourly,
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(_ *cobra.Command, _ []string) error {
	_, dash, err := runCycle()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HOURLY RHYTHM  Projected"))
	fmt.Println()

	var peak int64
	values := make([]float64, len(dash.Hourly))
	for i, h := range dash.Hourly {
		peak = max(peak, h.Conversions)
		values[i] = float64(h.Conversions)
	}

	for _, h := range dash.Hourly {
		fmt.Println(cli.RenderHorizontalBar(h.Label, float64(h.Conversions), float64(peak), 40, cli.FormatNumber(h.Conversions)))
	}

	fmt.Printf("\n  %s  %s\n", cli.RenderSparkline(values), cli.RenderMuted("estimate from today's total"))
	fmt.Printf("  Total so far: %s conversations\n\n", cli.FormatNumber(dash.Global.Conversions))
	return nil
}
