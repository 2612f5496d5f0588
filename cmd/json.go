package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/theirongolddev/adburn/internal/daemon"

	"github.com/spf13/cobra"
)

var flagJSONDashboard bool

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Print one cycle as the HTTP API's JSON envelope",
	Long: "Print {accounts, generatedAt} like GET /api/metrics, or with --dashboard\n" +
		"the derived totals, products and hourly projection like GET /api/dashboard.\n" +
		"A failed cycle prints {error} and exits non-zero.",
	RunE: runJSON,
}

func init() {
	jsonCmd.Flags().BoolVar(&flagJSONDashboard, "dashboard", false, "Include derived totals, products and hourly projection")
	rootCmd.AddCommand(jsonCmd)
}

func runJSON(cmd *cobra.Command, _ []string) error {
	flagQuiet = true
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	fail := func(msg string) error {
		_ = enc.Encode(daemon.ErrorResponse{Error: msg})
		cmd.SilenceErrors = true
		return errors.New(msg)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fail(err.Error())
	}
	dash, err := cycleFor(cfg)
	if err != nil {
		return fail(daemon.CycleErrorMessage(err))
	}

	if flagJSONDashboard {
		return enc.Encode(daemon.DashboardFromModel(dash))
	}
	return enc.Encode(daemon.MetricsFromReport(dash.Report))
}
