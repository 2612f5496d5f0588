// Package cmd implements the adburn CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/adburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", flagConfigPath)
	if config.Exists(flagConfigPath) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Graph]")
	if cfg.Graph.AccessToken != "" {
		src := "config"
		if os.Getenv(config.EnvAccessToken) != "" {
			src = config.EnvAccessToken
		}
		fmt.Printf("    Access token: %s (from %s)\n", maskAPIKey(cfg.Graph.AccessToken), src)
	} else {
		fmt.Println("    Access token: not configured")
	}
	fmt.Printf("    Endpoint:     %s/%s\n", cfg.Graph.BaseURL, cfg.Graph.APIVersion)
	fmt.Printf("    Action type:  %s\n", cfg.Graph.ActionType)
	fmt.Println()

	fmt.Println("  [Accounts]")
	if len(cfg.Accounts.IDs) == 0 {
		fmt.Println("    none configured")
	}
	for _, id := range cfg.Accounts.IDs {
		fmt.Printf("    %s\n", id)
	}
	fmt.Println()

	fmt.Println("  [Products]")
	for _, p := range cfg.Products {
		fmt.Printf("    %-6s %s\n", strings.ToUpper(p.Prefix), p.Label)
	}
	fmt.Printf("    %-6s %s (fallback)\n", cfg.Fallback.Code, cfg.Fallback.Label)
	fmt.Println()

	fmt.Println("  [Thresholds]")
	fmt.Printf("    Optimal: cost/result <= $%.2f\n", cfg.Thresholds.Optimal)
	fmt.Printf("    Regular: cost/result <= $%.2f\n", cfg.Thresholds.Regular)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.DaemonInterval())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Auto-refresh: %v every %s\n", cfg.TUI.AutoRefresh, cfg.RefreshInterval())
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %s\n", err)
	}
	fmt.Println("  Run `adburn setup` to reconfigure.")
	return nil
}
