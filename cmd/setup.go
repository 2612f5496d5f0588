package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/tui"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the access token, accounts and theme",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	var (
		token    string
		accounts = strings.Join(cfg.Accounts.IDs, "\n")
		themeSel = theme.ByName(cfg.Appearance.Theme).Name
		interval = cfg.TUI.RefreshIntervalSec
	)

	tokenDesc := "Marketing API access token with ads_read."
	if cfg.Graph.AccessToken != "" {
		tokenDesc += fmt.Sprintf(" Current: %s. Leave blank to keep it.", maskAPIKey(cfg.Graph.AccessToken))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Title, th.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Access token").
				Description(tokenDesc).
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" && cfg.Graph.AccessToken == "" {
						return errors.New("an access token is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Ad account IDs").
				Description("One per line or comma separated, e.g. act_1234567890.").
				Lines(4).
				Value(&accounts).
				Validate(func(s string) error {
					if len(tui.ParseAccountIDs(s)) == 0 {
						return errors.New("at least one account is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Dashboard auto-refresh").
				Options(
					huh.NewOption("Every 30 seconds", 30),
					huh.NewOption("Every minute", 60),
					huh.NewOption("Every 5 minutes", 300),
				).
				Value(&interval),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeSel),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if tok := strings.TrimSpace(token); tok != "" {
		cfg.Graph.AccessToken = tok
	}
	cfg.SetAccounts(tui.ParseAccountIDs(accounts))
	cfg.TUI.RefreshIntervalSec = interval
	cfg.Appearance.Theme = themeSel

	if err := config.Save(flagConfigPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfigPath)
	fmt.Println("  Run `adburn setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
