package cmd

import (
	"fmt"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/tui"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so every background style produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alt screen owns the terminal, so cycles log nowhere.
	factory := func(c config.Config) tui.Cycler {
		return newRunner(c, zap.NewNop())
	}

	app := tui.NewApp(cfg, flagConfigPath, factory)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
