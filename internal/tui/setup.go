package tui

import (
	"errors"
	"strings"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the answers bound to the setup form fields.
type setupValues struct {
	token    string
	accounts string
	theme    string
}

func setupValuesFrom(cfg config.Config) setupValues {
	return setupValues{
		accounts: strings.Join(cfg.Accounts.IDs, "\n"),
		theme:    theme.ByName(cfg.Appearance.Theme).Name,
	}
}

// apply copies the answers into cfg. A blank token keeps the existing one.
func (v setupValues) apply(cfg config.Config) config.Config {
	if tok := strings.TrimSpace(v.token); tok != "" {
		cfg.Graph.AccessToken = tok
	}
	cfg.Accounts.IDs = ParseAccountIDs(v.accounts)
	if v.theme != "" {
		cfg.Appearance.Theme = v.theme
	}
	return cfg
}

// ParseAccountIDs splits free text on commas and whitespace.
func ParseAccountIDs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func newSetupForm(cfg config.Config, path string, vals *setupValues) *huh.Form {
	hasToken := cfg.Graph.AccessToken != ""

	tokenDesc := "Marketing API access token with ads_read."
	if hasToken {
		tokenDesc += " Leave blank to keep the current one."
	}

	intro := "Today's spend and conversations across your ad accounts."
	if path != "" {
		intro += "\nAnswers are saved to " + path + "."
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Title, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to adburn").
				Description(intro),
			huh.NewInput().
				Title("Access token").
				Description(tokenDesc).
				EchoMode(huh.EchoModePassword).
				Value(&vals.token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" && !hasToken {
						return errors.New("an access token is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Ad account IDs").
				Description("One per line or comma separated, e.g. act_1234567890.").
				Lines(4).
				Value(&vals.accounts).
				Validate(func(s string) error {
					if len(ParseAccountIDs(s)) == 0 {
						return errors.New("at least one account is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithShowHelp(true)
}
