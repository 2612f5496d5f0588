// Package config loads and persists adburn settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables that override the config file.
const (
	EnvAccessToken = "FACEBOOK_ACCESS_TOKEN"
	EnvAccountIDs  = "ADBURN_ACCOUNT_IDS"
	// EnvAccountPrefix is suffixed with 1..MaxNumberedAccounts.
	EnvAccountPrefix    = "FB_ACCOUNT_ID_"
	MaxNumberedAccounts = 4
)

var (
	// ErrMissingToken indicates no access token is configured.
	ErrMissingToken = errors.New("access token not set")
	// ErrNoAccounts indicates the account list is empty.
	ErrNoAccounts = errors.New("no account ids configured")
)

// ConfigError is a fatal precondition fault. No cycle may run while it holds.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "missing credentials: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Config holds all adburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Graph      GraphConfig      `toml:"graph"`
	Accounts   AccountsConfig   `toml:"accounts"`
	Products   []ProductRule    `toml:"products"`
	Fallback   ProductRule      `toml:"fallback"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Daemon     DaemonConfig     `toml:"daemon"`
	TUI        TUIConfig        `toml:"tui"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	// Timezone bounds the hourly projection window. Empty means local time.
	Timezone string `toml:"timezone,omitempty"`
}

// GraphConfig holds reporting API settings.
type GraphConfig struct {
	AccessToken string `toml:"access_token,omitempty"`
	BaseURL     string `toml:"base_url,omitempty"`
	APIVersion  string `toml:"api_version,omitempty"`
	ActionType  string `toml:"action_type,omitempty"`
	MaxPages    int    `toml:"max_pages,omitempty"`
}

// AccountsConfig lists the ad accounts to poll, in display order.
type AccountsConfig struct {
	IDs []string `toml:"ids"`
}

// ProductRule maps a campaign name prefix to a product bucket.
type ProductRule struct {
	Prefix string `toml:"prefix,omitempty"`
	Code   string `toml:"code"`
	Label  string `toml:"label"`
}

// ThresholdsConfig holds the inclusive upper bounds of the status tiers.
type ThresholdsConfig struct {
	Optimal float64 `toml:"optimal"`
	Regular float64 `toml:"regular"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr           string   `toml:"addr"`
	IntervalSec    int      `toml:"interval_sec"`
	EventsBuffer   int      `toml:"events_buffer"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultProducts returns the built-in bucket rules in match priority order.
func DefaultProducts() []ProductRule {
	return []ProductRule{
		{Prefix: "CD", Code: "CD", Label: "Cuerpo Divino"},
		{Prefix: "MD", Code: "MD", Label: "Mujer Divina"},
		{Prefix: "NT", Code: "NT", Label: "Nutrikids"},
		{Prefix: "KD", Code: "KD", Label: "Kid"},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Graph: GraphConfig{
			BaseURL:    "https://graph.facebook.com",
			APIVersion: "v19.0",
			ActionType: "onsite_conversion.messaging_conversation_started_7d",
			MaxPages:   20,
		},
		Products: DefaultProducts(),
		Fallback: ProductRule{Code: "OTROS", Label: "Others / No Code"},
		Thresholds: ThresholdsConfig{
			Optimal: 0.4,
			Regular: 0.9,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  60,
			EventsBuffer: 200,
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "adburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "adburn")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (the default path when empty), returning
// defaults if it doesn't exist, then applies environment overrides.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv(getenv)
	cfg.Accounts.IDs = normalizeIDs(cfg.Accounts.IDs)
	return cfg, nil
}

// applyEnv lets the environment win over the file. A numbered or list
// variable replaces the file's account list entirely.
func (c *Config) applyEnv(getenv func(string) string) {
	if tok := strings.TrimSpace(getenv(EnvAccessToken)); tok != "" {
		c.Graph.AccessToken = tok
	}

	var ids []string
	for i := 1; i <= MaxNumberedAccounts; i++ {
		if id := strings.TrimSpace(getenv(EnvAccountPrefix + strconv.Itoa(i))); id != "" {
			ids = append(ids, id)
		}
	}
	if list := getenv(EnvAccountIDs); list != "" {
		ids = append(ids, strings.Split(list, ",")...)
	}
	if len(normalizeIDs(ids)) > 0 {
		c.Accounts.IDs = ids
	}
}

// SetAccounts replaces the account list, trimmed and deduplicated.
func (c *Config) SetAccounts(ids []string) {
	c.Accounts.IDs = normalizeIDs(ids)
}

// normalizeIDs trims blanks and drops duplicates, keeping first occurrence.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Validate checks the fatal preconditions for a fetch cycle.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Graph.AccessToken) == "" {
		errs = append(errs, ErrMissingToken)
	}
	if len(normalizeIDs(c.Accounts.IDs)) == 0 {
		errs = append(errs, ErrNoAccounts)
	}
	if len(errs) == 0 {
		return nil
	}
	return &ConfigError{Err: errors.Join(errs...)}
}

// Location resolves General.Timezone, falling back to time.Local.
func (c Config) Location() *time.Location {
	if c.General.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DaemonInterval returns the configured poll interval.
func (c Config) DaemonInterval() time.Duration {
	return time.Duration(c.Daemon.IntervalSec) * time.Second
}

// RefreshInterval returns the dashboard auto-refresh interval.
func (c Config) RefreshInterval() time.Duration {
	if c.TUI.RefreshIntervalSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TUI.RefreshIntervalSec) * time.Second
}

// Save writes the config to path (the default path when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path (the default when empty).
func Exists(path string) bool {
	if path == "" {
		path = Path()
	}
	_, err := os.Stat(path)
	return err == nil
}
