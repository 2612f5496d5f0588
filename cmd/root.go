package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/theirongolddev/adburn/internal/cli"
	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/graph"
	"github.com/theirongolddev/adburn/internal/logging"
	"github.com/theirongolddev/adburn/internal/model"
	"github.com/theirongolddev/adburn/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfigPath string
	flagAccounts   []string
	flagQuiet      bool
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "adburn",
	Short: "Today's ad spend and conversations across accounts",
	Long: "Poll the advertising reporting API for today's campaign insights,\n" +
		"roll them up per account and product, and rate cost per result.",
	SilenceUsage: true,
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", config.Path(), "Config file path")
	rootCmd.PersistentFlags().StringSliceVarP(&flagAccounts, "account", "a", nil, "Ad account id (repeatable, overrides config and env)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return cfg, err
	}
	if len(flagAccounts) > 0 {
		cfg.SetAccounts(flagAccounts)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the command logger. Quiet mode only lets warnings through.
func newLogger(cfg config.Config) *zap.Logger {
	level := cfg.Log.Level
	if flagQuiet && flagLogLevel == "" {
		level = "warn"
	}
	log, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newFetcher returns the graph client as a Fetcher, or nil when no token is
// configured. A typed nil *graph.Client must not leak into the interface.
func newFetcher(cfg config.Config) pipeline.Fetcher {
	c := graph.NewClient(graph.Options{
		Token:    cfg.Graph.AccessToken,
		BaseURL:  cfg.Graph.BaseURL,
		Version:  cfg.Graph.APIVersion,
		MaxPages: cfg.Graph.MaxPages,
	})
	if c == nil {
		return nil
	}
	return c
}

func newRunner(cfg config.Config, log *zap.Logger) *pipeline.Runner {
	return pipeline.NewRunner(cfg, newFetcher(cfg), log)
}

func summaryOptions(cfg config.Config) pipeline.SummaryOptions {
	return pipeline.SummaryOptions{
		Classifier: pipeline.ClassifierFromConfig(cfg),
		Thresholds: pipeline.ThresholdsFromConfig(cfg),
	}
}

// runCycle is the shared load path of the one-shot commands: load config,
// run one cycle and derive the dashboard.
func runCycle() (config.Config, model.Dashboard, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, model.Dashboard{}, err
	}
	dash, err := cycleFor(cfg)
	return cfg, dash, err
}

func cycleFor(cfg config.Config) (model.Dashboard, error) {
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Fetching %d accounts...\n", len(cfg.Accounts.IDs))
	}
	report, err := newRunner(cfg, log).Run(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}

	opts := summaryOptions(cfg)
	opts.Hour = report.GeneratedAt.In(cfg.Location()).Hour()
	return pipeline.Summarize(report, opts), nil
}

// printFailures lists accounts left out of the totals.
func printFailures(report *model.Report) {
	if report == nil || len(report.Failed) == 0 {
		return
	}
	fmt.Println()
	for _, f := range report.Failed {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%s left out of totals: %s", f.AccountID, f.Reason)))
	}
}
