package pipeline

import (
	"context"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes fetch cycles for a fixed configuration.
type Runner struct {
	ids          []string
	actionType   string
	fetcher      Fetcher
	precondition error
	log          *zap.Logger
	now          func() time.Time
}

// NewRunner captures the account list and action type from cfg. A failed
// cfg.Validate is remembered and returned by every Run without fetching.
func NewRunner(cfg config.Config, f Fetcher, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	actionType := cfg.Graph.ActionType
	if actionType == "" {
		actionType = config.DefaultConfig().Graph.ActionType
	}
	r := &Runner{
		ids:          append([]string(nil), cfg.Accounts.IDs...),
		actionType:   actionType,
		fetcher:      f,
		precondition: cfg.Validate(),
		log:          log,
		now:          time.Now,
	}
	if r.precondition == nil && f == nil {
		r.precondition = &config.ConfigError{Err: config.ErrMissingToken}
	}
	return r
}

// Accounts returns the configured account ids in order.
func (r *Runner) Accounts() []string { return append([]string(nil), r.ids...) }

// Run performs one full cycle. Per-account failures are logged and listed
// in Report.Failed; only configuration faults and ErrCycle are returned.
func (r *Runner) Run(ctx context.Context) (*model.Report, error) {
	if r.precondition != nil {
		return nil, r.precondition
	}

	id := uuid.NewString()
	log := r.log.With(zap.String("cycle", id))
	start := r.now()

	results, err := FetchAccounts(ctx, r.fetcher, r.ids, r.actionType)
	if err != nil {
		log.Error("fetch cycle aborted", zap.Error(err))
		return nil, err
	}

	report := &model.Report{
		ID:          id,
		Accounts:    Successful(results),
		Failed:      Failures(results),
		GeneratedAt: r.now(),
	}
	for _, f := range report.Failed {
		log.Warn("account fetch failed",
			zap.String("account", f.AccountID),
			zap.String("reason", f.Reason),
		)
	}

	spend, conv := Totals(report.Accounts)
	log.Info("fetch cycle complete",
		zap.Int("accounts", len(report.Accounts)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("campaigns", report.CampaignCount()),
		zap.String("spend", spend.StringFixed(2)),
		zap.Int64("conversions", conv),
		zap.Duration("took", r.now().Sub(start)),
	)
	return report, nil
}
