package pipeline

import "github.com/theirongolddev/adburn/internal/model"

// SummaryOptions parameterize the cross-account stage.
type SummaryOptions struct {
	Classifier *Classifier
	Thresholds Thresholds
	Hour       int // current hour of day in the reporting timezone
	Jitter     Jitter
}

// Summarize derives global KPIs, per-account and per-product rollups and the
// hourly projection from a report. Global totals cover active accounts only.
func Summarize(report *model.Report, opts SummaryOptions) model.Dashboard {
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier()
	}
	if opts.Thresholds.Optimal.IsZero() && opts.Thresholds.Regular.IsZero() {
		opts.Thresholds = DefaultThresholds()
	}

	var accounts []model.AccountSummary
	if report != nil {
		accounts = report.Accounts
	}

	active := make([]model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		if a.TotalSpend.IsPositive() {
			active = append(active, a)
		}
	}
	spend, conv := Totals(active)

	return model.Dashboard{
		Report:         report,
		Global:         opts.Thresholds.KPI(spend, conv),
		ActiveAccounts: len(active),
		Accounts:       AggregateAccounts(accounts, opts.Thresholds),
		Products:       AggregateProducts(accounts, opts.Classifier, opts.Thresholds),
		Hourly:         ProjectHourly(opts.Hour, conv, opts.Jitter),
	}
}
