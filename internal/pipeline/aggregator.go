package pipeline

import (
	"github.com/theirongolddev/adburn/internal/graph"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/shopspring/decimal"
)

// AccountLabel derives the display label: the last 4 characters of the id.
func AccountLabel(id string) string {
	r := []rune(id)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return string(r)
}

// SummarizeAccount folds normalized records into one account summary.
// An empty list is a valid inactive account with zero totals.
func SummarizeAccount(id string, records []model.CampaignRecord) model.AccountSummary {
	s := model.AccountSummary{
		ID:         id,
		Label:      AccountLabel(id),
		TotalSpend: decimal.Zero,
		Campaigns:  make([]model.CampaignRecord, 0, len(records)),
	}
	for _, r := range records {
		s.TotalSpend = s.TotalSpend.Add(r.Spend)
		s.TotalConversions += r.Conversions
		s.Campaigns = append(s.Campaigns, r)
	}
	s.Active = len(s.Campaigns) > 0
	return s
}

// NormalizeAccount normalizes raw rows in upstream order and summarizes them.
func NormalizeAccount(id string, rows []graph.Campaign, actionType string) model.AccountSummary {
	records := make([]model.CampaignRecord, 0, len(rows))
	for _, row := range rows {
		if rec, ok := NormalizeCampaign(row, actionType); ok {
			records = append(records, rec)
		}
	}
	return SummarizeAccount(id, records)
}

// Totals sums spend and conversions over the given accounts.
func Totals(accounts []model.AccountSummary) (decimal.Decimal, int64) {
	spend := decimal.Zero
	var conv int64
	for _, a := range accounts {
		spend = spend.Add(a.TotalSpend)
		conv += a.TotalConversions
	}
	return spend, conv
}

// AggregateProducts routes every campaign of every account into its product
// bucket. Buckets are returned in rule order, fallback last, and buckets
// with zero spend are omitted.
func AggregateProducts(accounts []model.AccountSummary, c *Classifier, th Thresholds) []model.ProductStats {
	buckets := c.Buckets()
	idx := make(map[string]int, len(buckets))
	stats := make([]model.ProductStats, len(buckets))
	for i, b := range buckets {
		idx[b.Code] = i
		stats[i] = model.ProductStats{Code: b.Code, Label: b.Label}
		stats[i].Spend = decimal.Zero
	}

	for _, a := range accounts {
		for _, rec := range a.Campaigns {
			ps := &stats[idx[c.Classify(rec.Name).Code]]
			ps.Spend = ps.Spend.Add(rec.Spend)
			ps.Conversions += rec.Conversions
			ps.Campaigns++
		}
	}

	out := make([]model.ProductStats, 0, len(stats))
	for _, ps := range stats {
		if !ps.Spend.IsPositive() {
			continue
		}
		ps.KPI = th.KPI(ps.Spend, ps.Conversions)
		out = append(out, ps)
	}
	return out
}

// AggregateAccounts derives a KPI row for every account in report order.
func AggregateAccounts(accounts []model.AccountSummary, th Thresholds) []model.AccountKPI {
	out := make([]model.AccountKPI, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.AccountKPI{
			AccountID: a.ID,
			Label:     a.Label,
			Active:    a.Active,
			Campaigns: len(a.Campaigns),
			KPI:       th.KPI(a.TotalSpend, a.TotalConversions),
		})
	}
	return out
}
