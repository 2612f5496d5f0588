// Package model defines domain types for adburn campaign reports and KPIs.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignRecord is one campaign from the upstream report after normalization.
// Only records with Spend > 0 exist.
type CampaignRecord struct {
	ID          string
	Name        string
	Spend       decimal.Decimal
	Conversions int64
}

// AccountSummary folds the campaigns fetched for a single account.
type AccountSummary struct {
	ID               string
	Label            string
	TotalSpend       decimal.Decimal
	TotalConversions int64
	Active           bool
	Campaigns        []CampaignRecord // upstream order, never nil
}

// AccountFailure records why an account is absent from a report.
type AccountFailure struct {
	AccountID string
	Reason    string
}

// Report is the result of one fetch cycle. Failed accounts are listed in
// Failed and are never present in Accounts.
type Report struct {
	ID          string
	Accounts    []AccountSummary
	Failed      []AccountFailure
	GeneratedAt time.Time
}

// CampaignCount returns the number of retained campaigns across all accounts.
func (r *Report) CampaignCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, a := range r.Accounts {
		n += len(a.Campaigns)
	}
	return n
}
