package model

import "github.com/shopspring/decimal"

// Status is the efficiency tier derived from a cost-per-result value.
type Status string

const (
	StatusAwaitingData Status = "awaiting_data"
	StatusOptimal      Status = "optimal"
	StatusRegular      Status = "regular"
	StatusCritical     Status = "critical"
)

func (s Status) String() string { return string(s) }

// Label returns the dashboard badge text for the status.
func (s Status) Label() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusRegular:
		return "REGULAR"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "AWAITING DATA"
	}
}

// KPI is a spend/conversions pair with its derived ratio and tier.
type KPI struct {
	Spend         decimal.Decimal
	Conversions   int64
	CostPerResult decimal.Decimal
	Status        Status
}

// AccountKPI attaches a KPI to one account for the per-account table.
type AccountKPI struct {
	AccountID string
	Label     string
	Active    bool
	Campaigns int
	KPI
}

// ProductStats holds the rolled-up totals for one product bucket.
type ProductStats struct {
	Code      string
	Label     string
	Campaigns int
	KPI
}

// HourlyPoint is one slot of the projected intraday conversion curve.
type HourlyPoint struct {
	Hour        int
	Label       string // "HH:00"
	Conversions int64
}

// Dashboard is everything the presentation layer renders for one cycle.
type Dashboard struct {
	Report         *Report
	Global         KPI
	ActiveAccounts int
	Accounts       []AccountKPI
	Products       []ProductStats
	Hourly         []HourlyPoint
}
