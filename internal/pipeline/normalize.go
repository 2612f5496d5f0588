// Package pipeline turns raw insights rows into account summaries, product
// rollups, and dashboard KPIs.
package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/theirongolddev/adburn/internal/graph"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/shopspring/decimal"
)

// Bounds on parsed numbers. Rescaling a decimal with a huge exponent runs
// through big.Int and effectively never returns, so such values are treated
// as malformed.
const (
	maxExponent = 18
	maxDigits   = 30
)

// NormalizeCampaign converts one raw row into a CampaignRecord. The second
// return is false when the row has no positive spend and must be dropped.
// Missing or malformed fields resolve to zero and never fail.
func NormalizeCampaign(raw graph.Campaign, actionType string) (model.CampaignRecord, bool) {
	spend := parseDecimal(raw.Spend)
	if !spend.IsPositive() {
		return model.CampaignRecord{}, false
	}
	return model.CampaignRecord{
		ID:          raw.Identifier(),
		Name:        raw.CampaignName,
		Spend:       spend,
		Conversions: actionCount(raw.Actions, actionType),
	}, true
}

// actionCount returns the value of the first action matching actionType,
// truncated to an integer. Absent, negative or unparseable values count as 0.
func actionCount(actions []graph.Action, actionType string) int64 {
	for _, a := range actions {
		if a.ActionType != actionType {
			continue
		}
		v := parseDecimal(a.Value)
		if !v.IsPositive() {
			return 0
		}
		return v.Truncate(0).IntPart()
	}
	return 0
}

// parseDecimal accepts a JSON number or a numeric string. Values outside the
// exponent and digit bounds resolve to zero like any other malformed field.
func parseDecimal(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp < -maxExponent || exp > maxExponent {
		return decimal.Zero
	}
	if len(strings.TrimPrefix(d.Coefficient().String(), "-")) > maxDigits {
		return decimal.Zero
	}
	return d
}
