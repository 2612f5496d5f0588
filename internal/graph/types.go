package graph

import (
	"encoding/json"
	"fmt"
)

// Campaign is one row of a campaign-level insights report.
// Spend and action values arrive as strings or numbers, so they are kept raw.
type Campaign struct {
	ID           string          `json:"id,omitempty"`
	CampaignID   string          `json:"campaign_id,omitempty"`
	CampaignName string          `json:"campaign_name"`
	Spend        json.RawMessage `json:"spend,omitempty"`
	Actions      []Action        `json:"actions,omitempty"`
}

// Identifier returns the campaign id, preferring campaign_id.
func (c Campaign) Identifier() string {
	if c.CampaignID != "" {
		return c.CampaignID
	}
	return c.ID
}

// Action is one entry of the per-action-type breakdown.
type Action struct {
	ActionType string          `json:"action_type"`
	Value      json.RawMessage `json:"value"`
}

// insightsPage is the raw envelope of one insights response.
type insightsPage struct {
	Data   []Campaign `json:"data"`
	Paging *struct {
		Next string `json:"next"`
	} `json:"paging,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the upstream error object. Status is the HTTP status it came with.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("graph: %s (%s, code %d)", e.Message, e.Type, e.Code)
	}
	return fmt.Sprintf("graph: %s (code %d)", e.Message, e.Code)
}

// Unwrap maps well-known codes onto the package sentinels so callers can use
// errors.Is without inspecting codes.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == 401 || e.Status == 403 || e.Code == 190:
		return ErrUnauthorized
	case e.Status == 429 || e.Code == 4 || e.Code == 17 || e.Code == 32 || e.Code == 613:
		return ErrRateLimited
	}
	return nil
}
