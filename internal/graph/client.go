// Package graph provides a client for the campaign insights reporting API.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultVersion    = "v19.0"
	DefaultActionType = "onsite_conversion.messaging_conversation_started_7d"
	DefaultMaxPages   = 20

	maxBodySize = 4 << 20 // 4 MB
	fields      = "campaign_id,campaign_name,spend,actions"
)

var (
	// ErrUnauthorized indicates the access token is expired or invalid.
	ErrUnauthorized = errors.New("graph: unauthorized (access token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("graph: rate limited")
	// ErrPageLimit indicates more pages remained after MaxPages were read.
	ErrPageLimit = errors.New("graph: page limit reached")
)

// Options configures a Client. Zero values take the package defaults.
type Options struct {
	Token      string
	BaseURL    string
	Version    string
	MaxPages   int
	HTTPClient *http.Client
}

// Client fetches today's campaign-level insights for ad accounts.
type Client struct {
	token    string
	base     string
	maxPages int
	http     *http.Client
}

// NewClient creates a client. Returns nil if the token is empty.
func NewClient(opts Options) *Client {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	hc := opts.HTTPClient
	if hc == nil {
		// No timeout beyond the transport default.
		hc = &http.Client{}
	}
	return &Client{
		token:    token,
		base:     base + "/" + strings.Trim(version, "/"),
		maxPages: maxPages,
		http:     hc,
	}
}

// FetchCampaigns returns today's campaign rows for one account, in upstream
// order, following paging cursors that stay on the configured host.
func (c *Client) FetchCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, errors.New("graph: empty account id")
	}

	q := url.Values{}
	q.Set("fields", fields)
	q.Set("date_preset", "today")
	q.Set("level", "campaign")
	q.Set("access_token", c.token)
	next := c.base + "/" + url.PathEscape(accountID) + "/insights?" + q.Encode()

	var out []Campaign
	for page := 0; next != "" && page < c.maxPages; page++ {
		p, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Data...)

		next = ""
		if p.Paging != nil && strings.HasPrefix(p.Paging.Next, c.base+"/") {
			next = p.Paging.Next
		}
	}
	if next != "" {
		// A partial page set would undercount the account.
		return nil, fmt.Errorf("%w after %d pages", ErrPageLimit, c.maxPages)
	}
	if out == nil {
		out = []Campaign{}
	}
	return out, nil
}

// getPage performs one GET and decodes the insights envelope. An error object
// in the body wins over the HTTP status.
func (c *Client) getPage(ctx context.Context, rawURL string) (*insightsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/adburn/1.0")

	//nolint:gosec // URL is built from configured base or a same-host cursor
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph: request failed: %w", redact(err, c.token))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("graph: reading response: %w", err)
	}

	var page insightsPage
	decodeErr := json.Unmarshal(body, &page)
	if decodeErr == nil && page.Error != nil {
		page.Error.Status = resp.StatusCode
		return nil, page.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("graph: unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("graph: parsing insights: %w", decodeErr)
	}
	return &page, nil
}

// redact strips the access token from transport errors, which embed the URL.
func redact(err error, token string) error {
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "REDACTED"))
}
