package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/theirongolddev/adburn/internal/graph"
	"github.com/theirongolddev/adburn/internal/model"
)

// ErrCycle marks a fault outside per-account isolation, such as the join
// being abandoned.
var ErrCycle = errors.New("fetch cycle failed")

// Fetcher returns today's raw campaign rows for one account.
type Fetcher interface {
	FetchCampaigns(ctx context.Context, accountID string) ([]graph.Campaign, error)
}

// AccountResult is the per-branch outcome of a fetch: exactly one of
// Summary or Err is meaningful.
type AccountResult struct {
	AccountID string
	Summary   model.AccountSummary
	Err       error
}

// OK reports whether the branch produced a summary.
func (r AccountResult) OK() bool { return r.Err == nil }

// FetchAccounts fetches every account concurrently and joins the results in
// input order. A failing or panicking branch becomes an error result and
// never affects its siblings. The returned error is non-nil only when ctx
// ends before every branch has reported.
func FetchAccounts(ctx context.Context, f Fetcher, ids []string, actionType string) ([]AccountResult, error) {
	results := make([]AccountResult, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	var wg sync.WaitGroup
	wg.Add(len(ids))
	for i, id := range ids {
		go func() {
			defer wg.Done()
			results[i] = fetchOne(ctx, f, id, actionType)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return results, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrCycle, ctx.Err())
	}
}

func fetchOne(ctx context.Context, f Fetcher, id, actionType string) (res AccountResult) {
	res.AccountID = id
	defer func() {
		if p := recover(); p != nil {
			res = AccountResult{AccountID: id, Err: fmt.Errorf("panic fetching %s: %v", id, p)}
		}
	}()

	rows, err := f.FetchCampaigns(ctx, id)
	if err != nil {
		res.Err = err
		return res
	}
	res.Summary = NormalizeAccount(id, rows, actionType)
	return res
}

// Successful keeps the summaries of OK results, preserving order.
func Successful(results []AccountResult) []model.AccountSummary {
	out := make([]model.AccountSummary, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Summary)
		}
	}
	return out
}

// Failures lists the failed accounts with their reasons.
func Failures(results []AccountResult) []model.AccountFailure {
	var out []model.AccountFailure
	for _, r := range results {
		if !r.OK() {
			out = append(out, model.AccountFailure{AccountID: r.AccountID, Reason: r.Err.Error()})
		}
	}
	return out
}
