package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/graph"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher map[string]func() ([]graph.Campaign, error)

func (f fakeFetcher) FetchCampaigns(_ context.Context, id string) ([]graph.Campaign, error) {
	fn, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("unknown account %s", id)
	}
	return fn()
}

func TestFetchAccounts_IsolatesFailures(t *testing.T) {
	f := fakeFetcher{
		"a": func() ([]graph.Campaign, error) { return []graph.Campaign{row("CD_1", `"2"`)}, nil },
		"b": func() ([]graph.Campaign, error) { return nil, errors.New("boom") },
		"c": func() ([]graph.Campaign, error) { panic("bad row") },
		"d": func() ([]graph.Campaign, error) { return nil, nil },
	}

	results, err := FetchAccounts(context.Background(), f, []string{"a", "b", "c", "d"}, sentinel)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.False(t, results[2].OK())
	assert.Contains(t, results[2].Err.Error(), "panic")
	assert.True(t, results[3].OK())
	assert.False(t, results[3].Summary.Active)

	ok := Successful(results)
	require.Len(t, ok, 2)
	assert.Equal(t, "a", ok[0].ID)
	assert.Equal(t, "d", ok[1].ID)

	failed := Failures(results)
	require.Len(t, failed, 2)
	assert.Equal(t, "b", failed[0].AccountID)
	assert.Equal(t, "boom", failed[0].Reason)
}

func TestFetchAccounts_ContextEndsJoin(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := fakeFetcher{
		"slow": func() ([]graph.Campaign, error) {
			<-release
			return nil, nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := FetchAccounts(ctx, f, []string{"slow"}, sentinel)
	assert.ErrorIs(t, err, ErrCycle)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func testConfig(token string, ids ...string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Graph.AccessToken = token
	cfg.Accounts.IDs = ids
	return cfg
}

// newGraphServer serves act_1 with one converting campaign, act_2 with an
// upstream error object and act_3 with a zero-spend campaign.
func newGraphServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v19.0/act_1/insights":
			fmt.Fprintf(w, `{"data":[{"campaign_id":"1","campaign_name":"CD_Promo","spend":"100.00",
				"actions":[{"action_type":%q,"value":"20"}]}]}`, sentinel)
		case "/v19.0/act_2/insights":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"Unsupported get request.","type":"GraphMethodException","code":100}}`)
		case "/v19.0/act_3/insights":
			fmt.Fprint(w, `{"data":[{"campaign_id":"9","campaign_name":"MD_Idle","spend":"0"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunner_ScenarioPartialFailure(t *testing.T) {
	srv := newGraphServer(t)
	cfg := testConfig("tok", "act_1", "act_2")
	client := graph.NewClient(graph.Options{Token: "tok", BaseURL: srv.URL})

	report, err := NewRunner(cfg, client, nil).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, report.ID)

	require.Len(t, report.Accounts, 1)
	acct := report.Accounts[0]
	assert.Equal(t, "act_1", acct.ID)
	assert.True(t, acct.TotalSpend.Equal(dec("100")))
	assert.Equal(t, int64(20), acct.TotalConversions)
	assert.Len(t, acct.Campaigns, 1)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "act_2", report.Failed[0].AccountID)

	d := Summarize(report, SummaryOptions{Hour: 12, Jitter: NoJitter})
	assert.True(t, d.Global.CostPerResult.Equal(dec("5")))
	assert.Equal(t, model.StatusCritical, d.Global.Status)
}

func TestRunner_ScenarioZeroSpend(t *testing.T) {
	srv := newGraphServer(t)
	cfg := testConfig("tok", "act_3")
	client := graph.NewClient(graph.Options{Token: "tok", BaseURL: srv.URL})

	report, err := NewRunner(cfg, client, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Accounts, 1)

	acct := report.Accounts[0]
	assert.False(t, acct.Active)
	assert.Empty(t, acct.Campaigns)
	assert.True(t, acct.TotalSpend.IsZero())
}

func TestRunner_MissingCredential(t *testing.T) {
	cfg := testConfig("", "act_1")
	called := false
	f := fakeFetcher{"act_1": func() ([]graph.Campaign, error) {
		called = true
		return nil, nil
	}}

	report, err := NewRunner(cfg, f, nil).Run(context.Background())
	assert.Nil(t, report)
	var cerr *config.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, config.ErrMissingToken)
	assert.False(t, called, "no fetch may happen without credentials")
}

func TestRunner_NilFetcher(t *testing.T) {
	_, err := NewRunner(testConfig("tok", "1"), nil, nil).Run(context.Background())
	var cerr *config.ConfigError
	assert.ErrorAs(t, err, &cerr)
}
