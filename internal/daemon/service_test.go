package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"
	"github.com/theirongolddev/adburn/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cyclerFunc func(ctx context.Context) (*model.Report, error)

func (f cyclerFunc) Run(ctx context.Context) (*model.Report, error) { return f(ctx) }

func sampleReport() *model.Report {
	acct := pipeline.SummarizeAccount("act_1001", []model.CampaignRecord{
		{ID: "1", Name: "CD_Promo", Spend: decimal.RequireFromString("100.00"), Conversions: 20},
	})
	return &model.Report{
		ID:          "cycle-1",
		Accounts:    []model.AccountSummary{acct},
		Failed:      []model.AccountFailure{{AccountID: "act_2", Reason: "graph: boom"}},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestService(c Cycler) *Service {
	return New(Config{Interval: time.Minute, EventsBuffer: 10, Jitter: pipeline.NoJitter}, c, nil)
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Spend: 10.5, Conversions: 100, ActiveAccounts: 1, FailedAccounts: 1}
	curr := Snapshot{Spend: 13.1, Conversions: 112, ActiveAccounts: 2, FailedAccounts: 0}

	delta := diffSnapshots(prev, curr)
	if delta.Conversions != 12 {
		t.Fatalf("Conversions delta = %d, want 12", delta.Conversions)
	}
	if delta.ActiveAccounts != 1 {
		t.Fatalf("ActiveAccounts delta = %d, want 1", delta.ActiveAccounts)
	}
	if delta.FailedAccounts != -1 {
		t.Fatalf("FailedAccounts delta = %d, want -1", delta.FailedAccounts)
	}
	if math.Abs(delta.Spend-2.6) > 1e-9 {
		t.Fatalf("Spend delta = %.2f, want 2.60", delta.Spend)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestNew_ClampsInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(Config{}, nil, nil).cfg.Interval)
	assert.Equal(t, MinInterval, New(Config{Interval: time.Second}, nil, nil).cfg.Interval)
}

func TestPollOnce_EmitsSnapshotThenDelta(t *testing.T) {
	var calls atomic.Int64
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		r := sampleReport()
		if calls.Add(1) > 2 {
			r.Failed = nil
		}
		return r, nil
	}))

	s.pollOnce(context.Background())
	s.pollOnce(context.Background())
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	assert.Equal(t, int64(3), st.PollCount)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 100.0, st.Summary.Spend)
	assert.Equal(t, int64(20), st.Summary.Conversions)
	assert.Equal(t, "critical", st.Summary.Status)

	require.Equal(t, 2, st.EventCount, "unchanged second poll must not publish")
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, "snapshot", s.events[0].Type)
	assert.Equal(t, "activity_delta", s.events[1].Type)
	assert.Equal(t, -1, s.events[1].Delta.FailedAccounts)
}

func TestPollOnce_RecordsError(t *testing.T) {
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		return nil, errors.New("upstream down")
	}))
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	assert.Equal(t, "upstream down", st.LastError)
	assert.Zero(t, st.EventCount)
}

func TestHandleMetrics_Success(t *testing.T) {
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		return sampleReport(), nil
	}))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MetricsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, "act_1001", body.Accounts[0].ID)
	assert.Equal(t, "1001", body.Accounts[0].Label)
	assert.Equal(t, 100.0, body.Accounts[0].TotalSpend)
	assert.Equal(t, int64(20), body.Accounts[0].TotalConversions)
	assert.True(t, body.Accounts[0].Active)
	assert.Len(t, body.Accounts[0].Campaigns, 1)
	assert.False(t, body.GeneratedAt.IsZero())
}

func TestHandleMetrics_MissingCredential(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Accounts.IDs = []string{"act_1"}
	runner := pipeline.NewRunner(cfg, nil, nil)

	s := newTestService(runner)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "missing credentials")
	_, hasAccounts := body["accounts"]
	assert.False(t, hasAccounts)
}

func TestHandleMetrics_GenericCycleError(t *testing.T) {
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		return nil, pipeline.ErrCycle
	}))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"error connecting to the reporting API"}`, rec.Body.String())
}

func TestRefresh_CoalescesConcurrentCallers(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		calls.Add(1)
		<-release
		return sampleReport(), nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.refresh(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

func TestHandleDashboard(t *testing.T) {
	generated := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		r := sampleReport()
		r.GeneratedAt = generated
		return r, nil
	}))
	// Served hours later; the projection still ends at the report's hour.
	s.now = func() time.Time { return generated.Add(8 * time.Hour) }

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5.0, body.Global.CostPerResult)
	assert.Equal(t, "critical", body.Global.Status)
	assert.Equal(t, "CRITICAL", body.Global.StatusLabel)
	assert.Equal(t, 1, body.ActiveAccounts)
	require.Len(t, body.Failed, 1)
	assert.Equal(t, "act_2", body.Failed[0].AccountID)
	require.Len(t, body.Products, 1)
	assert.Equal(t, "CD", body.Products[0].Code)
	require.Len(t, body.Hourly, 4)
	assert.Equal(t, "09:00", body.Hourly[3].Hour)
	assert.Equal(t, int64(20), body.Hourly[3].Conversions)
	assert.True(t, body.HourlySynthetic)
}

func TestHandleStatusAndPrometheus(t *testing.T) {
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		return sampleReport(), nil
	}))
	s.pollOnce(context.Background())
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, 60, st.PollIntervalSec)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `adburn_cycles_total{result="ok"} 1`)
	assert.Contains(t, body, `adburn_account_failures_total{account="act_2"} 1`)
	assert.Contains(t, body, `adburn_account_spend{account="act_1001"} 100`)
}

func TestHandleStream_SendsCurrentSnapshot(t *testing.T) {
	s := newTestService(cyclerFunc(func(context.Context) (*model.Report, error) {
		return sampleReport(), nil
	}))
	s.pollOnce(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: snapshot", sc.Text())
	require.True(t, sc.Scan())
	assert.True(t, strings.HasPrefix(sc.Text(), "data: "))
	assert.Contains(t, sc.Text(), `"conversions":20`)
}
