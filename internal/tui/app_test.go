package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"
	"github.com/theirongolddev/adburn/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type stubCycler struct {
	report *model.Report
	err    error
}

func (s stubCycler) Run(context.Context) (*model.Report, error) { return s.report, s.err }

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Graph.AccessToken = "token"
	cfg.Accounts.IDs = []string{"act_1001", "act_2002"}
	return cfg
}

func activeReport() *model.Report {
	acct := pipeline.SummarizeAccount("act_1001", []model.CampaignRecord{
		{ID: "1", Name: "CD_Promo", Spend: decimal.RequireFromString("100.00"), Conversions: 20},
	})
	return &model.Report{
		ID:          "cycle-1",
		Accounts:    []model.AccountSummary{acct},
		Failed:      []model.AccountFailure{{AccountID: "act_2002", Reason: "graph: boom"}},
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local),
	}
}

func newTestApp(t *testing.T, cfg config.Config) App {
	t.Helper()
	a := NewApp(cfg, "", func(config.Config) Cycler { return stubCycler{report: activeReport()} })
	a.jitter = pipeline.NoJitter
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.Local)
	a.now = func() time.Time { return now }
	a.width, a.height = 140, 50
	return a
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return next, cmd
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_StartsFirstCycle(t *testing.T) {
	a := newTestApp(t, testConfig())
	if a.needSetup {
		t.Fatal("valid config should not open the setup form")
	}
	if !a.refreshing {
		t.Fatal("first cycle should be in flight")
	}
	if a.Init() == nil {
		t.Fatal("Init returned no command")
	}
	if v := a.View(); !strings.Contains(v, "Fetching 2 accounts") {
		t.Fatalf("loading view missing fetch notice:\n%s", v)
	}
}

func TestNewApp_MissingTokenOpensSetup(t *testing.T) {
	cfg := testConfig()
	cfg.Graph.AccessToken = ""
	a := newTestApp(t, cfg)

	if !a.needSetup || a.setupForm == nil {
		t.Fatal("missing token should open the setup form")
	}
	if a.cycler != nil {
		t.Fatal("no cycler should be built before setup finishes")
	}
	if !strings.Contains(a.setupVals.accounts, "act_1001") {
		t.Fatalf("setup form should be prefilled with accounts, got %q", a.setupVals.accounts)
	}
}

func TestReportMsg_RendersDashboard(t *testing.T) {
	a := newTestApp(t, testConfig())
	a, _ = update(t, a, ReportMsg{Report: activeReport(), Took: time.Second})

	if !a.loaded || a.refreshing {
		t.Fatalf("loaded=%v refreshing=%v after report", a.loaded, a.refreshing)
	}
	if got := a.dash.Global.CostPerResult.String(); got != "5" {
		t.Fatalf("global CPR = %s, want 5", got)
	}

	v := a.View()
	for _, want := range []string{"$100.00", "CRITICAL", "1 / 2", "1 failed", "Hourly rhythm"} {
		if !strings.Contains(v, want) {
			t.Errorf("overview missing %q", want)
		}
	}
}

func TestReportMsg_ErrorKeepsLoadedData(t *testing.T) {
	a := newTestApp(t, testConfig())
	a, _ = update(t, a, ReportMsg{Report: activeReport()})
	a, _ = update(t, a, ReportMsg{Err: errors.New("boom")})

	if a.report == nil {
		t.Fatal("earlier report dropped after a failed cycle")
	}
	v := a.View()
	if !strings.Contains(v, "error connecting to the reporting API") {
		t.Error("error banner missing")
	}
	if !strings.Contains(v, "showing data from 10:00:00") {
		t.Error("banner should say which data is still shown")
	}
	if !strings.Contains(v, "$100.00") {
		t.Error("loaded data should stay visible under the banner")
	}
}

func TestReportMsg_ErrorBeforeAnyData(t *testing.T) {
	a := newTestApp(t, testConfig())
	a, _ = update(t, a, ReportMsg{Err: &config.ConfigError{Err: config.ErrNoAccounts}})

	v := a.View()
	if !strings.Contains(v, "missing credentials") {
		t.Error("config fault should be shown verbatim")
	}
	if !strings.Contains(v, "No cycle has completed yet") {
		t.Error("empty state missing")
	}
}

func TestReportMsg_ZeroActivityIsNotLoading(t *testing.T) {
	a := newTestApp(t, testConfig())
	idle := &model.Report{
		Accounts:    []model.AccountSummary{pipeline.SummarizeAccount("act_1001", nil)},
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local),
	}
	a, _ = update(t, a, ReportMsg{Report: idle})

	v := a.View()
	if strings.Contains(v, "Fetching") {
		t.Error("zero activity rendered as loading")
	}
	for _, want := range []string{"$0.00", "AWAITING DATA", "no spend yet today"} {
		if !strings.Contains(v, want) {
			t.Errorf("zero-activity overview missing %q", want)
		}
	}
}

func TestKeys_RefreshAndTabs(t *testing.T) {
	a := newTestApp(t, testConfig())
	a, _ = update(t, a, ReportMsg{Report: activeReport()})

	a, cmd := update(t, a, keyMsg("r"))
	if !a.refreshing || cmd == nil {
		t.Fatal("r should start a refresh")
	}
	if _, cmd = update(t, a, keyMsg("r")); cmd != nil {
		t.Fatal("r while refreshing should not start a second cycle")
	}

	a, _ = update(t, a, keyMsg("a"))
	if a.activeTab != 1 {
		t.Fatalf("a -> tab %d, want 1", a.activeTab)
	}
	if v := a.View(); !strings.Contains(v, "Account 1001") || !strings.Contains(v, "Left out of totals") {
		t.Error("accounts tab missing account row or failure list")
	}

	a, _ = update(t, a, keyMsg("p"))
	if a.activeTab != 2 {
		t.Fatalf("p -> tab %d, want 2", a.activeTab)
	}
	if v := a.View(); !strings.Contains(v, "Cuerpo Divino") {
		t.Error("products tab missing CD bucket")
	}

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != 0 {
		t.Fatalf("right from last tab -> %d, want 0", a.activeTab)
	}
}

func TestKeys_AutoRefreshToggle(t *testing.T) {
	a := newTestApp(t, testConfig())
	before := a.autoRefresh
	a, _ = update(t, a, keyMsg("R"))
	if a.autoRefresh == before {
		t.Fatal("R did not toggle auto refresh")
	}
}

func TestTick_AutoRefreshAfterInterval(t *testing.T) {
	a := newTestApp(t, testConfig())
	a, _ = update(t, a, ReportMsg{Report: activeReport()})
	a.autoRefresh = true

	a, _ = update(t, a, tickMsg{})
	if a.refreshing {
		t.Fatal("refresh started before the interval elapsed")
	}

	a.lastRefresh = a.now().Add(-2 * a.refreshInterval)
	a, _ = update(t, a, tickMsg{})
	if !a.refreshing {
		t.Fatal("refresh not started after the interval elapsed")
	}
}

func TestFetchCmd_NilCycler(t *testing.T) {
	msg, ok := fetchCmd(nil)().(ReportMsg)
	if !ok {
		t.Fatal("fetchCmd did not return a ReportMsg")
	}
	var cerr *config.ConfigError
	if !errors.As(msg.Err, &cerr) {
		t.Fatalf("err = %v, want ConfigError", msg.Err)
	}
}

func TestParseAccountIDs(t *testing.T) {
	got := ParseAccountIDs(" act_1, act_2\nact_3\t")
	if strings.Join(got, "|") != "act_1|act_2|act_3" {
		t.Fatalf("ParseAccountIDs = %v", got)
	}
	if ParseAccountIDs(" ,\n") != nil {
		t.Fatal("blank input should give nil")
	}
}

func TestSetupValuesApply_BlankTokenKeepsExisting(t *testing.T) {
	cfg := testConfig()
	out := setupValues{accounts: "act_9", theme: "terminal"}.apply(cfg)
	if out.Graph.AccessToken != "token" {
		t.Fatalf("token = %q, want existing", out.Graph.AccessToken)
	}
	if len(out.Accounts.IDs) != 1 || out.Accounts.IDs[0] != "act_9" {
		t.Fatalf("accounts = %v", out.Accounts.IDs)
	}
	if out.Appearance.Theme != "terminal" {
		t.Fatalf("theme = %q", out.Appearance.Theme)
	}
}
