// Package tui provides the interactive Bubble Tea dashboard for adburn.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"
	"github.com/theirongolddev/adburn/internal/pipeline"
	"github.com/theirongolddev/adburn/internal/tui/components"
	"github.com/theirongolddev/adburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Cycler runs one fetch cycle.
type Cycler interface {
	Run(ctx context.Context) (*model.Report, error)
}

// CyclerFactory builds a Cycler for a configuration. The app calls it again
// after the setup form changes credentials.
type CyclerFactory func(cfg config.Config) Cycler

// ReportMsg is sent when a fetch cycle finishes.
type ReportMsg struct {
	Report *model.Report
	Err    error
	Took   time.Duration
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	cfg        config.Config
	cfgPath    string
	newCycler  CyclerFactory
	cycler     Cycler
	classifier *pipeline.Classifier
	thresholds pipeline.Thresholds
	jitter     pipeline.Jitter
	now        func() time.Time

	// Data
	report  *model.Report
	dash    model.Dashboard
	loaded  bool // a cycle has finished, successfully or not
	lastErr error
	took    time.Duration

	// Refresh
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI
	width     int
	height    int
	activeTab int
	scroll    int
	showHelp  bool
	spinner   spinner.Model

	// Setup form, shown while the configuration cannot run a cycle
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
	saveErr   error
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	tickInterval     = 250 * time.Millisecond
)

// NewApp creates the dashboard model. cfgPath is where toggles and setup
// answers are saved; empty disables saving.
func NewApp(cfg config.Config, cfgPath string, factory CyclerFactory) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		cfg:             cfg,
		cfgPath:         cfgPath,
		newCycler:       factory,
		classifier:      pipeline.ClassifierFromConfig(cfg),
		thresholds:      pipeline.ThresholdsFromConfig(cfg),
		now:             time.Now,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: cfg.RefreshInterval(),
		spinner:         sp,
	}

	if cfg.Validate() != nil {
		a.needSetup = true
		vals := setupValuesFrom(cfg)
		a.setupVals = &vals
		a.setupForm = newSetupForm(cfg, cfgPath, a.setupVals)
		return a
	}
	a.cycler = factory(cfg)
	a.refreshing = true
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup {
		return tea.Batch(tea.EnableMouseCellMotion, a.setupForm.Init())
	}
	return tea.Batch(
		tea.EnableMouseCellMotion,
		fetchCmd(a.cycler),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a *App) recompute() {
	a.dash = pipeline.Summarize(a.report, pipeline.SummaryOptions{
		Classifier: a.classifier,
		Thresholds: a.thresholds,
		Hour:       a.now().In(a.cfg.Location()).Hour(),
		Jitter:     a.jitter,
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.needSetup {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scroll = max(a.scroll-1, 0)
		case tea.MouseButtonWheelDown:
			a.scroll++
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
					a.scroll = 0
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ReportMsg:
		a.refreshing = false
		a.loaded = true
		a.took = msg.Took
		a.lastRefresh = a.now()
		if msg.Err != nil {
			a.lastErr = msg.Err
			return a, nil
		}
		a.lastErr = nil
		a.report = msg.Report
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		if a.loaded && a.autoRefresh && !a.refreshing &&
			a.now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			return a, tea.Batch(tickCmd(), fetchCmd(a.cycler))
		}
		return a, tickCmd()
	}

	// Cursor blinks and other form internals.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, fetchCmd(a.cycler)
	case "R":
		a.autoRefresh = !a.autoRefresh
		if a.cfgPath != "" {
			// best effort, the toggle still applies to this session
			a.cfg.TUI.AutoRefresh = a.autoRefresh
			_ = config.Save(a.cfgPath, a.cfg)
		}
		return a, nil
	}

	if !a.loaded {
		return a, nil
	}

	switch key {
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		a.scroll = 0
	case "right", "l", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		a.scroll = 0
	case "j", "down":
		a.scroll++
	case "k", "up":
		a.scroll = max(a.scroll-1, 0)
	case "g":
		a.scroll = 0
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
				a.scroll = 0
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.cfg = a.setupVals.apply(a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		if a.cfgPath != "" {
			a.saveErr = config.Save(a.cfgPath, a.cfg)
		}
		return a.finishSetup()
	case huh.StateAborted:
		return a.finishSetup()
	}
	return a, cmd
}

// finishSetup leaves the form and starts the first cycle. A configuration
// that still cannot run surfaces through the error banner.
func (a App) finishSetup() (tea.Model, tea.Cmd) {
	a.needSetup = false
	a.setupForm = nil
	a.classifier = pipeline.ClassifierFromConfig(a.cfg)
	a.thresholds = pipeline.ThresholdsFromConfig(a.cfg)
	a.cycler = a.newCycler(a.cfg)
	a.refreshing = true
	return a, tea.Batch(fetchCmd(a.cycler), a.spinner.Tick, tickCmd())
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  adburn needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ adburn"))
	b.WriteString(subtitleStyle.Render(" · Today's ad spend"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Fetching %d accounts...", len(a.cfg.Accounts.IDs))))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"o a p", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll"},
		{"r", "Refresh now"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	if banner := a.errorBanner(w); banner != "" {
		header += "\n" + banner
	}

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		LastRefresh: a.lastRefresh,
		Took:        a.took,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Failed:      a.failedCount(),
	})

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.report == nil:
		content = a.renderNoData(cw)
	case a.activeTab == 1:
		content = a.renderAccountsTab(cw)
	case a.activeTab == 2:
		content = a.renderProductsTab(cw)
	default:
		content = a.renderOverviewTab(cw)
	}

	content = padHeight(truncateHeight(scrollLines(content, a.scroll), contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// errorBanner is the inline, non-fatal notice for the last failed cycle or
// a failed config save. Loaded data stays on screen below it.
func (a App) errorBanner(w int) string {
	var msgs []string
	if a.lastErr != nil {
		msg := cycleErrorText(a.lastErr)
		if a.report != nil {
			msg += fmt.Sprintf(" (showing data from %s)", a.report.GeneratedAt.Format("15:04:05"))
		}
		msgs = append(msgs, msg)
	}
	if a.saveErr != nil {
		msgs = append(msgs, "could not save config: "+a.saveErr.Error())
	}
	if len(msgs) == 0 {
		return ""
	}
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.Background).Background(t.Orange).Bold(true).Width(w)
	return style.Render(truncStr(" ! "+strings.Join(msgs, "; "), w))
}

func cycleErrorText(err error) string {
	var cerr *config.ConfigError
	if errors.As(err, &cerr) {
		return cerr.Error() + " (press ctrl+c and run `adburn setup`)"
	}
	return "error connecting to the reporting API: " + err.Error()
}

func (a App) failedCount() int {
	if a.report == nil {
		return 0
	}
	return len(a.report.Failed)
}

func (a App) renderNoData(cw int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return components.ContentCard("No data",
		style.Render("No cycle has completed yet. Press r to retry."), cw)
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// fetchCmd runs one cycle off the UI goroutine.
func fetchCmd(c Cycler) tea.Cmd {
	return func() tea.Msg {
		if c == nil {
			return ReportMsg{Err: &config.ConfigError{Err: config.ErrMissingToken}}
		}
		start := time.Now()
		report, err := c.Run(context.Background())
		return ReportMsg{Report: report, Err: err, Took: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

func scrollLines(s string, offset int) string {
	if offset <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	offset = min(offset, max(len(lines)-1, 0))
	return strings.Join(lines[offset:], "\n")
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at column x, or -1. Hitboxes follow the
// widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
