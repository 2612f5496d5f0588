// Package daemon provides the long-running background campaign poller and
// its HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/adburn/internal/model"
	"github.com/theirongolddev/adburn/internal/pipeline"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultInterval = 60 * time.Second
	MinInterval     = 10 * time.Second
	DefaultAddr     = "127.0.0.1:8787"
)

// Cycler runs one fetch cycle.
type Cycler interface {
	Run(ctx context.Context) (*model.Report, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr           string
	Interval       time.Duration
	EventsBuffer   int
	AllowedOrigins []string
	Location       *time.Location
	Classifier     *pipeline.Classifier
	Thresholds     pipeline.Thresholds
	Jitter         pipeline.Jitter
}

// Snapshot is a compact view of the latest cycle for status/event payloads.
type Snapshot struct {
	At             time.Time `json:"at"`
	CycleID        string    `json:"cycle_id,omitempty"`
	Spend          float64   `json:"spend"`
	Conversions    int64     `json:"conversions"`
	CostPerResult  float64   `json:"cost_per_result"`
	Status         string    `json:"status"`
	Accounts       int       `json:"accounts"`
	ActiveAccounts int       `json:"active_accounts"`
	FailedAccounts int       `json:"failed_accounts"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Spend          float64 `json:"spend"`
	Conversions    int64   `json:"conversions"`
	ActiveAccounts int     `json:"active_accounts"`
	FailedAccounts int     `json:"failed_accounts"`
}

func (d Delta) isZero() bool {
	return d.Spend == 0 &&
		d.Conversions == 0 &&
		d.ActiveAccounts == 0 &&
		d.FailedAccounts == 0
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	cycler  Cycler
	log     *zap.Logger
	metrics *metrics
	group   singleflight.Group
	now     func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	lastReport  *model.Report
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, cycler Cycler, log *zap.Logger) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < MinInterval {
		cfg.Interval = MinInterval
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Classifier == nil {
		cfg.Classifier = pipeline.DefaultClassifier()
	}
	if cfg.Thresholds.Optimal.IsZero() && cfg.Thresholds.Regular.IsZero() {
		cfg.Thresholds = pipeline.DefaultThresholds()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		cycler:    cycler,
		log:       log,
		metrics:   newMetrics(),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening",
		zap.String("addr", s.cfg.Addr),
		zap.Duration("interval", s.cfg.Interval),
	)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	_, _ = s.refresh(ctx)
}

// refresh runs a cycle, or joins the one already in flight. The shared cycle
// is detached from the caller's cancellation so one client going away does
// not fail the others waiting on it.
func (s *Service) refresh(ctx context.Context) (*model.Report, error) {
	v, err, _ := s.group.Do("cycle", func() (any, error) {
		start := s.now()
		report, err := s.cycler.Run(context.WithoutCancel(ctx))
		s.metrics.observeCycle(report, err, s.now().Sub(start))
		s.record(report, err)
		return report, err
	})
	if err != nil {
		return nil, err
	}
	report, _ := v.(*model.Report)
	return report, nil
}

// record folds a cycle outcome into status and emits an event when the
// snapshot changed.
func (s *Service) record(report *model.Report, err error) {
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("daemon poll error", zap.Error(err))
		return
	}
	if report == nil {
		report = &model.Report{GeneratedAt: now}
	}

	snap := snapshotFromDashboard(s.dashboard(report), now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastReport = report
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "activity_delta",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

// dashboard derives the view of report. The hourly projection stops at the
// hour the report was generated, not the hour it is served.
func (s *Service) dashboard(report *model.Report) model.Dashboard {
	at := report.GeneratedAt
	if at.IsZero() {
		at = s.now()
	}
	return pipeline.Summarize(report, pipeline.SummaryOptions{
		Classifier: s.cfg.Classifier,
		Thresholds: s.cfg.Thresholds,
		Hour:       at.In(s.cfg.Location).Hour(),
		Jitter:     s.cfg.Jitter,
	})
}

func snapshotFromDashboard(d model.Dashboard, at time.Time) Snapshot {
	snap := Snapshot{
		At:             at,
		Spend:          d.Global.Spend.InexactFloat64(),
		Conversions:    d.Global.Conversions,
		CostPerResult:  d.Global.CostPerResult.InexactFloat64(),
		Status:         d.Global.Status.String(),
		ActiveAccounts: d.ActiveAccounts,
	}
	if d.Report != nil {
		snap.CycleID = d.Report.ID
		snap.Accounts = len(d.Report.Accounts)
		snap.FailedAccounts = len(d.Report.Failed)
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Spend:          curr.Spend - prev.Spend,
		Conversions:    curr.Conversions - prev.Conversions,
		ActiveAccounts: curr.ActiveAccounts - prev.ActiveAccounts,
		FailedAccounts: curr.FailedAccounts - prev.FailedAccounts,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
