package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const genericCycleError = "error connecting to the reporting API"

// CampaignJSON is one campaign row of the metrics envelope.
type CampaignJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Spend       float64 `json:"spend"`
	Conversions int64   `json:"conversions"`
}

// AccountJSON is one account of the metrics envelope.
type AccountJSON struct {
	ID               string         `json:"id"`
	Label            string         `json:"label"`
	TotalSpend       float64        `json:"totalSpend"`
	TotalConversions int64          `json:"totalConversions"`
	Active           bool           `json:"active"`
	Campaigns        []CampaignJSON `json:"campaigns"`
}

// MetricsResponse is the success envelope of /api/metrics.
type MetricsResponse struct {
	Accounts    []AccountJSON `json:"accounts"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// ErrorResponse is the failure envelope. It never carries account data.
type ErrorResponse struct {
	Error string `json:"error"`
}

// KPIJSON is a KPI with decimals flattened for browsers.
type KPIJSON struct {
	Spend         float64 `json:"spend"`
	Conversions   int64   `json:"conversions"`
	CostPerResult float64 `json:"costPerResult"`
	Status        string  `json:"status"`
	StatusLabel   string  `json:"statusLabel"`
}

// FailureJSON names an account left out of the cycle.
type FailureJSON struct {
	AccountID string `json:"accountId"`
	Reason    string `json:"reason"`
}

// ProductJSON is one product bucket row.
type ProductJSON struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	Campaigns int    `json:"campaigns"`
	KPIJSON
}

// HourlyJSON is one projected hourly point.
type HourlyJSON struct {
	Hour        string `json:"hour"`
	Conversions int64  `json:"conversions"`
}

// DashboardResponse is served at /api/dashboard.
type DashboardResponse struct {
	MetricsResponse
	Global         KPIJSON       `json:"global"`
	ActiveAccounts int           `json:"activeAccounts"`
	Failed         []FailureJSON `json:"failed,omitempty"`
	Products       []ProductJSON `json:"products"`
	Hourly         []HourlyJSON  `json:"hourly"`
	// HourlySynthetic flags Hourly as a projection, not measured telemetry.
	HourlySynthetic bool `json:"hourlySynthetic"`
}

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log, s.metrics))
	r.Use(middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Get("/dashboard", s.handleDashboard)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// CycleErrorMessage is the client-facing text for a failed cycle.
// Configuration faults keep their message; anything else gets a generic one.
func CycleErrorMessage(err error) string {
	var cerr *config.ConfigError
	if errors.As(err, &cerr) {
		return cerr.Error()
	}
	return genericCycleError
}

func (s *Service) writeCycleError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: CycleErrorMessage(err)})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handleMetrics recomputes from upstream on every call; concurrent callers
// share one in-flight cycle.
func (s *Service) handleMetrics(w http.ResponseWriter, r *http.Request) {
	report, err := s.refresh(r.Context())
	if err != nil {
		s.writeCycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MetricsFromReport(report))
}

// handleDashboard serves the last cycle, refreshing first when none exists
// yet or when ?fresh=1 is given.
func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := s.lastReport
	s.mu.RUnlock()

	if report == nil || r.URL.Query().Get("fresh") == "1" {
		var err error
		report, err = s.refresh(r.Context())
		if err != nil {
			s.writeCycleError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, DashboardFromModel(s.dashboard(report)))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// MetricsFromReport flattens a report into the /api/metrics envelope.
func MetricsFromReport(report *model.Report) MetricsResponse {
	resp := MetricsResponse{Accounts: []AccountJSON{}}
	if report == nil {
		return resp
	}
	resp.GeneratedAt = report.GeneratedAt
	for _, a := range report.Accounts {
		aj := AccountJSON{
			ID:               a.ID,
			Label:            a.Label,
			TotalSpend:       a.TotalSpend.InexactFloat64(),
			TotalConversions: a.TotalConversions,
			Active:           a.Active,
			Campaigns:        make([]CampaignJSON, 0, len(a.Campaigns)),
		}
		for _, c := range a.Campaigns {
			aj.Campaigns = append(aj.Campaigns, CampaignJSON{
				ID:          c.ID,
				Name:        c.Name,
				Spend:       c.Spend.InexactFloat64(),
				Conversions: c.Conversions,
			})
		}
		resp.Accounts = append(resp.Accounts, aj)
	}
	return resp
}

func kpiJSON(k model.KPI) KPIJSON {
	return KPIJSON{
		Spend:         k.Spend.InexactFloat64(),
		Conversions:   k.Conversions,
		CostPerResult: k.CostPerResult.InexactFloat64(),
		Status:        k.Status.String(),
		StatusLabel:   k.Status.Label(),
	}
}

// DashboardFromModel flattens a dashboard into the /api/dashboard envelope.
func DashboardFromModel(d model.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		MetricsResponse: MetricsFromReport(d.Report),
		Global:          kpiJSON(d.Global),
		ActiveAccounts:  d.ActiveAccounts,
		Products:        make([]ProductJSON, 0, len(d.Products)),
		Hourly:          make([]HourlyJSON, 0, len(d.Hourly)),
		HourlySynthetic: true,
	}
	if d.Report != nil {
		for _, f := range d.Report.Failed {
			resp.Failed = append(resp.Failed, FailureJSON{AccountID: f.AccountID, Reason: f.Reason})
		}
	}
	for _, p := range d.Products {
		resp.Products = append(resp.Products, ProductJSON{
			Code:      p.Code,
			Label:     p.Label,
			Campaigns: p.Campaigns,
			KPIJSON:   kpiJSON(p.KPI),
		})
	}
	for _, h := range d.Hourly {
		resp.Hourly = append(resp.Hourly, HourlyJSON{Hour: h.Label, Conversions: h.Conversions})
	}
	return resp
}
