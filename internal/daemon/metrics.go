package daemon

import (
	"errors"
	"time"

	"github.com/theirongolddev/adburn/internal/config"
	"github.com/theirongolddev/adburn/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the daemon's Prometheus collectors on a private registry so
// several services (and tests) can coexist in one process.
type metrics struct {
	registry        *prometheus.Registry
	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	accountFailures *prometheus.CounterVec
	accountSpend    *prometheus.GaugeVec
	accountConv     *prometheus.GaugeVec
	requests        *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adburn_cycles_total",
			Help: "Fetch cycles by result",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "adburn_cycle_duration_seconds",
			Help:    "Duration of a full multi-account fetch cycle",
			Buckets: prometheus.DefBuckets,
		}),
		accountFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adburn_account_failures_total",
			Help: "Per-account fetch failures",
		}, []string{"account"}),
		accountSpend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adburn_account_spend",
			Help: "Today's spend per account in account currency",
		}, []string{"account"}),
		accountConv: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adburn_account_conversions",
			Help: "Today's conversions per account",
		}, []string{"account"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adburn_http_requests_total",
			Help: "HTTP requests by route and status class",
		}, []string{"route", "status"}),
	}
	m.registry.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.accountFailures,
		m.accountSpend,
		m.accountConv,
		m.requests,
	)
	return m
}

func (m *metrics) observeCycle(report *model.Report, err error, took time.Duration) {
	m.cycleDuration.Observe(took.Seconds())

	var cerr *config.ConfigError
	switch {
	case errors.As(err, &cerr):
		m.cycles.WithLabelValues("config_error").Inc()
		return
	case err != nil:
		m.cycles.WithLabelValues("error").Inc()
		return
	}
	m.cycles.WithLabelValues("ok").Inc()
	if report == nil {
		return
	}

	for _, f := range report.Failed {
		m.accountFailures.WithLabelValues(f.AccountID).Inc()
	}
	for _, a := range report.Accounts {
		m.accountSpend.WithLabelValues(a.ID).Set(a.TotalSpend.InexactFloat64())
		m.accountConv.WithLabelValues(a.ID).Set(float64(a.TotalConversions))
	}
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
