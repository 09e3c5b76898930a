package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los collectors del servicio. Todos los métodos aceptan
// receptor nil (métricas deshabilitadas).
type Metrics struct {
	// Scans por resultado: ok, locked, error
	ScansTotal *prometheus.CounterVec

	// Recordatorios por outcome: sent, failed, skipped
	RemindersTotal *prometheus.CounterVec

	ScanDuration prometheus.Histogram

	// Latencia del notifier por canal
	NotifyDuration *prometheus.HistogramVec

	// Requests HTTP por método y status
	HTTPRequests *prometheus.CounterVec
}

// New registra los collectors en reg. Con reg nil usa el registry global.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ScansTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtracker_reminder_scans_total",
			Help: "Reminder scans by result",
		}, []string{"result"}),

		RemindersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtracker_reminders_total",
			Help: "Reminder attempts by outcome",
		}, []string{"outcome"}),

		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxtracker_reminder_scan_duration_seconds",
			Help:    "Duration of a full reminder scan including dispatch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		NotifyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vaxtracker_notify_duration_seconds",
			Help:    "Duration of a single notification by channel",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"channel"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxtracker_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "code"}),
	}
}

func (m *Metrics) IncScan(result string) {
	if m != nil {
		m.ScansTotal.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) AddReminders(outcome string, n int) {
	if m != nil && n > 0 {
		m.RemindersTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

func (m *Metrics) ObserveScan(d time.Duration) {
	if m != nil {
		m.ScanDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveNotify(channel string, d time.Duration) {
	if m != nil {
		m.NotifyDuration.WithLabelValues(channel).Observe(d.Seconds())
	}
}

func (m *Metrics) IncHTTP(method, code string) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, code).Inc()
	}
}
