// ABOUTME: Prometheus metrics exposition for the audit service.
// ABOUTME: Tracks audit volume, findings by primitive and severity, and cache health.

package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/types"
)

// CacheStatsProvider reports cache occupancy at scrape time.
type CacheStatsProvider interface {
	Stats() (total int, expired int)
}

type Metrics struct {
	registry *prometheus.Registry
	logger   *logrus.Logger

	auditsTotal   *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	auditDuration prometheus.Histogram
	riskScore     prometheus.Histogram
}

func New(cache CacheStatsProvider, logger *logrus.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,

		auditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pqcaudit_audits_total",
				Help: "Number of audit requests processed, by language and outcome",
			},
			[]string{"language", "status"},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pqcaudit_findings_total",
				Help: "Number of cryptographic findings reported, by primitive and severity",
			},
			[]string{"primitive", "severity"},
		),

		auditDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqcaudit_audit_duration_seconds",
				Help:    "Time spent auditing a single source text",
				Buckets: prometheus.DefBuckets,
			},
		),

		riskScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqcaudit_risk_score",
				Help:    "Distribution of aggregate risk scores across audits",
				Buckets: []float64{0, 10, 25, 50, 75, 85, 95, 100},
			},
		),
	}

	m.registry.MustRegister(m.auditsTotal)
	m.registry.MustRegister(m.findingsTotal)
	m.registry.MustRegister(m.auditDuration)
	m.registry.MustRegister(m.riskScore)

	if cache != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pqcaudit_cache_entries",
				Help: "Live entries in the audit result cache",
			},
			func() float64 {
				total, expired := cache.Stats()
				return float64(total - expired)
			},
		))
	}

	return m
}

// RecordAudit counts one completed audit request.
func (m *Metrics) RecordAudit(language, status string, durationSeconds float64) {
	m.auditsTotal.WithLabelValues(sanitizeLabelValue(language), sanitizeLabelValue(status)).Inc()
	m.auditDuration.Observe(durationSeconds)
}

// RecordResult counts the findings and risk score of a successful audit.
func (m *Metrics) RecordResult(result *types.AuditResult) {
	for _, f := range result.Findings {
		m.findingsTotal.WithLabelValues(f.Primitive.String(), f.Severity.String()).Inc()
	}
	m.riskScore.Observe(float64(result.RiskScore))
}

// Handler serves the metrics registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// sanitizeLabelValue cleans strings for use as Prometheus labels
func sanitizeLabelValue(value string) string {
	if value == "" {
		return "unknown"
	}

	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")

	if len(value) > 200 {
		value = value[:200] + "..."
	}

	return strings.TrimSpace(value)
}
