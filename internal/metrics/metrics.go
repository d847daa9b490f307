package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recommendation outcome labels.
const (
	OutcomeEnriched          = "enriched"
	OutcomeFallbackDisabled  = "fallback_disabled"
	OutcomeFallbackEmpty     = "fallback_empty_interests"
	OutcomeFallbackTransport = "fallback_transport"
	OutcomeFallbackStatus    = "fallback_status"
	OutcomeFallbackMalformed = "fallback_malformed"
)

var (
	recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cetracker_recommendations_total",
			Help: "Total recommendation responses by outcome",
		},
		[]string{"outcome"},
	)

	enrichmentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cetracker_enrichment_duration_seconds",
			Help:    "Latency of enrichment calls by result",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"result"},
	)

	outstandingHoursDesc = prometheus.NewDesc(
		"cetracker_outstanding_hours",
		"Outstanding CE hours summed across users, by state",
		[]string{"state"},
		nil,
	)
)

// OutstandingSource reports outstanding hours summed per state code.
type OutstandingSource interface {
	GetOutstandingHoursByState(ctx context.Context) (map[string]int64, error)
}

// OutstandingCollector is a custom Prometheus collector that reads
// outstanding hours per state from its source on each scrape.
type OutstandingCollector struct {
	source OutstandingSource
}

// NewOutstandingCollector creates a collector over source.
func NewOutstandingCollector(source OutstandingSource) *OutstandingCollector {
	return &OutstandingCollector{source: source}
}

// Describe sends the metric descriptor to the channel.
func (c *OutstandingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- outstandingHoursDesc
}

// Collect queries the source for outstanding hours and emits them as gauges.
// A failed query emits nothing.
func (c *OutstandingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	totals, err := c.source.GetOutstandingHoursByState(ctx)
	if err != nil {
		slog.Error("failed to collect outstanding hours metrics", "error", err)
		return
	}
	for state, hours := range totals {
		ch <- prometheus.MustNewConstMetric(
			outstandingHoursDesc,
			prometheus.GaugeValue,
			float64(hours),
			state,
		)
	}
}

var initOnce sync.Once

// Init registers all collectors. Must be called once at startup; a nil
// source skips the outstanding-hours collector.
func Init(source OutstandingSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(recommendationsTotal, enrichmentDuration)
		if source != nil {
			prometheus.MustRegister(NewOutstandingCollector(source))
		}
	})
}

// RecordRecommendation counts one recommendation response.
func RecordRecommendation(outcome string) {
	recommendationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveEnrichment records the latency of one enrichment call.
func ObserveEnrichment(d time.Duration, ok bool) {
	result := "error"
	if ok {
		result = "ok"
	}
	enrichmentDuration.WithLabelValues(result).Observe(d.Seconds())
}
