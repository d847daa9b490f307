package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cetracker/internal/metrics"
)

// Enricher produces one short justification per course, in order.
type Enricher interface {
	Enrich(ctx context.Context, courses []Course, interests string) ([]string, error)
}

// Recommender composes scorer output with optional enrichment. It holds no
// per-request state and is safe for concurrent use.
type Recommender struct {
	enricher Enricher
	catalog  []Course
}

// New creates a Recommender. A nil enricher means no credential is configured
// and every request is served from the fallback set.
func New(enricher Enricher) *Recommender {
	return &Recommender{
		enricher: enricher,
		catalog:  Catalog(),
	}
}

// Enabled reports whether enrichment is configured.
func (r *Recommender) Enabled() bool {
	return r.enricher != nil
}

// Recommend always returns a full recommendation set. Enrichment failures are
// logged and replaced by the fallback set; they are never returned.
func (r *Recommender) Recommend(ctx context.Context, req Request) []Recommendation {
	interests := Sanitize(req.RawInterests)

	if r.enricher == nil {
		metrics.RecordRecommendation(metrics.OutcomeFallbackDisabled)
		return Fallback()
	}
	if interests == "" {
		metrics.RecordRecommendation(metrics.OutcomeFallbackEmpty)
		return Fallback()
	}

	selected := SelectCourses(r.catalog, interests)

	start := time.Now()
	reasons, err := r.enricher.Enrich(ctx, selected, interests)
	metrics.ObserveEnrichment(time.Since(start), err == nil)
	if err == nil {
		err = checkReasons(reasons, len(selected))
	}
	if err != nil {
		outcome := metrics.OutcomeFallbackTransport
		kind := TransportFailure
		var ee *EnrichmentError
		if errors.As(err, &ee) {
			kind = ee.Kind
			outcome = fallbackOutcome(kind)
		}
		slog.Warn("enrichment failed, serving fallback recommendations",
			"kind", kind.String(),
			"hours_outstanding", req.HoursOutstanding,
			"error", err,
		)
		metrics.RecordRecommendation(outcome)
		return Fallback()
	}

	recs := make([]Recommendation, len(selected))
	for i, c := range selected {
		recs[i] = Recommendation{Course: c, AIReason: reasons[i]}
	}

	slog.Debug("served enriched recommendations",
		"requester", req.RequesterName,
		"hours_outstanding", req.HoursOutstanding,
		"duration", time.Since(start),
	)
	metrics.RecordRecommendation(metrics.OutcomeEnriched)
	return recs
}

// checkReasons guards the merge against an Enricher that ignores its contract.
func checkReasons(reasons []string, want int) error {
	if len(reasons) != want {
		return &EnrichmentError{Kind: MalformedResponse, Err: fmt.Errorf("got %d reasons, want %d", len(reasons), want)}
	}
	for i, r := range reasons {
		if strings.TrimSpace(r) == "" {
			return &EnrichmentError{Kind: MalformedResponse, Err: fmt.Errorf("reason %d is blank", i+1)}
		}
	}
	return nil
}

func fallbackOutcome(kind EnrichmentErrorKind) string {
	switch kind {
	case NonSuccessStatus:
		return metrics.OutcomeFallbackStatus
	case MalformedResponse:
		return metrics.OutcomeFallbackMalformed
	default:
		return metrics.OutcomeFallbackTransport
	}
}
