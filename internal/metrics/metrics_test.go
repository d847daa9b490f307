package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeOutstanding struct {
	totals map[string]int64
	err    error
}

func (f fakeOutstanding) GetOutstandingHoursByState(ctx context.Context) (map[string]int64, error) {
	return f.totals, f.err
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(recommendationsTotal.WithLabelValues(OutcomeFallbackStatus))

	RecordRecommendation(OutcomeFallbackStatus)
	RecordRecommendation(OutcomeFallbackStatus)

	got := testutil.ToFloat64(recommendationsTotal.WithLabelValues(OutcomeFallbackStatus))
	if got-before != 2 {
		t.Errorf("fallback_status counter delta = %v, want 2", got-before)
	}
}

func TestObserveEnrichment(t *testing.T) {
	before := testutil.CollectAndCount(enrichmentDuration)

	ObserveEnrichment(150*time.Millisecond, true)
	ObserveEnrichment(3*time.Second, false)

	// One series per result label.
	if got := testutil.CollectAndCount(enrichmentDuration); got < before || got > 2 {
		t.Errorf("enrichment histogram series = %d, want between %d and 2", got, before)
	}
}

func TestOutstandingCollector(t *testing.T) {
	c := NewOutstandingCollector(fakeOutstanding{totals: map[string]int64{"MA": 12, "NY": 3}})

	if got := testutil.CollectAndCount(c, "cetracker_outstanding_hours"); got != 2 {
		t.Fatalf("outstanding series = %d, want 2", got)
	}

	expected := `
# HELP cetracker_outstanding_hours Outstanding CE hours summed across users, by state
# TYPE cetracker_outstanding_hours gauge
cetracker_outstanding_hours{state="MA"} 12
cetracker_outstanding_hours{state="NY"} 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "cetracker_outstanding_hours"); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestOutstandingCollector_SourceError(t *testing.T) {
	c := NewOutstandingCollector(fakeOutstanding{err: errors.New("connection refused")})

	if got := testutil.CollectAndCount(c); got != 0 {
		t.Errorf("outstanding series on error = %d, want 0", got)
	}
}
