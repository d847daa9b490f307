package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"cetracker/internal/recommend"
)

func testCourses() []recommend.Course {
	return recommend.SelectCourses(recommend.Catalog(), "contract drafting")
}

// candidateBody wraps text the way generateContent returns it.
func candidateBody(t *testing.T, text string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal candidate body: %v", err)
	}
	return b
}

func newTestClient(url string) *Client {
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 2 * time.Second,
	})
}

func kindOf(t *testing.T, err error) recommend.EnrichmentErrorKind {
	t.Helper()
	var ee *recommend.EnrichmentError
	if !errors.As(err, &ee) {
		t.Fatalf("error %v is not an EnrichmentError", err)
	}
	return ee.Kind
}

func TestEnrich_Success(t *testing.T) {
	var gotReq generateRequest
	var gotKey, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("server: decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(candidateBody(t, `["Reason one here","Reason two here","Reason three here","Reason four here"]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	reasons, err := c.Enrich(context.Background(), testCourses(), "contract drafting")
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	want := []string{"Reason one here", "Reason two here", "Reason three here", "Reason four here"}
	if !slices.Equal(reasons, want) {
		t.Errorf("Enrich() = %v, want %v", reasons, want)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q, want %q", gotKey, "test-key")
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 500 {
		t.Errorf("maxOutputTokens = %d, want 500", gotReq.GenerationConfig.MaxOutputTokens)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatalf("request contents = %+v, want one part", gotReq.Contents)
	}
	prompt := gotReq.Contents[0].Parts[0].Text
	for _, c := range testCourses() {
		if !strings.Contains(prompt, c.Title) {
			t.Errorf("prompt missing course title %q", c.Title)
		}
	}
	if !strings.Contains(prompt, `User interests: "contract drafting"`) {
		t.Errorf("prompt missing interests: %s", prompt)
	}
}

func TestEnrich_CodeFencedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateBody(t, "```json\n[\"a reason\", \"b reason\", \" c reason \", \"d reason\"]\n```"))
	}))
	defer srv.Close()

	reasons, err := newTestClient(srv.URL).Enrich(context.Background(), testCourses(), "contracts")
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if reasons[2] != "c reason" {
		t.Errorf("reason 3 = %q, want trimmed %q", reasons[2], "c reason")
	}
}

func TestEnrich_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Enrich(context.Background(), testCourses(), "contracts")

	if kindOf(t, err) != recommend.NonSuccessStatus {
		t.Fatalf("kind = %v, want NonSuccessStatus", kindOf(t, err))
	}
	var ee *recommend.EnrichmentError
	errors.As(err, &ee)
	if ee.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", ee.StatusCode)
	}
	if !strings.Contains(ee.Body, "quota exceeded") {
		t.Errorf("Body = %q, want captured error body", ee.Body)
	}
}

func TestEnrich_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body func(t *testing.T) []byte
	}{
		{"not json", func(t *testing.T) []byte { return []byte("<html>oops</html>") }},
		{"no candidates", func(t *testing.T) []byte { return []byte(`{"candidates":[]}`) }},
		{"no text field", func(t *testing.T) []byte { return []byte(`{"candidates":[{"content":{"parts":[{}]}}]}`) }},
		{"text not an array", func(t *testing.T) []byte { return candidateBody(t, "Here are your reasons!") }},
		{"too few reasons", func(t *testing.T) []byte { return candidateBody(t, `["a","b","c"]`) }},
		{"too many reasons", func(t *testing.T) []byte { return candidateBody(t, `["a","b","c","d","e"]`) }},
		{"non-string reasons", func(t *testing.T) []byte { return candidateBody(t, `[1,2,3,4]`) }},
		{"blank reason", func(t *testing.T) []byte { return candidateBody(t, `["a","b","   ","d"]`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(tt.body(t))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Enrich(context.Background(), testCourses(), "contracts")
			if kindOf(t, err) != recommend.MalformedResponse {
				t.Errorf("kind = %v, want MalformedResponse", kindOf(t, err))
			}
		})
	}
}

func TestEnrich_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Enrich(context.Background(), testCourses(), "contracts")

	if kindOf(t, err) != recommend.TransportFailure {
		t.Errorf("kind = %v, want TransportFailure", kindOf(t, err))
	}
}

func TestEnrich_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := c.Enrich(context.Background(), testCourses(), "contracts")

	if kindOf(t, err) != recommend.TransportFailure {
		t.Errorf("kind = %v, want TransportFailure", kindOf(t, err))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Enrich() took %v, want bounded by timeout", elapsed)
	}
}

func TestEnrich_SingleRequestNoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	newTestClient(srv.URL).Enrich(context.Background(), testCourses(), "contracts")

	if got := hits.Load(); got != 1 {
		t.Errorf("server received %d requests, want 1", got)
	}
}

func TestEnrich_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIKey:          "k",
		BaseURL:         srv.URL,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := c.Enrich(context.Background(), testCourses(), "contracts")
		if kindOf(t, err) != recommend.NonSuccessStatus {
			t.Fatalf("call %d kind = %v, want NonSuccessStatus", i+1, kindOf(t, err))
		}
	}

	_, err := c.Enrich(context.Background(), testCourses(), "contracts")
	if kindOf(t, err) != recommend.TransportFailure {
		t.Errorf("open breaker kind = %v, want TransportFailure", kindOf(t, err))
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server received %d requests, want 2", got)
	}
	if c.BreakerState() != "open" {
		t.Errorf("BreakerState() = %q, want open", c.BreakerState())
	}
}

// cancelOnArrival cancels once the server has seen the request, so the
// cancellation lands mid-flight rather than before the call is issued.
func cancelOnArrival(arrived <-chan struct{}, cancel context.CancelFunc) {
	select {
	case <-arrived:
	case <-time.After(time.Second):
	}
	cancel()
}

func TestEnrich_CallerCancelDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 8)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		arrived <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{
		APIKey:          "k",
		BaseURL:         srv.URL,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})

	for i := 0; i < 4; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go cancelOnArrival(arrived, cancel)

		_, err := c.Enrich(ctx, testCourses(), "contracts")
		cancel()

		if kindOf(t, err) != recommend.TransportFailure {
			t.Fatalf("call %d kind = %v, want TransportFailure", i+1, kindOf(t, err))
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("call %d error = %v, want context.Canceled", i+1, err)
		}
	}

	if got := hits.Load(); got != 4 {
		t.Errorf("server received %d requests, want 4", got)
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %q, want closed", c.BreakerState())
	}

	ctx, cancel := context.WithCancel(context.Background())
	go cancelOnArrival(arrived, cancel)
	got := recommend.New(c).Recommend(ctx, recommend.Request{RawInterests: "contracts"})
	cancel()

	want := recommend.Fallback()
	if len(got) != len(want) {
		t.Fatalf("Recommend() returned %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() after Recommend = %q, want closed", c.BreakerState())
	}
}

func TestBuildPrompt(t *testing.T) {
	courses := []recommend.Course{{Title: "First"}, {Title: "Second"}}

	got := buildPrompt(courses, "tax law")

	for _, want := range []string{
		`User interests: "tax law"`,
		"1. First\n2. Second",
		"10-15 words",
		`Return JSON: ["reason1","reason2"]`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("buildPrompt() missing %q in:\n%s", want, got)
		}
	}
}

func TestComposerFallsBackOnClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := recommend.New(newTestClient(srv.URL))
	got := r.Recommend(context.Background(), recommend.Request{RawInterests: "privacy"})

	want := recommend.Fallback()
	if len(got) != len(want) {
		t.Fatalf("Recommend() returned %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
