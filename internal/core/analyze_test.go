package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"carenova/pkg"
)

// stubRetriever returns scripted chunks, or nothing when not ready.
type stubRetriever struct {
	ready  bool
	chunks []pkg.RetrievedChunk
	err    error
}

func (s *stubRetriever) Ready() bool { return s.ready }

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]pkg.RetrievedChunk, error) {
	return s.chunks, s.err
}

func newTestAnalyzer(client *stubLLM, retr Retriever, cache *Cache) *Analyzer {
	return NewAnalyzer(client, retr, cache, 2, discardLogger())
}

func TestAnalyzeGroundedSuccess(t *testing.T) {
	client := &stubLLM{response: `{
		"possible_conditions": ["Bronchitis", "Common cold"],
		"explanation": ["persistent cough matches"],
		"home_care_tips": ["rest", "hydrate"],
		"when_to_see_doctor": ["cough beyond 3 weeks"],
		"disclaimer": "This is not a medical diagnosis. Consult a healthcare professional."
	}`}
	retr := &stubRetriever{ready: true, chunks: []pkg.RetrievedChunk{
		{Text: "Bronchitis often follows a cold.", Source: "resp.txt", Score: 0.8},
	}}
	a := newTestAnalyzer(client, retr, nil)

	report := a.Analyze(context.Background(), "persistent cough for two weeks")
	if got := len(report.PossibleConditions); got != 2 {
		t.Fatalf("conditions = %d, want 2", got)
	}
	if report.Severity != pkg.SeverityMild {
		t.Errorf("Severity = %s, want Mild", report.Severity)
	}
	// cough is the single matched vocabulary keyword.
	if report.Confidence != 65 {
		t.Errorf("Confidence = %d, want 65", report.Confidence)
	}
}

// The heuristic overrides any severity or confidence the model attempts to
// produce.
func TestAnalyzeHeuristicAuthoritative(t *testing.T) {
	client := &stubLLM{response: `{
		"severity": "Mild",
		"confidence": 10,
		"possible_conditions": ["Angina"],
		"disclaimer": "d"
	}`}
	a := newTestAnalyzer(client, &stubRetriever{}, nil)

	report := a.Analyze(context.Background(), "crushing chest pain and shortness of breath")
	if report.Severity != pkg.SeveritySevere {
		t.Errorf("Severity = %s, want Severe", report.Severity)
	}
	if report.Confidence != 70 {
		t.Errorf("Confidence = %d, want 70", report.Confidence)
	}
}

func TestAnalyzeEmptyConditionsSubstitutesFallback(t *testing.T) {
	client := &stubLLM{response: `{"possible_conditions": [], "explanation": ["nothing matched"]}`}
	a := newTestAnalyzer(client, &stubRetriever{}, nil)

	report := a.Analyze(context.Background(), "a bit under the weather lately")
	if len(report.PossibleConditions) == 0 {
		t.Fatal("possible_conditions must never be empty")
	}
	if report.PossibleConditions[0] != "General health condition" {
		t.Errorf("expected generic fallback, got %v", report.PossibleConditions)
	}
	if report.Disclaimer == "" {
		t.Error("fallback must carry the disclaimer")
	}
}

func TestAnalyzeUnparseableSubstitutesFallback(t *testing.T) {
	client := &stubLLM{response: "I'm sorry, as an AI I cannot"}
	a := newTestAnalyzer(client, &stubRetriever{}, nil)

	report := a.Analyze(context.Background(), "slight rash on my arm")
	if len(report.PossibleConditions) == 0 {
		t.Fatal("possible_conditions must never be empty")
	}
}

// End-to-end degraded scenario: retrieval disabled, model call fails.  The
// metabolic vocabulary must steer the fallback away from generic advice.
func TestAnalyzeMetabolicFallbackEndToEnd(t *testing.T) {
	client := &stubLLM{err: errors.New("connection refused")}
	a := newTestAnalyzer(client, &stubRetriever{ready: false}, nil)

	report := a.Analyze(context.Background(), "I urinate frequently, feel very thirsty and tired")
	if report.Severity != pkg.SeverityMild {
		t.Errorf("Severity = %s, want Mild", report.Severity)
	}
	if len(report.PossibleConditions) == 0 {
		t.Fatal("possible_conditions must never be empty")
	}
	if report.PossibleConditions[0] != "Metabolic condition (possible blood sugar imbalance)" {
		t.Errorf("expected metabolic fallback, got %v", report.PossibleConditions)
	}
	if report.Disclaimer == "" {
		t.Error("disclaimer must be present and non-empty")
	}
}

// End-to-end severe scenario: chest pain plus shortness of breath is Severe
// regardless of model behavior.
func TestAnalyzeSevereEndToEnd(t *testing.T) {
	clients := []*stubLLM{
		{err: errors.New("timeout")},
		{response: "not json at all"},
		{response: `{"possible_conditions":["Angina"],"disclaimer":"d"}`},
	}
	for i, client := range clients {
		a := newTestAnalyzer(client, &stubRetriever{}, nil)
		report := a.Analyze(context.Background(), "chest pain and shortness of breath since an hour")
		if report.Severity != pkg.SeveritySevere {
			t.Errorf("client %d: Severity = %s, want Severe", i, report.Severity)
		}
	}
}

// Cache idempotence: the second identical query returns a bit-identical
// report and performs no model invocation.
func TestAnalyzeCacheIdempotence(t *testing.T) {
	client := &stubLLM{response: `{"possible_conditions":["Flu","Cold"],"disclaimer":"d"}`}
	a := newTestAnalyzer(client, &stubRetriever{}, NewCache(16))

	query := "fever and chills for two days"
	first := a.Analyze(context.Background(), query)
	if got := client.calls.Load(); got != 1 {
		t.Fatalf("model calls after first query = %d, want 1", got)
	}
	second := a.Analyze(context.Background(), query)
	if got := client.calls.Load(); got != 1 {
		t.Errorf("model calls after second query = %d, want 1 (cache hit)", got)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached report differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestAnalyzeCacheDisabled(t *testing.T) {
	client := &stubLLM{response: `{"possible_conditions":["Flu"],"disclaimer":"d"}`}
	a := newTestAnalyzer(client, &stubRetriever{}, nil)

	query := "fever and chills"
	a.Analyze(context.Background(), query)
	a.Analyze(context.Background(), query)
	if got := client.calls.Load(); got != 2 {
		t.Errorf("model calls = %d, want 2 with caching disabled", got)
	}
}

// Retrieval errors degrade to an ungrounded call, never to a failure.
func TestAnalyzeRetrievalErrorDegrades(t *testing.T) {
	client := &stubLLM{response: `{"possible_conditions":["Flu"],"disclaimer":"d"}`}
	retr := &stubRetriever{ready: true, err: errors.New("embedding service down")}
	a := newTestAnalyzer(client, retr, nil)

	report := a.Analyze(context.Background(), "feverish and achy")
	if len(report.PossibleConditions) == 0 {
		t.Fatal("report must still be produced when retrieval fails")
	}
}

func TestFallbackReportSelection(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind string
	}{
		{"metabolic via thirst", "constant thirst lately", FallbackMetabolic},
		{"metabolic via appetite", "my appetite changed and I lost weight", FallbackMetabolic},
		{"generic", "ringing in my ears", FallbackGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, kind := fallbackReport(tt.text)
			if kind != tt.kind {
				t.Errorf("fallback kind = %s, want %s", kind, tt.kind)
			}
			if len(report.PossibleConditions) == 0 || report.Disclaimer == "" {
				t.Error("fallback report must be non-empty with disclaimer")
			}
		})
	}
}
