package core

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"carenova/internal/llm"
	"carenova/internal/metrics"
	"carenova/pkg"
)

// Retriever supplies grounding chunks for a query.  A nil error with zero
// chunks means the index is available but nothing matched; Ready()==false
// means no index is loaded at all.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]pkg.RetrievedChunk, error)
	Ready() bool
}

// Analyzer is the analysis contract enforcer.  Whatever the model, the
// retriever or the network does, Analyze returns a schema-valid report and
// never an error.
type Analyzer struct {
	llm       llm.Completer
	retriever Retriever
	cache     *Cache
	sem       *semaphore.Weighted
	log       *slog.Logger
}

// NewAnalyzer constructs an Analyzer.  cache may be nil to disable
// memoization.  maxConcurrent caps in-flight model calls so a burst of
// handlers cannot pile blocking I/O onto the upstream.
func NewAnalyzer(client llm.Completer, retriever Retriever, cache *Cache, maxConcurrent int, log *slog.Logger) *Analyzer {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Analyzer{
		llm:       client,
		retriever: retriever,
		cache:     cache,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		log:       log,
	}
}

// Analyze turns the combined symptom query into a structured report.
//
// The heuristic severity and confidence always override whatever the model
// attempted to produce; the model is authoritative only for condition
// content.  Any failure along the grounded path substitutes the
// keyword-aware fallback report.
func (a *Analyzer) Analyze(ctx context.Context, query string) pkg.AnalysisReport {
	if a.cache != nil {
		if cached, ok := a.cache.Get(query); ok {
			metrics.RecordCacheLookup(true)
			a.log.Debug("analysis cache hit")
			return cached
		}
		metrics.RecordCacheLookup(false)
	}

	severity := ClassifySeverity(query)
	confidence := ScoreConfidence(query, severity)

	var chunks []pkg.RetrievedChunk
	if a.retriever.Ready() {
		retrieved, err := a.retriever.Retrieve(ctx, query)
		if err != nil {
			a.log.Warn("retrieval unavailable, proceeding ungrounded", "error", err)
		} else {
			chunks = retrieved
		}
	}
	metrics.RecordRetrieval(len(chunks))

	report := a.generate(ctx, query, chunks)
	report.Severity = severity
	report.Confidence = confidence

	if a.cache != nil {
		a.cache.Put(query, report)
	}
	return report
}

// generate runs the model call and the parse/repair pipeline, branching to
// the fallback report on any tagged failure.
func (a *Analyzer) generate(ctx context.Context, query string, chunks []pkg.RetrievedChunk) pkg.AnalysisReport {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return a.fallback(query, "request cancelled", err, "")
	}
	defer a.sem.Release(1)

	raw, err := a.llm.Complete(ctx, buildAnalysisPrompt(query, chunks))
	if err != nil {
		metrics.RecordLLMCall("analysis", "error")
		return a.fallback(query, "model call failed", err, "")
	}

	parsed, err := parseAnalysis(raw)
	switch {
	case errors.Is(err, errEmptyConditions):
		metrics.RecordLLMCall("analysis", "empty_conditions")
		return a.fallback(query, "model returned no conditions", err, "")
	case err != nil:
		metrics.RecordLLMCall("analysis", "unparseable")
		// Raw text is logged for diagnosis; it never reaches the caller.
		return a.fallback(query, "model output unparseable", err, raw)
	}

	metrics.RecordLLMCall("analysis", "ok")
	return parsed.report()
}

func (a *Analyzer) fallback(query, reason string, err error, raw string) pkg.AnalysisReport {
	report, kind := fallbackReport(query)
	metrics.RecordFallback(kind)
	if raw != "" {
		a.log.Warn("substituting fallback report", "reason", reason, "kind", kind, "error", err, "raw", raw)
	} else {
		a.log.Warn("substituting fallback report", "reason", reason, "kind", kind, "error", err)
	}
	return report
}
