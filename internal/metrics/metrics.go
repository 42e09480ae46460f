package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of language model invocations",
		},
		[]string{"operation", "outcome"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_lookups_total",
			Help: "Total number of analysis cache lookups",
		},
		[]string{"result"},
	)

	fallbackReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_reports_total",
			Help: "Total number of fallback reports substituted for model output",
		},
		[]string{"kind"},
	)

	retrievedChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieved_chunks_per_query",
			Help:    "Number of grounding chunks retrieved per analysis query",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of live conversation sessions",
		},
	)

	wsExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_exchanges_total",
			Help: "Total number of websocket analysis exchanges",
		},
		[]string{"result"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per method and path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack delegates to the underlying writer so websocket upgrades work
// through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying ResponseWriter does not support hijacking")
	}
	return h.Hijack()
}

// RecordLLMCall records a model invocation by operation and outcome.
func RecordLLMCall(operation, outcome string) {
	llmCallsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordCacheLookup records an analysis cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordFallback records substitution of a fallback report by kind.
func RecordFallback(kind string) {
	fallbackReportsTotal.WithLabelValues(kind).Inc()
}

// RecordRetrieval records how many grounding chunks a query produced.
func RecordRetrieval(count int) {
	retrievedChunks.Observe(float64(count))
}

// SetActiveSessions records the current session count.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// RecordWSExchange records the result of one websocket exchange.
func RecordWSExchange(result string) {
	wsExchangesTotal.WithLabelValues(result).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}
