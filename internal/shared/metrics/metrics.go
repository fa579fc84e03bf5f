package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	generationStartedTotal   atomic.Uint64
	generationCompletedTotal atomic.Uint64
	generationFailedTotal    atomic.Uint64
	cacheHitsTotal           atomic.Uint64
	cacheMissesTotal         atomic.Uint64
	rateLimitedTotal         atomic.Uint64
	persistFailedTotal       atomic.Uint64
	staleResultsTotal        atomic.Uint64

	generationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncGenerationStarted increments the started counter.
func IncGenerationStarted() {
	generationStartedTotal.Add(1)
}

// IncGenerationCompleted increments the completed counter.
func IncGenerationCompleted() {
	generationCompletedTotal.Add(1)
}

// IncGenerationFailed increments the failed counter.
func IncGenerationFailed() {
	generationFailedTotal.Add(1)
}

func IncCacheHit() {
	cacheHitsTotal.Add(1)
}

func IncCacheMiss() {
	cacheMissesTotal.Add(1)
}

func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// IncPersistFailed counts durable-store writes that failed after an optimistic update.
func IncPersistFailed() {
	persistFailedTotal.Add(1)
}

// IncStaleResult counts generation results discarded because the active job changed.
func IncStaleResult() {
	staleResultsTotal.Add(1)
}

// ObserveGenerationDurationMs records a generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "generation_started_total", "Total generation pipelines started", generationStartedTotal.Load())
	writeCounter(&buf, "generation_completed_total", "Total generation pipelines completed", generationCompletedTotal.Load())
	writeCounter(&buf, "generation_failed_total", "Total generation pipelines failed", generationFailedTotal.Load())
	writeCounter(&buf, "cache_hits_total", "Response cache hits", cacheHitsTotal.Load())
	writeCounter(&buf, "cache_misses_total", "Response cache misses", cacheMissesTotal.Load())
	writeCounter(&buf, "rate_limited_total", "Requests rejected by the rate limiter", rateLimitedTotal.Load())
	writeCounter(&buf, "jobs_persist_failed_total", "Durable store writes that failed after an optimistic update", persistFailedTotal.Load())
	writeCounter(&buf, "generation_stale_results_total", "Generation results discarded after a job switch", staleResultsTotal.Load())
	writeHistogram(&buf, "generation_duration_ms", "Generation duration in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
