package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	recommendationsTotal      atomic.Uint64
	recommendationsEmptyTotal atomic.Uint64
	recommendationsFailed     atomic.Uint64
	consultationsSavedTotal   atomic.Uint64
	cacheHitsTotal            atomic.Uint64
	cacheMissesTotal          atomic.Uint64

	exclusionsByKind = newLabeledCounter()

	recommendationDuration = newHistogram([]float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250})
)

// ObserveRecommendation records one engine run and its exclusion kinds.
func ObserveRecommendation(durationMs float64, recommended int, exclusionKinds []string) {
	recommendationsTotal.Add(1)
	if recommended == 0 {
		recommendationsEmptyTotal.Add(1)
	}
	for _, kind := range exclusionKinds {
		exclusionsByKind.Inc(kind)
	}
	if durationMs < 0 {
		durationMs = 0
	}
	recommendationDuration.Observe(durationMs)
}

// IncRecommendationFailed counts engine runs that returned an error.
func IncRecommendationFailed() {
	recommendationsFailed.Add(1)
}

// IncConsultationSaved counts persisted consultations.
func IncConsultationSaved() {
	consultationsSavedTotal.Add(1)
}

// IncCacheHit counts recommendation cache hits.
func IncCacheHit() {
	cacheHitsTotal.Add(1)
}

// IncCacheMiss counts recommendation cache misses.
func IncCacheMiss() {
	cacheMissesTotal.Add(1)
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
	writeCounter(&buf, "recommendations_total", "Engine runs that produced a result", recommendationsTotal.Load())
	writeCounter(&buf, "recommendations_empty_total", "Engine runs with no recommended treatment", recommendationsEmptyTotal.Load())
	writeCounter(&buf, "recommendations_failed_total", "Engine runs rejected by an internal check", recommendationsFailed.Load())
	writeCounter(&buf, "consultations_saved_total", "Consultations persisted", consultationsSavedTotal.Load())
	writeCounter(&buf, "recommendation_cache_hits_total", "Recommendation cache hits", cacheHitsTotal.Load())
	writeCounter(&buf, "recommendation_cache_misses_total", "Recommendation cache misses", cacheMissesTotal.Load())
	writeLabeledCounter(&buf, "recommendation_exclusions_total", "Excluded treatments by reason kind", "kind", exclusionsByKind.Snapshot())
	writeHistogram(&buf, "recommendation_duration_ms", "Engine run duration in milliseconds", recommendationDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
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

// Observe counts value in the first bucket that holds it; rendering makes
// the buckets cumulative.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
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
