// Package metrics implements the observability layer (C10): lock-free
// per-category counters, a sliding processing-time window with min/max/avg,
// a global dropped-events counter, and a fixed-width table printer. All
// counters are plain atomics with no lock on the hot path, grounded on
// original_source's metrics.rs (ParserMetrics/EventTypeMetrics).
package metrics

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Category is one of the three event pathways metrics are kept per, per
// SPEC_FULL.md §4.10 ("three per-event-type cells").
type Category int

const (
	CategoryTransaction Category = iota
	CategoryAccount
	CategoryBlockMeta
	categoryCount
)

func (c Category) String() string {
	switch c {
	case CategoryTransaction:
		return "transaction"
	case CategoryAccount:
		return "account"
	case CategoryBlockMeta:
		return "block_meta"
	default:
		return "unknown"
	}
}

// DefaultWindow and DefaultPrintInterval match the source's 5s rolling
// window and 30s auto-print cadence.
const (
	DefaultWindow        = 5 * time.Second
	DefaultPrintInterval = 30 * time.Second
	rollTick             = 500 * time.Millisecond
	staleStatAge         = 10 * time.Second
	slowProcessingThreshold = 100 * time.Millisecond
)

// cell is one category's counters and sliding processing-time stats. Every
// field is touched only through atomic ops; no mutex guards this struct.
type cell struct {
	processCount    atomic.Uint64
	eventsProcessed atomic.Uint64
	eventsInWindow  atomic.Uint64
	windowStartNano atomic.Int64

	minUS   atomic.Int64
	minAt   atomic.Int64
	maxUS   atomic.Int64
	maxAt   atomic.Int64
	sumUS   atomic.Uint64
	avgN    atomic.Uint64
}

func newCell(now time.Time) *cell {
	c := &cell{}
	c.windowStartNano.Store(now.UnixNano())
	c.minUS.Store(-1)
	return c
}

// Metrics is the process-wide (or per-pipeline) metrics collector. It owns
// one cell per Category plus the global dropped-events counter.
type Metrics struct {
	cells   [categoryCount]*cell
	dropped atomic.Uint64
	log     *zap.Logger
	window  time.Duration
	startedAt time.Time
}

// New constructs a Metrics with the default 5s window.
func New(log *zap.Logger) *Metrics {
	return NewWithWindow(log, DefaultWindow)
}

// NewWithWindow constructs a Metrics whose rolling window is the given
// duration instead of DefaultWindow.
func NewWithWindow(log *zap.Logger, window time.Duration) *Metrics {
	m := &Metrics{log: log, window: window, startedAt: time.Now()}
	now := time.Now()
	for i := range m.cells {
		m.cells[i] = newCell(now)
	}
	return m
}

// Record accounts one pipeline invocation of the given category (one
// transaction or account update handed to the decoder, regardless of how
// many events it produced) and its handling duration: bumps processCount,
// updates the sliding min/max/avg, and emits a debug log if the invocation
// exceeded the slow-processing threshold (§4.10, §7's "slow processing"
// row). Use IncrEventsProcessed to count the events actually emitted.
func (m *Metrics) Record(cat Category, d time.Duration) {
	c := m.cells[cat]
	c.processCount.Add(1)

	us := d.Microseconds()
	now := time.Now()

	for {
		cur := c.minUS.Load()
		lastAt := time.Unix(0, c.minAt.Load())
		if cur < 0 || us < cur || now.Sub(lastAt) > staleStatAge {
			if c.minUS.CompareAndSwap(cur, us) {
				c.minAt.Store(now.UnixNano())
				break
			}
			continue
		}
		break
	}
	for {
		cur := c.maxUS.Load()
		lastAt := time.Unix(0, c.maxAt.Load())
		if us > cur || now.Sub(lastAt) > staleStatAge {
			if c.maxUS.CompareAndSwap(cur, us) {
				c.maxAt.Store(now.UnixNano())
				break
			}
			continue
		}
		break
	}
	c.sumUS.Add(uint64(us))
	c.avgN.Add(1)

	if m.log != nil && d > slowProcessingThreshold {
		m.log.Debug("slow event processing",
			zap.Stringer("category", cat),
			zap.Duration("duration", d))
	}
}

// IncrEventsProcessed accounts n decoded events emitted for the given
// category, distinct from Record's per-invocation processCount (§4.10: a
// single transaction or account update may emit zero, one, or several
// events).
func (m *Metrics) IncrEventsProcessed(cat Category, n int) {
	if n <= 0 {
		return
	}
	c := m.cells[cat]
	c.eventsProcessed.Add(uint64(n))
	c.eventsInWindow.Add(uint64(n))
}

// IncrDropped bumps the global dropped-events counter, called whenever the
// Drop backpressure strategy rejects work (§4.8, §7).
func (m *Metrics) IncrDropped() {
	m.dropped.Add(1)
}

// DroppedEvents returns the running dropped-events count.
func (m *Metrics) DroppedEvents() uint64 {
	return m.dropped.Load()
}

// CellStats is a point-in-time snapshot of one category's cell, used by
// RenderTable and the Prometheus collector.
type CellStats struct {
	Category        Category
	ProcessCount    uint64
	EventsProcessed uint64
	EventsInWindow  uint64
	MinUS           int64
	MaxUS           int64
	AvgUS           float64
}

// Snapshot reads every cell's current stats without blocking any writer.
func (m *Metrics) Snapshot() []CellStats {
	out := make([]CellStats, 0, categoryCount)
	for i, c := range m.cells {
		var avg float64
		if n := c.avgN.Load(); n > 0 {
			avg = float64(c.sumUS.Load()) / float64(n)
		}
		minUS := c.minUS.Load()
		if minUS < 0 {
			minUS = 0
		}
		out = append(out, CellStats{
			Category:        Category(i),
			ProcessCount:    c.processCount.Load(),
			EventsProcessed: c.eventsProcessed.Load(),
			EventsInWindow:  c.eventsInWindow.Load(),
			MinUS:           minUS,
			MaxUS:           c.maxUS.Load(),
			AvgUS:           avg,
		})
	}
	return out
}

// rollWindows resets any cell's current-window counters and running average
// once its window has aged past m.window, matching the source's every-500ms
// background roll task.
func (m *Metrics) rollWindows() {
	now := time.Now()
	for _, c := range m.cells {
		start := time.Unix(0, c.windowStartNano.Load())
		if now.Sub(start) < m.window {
			continue
		}
		c.eventsInWindow.Store(0)
		c.sumUS.Store(0)
		c.avgN.Store(0)
		c.windowStartNano.Store(now.UnixNano())
	}
}

// StartRoller launches the background window-rolling task (every 500ms)
// until ctx is cancelled.
func (m *Metrics) StartRoller(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rollTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.rollWindows()
			}
		}
	}()
}

// StartAutoPrint launches the periodic table-printer task (default every
// 30s) until ctx is cancelled.
func (m *Metrics) StartAutoPrint(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPrintInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.log != nil {
					m.log.Info("metrics snapshot", zap.String("table", "\n"+m.RenderTable()))
				}
			}
		}
	}()
}

// RenderTable renders a fixed-width table of every cell plus the dropped
// count, the Go analogue of the source's metrics printer.
func (m *Metrics) RenderTable() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %10s %10s %10s %8s %8s %10s\n",
		"category", "processed", "in_window", "total", "min_us", "max_us", "avg_us")
	for _, s := range m.Snapshot() {
		fmt.Fprintf(&b, "%-12s %10d %10d %10d %8d %8d %10.1f\n",
			s.Category, s.ProcessCount, s.EventsInWindow, s.EventsProcessed, s.MinUS, s.MaxUS, s.AvgUS)
	}
	fmt.Fprintf(&b, "dropped_events: %d   uptime: %s\n", m.DroppedEvents(), time.Since(m.startedAt).Round(time.Second))
	return b.String()
}

// Collector returns a prometheus.Collector that mirrors this Metrics'
// atomic counters at scrape time. The atomics remain the source of truth on
// the hot path; this collector never writes to them.
func (m *Metrics) Collector() prometheus.Collector {
	return &promCollector{m: m}
}

type promCollector struct{ m *Metrics }

var (
	processedDesc = prometheus.NewDesc(
		"solana_event_stream_events_processed_total",
		"Total events processed per category.",
		[]string{"category"}, nil)
	windowDesc = prometheus.NewDesc(
		"solana_event_stream_events_in_window",
		"Events processed in the current sliding window, per category.",
		[]string{"category"}, nil)
	minUSDesc = prometheus.NewDesc(
		"solana_event_stream_processing_min_microseconds",
		"Minimum observed processing time in microseconds, per category.",
		[]string{"category"}, nil)
	maxUSDesc = prometheus.NewDesc(
		"solana_event_stream_processing_max_microseconds",
		"Maximum observed processing time in microseconds, per category.",
		[]string{"category"}, nil)
	avgUSDesc = prometheus.NewDesc(
		"solana_event_stream_processing_avg_microseconds",
		"Average processing time in microseconds within the current window, per category.",
		[]string{"category"}, nil)
	droppedDesc = prometheus.NewDesc(
		"solana_event_stream_dropped_events_total",
		"Total events rejected by the Drop backpressure strategy.",
		nil, nil)
)

func (p *promCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- processedDesc
	ch <- windowDesc
	ch <- minUSDesc
	ch <- maxUSDesc
	ch <- avgUSDesc
	ch <- droppedDesc
}

func (p *promCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range p.m.Snapshot() {
		cat := s.Category.String()
		ch <- prometheus.MustNewConstMetric(processedDesc, prometheus.CounterValue, float64(s.EventsProcessed), cat)
		ch <- prometheus.MustNewConstMetric(windowDesc, prometheus.GaugeValue, float64(s.EventsInWindow), cat)
		ch <- prometheus.MustNewConstMetric(minUSDesc, prometheus.GaugeValue, float64(s.MinUS), cat)
		ch <- prometheus.MustNewConstMetric(maxUSDesc, prometheus.GaugeValue, float64(s.MaxUS), cat)
		ch <- prometheus.MustNewConstMetric(avgUSDesc, prometheus.GaugeValue, s.AvgUS, cat)
	}
	ch <- prometheus.MustNewConstMetric(droppedDesc, prometheus.CounterValue, float64(p.m.DroppedEvents()))
}
