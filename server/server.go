// Package server wires the core pipeline (internal/registry, internal/decode,
// internal/correlate, internal/pipeline, internal/clock, internal/metrics,
// internal/traderstate) into a runnable process: the subscription/lifecycle
// controller (C12) plus the ambient HTTP health/metrics surface and optional
// flowctl control-plane heartbeat, grounded on the teacher's
// ContractInvocationServer/StartHealthCheckServer pair.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/withobsrvr/solana-event-stream/internal/clock"
	"github.com/withobsrvr/solana-event-stream/internal/decode"
	"github.com/withobsrvr/solana-event-stream/internal/eventfilter"
	"github.com/withobsrvr/solana-event-stream/internal/eventmeta"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/ingest"
	"github.com/withobsrvr/solana-event-stream/internal/metrics"
	"github.com/withobsrvr/solana-event-stream/internal/pipeline"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/traderstate"
)

// Controller is the subscription/lifecycle controller (C12): it owns the
// registry, the metadata pool, the clock, the metrics collector, the
// trader-address tracker, the two backpressure processors, and the ambient
// HTTP/flowctl surface in a single shared slot, mirroring
// ContractInvocationServer's ownership of every long-lived worker handle.
type Controller struct {
	log       *zap.Logger
	cfg       Config
	serviceID string

	reg      *registry.Registry
	metaPool *eventmeta.Pool
	clk      *clock.Clock
	met      *metrics.Metrics
	tracker  *traderstate.Tracker

	txSource   ingest.TransactionSource
	acctSource ingest.AccountSource
	callback   decode.Callback

	txProc   *pipeline.Processor
	acctProc *pipeline.Processor

	flowctl *FlowctlController

	healthSrv  *http.Server
	metricsSrv *http.Server

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// New constructs a Controller. txSource/acctSource are the two
// transport-agnostic ingest sources (spec.md §6); callback receives every
// decoded event after correlation, trader-context tagging, and handle-latency
// stamping. filter may be nil ("no filtering").
func New(cfg Config, txSource ingest.TransactionSource, acctSource ingest.AccountSource, filter *eventfilter.Filter, callback decode.Callback, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		log:        log,
		cfg:        cfg,
		serviceID:  uuid.New().String(),
		reg:        registry.Build(cfg.Protocols, filter),
		metaPool:   eventmeta.Default(),
		clk:        clock.Default(),
		met:        metrics.NewWithWindow(log, cfg.MetricsWindow),
		tracker:    traderstate.New(),
		txSource:   txSource,
		acctSource: acctSource,
		callback:   callback,
	}
}

// Start launches the ingest goroutines, the backpressure worker pools, the
// metrics background tasks, and the ambient HTTP/flowctl surface. A second
// Start while already running returns an error rather than silently
// no-oping; concurrent Start calls must be serialized by the caller
// (SPEC_FULL.md §4.12).
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("controller already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.startedAt = time.Now()
	c.mu.Unlock()

	if c.cfg.FlowctlEnabled {
		c.flowctl = NewFlowctlController(c.log, c.cfg.FlowctlEndpoint, c.serviceID)
	}

	c.txProc = pipeline.New(c.cfg.Pipeline, c.cfg.Workers, c.log, c.processTransaction)
	c.txProc.SetOnDrop(c.met.IncrDropped)
	c.txProc.Start(ctx, c.cfg.Workers)
	c.acctProc = pipeline.New(c.cfg.Pipeline, c.cfg.Workers, c.log, c.processAccount)
	c.acctProc.SetOnDrop(c.met.IncrDropped)
	c.acctProc.Start(ctx, c.cfg.Workers)

	go c.ingestTransactions(ctx)
	go c.ingestAccounts(ctx)

	if c.cfg.EnableMetrics {
		c.met.StartRoller(ctx)
		c.met.StartAutoPrint(ctx, c.cfg.PrintInterval)
	}

	c.startHTTP(ctx)

	if c.flowctl != nil {
		if err := c.flowctl.Connect(ctx); err != nil {
			c.log.Warn("flowctl connect failed, continuing without control-plane registration", zap.Error(err))
		} else if err := c.flowctl.Register(ctx); err != nil {
			c.log.Warn("flowctl registration failed", zap.Error(err))
		}
		c.flowctl.StartHeartbeatLoop(ctx, c.heartbeatMetrics)
	}

	c.log.Info("controller started",
		zap.String("service_id", c.serviceID),
		zap.Int("protocols", len(c.cfg.Protocols)),
		zap.Int("permits", c.cfg.Pipeline.Permits))
	return nil
}

// Stop signals the shutdown flag, drains in-flight work, and tears down the
// HTTP/flowctl surface. Safe to call multiple times (SPEC_FULL.md §4.12).
func (c *Controller) Stop(ctx context.Context) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c.txProc != nil {
		c.txProc.Stop()
	}
	if c.acctProc != nil {
		c.acctProc.Stop()
	}
	if c.healthSrv != nil {
		_ = c.healthSrv.Shutdown(ctx)
	}
	if c.metricsSrv != nil {
		_ = c.metricsSrv.Shutdown(ctx)
	}
	if c.flowctl != nil {
		_ = c.flowctl.Close()
	}
	c.log.Info("controller stopped", zap.String("service_id", c.serviceID))
}

// Metrics exposes the running Metrics collector, mainly for tests and the
// health handler.
func (c *Controller) Metrics() *metrics.Metrics { return c.met }

// Tracker exposes the trader-address tracker, mainly for tests.
func (c *Controller) Tracker() *traderstate.Tracker { return c.tracker }

func (c *Controller) ingestTransactions(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		tx, err := c.txSource.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("transaction source error", zap.Error(err))
			return
		}
		c.txProc.Submit(tx)
	}
}

func (c *Controller) ingestAccounts(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		acct, err := c.acctSource.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("account source error", zap.Error(err))
			return
		}
		c.acctProc.Submit(acct)
	}
}

func (c *Controller) processTransaction(item any) {
	tx := item.(*events.TransactionUpdate)
	start := time.Now()
	emitted := 0
	decode.Transaction(tx, c.reg, c.metaPool, c.log, func(ev events.UnifiedEvent) {
		emitted++
		c.finishEvent(ev)
	})
	c.met.Record(metrics.CategoryTransaction, time.Since(start))
	c.met.IncrEventsProcessed(metrics.CategoryTransaction, emitted)
	c.clk.MaybeRecalibrate()
}

func (c *Controller) processAccount(item any) {
	acct := item.(*events.AccountUpdate)
	start := time.Now()
	emitted := 0
	decode.Account(acct, c.reg, c.metaPool, func(ev events.UnifiedEvent) {
		emitted++
		c.finishEvent(ev)
	})
	c.met.Record(metrics.CategoryAccount, time.Since(start))
	c.met.IncrEventsProcessed(metrics.CategoryAccount, emitted)
}

// finishEvent applies §4.11 trader-context tagging, stamps handle_us via the
// high-performance clock (C9) as the last step before delivery (invariant
// (c)), and invokes the user callback. The callback is adversarial: a panic
// here must not take down the worker (§7).
func (c *Controller) finishEvent(ev events.UnifiedEvent) {
	traderstate.Apply(c.tracker, ev, c.cfg.BotWallet)
	ev.SetHandleUS(c.clk.ElapsedMicros(ev.RecvUS()))
	c.invokeCallback(ev)
}

func (c *Controller) invokeCallback(ev events.UnifiedEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("user callback panic recovered", zap.Any("recover", r))
		}
	}()
	c.callback(ev)
}

func (c *Controller) startHTTP(ctx context.Context) {
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", c.handleHealth)
	c.healthSrv = &http.Server{Addr: c.cfg.HealthAddr, Handler: healthMux}
	go func() {
		if err := c.healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.log.Error("health server failed", zap.Error(err))
		}
	}()

	if !c.cfg.EnableMetrics {
		return
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(c.met.Collector())
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	c.metricsSrv = &http.Server{Addr: c.cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := c.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.log.Error("metrics server failed", zap.Error(err))
		}
	}()
}

func (c *Controller) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"

	body := map[string]any{
		"status":       status,
		"service_id":   c.serviceID,
		"uptime":       time.Since(c.startedAt).String(),
		"protocols":    len(c.cfg.Protocols),
		"slots_tracked": c.tracker.SlotCount(),
		"backpressure": map[string]any{
			"permits":        c.cfg.Pipeline.Permits,
			"tx_pending":     c.pendingOrZero(c.txProc),
			"tx_dropped":     c.droppedOrZero(c.txProc),
			"account_pending": c.pendingOrZero(c.acctProc),
			"account_dropped": c.droppedOrZero(c.acctProc),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (c *Controller) pendingOrZero(p *pipeline.Processor) int64 {
	if p == nil {
		return 0
	}
	return p.Pending()
}

func (c *Controller) droppedOrZero(p *pipeline.Processor) uint64 {
	if p == nil {
		return 0
	}
	return p.DroppedEvents()
}

// heartbeatMetrics gathers the values posted to the flowctl control plane,
// the Go analogue of ConvertMetricsToFlowctl.
func (c *Controller) heartbeatMetrics() map[string]float64 {
	out := map[string]float64{
		"uptime_seconds":   time.Since(c.startedAt).Seconds(),
		"dropped_events":   float64(c.met.DroppedEvents()),
		"slots_tracked":    float64(c.tracker.SlotCount()),
		"tx_pending":       float64(c.pendingOrZero(c.txProc)),
		"tx_dropped":       float64(c.droppedOrZero(c.txProc)),
		"account_pending":  float64(c.pendingOrZero(c.acctProc)),
		"account_dropped":  float64(c.droppedOrZero(c.acctProc)),
	}
	for _, s := range c.met.Snapshot() {
		out[s.Category.String()+"_processed"] = float64(s.EventsProcessed)
		out[s.Category.String()+"_avg_us"] = s.AvgUS
	}
	return out
}
