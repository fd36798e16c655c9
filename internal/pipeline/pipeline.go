// Package pipeline implements the backpressure-aware event processor (C8):
// a queue sitting between ingest and the user callback with a block-or-drop
// admission policy, grounded on event_processor.rs's EventProcessor and its
// BackpressureStrategy::{Block,Drop} branches.
package pipeline

import (
	"context"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Strategy selects how the processor admits work once its permit cap is
// reached.
type Strategy int

const (
	// Block makes Submit spin (cooperatively yielding) until a permit frees
	// up, then enqueues onto the dedicated worker pool.
	Block Strategy = iota
	// Drop makes Submit reject the item immediately, incrementing the
	// dropped-events counter, and otherwise processes it on its own
	// goroutine rather than a shared worker pool.
	Drop
)

// Config mirrors StreamClientConfig's backpressure block: a permit cap and
// an admission strategy.
type Config struct {
	Permits  int
	Strategy Strategy
}

// Default, HighThroughput, and LowLatency are the presets named in
// SPEC_FULL.md §4.8 (config.rs's StreamClientConfig::default/
// high_throughput/low_latency).
var (
	DefaultConfig       = Config{Permits: 3000, Strategy: Block}
	HighThroughputConfig = Config{Permits: 20000, Strategy: Drop}
	LowLatencyConfig     = Config{Permits: 4000, Strategy: Block}
)

// Processor is the generic queue-plus-worker-pool described by C8. It is
// agnostic to what it processes: the caller supplies the per-item work
// function at construction.
type Processor struct {
	cfg     Config
	process func(item any)
	log     *zap.Logger

	pending atomic.Int64
	dropped atomic.Uint64
	onDrop  func()

	queue chan any
	eg    *errgroup.Group
	stop  context.CancelFunc
}

// New constructs a Processor. The workers argument is not retained: the
// Block-mode pool size is the value passed to Start, which applies the
// runtime.GOMAXPROCS(0) default for workers <= 0.
func New(cfg Config, workers int, log *zap.Logger, process func(item any)) *Processor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Processor{
		cfg:     cfg,
		process: process,
		log:     log,
		queue:   make(chan any, cfg.Permits),
	}
}

// Start launches the Block-mode worker pool. It is a no-op under Drop
// strategy, which processes work inline on its own goroutine per item
// instead of a shared pool (mirroring the source: the block-processing
// thread is only started when the strategy is Block).
func (p *Processor) Start(ctx context.Context, workers int) {
	if p.cfg.Strategy != Block {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(ctx)
	p.stop = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	p.eg = eg

	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			p.worker(egCtx)
			return nil
		})
	}
}

// worker pins its goroutine to an OS thread for the lifetime of the pool,
// isolating its busy-poll loop from the rest of the scheduler's goroutines —
// the Go analogue of the source's dedicated-OS-thread-per-pool design (see
// SPEC_FULL.md §5).
func (p *Processor) worker(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.queue:
			if !ok {
				return
			}
			p.run(item)
			p.pending.Add(-1)
		}
	}
}

func (p *Processor) run(item any) {
	defer func() {
		if r := recover(); r != nil {
			if p.log != nil {
				p.log.Warn("pipeline item panic recovered", zap.Any("recover", r))
			}
		}
	}()
	p.process(item)
}

// Submit admits item per the configured strategy. Under Block it spins
// until a permit is free, then enqueues; under Drop it either dispatches on
// a fresh goroutine or bumps the dropped counter, never blocking the
// caller.
func (p *Processor) Submit(item any) {
	switch p.cfg.Strategy {
	case Block:
		for {
			if p.pending.Load() < int64(p.cfg.Permits) {
				p.pending.Add(1)
				p.queue <- item
				return
			}
			runtime.Gosched()
		}
	case Drop:
		if p.pending.Load() >= int64(p.cfg.Permits) {
			p.dropped.Add(1)
			if p.onDrop != nil {
				p.onDrop()
			}
			return
		}
		p.pending.Add(1)
		go func() {
			defer p.pending.Add(-1)
			p.run(item)
		}()
	}
}

// SetOnDrop registers a callback invoked once per Drop-strategy rejection,
// in addition to this Processor's own counter — used to mirror rejections
// into the shared metrics collector (internal/metrics) without coupling
// this package to it.
func (p *Processor) SetOnDrop(fn func()) {
	p.onDrop = fn
}

// DroppedEvents returns the running count of Drop-strategy rejections.
func (p *Processor) DroppedEvents() uint64 {
	return p.dropped.Load()
}

// Pending returns the current in-flight count (queued plus executing).
func (p *Processor) Pending() int64 {
	return p.pending.Load()
}

// Stop signals the worker pool to exit and waits for it to drain. Safe to
// call multiple times; a no-op if Start was never called or the strategy is
// Drop.
func (p *Processor) Stop() {
	if p.stop == nil {
		return
	}
	p.stop()
	_ = p.eg.Wait()
	p.stop = nil
}
