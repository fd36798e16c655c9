// Package clock implements the high-performance monotonic clock (C9):
// triple-sample calibration against wall-clock time, a lock-free fast path,
// and advisory periodic drift correction.
package clock

import (
	"sync/atomic"
	"time"
)

// DefaultCalibrationInterval matches the source's 300-second recalibration
// cadence.
const DefaultCalibrationInterval = 300 * time.Second

// DriftThresholdMicros is the drift magnitude, in microseconds, beyond which
// recalibration reseats the base pair.
const DriftThresholdMicros = 1000

// Clock provides now_micros() with no locking on the fast path, calibrated
// against wall-clock time at construction and, optionally, periodically
// thereafter. The base pair is held behind atomics (not a mutex) so the fast
// path never blocks, at the cost of the base pair possibly tearing by a few
// nanoseconds across a concurrent recalibration — acceptable since
// recalibration is advisory and rare (default every 300s).
type Clock struct {
	baseMonotonic atomic.Pointer[time.Time]
	baseUTCMicros atomic.Int64

	calibrationInterval time.Duration
	lastCalibration      atomic.Int64 // unix nanos of the last (re)calibration
}

// New samples the monotonic and wall clocks three times, keeping the pair
// with the lowest inter-sample latency, exactly as the source does.
func New(calibrationInterval time.Duration) *Clock {
	c := &Clock{calibrationInterval: calibrationInterval}
	mono, utc := bestSample()
	c.baseMonotonic.Store(&mono)
	c.baseUTCMicros.Store(utc)
	c.lastCalibration.Store(mono.UnixNano())
	return c
}

// Default constructs a Clock with DefaultCalibrationInterval.
func Default() *Clock {
	return New(DefaultCalibrationInterval)
}

func bestSample() (time.Time, int64) {
	var bestMono time.Time
	var bestUTC int64
	var bestLatency time.Duration = -1

	for i := 0; i < 3; i++ {
		before := time.Now()
		utcMicros := time.Now().UnixMicro()
		after := time.Now()
		latency := after.Sub(before)
		if bestLatency < 0 || latency < bestLatency {
			bestLatency = latency
			bestMono = before
			bestUTC = utcMicros
		}
	}
	return bestMono, bestUTC
}

// NowMicros returns the current time in microseconds since the Unix epoch,
// computed from the monotonic anchor with no locking.
func (c *Clock) NowMicros() int64 {
	base := c.baseMonotonic.Load()
	elapsed := time.Since(*base)
	return c.baseUTCMicros.Load() + elapsed.Microseconds()
}

// ElapsedMicros returns NowMicros() - start.
func (c *Clock) ElapsedMicros(start int64) int64 {
	return c.NowMicros() - start
}

// MaybeRecalibrate resamples both clocks if the calibration interval has
// elapsed since the last (re)calibration, reseating the base pair when
// drift exceeds DriftThresholdMicros. Safe to call from any goroutine;
// NowMicros never blocks on it.
func (c *Clock) MaybeRecalibrate() {
	last := c.lastCalibration.Load()
	if time.Since(time.Unix(0, last)) < c.calibrationInterval {
		return
	}
	c.recalibrate()
}

func (c *Clock) recalibrate() {
	mono, utc := bestSample()
	base := c.baseMonotonic.Load()
	expected := c.baseUTCMicros.Load() + mono.Sub(*base).Microseconds()
	drift := utc - expected
	if drift < 0 {
		drift = -drift
	}
	if drift > DriftThresholdMicros {
		c.baseMonotonic.Store(&mono)
		c.baseUTCMicros.Store(utc)
	}
	c.lastCalibration.Store(mono.UnixNano())
}
