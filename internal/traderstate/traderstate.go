// Package traderstate implements the per-slot trader-address tracker (C11):
// a concurrent slot -> (creator set, fair-launch creator set) map,
// capacity-bounded by evicting the oldest slots once the cap is exceeded.
//
// original_source's DashMap is a sharded lock-free concurrent map; no
// equivalent library appears anywhere in the example pack (see DESIGN.md
// OQ-3), so this is a hand-rolled sharded sync.RWMutex map, the idiomatic Go
// substitute.
package traderstate

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/withobsrvr/solana-event-stream/internal/events"
)

// MaxSlots and CleanupBatchSize match the source's capacity-guard constants.
const (
	MaxSlots        = 1000
	CleanupBatchSize = 100
	shardCount      = 16
)

type slotAddresses struct {
	creators     map[events.Pubkey]struct{}
	bonkCreators map[events.Pubkey]struct{}
}

type shard struct {
	mu   sync.RWMutex
	data map[uint64]*slotAddresses
}

// Tracker is the process-wide (or per-pipeline) concurrent slot tracker.
type Tracker struct {
	shards     [shardCount]*shard
	slotCount  atomic.Int64
	generation atomic.Int64
}

// New constructs an empty Tracker.
func New() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i] = &shard{data: make(map[uint64]*slotAddresses)}
	}
	return t
}

func (t *Tracker) shardFor(slot uint64) *shard {
	return t.shards[slot%shardCount]
}

// AddCreator registers addr as a token-create creator at slot.
func (t *Tracker) AddCreator(slot uint64, addr events.Pubkey) {
	t.add(slot, addr, false)
	t.maybeCleanup()
}

// AddBonkCreator registers addr as a fair-launch pool-create creator at
// slot.
func (t *Tracker) AddBonkCreator(slot uint64, addr events.Pubkey) {
	t.add(slot, addr, true)
	t.maybeCleanup()
}

func (t *Tracker) add(slot uint64, addr events.Pubkey, bonk bool) {
	sh := t.shardFor(slot)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sa, ok := sh.data[slot]
	if !ok {
		sa = &slotAddresses{
			creators:     make(map[events.Pubkey]struct{}),
			bonkCreators: make(map[events.Pubkey]struct{}),
		}
		sh.data[slot] = sa
		t.slotCount.Add(1)
	}
	if bonk {
		sa.bonkCreators[addr] = struct{}{}
	} else {
		sa.creators[addr] = struct{}{}
	}
}

// IsCreatorInSlot reports whether addr is a known creator at slot, an O(log
// m) lookup within that single slot's set.
func (t *Tracker) IsCreatorInSlot(slot uint64, addr events.Pubkey) bool {
	sh := t.shardFor(slot)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	sa, ok := sh.data[slot]
	if !ok {
		return false
	}
	_, ok = sa.creators[addr]
	return ok
}

// IsBonkCreatorInSlot reports whether addr is a known fair-launch creator at
// slot.
func (t *Tracker) IsBonkCreatorInSlot(slot uint64, addr events.Pubkey) bool {
	sh := t.shardFor(slot)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	sa, ok := sh.data[slot]
	if !ok {
		return false
	}
	_, ok = sa.bonkCreators[addr]
	return ok
}

// IsCreator scans every retained slot for addr. Rare-path: callers should
// prefer IsCreatorInSlot when the slot is known.
func (t *Tracker) IsCreator(addr events.Pubkey) bool {
	for _, sh := range t.shards {
		sh.mu.RLock()
		for _, sa := range sh.data {
			if _, ok := sa.creators[addr]; ok {
				sh.mu.RUnlock()
				return true
			}
		}
		sh.mu.RUnlock()
	}
	return false
}

// IsBonkCreator scans every retained slot for addr as a fair-launch
// creator.
func (t *Tracker) IsBonkCreator(addr events.Pubkey) bool {
	for _, sh := range t.shards {
		sh.mu.RLock()
		for _, sa := range sh.data {
			if _, ok := sa.bonkCreators[addr]; ok {
				sh.mu.RUnlock()
				return true
			}
		}
		sh.mu.RUnlock()
	}
	return false
}

// SlotCount returns the number of retained slots.
func (t *Tracker) SlotCount() int {
	return int(t.slotCount.Load())
}

// maybeCleanup evicts the oldest CleanupBatchSize slots once the retained
// count exceeds MaxSlots. Called after the insert it guards so the cap is
// never left exceeded once the call returns. A CAS on generation elects a
// single cleanup winner per cleanup cycle, matching the source's
// generation-counter election.
func (t *Tracker) maybeCleanup() {
	if t.slotCount.Load() <= MaxSlots {
		return
	}

	gen := t.generation.Load()
	if !t.generation.CompareAndSwap(gen, gen+1) {
		return // another goroutine won this cleanup cycle
	}

	slots := t.allSlots()
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	if len(slots) > CleanupBatchSize {
		slots = slots[:CleanupBatchSize]
	}

	for _, slot := range slots {
		sh := t.shardFor(slot)
		sh.mu.Lock()
		if _, ok := sh.data[slot]; ok {
			delete(sh.data, slot)
			t.slotCount.Add(-1)
		}
		sh.mu.Unlock()
	}
}

func (t *Tracker) allSlots() []uint64 {
	var slots []uint64
	for _, sh := range t.shards {
		sh.mu.RLock()
		for slot := range sh.data {
			slots = append(slots, slot)
		}
		sh.mu.RUnlock()
	}
	return slots
}
