// Package eventfilter implements the declarative event-type include-set
// (C7) that prunes decoder work at registry-assembly time.
package eventfilter

import "github.com/withobsrvr/solana-event-stream/internal/events"

// Filter is a declarative include-set of event types. A nil *Filter means
// "no filtering" and is handled by callers, not by this type.
type Filter struct {
	include map[events.EventType]struct{}
}

// New builds a Filter from the given event types.
func New(types ...events.EventType) *Filter {
	f := &Filter{include: make(map[events.EventType]struct{}, len(types))}
	for _, t := range types {
		f.include[t] = struct{}{}
	}
	return f
}

// Includes reports whether t is in the include-set.
func (f *Filter) Includes(t events.EventType) bool {
	if f == nil {
		return true
	}
	_, ok := f.include[t]
	return ok
}

// IncludeTransactionEvent reports whether the filter retains at least one
// transaction-path (non-account, non-block) event type.
func (f *Filter) IncludeTransactionEvent() bool {
	if f == nil {
		return true
	}
	for t := range f.include {
		if !t.IsAccountEvent() && !t.IsBlockEvent() {
			return true
		}
	}
	return false
}

// IncludeAccountEvent reports whether the filter retains at least one
// account-path event type.
func (f *Filter) IncludeAccountEvent() bool {
	if f == nil {
		return true
	}
	for t := range f.include {
		if t.IsAccountEvent() {
			return true
		}
	}
	return false
}

// IncludeBlockEvent reports whether the filter retains the block-meta event
// type.
func (f *Filter) IncludeBlockEvent() bool {
	if f == nil {
		return true
	}
	_, ok := f.include[events.EventBlockMeta]
	return ok
}

// Fingerprint returns a stable string key for memoizing registry assembly
// per (protocols, filter) pair (internal/registry). A nil filter fingerprints
// to the empty string.
func (f *Filter) Fingerprint() string {
	if f == nil || len(f.include) == 0 {
		return ""
	}
	types := make([]int, 0, len(f.include))
	for t := range f.include {
		types = append(types, int(t))
	}
	return fingerprintInts(types)
}
