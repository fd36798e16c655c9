package eventfilter

import (
	"testing"

	"github.com/withobsrvr/solana-event-stream/internal/events"
)

func TestNilFilterIncludesEverything(t *testing.T) {
	var f *Filter
	if !f.Includes(events.EventRaydiumCpmmSwapBaseInput) {
		t.Fatal("nil filter should include everything")
	}
	if !f.IncludeTransactionEvent() || !f.IncludeAccountEvent() || !f.IncludeBlockEvent() {
		t.Fatal("nil filter should include every path")
	}
}

func TestFilterScopesByPath(t *testing.T) {
	f := New(events.EventRaydiumCpmmSwapBaseInput, events.EventAccountTokenMint)

	if !f.Includes(events.EventRaydiumCpmmSwapBaseInput) {
		t.Fatal("expected swap event to be included")
	}
	if f.Includes(events.EventBonkBuyExactIn) {
		t.Fatal("expected unrelated event to be excluded")
	}
	if !f.IncludeTransactionEvent() {
		t.Fatal("expected transaction path retained")
	}
	if !f.IncludeAccountEvent() {
		t.Fatal("expected account path retained")
	}
	if f.IncludeBlockEvent() {
		t.Fatal("expected block path excluded")
	}
}

func TestFingerprintStableUnderReorder(t *testing.T) {
	a := New(events.EventBonkBuyExactIn, events.EventBonkSellExactIn)
	b := New(events.EventBonkSellExactIn, events.EventBonkBuyExactIn)
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("expected fingerprint to be order-independent")
	}
}
