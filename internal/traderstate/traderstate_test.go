package traderstate

import (
	"testing"

	"github.com/withobsrvr/solana-event-stream/internal/events"
)

func TestAddAndLookupInSlot(t *testing.T) {
	tr := New()
	addr := events.Pubkey{1, 2, 3}

	tr.AddCreator(42, addr)

	if !tr.IsCreatorInSlot(42, addr) {
		t.Fatal("expected creator to be found in its slot")
	}
	if tr.IsCreatorInSlot(43, addr) {
		t.Fatal("expected creator to be absent from an unrelated slot")
	}
	if tr.IsBonkCreatorInSlot(42, addr) {
		t.Fatal("expected creator set and bonk-creator set to be independent")
	}
}

func TestAddBonkCreatorSeparateFromCreator(t *testing.T) {
	tr := New()
	addr := events.Pubkey{9, 9}

	tr.AddBonkCreator(7, addr)

	if !tr.IsBonkCreatorInSlot(7, addr) {
		t.Fatal("expected bonk creator to be found")
	}
	if tr.IsCreatorInSlot(7, addr) {
		t.Fatal("expected plain creator set unaffected by bonk registration")
	}
	if !tr.IsBonkCreator(addr) {
		t.Fatal("expected full-scan IsBonkCreator to find addr")
	}
}

func TestCleanupEvictsOldestSlotsOverCapacity(t *testing.T) {
	tr := New()
	addr := events.Pubkey{1}

	for slot := uint64(0); slot < MaxSlots+CleanupBatchSize; slot++ {
		tr.AddCreator(slot, addr)
	}

	if tr.SlotCount() > MaxSlots {
		t.Fatalf("expected slot count bounded near %d, got %d", MaxSlots, tr.SlotCount())
	}

	// the most recently added slots must have survived cleanup.
	latest := uint64(MaxSlots + CleanupBatchSize - 1)
	if !tr.IsCreatorInSlot(latest, addr) {
		t.Fatal("expected most recent slot to survive cleanup")
	}
}
