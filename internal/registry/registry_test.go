package registry

import (
	"testing"

	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/eventfilter"
)

var testProgramID = events.Pubkey{1, 2, 3}

func init() {
	RegisterProtocol(events.ProtocolRaydiumCpmm, func() ([]InstructionConfig, []AccountConfig) {
		return []InstructionConfig{
			{
				ProgramID:                testProgramID,
				Protocol:                 events.ProtocolRaydiumCpmm,
				EventType:                events.EventRaydiumCpmmSwapBaseInput,
				InstructionDiscriminator: []byte{1, 2, 3, 4, 5, 6, 7, 8},
				InstructionDecoder: func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
					return nil, false
				},
			},
		}, nil
	})
}

func TestBuildAndLookup(t *testing.T) {
	r := Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)

	data := append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 9, 9)
	matches := r.Lookup(testProgramID, data)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	other := events.Pubkey{9, 9, 9}
	if matches := r.Lookup(other, data); len(matches) != 0 {
		t.Fatalf("expected 0 matches for unrelated program id, got %d", len(matches))
	}
}

func TestBuildMemoizesByProtocolsAndFilter(t *testing.T) {
	r1 := Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	r2 := Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	if r1 != r2 {
		t.Fatal("expected memoized registry to be returned for identical (protocols, filter)")
	}

	f := eventfilter.New(events.EventRaydiumCpmmSwapBaseInput)
	r3 := Build([]events.Protocol{events.ProtocolRaydiumCpmm}, f)
	if r3 == r1 {
		t.Fatal("expected a distinct registry for a distinct filter")
	}
}

func TestBuildAppliesFilter(t *testing.T) {
	f := eventfilter.New(events.EventBonkBuyExactIn) // excludes the registered RaydiumCpmm event
	r := Build([]events.Protocol{events.ProtocolRaydiumCpmm}, f)

	data := append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 9, 9)
	if matches := r.Lookup(testProgramID, data); len(matches) != 0 {
		t.Fatalf("expected filter to exclude all matches, got %d", len(matches))
	}
}
