package correlate

import (
	"testing"

	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func TestResolveCpmmSwapFromTransferChecked(t *testing.T) {
	userInputATA := events.Pubkey{1}
	inputVault := events.Pubkey{2}
	inputMint := events.Pubkey{3}

	ev := &events.RaydiumCpmmSwapEvent{
		InputTokenAccount: userInputATA,
		InputVault:        inputVault,
		InputTokenMint:    inputMint,
	}
	ev.Meta.EventType = events.EventRaydiumCpmmSwapBaseInput

	accounts := []events.Pubkey{
		solana.TokenProgramID, // index 0: program id of the inner instruction
		userInputATA,          // index 1: source
		{99},                  // index 2: mint (transfer-checked's second account)
		inputVault,             // index 3: destination
		{98},                  // index 4: owner authority
	}

	data := append([]byte{12}, u64le(250_000)...)
	group := events.InnerInstructionGroup{
		OuterIndex: 0,
		Instructions: []events.InnerInstruction{
			{InstructionView: events.InstructionView{
				ProgramIDIndex: 0,
				AccountIndices: []uint8{1, 2, 3, 4},
				Data:           data,
			}},
		},
	}

	txCtx := &events.TransactionContext{
		Accounts:    accounts,
		InnerGroups: []events.InnerInstructionGroup{group},
	}

	Resolve(ev, txCtx, 0)

	if ev.Swap == nil {
		t.Fatal("expected swap data to be populated")
	}
	if ev.Swap.FromAmount != 250_000 {
		t.Fatalf("expected from_amount 250000, got %d", ev.Swap.FromAmount)
	}
	if ev.Swap.FromMint != inputMint {
		t.Fatal("expected from_mint to be carried from the decoded event")
	}
}

func TestResolveStopsAtNonSystemProgramInstruction(t *testing.T) {
	ev := &events.RaydiumCpmmSwapEvent{
		InputTokenAccount: events.Pubkey{1},
		InputVault:        events.Pubkey{2},
	}

	other := events.Pubkey{77}
	accounts := []events.Pubkey{other, events.Pubkey{1}, events.Pubkey{2}}

	group := events.InnerInstructionGroup{
		OuterIndex: 0,
		Instructions: []events.InnerInstruction{
			{InstructionView: events.InstructionView{
				ProgramIDIndex: 0, // not a system program
				AccountIndices: []uint8{1, 2},
				Data:           append([]byte{3}, u64le(100)...),
			}},
		},
	}

	txCtx := &events.TransactionContext{Accounts: accounts, InnerGroups: []events.InnerInstructionGroup{group}}
	Resolve(ev, txCtx, 0)

	if ev.Swap != nil {
		t.Fatal("expected no swap data when the first sibling instruction is not a system program")
	}
}

func TestResolveNoopWhenSwapAlreadyPopulated(t *testing.T) {
	ev := &events.RaydiumCpmmSwapEvent{}
	ev.Meta.Swap = &events.SwapData{FromAmount: 1, ToAmount: 1}

	txCtx := &events.TransactionContext{}
	Resolve(ev, txCtx, 0)

	if ev.Swap.FromAmount != 1 {
		t.Fatal("expected already-populated swap data to be left untouched")
	}
}
