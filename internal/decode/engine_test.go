package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/withobsrvr/solana-event-stream/internal/eventfilter"
	"github.com/withobsrvr/solana-event-stream/internal/eventmeta"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func swapBaseInputData(amountIn, minOut uint64) []byte {
	data := append([]byte{}, cpmmSwapBaseInputDisc...)
	data = append(data, le64(amountIn)...)
	data = append(data, le64(minOut)...)
	return data
}

func cpmmTxContext(data []byte) (*events.TransactionContext, events.InstructionView) {
	accounts := make([]events.Pubkey, 14)
	accounts[0] = solana.RaydiumCpmmProgramID
	for i := 1; i < 14; i++ {
		accounts[i] = events.Pubkey{byte(i)}
	}
	view := events.InstructionView{
		ProgramIDIndex: 0,
		AccountIndices: []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		Data:           data,
	}
	txCtx := &events.TransactionContext{
		Signature: events.Signature{1, 2, 3},
		Slot:      7,
		Accounts:  accounts,
	}
	return txCtx, view
}

// TestS1ConstantProductSwapDecodesAmountsAndAccounts implements spec
// scenario S1: a constant-product swap instruction with the documented
// discriminator and amounts decodes to one event whose amounts and 13-slot
// account mapping match exactly.
func TestS1ConstantProductSwapDecodesAmountsAndAccounts(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	data := swapBaseInputData(1_000_000, 950_000)
	txCtx, view := cpmmTxContext(data)

	var got []events.UnifiedEvent
	Instruction(view, 0, txCtx, reg, pool, log, func(ev events.UnifiedEvent) {
		got = append(got, ev)
	})

	require.Len(t, got, 1)
	swap, ok := got[0].(*events.RaydiumCpmmSwapEvent)
	require.True(t, ok)
	require.Equal(t, uint64(1_000_000), swap.AmountIn)
	require.Equal(t, uint64(950_000), swap.MinimumAmountOut)
	require.Equal(t, txCtx.Accounts[1], swap.Payer)
	require.Equal(t, txCtx.Accounts[5], swap.InputTokenAccount)
	require.Equal(t, txCtx.Accounts[13], swap.ObservationState)
}

// TestP1DiscriminatorPrefixMatchesEmittedEvent covers property P1: the
// originating instruction's data begins with the matched config's
// discriminator.
func TestP1DiscriminatorPrefixMatchesEmittedEvent(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	data := swapBaseInputData(42, 1)
	txCtx, view := cpmmTxContext(data)

	Instruction(view, 0, txCtx, reg, pool, log, func(ev events.UnifiedEvent) {
		require.Equal(t, events.EventRaydiumCpmmSwapBaseInput, ev.EventType())
	})
	require.True(t, len(data) >= len(cpmmSwapBaseInputDisc))
	for i, b := range cpmmSwapBaseInputDisc {
		require.Equal(t, b, data[i])
	}
}

// TestP3IdempotentDecodeProducesStructurallyEqualEvents covers property P3:
// decoding the same bytes twice yields structurally equal events, ignoring
// HandleUS/RecvUS.
func TestP3IdempotentDecodeProducesStructurallyEqualEvents(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	data := swapBaseInputData(1000, 900)
	txCtx, view := cpmmTxContext(data)

	var first, second *events.RaydiumCpmmSwapEvent
	Instruction(view, 0, txCtx, reg, pool, log, func(ev events.UnifiedEvent) {
		first = ev.(*events.RaydiumCpmmSwapEvent)
	})
	Instruction(view, 0, txCtx, reg, pool, log, func(ev events.UnifiedEvent) {
		second = ev.(*events.RaydiumCpmmSwapEvent)
	})

	first.Meta.RecvUS, second.Meta.RecvUS = 0, 0
	first.Meta.HandleUS, second.Meta.HandleUS = 0, 0
	require.Equal(t, first, second)
}

// TestUnknownProgramIDDeclinesSilently ensures an instruction under a
// program-id with no registry entry produces no event and no panic.
func TestUnknownProgramIDDeclinesSilently(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	txCtx := &events.TransactionContext{
		Accounts: []events.Pubkey{{9, 9, 9}},
	}
	view := events.InstructionView{ProgramIDIndex: 0, Data: swapBaseInputData(1, 1)}

	called := false
	Instruction(view, 0, txCtx, reg, pool, log, func(ev events.UnifiedEvent) { called = true })
	require.False(t, called)
}

// TestOutOfRangeAccountIndexDropsInstruction covers §4.4 step 3 / OQ-2: an
// out-of-range account index drops the instruction rather than padding it.
func TestOutOfRangeAccountIndexDropsInstruction(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	data := swapBaseInputData(1, 1)
	txCtx, view := cpmmTxContext(data)
	view.AccountIndices = append([]uint8{}, view.AccountIndices...)
	view.AccountIndices[0] = 250 // out of range

	called := false
	Instruction(view, 0, txCtx, reg, pool, log, func(ev events.UnifiedEvent) { called = true })
	require.False(t, called)
}

// TestEventTypeFilterPrunesInstructionConfigs covers P5/S6: a filter that
// excludes every RaydiumCpmm tag yields a registry with no matching config.
func TestEventTypeFilterPrunesInstructionConfigs(t *testing.T) {
	filter := eventfilter.New(events.EventPumpFunBuy)
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, filter)

	data := swapBaseInputData(1, 1)
	txCtx, view := cpmmTxContext(data)

	called := false
	Instruction(view, 0, txCtx, reg, eventmeta.Default(), zaptest.NewLogger(t), func(ev events.UnifiedEvent) { called = true })
	require.False(t, called)
}

// TestAccountDecodeRequiresOwnerMatchExceptCommon covers §4.6 step 1: a
// protocol-owned config only matches when the account's owner equals the
// declared program-id.
func TestAccountDecodeRequiresOwnerMatchExceptCommon(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()

	acct := &events.AccountUpdate{
		Owner: events.Pubkey{1, 2, 3}, // not RaydiumCpmmProgramID
		Data:  append([]byte{}, cpmmAmmConfigAccountDisc...),
	}

	called := false
	Account(acct, reg, pool, func(ev events.UnifiedEvent) { called = true })
	require.False(t, called)

	acct.Owner = solana.RaydiumCpmmProgramID
	Account(acct, reg, pool, func(ev events.UnifiedEvent) {
		called = true
		require.Equal(t, events.EventAccountRaydiumCpmmAmmConfig, ev.EventType())
	})
	require.True(t, called)
}

// TestProtocolAccountDecodeWinsOverCommonCatchAll guards against the
// ordering bug where the program-id-agnostic token/mint catch-all
// (decodeTokenOrMintAccount, which matches any >= 165-byte account with no
// owner/discriminator gate) shadows every real protocol snapshot decoder.
// Assembly order must place protocol-specific configs before the common
// bucket, so a RaydiumCpmm-owned AmmConfig account (which is well over 165
// bytes) decodes as its real event type, not as a generic TokenAccountEvent.
func TestProtocolAccountDecodeWinsOverCommonCatchAll(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolRaydiumCpmm}, nil)
	pool := eventmeta.Default()

	data := append([]byte{}, cpmmAmmConfigAccountDisc...)
	data = append(data, make([]byte, 200)...) // pad well past splAccountLen (165)

	acct := &events.AccountUpdate{
		Owner: solana.RaydiumCpmmProgramID,
		Data:  data,
	}

	var got events.UnifiedEvent
	Account(acct, reg, pool, func(ev events.UnifiedEvent) { got = ev })
	require.NotNil(t, got)
	require.Equal(t, events.EventAccountRaydiumCpmmAmmConfig, got.EventType())
	_, isCatchAll := got.(*events.TokenAccountEvent)
	require.False(t, isCatchAll, "protocol-specific decoder must win over the common token/mint catch-all")
}
