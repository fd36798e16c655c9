package decode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/withobsrvr/solana-event-stream/internal/eventmeta"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

func leString(s string) []byte {
	b := make([]byte, 4+len(s))
	binary.LittleEndian.PutUint32(b, uint32(len(s)))
	copy(b[4:], s)
	return b
}

// bonkPoolCreateLogBody builds a well-formed MintParams/CurveParams(Constant)
// /VestingParams payload, the same layout decodeBonkPoolCreateEventLog
// expects after its 16-byte discriminator prefix is stripped.
func bonkPoolCreateLogBody() []byte {
	var body []byte
	body = append(body, 9) // decimals
	body = append(body, leString("Bonk")...)
	body = append(body, leString("BONK")...)
	body = append(body, leString("https://example.test/bonk.json")...)
	body = append(body, 0) // curve tag: Constant
	body = append(body, le64(1_000_000)...)
	body = append(body, le64(800_000)...)
	body = append(body, le64(85)...)
	body = append(body, 1) // migrate_type
	body = append(body, le64(500_000)...)
	body = append(body, le64(0)...)
	body = append(body, le64(0)...)
	return body
}

func bonkTxContext(outerData []byte, innerData []byte) *events.TransactionUpdate {
	accounts := make([]events.Pubkey, 18)
	accounts[0] = solana.BonkProgramID
	for i := 1; i < 18; i++ {
		accounts[i] = events.Pubkey{byte(i)}
	}
	indices := make([]uint8, 18)
	for i := range indices {
		indices[i] = uint8(i)
	}
	return &events.TransactionUpdate{
		Signature: events.Signature{7, 7, 7},
		Slot:      42,
		Accounts:  accounts,
		Instructions: []events.InstructionView{
			{ProgramIDIndex: 0, AccountIndices: indices, Data: outerData},
		},
		InnerGroups: []events.InnerInstructionGroup{
			{
				OuterIndex: 0,
				Instructions: []events.InnerInstruction{
					{InstructionView: events.InstructionView{
						ProgramIDIndex: 0,
						AccountIndices: nil,
						Data:           innerData,
					}},
				},
			},
		},
	}
}

// TestBonkPoolCreateDecodesFromInnerLogNotInstructionData covers review item
// (b): Bonk's Initialize instruction carries no instruction-path decoder
// (decodeOne must silently decline it), and the pool-create event is instead
// produced by the inner event-log decoder, with account identity resolved
// from the owning outer instruction.
func TestBonkPoolCreateDecodesFromInnerLogNotInstructionData(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolBonk}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	outerData := append([]byte{}, bonkInitializeDisc...) // no body needed: no instruction decoder
	innerData := append(append([]byte{}, bonkPoolCreateEventLogDisc...), bonkPoolCreateLogBody()...)

	tx := bonkTxContext(outerData, innerData)

	var got []events.UnifiedEvent
	Transaction(tx, reg, pool, log, func(ev events.UnifiedEvent) {
		got = append(got, ev)
	})

	require.Len(t, got, 1, "only the inner-log decode should emit; the outer instruction path must decline")
	ev, ok := got[0].(*events.BonkPoolCreateEvent)
	require.True(t, ok)
	require.Equal(t, "Bonk", ev.Mint.Name)
	require.Equal(t, tx.Accounts[1], ev.Creator)
	require.Equal(t, tx.Accounts[5], ev.PoolState)
	require.Equal(t, tx.Accounts[6], ev.BaseMint)
	require.Equal(t, tx.Accounts[7], ev.QuoteMint)
	require.NotNil(t, ev.InnerIndex())
	require.Equal(t, int64(0), *ev.InnerIndex())
	require.Equal(t, int64(0), ev.OuterIndex())
}

// TestBonkTradeInnerLogDeclinesOnDirectionMismatch covers the trade-event
// cross-check: when the inner log's own direction tag disagrees with what
// the outer instruction's discriminator implied, the inner-log decoder
// declines rather than emitting inconsistent data.
func TestBonkTradeInnerLogDeclinesOnDirectionMismatch(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolBonk}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	var outerData []byte
	outerData = append(outerData, bonkBuyExactInDisc...)
	outerData = append(outerData, le64(1000)...) // amount_in
	outerData = append(outerData, le64(1)...)    // minimum_amount_out
	outerData = append(outerData, le64(0)...)    // share_fee_rate

	// Inner log tag says Sell (1), contradicting BuyExactIn's expected Buy.
	innerData := append(append([]byte{}, bonkTradeEventLogDisc...), 1)

	tx := bonkTxContext(outerData, innerData)

	var got []events.UnifiedEvent
	Transaction(tx, reg, pool, log, func(ev events.UnifiedEvent) {
		got = append(got, ev)
	})

	require.Len(t, got, 1, "only the instruction-path trade event should emit; the mismatched inner log must decline")
	trade, ok := got[0].(*events.BonkTradeEvent)
	require.True(t, ok)
	require.Equal(t, events.TradeDirectionBuy, trade.TradeDirection)
	require.Nil(t, trade.InnerIndex(), "the surviving event came from the outer instruction, not an inner one")
}

// TestBonkTradeInnerLogConfirmsMatchingDirection covers the matching case:
// both the instruction-path and inner-log-path events are emitted when the
// inner log's direction tag agrees with the outer instruction.
func TestBonkTradeInnerLogConfirmsMatchingDirection(t *testing.T) {
	reg := registry.Build([]events.Protocol{events.ProtocolBonk}, nil)
	pool := eventmeta.Default()
	log := zaptest.NewLogger(t)

	var outerData []byte
	outerData = append(outerData, bonkBuyExactInDisc...)
	outerData = append(outerData, le64(1000)...)
	outerData = append(outerData, le64(1)...)
	outerData = append(outerData, le64(0)...)

	innerData := append(append([]byte{}, bonkTradeEventLogDisc...), 0) // Buy, agrees

	tx := bonkTxContext(outerData, innerData)

	var got []events.UnifiedEvent
	Transaction(tx, reg, pool, log, func(ev events.UnifiedEvent) {
		got = append(got, ev)
	})

	require.Len(t, got, 2)
	var sawOuter, sawInner bool
	for _, ev := range got {
		trade, ok := ev.(*events.BonkTradeEvent)
		require.True(t, ok)
		require.Equal(t, events.TradeDirectionBuy, trade.TradeDirection)
		if trade.InnerIndex() == nil {
			sawOuter = true
		} else {
			sawInner = true
			require.Equal(t, int64(0), *trade.InnerIndex())
		}
	}
	require.True(t, sawOuter)
	require.True(t, sawInner)
}
