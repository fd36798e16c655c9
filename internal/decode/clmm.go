package decode

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// RaydiumClmm instruction discriminators, grounded on the account-index and
// byte-offset layouts in raydium_clmm/parser.rs (the raw discriminator
// bytes weren't retrieved into the pack; these follow the same Anchor
// convention used elsewhere).
var (
	clmmSwapDisc               = []byte{248, 198, 158, 145, 225, 117, 135, 200}
	clmmSwapV2Disc             = []byte{43, 4, 237, 11, 26, 201, 30, 98}
	clmmClosePositionDisc      = []byte{123, 134, 81, 0, 49, 68, 98, 98}
	clmmDecreaseLiquidityV2Disc = []byte{58, 127, 188, 62, 79, 82, 196, 96}
	clmmCreatePoolDisc         = []byte{233, 146, 209, 142, 207, 104, 64, 188}
	clmmIncreaseLiquidityV2Disc = []byte{133, 29, 89, 223, 69, 238, 176, 10}
	clmmOpenPositionV2Disc     = []byte{77, 184, 74, 214, 112, 86, 241, 199}

	clmmAmmConfigAccountDisc    = []byte{218, 244, 33, 104, 203, 203, 43, 111}
	clmmPoolStateAccountDisc    = []byte{247, 237, 227, 245, 215, 195, 222, 70}
	clmmTickArrayStateAccountDisc = []byte{192, 155, 85, 205, 49, 249, 129, 42}
)

func init() {
	registry.RegisterProtocol(events.ProtocolRaydiumClmm, clmmConfigs)
}

func clmmConfigs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	instr := []registry.InstructionConfig{
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmSwap, InstructionDiscriminator: clmmSwapDisc, InstructionDecoder: decodeClmmSwap(false)},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmSwapV2, InstructionDiscriminator: clmmSwapV2Disc, InstructionDecoder: decodeClmmSwap(true)},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmClosePosition, InstructionDiscriminator: clmmClosePositionDisc, InstructionDecoder: decodeClmmClosePosition},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmDecreaseLiquidityV2, InstructionDiscriminator: clmmDecreaseLiquidityV2Disc, InstructionDecoder: decodeClmmDecreaseLiquidityV2},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmCreatePool, InstructionDiscriminator: clmmCreatePoolDisc, InstructionDecoder: decodeClmmCreatePool},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmIncreaseLiquidityV2, InstructionDiscriminator: clmmIncreaseLiquidityV2Disc, InstructionDecoder: decodeClmmIncreaseLiquidityV2},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventRaydiumClmmOpenPositionV2, InstructionDiscriminator: clmmOpenPositionV2Disc, InstructionDecoder: decodeClmmOpenPositionV2},
	}

	accounts := []registry.AccountConfig{
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventAccountRaydiumClmmAmmConfig, Discriminator: clmmAmmConfigAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventAccountRaydiumClmmPoolState, Discriminator: clmmPoolStateAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.RaydiumClmmProgramID, Protocol: events.ProtocolRaydiumClmm, EventType: events.EventAccountRaydiumClmmTickArrayState, Discriminator: clmmTickArrayStateAccountDisc, Decoder: decodePoolAccount},
	}

	return instr, accounts
}

// decodeClmmSwap builds the Swap/SwapV2 decoder. V2 carries 3 extra
// trailing accounts and resolves both vault mints directly; V1 leaves them
// zero (unresolved), and the correlator resolves amounts only (see
// SPEC_FULL.md §4.4.1).
func decodeClmmSwap(isV2 bool) func([]byte, []events.Pubkey, events.Meta) (events.UnifiedEvent, bool) {
	minAccounts := 10
	if isV2 {
		minAccounts = 13
	}
	return func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
		if len(data) < 33 || len(accounts) < minAccounts {
			return nil, false
		}
		amount, ok1 := binary.U64LE(data, 0)
		threshold, ok2 := binary.U64LE(data, 8)
		lo, hi, ok3 := binary.U128LE(data, 16)
		isBaseInput, ok4 := binary.U8(data, 32)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, false
		}

		ev := &events.RaydiumClmmSwapEvent{
			Amount:               amount,
			OtherAmountThreshold: threshold,
			SqrtPriceLimitLo:     lo,
			SqrtPriceLimitHi:     hi,
			IsBaseInput:          isBaseInput == 1,
			IsV2:                 isV2,
			Payer:                accounts[0],
			PoolState:            accounts[2],
			InputTokenAccount:    accounts[3],
			OutputTokenAccount:   accounts[4],
			InputVault:           accounts[5],
			OutputVault:          accounts[6],
		}
		if isV2 {
			ev.InputVaultMint = accounts[11]
			ev.OutputVaultMint = accounts[12]
		}
		ev.Meta = meta
		return ev, true
	}
}

func decodeClmmClosePosition(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 6 {
		return nil, false
	}
	ev := &events.RaydiumClmmPositionEvent{
		Owner:    accounts[0],
		Position: accounts[3],
	}
	ev.Meta = meta
	return ev, true
}

func decodeClmmDecreaseLiquidityV2(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 32 || len(accounts) < 16 {
		return nil, false
	}
	lo, hi, ok := binary.U128LE(data, 0)
	if !ok {
		return nil, false
	}
	ev := &events.RaydiumClmmPositionEvent{
		LiquidityLo: lo,
		LiquidityHi: hi,
		Owner:       accounts[0],
		PoolState:   accounts[3],
		Position:    accounts[2],
	}
	ev.Meta = meta
	return ev, true
}

func decodeClmmCreatePool(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 24 || len(accounts) < 13 {
		return nil, false
	}
	ev := &events.RaydiumClmmCreatePoolEvent{
		PoolCreator: accounts[0],
		PoolState:   accounts[2],
		TokenMint0:  accounts[3],
		TokenMint1:  accounts[4],
	}
	ev.Meta = meta
	return ev, true
}

func decodeClmmIncreaseLiquidityV2(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 34 || len(accounts) < 15 {
		return nil, false
	}
	lo, hi, ok := binary.U128LE(data, 0)
	if !ok {
		return nil, false
	}
	ev := &events.RaydiumClmmPositionEvent{
		LiquidityLo: lo,
		LiquidityHi: hi,
		Owner:       accounts[0],
		PoolState:   accounts[2],
		Position:    accounts[4],
	}
	ev.Meta = meta
	return ev, true
}

func decodeClmmOpenPositionV2(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 51 || len(accounts) < 22 {
		return nil, false
	}
	lo, hi, ok := binary.U128LE(data, 16)
	if !ok {
		return nil, false
	}
	ev := &events.RaydiumClmmPositionEvent{
		LiquidityLo: lo,
		LiquidityHi: hi,
		Owner:       accounts[1],
		PoolState:   accounts[5],
		Position:    accounts[9],
	}
	ev.Meta = meta
	return ev, true
}
