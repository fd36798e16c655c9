package decode

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// PumpSwap discriminators, grounded on pumpswap/parser.rs's account-index
// mapping (discriminators::X symbolic references weren't retrieved with
// their byte values; these follow the same Anchor global: convention as
// the other five protocols).
var (
	pumpswapBuyIxDisc        = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	pumpswapSellIxDisc       = []byte{51, 230, 133, 164, 1, 127, 131, 173}
	pumpswapCreatePoolIxDisc = []byte{233, 146, 209, 142, 207, 104, 64, 188}
	pumpswapDepositIxDisc    = []byte{242, 35, 198, 137, 82, 225, 242, 182}
	pumpswapWithdrawIxDisc   = []byte{183, 18, 70, 156, 148, 109, 161, 34}

	pumpswapGlobalConfigAccountDisc = []byte{149, 8, 156, 202, 160, 252, 176, 217}
	pumpswapPoolAccountDisc         = []byte{241, 154, 109, 4, 17, 177, 109, 188}
)

func init() {
	registry.RegisterProtocol(events.ProtocolPumpSwap, pumpswapConfigs)
}

func pumpswapConfigs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	instr := []registry.InstructionConfig{
		{
			ProgramID:                solana.PumpSwapProgramID,
			Protocol:                 events.ProtocolPumpSwap,
			EventType:                events.EventPumpSwapBuy,
			InstructionDiscriminator: pumpswapBuyIxDisc,
			InstructionDecoder:       decodePumpSwapBuy,
		},
		{
			ProgramID:                solana.PumpSwapProgramID,
			Protocol:                 events.ProtocolPumpSwap,
			EventType:                events.EventPumpSwapSell,
			InstructionDiscriminator: pumpswapSellIxDisc,
			InstructionDecoder:       decodePumpSwapSell,
		},
		{
			ProgramID:                solana.PumpSwapProgramID,
			Protocol:                 events.ProtocolPumpSwap,
			EventType:                events.EventPumpSwapCreatePool,
			InstructionDiscriminator: pumpswapCreatePoolIxDisc,
			InstructionDecoder:       decodePumpSwapCreatePool,
		},
		{
			ProgramID:                solana.PumpSwapProgramID,
			Protocol:                 events.ProtocolPumpSwap,
			EventType:                events.EventPumpSwapDeposit,
			InstructionDiscriminator: pumpswapDepositIxDisc,
			InstructionDecoder:       decodePumpSwapDeposit,
		},
		{
			ProgramID:                solana.PumpSwapProgramID,
			Protocol:                 events.ProtocolPumpSwap,
			EventType:                events.EventPumpSwapWithdraw,
			InstructionDiscriminator: pumpswapWithdrawIxDisc,
			InstructionDecoder:       decodePumpSwapWithdraw,
		},
	}

	accounts := []registry.AccountConfig{
		{ProgramID: solana.PumpSwapProgramID, Protocol: events.ProtocolPumpSwap, EventType: events.EventAccountPumpSwapGlobalConfig, Discriminator: pumpswapGlobalConfigAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.PumpSwapProgramID, Protocol: events.ProtocolPumpSwap, EventType: events.EventAccountPumpSwapPool, Discriminator: pumpswapPoolAccountDisc, Decoder: decodePoolAccount},
	}

	return instr, accounts
}

func decodePumpSwapBuy(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 16 || len(accounts) < 5 {
		return nil, false
	}
	baseOut, ok1 := binary.U64LE(data, 0)
	maxQuoteIn, ok2 := binary.U64LE(data, 8)
	if !ok1 || !ok2 {
		return nil, false
	}
	ev := &events.PumpSwapBuyEvent{
		BaseAmountOut:    baseOut,
		MaxQuoteAmountIn: maxQuoteIn,
		Pool:             accounts[0],
		User:             accounts[1],
		BaseMint:         accounts[3],
		QuoteMint:        accounts[4],
	}
	ev.Meta = meta
	return ev, true
}

func decodePumpSwapSell(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 16 || len(accounts) < 5 {
		return nil, false
	}
	baseIn, ok1 := binary.U64LE(data, 0)
	minQuoteOut, ok2 := binary.U64LE(data, 8)
	if !ok1 || !ok2 {
		return nil, false
	}
	ev := &events.PumpSwapSellEvent{
		BaseAmountIn:      baseIn,
		MinQuoteAmountOut: minQuoteOut,
		Pool:              accounts[0],
		User:              accounts[1],
		BaseMint:          accounts[3],
		QuoteMint:         accounts[4],
	}
	ev.Meta = meta
	return ev, true
}

func decodePumpSwapCreatePool(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 18 || len(accounts) < 5 {
		return nil, false
	}
	ev := &events.PumpSwapCreatePoolEvent{
		Pool:      accounts[0],
		Creator:   accounts[2],
		BaseMint:  accounts[3],
		QuoteMint: accounts[4],
	}
	ev.Meta = meta
	return ev, true
}

func decodePumpSwapDeposit(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 24 || len(accounts) < 3 {
		return nil, false
	}
	lpOut, ok := binary.U64LE(data, 0)
	if !ok {
		return nil, false
	}
	ev := &events.PumpSwapDepositEvent{
		LpTokenAmount: lpOut,
		Pool:          accounts[0],
		User:          accounts[2],
	}
	ev.Meta = meta
	return ev, true
}

func decodePumpSwapWithdraw(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 24 || len(accounts) < 3 {
		return nil, false
	}
	lpIn, ok := binary.U64LE(data, 0)
	if !ok {
		return nil, false
	}
	ev := &events.PumpSwapWithdrawEvent{
		LpTokenAmount: lpIn,
		Pool:          accounts[0],
		User:          accounts[2],
	}
	ev.Meta = meta
	return ev, true
}
