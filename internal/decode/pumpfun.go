package decode

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// PumpFun discriminators, grounded on pumpfun/events.rs's discriminators
// module (byte-exact).
var (
	pumpfunCreateTokenIxDisc = []byte{24, 30, 200, 40, 5, 28, 7, 119}
	pumpfunBuyIxDisc         = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	pumpfunSellIxDisc        = []byte{51, 230, 133, 164, 1, 127, 131, 173}
	pumpfunMigrateIxDisc     = []byte{155, 234, 231, 146, 236, 158, 162, 30}

	pumpfunBondingCurveAccountDisc = []byte{23, 183, 248, 55, 96, 216, 172, 96}
	pumpfunGlobalAccountDisc       = []byte{167, 232, 232, 177, 200, 108, 114, 127}
)

func init() {
	registry.RegisterProtocol(events.ProtocolPumpFun, pumpfunConfigs)
}

func pumpfunConfigs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	instr := []registry.InstructionConfig{
		{
			ProgramID:                solana.PumpFunProgramID,
			Protocol:                 events.ProtocolPumpFun,
			EventType:                events.EventPumpFunCreateToken,
			InstructionDiscriminator: pumpfunCreateTokenIxDisc,
			InstructionDecoder:       decodePumpFunCreateToken,
		},
		{
			ProgramID:                solana.PumpFunProgramID,
			Protocol:                 events.ProtocolPumpFun,
			EventType:                events.EventPumpFunBuy,
			InstructionDiscriminator: pumpfunBuyIxDisc,
			InstructionDecoder:       decodePumpFunTrade(true),
		},
		{
			ProgramID:                solana.PumpFunProgramID,
			Protocol:                 events.ProtocolPumpFun,
			EventType:                events.EventPumpFunSell,
			InstructionDiscriminator: pumpfunSellIxDisc,
			InstructionDecoder:       decodePumpFunTrade(false),
		},
		{
			ProgramID:                solana.PumpFunProgramID,
			Protocol:                 events.ProtocolPumpFun,
			EventType:                events.EventPumpFunMigrate,
			InstructionDiscriminator: pumpfunMigrateIxDisc,
			InstructionDecoder:       decodePumpFunMigrate,
		},
	}

	accounts := []registry.AccountConfig{
		{ProgramID: solana.PumpFunProgramID, Protocol: events.ProtocolPumpFun, EventType: events.EventAccountPumpFunBondingCurve, Discriminator: pumpfunBondingCurveAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.PumpFunProgramID, Protocol: events.ProtocolPumpFun, EventType: events.EventAccountPumpFunGlobal, Discriminator: pumpfunGlobalAccountDisc, Decoder: decodePoolAccount},
	}

	return instr, accounts
}

// decodePumpFunCreateToken reads the name/symbol/uri Borsh string triplet
// followed by the creator pubkey (absent on stale clients — the source
// defaults it to the zero pubkey, which is already our zero value).
func decodePumpFunCreateToken(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 16 || len(accounts) < 8 {
		return nil, false
	}

	offset := 0
	name, next, ok := binary.String(data, offset)
	if !ok {
		return nil, false
	}
	offset = next

	symbol, next, ok := binary.String(data, offset)
	if !ok {
		return nil, false
	}
	offset = next

	uri, next, ok := binary.String(data, offset)
	if !ok {
		return nil, false
	}
	offset = next

	var creator events.Pubkey
	if offset+32 <= len(data) {
		copy(creator[:], data[offset:offset+32])
	}

	ev := &events.PumpFunCreateTokenEvent{
		Name: name, Symbol: symbol, URI: uri, Creator: creator,
		Mint:         accounts[0],
		BondingCurve: accounts[2],
	}
	ev.Meta = meta
	return ev, true
}

// decodePumpFunTrade reads the (amount, threshold) pair shared by buy/sell:
// buy encodes (amount, max_sol_cost), sell encodes (amount, min_sol_output).
// Buy and sell place bonding_curve/mint at the same account indices but
// differ after index 7 (token_program vs creator_vault swap), which is
// irrelevant here since neither field is modeled.
func decodePumpFunTrade(isBuy bool) func([]byte, []events.Pubkey, events.Meta) (events.UnifiedEvent, bool) {
	return func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
		if len(data) < 16 || len(accounts) < 7 {
			return nil, false
		}
		amount, ok1 := binary.U64LE(data, 0)
		threshold, ok2 := binary.U64LE(data, 8)
		if !ok1 || !ok2 {
			return nil, false
		}

		ev := &events.PumpFunTradeEvent{
			Amount:    amount,
			Threshold: threshold,
			IsBuy:     isBuy,
			Mint:      accounts[2],
			BondingCurve: accounts[3],
			User:      accounts[6],
		}
		ev.Meta = meta
		return ev, true
	}
}

// decodePumpFunMigrate carries no meaningful instruction data; every field
// comes from the fixed account layout.
func decodePumpFunMigrate(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 6 {
		return nil, false
	}
	ev := &events.PumpFunMigrateEvent{
		Mint:         accounts[2],
		BondingCurve: accounts[3],
	}
	ev.Meta = meta
	return ev, true
}
