package decode

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// Bonk instruction discriminators, grounded on bonk/parser.rs's
// discriminators:: table (the sha256("global:<name>") prefixes Anchor
// generates for each instruction name).
var (
	bonkBuyExactInDisc     = []byte{250, 234, 13, 123, 213, 156, 19, 236}
	bonkBuyExactOutDisc    = []byte{24, 211, 116, 40, 105, 3, 152, 98}
	bonkSellExactInDisc    = []byte{149, 39, 222, 155, 211, 124, 152, 26}
	bonkSellExactOutDisc   = []byte{95, 200, 71, 34, 8, 9, 11, 166}
	bonkInitializeDisc     = []byte{175, 175, 109, 31, 13, 152, 155, 237}
	bonkInitializeV2Disc   = []byte{67, 192, 239, 137, 186, 14, 24, 239}
	bonkMigrateToAmmDisc    = []byte{207, 82, 192, 187, 88, 214, 27, 141}
	bonkMigrateToCpswapDisc = []byte{236, 63, 152, 51, 20, 232, 71, 173}

	bonkPoolStateAccountDisc      = []byte{247, 237, 227, 245, 215, 195, 222, 70}
	bonkGlobalConfigAccountDisc   = []byte{149, 8, 156, 202, 160, 252, 176, 217}
	bonkPlatformConfigAccountDisc = []byte{103, 132, 142, 74, 78, 99, 44, 108}
	bonkVestingRecordAccountDisc  = []byte{214, 251, 151, 14, 178, 45, 143, 20}

	// anchorEventLogPrefix is the 8-byte tag Anchor's self-CPI event-log
	// convention (sha256("event:")[..8]) prepends ahead of every per-event
	// 8-byte discriminator, confirmed byte-identical across PumpFun's
	// CREATE_TOKEN_EVENT/TRADE_EVENT/COMPLETE_PUMP_AMM_MIGRATION_EVENT
	// constants (pumpfun/events.rs) — Bonk is an Anchor program and carries
	// the same prefix.
	anchorEventLogPrefix = []byte{228, 69, 165, 46, 81, 203, 154, 29}

	// bonkTradeEventLogDisc and bonkPoolCreateEventLogDisc are the 16-byte
	// inner-log discriminators (anchorEventLogPrefix plus an event-specific
	// suffix). bonk/events.rs and bonk/types.rs — which would give the
	// byte-exact suffixes — are absent from the retrieved reference pack
	// (only parser.rs/mod.rs were retrieved for Bonk); the suffixes below
	// are placeholders distinct from every other registered discriminator,
	// not ported values. See DESIGN.md.
	bonkTradeEventLogDisc      = append(append([]byte{}, anchorEventLogPrefix...), 0xB1, 0x7A, 0xDE, 0x01, 0x00, 0x00, 0x00, 0x01)
	bonkPoolCreateEventLogDisc = append(append([]byte{}, anchorEventLogPrefix...), 0xB1, 0x7A, 0xDE, 0x02, 0x00, 0x00, 0x00, 0x02)
)

func init() {
	registry.RegisterProtocol(events.ProtocolBonk, bonkConfigs)
}

func bonkConfigs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	instr := []registry.InstructionConfig{
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkBuyExactIn,
			InstructionDiscriminator: bonkBuyExactInDisc,
			InstructionDecoder:       decodeBonkTrade(events.TradeDirectionBuy),
			InnerLogDiscriminator:    bonkTradeEventLogDisc,
			InnerLogDecoder:          decodeBonkTradeEventLog(events.TradeDirectionBuy),
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkBuyExactOut,
			InstructionDiscriminator: bonkBuyExactOutDisc,
			InstructionDecoder:       decodeBonkTrade(events.TradeDirectionBuy),
			InnerLogDiscriminator:    bonkTradeEventLogDisc,
			InnerLogDecoder:          decodeBonkTradeEventLog(events.TradeDirectionBuy),
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkSellExactIn,
			InstructionDiscriminator: bonkSellExactInDisc,
			InstructionDecoder:       decodeBonkTrade(events.TradeDirectionSell),
			InnerLogDiscriminator:    bonkTradeEventLogDisc,
			InnerLogDecoder:          decodeBonkTradeEventLog(events.TradeDirectionSell),
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkSellExactOut,
			InstructionDiscriminator: bonkSellExactOutDisc,
			InstructionDecoder:       decodeBonkTrade(events.TradeDirectionSell),
			InnerLogDiscriminator:    bonkTradeEventLogDisc,
			InnerLogDecoder:          decodeBonkTradeEventLog(events.TradeDirectionSell),
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkInitialize,
			InstructionDiscriminator: bonkInitializeDisc,
			InnerLogDiscriminator:    bonkPoolCreateEventLogDisc,
			InnerLogDecoder:          decodeBonkPoolCreateEventLog(false),
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkInitializeV2,
			InstructionDiscriminator: bonkInitializeV2Disc,
			InnerLogDiscriminator:    bonkPoolCreateEventLogDisc,
			InnerLogDecoder:          decodeBonkPoolCreateEventLog(true),
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkMigrateToAmm,
			InstructionDiscriminator: bonkMigrateToAmmDisc,
			InstructionDecoder:       decodeBonkMigrateToAmm,
		},
		{
			ProgramID:                solana.BonkProgramID,
			Protocol:                 events.ProtocolBonk,
			EventType:                events.EventBonkMigrateToCpswap,
			InstructionDiscriminator: bonkMigrateToCpswapDisc,
			InstructionDecoder:       decodeBonkMigrateToCpswap,
		},
	}

	accounts := []registry.AccountConfig{
		{ProgramID: solana.BonkProgramID, Protocol: events.ProtocolBonk, EventType: events.EventAccountBonkPoolState, Discriminator: bonkPoolStateAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.BonkProgramID, Protocol: events.ProtocolBonk, EventType: events.EventAccountBonkGlobalConfig, Discriminator: bonkGlobalConfigAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.BonkProgramID, Protocol: events.ProtocolBonk, EventType: events.EventAccountBonkPlatformConfig, Discriminator: bonkPlatformConfigAccountDisc, Decoder: decodePoolAccount},
		{ProgramID: solana.BonkProgramID, Protocol: events.ProtocolBonk, EventType: events.EventAccountBonkVestingRecord, Discriminator: bonkVestingRecordAccountDisc, Decoder: decodePoolAccount},
	}

	return instr, accounts
}

// decodeBonkTrade builds the instruction-path decoder shared by all four
// trade instructions: amount_in/minimum_amount_out (ExactIn) or
// amount_out/maximum_amount_in (ExactOut), share_fee_rate, then the fixed
// 18-account mapping from bonk/parser.rs (accounts 1, 13, 14 are unused
// intermediate PDAs the source also skips).
func decodeBonkTrade(direction events.TradeDirection) func([]byte, []events.Pubkey, events.Meta) (events.UnifiedEvent, bool) {
	return func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
		if len(data) < 24 || len(accounts) < 18 {
			return nil, false
		}
		first, ok1 := binary.U64LE(data, 0)
		second, ok2 := binary.U64LE(data, 8)
		shareFeeRate, ok3 := binary.U64LE(data, 16)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}

		ev := &events.BonkTradeEvent{TradeDirection: direction, ShareFeeRate: shareFeeRate}
		switch meta.EventType {
		case events.EventBonkBuyExactIn, events.EventBonkSellExactIn:
			ev.AmountIn = first
			ev.MinimumAmountOut = second
		default:
			ev.AmountOut = first
			ev.MaximumAmountIn = second
		}
		ev.Meta = meta
		ev.Payer = accounts[0]
		ev.GlobalConfig = accounts[2]
		ev.PlatformConfig = accounts[3]
		ev.PoolState = accounts[4]
		ev.UserBaseToken = accounts[5]
		ev.UserQuoteToken = accounts[6]
		ev.BaseVault = accounts[7]
		ev.QuoteVault = accounts[8]
		ev.BaseTokenMint = accounts[9]
		ev.QuoteTokenMint = accounts[10]
		ev.BaseTokenProgram = accounts[11]
		ev.QuoteTokenProgram = accounts[12]
		ev.SystemProgram = accounts[15]
		ev.PlatformAssociatedAccount = accounts[16]
		ev.CreatorAssociatedAccount = accounts[17]
		return ev, true
	}
}

// decodeBonkTradeEventLog cross-checks the inner event log's own
// trade_direction tag against the direction the outer instruction's
// discriminator already implied (bonk/parser.rs's
// parse_trade_inner_instruction): BuyExactIn/BuyExactOut expect a Buy tag,
// SellExactIn/SellExactOut expect Sell; a mismatch declines the inner-log
// event entirely rather than emitting inconsistent data. The log's leading
// byte is the direction tag (0 = Buy, 1 = Sell); the remaining fields this
// decoder could carry (amounts, vault balances) aren't modeled since
// bonk/events.rs's exact log layout wasn't retrieved — see DESIGN.md.
func decodeBonkTradeEventLog(expected events.TradeDirection) func([]byte, []events.Pubkey, events.Meta) (events.UnifiedEvent, bool) {
	return func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
		tag, ok := binary.U8(data, 0)
		if !ok || len(accounts) < 18 {
			return nil, false
		}
		direction := events.TradeDirectionBuy
		if tag != 0 {
			direction = events.TradeDirectionSell
		}
		if direction != expected {
			return nil, false
		}

		ev := &events.BonkTradeEvent{TradeDirection: direction}
		ev.Meta = meta
		ev.Payer = accounts[0]
		ev.GlobalConfig = accounts[2]
		ev.PlatformConfig = accounts[3]
		ev.PoolState = accounts[4]
		ev.UserBaseToken = accounts[5]
		ev.UserQuoteToken = accounts[6]
		ev.BaseVault = accounts[7]
		ev.QuoteVault = accounts[8]
		ev.BaseTokenMint = accounts[9]
		ev.QuoteTokenMint = accounts[10]
		ev.BaseTokenProgram = accounts[11]
		ev.QuoteTokenProgram = accounts[12]
		ev.SystemProgram = accounts[15]
		ev.PlatformAssociatedAccount = accounts[16]
		ev.CreatorAssociatedAccount = accounts[17]
		return ev, true
	}
}

// decodeBonkPoolCreateEventLog parses the mint/curve/vesting parameter
// triplet for Initialize/InitializeV2 from the inner event log rather than
// the outer instruction's data (bonk/parser.rs's
// parse_pool_create_inner_instruction): Bonk's pool-create instructions
// encode their parameters into the self-CPI event log, not the outer
// instruction body, so this is the only decode path registered for these
// two event types (see bonkConfigs). Account identity (creator, mints, pool
// state) still comes from the owning outer instruction's account list, per
// parse_initialize_instruction's mapping. v2 additionally carries a
// trailing amm_fee_on byte.
func decodeBonkPoolCreateEventLog(v2 bool) func([]byte, []events.Pubkey, events.Meta) (events.UnifiedEvent, bool) {
	return func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
		if len(data) < 24 || len(accounts) < 10 {
			return nil, false
		}

		offset := 0
		mint, ok := parseBonkMintParams(data, &offset)
		if !ok {
			return nil, false
		}
		curve, ok := parseBonkCurveParams(data, &offset)
		if !ok {
			return nil, false
		}
		vesting, ok := parseBonkVestingParams(data, &offset)
		if !ok {
			return nil, false
		}

		ev := &events.BonkPoolCreateEvent{Mint: mint, Curve: curve, Vesting: vesting}
		if v2 {
			feeByte, ok := binary.U8(data, offset)
			if !ok {
				return nil, false
			}
			fee := events.AmmFeeOn(0)
			if feeByte != 0 {
				fee = events.AmmFeeOn(1)
			}
			ev.AmmFeeOn = &fee
		}

		ev.Meta = meta
		ev.Creator = accounts[1]
		ev.BaseMint = accounts[6]
		ev.QuoteMint = accounts[7]
		ev.PoolState = accounts[5]
		return ev, true
	}
}

func parseBonkMintParams(data []byte, offset *int) (events.MintParams, bool) {
	decimals, ok := binary.U8(data, *offset)
	if !ok {
		return events.MintParams{}, false
	}
	*offset++

	name, next, ok := binary.String(data, *offset)
	if !ok {
		return events.MintParams{}, false
	}
	*offset = next

	symbol, next, ok := binary.String(data, *offset)
	if !ok {
		return events.MintParams{}, false
	}
	*offset = next

	uri, next, ok := binary.String(data, *offset)
	if !ok {
		return events.MintParams{}, false
	}
	*offset = next

	return events.MintParams{Decimals: decimals, Name: name, Symbol: symbol, URI: uri}, true
}

func parseBonkCurveParams(data []byte, offset *int) (events.CurveParams, bool) {
	tag, ok := binary.U8(data, *offset)
	if !ok {
		return events.CurveParams{}, false
	}
	*offset++

	switch tag {
	case 0: // Constant
		supply, ok1 := binary.U64LE(data, *offset)
		totalBaseSell, ok2 := binary.U64LE(data, *offset+8)
		totalQuoteFundRaising, ok3 := binary.U64LE(data, *offset+16)
		migrateType, ok4 := binary.U8(data, *offset+24)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return events.CurveParams{}, false
		}
		*offset += 25
		return events.CurveParams{Shape: events.CurveShapeConstant, Constant: events.ConstantCurve{
			Supply: supply, TotalBaseSell: totalBaseSell, TotalQuoteFundRaising: totalQuoteFundRaising, MigrateType: migrateType,
		}}, true
	case 1: // Fixed
		supply, ok1 := binary.U64LE(data, *offset)
		totalQuoteFundRaising, ok2 := binary.U64LE(data, *offset+8)
		migrateType, ok3 := binary.U8(data, *offset+16)
		if !ok1 || !ok2 || !ok3 {
			return events.CurveParams{}, false
		}
		*offset += 17
		return events.CurveParams{Shape: events.CurveShapeFixed, Fixed: events.FixedCurve{
			Supply: supply, TotalQuoteFundRaising: totalQuoteFundRaising, MigrateType: migrateType,
		}}, true
	case 2: // Linear
		supply, ok1 := binary.U64LE(data, *offset)
		totalQuoteFundRaising, ok2 := binary.U64LE(data, *offset+8)
		migrateType, ok3 := binary.U8(data, *offset+16)
		if !ok1 || !ok2 || !ok3 {
			return events.CurveParams{}, false
		}
		*offset += 17
		return events.CurveParams{Shape: events.CurveShapeLinear, Linear: events.LinearCurve{
			Supply: supply, TotalQuoteFundRaising: totalQuoteFundRaising, MigrateType: migrateType,
		}}, true
	default:
		return events.CurveParams{}, false
	}
}

func parseBonkVestingParams(data []byte, offset *int) (events.VestingParams, bool) {
	total, ok1 := binary.U64LE(data, *offset)
	cliff, ok2 := binary.U64LE(data, *offset+8)
	unlock, ok3 := binary.U64LE(data, *offset+16)
	if !ok1 || !ok2 || !ok3 {
		return events.VestingParams{}, false
	}
	*offset += 24
	return events.VestingParams{TotalLockedAmount: total, CliffPeriod: cliff, UnlockPeriod: unlock}, true
}

// decodeBonkMigrateToAmm maps the 32-account OpenBook-market migration
// instruction down to the pool-identity fields our simplified event
// carries; base_lot_size/quote_lot_size/nonce aren't modeled (see DESIGN.md).
func decodeBonkMigrateToAmm(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 24 {
		return nil, false
	}
	ev := &events.BonkMigrateToAmmEvent{
		BaseMint:  accounts[1],
		QuoteMint: accounts[2],
		PoolState: accounts[23],
	}
	ev.Meta = meta
	return ev, true
}

// decodeBonkMigrateToCpswap carries no instruction data; every field comes
// from the fixed account layout.
func decodeBonkMigrateToCpswap(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 18 {
		return nil, false
	}
	ev := &events.BonkMigrateToCpswapEvent{
		BaseMint:  accounts[1],
		QuoteMint: accounts[2],
		PoolState: accounts[17],
	}
	ev.Meta = meta
	return ev, true
}
