package decode

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// RaydiumAmmV4 instruction discriminators, grounded on
// raydium_amm_v4/parser.rs's account-index layout. Unlike the Anchor-based
// protocols, the legacy AMM V4 program tags each instruction with a single
// u8 enum variant rather than an 8-byte hash prefix; the registry's
// discriminator matching works on an arbitrary-length byte prefix, so a
// single-byte discriminator is all that's needed here.
var (
	ammV4SwapBaseInDisc  = []byte{9}
	ammV4SwapBaseOutDisc = []byte{11}
	ammV4DepositDisc     = []byte{3}
	ammV4Initialize2Disc = []byte{1}
	ammV4WithdrawDisc    = []byte{4}
	ammV4WithdrawPnlDisc = []byte{7}

	ammV4AmmInfoAccountDisc = []byte{217, 62, 200, 96, 23, 58, 32, 126}
)

func init() {
	registry.RegisterProtocol(events.ProtocolRaydiumAmmV4, ammV4Configs)
}

func ammV4Configs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	instr := []registry.InstructionConfig{
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventRaydiumAmmV4SwapBaseIn, InstructionDiscriminator: ammV4SwapBaseInDisc, InstructionDecoder: decodeAmmV4Swap(true)},
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventRaydiumAmmV4SwapBaseOut, InstructionDiscriminator: ammV4SwapBaseOutDisc, InstructionDecoder: decodeAmmV4Swap(false)},
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventRaydiumAmmV4Deposit, InstructionDiscriminator: ammV4DepositDisc, InstructionDecoder: decodeAmmV4Deposit},
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventRaydiumAmmV4Initialize2, InstructionDiscriminator: ammV4Initialize2Disc, InstructionDecoder: decodeAmmV4Initialize2},
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventRaydiumAmmV4Withdraw, InstructionDiscriminator: ammV4WithdrawDisc, InstructionDecoder: decodeAmmV4Withdraw},
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventRaydiumAmmV4WithdrawPnl, InstructionDiscriminator: ammV4WithdrawPnlDisc, InstructionDecoder: decodeAmmV4WithdrawPnl},
	}

	accounts := []registry.AccountConfig{
		{ProgramID: solana.RaydiumAmmV4ProgramID, Protocol: events.ProtocolRaydiumAmmV4, EventType: events.EventAccountRaydiumAmmV4AmmInfo, Discriminator: ammV4AmmInfoAccountDisc, Decoder: decodePoolAccount},
	}

	return instr, accounts
}

// decodeAmmV4Swap handles both SwapBaseIn and SwapBaseOut. Some callers omit
// the optional amm_target_orders account, shrinking the account list from
// 18 to 17; when that happens a zero pubkey is inserted at index 4 so the
// remaining fixed offsets still line up, mirroring parser.rs's
// accounts.insert(4, Pubkey::default()) patch.
func decodeAmmV4Swap(isBaseIn bool) func([]byte, []events.Pubkey, events.Meta) (events.UnifiedEvent, bool) {
	return func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
		if len(data) < 16 || len(accounts) < 17 {
			return nil, false
		}
		first, ok1 := binary.U64LE(data, 0)
		second, ok2 := binary.U64LE(data, 8)
		if !ok1 || !ok2 {
			return nil, false
		}

		if len(accounts) == 17 {
			patched := make([]events.Pubkey, 0, 18)
			patched = append(patched, accounts[:4]...)
			patched = append(patched, events.Pubkey{})
			patched = append(patched, accounts[4:]...)
			accounts = patched
		}
		if len(accounts) < 18 {
			return nil, false
		}

		ev := &events.RaydiumAmmV4SwapEvent{
			IsBaseIn:                    isBaseIn,
			UserSourceTokenAccount:      accounts[15],
			UserDestinationTokenAccount: accounts[16],
			PoolCoinTokenAccount:        accounts[5],
			PoolPcTokenAccount:          accounts[6],
			Amm:                         accounts[1],
		}
		ev.AmountIn = first
		ev.AmountOut = second
		ev.Meta = meta
		return ev, true
	}
}

func decodeAmmV4Deposit(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 24 || len(accounts) < 14 {
		return nil, false
	}
	maxCoin, ok1 := binary.U64LE(data, 0)
	maxPc, ok2 := binary.U64LE(data, 8)
	baseSide, ok3 := binary.U64LE(data, 16)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	ev := &events.RaydiumAmmV4LiquidityEvent{
		MaxCoinAmount: maxCoin,
		MaxPcAmount:   maxPc,
		BaseSide:      baseSide,
		Amm:           accounts[1],
		User:          accounts[12],
	}
	ev.Meta = meta
	return ev, true
}

// decodeAmmV4Initialize2 has no dedicated event struct (the distillation
// dropped the nonce/open_time/init_pc_amount/init_coin_amount fields); it's
// carried as a liquidity event recording only the pool and the funding
// wallet, matching the level of detail kept for the other simplified pool
// lifecycle events.
func decodeAmmV4Initialize2(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 25 || len(accounts) < 21 {
		return nil, false
	}
	ev := &events.RaydiumAmmV4LiquidityEvent{
		Amm:  accounts[4],
		User: accounts[17],
	}
	ev.Meta = meta
	return ev, true
}

func decodeAmmV4Withdraw(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(data) < 8 || len(accounts) < 22 {
		return nil, false
	}
	amount, ok := binary.U64LE(data, 0)
	if !ok {
		return nil, false
	}
	ev := &events.RaydiumAmmV4LiquidityEvent{
		MaxCoinAmount: amount,
		Amm:           accounts[1],
		User:          accounts[18],
	}
	ev.Meta = meta
	return ev, true
}

func decodeAmmV4WithdrawPnl(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 17 {
		return nil, false
	}
	ev := &events.RaydiumAmmV4LiquidityEvent{
		Amm:  accounts[1],
		User: accounts[9],
	}
	ev.Meta = meta
	return ev, true
}
