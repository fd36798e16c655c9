package decode

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// Anchor instruction discriminators are the first 8 bytes of
// sha256("global:<instruction_name>"); grounded on
// raydium_cpmm/parser.rs's discriminators:: table.
var (
	cpmmSwapBaseInputDisc  = []byte{143, 190, 90, 218, 196, 30, 51, 222}
	cpmmSwapBaseOutputDisc = []byte{55, 217, 98, 86, 163, 74, 180, 173}
	cpmmDepositDisc        = []byte{242, 35, 198, 137, 82, 225, 242, 182}
	cpmmWithdrawDisc       = []byte{183, 18, 70, 156, 148, 109, 161, 34}
	cpmmInitializeDisc     = []byte{175, 175, 109, 31, 13, 152, 155, 237}

	// Account discriminators are the first 8 bytes of
	// sha256("account:<AccountName>").
	cpmmAmmConfigAccountDisc = []byte{218, 244, 33, 104, 203, 203, 43, 111}
	cpmmPoolStateAccountDisc = []byte{247, 237, 227, 245, 215, 195, 222, 70}
)

func init() {
	registry.RegisterProtocol(events.ProtocolRaydiumCpmm, cpmmConfigs)
}

func cpmmConfigs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	return []registry.InstructionConfig{
		{
			ProgramID:                solana.RaydiumCpmmProgramID,
			Protocol:                 events.ProtocolRaydiumCpmm,
			EventType:                events.EventRaydiumCpmmSwapBaseInput,
			InstructionDiscriminator: cpmmSwapBaseInputDisc,
			InstructionDecoder:       decodeCpmmSwapBaseInput,
		},
		{
			ProgramID:                solana.RaydiumCpmmProgramID,
			Protocol:                 events.ProtocolRaydiumCpmm,
			EventType:                events.EventRaydiumCpmmSwapBaseOutput,
			InstructionDiscriminator: cpmmSwapBaseOutputDisc,
			InstructionDecoder:       decodeCpmmSwapBaseOutput,
		},
		{
			ProgramID:                solana.RaydiumCpmmProgramID,
			Protocol:                 events.ProtocolRaydiumCpmm,
			EventType:                events.EventRaydiumCpmmDeposit,
			InstructionDiscriminator: cpmmDepositDisc,
			InstructionDecoder:       decodeCpmmDeposit,
		},
		{
			ProgramID:                solana.RaydiumCpmmProgramID,
			Protocol:                 events.ProtocolRaydiumCpmm,
			EventType:                events.EventRaydiumCpmmWithdraw,
			InstructionDiscriminator: cpmmWithdrawDisc,
			InstructionDecoder:       decodeCpmmWithdraw,
		},
		{
			ProgramID:                solana.RaydiumCpmmProgramID,
			Protocol:                 events.ProtocolRaydiumCpmm,
			EventType:                events.EventRaydiumCpmmInitialize,
			InstructionDiscriminator: cpmmInitializeDisc,
			InstructionDecoder:       decodeCpmmInitialize,
		},
	}, cpmmAccountConfigs()
}

// cpmmAccountConfigs lists the two anchor-tagged snapshot accounts RaydiumCpmm
// exposes: the per-market fee configuration and the per-pool state blob.
// Both decode through the shared generic PoolAccountEvent shape (accounts.go)
// since nothing downstream needs their fields unpacked field-by-field.
func cpmmAccountConfigs() []registry.AccountConfig {
	return []registry.AccountConfig{
		{
			ProgramID:     solana.RaydiumCpmmProgramID,
			Protocol:      events.ProtocolRaydiumCpmm,
			EventType:     events.EventAccountRaydiumCpmmAmmConfig,
			Discriminator: cpmmAmmConfigAccountDisc,
			Decoder:       decodePoolAccount,
		},
		{
			ProgramID:     solana.RaydiumCpmmProgramID,
			Protocol:      events.ProtocolRaydiumCpmm,
			EventType:     events.EventAccountRaydiumCpmmPoolState,
			Discriminator: cpmmPoolStateAccountDisc,
			Decoder:       decodePoolAccount,
		},
	}
}

// cpmmSwapAccounts is the 13-account mapping shared by SwapBaseInput and
// SwapBaseOutput.
func cpmmSwapAccounts(ev *events.RaydiumCpmmSwapEvent, a []events.Pubkey) bool {
	if len(a) < 13 {
		return false
	}
	ev.Payer = a[0]
	ev.Authority = a[1]
	ev.AmmConfig = a[2]
	ev.PoolState = a[3]
	ev.InputTokenAccount = a[4]
	ev.OutputTokenAccount = a[5]
	ev.InputVault = a[6]
	ev.OutputVault = a[7]
	ev.InputTokenProgram = a[8]
	ev.OutputTokenProgram = a[9]
	ev.InputTokenMint = a[10]
	ev.OutputTokenMint = a[11]
	ev.ObservationState = a[12]
	return true
}

func decodeCpmmSwapBaseInput(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	amountIn, ok1 := binary.U64LE(data, 0)
	minOut, ok2 := binary.U64LE(data, 8)
	if !ok1 || !ok2 {
		return nil, false
	}
	ev := &events.RaydiumCpmmSwapEvent{AmountIn: amountIn, MinimumAmountOut: minOut}
	ev.Meta = meta
	if !cpmmSwapAccounts(ev, accounts) {
		return nil, false
	}
	return ev, true
}

func decodeCpmmSwapBaseOutput(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	maxIn, ok1 := binary.U64LE(data, 0)
	amountOut, ok2 := binary.U64LE(data, 8)
	if !ok1 || !ok2 {
		return nil, false
	}
	ev := &events.RaydiumCpmmSwapEvent{MaxAmountIn: maxIn, AmountOut: amountOut}
	ev.Meta = meta
	if !cpmmSwapAccounts(ev, accounts) {
		return nil, false
	}
	return ev, true
}

func decodeCpmmDeposit(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 13 {
		return nil, false
	}
	lpAmount, ok1 := binary.U64LE(data, 0)
	max0, ok2 := binary.U64LE(data, 8)
	max1, ok3 := binary.U64LE(data, 16)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	ev := &events.RaydiumCpmmDepositEvent{
		LpTokenAmount:       lpAmount,
		MaximumToken0Amount: max0,
		MaximumToken1Amount: max1,
	}
	ev.Meta = meta
	ev.Owner = accounts[0]
	ev.Authority = accounts[1]
	ev.PoolState = accounts[2]
	ev.OwnerLpToken = accounts[3]
	ev.Token0Account = accounts[4]
	ev.Token1Account = accounts[5]
	ev.Token0Vault = accounts[6]
	ev.Token1Vault = accounts[7]
	ev.TokenProgram = accounts[8]
	ev.TokenProgram2022 = accounts[9]
	ev.Vault0Mint = accounts[10]
	ev.Vault1Mint = accounts[11]
	ev.LpMint = accounts[12]
	return ev, true
}

func decodeCpmmWithdraw(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 14 {
		return nil, false
	}
	lpAmount, ok1 := binary.U64LE(data, 0)
	min0, ok2 := binary.U64LE(data, 8)
	min1, ok3 := binary.U64LE(data, 16)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	ev := &events.RaydiumCpmmWithdrawEvent{
		LpTokenAmount:       lpAmount,
		MinimumToken0Amount: min0,
		MinimumToken1Amount: min1,
	}
	ev.Meta = meta
	ev.Owner = accounts[0]
	ev.Authority = accounts[1]
	ev.PoolState = accounts[2]
	ev.OwnerLpToken = accounts[3]
	ev.Token0Account = accounts[4]
	ev.Token1Account = accounts[5]
	ev.Token0Vault = accounts[6]
	ev.Token1Vault = accounts[7]
	ev.TokenProgram = accounts[8]
	ev.TokenProgram2022 = accounts[9]
	ev.Vault0Mint = accounts[10]
	ev.Vault1Mint = accounts[11]
	ev.LpMint = accounts[12]
	ev.MemoProgram = accounts[13]
	return ev, true
}

func decodeCpmmInitialize(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool) {
	if len(accounts) < 20 {
		return nil, false
	}
	init0, ok1 := binary.U64LE(data, 0)
	init1, ok2 := binary.U64LE(data, 8)
	openTime, ok3 := binary.U64LE(data, 16)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	ev := &events.RaydiumCpmmInitializeEvent{
		InitAmount0: init0,
		InitAmount1: init1,
		OpenTime:    openTime,
	}
	ev.Meta = meta
	ev.Creator = accounts[0]
	ev.AmmConfig = accounts[1]
	ev.Authority = accounts[2]
	ev.PoolState = accounts[3]
	ev.Token0Mint = accounts[4]
	ev.Token1Mint = accounts[5]
	ev.LpMint = accounts[6]
	ev.CreatorToken0 = accounts[7]
	ev.CreatorToken1 = accounts[8]
	ev.CreatorLpToken = accounts[9]
	ev.Token0Vault = accounts[10]
	ev.Token1Vault = accounts[11]
	ev.CreatePoolFee = accounts[12]
	ev.ObservationState = accounts[13]
	ev.TokenProgram = accounts[14]
	ev.Token0Program = accounts[15]
	ev.Token1Program = accounts[16]
	ev.AssociatedTokenProgram = accounts[17]
	ev.SystemProgram = accounts[18]
	ev.Rent = accounts[19]
	return ev, true
}
