// Package events defines the shared polymorphic event model: the
// UnifiedEvent interface, the concrete per-protocol event structs, and the
// transaction/account views decoders operate over.
package events

import "time"

// Discriminator is an opaque fixed-length byte prefix identifying an
// instruction or account shape. Two instructions sharing a discriminator
// under different program-ids are distinct routes.
type Discriminator []byte

// Pubkey is a fixed-width 32-byte on-chain identifier.
type Pubkey [32]byte

// Signature is a 64-byte transaction identifier.
type Signature [64]byte

// Protocol tags the six supported on-chain program families plus the
// cross-protocol "common" bucket (token/nonce/block-meta decoders that are
// not owned by any single protocol).
type Protocol int

const (
	ProtocolCommon Protocol = iota
	ProtocolPumpFun
	ProtocolPumpSwap
	ProtocolBonk
	ProtocolRaydiumCpmm
	ProtocolRaydiumClmm
	ProtocolRaydiumAmmV4
)

func (p Protocol) String() string {
	switch p {
	case ProtocolPumpFun:
		return "PumpFun"
	case ProtocolPumpSwap:
		return "PumpSwap"
	case ProtocolBonk:
		return "Bonk"
	case ProtocolRaydiumCpmm:
		return "RaydiumCpmm"
	case ProtocolRaydiumClmm:
		return "RaydiumClmm"
	case ProtocolRaydiumAmmV4:
		return "RaydiumAmmV4"
	default:
		return "Common"
	}
}

// EventType enumerates every concrete event variant the decoders can emit.
type EventType int

const (
	EventUnknown EventType = iota

	EventPumpFunCreateToken
	EventPumpFunBuy
	EventPumpFunSell
	EventPumpFunMigrate

	EventPumpSwapBuy
	EventPumpSwapSell
	EventPumpSwapCreatePool
	EventPumpSwapDeposit
	EventPumpSwapWithdraw

	EventBonkBuyExactIn
	EventBonkBuyExactOut
	EventBonkSellExactIn
	EventBonkSellExactOut
	EventBonkInitialize
	EventBonkInitializeV2
	EventBonkMigrateToAmm
	EventBonkMigrateToCpswap

	EventRaydiumCpmmSwapBaseInput
	EventRaydiumCpmmSwapBaseOutput
	EventRaydiumCpmmDeposit
	EventRaydiumCpmmInitialize
	EventRaydiumCpmmWithdraw

	EventRaydiumClmmSwap
	EventRaydiumClmmSwapV2
	EventRaydiumClmmClosePosition
	EventRaydiumClmmIncreaseLiquidityV2
	EventRaydiumClmmDecreaseLiquidityV2
	EventRaydiumClmmCreatePool
	EventRaydiumClmmOpenPositionV2

	EventRaydiumAmmV4SwapBaseIn
	EventRaydiumAmmV4SwapBaseOut
	EventRaydiumAmmV4Deposit
	EventRaydiumAmmV4Initialize2
	EventRaydiumAmmV4Withdraw
	EventRaydiumAmmV4WithdrawPnl

	// Account-update (snapshot) event types.
	EventAccountRaydiumAmmV4AmmInfo
	EventAccountPumpSwapGlobalConfig
	EventAccountPumpSwapPool
	EventAccountBonkPoolState
	EventAccountBonkGlobalConfig
	EventAccountBonkPlatformConfig
	EventAccountBonkVestingRecord
	EventAccountPumpFunBondingCurve
	EventAccountPumpFunGlobal
	EventAccountRaydiumClmmAmmConfig
	EventAccountRaydiumClmmPoolState
	EventAccountRaydiumClmmTickArrayState
	EventAccountRaydiumCpmmAmmConfig
	EventAccountRaydiumCpmmPoolState
	EventAccountNonce
	EventAccountTokenAccount
	EventAccountTokenMint

	EventBlockMeta
)

// IsAccountEvent reports whether t is one of the account-snapshot variants.
func (t EventType) IsAccountEvent() bool {
	return t >= EventAccountRaydiumAmmV4AmmInfo && t <= EventAccountTokenMint
}

// IsBlockEvent reports whether t is the block-meta variant.
func (t EventType) IsBlockEvent() bool {
	return t == EventBlockMeta
}

// SwapData is the resolved (from-mint, to-mint, from-amount, to-amount) pair
// attached to a swap-shaped event by the correlator (internal/correlate),
// which takes the mints from the fields the decoder filled in.
type SwapData struct {
	FromMint    Pubkey
	ToMint      Pubkey
	FromAmount  uint64
	ToAmount    uint64
	Description string
}

// IsZero reports whether no side of the swap has been resolved yet.
func (s SwapData) IsZero() bool {
	return s == SwapData{}
}

// Meta carries the attributes common to every decoded event: identity,
// timing, classification, and (once resolved) swap amounts. Concrete event
// structs embed Meta and the UnifiedEvent interface methods delegate to it,
// the Go analogue of the source's trait-object downcast pattern.
type Meta struct {
	Signature        Signature
	Slot             uint64
	TransactionIndex *uint64
	BlockTime        *time.Time
	BlockTimeMS      int64
	RecvUS           int64
	HandleUS         int64
	Protocol         Protocol
	EventType        EventType
	ProgramID        Pubkey
	Swap             *SwapData
	OuterIndex       int64
	InnerIndex       *int64

	// IsDevCreateTokenTrade and IsBot are populated by the trader-address
	// tagging pass (internal/traderstate) for trade-shaped events; they are
	// mutually exclusive (see SPEC_FULL.md, SUPPLEMENTED FEATURES).
	IsDevCreateTokenTrade bool
	IsBot                 bool
}

// Recycle clears fields that must not leak into the next use of a pooled
// Meta value (internal/eventmeta), while leaving the zero-valued struct
// otherwise ready for reuse.
func (m *Meta) Recycle() {
	*m = Meta{}
}

// UnifiedEvent is implemented by every concrete decoded event. It is the Go
// realization of the source's polymorphic trait-object: callers recover a
// concrete type with a type switch instead of a downcast.
type UnifiedEvent interface {
	EventType() EventType
	Protocol() Protocol
	Signature() Signature
	Slot() uint64
	TransactionIndex() *uint64
	OuterIndex() int64
	InnerIndex() *int64
	RecvUS() int64
	HandleUS() int64
	SetHandleUS(us int64)
	SwapData() *SwapData
	SetSwapData(sd SwapData)
	MetaPtr() *Meta
}

// metaEvent is embedded by every concrete event struct to satisfy
// UnifiedEvent without repeating the boilerplate per variant.
type metaEvent struct {
	Meta
}

func (e *metaEvent) EventType() EventType          { return e.Meta.EventType }
func (e *metaEvent) Protocol() Protocol             { return e.Meta.Protocol }
func (e *metaEvent) Signature() Signature           { return e.Meta.Signature }
func (e *metaEvent) Slot() uint64                   { return e.Meta.Slot }
func (e *metaEvent) TransactionIndex() *uint64       { return e.Meta.TransactionIndex }
func (e *metaEvent) OuterIndex() int64              { return e.Meta.OuterIndex }
func (e *metaEvent) InnerIndex() *int64             { return e.Meta.InnerIndex }
func (e *metaEvent) RecvUS() int64                  { return e.Meta.RecvUS }
func (e *metaEvent) HandleUS() int64                { return e.Meta.HandleUS }
func (e *metaEvent) SetHandleUS(us int64)           { e.Meta.HandleUS = us }
func (e *metaEvent) SwapData() *SwapData            { return e.Meta.Swap }
func (e *metaEvent) SetSwapData(sd SwapData)        { e.Meta.Swap = &sd }
func (e *metaEvent) MetaPtr() *Meta                 { return &e.Meta }

// InstructionView is the borrowed (program-id-index, account indices, raw
// data) tuple describing one instruction for the lifetime of a decode call.
type InstructionView struct {
	ProgramIDIndex uint8
	AccountIndices []uint8
	Data           []byte
}

// InnerInstruction is one sibling instruction inside an inner-instruction
// group, sharing InstructionView's shape.
type InnerInstruction struct {
	InstructionView
}

// InnerInstructionGroup is all inner instructions executed by one outer
// instruction, keyed by that instruction's outer index in TransactionContext.
type InnerInstructionGroup struct {
	OuterIndex   int64
	Instructions []InnerInstruction
}

// TransactionContext is immutable for the duration of a decode call: the
// resolved account-key vector and inner-instruction groups for one
// transaction, plus identity/timing shared by every event it produces.
type TransactionContext struct {
	Signature        Signature
	Slot             uint64
	BlockTime        *time.Time
	TransactionIndex *uint64
	RecvUS           int64

	// Accounts is static keys, then loaded-writable keys, then
	// loaded-readonly keys, per spec.md §6's account reference layout.
	Accounts []Pubkey

	InnerGroups []InnerInstructionGroup
}

// InnerGroupFor returns the inner-instruction group for outerIndex, or nil
// if the outer instruction had no inner instructions.
func (tc *TransactionContext) InnerGroupFor(outerIndex int64) *InnerInstructionGroup {
	for i := range tc.InnerGroups {
		if tc.InnerGroups[i].OuterIndex == outerIndex {
			return &tc.InnerGroups[i]
		}
	}
	return nil
}

// AccountUpdate carries one account-state update from the ingest side.
type AccountUpdate struct {
	Slot             uint64
	CausingSignature *Signature
	Pubkey           Pubkey
	Owner            Pubkey
	Lamports         uint64
	RentEpoch        uint64
	Executable       bool
	Data             []byte
	RecvUS           int64
}

// TransactionUpdate carries one raw transaction update from the ingest side.
type TransactionUpdate struct {
	Slot             uint64
	TransactionIndex *uint64
	Signature        Signature
	Accounts         []Pubkey
	Instructions     []InstructionView
	InnerGroups      []InnerInstructionGroup
	BlockTime        *time.Time
	RecvUS           int64
}
