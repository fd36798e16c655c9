package events

// Concrete event variants. Each embeds metaEvent for the UnifiedEvent
// interface and carries the protocol-specific fields its decoder fills in.
// Field layouts are grounded per-protocol in DESIGN.md / SPEC_FULL.md §4.4.1.

// --- RaydiumCpmm (constant-product AMM) ---

// RaydiumCpmmSwapEvent covers both SwapBaseInput and SwapBaseOutput
// instructions; only one of (AmountIn, MinimumAmountOut) or (MaxAmountIn,
// AmountOut) is populated depending on which discriminator routed here.
type RaydiumCpmmSwapEvent struct {
	metaEvent

	AmountIn           uint64
	MinimumAmountOut   uint64
	MaxAmountIn        uint64
	AmountOut          uint64

	Payer             Pubkey
	Authority         Pubkey
	AmmConfig         Pubkey
	PoolState         Pubkey
	InputTokenAccount Pubkey
	OutputTokenAccount Pubkey
	InputVault        Pubkey
	OutputVault       Pubkey
	InputTokenProgram Pubkey
	OutputTokenProgram Pubkey
	InputTokenMint    Pubkey
	OutputTokenMint   Pubkey
	ObservationState  Pubkey
}

type RaydiumCpmmDepositEvent struct {
	metaEvent

	LpTokenAmount        uint64
	MaximumToken0Amount  uint64
	MaximumToken1Amount  uint64

	Owner           Pubkey
	Authority       Pubkey
	PoolState       Pubkey
	OwnerLpToken    Pubkey
	Token0Account   Pubkey
	Token1Account   Pubkey
	Token0Vault     Pubkey
	Token1Vault     Pubkey
	TokenProgram    Pubkey
	TokenProgram2022 Pubkey
	Vault0Mint      Pubkey
	Vault1Mint      Pubkey
	LpMint          Pubkey
}

type RaydiumCpmmWithdrawEvent struct {
	metaEvent

	LpTokenAmount       uint64
	MinimumToken0Amount uint64
	MinimumToken1Amount uint64

	Owner            Pubkey
	Authority        Pubkey
	PoolState        Pubkey
	OwnerLpToken     Pubkey
	Token0Account    Pubkey
	Token1Account    Pubkey
	Token0Vault      Pubkey
	Token1Vault      Pubkey
	TokenProgram     Pubkey
	TokenProgram2022 Pubkey
	Vault0Mint       Pubkey
	Vault1Mint       Pubkey
	LpMint           Pubkey
	MemoProgram      Pubkey
}

type RaydiumCpmmInitializeEvent struct {
	metaEvent

	InitAmount0 uint64
	InitAmount1 uint64
	OpenTime    uint64

	Creator                 Pubkey
	AmmConfig               Pubkey
	Authority               Pubkey
	PoolState               Pubkey
	Token0Mint              Pubkey
	Token1Mint              Pubkey
	LpMint                  Pubkey
	CreatorToken0           Pubkey
	CreatorToken1           Pubkey
	CreatorLpToken          Pubkey
	Token0Vault             Pubkey
	Token1Vault             Pubkey
	CreatePoolFee           Pubkey
	ObservationState        Pubkey
	TokenProgram            Pubkey
	Token0Program           Pubkey
	Token1Program           Pubkey
	AssociatedTokenProgram  Pubkey
	SystemProgram           Pubkey
	Rent                    Pubkey
}

// --- Bonk (fair-launch venue) ---

type TradeDirection int

const (
	TradeDirectionBuy TradeDirection = iota
	TradeDirectionSell
)

type BonkTradeEvent struct {
	metaEvent

	AmountIn         uint64
	MinimumAmountOut uint64
	AmountOut        uint64
	MaximumAmountIn  uint64
	ShareFeeRate     uint64
	TradeDirection   TradeDirection

	Payer                    Pubkey
	GlobalConfig             Pubkey
	PlatformConfig           Pubkey
	PoolState                Pubkey
	UserBaseToken            Pubkey
	UserQuoteToken           Pubkey
	BaseVault                Pubkey
	QuoteVault               Pubkey
	BaseTokenMint            Pubkey
	QuoteTokenMint           Pubkey
	BaseTokenProgram         Pubkey
	QuoteTokenProgram        Pubkey
	SystemProgram            Pubkey
	PlatformAssociatedAccount Pubkey
	CreatorAssociatedAccount Pubkey
}

// CurveShape tags which of the three curve parameterizations CurveParams
// carries.
type CurveShape int

const (
	CurveShapeConstant CurveShape = iota
	CurveShapeFixed
	CurveShapeLinear
)

type ConstantCurve struct {
	Supply       uint64
	TotalBaseSell uint64
	TotalQuoteFundRaising uint64
	MigrateType  uint8
}

type FixedCurve struct {
	Supply               uint64
	TotalQuoteFundRaising uint64
	MigrateType          uint8
}

type LinearCurve struct {
	Supply               uint64
	TotalQuoteFundRaising uint64
	MigrateType          uint8
}

type CurveParams struct {
	Shape    CurveShape
	Constant ConstantCurve
	Fixed    FixedCurve
	Linear   LinearCurve
}

type MintParams struct {
	Decimals uint8
	Name     string
	Symbol   string
	URI      string
}

type VestingParams struct {
	TotalLockedAmount uint64
	CliffPeriod       uint64
	UnlockPeriod      uint64
}

// AmmFeeOn is the V2-only trailing fee-placement flag.
type AmmFeeOn uint8

type BonkPoolCreateEvent struct {
	metaEvent

	Mint    MintParams
	Curve   CurveParams
	Vesting VestingParams
	AmmFeeOn *AmmFeeOn

	Creator   Pubkey
	BaseMint  Pubkey
	QuoteMint Pubkey
	PoolState Pubkey
}

type BonkMigrateToAmmEvent struct {
	metaEvent

	PoolState Pubkey
	BaseMint  Pubkey
	QuoteMint Pubkey
}

type BonkMigrateToCpswapEvent struct {
	metaEvent

	PoolState Pubkey
	BaseMint  Pubkey
	QuoteMint Pubkey
}

// --- PumpFun (trade-venue A) ---

type PumpFunCreateTokenEvent struct {
	metaEvent

	Name   string
	Symbol string
	URI    string

	Mint     Pubkey
	Creator  Pubkey
	BondingCurve Pubkey
}

type PumpFunTradeEvent struct {
	metaEvent

	Amount           uint64
	Threshold        uint64 // max-cost (buy) or min-output (sell) depending on side
	IsBuy            bool

	User         Pubkey
	Mint         Pubkey
	BondingCurve Pubkey
}

type PumpFunMigrateEvent struct {
	metaEvent

	Mint         Pubkey
	BondingCurve Pubkey
}

// --- PumpSwap (trade-venue B) ---

type PumpSwapBuyEvent struct {
	metaEvent

	BaseAmountOut  uint64
	MaxQuoteAmountIn uint64

	User      Pubkey
	Pool      Pubkey
	BaseMint  Pubkey
	QuoteMint Pubkey
}

type PumpSwapSellEvent struct {
	metaEvent

	BaseAmountIn       uint64
	MinQuoteAmountOut  uint64

	User      Pubkey
	Pool      Pubkey
	BaseMint  Pubkey
	QuoteMint Pubkey
}

type PumpSwapCreatePoolEvent struct {
	metaEvent

	Creator   Pubkey
	Pool      Pubkey
	BaseMint  Pubkey
	QuoteMint Pubkey
}

type PumpSwapDepositEvent struct {
	metaEvent

	LpTokenAmount uint64

	User Pubkey
	Pool Pubkey
}

type PumpSwapWithdrawEvent struct {
	metaEvent

	LpTokenAmount uint64

	User Pubkey
	Pool Pubkey
}

// --- RaydiumClmm (concentrated-AMM) ---

type RaydiumClmmSwapEvent struct {
	metaEvent

	Amount               uint64
	OtherAmountThreshold uint64
	SqrtPriceLimitLo     uint64
	SqrtPriceLimitHi     uint64
	IsBaseInput          bool
	IsV2                 bool

	Payer              Pubkey
	PoolState          Pubkey
	InputTokenAccount  Pubkey
	OutputTokenAccount Pubkey
	InputVault         Pubkey
	OutputVault        Pubkey
	// InputVaultMint/OutputVaultMint are only populated for the V2
	// instruction variant; the V1 Swap instruction leaves mints
	// unresolved (see SPEC_FULL.md §4.4.1).
	InputVaultMint  Pubkey
	OutputVaultMint Pubkey
}

type RaydiumClmmCreatePoolEvent struct {
	metaEvent

	PoolCreator Pubkey
	PoolState   Pubkey
	TokenMint0  Pubkey
	TokenMint1  Pubkey
}

type RaydiumClmmPositionEvent struct {
	metaEvent

	LiquidityLo uint64
	LiquidityHi uint64

	Owner     Pubkey
	PoolState Pubkey
	Position  Pubkey
}

// --- RaydiumAmmV4 ---

type RaydiumAmmV4SwapEvent struct {
	metaEvent

	AmountIn  uint64
	AmountOut uint64
	IsBaseIn  bool

	UserSourceTokenAccount      Pubkey
	UserDestinationTokenAccount Pubkey
	PoolCoinTokenAccount        Pubkey
	PoolPcTokenAccount          Pubkey
	Amm                         Pubkey
}

type RaydiumAmmV4LiquidityEvent struct {
	metaEvent

	MaxCoinAmount uint64
	MaxPcAmount   uint64
	BaseSide      uint64

	Amm   Pubkey
	User  Pubkey
}

// --- Account snapshot events (C6) ---

type TokenAccountEvent struct {
	metaEvent

	Pubkey     Pubkey
	Executable bool
	Lamports   uint64
	Owner      Pubkey
	RentEpoch  uint64
	Amount     *uint64
	TokenOwner Pubkey
	Mint       Pubkey
}

type TokenMintEvent struct {
	metaEvent

	Pubkey     Pubkey
	Executable bool
	Lamports   uint64
	Owner      Pubkey
	RentEpoch  uint64
	Supply     uint64
	Decimals   uint8
}

type NonceAccountEvent struct {
	metaEvent

	Pubkey     Pubkey
	Executable bool
	Lamports   uint64
	Owner      Pubkey
	RentEpoch  uint64
	Nonce      string
	Authority  Pubkey
}

// PoolAccountEvent is a generic anchor-style "8-byte tag + packed struct"
// snapshot used for pool-state, AMM-config, tick-array, bonding-curve,
// global-config, platform-config, and vesting-record accounts across all
// six protocols — they share the same decode shape (tag, then raw payload)
// and differ only in EventType and which fixed fields callers expect.
type PoolAccountEvent struct {
	metaEvent

	Pubkey   Pubkey
	Owner    Pubkey
	Lamports uint64
	Raw      []byte
}

type BlockMetaEvent struct {
	metaEvent

	ParentSlot uint64
	BlockHash  [32]byte
}
