// Package correlate implements the inner-instruction correlator (C5): it
// walks the sibling inner instructions following a swap-shaped event's
// originating instruction and reconstructs the swap's resolved input/output
// amounts from the underlying token transfers. Mints are carried over from
// the decoded event as the decoder resolved them; a mint the decoder left
// unresolved stays zero.
package correlate

import (
	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

const (
	opcodeTransferChecked = 12
	opcodeTransfer        = 3
	opcodeTransferOther   = 2
)

// Participants is the canonical (user wallet/vault, mint) pairing for each
// side of a swap, extracted from the concrete decoded event. See
// SPEC_FULL.md §4.5's correlator participant table for the per-protocol
// grounding of each case below.
type Participants struct {
	UserFromToken events.Pubkey
	FromVault     events.Pubkey
	FromMint      events.Pubkey // zero if the decoder left it unresolved

	UserToToken events.Pubkey
	ToVault     events.Pubkey
	ToMint      events.Pubkey
}

func participantsFor(ev events.UnifiedEvent) (Participants, bool) {
	switch e := ev.(type) {
	case *events.RaydiumCpmmSwapEvent:
		return Participants{
			UserFromToken: e.InputTokenAccount, FromVault: e.InputVault, FromMint: e.InputTokenMint,
			UserToToken: e.OutputTokenAccount, ToVault: e.OutputVault, ToMint: e.OutputTokenMint,
		}, true

	case *events.BonkTradeEvent:
		if e.TradeDirection == events.TradeDirectionSell {
			return Participants{
				UserFromToken: e.UserBaseToken, FromVault: e.BaseVault, FromMint: e.BaseTokenMint,
				UserToToken: e.UserQuoteToken, ToVault: e.QuoteVault, ToMint: e.QuoteTokenMint,
			}, true
		}
		return Participants{
			UserFromToken: e.UserQuoteToken, FromVault: e.QuoteVault, FromMint: e.QuoteTokenMint,
			UserToToken: e.UserBaseToken, ToVault: e.BaseVault, ToMint: e.BaseTokenMint,
		}, true

	case *events.RaydiumClmmSwapEvent:
		p := Participants{
			UserFromToken: e.InputTokenAccount, FromVault: e.InputVault,
			UserToToken: e.OutputTokenAccount, ToVault: e.OutputVault,
		}
		if e.IsV2 {
			p.FromMint = e.InputVaultMint
			p.ToMint = e.OutputVaultMint
		}
		return p, true

	case *events.RaydiumAmmV4SwapEvent:
		return Participants{
			UserFromToken: e.UserSourceTokenAccount, FromVault: e.PoolCoinTokenAccount,
			UserToToken: e.UserDestinationTokenAccount, ToVault: e.PoolPcTokenAccount,
		}, true

	case *events.PumpFunTradeEvent:
		// PumpFun has no vault accounts on the instruction; the bonding
		// curve doubles as both sides' counterparty so the six-pairing
		// matcher below can still resolve amounts. No mints are set for
		// PumpFun, so its swap data carries amounts only.
		return Participants{
			UserFromToken: e.User, FromVault: e.BondingCurve,
			UserToToken: e.User, ToVault: e.BondingCurve,
		}, true

	case *events.PumpSwapBuyEvent:
		return Participants{
			UserFromToken: e.User, FromVault: e.Pool, FromMint: e.QuoteMint,
			UserToToken: e.User, ToVault: e.Pool, ToMint: e.BaseMint,
		}, true

	case *events.PumpSwapSellEvent:
		return Participants{
			UserFromToken: e.User, FromVault: e.Pool, FromMint: e.BaseMint,
			UserToToken: e.User, ToVault: e.Pool, ToMint: e.QuoteMint,
		}, true

	default:
		return Participants{}, false
	}
}

type transfer struct {
	source, destination events.Pubkey
	amount               uint64
}

func decodeTransfer(inner events.InstructionView, accounts []events.Pubkey) (transfer, bool) {
	data := inner.Data
	if len(data) == 0 {
		return transfer{}, false
	}

	resolve := func(i int) (events.Pubkey, bool) {
		if i < 0 || i >= len(inner.AccountIndices) {
			return events.Pubkey{}, false
		}
		idx := int(inner.AccountIndices[i])
		if idx < 0 || idx >= len(accounts) {
			return events.Pubkey{}, false
		}
		return accounts[idx], true
	}

	switch data[0] {
	case opcodeTransferChecked:
		if len(inner.AccountIndices) < 4 {
			return transfer{}, false
		}
		amt, ok := binary.U64LE(data, 1)
		if !ok {
			return transfer{}, false
		}
		src, sok := resolve(0)
		dst, dok := resolve(2)
		if !sok || !dok {
			return transfer{}, false
		}
		return transfer{source: src, destination: dst, amount: amt}, true

	case opcodeTransfer:
		if len(inner.AccountIndices) < 3 {
			return transfer{}, false
		}
		amt, ok := binary.U64LE(data, 1)
		if !ok {
			return transfer{}, false
		}
		src, sok := resolve(0)
		dst, dok := resolve(1)
		if !sok || !dok {
			return transfer{}, false
		}
		return transfer{source: src, destination: dst, amount: amt}, true

	case opcodeTransferOther:
		if len(inner.AccountIndices) < 2 {
			return transfer{}, false
		}
		amt, ok := binary.U64LE(data, 4)
		if !ok {
			return transfer{}, false
		}
		src, sok := resolve(0)
		dst, dok := resolve(1)
		if !sok || !dok {
			return transfer{}, false
		}
		return transfer{source: src, destination: dst, amount: amt}, true

	default:
		return transfer{}, false
	}
}

// match tries t against the six canonical (user/vault) pairings, in the
// priority order spec §4.5 step 4 calls for: a straight pairing (user-side
// token account moving into or out of its own-side vault) before a
// crossed pairing (the transfer is routed through the opposite side's
// vault).
func match(t transfer, p Participants, sd *events.SwapData) bool {
	switch {
	case t.source == p.UserFromToken && t.destination == p.FromVault:
		sd.FromAmount = t.amount
		if p.FromMint != (events.Pubkey{}) {
			sd.FromMint = p.FromMint
		}
		return true
	case t.source == p.ToVault && t.destination == p.UserToToken:
		sd.ToAmount = t.amount
		if p.ToMint != (events.Pubkey{}) {
			sd.ToMint = p.ToMint
		}
		return true
	case t.source == p.FromVault && t.destination == p.UserFromToken:
		sd.FromAmount = t.amount
		if p.FromMint != (events.Pubkey{}) {
			sd.FromMint = p.FromMint
		}
		return true
	case t.source == p.UserToToken && t.destination == p.ToVault:
		sd.ToAmount = t.amount
		if p.ToMint != (events.Pubkey{}) {
			sd.ToMint = p.ToMint
		}
		return true
	case t.source == p.UserFromToken && t.destination == p.ToVault:
		sd.FromAmount = t.amount
		if p.FromMint != (events.Pubkey{}) {
			sd.FromMint = p.FromMint
		}
		return true
	case t.source == p.FromVault && t.destination == p.UserToToken:
		sd.ToAmount = t.amount
		if p.ToMint != (events.Pubkey{}) {
			sd.ToMint = p.ToMint
		}
		return true
	default:
		return false
	}
}

// programIDFor resolves the program-id of a sibling inner instruction given
// the transaction's resolved account vector.
func programIDFor(view events.InstructionView, accounts []events.Pubkey) (events.Pubkey, bool) {
	idx := int(view.ProgramIDIndex)
	if idx < 0 || idx >= len(accounts) {
		return events.Pubkey{}, false
	}
	return accounts[idx], true
}

// Resolve runs the correlator against ev if it is swap-shaped and its swap
// data is not already fully populated. txCtx.Accounts is the resolved
// transaction-wide account vector; outerIndex is the originating
// instruction's index within the transaction.
func Resolve(ev events.UnifiedEvent, txCtx *events.TransactionContext, outerIndex int64) {
	meta := ev.MetaPtr()
	if meta.Swap != nil && !meta.Swap.IsZero() {
		return
	}

	participants, ok := participantsFor(ev)
	if !ok {
		return
	}

	group := txCtx.InnerGroupFor(outerIndex)
	if group == nil {
		return
	}

	sd := events.SwapData{FromMint: participants.FromMint, ToMint: participants.ToMint}

	for _, inner := range group.Instructions {
		programID, ok := programIDFor(inner.InstructionView, txCtx.Accounts)
		if !ok || !solana.IsSystemProgram(programID) {
			break // §4.5 step 2: stop at the first non-system-program instruction
		}

		t, ok := decodeTransfer(inner.InstructionView, txCtx.Accounts)
		if !ok {
			continue
		}
		match(t, participants, &sd)

		if sd.FromAmount != 0 && sd.ToAmount != 0 {
			break
		}
		if sd.FromMint != (events.Pubkey{}) && sd.ToMint != (events.Pubkey{}) {
			break
		}
	}

	if sd.FromAmount != 0 || sd.ToAmount != 0 {
		ev.SetSwapData(sd)
	}
}
