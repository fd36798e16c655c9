package traderstate

import (
	"testing"

	"github.com/withobsrvr/solana-event-stream/internal/events"
)

func TestApplyTagsDevCreateTokenTrade(t *testing.T) {
	tr := New()
	creator := events.Pubkey{7}
	botWallet := events.Pubkey{9}

	create := &events.PumpFunCreateTokenEvent{Creator: creator}
	create.Meta.Slot = 42
	Apply(tr, create, botWallet)

	trade := &events.PumpFunTradeEvent{User: creator}
	trade.Meta.Slot = 43
	Apply(tr, trade, botWallet)

	if !trade.Meta.IsDevCreateTokenTrade {
		t.Fatal("expected trade by the token's creator to be tagged is_dev_create_token_trade")
	}
	if trade.Meta.IsBot {
		t.Fatal("expected is_bot cleared when is_dev_create_token_trade is set")
	}
}

func TestApplyTagsBotWalletWhenNotCreator(t *testing.T) {
	tr := New()
	botWallet := events.Pubkey{9}

	trade := &events.PumpSwapBuyEvent{User: botWallet}
	Apply(tr, trade, botWallet)

	if !trade.Meta.IsBot {
		t.Fatal("expected trade by the configured bot wallet to be tagged is_bot")
	}
	if trade.Meta.IsDevCreateTokenTrade {
		t.Fatal("expected is_dev_create_token_trade cleared for bot-wallet trades")
	}
}

func TestApplyClearsBothFlagsForOrdinaryTrade(t *testing.T) {
	tr := New()
	botWallet := events.Pubkey{9}

	trade := &events.PumpSwapSellEvent{User: events.Pubkey{1, 2, 3}}
	Apply(tr, trade, botWallet)

	if trade.Meta.IsDevCreateTokenTrade || trade.Meta.IsBot {
		t.Fatal("expected both flags cleared for an untagged ordinary trade")
	}
}

func TestApplyUsesSeparateBonkCreatorSet(t *testing.T) {
	tr := New()
	creator := events.Pubkey{7}
	botWallet := events.Pubkey{9}

	// A regular (PumpFun) creator registration must not leak into the
	// Bonk-specific creator check used for Bonk trade tagging.
	create := &events.PumpFunCreateTokenEvent{Creator: creator}
	Apply(tr, create, botWallet)

	bonkTrade := &events.BonkTradeEvent{Payer: creator}
	Apply(tr, bonkTrade, botWallet)

	if bonkTrade.Meta.IsDevCreateTokenTrade {
		t.Fatal("expected Bonk trade tagging to consult the Bonk creator set, not the regular one")
	}
}
