package traderstate

import "github.com/withobsrvr/solana-event-stream/internal/events"

// Apply runs the §4.11 post-decode tagging pass for one event: token-create
// and fair-launch pool-create events register their creator into tr, and
// trade-shaped events look themselves up against the retained slots to set
// IsDevCreateTokenTrade, or against botWallet to set IsBot. The two flags
// are mutually exclusive, matching traits.rs's process_event (see
// SPEC_FULL.md, SUPPLEMENTED FEATURES).
func Apply(tr *Tracker, ev events.UnifiedEvent, botWallet events.Pubkey) {
	switch e := ev.(type) {
	case *events.PumpFunCreateTokenEvent:
		tr.AddCreator(e.Slot(), e.Creator)
	case *events.BonkPoolCreateEvent:
		tr.AddBonkCreator(e.Slot(), e.Creator)
	case *events.PumpFunTradeEvent:
		tagTrade(tr, e.MetaPtr(), e.User, botWallet, false)
	case *events.PumpSwapBuyEvent:
		tagTrade(tr, e.MetaPtr(), e.User, botWallet, false)
	case *events.PumpSwapSellEvent:
		tagTrade(tr, e.MetaPtr(), e.User, botWallet, false)
	case *events.BonkTradeEvent:
		tagTrade(tr, e.MetaPtr(), e.Payer, botWallet, true)
	}
}

func tagTrade(tr *Tracker, m *events.Meta, user, botWallet events.Pubkey, bonk bool) {
	isCreator := tr.IsCreator(user)
	if bonk {
		isCreator = tr.IsBonkCreator(user)
	}

	switch {
	case isCreator:
		m.IsDevCreateTokenTrade = true
		m.IsBot = false
	case user == botWallet:
		m.IsDevCreateTokenTrade = false
		m.IsBot = true
	default:
		m.IsDevCreateTokenTrade = false
		m.IsBot = false
	}
}
