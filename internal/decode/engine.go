// Package decode implements the instruction decoder engine (C4) and
// account-update decoder (C6): given a registry.Registry assembled for the
// active protocol/filter set, it resolves the program-id, enumerates
// discriminator-matching configs, decodes, correlates (internal/correlate),
// and invokes the caller's callback.
//
// The six per-protocol decoder files (cpmm.go, bonk.go, pumpfun.go,
// pumpswap.go, clmm.go, ammv4.go) each register their configs with
// internal/registry from an init(), mirroring the source's static
// EVENT_PARSERS map assembly.
package decode

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/withobsrvr/solana-event-stream/internal/correlate"
	"github.com/withobsrvr/solana-event-stream/internal/eventmeta"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
)

// Callback receives each decoded event as it is produced.
type Callback func(events.UnifiedEvent)

// Instruction decodes one outer instruction against reg, invoking cb for
// every event materialized. Implements §4.4's algorithm: resolve
// program-id, enumerate discriminator matches, validate account indices
// (dropping the instruction silently if any is out of range), decode,
// correlate, invoke callback. A decoder panic is isolated per-config so one
// misbehaving decoder cannot take down the others or the caller.
func Instruction(view events.InstructionView, outerIndex int64, txCtx *events.TransactionContext, reg *registry.Registry, pool *eventmeta.Pool, log *zap.Logger, cb Callback) {
	if int(view.ProgramIDIndex) >= len(txCtx.Accounts) {
		return
	}
	programID := txCtx.Accounts[view.ProgramIDIndex]

	matches := reg.Lookup(programID, view.Data)
	if len(matches) == 0 {
		return
	}

	accounts, ok := resolveAccounts(view.AccountIndices, txCtx.Accounts)
	if !ok {
		if log != nil {
			log.Debug("dropping instruction: account index out of range", zap.Int64("outer_index", outerIndex))
		}
		return
	}

	base := buildBaseMeta(pool, txCtx, outerIndex)

	var errs error
	for _, cfg := range matches {
		errs = multierr.Append(errs, decodeOne(cfg, view.Data, accounts, base, txCtx, outerIndex, cb))
	}
	if errs != nil && log != nil {
		log.Warn("decoder invocation errors", zap.Int64("outer_index", outerIndex), zap.Error(errs))
	}
}

// buildBaseMeta draws a scratch events.Meta from pool to assemble the
// per-instruction template shared by every matching config, then returns it
// to the pool immediately — each matched config below copies it by value,
// so the pooled value is free to be recycled the moment the template is
// built (§4.2's "contention-free fast path" single-producer pattern).
func buildBaseMeta(pool *eventmeta.Pool, txCtx *events.TransactionContext, outerIndex int64) events.Meta {
	m := pool.Acquire()
	*m = events.Meta{
		Signature:        txCtx.Signature,
		Slot:             txCtx.Slot,
		TransactionIndex: txCtx.TransactionIndex,
		BlockTime:        txCtx.BlockTime,
		RecvUS:           txCtx.RecvUS,
		OuterIndex:       outerIndex,
	}
	base := *m
	pool.Release(m)
	return base
}

// decodeOne invokes one config's decoder, isolating a panic as a returned
// error rather than a crash (§4.4's "decoder panic must not crash the
// pipeline"); decodeOne never re-panics, and its caller aggregates every
// config's outcome with multierr so one bad decoder doesn't hide another's
// failure.
func decodeOne(cfg registry.InstructionConfig, data []byte, accounts []events.Pubkey, base events.Meta, txCtx *events.TransactionContext, outerIndex int64, cb Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic (protocol=%s): %v", cfg.Protocol, r)
		}
	}()

	if cfg.InstructionDecoder == nil {
		return nil
	}
	if len(data) < len(cfg.InstructionDiscriminator) {
		return nil
	}
	body := data[len(cfg.InstructionDiscriminator):]

	m := base
	m.Protocol = cfg.Protocol
	m.EventType = cfg.EventType
	m.ProgramID = cfg.ProgramID

	ev, ok := cfg.InstructionDecoder(body, accounts, m)
	if !ok {
		return nil
	}

	correlate.Resolve(ev, txCtx, outerIndex)
	cb(ev)
	return nil
}

// InnerLog decodes an inner-instruction event-log payload emitted by an
// instruction that encodes events after the fact (Bonk's pool-create and
// trade-shaped instructions), rather than reading the outer instruction's
// own data. cfg.InnerLogDiscriminator and cfg.InnerLogDecoder must both be
// set. accounts is the OWNING outer instruction's resolved account list;
// base must already carry the outer instruction's identity fields plus
// InnerIndex set to this inner instruction's position within its group, so
// that every event this function emits satisfies invariant (a) (inner_index
// is set iff the event came from an inner instruction).
func InnerLog(cfg registry.InstructionConfig, data []byte, base events.Meta, accounts []events.Pubkey, txCtx *events.TransactionContext, outerIndex int64, log *zap.Logger, cb Callback) {
	if cfg.InnerLogDecoder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if log != nil {
				log.Warn("inner-log decoder panic recovered", zap.Any("recover", r))
			}
		}
	}()

	if len(data) < len(cfg.InnerLogDiscriminator) {
		return
	}
	body := data[len(cfg.InnerLogDiscriminator):]

	m := base
	m.Protocol = cfg.Protocol
	m.EventType = cfg.EventType
	m.ProgramID = cfg.ProgramID

	ev, ok := cfg.InnerLogDecoder(body, accounts, m)
	if !ok {
		return
	}

	correlate.Resolve(ev, txCtx, outerIndex)
	cb(ev)
}

func resolveAccounts(indices []uint8, all []events.Pubkey) ([]events.Pubkey, bool) {
	out := make([]events.Pubkey, len(indices))
	for i, idx := range indices {
		if int(idx) >= len(all) {
			return nil, false
		}
		out[i] = all[idx]
	}
	return out, true
}

// Account decodes one account update against reg's flat account-config
// list, per §4.6's algorithm: a config matches when it is "common"
// (matches any owner) or the account's owner matches its program-id and the
// account data begins with its discriminator. The first matching decoder
// that succeeds wins.
func Account(acct *events.AccountUpdate, reg *registry.Registry, pool *eventmeta.Pool, cb Callback) {
	mp := pool.Acquire()
	*mp = events.Meta{
		Slot:   acct.Slot,
		RecvUS: acct.RecvUS,
	}
	if acct.CausingSignature != nil {
		mp.Signature = *acct.CausingSignature
	}
	m := *mp
	pool.Release(mp)

	for _, cfg := range reg.Accounts {
		if !cfg.IsCommon() && acct.Owner != cfg.ProgramID {
			continue
		}
		if !cfg.IsCommon() && !hasPrefix(acct.Data, cfg.Discriminator) {
			continue
		}

		em := m
		em.Protocol = cfg.Protocol
		em.EventType = cfg.EventType
		em.ProgramID = acct.Owner

		ev, ok := cfg.Decoder(acct, em)
		if !ok {
			continue
		}
		cb(ev)
		return
	}
}

func hasPrefix(data, prefix []byte) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}
