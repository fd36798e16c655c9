package decode

import (
	"go.uber.org/zap"

	"github.com/withobsrvr/solana-event-stream/internal/eventmeta"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
)

// Transaction decodes every outer instruction of tx against reg, including
// any inner-instruction event logs whose configs carry an
// InnerLogDiscriminator. An inner log is decoded only by configs whose
// program id and instruction discriminator match the owning outer
// instruction. It is the single entry point C8's worker pool
// calls per transaction, tying together Instruction, InnerLog, and the
// shared TransactionContext.
func Transaction(tx *events.TransactionUpdate, reg *registry.Registry, pool *eventmeta.Pool, log *zap.Logger, cb Callback) {
	txCtx := &events.TransactionContext{
		Signature:        tx.Signature,
		Slot:             tx.Slot,
		BlockTime:        tx.BlockTime,
		TransactionIndex: tx.TransactionIndex,
		RecvUS:           tx.RecvUS,
		Accounts:         tx.Accounts,
		InnerGroups:      tx.InnerGroups,
	}

	for i, view := range tx.Instructions {
		outerIndex := int64(i)
		Instruction(view, outerIndex, txCtx, reg, pool, log, cb)

		if len(reg.InnerLogs) == 0 {
			continue
		}
		group := txCtx.InnerGroupFor(outerIndex)
		if group == nil {
			continue
		}
		outerAccounts, ok := resolveAccounts(view.AccountIndices, txCtx.Accounts)
		if !ok || int(view.ProgramIDIndex) >= len(txCtx.Accounts) {
			continue
		}
		programID := txCtx.Accounts[view.ProgramIDIndex]
		base := buildBaseMeta(pool, txCtx, outerIndex)
		for j, inner := range group.Instructions {
			innerIdx := int64(j)
			m := base
			m.InnerIndex = &innerIdx
			for _, cfg := range reg.LookupInnerLog(inner.Data) {
				if cfg.ProgramID != programID || !hasPrefix(view.Data, cfg.InstructionDiscriminator) {
					continue
				}
				InnerLog(cfg, inner.Data, m, outerAccounts, txCtx, outerIndex, log, cb)
			}
		}
	}
}
