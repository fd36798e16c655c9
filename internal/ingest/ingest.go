// Package ingest defines the two transport-agnostic source interfaces the
// core consumes from (spec.md §6's "two separate traits"). Neither the
// bidirectional streaming client nor the shred-stream client is implemented
// here — both transports are external collaborators out of scope for this
// repository (spec.md §1) — but server.Controller accepts any concrete
// implementation of these, mirroring the teacher's
// connectToRawLedgerSource pattern of dialing an upstream service supplied
// at construction time rather than hardwired into the pipeline.
package ingest

import (
	"context"

	"github.com/withobsrvr/solana-event-stream/internal/events"
)

// TransactionSource yields one decoded-from-wire transaction update per
// Next call, blocking until one is available or ctx is cancelled.
type TransactionSource interface {
	Next(ctx context.Context) (*events.TransactionUpdate, error)
}

// AccountSource yields one account-state update per Next call, blocking
// until one is available or ctx is cancelled.
type AccountSource interface {
	Next(ctx context.Context) (*events.AccountUpdate, error)
}
