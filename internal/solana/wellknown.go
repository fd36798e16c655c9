// Package solana holds the small set of well-known Solana program and mint
// addresses the decoders and correlator need to recognize by identity
// (token programs, the system program, the wrapped-SOL mint).
package solana

import (
	"github.com/mr-tron/base58"

	"github.com/withobsrvr/solana-event-stream/internal/events"
)

func mustPubkey(b58 string) events.Pubkey {
	raw, err := base58.Decode(b58)
	if err != nil {
		panic(err)
	}
	var pk events.Pubkey
	if len(raw) != len(pk) {
		panic("solana: decoded address is not 32 bytes: " + b58)
	}
	copy(pk[:], raw)
	return pk
}

var (
	TokenProgramID     = mustPubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID = mustPubkey("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	SystemProgramID    = mustPubkey("11111111111111111111111111111111")
	WrappedSOLMint     = mustPubkey("So11111111111111111111111111111111111111112")
)

// Program ids for the six supported protocols, used to populate each
// protocol's registry.InstructionConfig/AccountConfig entries.
var (
	RaydiumCpmmProgramID  = mustPubkey("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	RaydiumClmmProgramID  = mustPubkey("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	RaydiumAmmV4ProgramID = mustPubkey("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	PumpFunProgramID      = mustPubkey("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	PumpSwapProgramID     = mustPubkey("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	BonkProgramID         = mustPubkey("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")
)

// IsSystemProgram reports whether id is one of the two token programs or
// the base system program — the set §4.5 step 2 walks through without
// stopping.
func IsSystemProgram(id events.Pubkey) bool {
	return id == TokenProgramID || id == Token2022ProgramID || id == SystemProgramID
}
