package decode

import (
	"github.com/mr-tron/base58"

	"github.com/withobsrvr/solana-event-stream/internal/binary"
	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/registry"
	"github.com/withobsrvr/solana-event-stream/internal/solana"
)

// decodePoolAccount is the shared decoder for every anchor-tagged "8-byte
// discriminator + packed struct" snapshot account across all six protocols
// (pool state, amm config, tick array, bonding curve, global/platform
// config, vesting record). Callers only ever distinguish these by
// EventType, so the payload is carried opaque rather than field-unpacked;
// see SPEC_FULL.md §4.4.1's account-snapshot note.
func decodePoolAccount(acct *events.AccountUpdate, meta events.Meta) (events.UnifiedEvent, bool) {
	ev := &events.PoolAccountEvent{
		Pubkey:   acct.Pubkey,
		Owner:    acct.Owner,
		Lamports: acct.Lamports,
		Raw:      acct.Data,
	}
	ev.Meta = meta
	return ev, true
}

// SPL token program account layouts (fixed-size, Borsh/bincode packed).
const (
	splMintLen    = 82
	splAccountLen = 165
	nonceStateLen = 80
)

func init() {
	registry.RegisterProtocol(events.ProtocolCommon, commonConfigs)
}

// commonConfigs returns the program-id-agnostic account configs (token
// mint/account probing and durable-nonce decoding) appended to every
// registry assembly regardless of which protocols are active, mirroring
// account_event_parser.rs's COMMON_CONFIG/NONCE_CONFIG statics.
func commonConfigs() ([]registry.InstructionConfig, []registry.AccountConfig) {
	return nil, []registry.AccountConfig{
		{
			Protocol:  events.ProtocolCommon,
			EventType: events.EventAccountNonce,
			Decoder:   decodeNonceAccount,
		},
		{
			Protocol:  events.ProtocolCommon,
			EventType: events.EventAccountTokenAccount,
			Decoder:   decodeTokenOrMintAccount,
		},
	}
}

// decodeTokenOrMintAccount probes a raw account's data against the SPL
// Token/Token-2022 layouts: a mint is tried first (its packed length is
// shorter and strictly distinguishable from a token account's), falling
// back to the token-account shape. Neither owner nor discriminator gates
// this decoder — see §4.6 step 1's "probe by unpack success" fallback.
func decodeTokenOrMintAccount(acct *events.AccountUpdate, meta events.Meta) (events.UnifiedEvent, bool) {
	data := acct.Data

	if len(data) == splMintLen {
		if supply, ok := binary.U64LE(data, 36); ok {
			decimals, _ := binary.U8(data, 44)
			ev := &events.TokenMintEvent{
				Pubkey:     acct.Pubkey,
				Executable: acct.Executable,
				Lamports:   acct.Lamports,
				Owner:      acct.Owner,
				RentEpoch:  acct.RentEpoch,
				Supply:     supply,
				Decimals:   decimals,
			}
			meta.EventType = events.EventAccountTokenMint
			ev.Meta = meta
			return ev, true
		}
	}

	if len(data) >= splAccountLen {
		var mint, owner events.Pubkey
		copy(mint[:], data[0:32])
		copy(owner[:], data[32:64])
		amount, ok := binary.U64LE(data, 64)
		if !ok {
			return nil, false
		}
		ev := &events.TokenAccountEvent{
			Pubkey:     acct.Pubkey,
			Executable: acct.Executable,
			Lamports:   acct.Lamports,
			Owner:      acct.Owner,
			RentEpoch:  acct.RentEpoch,
			Amount:     &amount,
			TokenOwner: owner,
			Mint:       mint,
		}
		ev.Meta = meta
		return ev, true
	}

	return nil, false
}

// decodeNonceAccount decodes a durable-nonce account. Layout (little
// endian): version tag (4), state tag (4, 0 == uninitialized), authority
// pubkey (32), durable-nonce hash (32), fee_calculator.lamports_per_signature
// (8). The config itself carries no owner gate; the decoder declines when
// the bytes don't parse or the account is not owned by the system program.
func decodeNonceAccount(acct *events.AccountUpdate, meta events.Meta) (events.UnifiedEvent, bool) {
	data := acct.Data
	if len(data) < nonceStateLen {
		return nil, false
	}
	if acct.Owner != solana.SystemProgramID {
		return nil, false
	}
	stateTag, ok := binary.U32LE(data, 4)
	if !ok || stateTag == 0 {
		return nil, false
	}
	var authority events.Pubkey
	copy(authority[:], data[8:40])
	nonceHash := data[40:72]

	ev := &events.NonceAccountEvent{
		Pubkey:     acct.Pubkey,
		Executable: acct.Executable,
		Lamports:   acct.Lamports,
		Owner:      acct.Owner,
		RentEpoch:  acct.RentEpoch,
		Nonce:      base58.Encode(nonceHash),
		Authority:  authority,
	}
	ev.Meta = meta
	return ev, true
}
