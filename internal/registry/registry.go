// Package registry implements the protocol schema registry (C3): the
// per-protocol table of discriminator -> decoder entries for both
// instruction and account shapes, assembled once per (protocols, filter)
// pair and frozen thereafter.
package registry

import (
	"sync"

	"github.com/withobsrvr/solana-event-stream/internal/events"
	"github.com/withobsrvr/solana-event-stream/internal/eventfilter"
)

// InstructionDecodeFn decodes an instruction's account list and data (with
// the discriminator already stripped) into a concrete event. ok == false
// means "this decoder declines" (§4.1's failure mode), never an error.
type InstructionDecodeFn func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool)

// InnerLogDecodeFn decodes an inner-instruction event-log payload (data with
// its 16-byte prefix already stripped) into a concrete event. accounts is
// the OUTER instruction's resolved account list — the event log itself
// carries no accounts of its own, so any account-derived field (creator,
// mint, pool state, ...) is read from the instruction the log belongs to.
type InnerLogDecodeFn func(data []byte, accounts []events.Pubkey, meta events.Meta) (events.UnifiedEvent, bool)

// AccountDecodeFn decodes a raw account update into a concrete snapshot
// event.
type AccountDecodeFn func(acct *events.AccountUpdate, meta events.Meta) (events.UnifiedEvent, bool)

// InstructionConfig is one entry of the per-protocol instruction table.
type InstructionConfig struct {
	ProgramID                events.Pubkey
	Protocol                  events.Protocol
	EventType                 events.EventType
	InstructionDiscriminator  []byte
	InnerLogDiscriminator     []byte // empty if this event has no inner-log shape
	InstructionDecoder        InstructionDecodeFn // nil if this event's canonical source is its inner log, not the outer instruction
	InnerLogDecoder           InnerLogDecodeFn // nil if this event has no inner-log shape
}

// commonProgramID is the account-config sentinel meaning "match regardless
// of owner" (token/nonce decoders, per §4.6 step 1).
var commonProgramID = events.Pubkey{}

// AccountConfig is one entry of the flat account-config list.
type AccountConfig struct {
	ProgramID      events.Pubkey // commonProgramID (zero value) matches any owner
	Protocol       events.Protocol
	EventType      events.EventType
	Discriminator  []byte
	Decoder        AccountDecodeFn
}

// IsCommon reports whether this config matches regardless of the account's
// owner (the token/nonce/common decoders).
func (c AccountConfig) IsCommon() bool {
	return c.ProgramID == commonProgramID
}

// ProtocolConfigs is implemented once per protocol (internal/decode) and
// returns that protocol's instruction configs and account configs; each
// config carries its own program id.
type ProtocolConfigs func() (instructions []InstructionConfig, accounts []AccountConfig)

var (
	registrationMu sync.Mutex
	registrations  = map[events.Protocol]ProtocolConfigs{}
)

// RegisterProtocol makes a protocol's config builder available to Build.
// Called from internal/decode's per-protocol init() functions, mirroring
// the source's EVENT_PARSERS static map assembly in factory.rs.
func RegisterProtocol(p events.Protocol, configs ProtocolConfigs) {
	registrationMu.Lock()
	defer registrationMu.Unlock()
	registrations[p] = configs
}

// Registry is the immutable, assembled result of Build: a discriminator ->
// candidate-configs map plus a flat account-config list.
type Registry struct {
	ByDiscriminator map[string][]InstructionConfig
	InnerLogs       map[string][]InstructionConfig
	Accounts        []AccountConfig
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Registry{}
)

// Build assembles (or returns the memoised) registry for the given protocol
// set and optional event-type filter. Assembly is memoised per
// (sorted protocols, filter fingerprint) key, matching the source's
// OnceLock-backed per-(protocols,filter) cache.
func Build(protocols []events.Protocol, filter *eventfilter.Filter) *Registry {
	key := cacheKey(protocols, filter)

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if r, ok := cache[key]; ok {
		return r
	}

	r := assemble(protocols, filter)
	cache[key] = r
	return r
}

func assemble(protocols []events.Protocol, filter *eventfilter.Filter) *Registry {
	r := &Registry{
		ByDiscriminator: make(map[string][]InstructionConfig),
		InnerLogs:       make(map[string][]InstructionConfig),
	}

	registrationMu.Lock()
	defer registrationMu.Unlock()

	// The common bucket (token/mint/nonce account probing) applies
	// regardless of which protocols the caller asked for, but must be
	// appended LAST: decode.Account returns on the first config whose
	// decoder succeeds, and the common token/mint catch-all matches any
	// account data >= 165 bytes with no owner/discriminator gate. Placing
	// it ahead of the protocol-specific configs would shadow every real
	// snapshot decoder (PoolState, BondingCurve, Global, ...). This
	// mirrors account_event_parser.rs's NONCE_CONFIG/COMMON_CONFIG append
	// happening after the protocol configs.
	ordered := append(append([]events.Protocol{}, protocols...), events.ProtocolCommon)
	seen := make(map[events.Protocol]bool, len(ordered))

	for _, p := range ordered {
		if seen[p] {
			continue
		}
		seen[p] = true

		build, ok := registrations[p]
		if !ok {
			continue
		}
		instrConfigs, acctConfigs := build()

		for _, ic := range instrConfigs {
			if filter != nil && !filter.Includes(ic.EventType) {
				continue
			}
			if ic.EventType.IsAccountEvent() || ic.EventType.IsBlockEvent() {
				continue
			}
			key := string(ic.InstructionDiscriminator)
			r.ByDiscriminator[key] = append(r.ByDiscriminator[key], ic)

			if len(ic.InnerLogDiscriminator) > 0 {
				ilKey := string(ic.InnerLogDiscriminator)
				r.InnerLogs[ilKey] = append(r.InnerLogs[ilKey], ic)
			}
		}

		for _, ac := range acctConfigs {
			if filter != nil && !filter.Includes(ac.EventType) {
				continue
			}
			r.Accounts = append(r.Accounts, ac)
		}
	}

	return r
}

// Lookup returns every instruction config whose discriminator is a prefix
// of data and whose program-id matches programID.
func (r *Registry) Lookup(programID events.Pubkey, data []byte) []InstructionConfig {
	var matches []InstructionConfig
	for discLen := 16; discLen >= 1; discLen-- {
		if len(data) < discLen {
			continue
		}
		candidates, ok := r.ByDiscriminator[string(data[:discLen])]
		if !ok {
			continue
		}
		for _, c := range candidates {
			if c.ProgramID == programID && len(c.InstructionDiscriminator) == discLen {
				matches = append(matches, c)
			}
		}
	}
	return matches
}

// LookupInnerLog returns every config whose inner-log discriminator is a
// prefix of data, regardless of program-id (self-CPI log instructions carry
// no separate program-id to match against).
func (r *Registry) LookupInnerLog(data []byte) []InstructionConfig {
	var matches []InstructionConfig
	for discLen := 16; discLen >= 1; discLen-- {
		if len(data) < discLen {
			continue
		}
		candidates, ok := r.InnerLogs[string(data[:discLen])]
		if !ok {
			continue
		}
		for _, c := range candidates {
			if len(c.InnerLogDiscriminator) == discLen {
				matches = append(matches, c)
			}
		}
	}
	return matches
}

func cacheKey(protocols []events.Protocol, filter *eventfilter.Filter) string {
	sorted := make([]int, len(protocols))
	for i, p := range protocols {
		sorted[i] = int(p)
	}
	return fingerprintProtocols(sorted) + "|" + filter.Fingerprint()
}
