// Package binary provides bounds-checked little-endian primitive readers and
// a fixed-prefix discriminator matcher over raw instruction/account bytes.
//
// Every reader follows one rule: insufficient data returns ok == false
// rather than an error or a panic. Callers (the decoders in
// internal/decode) treat a false return as "this decoder declines," never
// as a fatal condition.
package binary

import "encoding/binary"

// U8 reads a single byte at offset.
func U8(data []byte, offset int) (uint8, bool) {
	if offset < 0 || offset+1 > len(data) {
		return 0, false
	}
	return data[offset], true
}

// I8 reads a signed byte at offset.
func I8(data []byte, offset int) (int8, bool) {
	v, ok := U8(data, offset)
	return int8(v), ok
}

// U16LE reads a little-endian uint16 at offset.
func U16LE(data []byte, offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(data[offset:]), true
}

// U32LE reads a little-endian uint32 at offset.
func U32LE(data []byte, offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[offset:]), true
}

// I32LE reads a little-endian int32 at offset.
func I32LE(data []byte, offset int) (int32, bool) {
	v, ok := U32LE(data, offset)
	return int32(v), ok
}

// U64LE reads a little-endian uint64 at offset.
func U64LE(data []byte, offset int) (uint64, bool) {
	if offset < 0 || offset+8 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[offset:]), true
}

// U128LE reads a little-endian 128-bit unsigned integer at offset, returned
// as (low, high) uint64 halves since Go has no native 128-bit integer type.
func U128LE(data []byte, offset int) (lo uint64, hi uint64, ok bool) {
	if offset < 0 || offset+16 > len(data) {
		return 0, 0, false
	}
	lo = binary.LittleEndian.Uint64(data[offset:])
	hi = binary.LittleEndian.Uint64(data[offset+8:])
	return lo, hi, true
}

// OptionBool reads a 1-byte Option<bool> tag (Borsh-style: 0 = None, 1 =
// Some(false), 2 = Some(true)) and advances offset past it.
//
// present reports whether a value was encoded at all (tag != 0); value is
// only meaningful when present is true.
func OptionBool(data []byte, offset *int) (present bool, value bool, ok bool) {
	tag, ok := U8(data, *offset)
	if !ok {
		return false, false, false
	}
	*offset++
	switch tag {
	case 0:
		return false, false, true
	case 1:
		return true, false, true
	case 2:
		return true, true, true
	default:
		return false, false, false
	}
}

// String reads a 4-byte little-endian length prefix followed by that many
// UTF-8 bytes, returning the decoded string and the offset immediately past
// it.
func String(data []byte, offset int) (s string, next int, ok bool) {
	n, ok := U32LE(data, offset)
	if !ok {
		return "", offset, false
	}
	start := offset + 4
	end := start + int(n)
	if end < start || end > len(data) {
		return "", offset, false
	}
	return string(data[start:end]), end, true
}

// DiscriminatorMatch reports whether data is at least as long as prefix and
// begins with exactly those bytes.
func DiscriminatorMatch(data []byte, prefix []byte) bool {
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

// SplitDiscriminator returns the first n bytes of data as the discriminator
// and the remainder, or ok == false if data is shorter than n.
func SplitDiscriminator(data []byte, n int) (disc []byte, rest []byte, ok bool) {
	if len(data) < n {
		return nil, nil, false
	}
	return data[:n], data[n:], true
}
