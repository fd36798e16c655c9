package binary

import "testing"

func TestU64LE(t *testing.T) {
	data := []byte{0x40, 0x42, 0x0f, 0, 0, 0, 0, 0} // 1_000_000 little-endian
	v, ok := U64LE(data, 0)
	if !ok || v != 1_000_000 {
		t.Fatalf("U64LE = %d, %v; want 1000000, true", v, ok)
	}
}

func TestU64LETruncated(t *testing.T) {
	data := []byte{1, 2, 3}
	if _, ok := U64LE(data, 0); ok {
		t.Fatal("expected ok=false on truncated input")
	}
}

func TestU64LENegativeOffset(t *testing.T) {
	if _, ok := U64LE([]byte{1, 2, 3, 4, 5, 6, 7, 8}, -1); ok {
		t.Fatal("expected ok=false on negative offset")
	}
}

func TestOptionBool(t *testing.T) {
	off := 0
	data := []byte{2, 0, 1}

	present, value, ok := OptionBool(data, &off)
	if !ok || !present || !value || off != 1 {
		t.Fatalf("got present=%v value=%v ok=%v off=%d", present, value, ok, off)
	}

	present, _, ok = OptionBool(data, &off)
	if !ok || present || off != 2 {
		t.Fatalf("got present=%v ok=%v off=%d", present, ok, off)
	}

	present, value, ok = OptionBool(data, &off)
	if !ok || !present || value || off != 3 {
		t.Fatalf("got present=%v value=%v ok=%v off=%d", present, value, ok, off)
	}
}

func TestString(t *testing.T) {
	data := []byte{5, 0, 0, 0, 'h', 'e', 'l', 'l', 'o', 0xFF}
	s, next, ok := String(data, 0)
	if !ok || s != "hello" || next != 9 {
		t.Fatalf("String = %q, %d, %v; want hello, 9, true", s, next, ok)
	}
}

func TestStringTruncated(t *testing.T) {
	data := []byte{10, 0, 0, 0, 'a', 'b'}
	if _, _, ok := String(data, 0); ok {
		t.Fatal("expected ok=false when length prefix exceeds remaining bytes")
	}
}

func TestDiscriminatorMatch(t *testing.T) {
	prefix := []byte{0x8F, 0xBE, 0x5A, 0xDA, 0xC4, 0x1E, 0x33, 0xDE}
	data := append(append([]byte{}, prefix...), 1, 2, 3)

	if !DiscriminatorMatch(data, prefix) {
		t.Fatal("expected match")
	}
	if DiscriminatorMatch(data[:4], prefix) {
		t.Fatal("expected no match on truncated data")
	}
	other := append([]byte{}, prefix...)
	other[0] ^= 0xFF
	if DiscriminatorMatch(data, other) {
		t.Fatal("expected no match on differing prefix")
	}
}

func TestSplitDiscriminator(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	disc, rest, ok := SplitDiscriminator(data, 8)
	if !ok || len(disc) != 8 || len(rest) != 2 {
		t.Fatalf("SplitDiscriminator = %v, %v, %v", disc, rest, ok)
	}

	if _, _, ok := SplitDiscriminator(data[:4], 8); ok {
		t.Fatal("expected ok=false when data shorter than discriminator")
	}
}
