package types

import "testing"

func TestPubkeyHexRoundTrip(t *testing.T) {
	b := make([]byte, PubkeyLength)
	for i := range b {
		b[i] = byte(i)
	}
	p := BytesToPubkey(b)

	parsed, err := HexToPubkey(p.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(p) {
		t.Errorf("round-tripped pubkey mismatch: got %s, want %s", parsed.Hex(), p.Hex())
	}

	// Bare hex (no 0x prefix) parses the same way.
	bare, err := HexToPubkey(p.Hex()[2:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bare.Equal(p) {
		t.Errorf("bare-hex pubkey mismatch")
	}
}

func TestHexToPubkeyInvalidLength(t *testing.T) {
	if _, err := HexToPubkey("0x1234"); err == nil {
		t.Error("expected error for short hex string")
	}
}

func TestPubkeyIsZero(t *testing.T) {
	if !ZeroPubkey.IsZero() {
		t.Error("ZeroPubkey should report IsZero")
	}
	p := BytesToPubkey([]byte{1})
	if p.IsZero() {
		t.Error("non-zero pubkey should not report IsZero")
	}
}

func TestBytesToPubkeyTruncatesFromTheLeft(t *testing.T) {
	long := make([]byte, PubkeyLength+4)
	for i := range long {
		long[i] = byte(i)
	}
	p := BytesToPubkey(long)
	if p[0] != long[4] {
		t.Errorf("expected truncation to keep the trailing %d bytes", PubkeyLength)
	}
}

func TestHashEqualAndIsZero(t *testing.T) {
	h1 := BytesToHash([]byte("content"))
	h2 := BytesToHash([]byte("content"))
	if !h1.Equal(h2) {
		t.Error("identical content should hash to equal values")
	}
	if ZeroHash.Equal(h1) {
		t.Error("non-empty hash should not equal ZeroHash")
	}
}
