package types

import (
	"bytes"
	"encoding/hex"
	"errors"
)

const (
	// PubkeyLength matches a Solana-style 32-byte account address.
	PubkeyLength = 32
	// HashLength is the width of a content hash (e.g. ActivityReport.content_hash).
	HashLength = 32
)

// Pubkey identifies an account or a program. Program-derived addresses
// (PDAs) are Pubkeys with no corresponding private key.
type Pubkey [PubkeyLength]byte

// Hash is a 32-byte content digest.
type Hash [HashLength]byte

// ZeroPubkey is the empty/unset pubkey.
var ZeroPubkey = Pubkey{}

// ZeroHash is the empty/unset hash.
var ZeroHash = Hash{}

// BytesToPubkey left-pads or truncates b into a Pubkey.
func BytesToPubkey(b []byte) Pubkey {
	var p Pubkey
	if len(b) > PubkeyLength {
		copy(p[:], b[len(b)-PubkeyLength:])
	} else {
		copy(p[PubkeyLength-len(b):], b)
	}
	return p
}

// BytesToHash left-pads or truncates b into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		copy(h[:], b[len(b)-HashLength:])
	} else {
		copy(h[HashLength-len(b):], b)
	}
	return h
}

// Hex returns the 0x-prefixed hex representation of the pubkey.
func (p Pubkey) Hex() string {
	return "0x" + hex.EncodeToString(p[:])
}

// String implements fmt.Stringer.
func (p Pubkey) String() string {
	return p.Hex()
}

// Bytes returns the pubkey as a byte slice.
func (p Pubkey) Bytes() []byte {
	return p[:]
}

// Equal reports whether two pubkeys are identical.
func (p Pubkey) Equal(other Pubkey) bool {
	return bytes.Equal(p[:], other[:])
}

// IsZero reports whether the pubkey is unset.
func (p Pubkey) IsZero() bool {
	return p.Equal(ZeroPubkey)
}

// Hex returns the 0x-prefixed hex representation of the hash.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h Hash) String() string {
	return h.Hex()
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Equal reports whether two hashes are identical.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h[:], other[:])
}

// IsZero reports whether the hash is unset.
func (h Hash) IsZero() bool {
	return h.Equal(ZeroHash)
}

// HexToPubkey parses a 0x-prefixed or bare hex string into a Pubkey.
func HexToPubkey(s string) (Pubkey, error) {
	if len(s) > 2 && s[:2] == "0x" {
		s = s[2:]
	}
	if len(s) != PubkeyLength*2 {
		return ZeroPubkey, errors.New("invalid pubkey length")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroPubkey, err
	}
	return BytesToPubkey(b), nil
}

// HexToHash parses a 0x-prefixed or bare hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	if len(s) > 2 && s[:2] == "0x" {
		s = s[2:]
	}
	if len(s) != HashLength*2 {
		return ZeroHash, errors.New("invalid hash length")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHash, err
	}
	return BytesToHash(b), nil
}
