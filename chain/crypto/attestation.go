// Package crypto carries the signature-verification surface CORE needs
// for its one trusted off-chain attestor. The attestor signs with plain
// Ed25519, verified through the same Sign/Verify shape as the rest of
// the node's signature helpers.
package crypto

import (
	"errors"

	"golang.org/x/crypto/ed25519"
)

// ErrBadSignature is returned by VerifyAttestation when the signature
// does not verify against the attestor's known public key.
var ErrBadSignature = errors.New("bad signature")

// AttestorKeySize is the Ed25519 public key width.
const AttestorKeySize = ed25519.PublicKeySize

// AttestationSignatureSize is the Ed25519 signature width (`signature: [u8;64]`).
const AttestationSignatureSize = ed25519.SignatureSize

// SignAttestation signs message with the attestor's Ed25519 private key.
// Used only by test harnesses and the attestor simulator in cmd/ — CORE
// itself only ever verifies.
func SignAttestation(priv ed25519.PrivateKey, message []byte) [AttestationSignatureSize]byte {
	var out [AttestationSignatureSize]byte
	copy(out[:], ed25519.Sign(priv, message))
	return out
}

// VerifyAttestation checks that sig is a valid Ed25519 signature of
// message under attestorKey (QualityAttestation is an Ed25519 signature
// of the report by attestor_key).
func VerifyAttestation(attestorKey ed25519.PublicKey, message []byte, sig [AttestationSignatureSize]byte) error {
	if len(attestorKey) != AttestorKeySize {
		return errors.New("malformed attestor key")
	}
	if !ed25519.Verify(attestorKey, message, sig[:]) {
		return ErrBadSignature
	}
	return nil
}

// GenerateAttestorKey produces a fresh Ed25519 keypair, used by
// cmd/finova-node's genesis bootstrap and by tests.
func GenerateAttestorKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(nil)
}
