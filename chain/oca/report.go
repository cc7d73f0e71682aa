// Package oca is the off-chain attestor interface: not a program, just
// the data contract CORE consumes. It follows the same struct-plus-
// canonical-encoding-plus-Verify idiom chain/crypto uses for signed
// payloads, specialized to the one message type CORE accepts.
package oca

import (
	"encoding/binary"
	"errors"

	"finova/chain/crypto"
	"finova/chain/types"

	"golang.org/x/crypto/ed25519"
)

// ActivityKind enumerates the off-chain activity categories CORE's XP
// base-gain table is indexed by.
type ActivityKind uint8

const (
	ActivityPost ActivityKind = iota
	ActivityComment
	ActivityShare
	ActivityLike
	ActivityReferralAction
)

// Platform enumerates the originating social platform, used only for
// the "platform_mult" factor of the XP gain formula.
type Platform uint8

const (
	PlatformGeneric Platform = iota
	PlatformX
	PlatformInstagram
	PlatformTikTok
	PlatformYouTube
)

// ErrStaleAttestation, ErrReplayDetected and ErrBadQuality are the
// submit_activity-specific validation failures, kept alongside the
// report type they validate.
var (
	ErrStaleAttestation = errors.New("stale attestation")
	ErrReplayDetected   = errors.New("replay detected")
	ErrBadQuality       = errors.New("quality score out of range")
)

// FreshnessWindowSeconds is ATTESTATION_FRESHNESS_S.
const FreshnessWindowSeconds = 600

// MaxQualityMicro is the upper bound allowed for quality_micro:
// quality_micro in [0, 2e6].
const MaxQualityMicro uint32 = 2_000_000

// ActivityReport is the exact tuple an off-chain attestor signs off on.
type ActivityReport struct {
	User         types.Pubkey
	ActivityKind ActivityKind
	Platform     Platform
	Nonce        uint64
	Ts           types.UnixSeconds
	QualityMicro uint32
	ContentHash  types.Hash
}

// QualityAttestation is an Ed25519 signature of a report's canonical
// bytes by the network's attestor key.
type QualityAttestation struct {
	Signature [crypto.AttestationSignatureSize]byte
}

// CanonicalBytes serializes the report deterministically for signing
// and verification — fixed field order, fixed width, no padding
// ambiguity.
func (r ActivityReport) CanonicalBytes() []byte {
	buf := make([]byte, 0, 32+1+1+8+8+4+32)
	buf = append(buf, r.User[:]...)
	buf = append(buf, byte(r.ActivityKind))
	buf = append(buf, byte(r.Platform))
	buf = binary.BigEndian.AppendUint64(buf, r.Nonce)
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.Ts))
	buf = binary.BigEndian.AppendUint32(buf, r.QualityMicro)
	buf = append(buf, r.ContentHash[:]...)
	return buf
}

// Verify checks the attestation's signature and the report's own field
// bounds (quality range). Freshness is checked separately through
// WithinFreshnessWindow, and nonce replay in chain/core, which keeps
// the per-user nonces.
func (r ActivityReport) Verify(attestorKey ed25519.PublicKey, att QualityAttestation) error {
	if r.QualityMicro > MaxQualityMicro {
		return ErrBadQuality
	}
	return crypto.VerifyAttestation(attestorKey, r.CanonicalBytes(), att.Signature)
}

// WithinFreshnessWindow reports whether the report's timestamp is
// within ATTESTATION_FRESHNESS_S of now, in either direction
// ("|now - ts| <= 600s").
func (r ActivityReport) WithinFreshnessWindow(now types.UnixSeconds) bool {
	diff := int64(now) - int64(r.Ts)
	if diff < 0 {
		diff = -diff
	}
	return diff <= FreshnessWindowSeconds
}
