package oca

import (
	"testing"

	"finova/chain/crypto"
	"finova/chain/types"
)

func sampleReport() ActivityReport {
	return ActivityReport{
		User:         types.BytesToPubkey([]byte("user")),
		ActivityKind: ActivityPost,
		Platform:     PlatformX,
		Nonce:        1,
		Ts:           1_000_000,
		QualityMicro: 1_500_000,
		ContentHash:  types.BytesToHash([]byte("content")),
	}
}

func TestVerifyAcceptsValidAttestation(t *testing.T) {
	pub, priv, err := crypto.GenerateAttestorKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	report := sampleReport()
	sig := crypto.SignAttestation(priv, report.CanonicalBytes())
	att := QualityAttestation{Signature: sig}

	if err := report.Verify(pub, att); err != nil {
		t.Errorf("expected valid attestation to verify, got %v", err)
	}
}

func TestVerifyRejectsQualityOutOfRange(t *testing.T) {
	pub, priv, _ := crypto.GenerateAttestorKey()
	report := sampleReport()
	report.QualityMicro = MaxQualityMicro + 1
	sig := crypto.SignAttestation(priv, report.CanonicalBytes())

	if err := report.Verify(pub, QualityAttestation{Signature: sig}); err != ErrBadQuality {
		t.Errorf("expected ErrBadQuality, got %v", err)
	}
}

func TestVerifyRejectsTamperedReport(t *testing.T) {
	pub, priv, _ := crypto.GenerateAttestorKey()
	report := sampleReport()
	sig := crypto.SignAttestation(priv, report.CanonicalBytes())

	report.QualityMicro = 0
	if err := report.Verify(pub, QualityAttestation{Signature: sig}); err == nil {
		t.Error("expected signature verification to fail after the report changed")
	}
}

func TestWithinFreshnessWindow(t *testing.T) {
	report := sampleReport()

	if !report.WithinFreshnessWindow(report.Ts) {
		t.Error("expected exact timestamp match to be fresh")
	}
	if !report.WithinFreshnessWindow(report.Ts + FreshnessWindowSeconds) {
		t.Error("expected the edge of the freshness window to still be fresh")
	}
	if report.WithinFreshnessWindow(report.Ts + FreshnessWindowSeconds + 1) {
		t.Error("expected just past the freshness window to be stale")
	}
	if report.WithinFreshnessWindow(report.Ts - FreshnessWindowSeconds - 1) {
		t.Error("expected a report claiming to be from the future beyond the window to be stale")
	}
}

func TestCanonicalBytesIsDeterministic(t *testing.T) {
	a := sampleReport().CanonicalBytes()
	b := sampleReport().CanonicalBytes()
	if string(a) != string(b) {
		t.Error("expected identical reports to canonicalize identically")
	}
}
