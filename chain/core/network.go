package core

import (
	"finova/chain/types"
)

// Phase is the one-way mining-phase state machine.
type Phase uint8

const (
	PhaseFinizen Phase = iota
	PhaseGrowth
	PhaseMaturity
	PhaseStability
)

func (p Phase) String() string {
	switch p {
	case PhaseFinizen:
		return "Finizen"
	case PhaseGrowth:
		return "Growth"
	case PhaseMaturity:
		return "Maturity"
	case PhaseStability:
		return "Stability"
	default:
		return "Unknown"
	}
}

// PhaseThresholds are the total_users crossings that advance the phase
// (100_000 ; 1_000_000 ; 10_000_000).
var PhaseThresholds = [...]uint64{100_000, 1_000_000, 10_000_000}

// BaseRateMicroPerPhase is BASE_RATE_MICRO per phase, denominated per
// hour (100_000 ; 50_000 ; 25_000 ; 10_000).
var BaseRateMicroPerPhase = [...]types.MicroValue{100_000, 50_000, 25_000, 10_000}

// PhaseForUserCount is a pure function of total_users, monotone
// non-decreasing.
func PhaseForUserCount(totalUsers uint64) Phase {
	phase := PhaseFinizen
	for i, threshold := range PhaseThresholds {
		if totalUsers >= threshold {
			phase = Phase(i + 1)
		}
	}
	return phase
}

// MaxSupply is the hard token supply ceiling: 100_000_000_000 whole
// tokens at 9 decimals.
const MaxSupply types.BaseUnits = 100_000_000_000 * 1_000_000_000

// NetworkState is the CORE singleton.
type NetworkState struct {
	TotalUsers    uint64
	TotalMinted   types.BaseUnits
	Phase         Phase
	BaseRateMicro types.MicroValue
	LastPhaseTick types.UnixSeconds
	Paused        bool
	AttestorKey   [32]byte // Ed25519 public key
	HoldCap       uint64   // whole tokens, HOLD_CAP
	HoldCoefMicro uint32
	NrCoefMicro   uint32
	MaxSupply     types.BaseUnits
	Initialized   bool
}

// NetworkParams are initialize_network's inputs.
type NetworkParams struct {
	BaseRateMicro types.MicroValue
	HoldCap       uint64
	HoldCoefMicro uint32
	NrCoefMicro   uint32
	AttestorKey   [32]byte
	MaxSupply     types.BaseUnits
}

// DefaultNetworkParams returns the whitepaper-suggested defaults:
// hold_coef_micro and nr_coef_micro are parameterized per-network
// rather than hardcoded, and these are the chosen defaults for the
// reference scenarios (hold_coef_micro=1000 with HOLD_CAP=10000 gives
// the holdings-regression reference exponent of 10, K≈4.54e-5 within
// ExpMicro's table precision).
func DefaultNetworkParams(attestorKey [32]byte) NetworkParams {
	return NetworkParams{
		BaseRateMicro: BaseRateMicroPerPhase[PhaseFinizen],
		HoldCap:       10_000,
		HoldCoefMicro: 1_000, // 0.001
		NrCoefMicro:   100,   // 0.0001
		AttestorKey:   attestorKey,
		MaxSupply:     MaxSupply,
	}
}

// advancePhase lazily advances the network's phase if total_users has
// crossed a threshold, returning the new phase if it changed — the
// transition is performed lazily on any mutating call that observes
// the crossing. Caller must hold the network account lock.
func (n *NetworkState) advancePhase(now types.UnixSeconds) (Phase, bool) {
	next := PhaseForUserCount(n.TotalUsers)
	if next <= n.Phase {
		return n.Phase, false
	}
	n.Phase = next
	n.BaseRateMicro = BaseRateMicroPerPhase[next]
	n.LastPhaseTick = now
	return next, true
}
