package core

import (
	"finova/chain/fixedpoint"
	"finova/chain/types"
)

// ReferralTier is T(total_rp), the referral-network tier.
type ReferralTier uint8

const (
	TierExplorer ReferralTier = iota
	TierConnector
	TierInfluencer
	TierLeader
	TierAmbassador
)

func (t ReferralTier) String() string {
	switch t {
	case TierExplorer:
		return "Explorer"
	case TierConnector:
		return "Connector"
	case TierInfluencer:
		return "Influencer"
	case TierLeader:
		return "Leader"
	case TierAmbassador:
		return "Ambassador"
	default:
		return "Unknown"
	}
}

// tierRPThresholds are the total_rp bands: Explorer [0,1k), Connector
// [1k,5k), Influencer [5k,15k), Leader [15k,50k), Ambassador [50k,∞).
var tierRPThresholds = [...]struct {
	tier ReferralTier
	min  uint64
}{
	{TierAmbassador, 50_000},
	{TierLeader, 15_000},
	{TierInfluencer, 5_000},
	{TierConnector, 1_000},
	{TierExplorer, 0},
}

// TierForTotalRP is T(total_rp), monotone non-decreasing.
func TierForTotalRP(totalRP uint64) ReferralTier {
	for _, t := range tierRPThresholds {
		if totalRP >= t.min {
			return t.tier
		}
	}
	return TierExplorer
}

// tierMultMicro is TIER_MULT: {1.00, 1.20, 1.50, 2.00, 3.00}.
var tierMultMicro = [...]types.MicroValue{
	TierExplorer:   1_000_000,
	TierConnector:  1_200_000,
	TierInfluencer: 1_500_000,
	TierLeader:     2_000_000,
	TierAmbassador: 3_000_000,
}

// ReferralState is the per-user referral account.
type ReferralState struct {
	TotalRP         uint64
	Tier            ReferralTier
	DirectActive30d uint32
	L2Active        uint32
	L3Active        uint32
	QualityMicro    uint32 // ∈ [0, 1e6], network-wide attested-activity quality
}

// ripplePercentMicro is RP_RIPPLE: a referred user's activity gain
// ripples upward through up to 3 levels of referrer: L1 10%, L2 3%,
// L3 1%.
var ripplePercentMicro = [3]types.MicroValue{100_000, 30_000, 10_000}

// RippleShares splits gain across up to 3 referrer levels, nearest
// first, per ripplePercentMicro.
func RippleShares(gain uint64) [3]uint64 {
	var shares [3]uint64
	for i, pct := range ripplePercentMicro {
		v, err := fixedpoint.MulMicro(types.MicroValue(gain), pct)
		if err != nil {
			continue
		}
		shares[i] = uint64(v)
	}
	return shares
}

// NetworkRegression is the anti-whale term inside P(u):
// exp_micro(−nrcoef · total_network · quality_micro / 1e6), so that
// ambassadors with large, low-quality networks are strictly dominated
// by ambassadors with smaller, high-quality ones.
func NetworkRegression(totalNetwork uint64, qualityMicro uint32, nrCoefMicro uint32) types.MicroValue {
	weighted, err := fixedpoint.MulMicro(types.MicroValue(totalNetwork)*fixedpoint.One, types.MicroValue(qualityMicro))
	if err != nil {
		weighted = fixedpoint.MaxRateMicro
	}
	exponentMicro, err := fixedpoint.MulMicro(types.MicroValue(nrCoefMicro), weighted)
	if err != nil {
		exponentMicro = fixedpoint.MaxRateMicro
	}
	return fixedpoint.ExpMicro(exponentMicro)
}

// ReferralScore is P(u) in the reward composition formula:
// P(u) = TIER_MULT[tier] * network_regression.
func ReferralScore(r *ReferralState, totalNetwork uint64, nrCoefMicro uint32) types.MicroValue {
	n := NetworkRegression(totalNetwork, r.QualityMicro, nrCoefMicro)
	return fixedpoint.MulMicroClamped(tierMultMicro[r.Tier], n)
}

// qualityWindow tracks a per-user exponentially-weighted mean of the
// last attested quality scores: Q_avg(u), the mean of the last N=64
// attested quality scores, clamped to [0.5, 2.0].
type qualityWindow struct {
	ewmaMicro uint32
	samples   uint32
}

// qualityAlphaMicro is the EWMA smoothing factor 2/(N+1) for N=64
// (≈0.0308): each new sample is weighted about 3.1% against the
// running average, approximating a trailing window of the last N=64
// samples.
const qualityAlphaMicro = 30_769

const (
	qualityFloorMicro uint32 = 500_000   // 0.5
	qualityCeilMicro  uint32 = 2_000_000 // 2.0
)

// update folds sampleMicro into the running average and returns the
// new Q_avg, clamped to [0.5, 2.0].
func (q *qualityWindow) update(sampleMicro uint32) uint32 {
	if q.samples == 0 {
		q.ewmaMicro = sampleMicro
	} else {
		next, errA := fixedpoint.MulMicro(types.MicroValue(sampleMicro), qualityAlphaMicro)
		prevWeighted, errB := fixedpoint.MulMicro(types.MicroValue(q.ewmaMicro), fixedpoint.One-qualityAlphaMicro)
		if errA == nil && errB == nil {
			q.ewmaMicro = uint32(next + prevWeighted)
		}
	}
	if q.samples < 1<<32-1 {
		q.samples++
	}
	if q.ewmaMicro < qualityFloorMicro {
		q.ewmaMicro = qualityFloorMicro
	}
	if q.ewmaMicro > qualityCeilMicro {
		q.ewmaMicro = qualityCeilMicro
	}
	return q.ewmaMicro
}

// value returns the current Q_avg, defaulting to neutral 1.0 before
// any sample has been recorded.
func (q *qualityWindow) value() types.MicroValue {
	if q.samples == 0 {
		return fixedpoint.One
	}
	return types.MicroValue(q.ewmaMicro)
}
