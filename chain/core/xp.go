package core

import (
	"finova/chain/fixedpoint"
	"finova/chain/oca"
	"finova/chain/types"
)

// XPState is the per-user XP account.
type XPState struct {
	TotalXP    uint64
	Level      uint16 // 0..200
	StreakDays uint16
	LastXPDay  int64 // not written by SubmitActivity, which takes the previous activity day from UserState.LastActive
	DailyXP    uint32
}

// MaxLevel is the top of the level curve ("level: u16 (0..=200)").
const MaxLevel uint16 = 200

// levelBreakpoint is one knot of the piecewise cumulative-XP curve:
// at level Level, the cumulative total_xp threshold is exactly
// CumulativeXP.
type levelBreakpoint struct {
	Level        uint16
	CumulativeXP uint64
	PerLevelStep uint64 // left zero by buildLevelCurve; CumulativeXPForLevel derives the step from adjacent breakpoints
}

// levelCurve encodes the level curve directly from its
// cumulative-threshold definition:
//
//	1..10:    cumulative(L)  = 100*L
//	11..25:   cumulative(L)  = cumulative(10) + 200*(L-10)
//	26..50:   cumulative(L)  = cumulative(25) + 400*(L-25)
//	51..75:   cumulative(L)  = cumulative(50) + 800*(L-50)
//	76..100:  cumulative(L)  = cumulative(75) + 1600*(L-75)
//	101..200: cumulative(L)  = cumulative(100) + 3200*(L-100)
var levelCurve = buildLevelCurve()

func buildLevelCurve() []levelBreakpoint {
	brackets := []struct {
		upper uint16
		step  uint64
	}{
		{10, 0}, // step 0 marks the first bracket, whose per-level cost is 100*L itself (not a flat step)
		{25, 200},
		{50, 400},
		{75, 800},
		{100, 1600},
		{200, 3200},
	}
	curve := make([]levelBreakpoint, 0, len(brackets)+1)
	curve = append(curve, levelBreakpoint{Level: 0, CumulativeXP: 0})
	var prevUpper uint16 = 0
	var prevCum uint64 = 0
	for _, b := range brackets {
		var cum uint64
		if b.step == 0 {
			cum = 100 * uint64(b.upper)
		} else {
			cum = prevCum + b.step*uint64(b.upper-prevUpper)
		}
		curve = append(curve, levelBreakpoint{Level: b.upper, CumulativeXP: cum})
		prevUpper = b.upper
		prevCum = cum
	}
	return curve
}

// CumulativeXPForLevel returns the minimum total_xp at which a user is
// at least `level`.
func CumulativeXPForLevel(level uint16) uint64 {
	if level == 0 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	for i := 1; i < len(levelCurve); i++ {
		lo, hi := levelCurve[i-1], levelCurve[i]
		if level <= hi.Level {
			if hi.Level == lo.Level {
				return hi.CumulativeXP
			}
			if i == 1 {
				// First bracket: cumulative(L) = 100*L directly.
				return 100 * uint64(level)
			}
			step := (hi.CumulativeXP - lo.CumulativeXP) / uint64(hi.Level-lo.Level)
			return lo.CumulativeXP + step*uint64(level-lo.Level)
		}
	}
	return levelCurve[len(levelCurve)-1].CumulativeXP
}

// LevelForXP is L(total_xp): the largest level whose cumulative
// threshold is <= totalXP, monotone non-decreasing. A brand-new user
// with zero XP is level 0.
func LevelForXP(totalXP uint64) uint16 {
	lvl := uint16(0)
	for l := uint16(1); l <= MaxLevel; l++ {
		if CumulativeXPForLevel(l) <= totalXP {
			lvl = l
		} else {
			break
		}
	}
	return lvl
}

// DailyXPCap is DAILY_XP_CAP(level). Chosen default: grows 10% per
// level over a 1000 XP base.
func DailyXPCap(level uint16) uint32 {
	return uint32(1000 + 100*uint64(level))
}

// DailyTokenCap is DAILY_CAP_BASE(level) bounding claimable tokens per
// UTC day. Chosen so level 0 and level 1 are both exactly 0.5 token.
func DailyTokenCap(level uint16) types.BaseUnits {
	if level == 0 {
		level = 1
	}
	return types.BaseUnits(500_000_000 + 50_000_000*uint64(level-1))
}

// decayMicro is decay(level) = exp_micro(-0.01*level).
func decayMicro(level uint16) types.MicroValue {
	const coefMicro = 10_000 // 0.01
	return fixedpoint.ExpMicro(types.MicroValue(coefMicro * int64(level)))
}

// StreakMultiplier is G(streak_days), piecewise-linear up to day 90 and
// then asymptotic:
//
//	0d -> 1.00x, 7d -> 1.35x, 30d -> 1.81x, 90d -> 2.41x,
//	>90d -> min(3.0, 2.41 + 0.005*(days-90))
func StreakMultiplier(days uint16) types.MicroValue {
	type knot struct {
		day  uint16
		mult types.MicroValue
	}
	knots := []knot{
		{0, fixedpoint.One},
		{7, 1_350_000},
		{30, 1_810_000},
		{90, 2_410_000},
	}
	if days >= 90 {
		extra := types.MicroValue(days-90) * 5_000 // 0.005 per day, in micro units
		v := knots[len(knots)-1].mult + extra
		return fixedpoint.Clamp(v, fixedpoint.One, 3_000_000)
	}
	for i := 1; i < len(knots); i++ {
		lo, hi := knots[i-1], knots[i]
		if days <= hi.day {
			span := int64(hi.day - lo.day)
			if span == 0 {
				return hi.mult
			}
			frac := int64(days-lo.day) * int64(hi.mult-lo.mult) / span
			return lo.mult + types.MicroValue(frac)
		}
	}
	return knots[len(knots)-1].mult
}

// XPMultiplier is X(u) = min(5.0, 1.0 + level/100).
func XPMultiplier(level uint16) types.MicroValue {
	v := fixedpoint.One + types.MicroValue(level)*fixedpoint.One/100
	return fixedpoint.Clamp(v, fixedpoint.One, 5_000_000)
}

// ActivityBaseGainMicro is base[activity_kind] from XP gain
// formula, in whole XP (ComputeXPGain lifts it to micro-units, applies
// the factors and scales the result back to whole XP).
// Implementer-chosen defaults.
var ActivityBaseGainMicro = map[oca.ActivityKind]uint64{
	oca.ActivityPost:           50,
	oca.ActivityComment:        10,
	oca.ActivityShare:          20,
	oca.ActivityLike:           2,
	oca.ActivityReferralAction: 30,
}

// PlatformMultiplier is platform_mult from the same formula.
var PlatformMultiplier = map[oca.Platform]types.MicroValue{
	oca.PlatformGeneric:   fixedpoint.One,
	oca.PlatformX:         1_100_000,
	oca.PlatformInstagram: 1_050_000,
	oca.PlatformTikTok:    1_200_000,
	oca.PlatformYouTube:   1_150_000,
}

// ComputeXPGain implements:
//
//	gain = base[activity_kind] * platform_mult * quality_micro/1e6 * streak_mult * decay(level)
func ComputeXPGain(kind oca.ActivityKind, platform oca.Platform, qualityMicro uint32, streakDays uint16, level uint16) uint64 {
	base := ActivityBaseGainMicro[kind]
	if base == 0 {
		return 0
	}
	factor := fixedpoint.ComposeFactors(
		PlatformMultiplier[platform],
		types.MicroValue(qualityMicro),
		StreakMultiplier(streakDays),
		decayMicro(level))
	gain, err := fixedpoint.MulMicro(types.MicroValue(base)*fixedpoint.One, factor)
	if err != nil {
		return 0
	}
	return uint64(gain) / types.MicroScale
}
