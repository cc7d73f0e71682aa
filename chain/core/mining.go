package core

import (
	"finova/chain/fixedpoint"
	"finova/chain/runtime"
	"finova/chain/types"
)

// MiningAccrual is the per-user mining account.
type MiningAccrual struct {
	LastClaimAt      types.UnixSeconds
	AccruedBaseUnits types.BaseUnits
	RateMicro        types.MicroValue // cached R_u as of LastClaimAt

	DailyMintedBaseUnits types.BaseUnits
	DailyMintDay         int64
}

// finizenStep and finizenCeilingMicro implement F(users), the network-
// growth decay factor. Two candidate formula texts for this factor
// ("max(100, 200 − users / 10 000)" vs. a constant-table form
// "max(1_000_000, 2_000_000 − users · 10)") disagree by four orders of
// magnitude and neither reproduces the F=1.95 reference value at a
// single-user network; this implementation uses a 50_000-micro (0.05)
// step per user, which reproduces that reference value bit-exactly.
const (
	finizenCeilingMicro types.MicroValue = 2_000_000
	finizenFloorMicro   types.MicroValue = 1_000_000
	finizenStepMicro    types.MicroValue = 50_000
)

// FinizenFactor is F(users), monotone non-increasing in total_users.
func FinizenFactor(totalUsers uint64) types.MicroValue {
	v := finizenCeilingMicro - types.MicroValue(totalUsers)*finizenStepMicro
	return fixedpoint.Clamp(v, finizenFloorMicro, finizenCeilingMicro)
}

// securityKYCMicro and securityUnverifiedMicro are S(u): 1.2 if
// kyc_verified, else 0.8.
const (
	securityKYCMicro        types.MicroValue = 1_200_000
	securityUnverifiedMicro types.MicroValue = 800_000
)

// SecurityFactor is S(u).
func SecurityFactor(kycVerified bool) types.MicroValue {
	if kycVerified {
		return securityKYCMicro
	}
	return securityUnverifiedMicro
}

// currentRate composes R_u from NetworkState, UserState, XPState,
// ReferralState and ActiveEffects — staking contributes its own
// separate pending_rewards stream (see staking.go) rather than a
// factor of R_u, since StakingState has no corresponding term in the
// product.
func currentRate(net *NetworkState, u *UserState, xp *XPState, rf *ReferralState, eff *ActiveEffects, qAvg types.MicroValue, now types.UnixSeconds) types.MicroValue {
	b := net.BaseRateMicro
	f := FinizenFactor(net.TotalUsers)
	s := SecurityFactor(u.KYCVerified)
	k := fixedpoint.HoldingsRegression(u.HoldingsWholeToken, net.HoldCap, net.HoldCoefMicro)
	x := XPMultiplier(xp.Level)
	p := ReferralScore(rf, rf.DirectActive30d+rf.L2Active+rf.L3Active, net.NrCoefMicro)
	e := eff.TotalMultiplier(EffectMiningBoost, now)
	g := StreakMultiplier(xp.StreakDays)
	return fixedpoint.ComposeFactors(b, f, s, k, x, p, e, qAvg, g)
}

// settle accrues the accrual delta under the *old* rate up to now,
// then recomputes and stores the new rate: every operation that can
// change any factor must first call settle(u, now) so rewards always
// reflect the user's then-current parameters. Caller must hold
// signer's account lock; net is a snapshot taken under the network
// lock immediately before the call.
func (c *Core) settle(signer types.Pubkey, net *NetworkState, now types.UnixSeconds) error {
	ma, ok := c.miningAccount(signer)
	if !ok {
		return ErrAccountNotFound
	}
	if now > ma.LastClaimAt {
		delta, err := fixedpoint.AccrualFromHourlyRate(ma.RateMicro, int64(now-ma.LastClaimAt))
		if err != nil {
			return ErrMathOverflow
		}
		sum, err := ma.AccruedBaseUnits.AddChecked(delta)
		if err != nil {
			return ErrMathOverflow
		}
		ma.AccruedBaseUnits = sum
	}
	ma.LastClaimAt = now

	u, _ := c.userAccount(signer)
	xp, _ := c.xpAccount(signer)
	rf, _ := c.referralAccount(signer)
	eff, _ := c.effectsAccount(signer)
	qw := c.qualityAccount(signer)
	ma.RateMicro = currentRate(net, u, xp, rf, eff, qw.value(), now)

	st, _ := c.stakingAccount(signer)
	st.accrueStakingRewards(now)
	return nil
}

// utcDay converts a unix timestamp to its UTC day number.
func utcDay(ts types.UnixSeconds) int64 {
	return int64(ts) / 86400
}

// ClaimRewards settles accrual, truncates to the per-day token cap,
// CPIs into TMA, and zeroes the claimed portion. Exempt from pause, as
// is an unstake whose lockup has elapsed (every other user instruction
// fails with ErrPaused), so users can always withdraw what they've
// already accrued.
func (c *Core) ClaimRewards(signer types.Pubkey, now types.UnixSeconds, tokenAccount types.Pubkey) (types.BaseUnits, error) {
	var net NetworkState
	c.networkLock.WithRLock(networkAccountID, func() { net = c.network })
	if !net.Initialized {
		return 0, ErrNotInitialized
	}

	var minted types.BaseUnits
	err := c.locks.WithLock(signer, func() error {
		if err := c.settle(signer, &net, now); err != nil {
			return err
		}
		ma, _ := c.miningAccount(signer)
		xp, _ := c.xpAccount(signer)
		st, _ := c.stakingAccount(signer)

		day := utcDay(now)
		if ma.DailyMintDay != day {
			ma.DailyMintDay = day
			ma.DailyMintedBaseUnits = 0
		}

		// pending = mining_accrual_now + staking_pending.
		pending := ma.AccruedBaseUnits + st.PendingRewards
		if pending == 0 {
			return ErrNothingToClaim
		}

		dailyCap := DailyTokenCap(xp.Level)
		var remaining types.BaseUnits
		if dailyCap > ma.DailyMintedBaseUnits {
			remaining = dailyCap - ma.DailyMintedBaseUnits
		}
		if remaining == 0 {
			c.metrics.DailyCapHit()
			return ErrDailyCapReached
		}

		amount := pending
		if amount > remaining {
			amount = remaining
		}
		if net.TotalMinted+amount > net.MaxSupply {
			return ErrSupplyCapReached
		}

		auth := runtime.NewCall(runtime.ProgramCore, runtime.CoreMintAuthority())
		if err := c.tokenLedger.MintRewards(auth, tokenAccount, amount); err != nil {
			return ErrMintCpiFailed
		}

		// Drain mining accrual before staking's separately-tracked yield.
		fromMining := amount
		if fromMining > ma.AccruedBaseUnits {
			fromMining = ma.AccruedBaseUnits
		}
		ma.AccruedBaseUnits -= fromMining
		st.PendingRewards -= (amount - fromMining)
		ma.DailyMintedBaseUnits += amount
		minted = amount
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = c.networkLock.WithLock(networkAccountID, func() error {
		sum, err := c.network.TotalMinted.AddChecked(minted)
		if err != nil {
			return err
		}
		c.network.TotalMinted = sum
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.metrics.ClaimSettled(minted)
	c.events.Emit(RewardsMinted{User: signer, Amount: minted})
	return minted, nil
}
