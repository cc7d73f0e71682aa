package core

import (
	"finova/chain/fixedpoint"
	"finova/chain/types"
)

// StakingTier is the $sFIN staking bracket of STAKE_TIERS.
type StakingTier uint8

const (
	StakeNone StakingTier = iota
	StakeBronze
	StakeSilver
	StakeGold
	StakePlatinum
	StakeDiamond
)

func (t StakingTier) String() string {
	switch t {
	case StakeBronze:
		return "Bronze"
	case StakeSilver:
		return "Silver"
	case StakeGold:
		return "Gold"
	case StakePlatinum:
		return "Platinum"
	case StakeDiamond:
		return "Diamond"
	default:
		return "None"
	}
}

// stakingTierTable maps STAKE_TIERS (100, 500, 1 000, 5 000,
// 10 000 whole tokens) to a tier and its annualized yield. The yield
// values themselves are not specified by the design (StakingState's
// `pending_rewards` field implies a separate accrual stream but gives
// no rate table); the rates below are chosen here.
var stakingTierTable = [...]struct {
	tier     StakingTier
	minStake uint64
	apyMicro types.MicroValue
}{
	{StakeDiamond, 10_000, 250_000}, // 25% APY
	{StakePlatinum, 5_000, 180_000}, // 18%
	{StakeGold, 1_000, 120_000},     // 12%
	{StakeSilver, 500, 80_000},      // 8%
	{StakeBronze, 100, 50_000},      // 5%
	{StakeNone, 0, 0},
}

const secondsPerYear = 365 * 24 * 3600

// minStakeStep is the smallest single stake instruction allows.
const minStakeStep = 10

// TierForStake returns the StakingTier a staked whole-token amount
// qualifies for (the STAKE_TIERS), monotone non-decreasing.
func TierForStake(staked uint64) StakingTier {
	for _, row := range stakingTierTable {
		if staked >= row.minStake {
			return row.tier
		}
	}
	return StakeNone
}

func apyMicroForTier(tier StakingTier) types.MicroValue {
	for _, row := range stakingTierTable {
		if row.tier == tier {
			return row.apyMicro
		}
	}
	return 0
}

// unstakeLockupSeconds is how long a stake must age from StakedAt
// before it unstakes penalty-free.
const unstakeLockupSeconds = 14 * 24 * 3600

// earlyUnstakePenaltyMicro is the penalty on principal forfeited by an
// unstake inside the lockup window (10% chosen and recorded in
// DESIGN.md).
const earlyUnstakePenaltyMicro = 100_000 // 10%

// StakingState is the per-user staking account.
type StakingState struct {
	StakedWholeToken uint64
	Tier             StakingTier
	StakedAt         types.UnixSeconds
	LastRewardUpdate types.UnixSeconds
	PendingRewards   types.BaseUnits
}

// accrueStakingRewards prorates the tier's annualized yield over the
// elapsed window and folds it into PendingRewards, mirroring mining's
// settle-at-old-rate discipline applied to the staking yield
// StakingState separately accrues.
func (st *StakingState) accrueStakingRewards(now types.UnixSeconds) {
	if now <= st.LastRewardUpdate || st.StakedWholeToken == 0 {
		st.LastRewardUpdate = now
		return
	}
	apy := apyMicroForTier(st.Tier)
	if apy > 0 {
		annual, err := fixedpoint.MulMicro(types.MicroValue(st.StakedWholeToken)*types.MicroValue(types.OneToken), apy)
		if err == nil {
			reward, err := fixedpoint.ProrateBaseUnits(types.BaseUnits(annual), int64(now-st.LastRewardUpdate), secondsPerYear)
			if err == nil {
				st.PendingRewards += reward
			}
		}
	}
	st.LastRewardUpdate = now
}

// Stake settles any pending staking yield at the old tier, increases
// staked balance, and recomputes tier. Token custody is TMA/token-
// program's concern; Core only tracks the bookkeeping that feeds the
// yield accrual and StakeChanged event.
func (c *Core) Stake(signer types.Pubkey, amountWholeToken uint64, now types.UnixSeconds) (StakingTier, error) {
	if amountWholeToken == 0 {
		return StakeNone, ErrInvalidAmount
	}
	if amountWholeToken < minStakeStep {
		return StakeNone, ErrBelowMinStake
	}
	var net NetworkState
	c.networkLock.WithRLock(networkAccountID, func() { net = c.network })
	if net.Paused {
		return StakeNone, ErrPaused
	}
	var newTier StakingTier
	var newStaked uint64
	err := c.locks.WithLock(signer, func() error {
		st, ok := c.stakingAccount(signer)
		if !ok {
			return ErrAccountNotFound
		}
		st.accrueStakingRewards(now)
		if st.StakedWholeToken == 0 {
			st.StakedAt = now
		}
		st.StakedWholeToken += amountWholeToken
		st.Tier = TierForStake(st.StakedWholeToken)
		newTier = st.Tier
		newStaked = st.StakedWholeToken
		return nil
	})
	if err != nil {
		return StakeNone, err
	}
	c.events.Emit(StakeChanged{User: signer, NewStaked: newStaked, NewTier: newTier})
	return newTier, nil
}

// Unstake implements unstake(amount) as a single atomic operation:
// it decreases the staked balance and returns the released whole-token
// amount in the same call, applying the early-exit penalty inline
// whenever the lockup hasn't yet elapsed rather than failing the
// instruction and requiring a second call. stake(a) followed by
// unstake(a) round-trips in one pair of calls whenever that pair
// happens inside the same lockup window, net of the penalty.
func (c *Core) Unstake(signer types.Pubkey, amountWholeToken uint64, now types.UnixSeconds) (uint64, error) {
	var net NetworkState
	c.networkLock.WithRLock(networkAccountID, func() { net = c.network })
	var released uint64
	var newTier StakingTier
	var newStaked uint64
	err := c.locks.WithLock(signer, func() error {
		st, ok := c.stakingAccount(signer)
		if !ok {
			return ErrAccountNotFound
		}
		if amountWholeToken == 0 || amountWholeToken > st.StakedWholeToken {
			return ErrOverdrawn
		}
		if net.Paused && now < st.StakedAt+unstakeLockupSeconds {
			return ErrPaused
		}
		st.accrueStakingRewards(now)

		amount := amountWholeToken
		if now < st.StakedAt+unstakeLockupSeconds {
			penalty, err := fixedpoint.MulMicro(types.MicroValue(amount), earlyUnstakePenaltyMicro)
			if err == nil {
				amount -= uint64(penalty)
			}
		}

		st.StakedWholeToken -= amountWholeToken
		st.Tier = TierForStake(st.StakedWholeToken)
		if st.StakedWholeToken == 0 {
			st.StakedAt = 0
		}
		released = amount
		newTier = st.Tier
		newStaked = st.StakedWholeToken
		return nil
	})
	if err != nil {
		return 0, err
	}
	c.events.Emit(StakeChanged{User: signer, NewStaked: newStaked, NewTier: newTier})
	return released, nil
}
