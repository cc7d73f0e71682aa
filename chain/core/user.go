package core

import (
	"finova/chain/types"
)

// UserFlag is a bit in UserState.Flags.
type UserFlag uint32

const (
	FlagNone UserFlag = 0
)

// UserState is the per-user CORE account.
type UserState struct {
	Authority          types.Pubkey
	CreatedAt          types.UnixSeconds
	LastActive         types.UnixSeconds
	KYCVerified        bool
	HumanProbMicro     uint32 // ∈ [0, 1e6]
	SuspicionScore     uint32
	Referrer           *types.Pubkey
	Flags              UserFlag
	HoldingsWholeToken uint64 // whole-token holdings used by K(u); off-chain mirror of the user's token account balance
}

// maxReferralHops is the chain depth initialize_user walks to reject a
// circular referral: walk the referrer chain up to 3 hops, reject if
// the signer appears.
const maxReferralHops = 3

// InitializeUser creates a new user's full account family (UserState,
// XPState, ReferralState, StakingState, ActiveEffects, MiningAccrual)
// and records the referrer immutably.
func (c *Core) InitializeUser(signer types.Pubkey, referrer *types.Pubkey, now types.UnixSeconds) error {
	if referrer != nil && referrer.Equal(signer) {
		return ErrSelfReferral
	}

	var newPhase Phase
	var phaseAdvanced bool

	err := c.networkLock.WithLock(networkAccountID, func() error {
		if !c.network.Initialized {
			return ErrNotInitialized
		}
		if c.network.Paused {
			return ErrPaused
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = c.locks.WithLock(signer, func() error {
		c.mu.Lock()
		defer c.mu.Unlock()

		if _, exists := c.users[signer]; exists {
			return ErrAlreadyInitialized
		}
		if referrer != nil {
			if err := c.checkCircularReferral(signer, *referrer); err != nil {
				return err
			}
		}

		c.users[signer] = &UserState{
			Authority:  signer,
			CreatedAt:  now,
			LastActive: now,
			Referrer:   referrer,
		}
		c.xp[signer] = &XPState{Level: 0}
		c.referral[signer] = &ReferralState{Tier: TierExplorer}
		c.staking[signer] = &StakingState{}
		c.effects[signer] = &ActiveEffects{}
		c.mining[signer] = &MiningAccrual{LastClaimAt: now}
		c.quality[signer] = &qualityWindow{}
		return nil
	})
	if err != nil {
		return err
	}

	err = c.networkLock.WithLock(networkAccountID, func() error {
		c.network.TotalUsers++
		newPhase, phaseAdvanced = c.network.advancePhase(now)
		return nil
	})
	if err != nil {
		return err
	}

	c.events.Emit(UserInitialized{User: signer, Referrer: referrer})
	if phaseAdvanced {
		c.events.Emit(PhaseAdvanced{NewPhase: newPhase})
	}
	return nil
}

// checkCircularReferral walks referrer's own referrer chain up to
// maxReferralHops looking for signer. Must be called before signer's
// UserState exists.
func (c *Core) checkCircularReferral(signer, referrer types.Pubkey) error {
	cur := referrer
	for hop := 0; hop < maxReferralHops; hop++ {
		if cur.Equal(signer) {
			return ErrCircularReferral
		}
		u, ok := c.users[cur]
		if !ok || u.Referrer == nil {
			return nil
		}
		cur = *u.Referrer
	}
	return nil
}

// referrerChain returns up to n ancestors of user's referrer chain,
// nearest first, used by the RP ripple computation.
func (c *Core) referrerChain(user types.Pubkey, n int) []types.Pubkey {
	chain := make([]types.Pubkey, 0, n)
	u, ok := c.users[user]
	if !ok {
		return chain
	}
	cur := u.Referrer
	for i := 0; i < n && cur != nil; i++ {
		chain = append(chain, *cur)
		next, ok := c.users[*cur]
		if !ok {
			break
		}
		cur = next.Referrer
	}
	return chain
}
