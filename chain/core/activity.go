package core

import (
	"finova/chain/fixedpoint"
	"finova/chain/oca"
	"finova/chain/types"

	"golang.org/x/crypto/ed25519"
)

// SubmitActivity verifies the attestation, accrues XP, ripples RP to
// the referrer chain, and re-settles the mining rate so the new XP
// level and streak take effect immediately.
func (c *Core) SubmitActivity(signer types.Pubkey, report oca.ActivityReport, att oca.QualityAttestation, now types.UnixSeconds) error {
	var net NetworkState
	c.networkLock.WithRLock(networkAccountID, func() { net = c.network })
	if !net.Initialized {
		return ErrNotInitialized
	}
	if net.Paused {
		return ErrPaused
	}
	if report.User != signer {
		return ErrUnauthorized
	}
	if err := report.Verify(ed25519.PublicKey(net.AttestorKey[:]), att); err != nil {
		return ErrBadSignature
	}
	if !report.WithinFreshnessWindow(now) {
		return ErrStaleAttestation
	}

	var xpGain uint64
	var rpShares [3]uint64

	err := c.locks.WithLock(signer, func() error {
		u, ok := c.userAccount(signer)
		if !ok {
			return ErrAccountNotFound
		}

		c.mu.Lock()
		last := c.nonces[signer]
		if report.Nonce <= last {
			c.mu.Unlock()
			return ErrReplayDetected
		}
		c.nonces[signer] = report.Nonce
		c.mu.Unlock()

		xp, _ := c.xpAccount(signer)
		qw := c.qualityAccount(signer)
		qAvg := qw.update(report.QualityMicro)
		eff, hasEffects := c.effectsAccount(signer)

		day := utcDay(now)
		prevDay := utcDay(u.LastActive)
		if u.CreatedAt != 0 && day != prevDay {
			if prevDay == day-1 {
				xp.StreakDays++
			} else {
				xp.StreakDays = 1
			}
			xp.DailyXP = 0
		}

		gain := ComputeXPGain(report.ActivityKind, report.Platform, report.QualityMicro, xp.StreakDays, xp.Level)
		if hasEffects {
			if boost := eff.TotalMultiplier(EffectXPBoost, now); boost != fixedpoint.One {
				if boosted, err := fixedpoint.MulMicro(types.MicroValue(gain)*fixedpoint.One, boost); err == nil {
					gain = uint64(boosted) / types.MicroScale
				}
			}
		}
		cap := DailyXPCap(xp.Level)
		if uint64(xp.DailyXP)+gain > uint64(cap) {
			gain = uint64(cap) - uint64(xp.DailyXP)
		}
		if gain == 0 {
			return ErrDailyCapReached
		}

		xp.DailyXP += uint32(gain)
		xp.TotalXP += gain
		xp.Level = LevelForXP(xp.TotalXP)
		xpGain = gain

		rf, _ := c.referralAccount(signer)
		_ = qAvg
		rf.QualityMicro = uint32(fixedpoint.Clamp(types.MicroValue(rf.QualityMicro)+types.MicroValue(report.QualityMicro), 0, types.MicroScale*2)) / 2

		u.LastActive = now

		if err := c.settle(signer, &net, now); err != nil {
			return err
		}

		rpShares = RippleShares(gain)
		return nil
	})
	if err != nil {
		return err
	}

	c.rippleReferrals(signer, rpShares, now, &net)

	c.metrics.ActivitySubmitted()
	c.events.Emit(ActivitySettled{User: signer, XPGain: xpGain, RPGain: rpShares[0] + rpShares[1] + rpShares[2]})
	return nil
}

// rippleReferrals credits up to 3 ancestors of signer's referrer chain
// with their ripple share, each under its own account lock.
func (c *Core) rippleReferrals(signer types.Pubkey, shares [3]uint64, now types.UnixSeconds, net *NetworkState) {
	c.mu.RLock()
	chain := c.referrerChain(signer, 3)
	c.mu.RUnlock()

	for i, ancestor := range chain {
		share := shares[i]
		if share == 0 {
			continue
		}
		c.locks.WithLock(ancestor, func() error {
			rf, ok := c.referralAccount(ancestor)
			if !ok {
				return nil
			}
			boostedShare := share
			if eff, ok := c.effectsAccount(ancestor); ok {
				if boost := eff.TotalMultiplier(EffectRPBoost, now); boost != fixedpoint.One {
					if boosted, err := fixedpoint.MulMicro(types.MicroValue(share)*fixedpoint.One, boost); err == nil {
						boostedShare = uint64(boosted) / types.MicroScale
					}
				}
			}
			rf.TotalRP += boostedShare
			rf.Tier = TierForTotalRP(rf.TotalRP)
			c.settle(ancestor, net, now)
			return nil
		})
	}
}
