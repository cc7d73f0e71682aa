package core

import (
	"finova/chain/fixedpoint"
	"finova/chain/runtime"
	"finova/chain/types"
)

// EffectKind enumerates the NFT card effects CORE can apply to a user.
// Kind 0 (EffectNone) marks an empty slot.
type EffectKind uint8

const (
	EffectNone EffectKind = iota
	EffectMiningBoost
	EffectXPBoost
	EffectRPBoost
	EffectQualityBoost
)

// knownEffectKinds is the closed menu apply_effect validates
// effect.kind against. EffectNone marks an empty slot and is never a
// valid instruction argument.
var knownEffectKinds = map[EffectKind]bool{
	EffectMiningBoost:  true,
	EffectXPBoost:      true,
	EffectRPBoost:      true,
	EffectQualityBoost: true,
}

// maxActiveEffects is the fixed slot count of ActiveEffects
// account ("effects: [Effect; 16]").
const maxActiveEffects = 16

// effectSlot is one entry of ActiveEffects.Slots. Stackable is carried
// per instance, not per kind: the same EffectKind can hold one
// non-stackable instance and any number of stackable ones side by
// side, e.g. a non-stackable MiningBoost granted by a network event
// alongside several stackable MiningBoost cards a user has used.
type effectSlot struct {
	Kind      EffectKind
	Magnitude uint32 // micro-multiplier bonus, e.g. 500_000 = +50%
	ExpiresAt types.UnixSeconds
	Stackable bool
}

// ActiveEffects is the per-user fixed-size effect account.
type ActiveEffects struct {
	Slots [maxActiveEffects]effectSlot
}

// evictExpired clears every slot whose ExpiresAt has passed, freeing
// room for new effects without requiring an explicit cleanup
// instruction ("expired effects are evicted lazily on next
// write").
func (a *ActiveEffects) evictExpired(now types.UnixSeconds) {
	for i := range a.Slots {
		if a.Slots[i].Kind != EffectNone && a.Slots[i].ExpiresAt <= now {
			a.Slots[i] = effectSlot{}
		}
	}
}

// Apply inserts a new effect, evicting expired slots first. A
// non-stackable instance refuses to coexist with any other active
// instance of the same kind, stackable or not; a stackable instance
// always coexists with whatever else of that kind is already active.
// Collision returns ErrInvalidEffect — one of the two codes the
// non-stack collision is permitted to use, chosen and recorded in
// DESIGN.md over ErrEffectSlotFull so the two failure modes (no slot
// at all vs. a same-kind non-stack collision) stay distinguishable.
func (a *ActiveEffects) Apply(kind EffectKind, magnitude uint32, expiresAt types.UnixSeconds, now types.UnixSeconds, stackable bool) error {
	a.evictExpired(now)
	if !stackable {
		for _, s := range a.Slots {
			if s.Kind == kind {
				return ErrInvalidEffect
			}
		}
	}
	for i := range a.Slots {
		if a.Slots[i].Kind == EffectNone {
			a.Slots[i] = effectSlot{Kind: kind, Magnitude: magnitude, ExpiresAt: expiresAt, Stackable: stackable}
			return nil
		}
	}
	return ErrEffectSlotFull
}

// TotalMultiplier composes every currently active (non-expired)
// instance of kind into a single clamped micro-multiplier: mining.go
// folds the MiningBoost result into E(u), activity.go folds XPBoost
// into a user's own XP gain, and RPBoost folds into the ripple share
// credited to an ancestor. Instances of the same kind multiply
// together regardless of their own Stackable flag — stacking only
// gates whether a new instance may be inserted, not whether an
// already-active one contributes here.
func (a *ActiveEffects) TotalMultiplier(kind EffectKind, now types.UnixSeconds) types.MicroValue {
	acc := fixedpoint.One
	for _, s := range a.Slots {
		if s.Kind != kind || s.ExpiresAt <= now {
			continue
		}
		acc = fixedpoint.MulMicroClamped(acc, fixedpoint.One+types.MicroValue(s.Magnitude))
	}
	return acc
}

// ApplyEffect implements the NFT-card apply_effect instruction:
// chain/nft CPIs into this before it decrements or burns the card, and
// consumes the card only if this call succeeds. auth must
// name the NFT program and its effects-authority PDA — NFT never
// mutates CORE state except by calling CORE's apply_effect with the
// NFT program's PDA as signer.
func (c *Core) ApplyEffect(auth runtime.CallerAuth, signer types.Pubkey, kind EffectKind, magnitude uint32, durationSeconds int64, now types.UnixSeconds, stackable bool) error {
	if err := runtime.RequireAuthority(auth, runtime.ProgramNFT, runtime.NFTEffectsAuthority()); err != nil {
		return ErrUnauthorizedCaller
	}
	if !knownEffectKinds[kind] {
		return ErrInvalidEffect
	}
	var net NetworkState
	c.networkLock.WithRLock(networkAccountID, func() { net = c.network })
	if net.Paused {
		return ErrPaused
	}

	err := c.locks.WithLock(signer, func() error {
		eff, ok := c.effectsAccount(signer)
		if !ok {
			return ErrAccountNotFound
		}
		return eff.Apply(kind, magnitude, now+types.UnixSeconds(durationSeconds), now, stackable)
	})
	if err != nil {
		return err
	}
	c.events.Emit(EffectApplied{User: signer, Kind: kind, Magnitude: magnitude, ExpiresAt: now + types.UnixSeconds(durationSeconds), Stackable: stackable})
	return nil
}
