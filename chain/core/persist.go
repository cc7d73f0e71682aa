package core

import (
	"encoding/json"

	"finova/chain/types"
)

// accountSnapshot is the on-disk shape of a full Core capture: every
// account family keyed by the hex pubkey it lives at, so Snapshot and
// Restore never depend on map iteration order.
type accountSnapshot struct {
	Network  NetworkState
	Users    map[string]*UserState
	XP       map[string]*XPState
	Referral map[string]*ReferralState
	Staking  map[string]*StakingState
	Effects  map[string]*ActiveEffects
	Mining   map[string]*MiningAccrual
	Nonces   map[string]uint64
}

// Snapshot serializes the network state and every per-user account
// family listed in accountSnapshot, plus the nonces, into a single JSON
// document. Governance votes and proposals and the per-user quality
// windows are not captured; Restore starts each restored user with an
// empty quality window. cmd/finova-node writes the result to a runtime.Store
// on a timer and at shutdown, and feeds it back through Restore at
// startup.
func (c *Core) Snapshot() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := accountSnapshot{
		Network:  c.network,
		Users:    make(map[string]*UserState, len(c.users)),
		XP:       make(map[string]*XPState, len(c.xp)),
		Referral: make(map[string]*ReferralState, len(c.referral)),
		Staking:  make(map[string]*StakingState, len(c.staking)),
		Effects:  make(map[string]*ActiveEffects, len(c.effects)),
		Mining:   make(map[string]*MiningAccrual, len(c.mining)),
		Nonces:   make(map[string]uint64, len(c.nonces)),
	}
	for id, u := range c.users {
		snap.Users[id.Hex()] = u
	}
	for id, x := range c.xp {
		snap.XP[id.Hex()] = x
	}
	for id, r := range c.referral {
		snap.Referral[id.Hex()] = r
	}
	for id, s := range c.staking {
		snap.Staking[id.Hex()] = s
	}
	for id, e := range c.effects {
		snap.Effects[id.Hex()] = e
	}
	for id, m := range c.mining {
		snap.Mining[id.Hex()] = m
	}
	for id, n := range c.nonces {
		snap.Nonces[id.Hex()] = n
	}
	return json.Marshal(snap)
}

// Restore replaces Core's in-memory accounts with a previously captured
// Snapshot. It must run before any concurrent operation begins —
// exactly once at startup, right after New.
func (c *Core) Restore(data []byte) error {
	var snap accountSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.network = snap.Network
	for hexID, u := range snap.Users {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.users[id] = u
			if c.quality[id] == nil {
				c.quality[id] = &qualityWindow{}
			}
		}
	}
	for hexID, x := range snap.XP {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.xp[id] = x
		}
	}
	for hexID, r := range snap.Referral {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.referral[id] = r
		}
	}
	for hexID, s := range snap.Staking {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.staking[id] = s
		}
	}
	for hexID, e := range snap.Effects {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.effects[id] = e
		}
	}
	for hexID, m := range snap.Mining {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.mining[id] = m
		}
	}
	for hexID, n := range snap.Nonces {
		if id, err := types.HexToPubkey(hexID); err == nil {
			c.nonces[id] = n
		}
	}
	return nil
}
