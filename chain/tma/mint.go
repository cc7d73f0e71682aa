// Package tma is the Token Mint Authority program: it holds
// mint authority for the utility token and exposes a single permissioned
// entry point CORE reaches through a CPI. Balance bookkeeping here is
// grounded on chain/types/token.go's TokenSupply (map-of-balances plus a
// running total), narrowed from its general transfer/stake/burn surface
// down to the mint-only authority assigns to TMA.
package tma

import (
	"sync"

	"finova/chain/runtime"
	"finova/chain/types"

	"github.com/holiman/uint256"
)

// Mint is the TMA program's state: a balances ledger and the running
// total minted, capped by MaxSupply (the NetworkState.total_minted
// invariant, mirrored here as the authoritative supply counter).
type Mint struct {
	mu            sync.RWMutex
	MaxSupply     types.BaseUnits
	TotalMinted   types.BaseUnits
	balances      map[types.Pubkey]types.BaseUnits
	mintAuthority types.Pubkey
}

// NewMint builds an empty Mint authorized to accept CPIs only from the
// given mint-authority PDA ("a PDA derived from
// (\"core_mint_authority\")").
func NewMint(maxSupply types.BaseUnits, mintAuthority types.Pubkey) *Mint {
	return &Mint{
		MaxSupply:     maxSupply,
		balances:      make(map[types.Pubkey]types.BaseUnits),
		mintAuthority: mintAuthority,
	}
}

// MintRewards implements TMA's mint_rewards entry point ("a
// single permissioned mint_rewards(recipient, amount) callable only by
// Core via CPI under a known PDA"). It satisfies chain/core.TokenLedger.
func (m *Mint) MintRewards(auth runtime.CallerAuth, to types.Pubkey, amount types.BaseUnits) error {
	if err := runtime.RequireAuthority(auth, runtime.ProgramCore, m.mintAuthority); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sum, err := m.TotalMinted.AddChecked(amount)
	if err != nil {
		return types.ErrMathOverflow
	}
	if sum > m.MaxSupply {
		return types.ErrMathOverflow
	}
	// Re-derive the same sum through a 256-bit accumulator as a second,
	// independent check that uint64 wraparound never slipped past
	// AddChecked above before a cap this consequential is cleared.
	wideSum := new(uint256.Int).Add(
		uint256.NewInt(uint64(m.TotalMinted)),
		uint256.NewInt(uint64(amount)),
	)
	if !wideSum.Eq(uint256.NewInt(uint64(sum))) || wideSum.Gt(uint256.NewInt(uint64(m.MaxSupply))) {
		return types.ErrMathOverflow
	}
	bal, err := m.balances[to].AddChecked(amount)
	if err != nil {
		return types.ErrMathOverflow
	}
	m.balances[to] = bal
	m.TotalMinted = sum
	return nil
}

// BalanceOf returns a token account's minted balance. chain/api has no
// endpoint that exposes it.
func (m *Mint) BalanceOf(account types.Pubkey) types.BaseUnits {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[account]
}
