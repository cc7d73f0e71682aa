package tma

import (
	"testing"

	"finova/chain/runtime"
	"finova/chain/types"
)

func TestMintRewardsCreditsBalance(t *testing.T) {
	authority := runtime.CoreMintAuthority()
	m := NewMint(1_000_000, authority)
	auth := runtime.NewCall(runtime.ProgramCore, authority)

	to := types.BytesToPubkey([]byte("wallet"))
	if err := m.MintRewards(auth, to, 500); err != nil {
		t.Fatalf("MintRewards: %v", err)
	}
	if got := m.BalanceOf(to); got != 500 {
		t.Errorf("expected balance 500, got %d", got)
	}
	if m.TotalMinted != 500 {
		t.Errorf("expected TotalMinted 500, got %d", m.TotalMinted)
	}
}

func TestMintRewardsRejectsWrongAuthority(t *testing.T) {
	authority := runtime.CoreMintAuthority()
	m := NewMint(1_000_000, authority)
	wrongAuth := runtime.NewCall(runtime.ProgramTMA, authority)

	to := types.BytesToPubkey([]byte("wallet"))
	if err := m.MintRewards(wrongAuth, to, 500); err != runtime.ErrUnauthorizedCaller {
		t.Errorf("expected ErrUnauthorizedCaller, got %v", err)
	}
}

func TestMintRewardsRejectsOverCap(t *testing.T) {
	authority := runtime.CoreMintAuthority()
	m := NewMint(1_000, authority)
	auth := runtime.NewCall(runtime.ProgramCore, authority)

	to := types.BytesToPubkey([]byte("wallet"))
	if err := m.MintRewards(auth, to, 1_001); err != types.ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow over the supply cap, got %v", err)
	}
	if m.TotalMinted != 0 {
		t.Errorf("expected a rejected mint to leave TotalMinted untouched, got %d", m.TotalMinted)
	}
}

func TestMintRewardsAtExactCapSucceeds(t *testing.T) {
	authority := runtime.CoreMintAuthority()
	m := NewMint(1_000, authority)
	auth := runtime.NewCall(runtime.ProgramCore, authority)

	to := types.BytesToPubkey([]byte("wallet"))
	if err := m.MintRewards(auth, to, 1_000); err != nil {
		t.Fatalf("expected minting exactly up to the cap to succeed, got %v", err)
	}
	if m.TotalMinted != 1_000 {
		t.Errorf("expected TotalMinted 1000, got %d", m.TotalMinted)
	}
}

func TestMintRewardsZeroAmountIsNoop(t *testing.T) {
	authority := runtime.CoreMintAuthority()
	m := NewMint(1_000, authority)
	auth := runtime.NewCall(runtime.ProgramCore, authority)

	to := types.BytesToPubkey([]byte("wallet"))
	if err := m.MintRewards(auth, to, 0); err != nil {
		t.Fatalf("expected a zero-amount mint to succeed as a no-op, got %v", err)
	}
	if m.TotalMinted != 0 || m.BalanceOf(to) != 0 {
		t.Error("expected a zero-amount mint to leave balances unchanged")
	}
}

func TestMintRewardsAccumulatesAcrossCalls(t *testing.T) {
	authority := runtime.CoreMintAuthority()
	m := NewMint(1_000, authority)
	auth := runtime.NewCall(runtime.ProgramCore, authority)

	to := types.BytesToPubkey([]byte("wallet"))
	if err := m.MintRewards(auth, to, 400); err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if err := m.MintRewards(auth, to, 400); err != nil {
		t.Fatalf("second mint: %v", err)
	}
	if err := m.MintRewards(auth, to, 400); err != types.ErrMathOverflow {
		t.Errorf("expected the third mint to breach the cap, got %v", err)
	}
	if m.TotalMinted != 800 {
		t.Errorf("expected TotalMinted 800 after two successful mints, got %d", m.TotalMinted)
	}
}
