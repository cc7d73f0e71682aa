// Package runtime is the substrate CORE, TMA and NFT run on: it plays
// the role of a small DAG-of-programs kernel — PDA derivation,
// per-account write serialization, and a CPI dispatcher that checks a
// caller's claimed authority before letting a call cross a program
// boundary.
package runtime

import (
	"finova/chain/types"

	"golang.org/x/crypto/sha3"
)

// ProgramID names one of the four cooperating programs.
type ProgramID byte

const (
	ProgramCore ProgramID = iota + 1
	ProgramTMA
	ProgramNFT
)

func (p ProgramID) String() string {
	switch p {
	case ProgramCore:
		return "core"
	case ProgramTMA:
		return "tma"
	case ProgramNFT:
		return "nft"
	default:
		return "unknown"
	}
}

// Pda derives a program-derived address from a program id and a set of
// seeds, such as `("user", wallet)` and `("core_mint_authority")`. A PDA
// is a Pubkey with no matching private key: authority is proved only by
// a CPI caller presenting the same program id and seeds (see RequireAuthority).
func Pda(program ProgramID, seeds ...[]byte) types.Pubkey {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{byte(program)})
	for _, s := range seeds {
		h.Write(s)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return types.Pubkey(sum)
}

// UserSeed is the canonical seed for a user's account family:
// ("user", wallet).
func UserSeed(wallet types.Pubkey) []byte {
	seed := make([]byte, 0, 5+len(wallet))
	seed = append(seed, "user:"...)
	seed = append(seed, wallet[:]...)
	return seed
}

// CoreMintAuthority is the PDA CORE signs CPIs to TMA with, derived
// from ("core_mint_authority").
func CoreMintAuthority() types.Pubkey {
	return Pda(ProgramCore, []byte("core_mint_authority"))
}

// NFTEffectsAuthority is the PDA the NFT program signs its
// apply_effect CPI to CORE with.
func NFTEffectsAuthority() types.Pubkey {
	return Pda(ProgramNFT, []byte("nft_effects_authority"))
}
