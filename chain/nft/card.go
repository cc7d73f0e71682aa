// Package nft is the NFT Effects program: it owns card/collection
// metadata and, on "use card", CPIs into CORE's apply_effect under its
// own program-derived signer. It follows the same state-plus-mutex-
// plus-CPI-via-function-call shape as the other programs in chain/core
// and chain/tma.
package nft

import (
	"sync"

	"finova/chain/core"
	"finova/chain/runtime"
	"finova/chain/types"
)

// Rarity is the Card's rarity band (the Card row).
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

// Card is the NFT program's per-token metadata (the Card row).
// Stackable carries the per-instance apply_effect field of the same
// name: whether the Effect this card applies is allowed to coexist
// with another active instance of the same Kind, rather than that
// being a fixed property of Kind itself.
type Card struct {
	Owner          types.Pubkey
	Kind           core.EffectKind
	MagnitudeMicro uint32
	DurationS      int64
	UsesRemaining  uint8
	Rarity         Rarity
	SingleUse      bool
	Stackable      bool
}

// Program is the NFT Effects program's in-memory state: the card
// registry plus the authority allowed to mint new cards.
type Program struct {
	mu            sync.RWMutex
	cards         map[types.Pubkey]*Card
	cardAuthority types.Pubkey
	core          *core.Core
}

// NewProgram builds an NFT program bound to the given CORE instance and
// restricted minting authority ("mint_card ... restricted to
// card authority").
func NewProgram(c *core.Core, cardAuthority types.Pubkey) *Program {
	return &Program{
		cards:         make(map[types.Pubkey]*Card),
		cardAuthority: cardAuthority,
		core:          c,
	}
}

// ErrUnauthorizedMint, ErrCardNotFound, ErrCardDepleted and
// ErrNotCardOwner are the NFT program's own failure modes, checked
// locally before ever reaching the apply_effect CPI into CORE.
var (
	ErrUnauthorizedMint = mintErr("unauthorized mint")
	ErrCardNotFound     = mintErr("card not found")
	ErrCardDepleted     = mintErr("card depleted")
	ErrNotCardOwner     = mintErr("caller does not own card")
)

type mintErr string

func (e mintErr) Error() string { return string(e) }

// MintCard implements mint_card: mints a new card token to
// owner under the caller's claimed authority.
func (p *Program) MintCard(authority types.Pubkey, owner, cardToken types.Pubkey, kind core.EffectKind, magnitudeMicro uint32, durationS int64, uses uint8, rarity Rarity, singleUse bool, stackable bool) error {
	if !authority.Equal(p.cardAuthority) {
		return ErrUnauthorizedMint
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cards[cardToken] = &Card{
		Owner:          owner,
		Kind:           kind,
		MagnitudeMicro: magnitudeMicro,
		DurationS:      durationS,
		UsesRemaining:  uses,
		Rarity:         rarity,
		SingleUse:      singleUse,
		Stackable:      stackable,
	}
	return nil
}

// UseCard implements use_card: verifies ownership, CPIs
// CORE.apply_effect with the NFT program's PDA as signer, and only
// decrements/burns the card if that CPI succeeds — a failed CPI leaves
// UsesRemaining untouched.
func (p *Program) UseCard(caller types.Pubkey, cardToken types.Pubkey, now types.UnixSeconds) error {
	p.mu.Lock()
	card, ok := p.cards[cardToken]
	if !ok {
		p.mu.Unlock()
		return ErrCardNotFound
	}
	if !card.Owner.Equal(caller) {
		p.mu.Unlock()
		return ErrNotCardOwner
	}
	if card.UsesRemaining == 0 {
		p.mu.Unlock()
		return ErrCardDepleted
	}
	kind, magnitude, duration, stackable := card.Kind, card.MagnitudeMicro, card.DurationS, card.Stackable
	p.mu.Unlock()

	auth := runtime.NewCall(runtime.ProgramNFT, runtime.NFTEffectsAuthority())
	if err := p.core.ApplyEffect(auth, caller, kind, magnitude, duration, now, stackable); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	card.UsesRemaining--
	if card.UsesRemaining == 0 {
		delete(p.cards, cardToken)
	}
	return nil
}

// CardInfo returns a copy of a card's metadata. chain/api has no
// endpoint that exposes it.
func (p *Program) CardInfo(cardToken types.Pubkey) (Card, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.cards[cardToken]
	if !ok {
		return Card{}, false
	}
	return *c, true
}
