package core

import "finova/chain/types"

// VoteRecord is the per-(proposal,voter) account. CORE only records
// votes; proposal creation, tallying and execution are out of scope —
// some other system owns the proposal lifecycle and just tells CORE
// which proposal ids are votable.
type VoteRecord struct {
	ProposalID uint64
	Voter      types.Pubkey
	Weight     uint64
	Choice     uint8
	RecordedAt types.UnixSeconds
}

// votingPower is weight = voting-power evaluated now: staked whole
// tokens plus held whole tokens plus a flat 10-per-level XP bonus,
// snapshotted at vote time so later stake/XP changes never
// retroactively alter a cast vote (default documented in DESIGN.md).
func votingPower(u *UserState, st *StakingState, xp *XPState) uint64 {
	return st.StakedWholeToken + u.HoldingsWholeToken + 10*uint64(xp.Level)
}

// RegisterProposal marks proposalID as votable. Full proposal lifecycle
// (voting windows, quorum, execution) lives outside CORE; this is the
// minimal bookkeeping needed so Vote can reject an id nobody ever
// opened with ErrUnknownProposal.
func (c *Core) RegisterProposal(proposalID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proposals[proposalID] = true
}

// Vote implements the vote instruction: records a VoteRecord with the
// signer's current voting-power snapshot, rejecting a second vote on
// the same proposal.
func (c *Core) Vote(signer types.Pubkey, proposalID uint64, choice uint8, now types.UnixSeconds) error {
	var net NetworkState
	c.networkLock.WithRLock(networkAccountID, func() { net = c.network })
	if !net.Initialized {
		return ErrNotInitialized
	}
	if net.Paused {
		return ErrPaused
	}

	c.mu.RLock()
	known := c.proposals[proposalID]
	c.mu.RUnlock()
	if !known {
		return ErrUnknownProposal
	}

	var weight uint64
	err := c.locks.WithLock(signer, func() error {
		u, ok := c.userAccount(signer)
		if !ok {
			return ErrAccountNotFound
		}
		st, _ := c.stakingAccount(signer)
		xp, _ := c.xpAccount(signer)

		weight = votingPower(u, st, xp)
		if weight == 0 {
			return ErrNoVotingPower
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		ballots, ok := c.votes[proposalID]
		if !ok {
			ballots = make(map[types.Pubkey]VoteRecord)
			c.votes[proposalID] = ballots
		}
		if _, voted := ballots[signer]; voted {
			return ErrAlreadyVoted
		}
		ballots[signer] = VoteRecord{
			ProposalID: proposalID,
			Voter:      signer,
			Weight:     weight,
			Choice:     choice,
			RecordedAt: now,
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.events.Emit(Voted{Proposal: proposalID, Voter: signer, Weight: weight, Choice: choice})
	return nil
}
