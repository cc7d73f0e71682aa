package core

import "finova/chain/types"

// Event is the common shape every entry in the stable event log
// implements, so chain/api's websocket feed can fan out a single
// channel of them regardless of concrete type.
type Event interface {
	EventName() string
}

type UserInitialized struct {
	User     types.Pubkey
	Referrer *types.Pubkey
}

func (UserInitialized) EventName() string { return "UserInitialized" }

type ActivitySettled struct {
	User   types.Pubkey
	XPGain uint64
	RPGain uint64
	DRate  types.MicroValue
}

func (ActivitySettled) EventName() string { return "ActivitySettled" }

type RewardsMinted struct {
	User   types.Pubkey
	Amount types.BaseUnits
}

func (RewardsMinted) EventName() string { return "RewardsMinted" }

type EffectApplied struct {
	User      types.Pubkey
	Kind      EffectKind
	Magnitude uint32
	ExpiresAt types.UnixSeconds
	Stackable bool
}

func (EffectApplied) EventName() string { return "EffectApplied" }

type StakeChanged struct {
	User      types.Pubkey
	NewStaked uint64
	NewTier   StakingTier
}

func (StakeChanged) EventName() string { return "StakeChanged" }

type PhaseAdvanced struct {
	NewPhase Phase
}

func (PhaseAdvanced) EventName() string { return "PhaseAdvanced" }

type Voted struct {
	Proposal uint64
	Voter    types.Pubkey
	Weight   uint64
	Choice   uint8
}

func (Voted) EventName() string { return "Voted" }

type PausedEvent struct {
	Flag bool
}

func (PausedEvent) EventName() string { return "Paused" }

// EventSink receives every event a CORE operation emits. chain/api's
// feed.go implements this to broadcast over websocket; tests implement
// it with a plain slice.
type EventSink interface {
	Emit(Event)
}

// EventRecorder is a trivial in-memory EventSink, used by tests and as
// the default when a *Core is built without a live feed.
type EventRecorder struct {
	Events []Event
}

func (r *EventRecorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}
