package core

import (
	"sync"

	"finova/chain/runtime"
	"finova/chain/types"
)

// networkAccountID is the fixed pubkey the singleton NetworkState lives
// at, so it can share the same per-account lock registry as every user
// account (NetworkState is "a single account").
var networkAccountID = runtime.Pda(runtime.ProgramCore, []byte("network"))

// Core is the CORE orchestrator program: it exclusively owns
// NetworkState, UserState, XPState, ReferralState, StakingState,
// ActiveEffects, MiningAccrual and VoteRecord. Accounts are held in
// memory, guarded by a per-account lock registry that stands in for
// the runtime's account-version serialization; Snapshot/Restore let a
// caller persist that in-memory state through a runtime.Store.
type Core struct {
	mu sync.RWMutex

	network     NetworkState
	networkLock *runtime.AccountLocks
	locks       *runtime.AccountLocks

	users     map[types.Pubkey]*UserState
	xp        map[types.Pubkey]*XPState
	referral  map[types.Pubkey]*ReferralState
	staking   map[types.Pubkey]*StakingState
	effects   map[types.Pubkey]*ActiveEffects
	mining    map[types.Pubkey]*MiningAccrual
	votes     map[uint64]map[types.Pubkey]VoteRecord
	proposals map[uint64]bool
	quality   map[types.Pubkey]*qualityWindow
	nonces    map[types.Pubkey]uint64

	tokenLedger TokenLedger
	events      EventSink
	metrics     Metrics
}

// TokenLedger is the CPI surface CORE calls into TMA through when
// claim_rewards mints settled accrual. Kept as an interface so
// core_test.go can swap in a fake without importing chain/tma, and so
// the real wiring in cmd/finova-node crosses the actual CORE->TMA
// program boundary via runtime.CallerAuth.
type TokenLedger interface {
	MintRewards(auth runtime.CallerAuth, to types.Pubkey, amount types.BaseUnits) error
}

// Metrics receives counters CORE increments on notable operations;
// chain/monitoring implements it with real Prometheus collectors, and
// a nil Metrics is a silent no-op (see noopMetrics).
type Metrics interface {
	ClaimSettled(amount types.BaseUnits)
	DailyCapHit()
	ActivitySubmitted()
}

// New builds an uninitialized Core. Call InitializeNetwork before any
// other operation.
func New(ledger TokenLedger, events EventSink, metrics Metrics) *Core {
	if events == nil {
		events = &EventRecorder{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Core{
		networkLock: runtime.NewAccountLocks(),
		locks:       runtime.NewAccountLocks(),
		users:       make(map[types.Pubkey]*UserState),
		xp:          make(map[types.Pubkey]*XPState),
		referral:    make(map[types.Pubkey]*ReferralState),
		staking:     make(map[types.Pubkey]*StakingState),
		effects:     make(map[types.Pubkey]*ActiveEffects),
		mining:      make(map[types.Pubkey]*MiningAccrual),
		votes:       make(map[uint64]map[types.Pubkey]VoteRecord),
		proposals:   make(map[uint64]bool),
		quality:     make(map[types.Pubkey]*qualityWindow),
		nonces:      make(map[types.Pubkey]uint64),
		tokenLedger: ledger,
		events:      events,
		metrics:     metrics,
	}
}

// Account family lookups. Per-account mutation is serialized by
// c.locks (the per-account write serialization), but the Go maps
// backing each family are shared mutable structures that every signer's
// goroutine reaches regardless of key — c.mu is the structural mutex
// guarding the maps themselves, held only for the lookup, never across
// a caller's subsequent field mutations on the returned pointer (those
// are already serialized by the per-account lock the caller holds).
func (c *Core) userAccount(id types.Pubkey) (*UserState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

func (c *Core) xpAccount(id types.Pubkey) (*XPState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	x, ok := c.xp[id]
	return x, ok
}

func (c *Core) referralAccount(id types.Pubkey) (*ReferralState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.referral[id]
	return r, ok
}

func (c *Core) stakingAccount(id types.Pubkey) (*StakingState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.staking[id]
	return s, ok
}

func (c *Core) effectsAccount(id types.Pubkey) (*ActiveEffects, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.effects[id]
	return e, ok
}

func (c *Core) miningAccount(id types.Pubkey) (*MiningAccrual, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.mining[id]
	return m, ok
}

func (c *Core) qualityAccount(id types.Pubkey) *qualityWindow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quality[id]
}

// InitializeNetwork creates the NetworkState singleton. Signer
// authorization (network authority) is the caller's responsibility in
// chain/api; Core itself only enforces the lifecycle precondition.
func (c *Core) InitializeNetwork(params NetworkParams) error {
	return c.networkLock.WithLock(networkAccountID, func() error {
		if c.network.Initialized {
			return ErrAlreadyInitialized
		}
		c.network = NetworkState{
			Phase:         PhaseFinizen,
			BaseRateMicro: params.BaseRateMicro,
			AttestorKey:   params.AttestorKey,
			HoldCap:       params.HoldCap,
			HoldCoefMicro: params.HoldCoefMicro,
			NrCoefMicro:   params.NrCoefMicro,
			MaxSupply:     params.MaxSupply,
			Initialized:   true,
		}
		return nil
	})
}

// Pause sets NetworkState.Paused. Caller authorization (network
// authority) happens in chain/api.
func (c *Core) Pause(flag bool) error {
	return c.networkLock.WithLock(networkAccountID, func() error {
		if !c.network.Initialized {
			return ErrNotInitialized
		}
		c.network.Paused = flag
		return nil
	})
}

// NetworkSnapshot returns a copy of the current NetworkState for reads
// (chain/api, chain/monitoring).
func (c *Core) NetworkSnapshot() NetworkState {
	var snap NetworkState
	c.networkLock.WithRLock(networkAccountID, func() {
		snap = c.network
	})
	return snap
}

type noopMetrics struct{}

func (noopMetrics) ClaimSettled(types.BaseUnits) {}
func (noopMetrics) DailyCapHit()                 {}
func (noopMetrics) ActivitySubmitted()           {}
