// Package api is the external HTTP/websocket surface clients submit
// instructions through and read state from (the instruction
// table). Request shape, rate limiting and CORS follow the
// RPCServer.handleHTTP (chain/node/rpc.go), narrowed from a JSON-RPC
// dispatch table to one gorilla/mux route per operation.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"finova/chain/core"
	"finova/chain/nft"
	"finova/chain/oca"
	"finova/chain/types"

	"github.com/gorilla/mux"
)

// Server is the HTTP front door onto a *core.Core. Each per-operation
// handler writes its own JSON response; statusForError maps chain/core's
// sentinel errors to HTTP status codes so clients can branch on status
// without parsing the message body.
type Server struct {
	core        *core.Core
	nft         *nft.Program
	feed        *Feed
	rateLimiter *rateLimiter
	httpServer  *http.Server
}

// NewServer builds an api.Server serving c's and nftProgram's
// operations plus feed's live event stream on addr.
func NewServer(addr string, c *core.Core, nftProgram *nft.Program, feed *Feed) *Server {
	s := &Server{
		core:        c,
		nft:         nftProgram,
		feed:        feed,
		rateLimiter: newRateLimiter(200, time.Minute),
	}
	router := mux.NewRouter()
	router.Use(s.rateLimitMiddleware)
	router.HandleFunc("/v1/users/{pubkey}/initialize", s.handleInitializeUser).Methods(http.MethodPost)
	router.HandleFunc("/v1/users/{pubkey}/activity", s.handleSubmitActivity).Methods(http.MethodPost)
	router.HandleFunc("/v1/users/{pubkey}/claim", s.handleClaim).Methods(http.MethodPost)
	router.HandleFunc("/v1/users/{pubkey}/stake", s.handleStake).Methods(http.MethodPost)
	router.HandleFunc("/v1/users/{pubkey}/unstake", s.handleUnstake).Methods(http.MethodPost)
	router.HandleFunc("/v1/users/{pubkey}/vote", s.handleVote).Methods(http.MethodPost)
	router.HandleFunc("/v1/network", s.handleNetworkState).Methods(http.MethodGet)
	router.HandleFunc("/v1/network/pause", s.handlePause).Methods(http.MethodPost)
	router.HandleFunc("/v1/nft/cards", s.handleMintCard).Methods(http.MethodPost)
	router.HandleFunc("/v1/nft/cards/{cardToken}/use", s.handleUseCard).Methods(http.MethodPost)
	router.HandleFunc("/v1/feed", feed.ServeWS)
	s.httpServer = &http.Server{Addr: addr, Handler: router}
	return s
}

// ListenAndServe blocks serving HTTP until the server is stopped.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

func pubkeyParam(r *http.Request) (types.Pubkey, error) {
	hexStr := mux.Vars(r)["pubkey"]
	return types.HexToPubkey(hexStr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps a chain/core sentinel error to an HTTP status, the
// way the RPCError codes distinguish client retry-safe
// failures from hard rejections.
func statusForError(err error) int {
	switch err {
	case core.ErrNotInitialized, core.ErrAccountNotFound:
		return http.StatusNotFound
	case core.ErrUnauthorized, core.ErrUnauthorizedCaller, core.ErrBadSignature:
		return http.StatusForbidden
	case core.ErrAlreadyInitialized, core.ErrAlreadyVoted, core.ErrSelfReferral,
		core.ErrCircularReferral, core.ErrBelowMinStake, core.ErrOverdrawn,
		core.ErrInvalidAmount, core.ErrDailyCapReached,
		core.ErrNothingToClaim, core.ErrStaleAttestation, core.ErrReplayDetected:
		return http.StatusConflict
	case core.ErrPaused:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusForNFTError maps chain/nft's own failure modes, surfaced from
// UseCard before its call ever reaches the apply_effect CPI into CORE.
func statusForNFTError(err error) int {
	switch err {
	case nft.ErrCardNotFound:
		return http.StatusNotFound
	case nft.ErrNotCardOwner:
		return http.StatusForbidden
	case nft.ErrCardDepleted:
		return http.StatusConflict
	default:
		return statusForError(err)
	}
}

func (s *Server) handleInitializeUser(w http.ResponseWriter, r *http.Request) {
	signer, err := pubkeyParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	var body struct {
		ReferrerHex string `json:"referrer,omitempty"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	var referrer *types.Pubkey
	if body.ReferrerHex != "" {
		ref, err := types.HexToPubkey(body.ReferrerHex)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid referrer")
			return
		}
		referrer = &ref
	}
	if err := s.core.InitializeUser(signer, referrer, nowFunc()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSubmitActivity(w http.ResponseWriter, r *http.Request) {
	signer, err := pubkeyParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	var body struct {
		Report      oca.ActivityReport     `json:"report"`
		Attestation oca.QualityAttestation `json:"attestation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.core.SubmitActivity(signer, body.Report, body.Attestation, nowFunc()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	signer, err := pubkeyParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	var body struct {
		TokenAccountHex string `json:"tokenAccount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	tokenAccount, err := types.HexToPubkey(body.TokenAccountHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tokenAccount")
		return
	}
	minted, err := s.core.ClaimRewards(signer, nowFunc(), tokenAccount)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"minted": uint64(minted)})
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	signer, err := pubkeyParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	var body struct {
		AmountWholeToken uint64 `json:"amountWholeToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	tier, err := s.core.Stake(signer, body.AmountWholeToken, nowFunc())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tier": tier.String()})
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	signer, err := pubkeyParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	var body struct {
		AmountWholeToken uint64 `json:"amountWholeToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	released, err := s.core.Unstake(signer, body.AmountWholeToken, nowFunc())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"released": released})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	signer, err := pubkeyParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}
	var body struct {
		ProposalID uint64 `json:"proposalId"`
		Choice     uint8  `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.core.Vote(signer, body.ProposalID, body.Choice, nowFunc()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleNetworkState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.core.NetworkSnapshot())
}

func (s *Server) handleMintCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AuthorityHex    string          `json:"authority"`
		OwnerHex        string          `json:"owner"`
		CardTokenHex    string          `json:"cardToken"`
		Kind            core.EffectKind `json:"kind"`
		MagnitudeMicro  uint32          `json:"magnitudeMicro"`
		DurationSeconds int64           `json:"durationSeconds"`
		Uses            uint8           `json:"uses"`
		Rarity          nft.Rarity      `json:"rarity"`
		SingleUse       bool            `json:"singleUse"`
		Stackable       bool            `json:"stackable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	authority, err := types.HexToPubkey(body.AuthorityHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid authority")
		return
	}
	owner, err := types.HexToPubkey(body.OwnerHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner")
		return
	}
	cardToken, err := types.HexToPubkey(body.CardTokenHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cardToken")
		return
	}
	if err := s.nft.MintCard(authority, owner, cardToken, body.Kind, body.MagnitudeMicro, body.DurationSeconds, body.Uses, body.Rarity, body.SingleUse, body.Stackable); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleUseCard(w http.ResponseWriter, r *http.Request) {
	cardToken, err := types.HexToPubkey(mux.Vars(r)["cardToken"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cardToken")
		return
	}
	var body struct {
		CallerHex string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	caller, err := types.HexToPubkey(body.CallerHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caller")
		return
	}
	if err := s.nft.UseCard(caller, cardToken, nowFunc()); err != nil {
		writeError(w, statusForNFTError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Flag bool `json:"flag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.core.Pause(body.Flag); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// rateLimiter is a minimal fixed-window-per-client limiter (at most
// limit requests per window, counted from a client's first request in
// that window), grounded on
// the RateLimiter (chain/node/rpc.go).
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	count     int
	resetTime time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{buckets: make(map[string]*bucket), limit: limit, window: window}
}

func (rl *rateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	b, ok := rl.buckets[clientID]
	if !ok || now.After(b.resetTime) {
		rl.buckets[clientID] = &bucket{count: 1, resetTime: now.Add(rl.window)}
		return true
	}
	if b.count >= rl.limit {
		return false
	}
	b.count++
	return true
}

// nowFunc is the wall-clock source every handler stamps instructions
// with; a package variable so tests can swap in a deterministic clock.
var nowFunc = func() types.UnixSeconds { return types.UnixSeconds(time.Now().Unix()) }
