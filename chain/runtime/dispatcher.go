package runtime

import (
	"errors"

	"finova/chain/types"

	"github.com/google/uuid"
)

// ErrUnauthorizedCaller is returned when a CPI's claimed program id or
// PDA signer does not match what the callee expects.
var ErrUnauthorizedCaller = errors.New("unauthorized caller")

// CallerAuth is what a CPI presents to the callee: which program is
// calling, and which PDA it signed with. The runtime's job — comparing
// an instruction payload crossing a program boundary against the
// signer seeds proving identity — is reduced to comparing this against
// the callee's expectation — there is no way to forge it because PDAs
// are derived deterministically from (program, seeds) by Pda.
type CallerAuth struct {
	Program   ProgramID
	Authority types.Pubkey
	// CorrelationID ties together the structured log lines and metrics
	// emitted across a single CPI hop, the way a request id threads
	// through a service call.
	CorrelationID uuid.UUID
}

// NewCall starts a fresh CPI with a random correlation id.
func NewCall(program ProgramID, authority types.Pubkey) CallerAuth {
	return CallerAuth{Program: program, Authority: authority, CorrelationID: uuid.New()}
}

// RequireAuthority fails the call unless it was made by expectedProgram
// presenting exactly expectedAuthority as its signer PDA. Every CPI
// boundary in this module (CORE -> TMA, NFT -> CORE) calls this before
// doing anything else: there is no case here where the callee is also
// in the caller's own call stack, so reentrancy cannot arise.
func RequireAuthority(auth CallerAuth, expectedProgram ProgramID, expectedAuthority types.Pubkey) error {
	if auth.Program != expectedProgram {
		return ErrUnauthorizedCaller
	}
	if !auth.Authority.Equal(expectedAuthority) {
		return ErrUnauthorizedCaller
	}
	return nil
}
