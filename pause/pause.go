// Package pause implements the circuit breaker over mutating operations.
// While the gate is paused, every balance and metadata mutation fails with
// ErrPaused; queries, role administration, approvals, and upgrades stay
// available so that operators can diagnose and recover.
package pause

import (
	"errors"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/token"
)

var (
	// ErrPaused aborts mutating operations while the gate is paused.
	ErrPaused = errors.New("pause: operations paused")

	// ErrAlreadyPaused reports a pause of a gate that is already paused.
	// The repeated call fails loudly instead of silently holding, so a
	// responder always learns whether their call was the one that tripped
	// the breaker.
	ErrAlreadyPaused = errors.New("pause: already paused")

	// ErrNotPaused reports an unpause of a gate that is already active.
	ErrNotPaused = errors.New("pause: not paused")
)

// Gate is the two-state breaker. A new gate starts active.
type Gate struct {
	roles  *access.RoleSet
	paused bool
}

// NewGate returns an active gate whose Pause and Unpause rights are decided
// by roles.
func NewGate(roles *access.RoleSet) *Gate {
	return &Gate{roles: roles}
}

// Pause trips the breaker. The caller must hold RolePauser and the gate must
// be active.
func (g *Gate) Pause(caller token.Principal) error {
	if err := g.roles.Require(caller, access.RolePauser); err != nil {
		return err
	}
	if g.paused {
		return ErrAlreadyPaused
	}
	g.paused = true
	return nil
}

// Unpause clears the breaker. The caller must hold RolePauser and the gate
// must be paused.
func (g *Gate) Unpause(caller token.Principal) error {
	if err := g.roles.Require(caller, access.RolePauser); err != nil {
		return err
	}
	if !g.paused {
		return ErrNotPaused
	}
	g.paused = false
	return nil
}

// RequireActive returns ErrPaused while the gate is paused. Mutating
// operations call it right after their authorization check and before any
// argument validation.
func (g *Gate) RequireActive() error {
	if g.paused {
		return ErrPaused
	}
	return nil
}

// Paused reports the breaker state. Pure query.
func (g *Gate) Paused() bool { return g.paused }
