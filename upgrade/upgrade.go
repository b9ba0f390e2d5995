// Package upgrade guards the implementation marker: the persisted pointer
// that selects which behavior version governs the ledger. Swapping the
// marker changes which rules future operations run under and nothing else;
// balances, counters, roles, approvals, pause state, and metadata all
// survive an upgrade byte for byte.
package upgrade

import (
	"errors"
	"fmt"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/token"
)

// ErrUpgradeUnauthorized rejects a marker swap by a caller without
// RoleUpgrader. Upgrades are gated separately from ordinary role failures so
// the failure is unmistakable in logs and journals.
var ErrUpgradeUnauthorized = errors.New("upgrade: caller lacks upgrader role")

// Version is an opaque implementation marker. The controller never
// interprets it; binding a marker to concrete behavior is the owning
// contract's affair.
type Version string

// Initial is the marker installed at initialization.
const Initial Version = "v1"

// Controller holds the active marker.
type Controller struct {
	roles   *access.RoleSet
	current Version
}

// NewController returns a controller whose marker is empty until Seed or
// Apply installs one.
func NewController(roles *access.RoleSet) *Controller {
	return &Controller{roles: roles}
}

// Seed installs a marker without an authorization check. It exists for the
// one-time initialization call.
func (c *Controller) Seed(v Version) { c.current = v }

// Apply swaps the active marker. The caller must hold RoleUpgrader. The swap
// is not pause-gated: recovering from a bad implementation while paused is
// exactly what upgrades are for. Re-applying the current marker succeeds and
// changes nothing.
func (c *Controller) Apply(caller token.Principal, next Version) error {
	if !c.roles.Has(access.RoleUpgrader, caller) {
		return fmt.Errorf("%w: %q", ErrUpgradeUnauthorized, caller)
	}
	c.current = next
	return nil
}

// Current returns the active marker. Pure query.
func (c *Controller) Current() Version { return c.current }
