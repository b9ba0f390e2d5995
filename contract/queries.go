package contract

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/ledger"
	"github.com/pflow-xyz/go-lotledger/token"
	"github.com/pflow-xyz/go-lotledger/upgrade"
)

// Queries hold the read lock for exactly one call, so each answer reflects
// a state between two committed operations, never the middle of one.

// Initialized reports whether Initialize has run.
func (c *Contract) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Sequence returns the number of committed operations.
func (c *Contract) Sequence() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sequence
}

// Paused reports the circuit breaker state.
func (c *Contract) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gate.Paused()
}

// HasRole reports whether principal holds role.
func (c *Contract) HasRole(role access.Role, principal token.Principal) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles.Has(role, principal)
}

// RoleMembers returns role's membership, sorted.
func (c *Contract) RoleMembers(role access.Role) []token.Principal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles.Members(role)
}

// IsApprovedForAll reports whether operator holds owner's blanket approval.
func (c *Contract) IsApprovedForAll(owner, operator token.Principal) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.approvals.Approved(owner, operator)
}

// BalanceOf returns owner's balance of id. Unknown assets and principals
// read as zero.
func (c *Contract) BalanceOf(owner token.Principal, id token.AssetID) *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.BalanceOf(owner, id)
}

// BalanceOfBatch returns owners[i]'s balance of ids[i] for every i. The two
// slices must be the same length.
func (c *Contract) BalanceOfBatch(owners []token.Principal, ids []token.AssetID) ([]*uint256.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(owners) != len(ids) {
		return nil, ledger.ErrLengthMismatch
	}
	out := make([]*uint256.Int, len(ids))
	for i := range ids {
		out[i] = c.book.BalanceOf(owners[i], ids[i])
	}
	return out, nil
}

// TotalMinted returns the lifetime minted counter for id.
func (c *Contract) TotalMinted(id token.AssetID) *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.TotalMinted(id)
}

// TotalBurned returns the lifetime burned counter for id.
func (c *Contract) TotalBurned(id token.AssetID) *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.TotalBurned(id)
}

// Supply returns the circulating supply of id, minted minus burned.
func (c *Contract) Supply(id token.AssetID) *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.Supply(id)
}

// Assets returns every asset id with mint history, sorted.
func (c *Contract) Assets() []token.AssetID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.Assets()
}

// Holders returns every principal holding a nonzero balance of id, sorted.
func (c *Contract) Holders(id token.AssetID) []token.Principal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.Holders(id)
}

// URI returns the metadata URI for id.
func (c *Contract) URI(id token.AssetID) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta.URI(id)
}

// BaseURI returns the metadata base template, empty when unset.
func (c *Contract) BaseURI() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta.Base()
}

// Version returns the active implementation marker.
func (c *Contract) Version() upgrade.Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.upgrades.Current()
}

// Policy returns the behavior policy bound to the active marker.
func (c *Contract) Policy() ledger.Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.Policy()
}

// CheckConservation audits the minted-burned-balance identity for every
// asset.
func (c *Contract) CheckConservation() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.book.CheckConservation()
}
