// Package metadata resolves asset metadata URIs. One base template covers
// every asset: the URI for an asset is the base followed by the asset id in
// decimal, so per-asset storage is never needed.
package metadata

import (
	"errors"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/pause"
	"github.com/pflow-xyz/go-lotledger/token"
)

// ErrURINotSet reports a URI query while no base template is set.
var ErrURINotSet = errors.New("metadata: base URI not set")

// Resolver holds the base template and answers URI queries.
type Resolver struct {
	roles *access.RoleSet
	gate  *pause.Gate
	base  string
}

// NewResolver returns a resolver with no base template. NewResolver does not
// pick a default; initialization installs the first base through Seed and
// every later change goes through SetBaseURI.
func NewResolver(roles *access.RoleSet, gate *pause.Gate) *Resolver {
	return &Resolver{roles: roles, gate: gate}
}

// Seed installs a base template without an authorization check. It exists
// for the one-time initialization call.
func (r *Resolver) Seed(base string) { r.base = base }

// SetBaseURI replaces the base template wholesale. The caller must hold
// RoleURISetter and the gate must be active. Setting the empty string
// returns the resolver to its unset state.
func (r *Resolver) SetBaseURI(caller token.Principal, base string) error {
	if err := r.roles.Require(caller, access.RoleURISetter); err != nil {
		return err
	}
	if err := r.gate.RequireActive(); err != nil {
		return err
	}
	r.base = base
	return nil
}

// URI returns the metadata URI for id, base followed by the id in decimal.
// Every id resolves, whether or not units of it were ever minted. While no
// base is set the query fails with ErrURINotSet.
func (r *Resolver) URI(id token.AssetID) (string, error) {
	if r.base == "" {
		return "", ErrURINotSet
	}
	return r.base + id.String(), nil
}

// Base returns the current template, empty when unset. Pure query.
func (r *Resolver) Base() string { return r.base }
