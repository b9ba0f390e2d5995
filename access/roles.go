// Package access maintains the two authorization relations consulted by
// every privileged ledger operation:
//
//   - role membership: which principals hold admin, pauser, minter,
//     uri-setter, and upgrader capabilities
//   - operator approval: which principals may move another owner's units
//
// Both relations are plain in-memory sets. They decide who may call an
// operation and nothing else; the operations themselves live with the state
// they mutate.
package access

import (
	"fmt"
	"sort"

	"github.com/pflow-xyz/go-lotledger/token"
)

// Role names one capability category. The zero value is reserved so that a
// Role field left unset is distinguishable from RoleAdmin.
type Role uint8

const (
	// RoleAdmin may grant and revoke every role, including RoleAdmin.
	RoleAdmin Role = iota + 1
	// RolePauser may pause and unpause mutating operations.
	RolePauser
	// RoleMinter may create new units of any asset.
	RoleMinter
	// RoleURISetter may replace the metadata base URI.
	RoleURISetter
	// RoleUpgrader may swap the active implementation marker.
	RoleUpgrader
)

// Roles lists every defined role in a fixed order, for iteration in
// snapshots and bootstrap checks.
var Roles = []Role{RoleAdmin, RolePauser, RoleMinter, RoleURISetter, RoleUpgrader}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RolePauser:
		return "pauser"
	case RoleMinter:
		return "minter"
	case RoleURISetter:
		return "uri-setter"
	case RoleUpgrader:
		return "upgrader"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole maps the canonical name produced by String back to its Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("access: unknown role %q", s)
}

// UnauthorizedError reports a failed authorization check. Exactly one of the
// two requirement fields is set: Role when the operation was role-gated,
// Owner when it required the caller to be the owner or an approved operator.
type UnauthorizedError struct {
	Caller token.Principal
	Role   Role
	Owner  token.Principal
}

func (e *UnauthorizedError) Error() string {
	if !e.Owner.IsZero() {
		return fmt.Sprintf("access: %q is neither %q nor an operator approved by it", e.Caller, e.Owner)
	}
	return fmt.Sprintf("access: %q lacks role %s", e.Caller, e.Role)
}

// RoleSet is the role membership registry. Membership changes are themselves
// role-gated: only an admin may grant or revoke, and the registry starts
// empty, so the first admin must be installed with Seed.
type RoleSet struct {
	members map[Role]map[token.Principal]bool
}

// NewRoleSet returns an empty registry.
func NewRoleSet() *RoleSet {
	return &RoleSet{members: make(map[Role]map[token.Principal]bool)}
}

// Has reports whether p holds r. Pure query.
func (s *RoleSet) Has(r Role, p token.Principal) bool {
	return s.members[r][p]
}

// Require returns an UnauthorizedError unless caller holds r.
func (s *RoleSet) Require(caller token.Principal, r Role) error {
	if !s.Has(r, caller) {
		return &UnauthorizedError{Caller: caller, Role: r}
	}
	return nil
}

// Grant adds p to r's member set. The caller must hold RoleAdmin. Granting a
// role the principal already holds changes nothing and still succeeds.
func (s *RoleSet) Grant(caller token.Principal, r Role, p token.Principal) error {
	if err := s.Require(caller, RoleAdmin); err != nil {
		return err
	}
	s.Seed(r, p)
	return nil
}

// Revoke removes p from r's member set. The caller must hold RoleAdmin.
// Revoking a role the principal does not hold changes nothing and still
// succeeds. An admin may revoke its own admin role; the registry does not
// stop the last admin from locking the ledger's role management.
func (s *RoleSet) Revoke(caller token.Principal, r Role, p token.Principal) error {
	if err := s.Require(caller, RoleAdmin); err != nil {
		return err
	}
	delete(s.members[r], p)
	return nil
}

// Seed adds p to r's member set without an authorization check. It exists
// for the one-time initialization that installs the first role holders;
// every later membership change goes through Grant and Revoke.
func (s *RoleSet) Seed(r Role, p token.Principal) {
	set := s.members[r]
	if set == nil {
		set = make(map[token.Principal]bool)
		s.members[r] = set
	}
	set[p] = true
}

// Members returns r's membership sorted by principal, for deterministic
// snapshots.
func (s *RoleSet) Members(r Role) []token.Principal {
	set := s.members[r]
	if len(set) == 0 {
		return nil
	}
	out := make([]token.Principal, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent deep copy of the registry.
func (s *RoleSet) Clone() *RoleSet {
	c := NewRoleSet()
	for r, set := range s.members {
		for p := range set {
			c.Seed(r, p)
		}
	}
	return c
}
