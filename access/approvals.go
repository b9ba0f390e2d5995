package access

import (
	"sort"

	"github.com/pflow-xyz/go-lotledger/token"
)

// ApprovalSet is the owner-to-operator delegation relation. An approval is
// blanket: it covers every asset and amount until the owner clears it.
type ApprovalSet struct {
	operators map[token.Principal]map[token.Principal]bool
}

// NewApprovalSet returns an empty relation.
func NewApprovalSet() *ApprovalSet {
	return &ApprovalSet{operators: make(map[token.Principal]map[token.Principal]bool)}
}

// Set records or clears owner's approval of operator. Owners manage only
// their own approvals, so the mutation needs no further authorization and is
// never blocked by a pause. Re-asserting the current value succeeds and
// changes nothing.
func (s *ApprovalSet) Set(owner, operator token.Principal, approved bool) {
	if approved {
		set := s.operators[owner]
		if set == nil {
			set = make(map[token.Principal]bool)
			s.operators[owner] = set
		}
		set[operator] = true
		return
	}
	delete(s.operators[owner], operator)
}

// Approved reports whether operator may move owner's units. Pure query.
func (s *ApprovalSet) Approved(owner, operator token.Principal) bool {
	return s.operators[owner][operator]
}

// RequireOwnerOrOperator returns an UnauthorizedError unless caller is owner
// itself or an operator approved by owner.
func (s *ApprovalSet) RequireOwnerOrOperator(caller, owner token.Principal) error {
	if caller == owner || s.Approved(owner, caller) {
		return nil
	}
	return &UnauthorizedError{Caller: caller, Owner: owner}
}

// Operators returns the operators approved by owner sorted by principal, for
// deterministic snapshots.
func (s *ApprovalSet) Operators(owner token.Principal) []token.Principal {
	set := s.operators[owner]
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

// Owners returns every owner with at least one live approval, sorted.
func (s *ApprovalSet) Owners() []token.Principal {
	out := make([]token.Principal, 0, len(s.operators))
	for owner, set := range s.operators {
		if len(set) > 0 {
			out = append(out, owner)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent deep copy of the relation.
func (s *ApprovalSet) Clone() *ApprovalSet {
	c := NewApprovalSet()
	for owner, set := range s.operators {
		for op := range set {
			c.Set(owner, op, true)
		}
	}
	return c
}
