package contract

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/token"
	"github.com/pflow-xyz/go-lotledger/upgrade"
)

// Snapshot is a self-contained copy of the full contract state. Amounts are
// decimal strings so the encoding survives any JSON tooling untouched.
type Snapshot struct {
	Initialized bool            `json:"initialized"`
	Sequence    uint64          `json:"sequence"`
	Paused      bool            `json:"paused"`
	BaseURI     string          `json:"base_uri"`
	Version     upgrade.Version `json:"version"`

	Roles     map[string][]token.Principal          `json:"roles,omitempty"`
	Approvals map[token.Principal][]token.Principal `json:"approvals,omitempty"`

	Balances map[token.AssetID]map[token.Principal]string `json:"balances,omitempty"`
	Minted   map[token.AssetID]string                     `json:"minted,omitempty"`
	Burned   map[token.AssetID]string                     `json:"burned,omitempty"`
}

// Snapshot returns a copy of the full state, taken between operations.
func (c *Contract) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Contract) snapshotLocked() Snapshot {
	s := Snapshot{
		Initialized: c.initialized,
		Sequence:    c.sequence,
		Paused:      c.gate.Paused(),
		BaseURI:     c.meta.Base(),
		Version:     c.upgrades.Current(),
	}

	for _, r := range access.Roles {
		members := c.roles.Members(r)
		if len(members) == 0 {
			continue
		}
		if s.Roles == nil {
			s.Roles = make(map[string][]token.Principal)
		}
		s.Roles[r.String()] = members
	}

	for _, owner := range c.approvals.Owners() {
		if s.Approvals == nil {
			s.Approvals = make(map[token.Principal][]token.Principal)
		}
		s.Approvals[owner] = c.approvals.Operators(owner)
	}

	for _, id := range c.book.Assets() {
		if s.Minted == nil {
			s.Minted = make(map[token.AssetID]string)
			s.Burned = make(map[token.AssetID]string)
		}
		s.Minted[id] = c.book.TotalMinted(id).Dec()
		s.Burned[id] = c.book.TotalBurned(id).Dec()
		for _, owner := range c.book.Holders(id) {
			if s.Balances == nil {
				s.Balances = make(map[token.AssetID]map[token.Principal]string)
			}
			if s.Balances[id] == nil {
				s.Balances[id] = make(map[token.Principal]string)
			}
			s.Balances[id][owner] = c.book.BalanceOf(owner, id).Dec()
		}
	}
	return s
}

// Digest returns the hex sha256 of the canonical state encoding. Two
// contracts with identical state produce identical digests regardless of
// the operation order that built them.
func (c *Contract) Digest() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.digestLocked()
}

func (c *Contract) digestLocked() string {
	return c.snapshotLocked().Digest()
}

// Digest returns the hex sha256 of the snapshot's canonical encoding: a
// fixed field order with sorted keys and length-prefixed strings.
func (s Snapshot) Digest() string {
	h := sha256.New()
	hashString(h, "lotledger-state-1")

	hashBool(h, s.Initialized)
	hashUint64(h, s.Sequence)
	hashBool(h, s.Paused)
	hashString(h, s.BaseURI)
	hashString(h, string(s.Version))

	roleNames := make([]string, 0, len(s.Roles))
	for name := range s.Roles {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)
	hashUint64(h, uint64(len(roleNames)))
	for _, name := range roleNames {
		hashString(h, name)
		hashPrincipals(h, s.Roles[name])
	}

	owners := make([]token.Principal, 0, len(s.Approvals))
	for owner := range s.Approvals {
		owners = append(owners, owner)
	}
	sortPrincipals(owners)
	hashUint64(h, uint64(len(owners)))
	for _, owner := range owners {
		hashString(h, string(owner))
		hashPrincipals(h, s.Approvals[owner])
	}

	ids := make([]token.AssetID, 0, len(s.Minted))
	for id := range s.Minted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	hashUint64(h, uint64(len(ids)))
	for _, id := range ids {
		hashUint64(h, uint64(id))
		hashString(h, s.Minted[id])
		hashString(h, s.Burned[id])

		holders := make([]token.Principal, 0, len(s.Balances[id]))
		for p := range s.Balances[id] {
			holders = append(holders, p)
		}
		sortPrincipals(holders)
		hashUint64(h, uint64(len(holders)))
		for _, p := range holders {
			hashString(h, string(p))
			hashString(h, s.Balances[id][p])
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func hashString(h hash.Hash, s string) {
	hashUint64(h, uint64(len(s)))
	h.Write([]byte(s))
}

func hashUint64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func hashBool(h hash.Hash, b bool) {
	if b {
		h.Write([]byte{1})
		return
	}
	h.Write([]byte{0})
}

func hashPrincipals(h hash.Hash, ps []token.Principal) {
	hashUint64(h, uint64(len(ps)))
	for _, p := range ps {
		hashString(h, string(p))
	}
}

func sortPrincipals(ps []token.Principal) {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
}
