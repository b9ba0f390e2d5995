// Package contract assembles the role registry, approval relation, pause
// gate, balance book, metadata resolver, and upgrade controller into one
// facade with a single entry point per operation.
//
// The facade provides:
//
//   - one-time initialization that installs the first role holders, the
//     default metadata base, and the initial implementation marker
//   - linearized mutations: a write lock serializes every state change, so
//     concurrent callers observe some strict order of whole operations
//   - consistent queries: readers lock out writers and never observe a
//     half-applied operation
//   - an optional journal of committed operations for audit and replay
//
// Component packages stay usable on their own; the facade adds ordering,
// sequencing, and journaling on top without changing their semantics.
package contract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/journal"
	"github.com/pflow-xyz/go-lotledger/ledger"
	"github.com/pflow-xyz/go-lotledger/metadata"
	"github.com/pflow-xyz/go-lotledger/pause"
	"github.com/pflow-xyz/go-lotledger/token"
	"github.com/pflow-xyz/go-lotledger/upgrade"
)

// ErrAlreadyInitialized rejects a second initialization. The first call
// wins; every later call fails regardless of arguments.
var ErrAlreadyInitialized = errors.New("contract: already initialized")

// DefaultBaseURI is the metadata base installed by Initialize.
const DefaultBaseURI = "ipfs://"

// Config carries the optional wiring of a contract. The zero value is a
// fully working in-memory contract with no journal.
type Config struct {
	// Journal, when set, receives one entry per committed operation. A
	// failed append surfaces as an error from the operation after the
	// state change has applied; the journal is then behind the contract,
	// which a Sequence/LastSeq comparison detects.
	Journal journal.Store

	// Clock stamps journal entries. Defaults to time.Now. Replays carry
	// their own timestamps, so the clock never influences state.
	Clock func() time.Time

	// Rulesets binds implementation markers to behavior policies beyond
	// the built-in initial binding. Upgrading to a marker without a
	// binding keeps the initial policy.
	Rulesets map[upgrade.Version]ledger.Policy
}

// Contract is the operation facade. All methods are safe for concurrent
// use: mutations serialize behind a write lock and queries share a read
// lock.
type Contract struct {
	mu sync.RWMutex

	roles     *access.RoleSet
	approvals *access.ApprovalSet
	gate      *pause.Gate
	book      *ledger.Book
	meta      *metadata.Resolver
	upgrades  *upgrade.Controller

	rulesets map[upgrade.Version]ledger.Policy

	initialized bool
	sequence    uint64

	store journal.Store
	now   func() time.Time
}

// New returns a contract in its uninitialized state. Before Initialize no
// principal holds a role, so every role-gated operation fails.
func New(cfg Config) *Contract {
	roles := access.NewRoleSet()
	approvals := access.NewApprovalSet()
	gate := pause.NewGate(roles)

	rulesets := map[upgrade.Version]ledger.Policy{upgrade.Initial: {}}
	for v, p := range cfg.Rulesets {
		rulesets[v] = p
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Contract{
		roles:     roles,
		approvals: approvals,
		gate:      gate,
		book:      ledger.NewBook(roles, approvals, gate),
		meta:      metadata.NewResolver(roles, gate),
		upgrades:  upgrade.NewController(roles),
		rulesets:  rulesets,
		store:     cfg.Journal,
		now:       now,
	}
}

// Initialize performs the one-time setup: it seeds the first holder of each
// role, installs DefaultBaseURI, sets the implementation marker to the
// initial version, and leaves the gate active. Exactly one call succeeds
// over the contract's lifetime.
func (c *Contract) Initialize(caller, admin, pauser, minter, uriSetter, upgrader token.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}
	for _, p := range []token.Principal{admin, pauser, minter, uriSetter, upgrader} {
		if p.IsZero() {
			return token.ErrZeroPrincipal
		}
	}

	c.roles.Seed(access.RoleAdmin, admin)
	c.roles.Seed(access.RolePauser, pauser)
	c.roles.Seed(access.RoleMinter, minter)
	c.roles.Seed(access.RoleURISetter, uriSetter)
	c.roles.Seed(access.RoleUpgrader, upgrader)
	c.meta.Seed(DefaultBaseURI)
	c.upgrades.Seed(upgrade.Initial)
	c.book.SetPolicy(c.policyFor(upgrade.Initial))
	c.initialized = true

	return c.committed(caller, journal.OpInitialize, journal.Args{
		Admin:     admin,
		Pauser:    pauser,
		Minter:    minter,
		URISetter: uriSetter,
		Upgrader:  upgrader,
	})
}

// Pause trips the circuit breaker. RolePauser required.
func (c *Contract) Pause(caller token.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.gate.Pause(caller); err != nil {
		return err
	}
	return c.committed(caller, journal.OpPause, journal.Args{})
}

// Unpause clears the circuit breaker. RolePauser required.
func (c *Contract) Unpause(caller token.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.gate.Unpause(caller); err != nil {
		return err
	}
	return c.committed(caller, journal.OpUnpause, journal.Args{})
}

// GrantRole adds principal to role's member set. RoleAdmin required. Role
// administration stays available while paused.
func (c *Contract) GrantRole(caller token.Principal, role access.Role, principal token.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.roles.Grant(caller, role, principal); err != nil {
		return err
	}
	return c.committed(caller, journal.OpGrantRole, journal.Args{
		Role:      role.String(),
		Principal: principal,
	})
}

// RevokeRole removes principal from role's member set. RoleAdmin required.
func (c *Contract) RevokeRole(caller token.Principal, role access.Role, principal token.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.roles.Revoke(caller, role, principal); err != nil {
		return err
	}
	return c.committed(caller, journal.OpRevokeRole, journal.Args{
		Role:      role.String(),
		Principal: principal,
	})
}

// SetApprovalForAll records or clears the caller's blanket approval of
// operator. Available while paused.
func (c *Contract) SetApprovalForAll(caller, operator token.Principal, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approvals.Set(caller, operator, approved)
	return c.committed(caller, journal.OpSetApproval, journal.Args{
		Operator: operator,
		Approved: approved,
	})
}

// Mint creates amount units of id for to. RoleMinter required.
func (c *Contract) Mint(caller, to token.Principal, id token.AssetID, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.book.Mint(caller, to, id, amount); err != nil {
		return err
	}
	return c.committed(caller, journal.OpMint, journal.Args{
		To:      to,
		IDs:     []token.AssetID{id},
		Amounts: amountsDec(amount),
	})
}

// MintBatch creates amounts[i] units of ids[i] for to, atomically.
func (c *Contract) MintBatch(caller, to token.Principal, ids []token.AssetID, amounts []*uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.book.MintBatch(caller, to, ids, amounts); err != nil {
		return err
	}
	return c.committed(caller, journal.OpMintBatch, journal.Args{
		To:      to,
		IDs:     ids,
		Amounts: amountsDec(amounts...),
	})
}

// Burn destroys amount units of id owned by from. The caller must be from
// or an operator approved by from under the initial ruleset.
func (c *Contract) Burn(caller, from token.Principal, id token.AssetID, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.book.Burn(caller, from, id, amount); err != nil {
		return err
	}
	return c.committed(caller, journal.OpBurn, journal.Args{
		From:    from,
		IDs:     []token.AssetID{id},
		Amounts: amountsDec(amount),
	})
}

// BurnBatch destroys amounts[i] units of ids[i] owned by from, atomically.
func (c *Contract) BurnBatch(caller, from token.Principal, ids []token.AssetID, amounts []*uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.book.BurnBatch(caller, from, ids, amounts); err != nil {
		return err
	}
	return c.committed(caller, journal.OpBurnBatch, journal.Args{
		From:    from,
		IDs:     ids,
		Amounts: amountsDec(amounts...),
	})
}

// Transfer moves amount units of id from from to to. The caller must be
// from or an operator approved by from.
func (c *Contract) Transfer(caller, from, to token.Principal, id token.AssetID, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.book.Transfer(caller, from, to, id, amount); err != nil {
		return err
	}
	return c.committed(caller, journal.OpTransfer, journal.Args{
		From:    from,
		To:      to,
		IDs:     []token.AssetID{id},
		Amounts: amountsDec(amount),
	})
}

// TransferBatch moves amounts[i] units of ids[i] from from to to,
// atomically.
func (c *Contract) TransferBatch(caller, from, to token.Principal, ids []token.AssetID, amounts []*uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.book.TransferBatch(caller, from, to, ids, amounts); err != nil {
		return err
	}
	return c.committed(caller, journal.OpTransferBatch, journal.Args{
		From:    from,
		To:      to,
		IDs:     ids,
		Amounts: amountsDec(amounts...),
	})
}

// SetBaseURI replaces the metadata base template. RoleURISetter required.
func (c *Contract) SetBaseURI(caller token.Principal, base string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.meta.SetBaseURI(caller, base); err != nil {
		return err
	}
	return c.committed(caller, journal.OpSetBaseURI, journal.Args{URI: base})
}

// Upgrade swaps the implementation marker and rebinds the behavior policy.
// RoleUpgrader required. Ledger, role, approval, pause, and metadata state
// are untouched; markers without a registered ruleset run the initial
// policy.
func (c *Contract) Upgrade(caller token.Principal, next upgrade.Version) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.upgrades.Apply(caller, next); err != nil {
		return err
	}
	c.book.SetPolicy(c.policyFor(next))
	return c.committed(caller, journal.OpUpgrade, journal.Args{Version: string(next)})
}

func (c *Contract) policyFor(v upgrade.Version) ledger.Policy {
	if p, ok := c.rulesets[v]; ok {
		return p
	}
	return c.rulesets[upgrade.Initial]
}

// committed runs after a state change has applied: it advances the
// operation sequence and, when a journal is configured, appends the entry
// together with a digest of the state it produced. Failed operations are
// never journaled and never advance the sequence.
func (c *Contract) committed(caller token.Principal, op journal.Op, args journal.Args) error {
	c.sequence++
	if c.store == nil {
		return nil
	}
	e := journal.NewEntry(c.sequence, c.now(), op, caller, args)
	e.Digest = c.digestLocked()
	if err := c.store.Append(context.Background(), e); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

func amountsDec(amounts ...*uint256.Int) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		if a == nil {
			out[i] = "0"
			continue
		}
		out[i] = a.Dec()
	}
	return out
}
