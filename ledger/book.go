// Package ledger tracks, per asset, how many units each principal owns,
// together with per-asset lifetime minted and burned counters. Every
// mutation runs the same pipeline: authorization, pause gate, argument
// validation, checked 256-bit arithmetic staged in a draft, then an atomic
// commit. A failed step leaves the book untouched, so batch operations are
// all-or-nothing, and for every asset the book maintains
//
//	sum of balances == minted - burned
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/pause"
	"github.com/pflow-xyz/go-lotledger/token"
)

var (
	// ErrLengthMismatch rejects batch calls whose ids and amounts slices
	// differ in length. The check runs before any per-pair work.
	ErrLengthMismatch = errors.New("ledger: ids and amounts length mismatch")

	// ErrInsufficientBalance rejects burns and transfers that exceed the
	// source balance. Balances never go negative.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrOverflow rejects additions that would wrap a 256-bit balance or
	// counter.
	ErrOverflow = errors.New("ledger: arithmetic overflow")

	// ErrZeroAmount rejects mints of zero units. Zero-amount burns and
	// transfers are legal no-ops; a zero mint would record an asset with
	// no units and is treated as a caller error.
	ErrZeroAmount = errors.New("ledger: mint amount must be positive")

	// ErrConservation reports a broken minted-burned-balance identity. It
	// can only surface from CheckConservation and indicates a bug in the
	// book itself, never a bad call.
	ErrConservation = errors.New("ledger: conservation violated")
)

// Policy holds the authorization choices that are allowed to differ between
// implementation versions. The zero value is the strict initial behavior.
type Policy struct {
	// OpenBurns lets any caller burn any owner's units. The initial
	// behavior keeps burns restricted to the owner or an approved
	// operator, the same relation transfers use.
	OpenBurns bool
}

// Book is the balance table. It is not safe for concurrent use; the owning
// contract serializes access.
type Book struct {
	roles     *access.RoleSet
	approvals *access.ApprovalSet
	gate      *pause.Gate
	policy    Policy

	// balances[id][owner], minted[id], and burned[id] hold only nonzero
	// values; absent entries read as zero.
	balances map[token.AssetID]map[token.Principal]*uint256.Int
	minted   map[token.AssetID]*uint256.Int
	burned   map[token.AssetID]*uint256.Int
}

// NewBook returns an empty book guarded by the given authorization relations
// and pause gate.
func NewBook(roles *access.RoleSet, approvals *access.ApprovalSet, gate *pause.Gate) *Book {
	return &Book{
		roles:     roles,
		approvals: approvals,
		gate:      gate,
		balances:  make(map[token.AssetID]map[token.Principal]*uint256.Int),
		minted:    make(map[token.AssetID]*uint256.Int),
		burned:    make(map[token.AssetID]*uint256.Int),
	}
}

// SetPolicy swaps the book's behavior policy. State is untouched; only
// future authorization decisions change.
func (b *Book) SetPolicy(p Policy) { b.policy = p }

// Policy returns the active behavior policy.
func (b *Book) Policy() Policy { return b.policy }

// Mint creates amount new units of id owned by to. The caller must hold
// RoleMinter, the gate must be active, to must be a real principal, and
// amount must be positive.
func (b *Book) Mint(caller, to token.Principal, id token.AssetID, amount *uint256.Int) error {
	if err := b.roles.Require(caller, access.RoleMinter); err != nil {
		return err
	}
	if err := b.gate.RequireActive(); err != nil {
		return err
	}
	d := b.newDraft()
	if err := d.mint(to, id, amount); err != nil {
		return err
	}
	d.commit()
	return nil
}

// MintBatch creates amounts[i] units of ids[i] for to, for every i, as one
// atomic operation. Duplicate ids accumulate. Any failing pair aborts the
// whole batch with no effect.
func (b *Book) MintBatch(caller, to token.Principal, ids []token.AssetID, amounts []*uint256.Int) error {
	if err := b.roles.Require(caller, access.RoleMinter); err != nil {
		return err
	}
	if err := b.gate.RequireActive(); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	d := b.newDraft()
	for i := range ids {
		if err := d.mint(to, ids[i], amounts[i]); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
	}
	d.commit()
	return nil
}

// Burn destroys amount units of id owned by from. The caller must be from or
// an operator approved by from, unless the active policy opens burns to any
// caller. Burning zero units is a legal no-op that still requires an active
// gate and authorization.
func (b *Book) Burn(caller, from token.Principal, id token.AssetID, amount *uint256.Int) error {
	if err := b.requireBurnAuth(caller, from); err != nil {
		return err
	}
	if err := b.gate.RequireActive(); err != nil {
		return err
	}
	d := b.newDraft()
	if err := d.burn(from, id, amount); err != nil {
		return err
	}
	d.commit()
	return nil
}

// BurnBatch destroys amounts[i] units of ids[i] owned by from, for every i,
// as one atomic operation.
func (b *Book) BurnBatch(caller, from token.Principal, ids []token.AssetID, amounts []*uint256.Int) error {
	if err := b.requireBurnAuth(caller, from); err != nil {
		return err
	}
	if err := b.gate.RequireActive(); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	d := b.newDraft()
	for i := range ids {
		if err := d.burn(from, ids[i], amounts[i]); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
	}
	d.commit()
	return nil
}

// Transfer moves amount units of id from from to to. The caller must be from
// or an operator approved by from. Transferring zero units is a legal no-op;
// self-transfers are legal and leave the balance unchanged.
func (b *Book) Transfer(caller, from, to token.Principal, id token.AssetID, amount *uint256.Int) error {
	if err := b.approvals.RequireOwnerOrOperator(caller, from); err != nil {
		return err
	}
	if err := b.gate.RequireActive(); err != nil {
		return err
	}
	d := b.newDraft()
	if err := d.transfer(from, to, id, amount); err != nil {
		return err
	}
	d.commit()
	return nil
}

// TransferBatch moves amounts[i] units of ids[i] from from to to, for every
// i, as one atomic operation.
func (b *Book) TransferBatch(caller, from, to token.Principal, ids []token.AssetID, amounts []*uint256.Int) error {
	if err := b.approvals.RequireOwnerOrOperator(caller, from); err != nil {
		return err
	}
	if err := b.gate.RequireActive(); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	d := b.newDraft()
	for i := range ids {
		if err := d.transfer(from, to, ids[i], amounts[i]); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
	}
	d.commit()
	return nil
}

func (b *Book) requireBurnAuth(caller, from token.Principal) error {
	if b.policy.OpenBurns {
		return nil
	}
	return b.approvals.RequireOwnerOrOperator(caller, from)
}

// BalanceOf returns how many units of id owner holds. Pure query; the result
// is the caller's to keep.
func (b *Book) BalanceOf(owner token.Principal, id token.AssetID) *uint256.Int {
	if v := b.balances[id][owner]; v != nil {
		return v.Clone()
	}
	return uint256.NewInt(0)
}

// TotalMinted returns the lifetime minted counter for id. Pure query.
func (b *Book) TotalMinted(id token.AssetID) *uint256.Int {
	if v := b.minted[id]; v != nil {
		return v.Clone()
	}
	return uint256.NewInt(0)
}

// TotalBurned returns the lifetime burned counter for id. Pure query.
func (b *Book) TotalBurned(id token.AssetID) *uint256.Int {
	if v := b.burned[id]; v != nil {
		return v.Clone()
	}
	return uint256.NewInt(0)
}

// Supply returns the circulating supply of id, minted minus burned. Pure
// query.
func (b *Book) Supply(id token.AssetID) *uint256.Int {
	s := b.TotalMinted(id)
	return s.Sub(s, b.TotalBurned(id))
}

// Assets returns every asset id with mint history, sorted ascending.
func (b *Book) Assets() []token.AssetID {
	out := make([]token.AssetID, 0, len(b.minted))
	for id := range b.minted {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Holders returns every principal with a nonzero balance of id, sorted.
func (b *Book) Holders(id token.AssetID) []token.Principal {
	owners := b.balances[id]
	out := make([]token.Principal, 0, len(owners))
	for p := range owners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CheckConservation verifies that for every asset with history the balances
// sum to minted minus burned. A non-nil result means the book's own
// arithmetic is broken.
func (b *Book) CheckConservation() error {
	for _, id := range b.Assets() {
		sum := uint256.NewInt(0)
		for _, v := range b.balances[id] {
			var overflow bool
			sum, overflow = sum.AddOverflow(sum, v)
			if overflow {
				return fmt.Errorf("%w: asset %s: balance sum wraps", ErrConservation, id)
			}
		}
		if supply := b.Supply(id); sum.Cmp(supply) != 0 {
			return fmt.Errorf("%w: asset %s: balances %s, supply %s",
				ErrConservation, id, sum.Dec(), supply.Dec())
		}
	}
	return nil
}
