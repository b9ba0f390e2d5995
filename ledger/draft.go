package ledger

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lotledger/token"
)

type balanceKey struct {
	id    token.AssetID
	owner token.Principal
}

// draft stages the writes of one operation as an overlay on the committed
// book. Reads see staged values first, so repeated ids inside one batch
// accumulate, and commit publishes every staged value at once. Abandoning a
// draft costs nothing, which is what makes failed batches effect-free.
type draft struct {
	book     *Book
	balances map[balanceKey]*uint256.Int
	minted   map[token.AssetID]*uint256.Int
	burned   map[token.AssetID]*uint256.Int
}

func (b *Book) newDraft() *draft {
	return &draft{
		book:     b,
		balances: make(map[balanceKey]*uint256.Int),
		minted:   make(map[token.AssetID]*uint256.Int),
		burned:   make(map[token.AssetID]*uint256.Int),
	}
}

// balance reads the staged value for (id, owner), falling back to the
// committed book. The result is a private copy.
func (d *draft) balance(owner token.Principal, id token.AssetID) *uint256.Int {
	if v, ok := d.balances[balanceKey{id, owner}]; ok {
		return v.Clone()
	}
	return d.book.BalanceOf(owner, id)
}

func (d *draft) mintedOf(id token.AssetID) *uint256.Int {
	if v, ok := d.minted[id]; ok {
		return v.Clone()
	}
	return d.book.TotalMinted(id)
}

func (d *draft) burnedOf(id token.AssetID) *uint256.Int {
	if v, ok := d.burned[id]; ok {
		return v.Clone()
	}
	return d.book.TotalBurned(id)
}

// mint stages one credit of amount units of id to to plus the matching
// minted counter bump.
func (d *draft) mint(to token.Principal, id token.AssetID, amount *uint256.Int) error {
	if to.IsZero() {
		return token.ErrZeroPrincipal
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	minted, overflow := new(uint256.Int).AddOverflow(d.mintedOf(id), amount)
	if overflow {
		return ErrOverflow
	}
	balance, overflow := new(uint256.Int).AddOverflow(d.balance(to, id), amount)
	if overflow {
		return ErrOverflow
	}
	d.minted[id] = minted
	d.balances[balanceKey{id, to}] = balance
	return nil
}

// burn stages one debit of amount units of id from from plus the matching
// burned counter bump. A zero amount stages nothing but is still legal.
func (d *draft) burn(from token.Principal, id token.AssetID, amount *uint256.Int) error {
	if from.IsZero() {
		return token.ErrZeroPrincipal
	}
	if amount == nil || amount.IsZero() {
		return nil
	}
	balance := d.balance(from, id)
	if balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	burned, overflow := new(uint256.Int).AddOverflow(d.burnedOf(id), amount)
	if overflow {
		return ErrOverflow
	}
	d.balances[balanceKey{id, from}] = balance.Sub(balance, amount)
	d.burned[id] = burned
	return nil
}

// transfer stages one debit from from and the matching credit to to. The
// self-transfer case nets to zero because the credit reads the staged debit.
func (d *draft) transfer(from, to token.Principal, id token.AssetID, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return token.ErrZeroPrincipal
	}
	if amount == nil || amount.IsZero() {
		return nil
	}
	src := d.balance(from, id)
	if src.Lt(amount) {
		return ErrInsufficientBalance
	}
	d.balances[balanceKey{id, from}] = src.Sub(src, amount)
	dst, overflow := new(uint256.Int).AddOverflow(d.balance(to, id), amount)
	if overflow {
		return ErrOverflow
	}
	d.balances[balanceKey{id, to}] = dst
	return nil
}

// commit publishes every staged value into the book. Zero balances are
// removed so the table holds only live entries.
func (d *draft) commit() {
	for key, v := range d.balances {
		owners := d.book.balances[key.id]
		if v.IsZero() {
			delete(owners, key.owner)
			if len(owners) == 0 {
				delete(d.book.balances, key.id)
			}
			continue
		}
		if owners == nil {
			owners = make(map[token.Principal]*uint256.Int)
			d.book.balances[key.id] = owners
		}
		owners[key.owner] = v
	}
	for id, v := range d.minted {
		d.book.minted[id] = v
	}
	for id, v := range d.burned {
		d.book.burned[id] = v
	}
}
