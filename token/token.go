// Package token defines the identity types shared by every ledger component:
// principals (the accounts that call operations and own balances) and asset
// ids (the fungible lot classes whose balances the ledger tracks).
package token

import (
	"errors"
	"strconv"
)

// ErrZeroPrincipal rejects operations that name the null principal where a
// real account is required: mint and transfer destinations, burn and
// transfer sources, and every principal passed to initialization.
var ErrZeroPrincipal = errors.New("token: zero principal")

// Principal identifies one account. The zero value is the null principal,
// which can never be a source or destination of units.
type Principal string

// IsZero reports whether p is the null principal.
func (p Principal) IsZero() bool { return p == "" }

// String returns the principal's identifier.
func (p Principal) String() string { return string(p) }

// AssetID identifies one asset class. Ids need no registration: an asset
// exists implicitly as soon as units of it are minted, and every id is a
// valid query target.
type AssetID uint64

// String renders the id in decimal, the canonical form used in metadata
// URIs and journal entries.
func (id AssetID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ParseAssetID parses the canonical decimal form produced by String.
func ParseAssetID(s string) (AssetID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return AssetID(n), nil
}
