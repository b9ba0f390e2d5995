// Package attest produces succinct proofs that individual ledger steps
// performed exactly the arithmetic the ledger claims: a mint credited and
// counted the same amount, a burn debited a sufficient balance, a transfer
// moved value without creating or destroying any. Proofs are an audit aid
// layered over the journal; ledger correctness never depends on them.
//
// All witness values are public. Attestable values must fit 64 bits, the
// range the in-circuit checks cover; the ledger itself works on the full
// 256-bit range.
package attest

import (
	"github.com/consensys/gnark/frontend"
)

// Kind names an attestable step shape.
type Kind string

const (
	KindMint     Kind = "mint"
	KindBurn     Kind = "burn"
	KindTransfer Kind = "transfer"
)

// MintCircuit proves one mint: the recipient balance and the minted counter
// both grew by exactly Amount, and Amount is nonzero.
type MintCircuit struct {
	ToPre      frontend.Variable `gnark:",public"`
	ToPost     frontend.Variable `gnark:",public"`
	MintedPre  frontend.Variable `gnark:",public"`
	MintedPost frontend.Variable `gnark:",public"`
	Amount     frontend.Variable `gnark:",public"`
}

func (c *MintCircuit) Define(api frontend.API) error {
	api.ToBinary(c.ToPre, 64)
	api.ToBinary(c.MintedPre, 64)
	api.ToBinary(c.Amount, 64)
	api.AssertIsDifferent(c.Amount, 0)
	api.AssertIsEqual(c.ToPost, api.Add(c.ToPre, c.Amount))
	api.AssertIsEqual(c.MintedPost, api.Add(c.MintedPre, c.Amount))
	return nil
}

// BurnCircuit proves one burn: the source held at least Amount, lost exactly
// Amount, and the burned counter grew by the same.
type BurnCircuit struct {
	FromPre    frontend.Variable `gnark:",public"`
	FromPost   frontend.Variable `gnark:",public"`
	BurnedPre  frontend.Variable `gnark:",public"`
	BurnedPost frontend.Variable `gnark:",public"`
	Amount     frontend.Variable `gnark:",public"`
}

func (c *BurnCircuit) Define(api frontend.API) error {
	api.ToBinary(c.FromPre, 64)
	api.ToBinary(c.BurnedPre, 64)
	api.ToBinary(c.Amount, 64)
	// FromPre - Amount fits 64 bits, so the debit cannot underflow.
	api.ToBinary(api.Sub(c.FromPre, c.Amount), 64)
	api.AssertIsEqual(c.FromPost, api.Sub(c.FromPre, c.Amount))
	api.AssertIsEqual(c.BurnedPost, api.Add(c.BurnedPre, c.Amount))
	return nil
}

// TransferCircuit proves one transfer between distinct principals: the
// source lost exactly what the destination gained, with a sufficient source
// balance.
type TransferCircuit struct {
	FromPre  frontend.Variable `gnark:",public"`
	FromPost frontend.Variable `gnark:",public"`
	ToPre    frontend.Variable `gnark:",public"`
	ToPost   frontend.Variable `gnark:",public"`
	Amount   frontend.Variable `gnark:",public"`
}

func (c *TransferCircuit) Define(api frontend.API) error {
	api.ToBinary(c.FromPre, 64)
	api.ToBinary(c.ToPre, 64)
	api.ToBinary(c.Amount, 64)
	api.ToBinary(api.Sub(c.FromPre, c.Amount), 64)
	api.AssertIsEqual(c.FromPost, api.Sub(c.FromPre, c.Amount))
	api.AssertIsEqual(c.ToPost, api.Add(c.ToPre, c.Amount))
	return nil
}

func blankCircuit(k Kind) frontend.Circuit {
	switch k {
	case KindMint:
		return &MintCircuit{}
	case KindBurn:
		return &BurnCircuit{}
	default:
		return &TransferCircuit{}
	}
}
