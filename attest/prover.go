package attest

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/holiman/uint256"
)

// ErrValueTooWide rejects a witness value outside the 64-bit range the
// circuits constrain.
var ErrValueTooWide = errors.New("attest: value exceeds 64 bits")

// Prover compiles each step circuit once, runs the groth16 setup, and
// generates proofs from recorded step values. Safe for concurrent use;
// compilation happens lazily on the first proof of each kind.
type Prover struct {
	mu       sync.Mutex
	curve    ecc.ID
	compiled map[Kind]*compiledCircuit
}

type compiledCircuit struct {
	cs          constraint.ConstraintSystem
	pk          groth16.ProvingKey
	vk          groth16.VerifyingKey
	constraints int
}

// Proof is one attested step: the groth16 proof plus the public witness it
// commits to.
type Proof struct {
	Kind        Kind
	Constraints int

	proof  groth16.Proof
	public witness.Witness
}

// NewProver returns a prover over BN254.
func NewProver() *Prover {
	return &Prover{
		curve:    ecc.BN254,
		compiled: make(map[Kind]*compiledCircuit),
	}
}

func (p *Prover) circuit(k Kind) (*compiledCircuit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cc, ok := p.compiled[k]; ok {
		return cc, nil
	}

	cs, err := frontend.Compile(p.curve.ScalarField(), r1cs.NewBuilder, blankCircuit(k))
	if err != nil {
		return nil, fmt.Errorf("compile %s circuit: %w", k, err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("setup %s circuit: %w", k, err)
	}

	cc := &compiledCircuit{cs: cs, pk: pk, vk: vk, constraints: cs.GetNbConstraints()}
	p.compiled[k] = cc
	return cc, nil
}

// Constraints returns the constraint count of kind's circuit, compiling it
// if needed.
func (p *Prover) Constraints(k Kind) (int, error) {
	cc, err := p.circuit(k)
	if err != nil {
		return 0, err
	}
	return cc.constraints, nil
}

// ProveMint attests one mint step from the balances and counter values
// around it.
func (p *Prover) ProveMint(toPre, toPost, mintedPre, mintedPost, amount *uint256.Int) (*Proof, error) {
	vals, err := fieldValues(toPre, toPost, mintedPre, mintedPost, amount)
	if err != nil {
		return nil, err
	}
	return p.prove(KindMint, &MintCircuit{
		ToPre:      vals[0],
		ToPost:     vals[1],
		MintedPre:  vals[2],
		MintedPost: vals[3],
		Amount:     vals[4],
	})
}

// ProveBurn attests one burn step.
func (p *Prover) ProveBurn(fromPre, fromPost, burnedPre, burnedPost, amount *uint256.Int) (*Proof, error) {
	vals, err := fieldValues(fromPre, fromPost, burnedPre, burnedPost, amount)
	if err != nil {
		return nil, err
	}
	return p.prove(KindBurn, &BurnCircuit{
		FromPre:    vals[0],
		FromPost:   vals[1],
		BurnedPre:  vals[2],
		BurnedPost: vals[3],
		Amount:     vals[4],
	})
}

// ProveTransfer attests one transfer step between distinct principals.
func (p *Prover) ProveTransfer(fromPre, fromPost, toPre, toPost, amount *uint256.Int) (*Proof, error) {
	vals, err := fieldValues(fromPre, fromPost, toPre, toPost, amount)
	if err != nil {
		return nil, err
	}
	return p.prove(KindTransfer, &TransferCircuit{
		FromPre:  vals[0],
		FromPost: vals[1],
		ToPre:    vals[2],
		ToPost:   vals[3],
		Amount:   vals[4],
	})
}

func (p *Prover) prove(k Kind, assignment frontend.Circuit) (*Proof, error) {
	cc, err := p.circuit(k)
	if err != nil {
		return nil, err
	}
	w, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness for %s step: %w", k, err)
	}
	proof, err := groth16.Prove(cc.cs, cc.pk, w)
	if err != nil {
		return nil, fmt.Errorf("prove %s step: %w", k, err)
	}
	public, err := w.Public()
	if err != nil {
		return nil, fmt.Errorf("public witness for %s step: %w", k, err)
	}
	return &Proof{Kind: k, Constraints: cc.constraints, proof: proof, public: public}, nil
}

// Verify checks a proof against the public witness it was generated with.
func (p *Prover) Verify(pr *Proof) error {
	cc, err := p.circuit(pr.Kind)
	if err != nil {
		return err
	}
	return groth16.Verify(pr.proof, cc.vk, pr.public)
}

// fieldValues bridges ledger amounts into circuit witnesses, enforcing the
// 64-bit attestation range up front so an out-of-range step fails with a
// clear error instead of an unsatisfied constraint.
func fieldValues(vals ...*uint256.Int) ([]*big.Int, error) {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = new(big.Int)
			continue
		}
		if !v.IsUint64() {
			return nil, fmt.Errorf("%w: %s", ErrValueTooWide, v.Dec())
		}
		out[i] = v.ToBig()
	}
	return out, nil
}
