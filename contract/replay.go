package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/journal"
	"github.com/pflow-xyz/go-lotledger/upgrade"
)

// Replay rebuilds a contract by re-executing a journal from the beginning.
// Entries must be gap-free from seq 1, and every entry must apply cleanly; a
// journal of committed operations satisfies both by construction. Entries
// that carry a digest are verified as they apply, so a forged or reordered
// journal fails at the first divergence.
//
// cfg supplies the ruleset bindings; replay is deterministic when the
// bindings match the ones the journal was recorded under. The rebuilt
// contract journals nothing during replay, whatever cfg.Journal says.
func Replay(entries []journal.Entry, cfg Config) (*Contract, error) {
	cfg.Journal = nil
	c := New(cfg)

	for i, e := range entries {
		if want := uint64(i) + 1; e.Seq != want {
			return nil, fmt.Errorf("%w: entry %d has seq %d, want %d",
				journal.ErrSequenceGap, i, e.Seq, want)
		}
		if err := c.apply(e); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", e.Seq, e.Op, err)
		}
		if e.Digest != "" {
			if got := c.Digest(); got != e.Digest {
				return nil, fmt.Errorf("%w: entry %d (%s): got %s, want %s",
					journal.ErrDigestMismatch, e.Seq, e.Op, got, e.Digest)
			}
		}
	}
	return c, nil
}

func (c *Contract) apply(e journal.Entry) error {
	switch e.Op {
	case journal.OpInitialize:
		return c.Initialize(e.Caller, e.Args.Admin, e.Args.Pauser, e.Args.Minter, e.Args.URISetter, e.Args.Upgrader)

	case journal.OpPause:
		return c.Pause(e.Caller)

	case journal.OpUnpause:
		return c.Unpause(e.Caller)

	case journal.OpGrantRole, journal.OpRevokeRole:
		role, err := access.ParseRole(e.Args.Role)
		if err != nil {
			return err
		}
		if e.Op == journal.OpGrantRole {
			return c.GrantRole(e.Caller, role, e.Args.Principal)
		}
		return c.RevokeRole(e.Caller, role, e.Args.Principal)

	case journal.OpSetApproval:
		return c.SetApprovalForAll(e.Caller, e.Args.Operator, e.Args.Approved)

	case journal.OpMint:
		amount, err := singleAmount(e)
		if err != nil {
			return err
		}
		return c.Mint(e.Caller, e.Args.To, e.Args.IDs[0], amount)

	case journal.OpMintBatch:
		amounts, err := parseAmounts(e.Args.Amounts)
		if err != nil {
			return err
		}
		return c.MintBatch(e.Caller, e.Args.To, e.Args.IDs, amounts)

	case journal.OpBurn:
		amount, err := singleAmount(e)
		if err != nil {
			return err
		}
		return c.Burn(e.Caller, e.Args.From, e.Args.IDs[0], amount)

	case journal.OpBurnBatch:
		amounts, err := parseAmounts(e.Args.Amounts)
		if err != nil {
			return err
		}
		return c.BurnBatch(e.Caller, e.Args.From, e.Args.IDs, amounts)

	case journal.OpTransfer:
		amount, err := singleAmount(e)
		if err != nil {
			return err
		}
		return c.Transfer(e.Caller, e.Args.From, e.Args.To, e.Args.IDs[0], amount)

	case journal.OpTransferBatch:
		amounts, err := parseAmounts(e.Args.Amounts)
		if err != nil {
			return err
		}
		return c.TransferBatch(e.Caller, e.Args.From, e.Args.To, e.Args.IDs, amounts)

	case journal.OpSetBaseURI:
		return c.SetBaseURI(e.Caller, e.Args.URI)

	case journal.OpUpgrade:
		return c.Upgrade(e.Caller, upgrade.Version(e.Args.Version))

	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
}

func singleAmount(e journal.Entry) (*uint256.Int, error) {
	if len(e.Args.IDs) != 1 || len(e.Args.Amounts) != 1 {
		return nil, fmt.Errorf("malformed %s entry: %d ids, %d amounts",
			e.Op, len(e.Args.IDs), len(e.Args.Amounts))
	}
	return parseAmount(e.Args.Amounts[0])
}

func parseAmount(dec string) (*uint256.Int, error) {
	v := new(uint256.Int)
	if err := v.SetFromDecimal(dec); err != nil {
		return nil, fmt.Errorf("amount %q: %w", dec, err)
	}
	return v, nil
}

func parseAmounts(decs []string) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(decs))
	for i, dec := range decs {
		v, err := parseAmount(dec)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
