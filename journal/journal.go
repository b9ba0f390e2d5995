// Package journal records every committed ledger operation as an
// append-only, gap-free sequence. A journal is sufficient to rebuild the
// full contract state by replay, and each entry can carry a digest of the
// state it produced so replays are verifiable step by step.
package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/pflow-xyz/go-lotledger/token"
)

// Op names one journaled operation.
type Op string

const (
	OpInitialize    Op = "initialize"
	OpMint          Op = "mint"
	OpMintBatch     Op = "mint-batch"
	OpBurn          Op = "burn"
	OpBurnBatch     Op = "burn-batch"
	OpTransfer      Op = "transfer"
	OpTransferBatch Op = "transfer-batch"
	OpPause         Op = "pause"
	OpUnpause       Op = "unpause"
	OpSetBaseURI    Op = "set-base-uri"
	OpGrantRole     Op = "grant-role"
	OpRevokeRole    Op = "revoke-role"
	OpSetApproval   Op = "set-approval"
	OpUpgrade       Op = "upgrade"
)

// Args carries the arguments of one operation. Each op uses the fields it
// needs and leaves the rest empty; amounts travel as decimal strings so the
// encoding is stable across stores.
type Args struct {
	From      token.Principal `json:"from,omitempty"`
	To        token.Principal `json:"to,omitempty"`
	Operator  token.Principal `json:"operator,omitempty"`
	Approved  bool            `json:"approved,omitempty"`
	IDs       []token.AssetID `json:"ids,omitempty"`
	Amounts   []string        `json:"amounts,omitempty"`
	Role      string          `json:"role,omitempty"`
	Principal token.Principal `json:"principal,omitempty"`
	URI       string          `json:"uri,omitempty"`
	Version   string          `json:"version,omitempty"`

	// Initialize names the first holder of each role.
	Admin     token.Principal `json:"admin,omitempty"`
	Pauser    token.Principal `json:"pauser,omitempty"`
	Minter    token.Principal `json:"minter,omitempty"`
	URISetter token.Principal `json:"uri_setter,omitempty"`
	Upgrader  token.Principal `json:"upgrader,omitempty"`
}

// Entry is one committed operation. Seq is 1-based and gap-free within a
// journal; Digest, when present, is the hex digest of the state after the
// operation applied.
type Entry struct {
	Seq    uint64          `json:"seq"`
	ID     string          `json:"id"`
	Time   time.Time       `json:"time"`
	Op     Op              `json:"op"`
	Caller token.Principal `json:"caller"`
	Args   Args            `json:"args"`
	Digest string          `json:"digest,omitempty"`
}

// NewEntry assembles an entry with a fresh unique id.
func NewEntry(seq uint64, at time.Time, op Op, caller token.Principal, args Args) Entry {
	return Entry{
		Seq:    seq,
		ID:     uuid.New().String(),
		Time:   at.UTC(),
		Op:     op,
		Caller: caller,
		Args:   args,
	}
}
