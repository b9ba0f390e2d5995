package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/journal"
	"github.com/pflow-xyz/go-lotledger/ledger"
	"github.com/pflow-xyz/go-lotledger/token"
	"github.com/pflow-xyz/go-lotledger/upgrade"
)

// driveHistory runs a representative slice of every operation against c.
func driveHistory(t *testing.T, c *Contract) {
	t.Helper()
	steps := []struct {
		name string
		run  func() error
	}{
		{"initialize", func() error { return c.Initialize(deployer, admin, pauser, minter, setter, upgrader) }},
		{"grant", func() error { return c.GrantRole(admin, access.RoleMinter, carol) }},
		{"mint", func() error { return c.Mint(carol, alice, 1, uint256.NewInt(1000)) }},
		{"mint-batch", func() error {
			return c.MintBatch(minter, bob, []token.AssetID{2, 3, 2}, []*uint256.Int{
				uint256.NewInt(10), uint256.NewInt(20), uint256.NewInt(30),
			})
		}},
		{"approve", func() error { return c.SetApprovalForAll(alice, bob, true) }},
		{"transfer", func() error { return c.Transfer(bob, alice, carol, 1, uint256.NewInt(400)) }},
		{"transfer-batch", func() error {
			return c.TransferBatch(carol, carol, bob, []token.AssetID{1}, []*uint256.Int{uint256.NewInt(150)})
		}},
		{"set-base-uri", func() error { return c.SetBaseURI(setter, "https://meta.example/") }},
		{"pause", func() error { return c.Pause(pauser) }},
		{"unpause", func() error { return c.Unpause(pauser) }},
		{"burn", func() error { return c.Burn(alice, alice, 1, uint256.NewInt(100)) }},
		{"burn-batch", func() error {
			return c.BurnBatch(bob, bob, []token.AssetID{2, 3}, []*uint256.Int{uint256.NewInt(40), uint256.NewInt(5)})
		}},
		{"revoke", func() error { return c.RevokeRole(admin, access.RoleMinter, carol) }},
		{"unapprove", func() error { return c.SetApprovalForAll(alice, bob, false) }},
		{"upgrade", func() error { return c.Upgrade(upgrader, "v2") }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
	}
}

func TestReplayRebuildsIdenticalState(t *testing.T) {
	store := journal.NewMemoryStore()
	live := New(Config{Journal: store})
	driveHistory(t, live)

	entries, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(entries) != 15 {
		t.Fatalf("journal holds %d entries, want 15", len(entries))
	}

	rebuilt, err := Replay(entries, Config{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if rebuilt.Digest() != live.Digest() {
		t.Error("replayed contract diverged from the live one")
	}
	if got := rebuilt.Sequence(); got != live.Sequence() {
		t.Errorf("sequence = %d, want %d", got, live.Sequence())
	}
	if got := rebuilt.BalanceOf(carol, 1); !got.Eq(uint256.NewInt(250)) {
		t.Errorf("carol balance = %s, want 250", got.Dec())
	}
	if err := rebuilt.CheckConservation(); err != nil {
		t.Errorf("conservation: %v", err)
	}
}

func TestReplayVerifiesDigests(t *testing.T) {
	store := journal.NewMemoryStore()
	live := New(Config{Journal: store})
	driveHistory(t, live)

	entries, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}

	// Tamper with one amount; the digest of that entry no longer matches
	// the state the tampered operation produces.
	entries[2].Args.Amounts[0] = "999"
	_, err = Replay(entries, Config{})
	if !errors.Is(err, journal.ErrDigestMismatch) {
		t.Errorf("replay of tampered journal = %v, want ErrDigestMismatch", err)
	}
}

func TestReplayRejectsGaps(t *testing.T) {
	store := journal.NewMemoryStore()
	live := New(Config{Journal: store})
	driveHistory(t, live)

	entries, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}

	// Dropping an entry leaves a hole.
	gapped := append([]journal.Entry{}, entries[:3]...)
	gapped = append(gapped, entries[4:]...)
	if _, err := Replay(gapped, Config{}); !errors.Is(err, journal.ErrSequenceGap) {
		t.Errorf("replay with gap = %v, want ErrSequenceGap", err)
	}

	// Reordering breaks the sequence too.
	swapped := append([]journal.Entry{}, entries...)
	swapped[1], swapped[2] = swapped[2], swapped[1]
	if _, err := Replay(swapped, Config{}); !errors.Is(err, journal.ErrSequenceGap) {
		t.Errorf("replay reordered = %v, want ErrSequenceGap", err)
	}
}

func TestReplayRejectsUnknownOp(t *testing.T) {
	entries := []journal.Entry{
		journal.NewEntry(1, time.Now(), "defragment", alice, journal.Args{}),
	}
	if _, err := Replay(entries, Config{}); err == nil {
		t.Error("unknown op should fail replay")
	}
}

func TestReplayEmptyJournal(t *testing.T) {
	c, err := Replay(nil, Config{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if c.Initialized() {
		t.Error("empty journal should rebuild an uninitialized contract")
	}
}

func TestReplayHonorsRulesets(t *testing.T) {
	rules := map[upgrade.Version]ledger.Policy{"v2-open": {OpenBurns: true}}

	store := journal.NewMemoryStore()
	live := New(Config{Journal: store, Rulesets: rules})
	if err := live.Initialize(deployer, admin, pauser, minter, setter, upgrader); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	mustMint(t, live, alice, 1, 100)
	if err := live.Upgrade(upgrader, "v2-open"); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	// Legal only under the open-burn ruleset.
	if err := live.Burn(bob, alice, 1, uint256.NewInt(40)); err != nil {
		t.Fatalf("open burn: %v", err)
	}

	entries, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}

	// With the same bindings the journal replays cleanly.
	rebuilt, err := Replay(entries, Config{Rulesets: rules})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if rebuilt.Digest() != live.Digest() {
		t.Error("replay with matching rulesets diverged")
	}

	// Without the binding the burn is rejected and replay fails, which
	// is the right loud answer to replaying under different rules.
	if _, err := Replay(entries, Config{}); err == nil {
		t.Error("replay without the ruleset should fail")
	}
}

func TestJournalAgainstSQLite(t *testing.T) {
	store, err := journal.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	defer store.Close()

	live := New(Config{Journal: store})
	driveHistory(t, live)

	entries, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	rebuilt, err := Replay(entries, Config{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if rebuilt.Digest() != live.Digest() {
		t.Error("sqlite-journaled replay diverged")
	}

	last, err := store.LastSeq(context.Background())
	if err != nil {
		t.Fatalf("last seq: %v", err)
	}
	if last != live.Sequence() {
		t.Errorf("journal last seq = %d, contract sequence = %d", last, live.Sequence())
	}
}
