package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pflow-xyz/go-lotledger/journal"
	"github.com/pflow-xyz/go-lotledger/token"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) journal.Store {
		return journal.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) journal.Store {
		store, err := journal.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create sqlite store: %v", err)
		}
		return store
	})
}

func TestSQLiteStoreFile(t *testing.T) {
	path := t.TempDir() + "/journal.db"
	ctx := context.Background()

	store, err := journal.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e := journal.NewEntry(1, time.Now(), journal.OpMint, "minter", journal.Args{
		To:      "alice",
		IDs:     []token.AssetID{7},
		Amounts: []string{"100"},
	})
	e.Digest = "abc123"
	if err := store.Append(ctx, e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and confirm the entry survived intact.
	store, err = journal.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	entries, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.Seq != 1 || got.ID != e.ID || got.Op != journal.OpMint || got.Caller != "minter" {
		t.Errorf("entry = %+v, want the appended one", got)
	}
	if got.Args.To != "alice" || len(got.Args.IDs) != 1 || got.Args.IDs[0] != 7 || got.Args.Amounts[0] != "100" {
		t.Errorf("args = %+v, want mint args", got.Args)
	}
	if got.Digest != "abc123" {
		t.Errorf("digest = %q, want abc123", got.Digest)
	}
	if !got.Time.Equal(e.Time) {
		t.Errorf("time = %v, want %v", got.Time, e.Time)
	}
}

func runStoreTests(t *testing.T, newStore func(t *testing.T) journal.Store) {
	entry := func(seq uint64, op journal.Op) journal.Entry {
		return journal.NewEntry(seq, time.Now(), op, "caller", journal.Args{})
	}

	t.Run("AppendAndRead", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		if err := store.Append(ctx, entry(1, journal.OpInitialize)); err != nil {
			t.Fatalf("append 1: %v", err)
		}
		if err := store.Append(ctx, entry(2, journal.OpMint)); err != nil {
			t.Fatalf("append 2: %v", err)
		}

		entries, err := store.ReadAll(ctx)
		if err != nil {
			t.Fatalf("read all: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].Op != journal.OpInitialize || entries[1].Op != journal.OpMint {
			t.Errorf("ops = %s, %s; want initialize, mint", entries[0].Op, entries[1].Op)
		}
		if entries[0].ID == entries[1].ID {
			t.Error("entry ids should be unique")
		}
	})

	t.Run("SequenceGap", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		// An empty store accepts only seq 1.
		if err := store.Append(ctx, entry(3, journal.OpMint)); !errors.Is(err, journal.ErrSequenceGap) {
			t.Errorf("append seq 3 to empty store = %v, want ErrSequenceGap", err)
		}

		if err := store.Append(ctx, entry(1, journal.OpInitialize)); err != nil {
			t.Fatalf("append 1: %v", err)
		}

		// Repeats and skips both fail.
		if err := store.Append(ctx, entry(1, journal.OpMint)); !errors.Is(err, journal.ErrSequenceGap) {
			t.Errorf("repeat seq 1 = %v, want ErrSequenceGap", err)
		}
		if err := store.Append(ctx, entry(3, journal.OpMint)); !errors.Is(err, journal.ErrSequenceGap) {
			t.Errorf("skip to seq 3 = %v, want ErrSequenceGap", err)
		}

		// The failed appends must not have landed.
		last, err := store.LastSeq(ctx)
		if err != nil {
			t.Fatalf("last seq: %v", err)
		}
		if last != 1 {
			t.Errorf("last seq = %d, want 1", last)
		}
	})

	t.Run("ReadFrom", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		for seq := uint64(1); seq <= 5; seq++ {
			if err := store.Append(ctx, entry(seq, journal.OpMint)); err != nil {
				t.Fatalf("append %d: %v", seq, err)
			}
		}

		entries, err := store.ReadFrom(ctx, 3)
		if err != nil {
			t.Fatalf("read from: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("got %d entries, want 3", len(entries))
		}
		if entries[0].Seq != 3 {
			t.Errorf("first seq = %d, want 3", entries[0].Seq)
		}
	})

	t.Run("LastSeqEmpty", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		last, err := store.LastSeq(context.Background())
		if err != nil {
			t.Fatalf("last seq: %v", err)
		}
		if last != 0 {
			t.Errorf("last seq of empty store = %d, want 0", last)
		}
	})
}
