package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSequenceGap rejects an append whose Seq is not exactly one past
	// the last stored entry. Gap-free sequences are what make a journal
	// replayable without guesswork.
	ErrSequenceGap = errors.New("journal: sequence gap")

	// ErrDigestMismatch reports a replay whose rebuilt state diverged
	// from the digest an entry recorded.
	ErrDigestMismatch = errors.New("journal: digest mismatch")
)

// Store persists entries in sequence order. Implementations must be safe
// for concurrent use.
type Store interface {
	// Append adds the next entry. The entry's Seq must be exactly one
	// past the last stored sequence, 1 for an empty store, or Append
	// fails with ErrSequenceGap.
	Append(ctx context.Context, e Entry) error

	// ReadAll returns every entry in sequence order.
	ReadAll(ctx context.Context) ([]Entry, error)

	// ReadFrom returns every entry with Seq >= from, in sequence order.
	ReadFrom(ctx context.Context, from uint64) ([]Entry, error)

	// LastSeq returns the highest stored sequence, 0 for an empty store.
	LastSeq(ctx context.Context) (uint64, error)

	// Close releases underlying resources.
	Close() error
}

// MemoryStore keeps the journal in process memory. It is the store of
// choice for tests and for contracts that only need replay within one run.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if want := uint64(len(s.entries)) + 1; e.Seq != want {
		return fmt.Errorf("%w: got %d, want %d", ErrSequenceGap, e.Seq, want)
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) ReadAll(ctx context.Context) ([]Entry, error) {
	return s.ReadFrom(ctx, 0)
}

func (s *MemoryStore) ReadFrom(_ context.Context, from uint64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Seq >= from {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) LastSeq(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.entries)), nil
}

func (s *MemoryStore) Close() error { return nil }
