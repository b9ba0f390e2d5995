package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pflow-xyz/go-lotledger/token"
)

// SQLiteStore persists the journal in a SQLite database, one row per entry
// keyed by sequence number. Pass ":memory:" for an ephemeral database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps appends serial and makes :memory: databases
	// behave; the sequence check below assumes no interleaved writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journal (
		seq INTEGER PRIMARY KEY,
		entry_id TEXT NOT NULL,
		at TEXT NOT NULL,
		op TEXT NOT NULL,
		caller TEXT NOT NULL,
		args TEXT NOT NULL,
		digest TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var last uint64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&last); err != nil {
		return fmt.Errorf("last seq: %w", err)
	}
	if e.Seq != last+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrSequenceGap, e.Seq, last+1)
	}

	args, err := json.Marshal(e.Args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO journal (seq, entry_id, at, op, caller, args, digest) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Seq, e.ID, e.Time.UTC().Format(time.RFC3339Nano), string(e.Op), string(e.Caller), string(args), e.Digest)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]Entry, error) {
	return s.ReadFrom(ctx, 0)
}

func (s *SQLiteStore) ReadFrom(ctx context.Context, from uint64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, entry_id, at, op, caller, args, digest FROM journal WHERE seq >= ? ORDER BY seq`, from)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			at     string
			op     string
			caller string
			args   string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &at, &op, &caller, &args, &e.Digest); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Time, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("entry %d: parse time: %w", e.Seq, err)
		}
		e.Op = Op(op)
		e.Caller = token.Principal(caller)
		if err := json.Unmarshal([]byte(args), &e.Args); err != nil {
			return nil, fmt.Errorf("entry %d: decode args: %w", e.Seq, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LastSeq(ctx context.Context) (uint64, error) {
	var last uint64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return last, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
