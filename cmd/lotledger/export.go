package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-lotledger/journal"
)

func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Destination file (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lotledger export <journal> --output <file>

Convert a journal between storage forms. The destination format follows
the --output extension: .db/.sqlite writes a SQLite database, anything
else writes JSON Lines. Entries are copied verbatim, digests included.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Database to diffable text
  lotledger export journal.db --output journal.jsonl

  # Text back to a database
  lotledger export journal.jsonl --output journal.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("journal file required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	entries, err := readJournal(fs.Arg(0))
	if err != nil {
		return err
	}

	if isSQLite(*output) {
		store, err := journal.NewSQLiteStore(*output)
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer store.Close()
		ctx := context.Background()
		for _, e := range entries {
			if err := store.Append(ctx, e); err != nil {
				return fmt.Errorf("copy entry %d: %w", e.Seq, err)
			}
		}
	} else {
		if err := journal.WriteJSONLFile(*output, entries); err != nil {
			return err
		}
	}

	fmt.Printf("Exported %d entries to %s\n", len(entries), *output)
	return nil
}
