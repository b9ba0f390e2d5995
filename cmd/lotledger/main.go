package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pflow-xyz/go-lotledger/journal"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "replay":
		if err := replay(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "verify":
		if err := verify(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "history":
		if err := history(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "summary":
		if err := summary(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := export(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("lotledger version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lotledger - multi-asset ledger journal audit tool

Usage:
  lotledger <command> [options]

Commands:
  replay     Rebuild ledger state from a journal and print it
  verify     Audit a journal: digests, sequence, conservation
  history    Show the timeline of journaled operations
  summary    Aggregate counts per operation, caller, and asset
  export     Convert a journal between SQLite and JSON Lines
  help       Show this help message
  version    Show version information

Journals are read from SQLite databases (.db, .sqlite) or JSON Lines
files (anything else).

Examples:
  # Rebuild state and print the full snapshot as JSON
  lotledger replay journal.db --json

  # Audit a handed-off journal
  lotledger verify journal.jsonl

  # Show only transfers
  lotledger history journal.db --op transfer

  # Hand off a database journal as diffable JSON Lines
  lotledger export journal.db --output journal.jsonl

For command-specific help, run:
  lotledger <command> --help`)
}

// readJournal loads every entry from path, picking the store by extension.
func readJournal(path string) ([]journal.Entry, error) {
	if isSQLite(path) {
		store, err := journal.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("open journal database: %w", err)
		}
		defer store.Close()
		return store.ReadAll(context.Background())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	return journal.ReadJSONL(f)
}

func isSQLite(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") ||
		strings.HasSuffix(lower, ".sqlite3")
}
