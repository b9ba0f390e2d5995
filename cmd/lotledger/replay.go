package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-lotledger/contract"
)

func replay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Print the full state snapshot as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lotledger replay <journal> [options]

Rebuild ledger state by re-executing the journal from the beginning,
then print the resulting state. Entry digests are verified as the
replay proceeds.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Human-readable state summary
  lotledger replay journal.db

  # Machine-readable snapshot
  lotledger replay journal.jsonl --json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("journal file required")
	}

	entries, err := readJournal(fs.Arg(0))
	if err != nil {
		return err
	}

	c, err := contract.Replay(entries, contract.Config{})
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c.Snapshot())
	}

	printState(c)
	return nil
}

func printState(c *contract.Contract) {
	fmt.Printf("Operations: %d\n", c.Sequence())
	fmt.Printf("Version:    %s\n", c.Version())
	fmt.Printf("Paused:     %v\n", c.Paused())
	fmt.Printf("Base URI:   %s\n", c.BaseURI())
	fmt.Printf("Digest:     %s\n", c.Digest())

	assets := c.Assets()
	if len(assets) == 0 {
		fmt.Println("\nNo assets minted")
		return
	}

	fmt.Printf("\nAssets (%d):\n", len(assets))
	for _, id := range assets {
		fmt.Printf("  asset %s: supply %s (minted %s, burned %s)\n",
			id, c.Supply(id).Dec(), c.TotalMinted(id).Dec(), c.TotalBurned(id).Dec())
		for _, holder := range c.Holders(id) {
			fmt.Printf("    %s: %s\n", holder, c.BalanceOf(holder, id).Dec())
		}
	}
}
