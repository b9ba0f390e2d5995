package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-lotledger/contract"
)

func verify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Suppress output, report by exit status only")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lotledger verify <journal> [options]

Audit a journal without printing state: the sequence must be gap-free,
every recorded digest must match the replayed state, and the rebuilt
ledger must satisfy the conservation identity for every asset. Exits
non-zero on the first violation.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  lotledger verify journal.db
  lotledger verify audit-handoff.jsonl --quiet && echo ok
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
	if err := c.CheckConservation(); err != nil {
		return fmt.Errorf("conservation: %w", err)
	}

	withDigest := 0
	for _, e := range entries {
		if e.Digest != "" {
			withDigest++
		}
	}

	if !*quiet {
		fmt.Printf("OK: %d operations, %d digests verified, conservation holds\n",
			len(entries), withDigest)
		fmt.Printf("Final digest: %s\n", c.Digest())
	}
	return nil
}
