package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/pflow-xyz/go-lotledger/contract"
)

func summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lotledger summary <journal>

Aggregate a journal: operation counts, per-caller activity, and the
final supply of every asset.

Examples:
  lotledger summary journal.db
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
	if len(entries) == 0 {
		fmt.Println("Empty journal")
		return nil
	}

	byOp := make(map[string]int)
	byCaller := make(map[string]int)
	for _, e := range entries {
		byOp[string(e.Op)]++
		byCaller[string(e.Caller)]++
	}

	fmt.Printf("Operations: %d (%s to %s)\n\n",
		len(entries),
		entries[0].Time.Format("2006-01-02 15:04:05"),
		entries[len(entries)-1].Time.Format("2006-01-02 15:04:05"))

	fmt.Println("By operation:")
	for _, k := range sortedKeys(byOp) {
		fmt.Printf("  %-16s %d\n", k, byOp[k])
	}

	fmt.Println("\nBy caller:")
	for _, k := range sortedKeys(byCaller) {
		fmt.Printf("  %-16s %d\n", k, byCaller[k])
	}

	c, err := contract.Replay(entries, contract.Config{})
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	assets := c.Assets()
	if len(assets) == 0 {
		return nil
	}
	fmt.Println("\nFinal supply:")
	for _, id := range assets {
		fmt.Printf("  asset %-8s %s across %d holders\n",
			id, c.Supply(id).Dec(), len(c.Holders(id)))
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
