package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pflow-xyz/go-lotledger/journal"
)

func history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	opFilter := fs.String("op", "", "Filter by operation name")
	callerFilter := fs.String("caller", "", "Filter by caller")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: lotledger history <journal> [options]

Display the timeline of journaled operations.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show all operations
  lotledger history journal.db

  # Only transfers by one principal
  lotledger history journal.db --op transfer --caller alice
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

	shown := 0
	for _, e := range entries {
		if *opFilter != "" && string(e.Op) != *opFilter {
			continue
		}
		if *callerFilter != "" && string(e.Caller) != *callerFilter {
			continue
		}
		fmt.Printf("%6d  %s  %-14s %-12s %s\n",
			e.Seq, e.Time.Format("2006-01-02 15:04:05"), e.Op, e.Caller, describeArgs(e))
		shown++
	}

	if shown == 0 {
		fmt.Println("No matching operations")
	}
	return nil
}

// describeArgs renders the argument fields an op actually uses.
func describeArgs(e journal.Entry) string {
	a := e.Args
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}

	switch e.Op {
	case journal.OpInitialize:
		add("admin", string(a.Admin))
		add("pauser", string(a.Pauser))
		add("minter", string(a.Minter))
		add("uri-setter", string(a.URISetter))
		add("upgrader", string(a.Upgrader))
	case journal.OpGrantRole, journal.OpRevokeRole:
		add("role", a.Role)
		add("principal", string(a.Principal))
	case journal.OpSetApproval:
		add("operator", string(a.Operator))
		parts = append(parts, fmt.Sprintf("approved=%v", a.Approved))
	case journal.OpSetBaseURI:
		add("uri", a.URI)
	case journal.OpUpgrade:
		add("version", a.Version)
	default:
		add("from", string(a.From))
		add("to", string(a.To))
		for i, id := range a.IDs {
			amount := "?"
			if i < len(a.Amounts) {
				amount = a.Amounts[i]
			}
			parts = append(parts, fmt.Sprintf("id=%s amount=%s", id, amount))
		}
	}
	return strings.Join(parts, " ")
}
