package journal_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pflow-xyz/go-lotledger/journal"
	"github.com/pflow-xyz/go-lotledger/token"
)

func TestJSONLRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 9, 12, 30, 0, 0, time.UTC)
	entries := []journal.Entry{
		journal.NewEntry(1, at, journal.OpInitialize, "deployer", journal.Args{
			Admin:     "admin",
			Pauser:    "pauser",
			Minter:    "minter",
			URISetter: "setter",
			Upgrader:  "upgrader",
		}),
		journal.NewEntry(2, at.Add(time.Minute), journal.OpMintBatch, "minter", journal.Args{
			To:      "alice",
			IDs:     []token.AssetID{1, 2},
			Amounts: []string{"100", "200"},
		}),
	}
	entries[1].Digest = "deadbeef"

	var buf bytes.Buffer
	if err := journal.WriteJSONL(&buf, entries); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("output has %d lines, want 2", got)
	}

	got, err := journal.ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Op != journal.OpInitialize || got[0].Args.Admin != "admin" {
		t.Errorf("entry 1 = %+v, want the initialize entry", got[0])
	}
	if got[1].Seq != 2 || got[1].Digest != "deadbeef" || got[1].Args.Amounts[1] != "200" {
		t.Errorf("entry 2 = %+v, want the mint batch entry", got[1])
	}
	if !got[1].Time.Equal(entries[1].Time) {
		t.Errorf("time = %v, want %v", got[1].Time, entries[1].Time)
	}
}

func TestReadJSONLSkipsEmptyLines(t *testing.T) {
	in := `{"seq":1,"id":"a","time":"2025-03-09T12:30:00Z","op":"pause","caller":"pauser","args":{}}

{"seq":2,"id":"b","time":"2025-03-09T12:31:00Z","op":"unpause","caller":"pauser","args":{}}
`
	entries, err := journal.ReadJSONL(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].Op != journal.OpUnpause {
		t.Errorf("op = %s, want unpause", entries[1].Op)
	}
}

func TestReadJSONLRejectsGarbage(t *testing.T) {
	in := "{\"seq\":1,\"op\":\"mint\"}\nnot json\n"
	_, err := journal.ReadJSONL(strings.NewReader(in))
	if err == nil {
		t.Fatal("garbage line should fail")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want line number context", err)
	}
}

func TestJSONLFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/journal.jsonl"
	entries := []journal.Entry{
		journal.NewEntry(1, time.Now(), journal.OpPause, "pauser", journal.Args{}),
	}
	if err := journal.WriteJSONLFile(path, entries); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := journal.ReadJSONLFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(got) != 1 || got[0].Op != journal.OpPause {
		t.Errorf("entries = %+v, want the pause entry", got)
	}
}
