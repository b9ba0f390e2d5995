package metadata

import (
	"errors"
	"testing"

	"github.com/pflow-xyz/go-lotledger/access"
	"github.com/pflow-xyz/go-lotledger/pause"
	"github.com/pflow-xyz/go-lotledger/token"
)

const (
	setter   = token.Principal("setter")
	pauser   = token.Principal("pauser")
	stranger = token.Principal("stranger")
)

func newResolver() (*Resolver, *pause.Gate) {
	roles := access.NewRoleSet()
	roles.Seed(access.RoleURISetter, setter)
	roles.Seed(access.RolePauser, pauser)
	gate := pause.NewGate(roles)
	return NewResolver(roles, gate), gate
}

func TestURIUnset(t *testing.T) {
	r, _ := newResolver()
	if _, err := r.URI(1); !errors.Is(err, ErrURINotSet) {
		t.Errorf("unset URI = %v, want ErrURINotSet", err)
	}
	if r.Base() != "" {
		t.Errorf("base = %q, want empty", r.Base())
	}
}

func TestURIConcatenation(t *testing.T) {
	r, _ := newResolver()
	if err := r.SetBaseURI(setter, "ipfs://"); err != nil {
		t.Fatalf("set base: %v", err)
	}

	cases := []struct {
		id   token.AssetID
		want string
	}{
		{0, "ipfs://0"},
		{1, "ipfs://1"},
		{42, "ipfs://42"},
		{18446744073709551615, "ipfs://18446744073709551615"},
	}
	for _, tc := range cases {
		got, err := r.URI(tc.id)
		if err != nil {
			t.Fatalf("URI(%s): %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("URI(%s) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestSetBaseURIReplacesWholesale(t *testing.T) {
	r, _ := newResolver()
	r.Seed("ipfs://")

	if err := r.SetBaseURI(setter, "https://meta.example/lots/"); err != nil {
		t.Fatalf("set base: %v", err)
	}
	got, err := r.URI(7)
	if err != nil {
		t.Fatalf("URI: %v", err)
	}
	if got != "https://meta.example/lots/7" {
		t.Errorf("URI = %q, want the new base applied to every id", got)
	}

	// Clearing the base returns resolution to its unset state.
	if err := r.SetBaseURI(setter, ""); err != nil {
		t.Fatalf("clear base: %v", err)
	}
	if _, err := r.URI(7); !errors.Is(err, ErrURINotSet) {
		t.Errorf("cleared URI = %v, want ErrURINotSet", err)
	}
}

func TestSetBaseURIRequiresRole(t *testing.T) {
	r, _ := newResolver()

	var uerr *access.UnauthorizedError
	if err := r.SetBaseURI(stranger, "ipfs://"); !errors.As(err, &uerr) {
		t.Errorf("stranger set = %v, want *access.UnauthorizedError", err)
	}
	if r.Base() != "" {
		t.Error("failed set must not change the base")
	}
}

func TestSetBaseURIWhilePaused(t *testing.T) {
	r, gate := newResolver()
	r.Seed("ipfs://")
	if err := gate.Pause(pauser); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if err := r.SetBaseURI(setter, "https://else/"); !errors.Is(err, pause.ErrPaused) {
		t.Errorf("paused set = %v, want ErrPaused", err)
	}
	if r.Base() != "ipfs://" {
		t.Error("failed set must not change the base")
	}

	// URI queries stay available while paused.
	if got, err := r.URI(3); err != nil || got != "ipfs://3" {
		t.Errorf("paused URI = %q, %v, want ipfs://3", got, err)
	}
}
