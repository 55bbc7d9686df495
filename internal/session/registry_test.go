package session

import (
	"testing"
)

func TestAssignRoleFirstComeFirstServed(t *testing.T) {
	reg := NewRegistry(nil)

	if role := reg.AssignRole("c1"); role != RoleWhite {
		t.Fatalf("first connection: got %s, want white", role)
	}
	if role := reg.AssignRole("c2"); role != RoleBlack {
		t.Fatalf("second connection: got %s, want black", role)
	}
	if role := reg.AssignRole("c3"); role != RoleSpectator {
		t.Fatalf("third connection: got %s, want spectator", role)
	}
	if role := reg.AssignRole("c4"); role != RoleSpectator {
		t.Fatalf("fourth connection: got %s, want spectator", role)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	reg.AssignRole("c1")
	reg.AssignRole("c2")
	reg.AssignRole("spec")

	// Releasing a spectator or an unknown identity changes nothing.
	reg.Release("spec")
	reg.Release("ghost")
	snap := reg.SnapshotState()
	if !snap.WhiteSeated || !snap.BlackSeated {
		t.Fatalf("seats disturbed by no-op release: %+v", snap)
	}

	reg.Release("c1")
	reg.Release("c1")
	snap = reg.SnapshotState()
	if snap.WhiteSeated {
		t.Fatalf("white seat still occupied after release")
	}
	if !snap.BlackSeated {
		t.Fatalf("black seat lost on white release")
	}
}

func TestVacatedSeatClaimedByNextNewConnection(t *testing.T) {
	reg := NewRegistry(nil)
	reg.AssignRole("c1")
	reg.AssignRole("c2")
	if role := reg.AssignRole("c3"); role != RoleSpectator {
		t.Fatalf("expected spectator, got %s", role)
	}

	reg.Release("c1")

	// The existing spectator is not promoted; the next new connection takes
	// the vacated seat.
	if role := reg.AssignRole("c4"); role != RoleWhite {
		t.Fatalf("new connection after vacancy: got %s, want white", role)
	}
}

func TestReleaseKeepsPosition(t *testing.T) {
	reg := NewRegistry(nil)
	reg.AssignRole("c1")
	reg.AssignRole("c2")
	before := reg.FEN()

	reg.Release("c1")

	if got := reg.FEN(); got != before {
		t.Fatalf("position changed on release: %s != %s", got, before)
	}
}
