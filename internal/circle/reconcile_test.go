package circle

import (
	"errors"
	"testing"
)

func TestDiffSplitsAddRemoveUpdate(t *testing.T) {
	existing := []ExistingMember{
		{ID: "m-alice", UserID: "alice"},
		{ID: "m-bob", UserID: "bob"},
	}
	target := []MemberSpec{
		{UserID: "alice", Status: MemberConfirmed},
		{UserID: "carol"},
	}

	delta, err := Diff(existing, target)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	if len(delta.Remove) != 1 || delta.Remove[0] != "m-bob" {
		t.Fatalf("expected bob's membership removed, got %v", delta.Remove)
	}
	if len(delta.Update) != 1 || delta.Update[0].MemberID != "m-alice" {
		t.Fatalf("expected alice's membership updated, got %v", delta.Update)
	}
	if delta.Update[0].Spec.Status != MemberConfirmed {
		t.Fatalf("update spec lost its status: %v", delta.Update[0].Spec)
	}
	if len(delta.Add) != 1 || delta.Add[0].UserID != "carol" {
		t.Fatalf("expected carol added, got %v", delta.Add)
	}
}

func TestDiffEmptyTargetRemovesAll(t *testing.T) {
	existing := []ExistingMember{
		{ID: "m1", UserID: "u1"},
		{ID: "m2", UserID: "u2"},
	}

	delta, err := Diff(existing, nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(delta.Remove) != 2 || len(delta.Add) != 0 || len(delta.Update) != 0 {
		t.Fatalf("expected pure removal delta, got %+v", delta)
	}
}

func TestDiffRejectsDuplicateUsers(t *testing.T) {
	target := []MemberSpec{
		{UserID: "alice"},
		{UserID: "alice", Status: MemberConfirmed},
	}

	_, err := Diff(nil, target)
	if !errors.Is(err, ErrDuplicateMember) {
		t.Fatalf("expected ErrDuplicateMember, got %v", err)
	}
}

func TestDiffIsStableWhenTargetMatchesExisting(t *testing.T) {
	existing := []ExistingMember{{ID: "m1", UserID: "u1"}}
	target := []MemberSpec{{UserID: "u1", Status: MemberConfirmed}}

	delta, err := Diff(existing, target)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(delta.Remove) != 0 || len(delta.Add) != 0 {
		t.Fatalf("matching target must only update, got %+v", delta)
	}
	if len(delta.Update) != 1 || delta.Update[0].MemberID != "m1" {
		t.Fatalf("expected one update against m1, got %+v", delta.Update)
	}
}
