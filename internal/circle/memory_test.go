package circle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedMemoryCircle(t *testing.T, store *MemoryStore) Circle {
	t.Helper()
	c := Circle{
		ID:        "c1",
		Name:      "Tontine",
		OwnerID:   "u-owner",
		Amount:    1000,
		Duration:  3,
		StartDate: time.Now().UTC(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	err := store.InTx(context.Background(), func(tx Tx) error {
		return tx.InsertCircle(context.Background(), c)
	})
	if err != nil {
		t.Fatalf("insert circle: %v", err)
	}
	return c
}

// Inserting directly through the transaction, with no advisory pre-check in
// front, must still fail on a duplicate slot or user: the store itself is
// the authoritative guard.
func TestMemoryStoreEnforcesUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := seedMemoryCircle(t, store)

	first := Member{
		ID:            "m1",
		CircleID:      c.ID,
		UserID:        "u1",
		SlotNumber:    intPtr(1),
		Status:        MemberPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := store.InTx(ctx, func(tx Tx) error { return tx.InsertMember(ctx, first) }); err != nil {
		t.Fatalf("insert first member: %v", err)
	}

	slotDup := Member{ID: "m2", CircleID: c.ID, UserID: "u2", SlotNumber: intPtr(1),
		Status: MemberPending, PaymentStatus: PaymentPending, CreatedAt: time.Now().UTC()}
	err := store.InTx(ctx, func(tx Tx) error { return tx.InsertMember(ctx, slotDup) })
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	userDup := Member{ID: "m3", CircleID: c.ID, UserID: "u1", SlotNumber: intPtr(2),
		Status: MemberPending, PaymentStatus: PaymentPending, CreatedAt: time.Now().UTC()}
	err = store.InTx(ctx, func(tx Tx) error { return tx.InsertMember(ctx, userDup) })
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}

	// Moving an existing member onto an occupied slot fails the same way.
	free := Member{ID: "m4", CircleID: c.ID, UserID: "u3", SlotNumber: intPtr(3),
		Status: MemberPending, PaymentStatus: PaymentPending, CreatedAt: time.Now().UTC()}
	if err := store.InTx(ctx, func(tx Tx) error { return tx.InsertMember(ctx, free) }); err != nil {
		t.Fatalf("insert third member: %v", err)
	}
	err = store.InTx(ctx, func(tx Tx) error {
		return tx.UpdateMember(ctx, "m4", MemberUpdate{SlotNumber: intPtr(1)})
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken on update, got %v", err)
	}

	got, err := store.GetCircle(ctx, c.ID)
	if err != nil {
		t.Fatalf("get circle: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("rejected writes must not persist, got %d members", len(got.Members))
	}
}

func TestMemoryStoreRollsBackFailedTx(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := seedMemoryCircle(t, store)

	boom := errors.New("boom")
	err := store.InTx(ctx, func(tx Tx) error {
		m := Member{ID: "m1", CircleID: c.ID, UserID: "u1",
			Status: MemberPending, PaymentStatus: PaymentPending, CreatedAt: time.Now().UTC()}
		if err := tx.InsertMember(ctx, m); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the inner error, got %v", err)
	}

	got, err := store.GetCircle(ctx, c.ID)
	if err != nil {
		t.Fatalf("get circle: %v", err)
	}
	if len(got.Members) != 0 {
		t.Fatalf("rolled-back insert leaked: %d members", len(got.Members))
	}
}
