package circle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateMemberConstraint(t *testing.T) {
	driverErr := fmt.Errorf("write failed: %w", &pgconn.PgError{Code: "40001"})

	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "user uniqueness violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: constraintMemberUser},
			want: ErrAlreadyMember,
		},
		{
			name: "slot uniqueness violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: constraintMemberSlot},
			want: ErrSlotTaken,
		},
		{
			name: "unrelated constraint passes through",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "circles_pkey"},
			want: nil,
		},
		{
			name: "non-uniqueness error passes through",
			err:  driverErr,
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateMemberConstraint(tc.err)
			if tc.want != nil {
				if !errors.Is(got, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
				return
			}
			// Untranslated errors must come back unchanged, never as a
			// domain conflict.
			if !errors.Is(got, tc.err) {
				t.Fatalf("expected the original error back, got %v", got)
			}
			if errors.Is(got, ErrAlreadyMember) || errors.Is(got, ErrSlotTaken) {
				t.Fatalf("unrelated error translated to a conflict: %v", got)
			}
		})
	}
}

func TestListCirclesByUserRejectsMalformedID(t *testing.T) {
	store := NewPostgresStore(nil)

	// uuid validation fails before any query is issued, so no pool is needed.
	_, err := store.ListCirclesByUser(context.Background(), "not-a-uuid", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
