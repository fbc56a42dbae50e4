package circle

import (
	"context"
	"time"
)

// CircleUpdate is the allow-list of mutable circle scalar fields. Nil
// pointers leave the stored value untouched.
type CircleUpdate struct {
	Name      *string
	Amount    *int64
	Duration  *int
	StartDate *time.Time
	EndDate   *time.Time
	Status    *string
}

// MemberUpdate is the allow-list of mutable membership fields.
type MemberUpdate struct {
	SlotNumber    *int
	Status        *string
	PaymentStatus *string
	PayoutDate    *time.Time
	AdminFees     *int64
}

// Tx exposes row-level operations scoped to one transaction. Uniqueness
// violations reported by the backing store surface as ErrAlreadyMember or
// ErrSlotTaken, never as raw driver errors.
type Tx interface {
	GetCircle(ctx context.Context, id string) (Circle, error)
	InsertCircle(ctx context.Context, c Circle) error
	UpdateCircle(ctx context.Context, id string, fields CircleUpdate) error
	DeleteCircle(ctx context.Context, id string) error

	ListMembers(ctx context.Context, circleID string) ([]Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	MemberByUser(ctx context.Context, circleID, userID string) (Member, error)
	SlotHolder(ctx context.Context, circleID string, slot int) (Member, error)
	InsertMember(ctx context.Context, m Member) error
	UpdateMember(ctx context.Context, id string, fields MemberUpdate) error
	DeleteMember(ctx context.Context, id string) error
}

// Store persists circles and their memberships. Multi-row mutations run
// inside InTx so they commit or roll back as one unit; reads outside a
// transaction go through the convenience methods.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error

	GetCircle(ctx context.Context, id string) (Circle, error)
	ListCircles(ctx context.Context) ([]Circle, error)
	ListCirclesByUser(ctx context.Context, userID, status string) ([]Circle, error)
}
