package circle

import "time"

// Circle lifecycle statuses.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
)

// Membership statuses. PENDING moves to CONFIRMED exactly once; no reverse
// transition exists on the single-member update path.
const (
	MemberPending   = "PENDING"
	MemberConfirmed = "CONFIRMED"
)

// Payment statuses tracked per membership.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// Circle is a rotating savings commitment among a fixed group of members.
type Circle struct {
	ID        string
	Name      string
	OwnerID   string
	Amount    int64
	Duration  int
	StartDate time.Time
	EndDate   *time.Time
	Status    string
	CreatedAt time.Time
	Members   []Member
}

// Member is one occupied slot in a circle. SlotNumber stays nil until a
// payout position is assigned; at most one member per circle may hold a
// given slot.
type Member struct {
	ID            string
	CircleID      string
	UserID        string
	UserName      string
	UserPhone     string
	SlotNumber    *int
	Status        string
	PaymentStatus string
	PayoutDate    *time.Time
	AdminFees     int64
	CreatedAt     time.Time
}

func validMemberStatus(status string) bool {
	return status == MemberPending || status == MemberConfirmed
}

func validPaymentStatus(status string) bool {
	return status == PaymentPending || status == PaymentPaid
}

func validCircleStatus(status string) bool {
	return status == StatusPending || status == StatusActive || status == StatusCompleted
}
