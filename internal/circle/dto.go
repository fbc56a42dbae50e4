package circle

import "time"

// MemberRequest carries one member spec over the wire.
type MemberRequest struct {
	UserID        string     `json:"user_id,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Name          string     `json:"name,omitempty"`
	SlotNumber    *int       `json:"slot_number,omitempty"`
	Status        string     `json:"status,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	PayoutDate    *time.Time `json:"payout_date,omitempty"`
	AdminFees     int64      `json:"admin_fees,omitempty"`
}

// CreateCircleRequest is the payload for circle creation.
type CreateCircleRequest struct {
	Name      string          `json:"name"`
	OwnerID   string          `json:"owner_id"`
	Amount    int64           `json:"amount"`
	Duration  int             `json:"duration"`
	StartDate time.Time       `json:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
	Members   []MemberRequest `json:"members,omitempty"`
}

// UpdateCircleRequest is the payload for circle updates. A nil Members
// field leaves the membership untouched; a present (even empty) list is
// reconciled against.
type UpdateCircleRequest struct {
	Name      *string          `json:"name,omitempty"`
	Amount    *int64           `json:"amount,omitempty"`
	Duration  *int             `json:"duration,omitempty"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	Members   *[]MemberRequest `json:"members,omitempty"`
}

// UpdateMemberRequest is the payload for the single-member update path.
type UpdateMemberRequest struct {
	SlotNumber    *int       `json:"slot_number,omitempty"`
	Status        *string    `json:"status,omitempty"`
	PaymentStatus *string    `json:"payment_status,omitempty"`
	PayoutDate    *time.Time `json:"payout_date,omitempty"`
	AdminFees     *int64     `json:"admin_fees,omitempty"`
}

// MemberResponse is the wire shape of one membership.
type MemberResponse struct {
	ID            string     `json:"id"`
	CircleID      string     `json:"circle_id"`
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name,omitempty"`
	UserPhone     string     `json:"user_phone,omitempty"`
	SlotNumber    *int       `json:"slot_number,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	PayoutDate    *time.Time `json:"payout_date,omitempty"`
	AdminFees     int64      `json:"admin_fees"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CircleResponse is the wire shape of a circle with its members.
type CircleResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	OwnerID   string           `json:"owner_id"`
	Amount    int64            `json:"amount"`
	Duration  int              `json:"duration"`
	StartDate time.Time        `json:"start_date"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	Members   []MemberResponse `json:"members"`
}

func toMemberInput(req MemberRequest) MemberInput {
	return MemberInput{
		MemberRef:     MemberRef{UserID: req.UserID, Phone: req.Phone, Name: req.Name},
		SlotNumber:    req.SlotNumber,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PayoutDate:    req.PayoutDate,
		AdminFees:     req.AdminFees,
	}
}

func toMemberInputs(reqs []MemberRequest) []MemberInput {
	inputs := make([]MemberInput, len(reqs))
	for i, req := range reqs {
		inputs[i] = toMemberInput(req)
	}
	return inputs
}

func toMemberResponse(m Member) MemberResponse {
	return MemberResponse{
		ID:            m.ID,
		CircleID:      m.CircleID,
		UserID:        m.UserID,
		UserName:      m.UserName,
		UserPhone:     m.UserPhone,
		SlotNumber:    m.SlotNumber,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		PayoutDate:    m.PayoutDate,
		AdminFees:     m.AdminFees,
		CreatedAt:     m.CreatedAt,
	}
}

func toCircleResponse(c Circle) CircleResponse {
	members := make([]MemberResponse, len(c.Members))
	for i, m := range c.Members {
		members[i] = toMemberResponse(m)
	}
	return CircleResponse{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		Amount:    c.Amount,
		Duration:  c.Duration,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		Members:   members,
	}
}

func toCircleResponses(circles []Circle) []CircleResponse {
	responses := make([]CircleResponse, len(circles))
	for i, c := range circles {
		responses[i] = toCircleResponse(c)
	}
	return responses
}
