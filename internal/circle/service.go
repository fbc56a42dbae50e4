package circle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/likelemba/likelemba/internal/notification"
)

// Service is the circle lifecycle engine. It composes the identity
// resolver, slot checks, membership reconciliation and status derivation
// into the public circle operations, wrapping multi-row mutations in one
// store transaction.
type Service struct {
	store    Store
	resolver *Resolver
	notifier notification.Notifier
}

// NewService builds the circle service.
func NewService(store Store, dir Directory, notifier notification.Notifier) *Service {
	return &Service{store: store, resolver: NewResolver(dir), notifier: notifier}
}

// MemberInput is a caller-supplied member spec: an identity reference plus
// the membership state to apply.
type MemberInput struct {
	MemberRef
	SlotNumber    *int
	Status        string
	PaymentStatus string
	PayoutDate    *time.Time
	AdminFees     int64
}

// CreateInput captures the data required to create a circle.
type CreateInput struct {
	Name      string
	OwnerID   string
	Amount    int64
	Duration  int
	StartDate time.Time
	EndDate   *time.Time
	Members   []MemberInput
}

// Create persists a new PENDING circle and its initial members in one
// transaction: a failing member add rolls the circle creation back too.
func (s *Service) Create(ctx context.Context, input CreateInput) (Circle, error) {
	if input.Name == "" {
		return Circle{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.OwnerID == "" {
		return Circle{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return Circle{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if input.Duration < 1 {
		return Circle{}, fmt.Errorf("%w: duration must be at least one cycle", ErrInvalidInput)
	}

	specs, err := s.resolveAll(ctx, input.Members)
	if err != nil {
		return Circle{}, err
	}

	c := Circle{
		ID:        uuid.New().String(),
		Name:      input.Name,
		OwnerID:   input.OwnerID,
		Amount:    input.Amount,
		Duration:  input.Duration,
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	var added []Member
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertCircle(ctx, c); err != nil {
			return err
		}
		for _, spec := range specs {
			m, err := s.addMemberTx(ctx, tx, c.ID, spec)
			if err != nil {
				return err
			}
			added = append(added, m)
		}
		if len(added) == 0 {
			return nil
		}
		// Initial members may arrive CONFIRMED, so the derived status can
		// differ from the PENDING default.
		return s.recomputeStatus(ctx, tx, c.ID)
	})
	if err != nil {
		return Circle{}, err
	}

	s.notifyInvites(ctx, c.Name, added)

	return s.store.GetCircle(ctx, c.ID)
}

// Get returns a circle with members loaded.
func (s *Service) Get(ctx context.Context, id string) (Circle, error) {
	return s.store.GetCircle(ctx, id)
}

// List returns every circle.
func (s *Service) List(ctx context.Context) ([]Circle, error) {
	return s.store.ListCircles(ctx)
}

// ListByUser returns the circles the user is a member of, optionally
// filtered by circle status.
func (s *Service) ListByUser(ctx context.Context, userID, status string) ([]Circle, error) {
	if status != "" && !validCircleStatus(status) {
		return nil, fmt.Errorf("%w: unknown circle status %q", ErrInvalidInput, status)
	}
	return s.store.ListCirclesByUser(ctx, userID, status)
}

// UpdateInput carries the circle scalar fields to change and, when Members
// is non-nil, the target member list to reconcile the membership to.
type UpdateInput struct {
	Name      *string
	Amount    *int64
	Duration  *int
	StartDate *time.Time
	EndDate   *time.Time
	Members   *[]MemberInput
}

// Update applies scalar changes and, when a target member list is given,
// reconciles the circle's membership to it. The removals, updates,
// additions, scalar changes and the recomputed status all commit in one
// transaction or not at all.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Circle, error) {
	if input.Amount != nil && *input.Amount <= 0 {
		return Circle{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if input.Duration != nil && *input.Duration < 1 {
		return Circle{}, fmt.Errorf("%w: duration must be at least one cycle", ErrInvalidInput)
	}

	var (
		specs     []MemberSpec
		reconcile bool
		err       error
	)
	if input.Members != nil {
		reconcile = true
		specs, err = s.resolveAll(ctx, *input.Members)
		if err != nil {
			return Circle{}, err
		}
	}

	var added []Member
	var circleName string
	err = s.store.InTx(ctx, func(tx Tx) error {
		c, err := tx.GetCircle(ctx, id)
		if err != nil {
			return err
		}
		circleName = c.Name
		if input.Name != nil {
			circleName = *input.Name
		}

		if reconcile {
			current, err := tx.ListMembers(ctx, id)
			if err != nil {
				return err
			}
			existing := make([]ExistingMember, len(current))
			for i, m := range current {
				existing[i] = ExistingMember{ID: m.ID, UserID: m.UserID}
			}

			delta, err := Diff(existing, specs)
			if err != nil {
				return err
			}

			for _, memberID := range delta.Remove {
				if err := tx.DeleteMember(ctx, memberID); err != nil {
					return err
				}
			}
			for _, change := range delta.Update {
				if err := s.applyMemberChange(ctx, tx, id, change); err != nil {
					return err
				}
			}
			for _, spec := range delta.Add {
				m, err := s.addMemberTx(ctx, tx, id, spec)
				if err != nil {
					return err
				}
				added = append(added, m)
			}
		}

		members, err := tx.ListMembers(ctx, id)
		if err != nil {
			return err
		}
		status := DeriveStatus(members)

		return tx.UpdateCircle(ctx, id, CircleUpdate{
			Name:      input.Name,
			Amount:    input.Amount,
			Duration:  input.Duration,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
			Status:    &status,
		})
	})
	if err != nil {
		return Circle{}, err
	}

	s.notifyInvites(ctx, circleName, added)

	return s.store.GetCircle(ctx, id)
}

// Delete removes a circle; its memberships go with it through the storage
// cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		return tx.DeleteCircle(ctx, id)
	})
}

// AddMember resolves the member reference and inserts the membership,
// recomputing the circle status afterwards so an ACTIVE circle gaining a
// PENDING member drops back to PENDING.
func (s *Service) AddMember(ctx context.Context, circleID string, input MemberInput) (Member, error) {
	spec, err := s.resolveOne(ctx, input)
	if err != nil {
		return Member{}, err
	}

	var added Member
	var circleName string
	err = s.store.InTx(ctx, func(tx Tx) error {
		c, err := tx.GetCircle(ctx, circleID)
		if err != nil {
			return err
		}
		circleName = c.Name

		added, err = s.addMemberTx(ctx, tx, circleID, spec)
		if err != nil {
			return err
		}

		return s.recomputeStatus(ctx, tx, circleID)
	})
	if err != nil {
		return Member{}, err
	}

	s.notifyInvites(ctx, circleName, []Member{added})

	return added, nil
}

// MemberUpdateInput carries the membership fields the single-member update
// path may change. Nil pointers leave the stored value untouched.
type MemberUpdateInput struct {
	SlotNumber    *int
	Status        *string
	PaymentStatus *string
	PayoutDate    *time.Time
	AdminFees     *int64
}

// UpdateMember updates one membership addressed by its id, re-validating
// slot uniqueness and refusing a CONFIRMED to PENDING revert. The
// membership must belong to the given circle.
func (s *Service) UpdateMember(ctx context.Context, circleID, memberID string, input MemberUpdateInput) (Member, error) {
	if input.Status != nil && !validMemberStatus(*input.Status) {
		return Member{}, fmt.Errorf("%w: unknown member status %q", ErrInvalidInput, *input.Status)
	}
	if input.PaymentStatus != nil && !validPaymentStatus(*input.PaymentStatus) {
		return Member{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, *input.PaymentStatus)
	}

	var updated Member
	err := s.store.InTx(ctx, func(tx Tx) error {
		m, err := tx.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if m.CircleID != circleID {
			return ErrMemberNotFound
		}

		if input.Status != nil && m.Status == MemberConfirmed && *input.Status == MemberPending {
			return ErrStatusTransition
		}

		if input.SlotNumber != nil {
			if err := s.checkSlot(ctx, tx, m.CircleID, *input.SlotNumber, m.ID); err != nil {
				return err
			}
		}

		if err := tx.UpdateMember(ctx, memberID, MemberUpdate(input)); err != nil {
			return err
		}

		if err := s.recomputeStatus(ctx, tx, m.CircleID); err != nil {
			return err
		}

		updated, err = tx.GetMember(ctx, memberID)
		return err
	})
	if err != nil {
		return Member{}, err
	}
	return updated, nil
}

// RemoveMember deletes one membership and recomputes the circle status.
// The membership must belong to the given circle.
func (s *Service) RemoveMember(ctx context.Context, circleID, memberID string) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		m, err := tx.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if m.CircleID != circleID {
			return ErrMemberNotFound
		}

		if err := tx.DeleteMember(ctx, memberID); err != nil {
			return err
		}

		return s.recomputeStatus(ctx, tx, circleID)
	})
}

// resolveOne turns a member input into a spec with the identity resolved.
func (s *Service) resolveOne(ctx context.Context, input MemberInput) (MemberSpec, error) {
	if input.Status != "" && !validMemberStatus(input.Status) {
		return MemberSpec{}, fmt.Errorf("%w: unknown member status %q", ErrInvalidInput, input.Status)
	}
	if input.PaymentStatus != "" && !validPaymentStatus(input.PaymentStatus) {
		return MemberSpec{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, input.PaymentStatus)
	}

	u, err := s.resolver.Resolve(ctx, input.MemberRef)
	if err != nil {
		return MemberSpec{}, err
	}

	return MemberSpec{
		UserID:        u.ID,
		UserName:      u.Name,
		UserPhone:     u.Phone,
		SlotNumber:    input.SlotNumber,
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		PayoutDate:    input.PayoutDate,
		AdminFees:     input.AdminFees,
	}, nil
}

// resolveAll resolves a whole target list, rejecting lists that collapse
// onto the same user before any row is touched.
func (s *Service) resolveAll(ctx context.Context, inputs []MemberInput) ([]MemberSpec, error) {
	specs := make([]MemberSpec, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		spec, err := s.resolveOne(ctx, input)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[spec.UserID]; dup {
			return nil, ErrDuplicateMember
		}
		seen[spec.UserID] = struct{}{}
		specs = append(specs, spec)
	}
	return specs, nil
}

// addMemberTx inserts one membership inside the transaction: uniqueness of
// (circle, user) and the requested slot are pre-checked, with the storage
// constraints as the final authority.
func (s *Service) addMemberTx(ctx context.Context, tx Tx, circleID string, spec MemberSpec) (Member, error) {
	if _, err := tx.MemberByUser(ctx, circleID, spec.UserID); err == nil {
		return Member{}, ErrAlreadyMember
	} else if !errors.Is(err, ErrMemberNotFound) {
		return Member{}, err
	}

	if spec.SlotNumber != nil {
		if err := s.checkSlot(ctx, tx, circleID, *spec.SlotNumber, ""); err != nil {
			return Member{}, err
		}
	}

	status := spec.Status
	if status == "" {
		status = MemberPending
	}
	paymentStatus := spec.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	m := Member{
		ID:            uuid.New().String(),
		CircleID:      circleID,
		UserID:        spec.UserID,
		UserName:      spec.UserName,
		UserPhone:     spec.UserPhone,
		SlotNumber:    spec.SlotNumber,
		Status:        status,
		PaymentStatus: paymentStatus,
		PayoutDate:    spec.PayoutDate,
		AdminFees:     spec.AdminFees,
		CreatedAt:     time.Now().UTC(),
	}

	if err := tx.InsertMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// applyMemberChange updates an existing membership from a reconciliation
// spec. Absent status fields fall back to PENDING, matching add defaults.
func (s *Service) applyMemberChange(ctx context.Context, tx Tx, circleID string, change MemberChange) error {
	if change.Spec.SlotNumber != nil {
		if err := s.checkSlot(ctx, tx, circleID, *change.Spec.SlotNumber, change.MemberID); err != nil {
			return err
		}
	}

	status := change.Spec.Status
	if status == "" {
		status = MemberPending
	}
	paymentStatus := change.Spec.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	return tx.UpdateMember(ctx, change.MemberID, MemberUpdate{
		SlotNumber:    change.Spec.SlotNumber,
		Status:        &status,
		PaymentStatus: &paymentStatus,
		PayoutDate:    change.Spec.PayoutDate,
		AdminFees:     &change.Spec.AdminFees,
	})
}

// checkSlot verifies no other member of the circle holds the slot. The
// excluded member id lets an update keep its own slot.
func (s *Service) checkSlot(ctx context.Context, tx Tx, circleID string, slot int, excludeMemberID string) error {
	if slot < 1 {
		return fmt.Errorf("%w: slot number must be positive", ErrInvalidInput)
	}
	holder, err := tx.SlotHolder(ctx, circleID, slot)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil
		}
		return err
	}
	if holder.ID == excludeMemberID {
		return nil
	}
	return ErrSlotTaken
}

func (s *Service) recomputeStatus(ctx context.Context, tx Tx, circleID string) error {
	members, err := tx.ListMembers(ctx, circleID)
	if err != nil {
		return err
	}
	status := DeriveStatus(members)
	return tx.UpdateCircle(ctx, circleID, CircleUpdate{Status: &status})
}

func (s *Service) notifyInvites(ctx context.Context, circleName string, members []Member) {
	if s.notifier == nil {
		return
	}
	for _, m := range members {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindCircleInvite,
			Destination: m.UserPhone,
			Body:        fmt.Sprintf("You were invited to the savings circle %q", circleName),
		})
	}
}
