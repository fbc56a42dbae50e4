package circle

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory circle store for tests. It
// enforces the same (circle, user) and (circle, slot) uniqueness the
// Postgres constraints back, and rolls a transaction back by restoring a
// snapshot, so transactional behavior can be exercised without a database.
type MemoryStore struct {
	mu      sync.Mutex
	circles map[string]Circle
	members map[string]Member
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		circles: make(map[string]Circle),
		members: make(map[string]Member),
	}
}

// InTx runs fn against the store under the lock, restoring the previous
// state if fn returns an error.
func (s *MemoryStore) InTx(_ context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	circlesSnap := make(map[string]Circle, len(s.circles))
	for k, v := range s.circles {
		circlesSnap[k] = v
	}
	membersSnap := make(map[string]Member, len(s.members))
	for k, v := range s.members {
		membersSnap[k] = v
	}
	if err := fn(&memTx{store: s}); err != nil {
		s.circles = circlesSnap
		s.members = membersSnap
		return err
	}
	return nil
}

// GetCircle fetches a circle with its members loaded.
func (s *MemoryStore) GetCircle(_ context.Context, id string) (Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCircle(id)
}

// ListCircles returns every circle with members loaded.
func (s *MemoryStore) ListCircles(_ context.Context) ([]Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var circles []Circle
	for id := range s.circles {
		c, _ := s.getCircle(id)
		circles = append(circles, c)
	}
	sort.Slice(circles, func(i, j int) bool { return circles[i].CreatedAt.Before(circles[j].CreatedAt) })
	return circles, nil
}

// ListCirclesByUser returns the circles the user belongs to, optionally
// filtered by status.
func (s *MemoryStore) ListCirclesByUser(_ context.Context, userID, status string) ([]Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memberOf := make(map[string]struct{})
	for _, m := range s.members {
		if m.UserID == userID {
			memberOf[m.CircleID] = struct{}{}
		}
	}

	var circles []Circle
	for id := range memberOf {
		c, err := s.getCircle(id)
		if err != nil {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		circles = append(circles, c)
	}
	sort.Slice(circles, func(i, j int) bool { return circles[i].CreatedAt.Before(circles[j].CreatedAt) })
	return circles, nil
}

func (s *MemoryStore) getCircle(id string) (Circle, error) {
	c, ok := s.circles[id]
	if !ok {
		return Circle{}, ErrCircleNotFound
	}
	c.Members = s.listMembers(id)
	return c, nil
}

func (s *MemoryStore) listMembers(circleID string) []Member {
	var members []Member
	for _, m := range s.members {
		if m.CircleID == circleID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members
}

type memTx struct {
	store *MemoryStore
}

func (t *memTx) GetCircle(_ context.Context, id string) (Circle, error) {
	c, ok := t.store.circles[id]
	if !ok {
		return Circle{}, ErrCircleNotFound
	}
	return c, nil
}

func (t *memTx) InsertCircle(_ context.Context, c Circle) error {
	c.Members = nil
	t.store.circles[c.ID] = c
	return nil
}

func (t *memTx) UpdateCircle(_ context.Context, id string, fields CircleUpdate) error {
	c, ok := t.store.circles[id]
	if !ok {
		return ErrCircleNotFound
	}
	if fields.Name != nil {
		c.Name = *fields.Name
	}
	if fields.Amount != nil {
		c.Amount = *fields.Amount
	}
	if fields.Duration != nil {
		c.Duration = *fields.Duration
	}
	if fields.StartDate != nil {
		c.StartDate = *fields.StartDate
	}
	if fields.EndDate != nil {
		end := *fields.EndDate
		c.EndDate = &end
	}
	if fields.Status != nil {
		c.Status = *fields.Status
	}
	t.store.circles[id] = c
	return nil
}

func (t *memTx) DeleteCircle(_ context.Context, id string) error {
	if _, ok := t.store.circles[id]; !ok {
		return ErrCircleNotFound
	}
	delete(t.store.circles, id)
	for memberID, m := range t.store.members {
		if m.CircleID == id {
			delete(t.store.members, memberID)
		}
	}
	return nil
}

func (t *memTx) ListMembers(_ context.Context, circleID string) ([]Member, error) {
	return t.store.listMembers(circleID), nil
}

func (t *memTx) GetMember(_ context.Context, id string) (Member, error) {
	m, ok := t.store.members[id]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	return m, nil
}

func (t *memTx) MemberByUser(_ context.Context, circleID, userID string) (Member, error) {
	for _, m := range t.store.members {
		if m.CircleID == circleID && m.UserID == userID {
			return m, nil
		}
	}
	return Member{}, ErrMemberNotFound
}

func (t *memTx) SlotHolder(_ context.Context, circleID string, slot int) (Member, error) {
	for _, m := range t.store.members {
		if m.CircleID == circleID && m.SlotNumber != nil && *m.SlotNumber == slot {
			return m, nil
		}
	}
	return Member{}, ErrMemberNotFound
}

func (t *memTx) InsertMember(_ context.Context, m Member) error {
	if _, ok := t.store.circles[m.CircleID]; !ok {
		return ErrCircleNotFound
	}
	if err := t.checkConstraints(m.ID, m.CircleID, m.UserID, m.SlotNumber); err != nil {
		return err
	}
	t.store.members[m.ID] = m
	return nil
}

func (t *memTx) UpdateMember(_ context.Context, id string, fields MemberUpdate) error {
	m, ok := t.store.members[id]
	if !ok {
		return ErrMemberNotFound
	}
	if fields.SlotNumber != nil {
		slot := *fields.SlotNumber
		if err := t.checkConstraints(m.ID, m.CircleID, "", &slot); err != nil {
			return err
		}
		m.SlotNumber = &slot
	}
	if fields.Status != nil {
		m.Status = *fields.Status
	}
	if fields.PaymentStatus != nil {
		m.PaymentStatus = *fields.PaymentStatus
	}
	if fields.PayoutDate != nil {
		payout := *fields.PayoutDate
		m.PayoutDate = &payout
	}
	if fields.AdminFees != nil {
		m.AdminFees = *fields.AdminFees
	}
	t.store.members[id] = m
	return nil
}

func (t *memTx) DeleteMember(_ context.Context, id string) error {
	if _, ok := t.store.members[id]; !ok {
		return ErrMemberNotFound
	}
	delete(t.store.members, id)
	return nil
}

// checkConstraints mirrors the storage-layer unique constraints so the
// memory store fails the same way Postgres does.
func (t *memTx) checkConstraints(memberID, circleID, userID string, slot *int) error {
	for _, other := range t.store.members {
		if other.ID == memberID || other.CircleID != circleID {
			continue
		}
		if userID != "" && other.UserID == userID {
			return ErrAlreadyMember
		}
		if slot != nil && other.SlotNumber != nil && *other.SlotNumber == *slot {
			return ErrSlotTaken
		}
	}
	return nil
}
