package circle

import "time"

// MemberSpec is a resolved target member entry: the identity reference has
// already been turned into a user id by the resolver.
type MemberSpec struct {
	UserID        string
	UserName      string
	UserPhone     string
	SlotNumber    *int
	Status        string
	PaymentStatus string
	PayoutDate    *time.Time
	AdminFees     int64
}

// ExistingMember identifies a persisted membership row for diffing.
type ExistingMember struct {
	ID     string
	UserID string
}

// MemberChange pairs a target spec with the membership row it updates.
// Keyed by membership id so multiple updates in one reconciliation always
// address the same row.
type MemberChange struct {
	MemberID string
	Spec     MemberSpec
}

// Delta is the minimal set of mutations reconciling current membership
// with a target member list.
type Delta struct {
	Remove []string
	Add    []MemberSpec
	Update []MemberChange
}

// Diff computes the add/remove/update delta between a circle's existing
// members and a target member list, matching on user id. A target list
// naming the same user twice is rejected rather than resolved
// last-write-wins.
func Diff(existing []ExistingMember, target []MemberSpec) (Delta, error) {
	seen := make(map[string]struct{}, len(target))
	for _, spec := range target {
		if _, dup := seen[spec.UserID]; dup {
			return Delta{}, ErrDuplicateMember
		}
		seen[spec.UserID] = struct{}{}
	}

	byUser := make(map[string]string, len(existing))
	for _, m := range existing {
		byUser[m.UserID] = m.ID
	}

	var delta Delta
	for _, m := range existing {
		if _, keep := seen[m.UserID]; !keep {
			delta.Remove = append(delta.Remove, m.ID)
		}
	}
	for _, spec := range target {
		if memberID, ok := byUser[spec.UserID]; ok {
			delta.Update = append(delta.Update, MemberChange{MemberID: memberID, Spec: spec})
		} else {
			delta.Add = append(delta.Add, spec)
		}
	}

	return delta, nil
}
