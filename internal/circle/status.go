package circle

// DeriveStatus computes a circle's aggregate status from its current
// members: ACTIVE iff the circle has at least one member and every member
// is CONFIRMED, PENDING otherwise. COMPLETED is driven by cycle elapse,
// not by membership, and is never produced here.
func DeriveStatus(members []Member) string {
	if len(members) == 0 {
		return StatusPending
	}
	for _, m := range members {
		if m.Status != MemberConfirmed {
			return StatusPending
		}
	}
	return StatusActive
}
