package circle

import "errors"

var (
	// ErrInvalidInput marks requests that violate a business precondition.
	// Specific messages wrap this sentinel so handlers can classify them.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCircleNotFound indicates the referenced circle does not exist.
	ErrCircleNotFound = errors.New("circle not found")

	// ErrMemberNotFound indicates the membership does not exist or does not
	// belong to the referenced circle.
	ErrMemberNotFound = errors.New("member not found in this circle")

	// ErrUserNotFound indicates an explicit user id that resolves to nobody.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyMember indicates the user already occupies a slot in the circle.
	ErrAlreadyMember = errors.New("user is already a member of the circle")

	// ErrSlotTaken indicates another member already holds the requested slot number.
	ErrSlotTaken = errors.New("slot number is already reserved")

	// ErrMemberRefRequired indicates a member spec carrying neither a user id
	// nor a phone handle.
	ErrMemberRefRequired = errors.New("member must have a user id or phone number")

	// ErrDuplicateMember indicates the same user appears twice in a target
	// member list.
	ErrDuplicateMember = errors.New("duplicate user in member list")

	// ErrStatusTransition indicates an unsupported membership status change,
	// such as reverting CONFIRMED to PENDING.
	ErrStatusTransition = errors.New("unsupported member status transition")
)
