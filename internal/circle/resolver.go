package circle

import (
	"context"
	"errors"

	"github.com/likelemba/likelemba/internal/user"
)

// Directory is the slice of the user directory the circle engine depends
// on. *user.Service satisfies it.
type Directory interface {
	// Get fetches a user by id.
	Get(ctx context.Context, id string) (user.User, error)
	// Provision returns the user holding the phone number, creating an
	// UNREGISTERED placeholder when none exists.
	Provision(ctx context.Context, phone, name string) (user.User, error)
}

// MemberRef identifies the person behind a member spec: either an explicit
// user id or a phone handle with an optional display name.
type MemberRef struct {
	UserID string
	Phone  string
	Name   string
}

// Resolver turns member references into directory users.
type Resolver struct {
	dir Directory
}

// NewResolver builds an identity resolver over the user directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the user a reference points at. An explicit user id must
// exist; a phone handle provisions a placeholder on first sight. A
// reference carrying neither fails with ErrMemberRefRequired.
func (r *Resolver) Resolve(ctx context.Context, ref MemberRef) (user.User, error) {
	switch {
	case ref.UserID != "":
		u, err := r.dir.Get(ctx, ref.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return user.User{}, ErrUserNotFound
			}
			return user.User{}, err
		}
		return u, nil
	case ref.Phone != "":
		return r.dir.Provision(ctx, ref.Phone, ref.Name)
	default:
		return user.User{}, ErrMemberRefRequired
	}
}
