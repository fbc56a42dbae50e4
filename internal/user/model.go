package user

import (
	"errors"
	"time"
)

const (
	// StatusUnregistered marks a placeholder identity provisioned when a
	// person is referenced as a circle member before signing up.
	StatusUnregistered = "UNREGISTERED"
	// StatusRegistered marks a user that completed registration and holds a credential.
	StatusRegistered = "REGISTERED"
)

var (
	// ErrNotFound indicates no user matches the given identifier or phone.
	ErrNotFound = errors.New("user not found")

	// ErrPhoneTaken indicates the phone number already belongs to a registered user.
	ErrPhoneTaken = errors.New("phone already registered")

	// ErrInvalidCredentials indicates a failed phone/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an identity record in the directory. A REGISTERED user always
// carries a password hash; an UNREGISTERED placeholder never does.
type User struct {
	ID           string
	Phone        string
	Name         string
	Status       string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Registered reports whether the user completed registration.
func (u User) Registered() bool {
	return u.Status == StatusRegistered
}
