package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages the user directory lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to register a user.
type RegisterInput struct {
	Phone    string
	Password string
	Name     string
}

// Register creates a REGISTERED user with a hashed password. If an
// UNREGISTERED placeholder already exists for the phone number it is
// upgraded in place, preserving its id and accumulated circle memberships.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if input.Phone == "" {
		return User{}, errors.New("phone is required")
	}
	if len(input.Password) < 6 {
		return User{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	existing, err := s.repo.FindByPhone(ctx, input.Phone)
	switch {
	case err == nil:
		if existing.Registered() {
			return User{}, ErrPhoneTaken
		}
		status := StatusRegistered
		fields := UpdateFields{Status: &status, PasswordHash: hash}
		if input.Name != "" {
			fields.Name = &input.Name
		}
		return s.repo.Update(ctx, existing.ID, fields)
	case errors.Is(err, ErrNotFound):
	default:
		return User{}, err
	}

	u := User{
		ID:           uuid.New().String(),
		Phone:        input.Phone,
		Name:         input.Name,
		Status:       StatusRegistered,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	return u, nil
}

// Provision returns the user holding the phone number, creating an
// UNREGISTERED placeholder when none exists yet.
func (s *Service) Provision(ctx context.Context, phone, name string) (User, error) {
	if phone == "" {
		return User{}, errors.New("phone is required")
	}

	existing, err := s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	u := User{
		ID:        uuid.New().String(),
		Phone:     phone,
		Name:      name,
		Status:    StatusUnregistered,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	return u, nil
}

// Authenticate verifies phone/password credentials for a registered user.
func (s *Service) Authenticate(ctx context.Context, phone, password string) (User, error) {
	u, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if !u.Registered() {
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return User{}, err
	}
	u.LastLogin = now

	return u, nil
}

// EditInput carries the profile fields a user may change about themselves.
type EditInput struct {
	Phone    *string
	Name     *string
	Password *string
}

// Edit updates the allow-listed profile fields of an existing user.
func (s *Service) Edit(ctx context.Context, id string, input EditInput) (User, error) {
	fields := UpdateFields{Phone: input.Phone, Name: input.Name}
	if input.Password != nil {
		if len(*input.Password) < 6 {
			return User{}, errors.New("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		fields.PasswordHash = hash
	}
	return s.repo.Update(ctx, id, fields)
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
