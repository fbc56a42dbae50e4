package user

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Phone: "+243810000000", Password: "secret1", Name: "Amina"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Status != StatusRegistered {
		t.Fatalf("expected REGISTERED, got %s", u.Status)
	}
	if len(u.PasswordHash) == 0 {
		t.Fatalf("expected password hash to be stored")
	}

	authed, err := svc.Authenticate(ctx, u.Phone, "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != u.ID {
		t.Fatalf("expected user %s, got %s", u.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, u.Phone, "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestRegisterUpgradesPlaceholder(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	placeholder, err := svc.Provision(ctx, "+243820000000", "Joseph")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if placeholder.Status != StatusUnregistered {
		t.Fatalf("expected UNREGISTERED placeholder, got %s", placeholder.Status)
	}
	if len(placeholder.PasswordHash) != 0 {
		t.Fatalf("placeholder must not carry a credential")
	}

	registered, err := svc.Register(ctx, RegisterInput{Phone: placeholder.Phone, Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.ID != placeholder.ID {
		t.Fatalf("upgrade must preserve the user id: %s != %s", registered.ID, placeholder.ID)
	}
	if registered.Status != StatusRegistered {
		t.Fatalf("expected REGISTERED after upgrade, got %s", registered.Status)
	}
	if registered.Name != "Joseph" {
		t.Fatalf("expected name preserved, got %q", registered.Name)
	}

	// A second registration against the same phone must conflict.
	if _, err := svc.Register(ctx, RegisterInput{Phone: placeholder.Phone, Password: "another1"}); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected phone taken, got %v", err)
	}
}

func TestProvisionIsIdempotentPerPhone(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Provision(ctx, "+243830000000", "")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	second, err := svc.Provision(ctx, "+243830000000", "ignored")
	if err != nil {
		t.Fatalf("provision again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same provisioned user, got %s and %s", first.ID, second.ID)
	}
}

func TestEditAllowList(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Phone: "+243840000000", Password: "secret1", Name: "Old Name"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "New Name"
	edited, err := svc.Edit(ctx, u.ID, EditInput{Name: &name})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Name != "New Name" {
		t.Fatalf("expected name update, got %q", edited.Name)
	}
	if edited.Phone != u.Phone {
		t.Fatalf("phone must be untouched, got %q", edited.Phone)
	}

	short := "abc"
	if _, err := svc.Edit(ctx, u.ID, EditInput{Password: &short}); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}
