package circle

import (
	"context"
	"errors"
	"testing"

	"github.com/likelemba/likelemba/internal/user"
)

func newTestDirectory(t *testing.T) *user.Service {
	t.Helper()
	return user.NewService(user.NewMemoryRepository())
}

func TestResolveByUserID(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	registered, err := dir.Register(ctx, user.RegisterInput{Phone: "+242060000001", Password: "secret1", Name: "Alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r := NewResolver(dir)
	got, err := r.Resolve(ctx, MemberRef{UserID: registered.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != registered.ID {
		t.Fatalf("resolved wrong user: %s", got.ID)
	}
}

func TestResolveUnknownUserID(t *testing.T) {
	r := NewResolver(newTestDirectory(t))

	_, err := r.Resolve(context.Background(), MemberRef{UserID: "nope"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResolveByPhoneProvisionsPlaceholder(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)
	r := NewResolver(dir)

	got, err := r.Resolve(ctx, MemberRef{Phone: "+242060000002", Name: "Bob"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Status != user.StatusUnregistered {
		t.Fatalf("expected UNREGISTERED placeholder, got %s", got.Status)
	}

	// The same phone must resolve to the same placeholder, not a new row.
	again, err := r.Resolve(ctx, MemberRef{Phone: "+242060000002"})
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if again.ID != got.ID {
		t.Fatalf("placeholder not reused: %s vs %s", again.ID, got.ID)
	}
}

func TestResolveRequiresReference(t *testing.T) {
	r := NewResolver(newTestDirectory(t))

	_, err := r.Resolve(context.Background(), MemberRef{})
	if !errors.Is(err, ErrMemberRefRequired) {
		t.Fatalf("expected ErrMemberRefRequired, got %v", err)
	}
}
