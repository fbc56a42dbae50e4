package auth

import (
	"context"
	"testing"
	"time"

	"github.com/likelemba/likelemba/internal/config"
	"github.com/likelemba/likelemba/internal/user"
)

func newAuthFixture(t *testing.T) (*Service, *user.Service) {
	t.Helper()
	cfg := config.Config{
		JWTSecret:       "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
	repo := user.NewMemoryRepository()
	return NewService(cfg, repo), user.NewService(repo)
}

func TestLoginIssuesVerifiableTokens(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)

	u, err := users.Register(ctx, user.RegisterInput{Phone: "+242060000001", Password: "secret1", Name: "Alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	pair, err := svc.Login(u)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	claims, err := ParseAndVerifyHS256(pair.AccessToken, []byte("test-access-secret"))
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != u.ID {
		t.Fatalf("expected sub %s, got %v", u.ID, claims["sub"])
	}

	// The access token must not verify against the refresh secret.
	if _, err := ParseAndVerifyHS256(pair.AccessToken, []byte("test-refresh-secret")); err == nil {
		t.Fatalf("access token verified with the wrong secret")
	}
}

func TestRefreshRotatesAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)

	u, err := users.Register(ctx, user.RegisterInput{Phone: "+242060000001", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := svc.Login(u)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, expiresIn, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" || expiresIn <= 0 {
		t.Fatalf("unexpected refresh result: %q %d", access, expiresIn)
	}
	if _, err := ParseAndVerifyHS256(access, []byte("test-access-secret")); err != nil {
		t.Fatalf("verify refreshed token: %v", err)
	}
}

func TestLogoutInvalidatesRefreshTokens(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture(t)

	u, err := users.Register(ctx, user.RegisterInput{Phone: "+242060000001", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := svc.Login(u)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, u.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// The stored token version moved on, so the old refresh token is dead.
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected refresh to fail after logout")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	token, err := SignHS256(map[string]any{
		"sub": "abc",
		"exp": time.Now().Add(time.Minute).Unix(),
	}, []byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseAndVerifyHS256(token+"x", []byte("secret")); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}

	expired, err := SignHS256(map[string]any{
		"sub": "abc",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}, []byte("secret"))
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	if _, err := ParseAndVerifyHS256(expired, []byte("secret")); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
