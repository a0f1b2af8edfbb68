package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mcq-service/internal/domain"
	"mcq-service/internal/infra/memory"
	"golang.org/x/crypto/bcrypt"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d := NewDirectory(bcrypt.MinCost)
	if err := SeedDemoAccounts(d); err != nil {
		t.Fatalf("seed demo accounts: %v", err)
	}
	return d
}

func TestDirectoryAuthenticate(t *testing.T) {
	d := newTestDirectory(t)

	account, err := d.Authenticate(LoginRequest{Email: " Admin@Example.com ", Password: "password"})
	if err != nil {
		t.Fatalf("authenticate admin: %v", err)
	}
	if account.Role != domain.RoleAdmin || account.ID != "admin-1" {
		t.Fatalf("unexpected account %+v", account)
	}

	if _, err := d.Authenticate(LoginRequest{Email: "user@example.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := d.Authenticate(LoginRequest{Email: "ghost@example.com", Password: "password"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
	if _, err := d.Authenticate(LoginRequest{Email: "not-an-email", Password: "password"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDirectoryRegister(t *testing.T) {
	d := newTestDirectory(t)

	account, err := d.Register(SignupRequest{Name: "  Ada ", Email: "ada@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Role != domain.RoleUser || account.Name != "Ada" || account.ID == "" {
		t.Fatalf("unexpected account %+v", account)
	}
	if got, ok := d.Lookup(account.ID); !ok || got.Email != "ada@example.com" {
		t.Fatalf("lookup after register: %+v %v", got, ok)
	}
	if _, err := d.Authenticate(LoginRequest{Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login after register: %v", err)
	}

	if _, err := d.Register(SignupRequest{Name: "Ada", Email: "ADA@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected account exists, got %v", err)
	}
	if _, err := d.Register(SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "12345"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected short password rejected, got %v", err)
	}
	if _, err := d.Register(SignupRequest{Name: "   ", Email: "bob@example.com", Password: "123456"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected blank name rejected, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	d := newTestDirectory(t)
	issuer := NewTokenIssuer("test-secret", time.Hour, memory.NewRevocationStore())
	account, _ := d.Lookup("user-1")

	token, expiresAt, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future: %v", expiresAt)
	}

	principal, claims, err := issuer.Parse(context.Background(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if principal != (domain.Principal{ID: "user-1", Role: domain.RoleUser}) {
		t.Fatalf("unexpected principal %+v", principal)
	}
	if claims.Name != "Demo User" || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	d := newTestDirectory(t)
	account, _ := d.Lookup("admin-1")
	ctx := context.Background()

	issuer := NewTokenIssuer("secret-a", time.Hour, nil)
	token, _, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenIssuer("secret-b", time.Hour, nil)
	if _, _, err := other.Parse(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected wrong-secret rejection, got %v", err)
	}
	if _, _, err := issuer.Parse(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected malformed token rejection, got %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, _, err := issuer.Parse(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}

func TestTokenRevocation(t *testing.T) {
	d := newTestDirectory(t)
	account, _ := d.Lookup("user-1")
	ctx := context.Background()
	issuer := NewTokenIssuer("secret", time.Hour, memory.NewRevocationStore())

	token, _, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, claims, err := issuer.Parse(ctx, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := issuer.Revoke(ctx, claims); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	_, _, err = issuer.Parse(ctx, token)
	if !errors.Is(err, domain.ErrUnauthorized) || !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected revoked token, got %v", err)
	}

	fresh, _, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := issuer.Parse(ctx, fresh); err != nil {
		t.Fatalf("new token should still work: %v", err)
	}
}

func TestRequireToken(t *testing.T) {
	d := newTestDirectory(t)
	account, _ := d.Lookup("admin-1")
	issuer := NewTokenIssuer("secret", time.Hour, nil)
	token, _, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen domain.Principal
	handler := RequireToken(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/mcqs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/mcqs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || !seen.IsAdmin() {
		t.Fatalf("expected admin principal, got %d %+v", rec.Code, seen)
	}

	seen = domain.Principal{}
	req = httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen.ID != "admin-1" {
		t.Fatalf("expected query token accepted, got %d %+v", rec.Code, seen)
	}
}
