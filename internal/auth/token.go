package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcq-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "mcq-service"

// Revocations remembers logged-out token ids until they expire.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims is the bearer token payload.
type Claims struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret      []byte
	ttl         time.Duration
	revocations Revocations
	now         func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, revocations Revocations) *TokenIssuer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenIssuer{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue returns a signed token for account and its expiry.
func (t *TokenIssuer) Issue(account domain.Account) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := &Claims{
		Name: account.Name,
		Role: account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies raw and resolves the principal it carries.
func (t *TokenIssuer) Parse(ctx context.Context, raw string) (domain.Principal, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return domain.Principal{}, nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	principal := domain.Principal{ID: claims.Subject, Role: claims.Role}
	if !principal.Authenticated() {
		return domain.Principal{}, nil, fmt.Errorf("%w: token has no usable subject", domain.ErrUnauthorized)
	}

	if t.revocations != nil && claims.ID != "" {
		revoked, err := t.revocations.Revoked(ctx, claims.ID)
		if err != nil {
			return domain.Principal{}, nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return domain.Principal{}, nil, errors.Join(domain.ErrUnauthorized, domain.ErrTokenRevoked)
		}
	}
	return principal, claims, nil
}

// Revoke invalidates the token behind claims for the rest of its lifetime.
func (t *TokenIssuer) Revoke(ctx context.Context, claims *Claims) error {
	if t.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}
	var remaining time.Duration
	if claims.ExpiresAt != nil {
		remaining = claims.ExpiresAt.Sub(t.now())
	}
	return t.revocations.Revoke(ctx, claims.ID, remaining)
}
