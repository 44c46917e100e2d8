// Package tokenstore persists the session credential together with the
// last-known user identity. It is a local cache: the backend stays the
// source of truth, and the bootstrap check reconciles the two.
package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// Store keys in the metadata table.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

// ErrIncomplete is returned by Set when the credential lacks a token or a user.
var ErrIncomplete = errors.New("credential requires both token and user")

// Credential is the pair the store keeps: a bearer token and the identity
// it was issued for.
type Credential struct {
	Token string
	User  *models.User
}

// ExpiresAt reads the "exp" claim when the token is a JWT. The signature is
// not verified: the client only uses the claim to avoid sending a token the
// backend would reject anyway. ok is false for opaque tokens and JWTs without
// an expiry.
func (c Credential) ExpiresAt() (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the token is known to be expired at now.
func (c Credential) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	return ok && !now.Before(exp)
}

// Store is the token store contract. Set writes both parts so that a reader
// never observes a token without its identity; Clear removes both.
type Store interface {
	Get(ctx context.Context) (Credential, bool, error)
	Set(ctx context.Context, cred Credential) error
	Clear(ctx context.Context) error
}

func validate(cred Credential) error {
	if cred.Token == "" || cred.User == nil {
		return ErrIncomplete
	}
	return nil
}
