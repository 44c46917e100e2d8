package devserver

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &Config{}
	cfg.LoadDefaults()
	svc := NewService(NewMemoryRepository(), cfg, logging.Discard())
	svc.cost = bcrypt.MinCost
	require.NoError(t, svc.SeedAdmin(context.Background(), "admin", "admin123", "admin@example.com"))
	return svc
}

func TestService_SeedAdmin_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "admin", "other", "x@example.com"))

	sess, err := svc.Login(ctx, "ADMIN", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)
}

func TestService_RegisterLoginAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Username: " alice ", Password: "secret1", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.User.Username)
	assert.Equal(t, models.RoleUser, sess.User.Role)

	_, err = svc.Register(ctx, RegisterInput{Username: "Alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	login, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	user, claims, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, user.ID)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestService_LogoutRevokesOnlyThatToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	_, claims, err := svc.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	svc.Logout(ctx, claims)

	_, _, err = svc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, _, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_ChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "secret1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, sess.User.ID, "nope", "secret2"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, sess.User.ID, "secret1", "x"), ErrInvalidInput)
	require.NoError(t, svc.ChangePassword(ctx, sess.User.ID, "secret1", "secret2"))

	_, err = svc.Login(ctx, "carol", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.Login(ctx, "carol", "secret2")
	assert.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, sess.Token)
	assert.NoError(t, err, "changing the password keeps the current token valid")
}

func TestService_DeleteAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Username: "dave", Password: "secret1"})
	require.NoError(t, err)
	_, claims, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, claims, "wrong"), ErrWrongPassword)
	require.NoError(t, svc.DeleteAccount(ctx, claims, "secret1"))

	_, _, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Login(ctx, "dave", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Register(ctx, RegisterInput{Username: "dave", Password: "secret1"})
	assert.NoError(t, err, "username is free again")
}
