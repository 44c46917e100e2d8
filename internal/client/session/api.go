package session

import (
	"context"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
)

// API is the part of the backend the session needs. *client.HTTPClient
// implements it.
type API interface {
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.AuthResult, error)
	Register(ctx context.Context, profile models.RegistrationProfile) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) (string, error)
	ChangePassword(ctx context.Context, current, next string) (string, error)
	DeleteAccount(ctx context.Context, password string) (string, error)
	// Invalidate clears the stored credential and signals the session.
	Invalidate(ctx context.Context) error
}

var _ API = (*client.HTTPClient)(nil)

// unauthorizedSource is implemented by clients that can report a 401.
type unauthorizedSource interface {
	SetUnauthorizedHandler(h client.UnauthorizedHandler)
}
