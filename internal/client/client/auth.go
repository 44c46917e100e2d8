package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
)

// Backend routes, relative to the configured base URL.
const (
	PathMe             = "/auth/me"
	PathLogin          = "/auth/login"
	PathRegister       = "/auth/register"
	PathLogout         = "/auth/logout"
	PathResetPassword  = "/auth/reset-password"
	PathChangePassword = "/auth/change-password"
	PathDeleteAccount  = "/auth/delete-account"
	PathHealth         = "/health"
)

// Me returns the identity the backend associates with the stored credential.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var resp models.MeResponse
	if err := c.Do(ctx, http.MethodGet, PathMe, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.AuthResult, error) {
	var resp models.AuthResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.Do(ctx, http.MethodPost, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	return c.authResult(resp)
}

func (c *HTTPClient) Register(ctx context.Context, profile models.RegistrationProfile) (*models.AuthResult, error) {
	var resp models.AuthResponse
	if err := c.Do(ctx, http.MethodPost, PathRegister, profile, &resp); err != nil {
		return nil, err
	}
	return c.authResult(resp)
}

// Logout asks the backend to revoke the current credential. The response
// body is ignored.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathLogout, nil, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email string) (string, error) {
	return c.mutate(ctx, PathResetPassword, models.ResetPasswordRequest{Email: email})
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return c.mutate(ctx, PathChangePassword, models.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, password string) (string, error) {
	return c.mutate(ctx, PathDeleteAccount, models.DeleteAccountRequest{Password: password})
}

// Ping checks that the backend answers at all.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, PathHealth, nil, nil)
}

// mutate posts in and interprets the {success, message} envelope. It returns
// the backend's message on success.
func (c *HTTPClient) mutate(ctx context.Context, path string, in any) (string, error) {
	var env models.Envelope
	if err := c.Do(ctx, http.MethodPost, path, in, &env); err != nil {
		return "", err
	}
	if !env.Succeeded() {
		return "", &ResponseError{Kind: ErrValidation, Message: env.Reason()}
	}
	return env.Reason(), nil
}

func (c *HTTPClient) authResult(resp models.AuthResponse) (*models.AuthResult, error) {
	if !resp.Succeeded() {
		return nil, &ResponseError{Kind: ErrValidation, Message: resp.Reason()}
	}
	if resp.Token == "" {
		return nil, &ResponseError{Kind: ErrValidation, Err: errors.New("response has no token")}
	}
	if resp.User == nil {
		return nil, &ResponseError{Kind: ErrValidation, Err: errors.New("response has no user")}
	}
	if err := c.validate.Struct(resp.User); err != nil {
		return nil, &ResponseError{Kind: ErrValidation, Err: fmt.Errorf("unexpected user shape: %w", err)}
	}
	return &models.AuthResult{Token: resp.Token, User: resp.User}, nil
}
