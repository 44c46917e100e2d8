package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/roadwatch/internal/client/forms"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/notify"
)

// Login signs in with username and password. Invalid input is rejected
// without a network call.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	form := forms.LoginForm{Username: username, Password: password}
	if err := form.Validate(); err != nil {
		return m.reject(KindLogin, err, MsgLoginFailed)
	}
	username = strings.TrimSpace(username)

	return m.run(KindLogin, submissionKey(username, password), func() error {
		t := m.beginAttempt()
		res, err := m.api.Login(ctx, username, password)
		if err == nil {
			err = m.authenticate(ctx, t, res)
		}
		return m.finishSignIn(ctx, KindLogin, res, err, MsgLoginFailed, "Signed in as ")
	})
}

// Register creates an account and signs in with the credential the backend
// returns.
func (m *Manager) Register(ctx context.Context, profile models.RegistrationProfile) error {
	form := forms.NewRegistrationForm(profile, m.phoneRegion)
	if err := form.Validate(); err != nil {
		return m.reject(KindRegister, err, MsgRegisterFailed)
	}
	profile = form.Profile()

	return m.run(KindRegister, submissionKey(profile.Username, profile.Password), func() error {
		t := m.beginAttempt()
		res, err := m.api.Register(ctx, profile)
		if err == nil {
			err = m.authenticate(ctx, t, res)
		}
		return m.finishSignIn(ctx, KindRegister, res, err, MsgRegisterFailed, "Account created, signed in as ")
	})
}

func (m *Manager) finishSignIn(ctx context.Context, kind Kind, res *models.AuthResult, err error, failMsg, okPrefix string) error {
	if err == nil {
		m.logger.Info(ctx, "signed in", "kind", string(kind), "user", res.User.Username)
		m.notify(notify.LevelSuccess, okPrefix+res.User.DisplayName())
		return nil
	}

	if errors.Is(err, ErrSuperseded) {
		m.logger.Info(ctx, "discarding stale sign-in result", "kind", string(kind))
		m.notify(notify.LevelInfo, UserMessage(err, failMsg))
		return err
	}

	m.logger.Warn(ctx, "sign-in failed", "kind", string(kind), "error", err)
	m.settleIfUnknown(ctx)
	m.notify(notify.LevelFailure, UserMessage(err, failMsg))
	return err
}

// Logout always ends the local session, whatever the backend answers.
// Calling it while signed out is a no-op that still clears the store.
func (m *Manager) Logout(ctx context.Context) error {
	return m.run(KindLogout, "", func() error {
		_, stored, err := m.store.Get(ctx)
		if err != nil {
			m.logger.Warn(ctx, "token store unreadable during logout", "error", err)
		}

		if stored {
			m.mu.Lock()
			m.signingOut++
			m.mu.Unlock()

			if err := m.api.Logout(ctx); err != nil {
				m.logger.Warn(ctx, "backend logout failed, signing out locally", "error", err)
			}

			m.mu.Lock()
			m.signingOut--
			m.mu.Unlock()
		}

		if err := m.signOutLocally(ctx); err != nil {
			m.notify(notify.LevelFailure, "Signed out, but the local credential could not be removed")
			return err
		}
		m.notify(notify.LevelSuccess, MsgSignedOut)
		return nil
	})
}

// ResetPassword asks the backend to send reset instructions to email. The
// session state is not touched.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	form := forms.ResetPasswordForm{Email: strings.TrimSpace(email)}
	if err := form.Validate(); err != nil {
		return m.reject(KindResetPassword, err, MsgResetFailed)
	}

	return m.run(KindResetPassword, strings.ToLower(form.Email), func() error {
		msg, err := m.api.ResetPassword(ctx, form.Email)
		return m.finishAccountCall(ctx, KindResetPassword, msg, err, MsgResetSent, MsgResetFailed)
	})
}

// ChangePassword requires a signed-in user.
func (m *Manager) ChangePassword(ctx context.Context, current, next, confirm string) error {
	user, err := m.requireUser()
	if err != nil {
		return m.reject(KindChangePassword, err, MsgChangeFailed)
	}
	form := forms.ChangePasswordForm{CurrentPassword: current, NewPassword: next, ConfirmNewPassword: confirm}
	if err := form.Validate(); err != nil {
		return m.reject(KindChangePassword, err, MsgChangeFailed)
	}

	return m.run(KindChangePassword, user.Username, func() error {
		msg, err := m.api.ChangePassword(ctx, current, next)
		return m.finishAccountCall(ctx, KindChangePassword, msg, err, MsgPasswordSaved, MsgChangeFailed)
	})
}

// DeleteAccount requires a signed-in user. On success the local session
// ends as if the user had logged out.
func (m *Manager) DeleteAccount(ctx context.Context, password string) error {
	user, err := m.requireUser()
	if err != nil {
		return m.reject(KindDeleteAccount, err, MsgDeleteFailed)
	}
	form := forms.DeleteAccountForm{Password: password}
	if err := form.Validate(); err != nil {
		return m.reject(KindDeleteAccount, err, MsgDeleteFailed)
	}

	return m.run(KindDeleteAccount, user.Username, func() error {
		epoch := m.currentEpoch()
		msg, err := m.api.DeleteAccount(ctx, password)
		if err != nil {
			return m.finishAccountCall(ctx, KindDeleteAccount, msg, err, MsgAccountDeleted, MsgDeleteFailed)
		}
		switch signedOut, err := m.signOutIfCurrent(ctx, epoch); {
		case err != nil:
			m.logger.Error(ctx, "account deleted but local sign-out failed", "error", err)
		case !signedOut:
			m.logger.Info(ctx, "account deleted after the session changed, keeping the newer session", "user", user.Username)
		}
		return m.finishAccountCall(ctx, KindDeleteAccount, msg, nil, MsgAccountDeleted, MsgDeleteFailed)
	})
}

func (m *Manager) finishAccountCall(ctx context.Context, kind Kind, msg string, err error, okMsg, failMsg string) error {
	if err != nil {
		m.logger.Warn(ctx, "mutation failed", "kind", string(kind), "error", err)
		m.settleIfUnknown(ctx)
		m.notify(notify.LevelFailure, UserMessage(err, failMsg))
		return err
	}
	if msg == "" {
		msg = okMsg
	}
	m.logger.Info(ctx, "mutation succeeded", "kind", string(kind))
	m.notify(notify.LevelSuccess, msg)
	return nil
}

// reject reports a failure detected before any network call.
func (m *Manager) reject(kind Kind, err error, failMsg string) error {
	m.metrics.ObserveMutation(string(kind), err)
	m.notify(notify.LevelFailure, UserMessage(err, failMsg))
	return err
}

// submissionKey identifies a sign-in submission by principal and password,
// so a retyped password starts a new attempt instead of joining the pending
// one.
func submissionKey(principal, password string) string {
	sum := sha256.Sum256([]byte(password))
	return strings.ToLower(principal) + ":" + hex.EncodeToString(sum[:8])
}

func (m *Manager) requireUser() (*models.User, error) {
	s := m.Snapshot()
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.User, nil
}
