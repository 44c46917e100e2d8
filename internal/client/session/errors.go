package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/forms"
)

var (
	// ErrNotAuthenticated rejects account mutations attempted while signed
	// out. It is a client-side validation failure.
	ErrNotAuthenticated = fmt.Errorf("not signed in: %w", forms.ErrClientValidation)
	// ErrSuperseded is returned when a sign-in result arrives after a newer
	// sign-in or sign-out began. The result is discarded.
	ErrSuperseded = errors.New("superseded by a newer session change")
)

// Notification texts.
const (
	MsgSessionExpired = "Your session has expired, please sign in again"
	MsgSignedOut      = "Signed out"
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
	MsgResetSent      = "If the address is registered, a reset link has been sent"
	MsgResetFailed    = "Password reset failed"
	MsgPasswordSaved  = "Password changed"
	MsgChangeFailed   = "Password change failed"
	MsgAccountDeleted = "Account deleted"
	MsgDeleteFailed   = "Account deletion failed"
)

// UserMessage turns a mutation error into notification text. The backend's
// own message wins when it sent one; fallback covers the rest.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var fe *forms.Error
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "You need to sign in first"
	case errors.As(err, &fe):
		return capitalize(fe.Error())
	case errors.Is(err, forms.ErrClientValidation):
		return capitalize(err.Error())
	case errors.Is(err, ErrSuperseded):
		return "The session changed while the request was running"
	}

	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	if errors.Is(err, client.ErrUnavailable) {
		return "Server is unreachable, please try again later"
	}
	return fallback
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
