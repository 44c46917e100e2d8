package models

// AuthResult is what a successful login or registration yields: the
// credential issued by the backend and the identity it belongs to.
type AuthResult struct {
	Token string
	User  *User
}

// RegistrationProfile is the sign-up form. PasswordConfirmation never leaves
// the client.
type RegistrationProfile struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"-"`
	Email                string `json:"email"`
	Name                 string `json:"name"`
	PhoneNumber          string `json:"phoneNumber"`
}

// Request bodies.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// Response envelopes.

// Envelope is the common part of every mutation response. Success is a
// pointer so that a missing field is told apart from an explicit false.
type Envelope struct {
	Success *bool  `json:"success" validate:"required"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded reports whether the backend accepted the request.
func (e Envelope) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// Reason returns the human-readable message, preferring "message" over "error".
func (e Envelope) Reason() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Envelope
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// MeResponse is returned by the current-identity endpoint.
type MeResponse struct {
	User *User `json:"user" validate:"required"`
}
