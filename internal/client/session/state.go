// Package session holds the client's view of who is signed in. The Manager
// is the only writer of that view: it runs the sign-in and account
// mutations, reconciles the cached identity at start-up and reacts to the
// request client's invalidation signal.
package session

import "github.com/dmitrijs2005/roadwatch/internal/client/models"

type State int

const (
	// StateUnknown is the initial state while the bootstrap check runs.
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	State State
	// User is set only in StateAuthenticated.
	User *models.User
	// Optimistic is the cached identity shown while the bootstrap check is
	// still confirming it. It never grants access.
	Optimistic *models.User
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// IsAdmin is derived from the identity on every call.
func (s Snapshot) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin()
}

// DisplayUser is the identity to show in the UI: the confirmed user, or the
// optimistic one while unknown.
func (s Snapshot) DisplayUser() *models.User {
	if s.Authenticated() {
		return s.User
	}
	if s.State == StateUnknown {
		return s.Optimistic
	}
	return nil
}
