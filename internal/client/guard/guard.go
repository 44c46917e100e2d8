// Package guard decides whether a dashboard surface may be shown for a
// session snapshot. Decisions are pure functions of the snapshot.
package guard

import (
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/session"
)

type Outcome int

const (
	// Allow renders the surface.
	Allow Outcome = iota
	// Pending renders a neutral loading placeholder: no content, no redirect.
	Pending
	// Redirect sends the user to Decision.Target.
	Redirect
	// NotFound: no such surface.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "invalid"
	}
}

// Surface names used as redirect targets.
const (
	SurfaceLogin   = "login"
	SurfaceLanding = "dashboard"
)

type Decision struct {
	Outcome Outcome
	Target  string
}

func allow() Decision                 { return Decision{Outcome: Allow} }
func pending() Decision               { return Decision{Outcome: Pending} }
func redirect(target string) Decision { return Decision{Outcome: Redirect, Target: target} }

// RequireAuthentication admits any signed-in user. While the session is
// unknown it never redirects.
func RequireAuthentication(s session.Snapshot) Decision {
	switch {
	case s.State == session.StateUnknown:
		return pending()
	case s.Authenticated():
		return allow()
	default:
		return redirect(SurfaceLogin)
	}
}

// RequireRole admits signed-in users holding role. A signed-in user without
// it goes to the landing surface, not to login.
func RequireRole(s session.Snapshot, role models.Role) Decision {
	if d := RequireAuthentication(s); d.Outcome != Allow {
		return d
	}
	if s.User.Role != role {
		return redirect(SurfaceLanding)
	}
	return allow()
}
