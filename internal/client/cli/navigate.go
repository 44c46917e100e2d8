package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/roadwatch/internal/client/guard"
)

// Open navigates to a dashboard surface, applying its guard.
func (a *App) Open(_ context.Context, name string) error {
	d := a.nav.Resolve(name, a.session.Snapshot())

	switch d.Outcome {
	case guard.Allow:
		s, _ := a.nav.Surface(name)
		printlnFn(fmt.Sprintf("== %s ==", s.Title))
		printlnFn(fmt.Sprintf("(%s: no content in this client)", s.Description))
	case guard.Pending:
		printlnFn("Loading session…")
	case guard.Redirect:
		printlnFn(fmt.Sprintf("Redirected to %q", d.Target))
		if d.Target == guard.SurfaceLogin {
			printlnFn("Use 'login' or 'register' to sign in")
		}
	case guard.NotFound:
		printlnFn(fmt.Sprintf("No such surface: %q (see 'surfaces')", name))
	}
	return nil
}

// Surfaces lists the navigation table with the current decision for each.
func (a *App) Surfaces(context.Context) error {
	snap := a.session.Snapshot()
	for _, s := range a.nav.Surfaces() {
		d := a.nav.Resolve(s.Name, snap)
		printlnFn(fmt.Sprintf("%-10s %-14s %s", s.Name, s.Policy, d.Outcome))
	}
	return nil
}

func (a *App) Stats(context.Context) error {
	return a.metrics.WriteSummary(a.out)
}
