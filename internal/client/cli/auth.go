package cli

import (
	"context"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the sign-up profile and hands it to the session.
// Validation and notifications happen there.
func (a *App) Register(ctx context.Context) error {
	var p models.RegistrationProfile
	var err error

	if p.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if p.Name, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if p.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if p.PhoneNumber, err = getSimpleText(a.reader, "Phone number", a.out); err != nil {
		return err
	}
	if p.Password, err = getPassword(a.out, "Password"); err != nil {
		return err
	}
	if p.PasswordConfirmation, err = getPassword(a.out, "Repeat password"); err != nil {
		return err
	}

	return a.session.Register(ctx, p)
}

func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	return a.session.Login(ctx, username, password)
}

func (a *App) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	return a.session.ResetPassword(ctx, email)
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	next, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.out, "Repeat new password")
	if err != nil {
		return err
	}
	return a.session.ChangePassword(ctx, current, next, confirm)
}

// DeleteAccount asks for explicit confirmation before calling the backend.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete your account permanently? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		printlnFn("Cancelled")
		return nil
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	return a.session.DeleteAccount(ctx, password)
}

func (a *App) WhoAmI(context.Context) error {
	s := a.session.Snapshot()
	u := s.DisplayUser()
	if u == nil {
		printlnFn("Not signed in")
		return nil
	}
	printlnFn("Username:", u.Username)
	printlnFn("Name:    ", u.Name)
	printlnFn("Email:   ", u.Email)
	if u.PhoneNumber != "" {
		printlnFn("Phone:   ", u.PhoneNumber)
	}
	printlnFn("Role:    ", string(u.Role))
	if !s.Authenticated() {
		printlnFn("(cached, not yet confirmed by the server)")
	}
	return nil
}
