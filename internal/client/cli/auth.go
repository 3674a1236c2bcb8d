package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/opsdash/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// Login prompts for credentials and signs in through the session gate. A
// failed sign-in is shown as an alert that waits for Enter before the prompt
// returns.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.gate.SignIn(ctx, email, string(password)); err != nil {
		a.alert(signInMessage(err))
		return err
	}

	s, _ := a.gate.Session()
	fmt.Fprintf(a.out, "Signed in as %s\n", s.Email)
	return nil
}

func signInMessage(err error) string {
	if errors.Is(err, common.ErrInvalidCredentials) {
		return "Sign in failed: invalid email or password."
	}
	return "Sign in failed: " + err.Error()
}

func (a *App) alert(msg string) {
	_, _ = getSimpleText(a.reader, "!! "+msg+" (press Enter)", a.out)
}

// Logout asks for confirmation, then deletes the persisted session.
func (a *App) Logout(ctx context.Context) error {
	ok, err := confirm(a.reader, "Sign out?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.dash.Settings.SignOut(ctx); err != nil {
		a.inlineError(err)
		return err
	}
	a.active = screenNone
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
