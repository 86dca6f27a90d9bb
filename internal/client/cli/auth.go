package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/machinewatch/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for a username and password and signs in. A rejected
// password is reported to the user and is not an error.
func (a *App) Login(ctx context.Context) error {
	if a.authService.IsAuthenticated(ctx) {
		fmt.Fprintln(a.out, "Already signed in, log out first.")
		return nil
	}

	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authService.Login(ctx, username, string(password))
	if errors.Is(err, common.ErrInvalidCredentials) {
		fmt.Fprintln(a.out, "Invalid credentials")
		return nil
	}
	if err != nil {
		return err
	}

	st := a.authService.Status(ctx)
	name := username
	if st.Identity != nil && st.Identity.Name != "" {
		name = st.Identity.Name
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", name)
	if st.Degraded {
		fmt.Fprintln(a.out, "Live machine status is unavailable right now.")
	}
	return nil
}

// Logout ends the session. It never fails.
func (a *App) Logout(ctx context.Context) error {
	if !a.authService.IsAuthenticated(ctx) {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	a.authService.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
