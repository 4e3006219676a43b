package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/route"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials on the login screen. On success the session
// is stored and the route guard picks the next screen (home, or the OTP
// screen for an unverified account).
func (a *App) Login(ctx context.Context) error {
	a.goTo(route.Login)

	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.auth.Login(ctx, username, string(password)); err != nil {
		a.reportFailure(ctx, err, "Login failed!")
		return err
	}

	a.out.Success("Login successful!")
	a.goTo(route.Guard(a.store.Current()))
	return nil
}

// Signup prompts for a new account. On success the server has mailed the
// first code and the OTP screen is shown.
func (a *App) Signup(ctx context.Context) error {
	a.goTo(route.Signup)

	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.auth.Register(ctx, username, email, string(password)); err != nil {
		a.reportFailure(ctx, err, "Registration failed!")
		return err
	}

	a.flow.Reset()
	a.out.Success("Registration successful!")
	a.goTo(route.OTP)
	return nil
}

// Logout deletes the stored token and returns to the login screen.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.logger.Error(ctx, "logout", "error", err)
		a.out.Error("Logout failed")
		return err
	}
	a.flow.Reset()
	a.out.Success("Logout Successful")
	a.goTo(route.Login)
	return nil
}

// reportFailure shows validation messages as they are; anything else gets
// prefix followed by the server's message, if any.
func (a *App) reportFailure(ctx context.Context, err error, prefix string) {
	if errors.Is(err, client.ErrValidation) {
		a.out.Error(client.UserMessage(err, prefix))
		return
	}
	a.logger.Warn(ctx, strings.TrimSuffix(prefix, "!"), "error", err)
	a.out.Error(strings.TrimSpace(prefix + " " + client.UserMessage(err, "")))
}
