package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/otp"
	"github.com/dmitrijs2005/gophauth/internal/client/route"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Navigate resolves path against the current session and shows the result.
func (a *App) Navigate(path string) {
	a.goTo(route.Resolve(path, a.store.Current()))
}

func (a *App) currentScreen() route.Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.screen
}

// goTo switches to s and renders it. The home screen needs a signed-in
// user and falls back to login otherwise.
func (a *App) goTo(s route.Screen) {
	if s == route.Home && a.store.Current().User.ID == "" {
		s = route.Login
	}

	a.mu.Lock()
	a.screen = s
	a.mu.Unlock()

	a.render(s)
}

func (a *App) render(s route.Screen) {
	switch s {
	case route.Login:
		a.out.Printf("== Welcome Back!! ==\nType 'login' to sign in, or 'signup' if you don't have an account.\n")
	case route.Signup:
		a.out.Printf("== Get Registered! ==\nType 'signup' to create an account, or 'login' if you already have one.\n")
	case route.OTP:
		a.out.Printf("== Enter OTP ==\nWe have sent a %d-digit OTP to your email: %s\n", otp.Size, a.store.Current().User.Email)
		a.renderSlots()
	case route.Home:
		a.Profile()
	}
}

func (a *App) renderSlots() {
	var sb strings.Builder
	slots := a.flow.Buffer().Slots()
	focus := a.flow.Buffer().Focus()
	for i, d := range slots {
		if d == "" {
			d = " "
		}
		if i == focus {
			sb.WriteString("[" + d + "]*")
		} else {
			sb.WriteString("[" + d + "] ")
		}
	}
	a.out.Printf("%s\n  verify: %s | resend: %s\n", strings.TrimRight(sb.String(), " "), a.flow.VerifyLabel(), a.flow.ResendLabel())
}

// Profile prints the home screen.
func (a *App) Profile() {
	u := a.store.Current().User
	name := u.Username
	if name == "" {
		name = "User"
	}
	verified := "No"
	if u.Verified {
		verified = "Yes"
	}
	a.out.Printf("== Welcome, %s! ==\nUsername: %s\nEmail:    %s\nVerified: %s\n", name, u.Username, u.Email, verified)
}

// EnterOTP types or pastes digits at the focused slot. A whole code pasted
// over a full buffer replaces it. Filling the last slot submits the code.
func (a *App) EnterOTP(ctx context.Context, digits string) error {
	slot := a.flow.Buffer().Focus()
	if a.flow.Buffer().Full() && len(digits) >= otp.Size && common.IsDigits(digits) {
		a.flow.Reset()
		slot = 0
	}

	err := a.flow.Input(ctx, slot, digits)
	if errors.Is(err, otp.ErrNotDigit) {
		a.out.Error("Only digits are allowed.")
	}
	if a.currentScreen() == route.OTP {
		a.renderSlots()
	}
	return err
}

// Backspace erases at the focused slot.
func (a *App) Backspace() error {
	err := a.flow.Backspace(a.flow.Buffer().Focus())
	a.renderSlots()
	return err
}

// Verify submits whatever is in the buffer.
func (a *App) Verify(ctx context.Context) error {
	err := a.flow.Submit(ctx)
	if a.currentScreen() == route.OTP {
		a.renderSlots()
	}
	return err
}

// Resend requests a new code in the background so the digits can still be
// typed and verified meanwhile.
func (a *App) Resend(ctx context.Context) error {
	if a.flow.Resending() {
		a.out.Printf("%s\n", otp.LabelResendWaiting)
		return otp.ErrBusy
	}

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		_ = a.flow.Resend(ctx)
	}()
	a.out.Printf("%s\n", otp.LabelResendWaiting)
	return nil
}
