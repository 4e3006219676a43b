// Package route maps the session state to the screen the CLI shows.
package route

import (
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

type Screen string

const (
	Login  Screen = "login"
	Signup Screen = "signup"
	OTP    Screen = "otp-screen"
	Home   Screen = "home"
)

// Path is the screen's route, e.g. "/otp-screen".
func (s Screen) Path() string {
	return "/" + string(s)
}

// Guard picks the landing screen: home for a verified session, the OTP
// screen for a known but unverified user and login otherwise.
func Guard(s session.Session) Screen {
	switch {
	case s.IsAuthenticated():
		return Home
	case s.User.NeedsVerification():
		return OTP
	default:
		return Login
	}
}

// Resolve maps a path to a screen. Known screen paths resolve to
// themselves; "/" and anything unknown fall back to Guard.
func Resolve(path string, s session.Session) Screen {
	p := strings.TrimSuffix(strings.TrimSpace(path), "/")
	switch Screen(strings.TrimPrefix(p, "/")) {
	case Login:
		return Login
	case Signup:
		return Signup
	case OTP:
		return OTP
	case Home:
		return Home
	}
	return Guard(s)
}
