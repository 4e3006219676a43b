package route

import (
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/stretchr/testify/assert"
)

var (
	verified   = session.Session{Token: "t", User: models.User{Username: "alice", Verified: true}}
	unverified = session.Session{Token: "t", User: models.User{Username: "alice"}}
	anonymous  = session.Session{}
)

func TestGuard(t *testing.T) {
	assert.Equal(t, Home, Guard(verified))
	assert.Equal(t, OTP, Guard(unverified))
	assert.Equal(t, Login, Guard(anonymous))
	assert.Equal(t, Login, Guard(session.Session{User: models.User{Verified: true}}))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		path string
		s    session.Session
		want Screen
	}{
		{"/", verified, Home},
		{"/", unverified, OTP},
		{"/", anonymous, Login},
		{"", anonymous, Login},
		{"/login", verified, Login},
		{"/signup", anonymous, Signup},
		{"/otp-screen", anonymous, OTP},
		{"/home", anonymous, Home},
		{"/home/", anonymous, Home},
		{"/nowhere", verified, Home},
		{"/nowhere", unverified, OTP},
		{"/nowhere", anonymous, Login},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.path, tt.s))
		})
	}
}

func TestScreenPath(t *testing.T) {
	assert.Equal(t, "/otp-screen", OTP.Path())
	assert.Equal(t, Home, Resolve(Home.Path(), anonymous))
}
