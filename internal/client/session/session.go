// Package session holds the client's view of who is signed in: the in-memory
// Store, its persisted form in the local database and the startup
// Bootstrapper that restores it.
package session

import "github.com/dmitrijs2005/gophauth/internal/client/models"

// Session is a bearer token plus the account it belongs to.
type Session struct {
	Token string
	User  models.User
}

// IsAuthenticated requires both a username and a verified email. A session
// with a username but no verification still needs the OTP step.
func (s Session) IsAuthenticated() bool {
	return s.User.Username != "" && s.User.Verified
}

// IsZero reports an empty session.
func (s Session) IsZero() bool {
	return s == Session{}
}
