// Package models holds client-side data shared by the transport, the local
// store and the session.
package models

// User is the server's public view of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// NeedsVerification reports a known account whose email is not yet verified.
func (u User) NeedsVerification() bool {
	return u.Username != "" && !u.Verified
}
