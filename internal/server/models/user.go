// Package models holds the server's persistent records.
package models

import "time"

// User is a credential store record. OTPCode is empty once the email address
// has been verified or no code is outstanding.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Verified     bool
	OTPCode      string
	OTPExpiresAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OTPExpired reports whether the outstanding code is past its deadline.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPCode == "" || !now.Before(u.OTPExpiresAt)
}
