package httpserver

import "github.com/dmitrijs2005/gophauth/internal/server/models"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

type VerifyEmailRequest struct {
	OTP string `json:"otp" validate:"required,len=4,numeric"`
}

// UserResponse is the public projection of a user record.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func newUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Verified: u.Verified,
	}
}

// AuthResponse answers login and register.
type AuthResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}

// VerifyUserResponse answers verify-user.
type VerifyUserResponse struct {
	Success bool          `json:"success"`
	User    *UserResponse `json:"user"`
}

// MessageResponse is used for errors and message-only successes.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
