package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// AuthResult is the body of a successful login or register call.
type AuthResult struct {
	Message string
	Token   string
	User    models.User
}

// Client is the auth server API as seen by the CLI.
type Client interface {
	Close() error
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	VerifyEmail(ctx context.Context, token, otp string) (string, error)
	ResendOTP(ctx context.Context, token string) (string, error)
	VerifyUser(ctx context.Context, token string) (*models.User, error)
	Ping(ctx context.Context) error
}
