// Package services contains application services for the gophauth client.
// This file defines the authentication service: login, register and logout
// on top of the API client, the persisted token and the session store.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/go-playground/validator/v10"
)

const (
	MsgMissingFields = "Please fill in all fields."
	MsgBadEmail      = "Please provide a valid email address."
)

// AuthService performs the account actions of the login and signup screens.
//
// Contract:
//   - Login / Register: validate input locally (no request on failure),
//     call the server, persist the token and replace the session.
//   - Logout: delete the persisted token and clear the session.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods honor context cancellation and timeouts.
type AuthService struct {
	api      client.Client
	tokens   session.Persistence
	store    *session.Store
	logger   logging.Logger
	validate *validator.Validate
}

// NewAuthService constructs an AuthService bound to the API client, the
// token persistence and the session store.
func NewAuthService(api client.Client, tokens session.Persistence, store *session.Store, l logging.Logger) *AuthService {
	return &AuthService{
		api:      api,
		tokens:   tokens,
		store:    store,
		logger:   l,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Login authenticates username/password and installs the returned session.
func (a *AuthService) Login(ctx context.Context, username, password string) (*client.AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &client.ValidationError{Message: MsgMissingFields}
	}

	res, err := a.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.install(ctx, res); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "logged in", "user", res.User.Username, "verified", res.User.Verified)
	return res, nil
}

// Register creates the account and installs its (unverified) session. The
// server mails the first code as part of the call.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (*client.AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, &client.ValidationError{Message: MsgMissingFields}
	}
	if err := a.validate.Var(email, "email"); err != nil {
		return nil, &client.ValidationError{Message: MsgBadEmail}
	}

	res, err := a.api.Register(ctx, username, email, password)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	if err := a.install(ctx, res); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "registered", "user", res.User.Username)
	return res, nil
}

// Logout removes the persisted token and the in-memory session. The session
// is cleared even when the local store fails.
func (a *AuthService) Logout(ctx context.Context) error {
	a.store.Clear(nil)
	if err := a.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *AuthService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *AuthService) Close() error {
	return a.api.Close()
}

func (a *AuthService) install(ctx context.Context, res *client.AuthResult) error {
	s := session.Session{Token: res.Token, User: res.User}
	if err := a.tokens.Save(ctx, s); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	a.store.Replace(s)
	return nil
}
