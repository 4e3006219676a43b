package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

var (
	// ErrAuthenticationFailed is recorded when the server rejects the token.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrVerificationFailed is recorded when the server could not be reached
	// or failed on its side.
	ErrVerificationFailed = errors.New("token verification failed")
)

// Persistence is the part of TokenStore the client needs.
type Persistence interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}

// UserVerifier exchanges a token for the account it was issued to.
type UserVerifier interface {
	VerifyUser(ctx context.Context, token string) (*models.User, error)
}

// Bootstrapper restores the session at startup.
type Bootstrapper struct {
	tokens   Persistence
	verifier UserVerifier
	store    *Store
	logger   logging.Logger
}

func NewBootstrapper(tokens Persistence, verifier UserVerifier, store *Store, l logging.Logger) *Bootstrapper {
	return &Bootstrapper{tokens: tokens, verifier: verifier, store: store, logger: l}
}

// Run resolves the stored token into a Session in the Store. Without a
// token it returns at once and makes no request. Otherwise it makes exactly
// one verify-user call:
//
//   - success: the Store holds the token and the returned user;
//   - rejected by the server (4xx, success false, malformed body): the
//     Store is cleared and the token deleted;
//   - transport failure or a 5xx: the Store is cleared and the token kept.
//
// The returned error is also recorded in the Store.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.store.Init()

	persisted, err := b.tokens.Load(ctx)
	if err != nil {
		b.logger.Error(ctx, "reading stored token", "error", err)
		b.store.Clear(err)
		return err
	}

	if persisted.Token == "" {
		b.logger.Debug(ctx, "no stored token")
		return nil
	}

	user, err := b.verifier.VerifyUser(ctx, persisted.Token)
	if err == nil {
		next := Session{Token: persisted.Token, User: *user}
		b.store.Replace(next)
		if serr := b.tokens.Save(ctx, next); serr != nil {
			b.logger.Warn(ctx, "refreshing cached profile", "error", serr)
		}
		return nil
	}

	if client.IsRejection(err) {
		recorded := fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		b.store.Clear(recorded)
		if derr := b.tokens.Delete(ctx); derr != nil {
			b.logger.Warn(ctx, "deleting rejected token", "error", derr)
		}
		b.logger.Warn(ctx, "stored token rejected", "error", err)
		return recorded
	}

	recorded := fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	b.store.Clear(recorded)
	b.logger.Error(ctx, "error during token verification", "error", err)
	return recorded
}
