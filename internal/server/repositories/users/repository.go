// Package users is the credential store. Two backends implement Repository:
// PostgreSQL (database/sql over pgx) and MongoDB.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists user records. Lookups that match nothing return
// common.ErrorNotFound; unique username or email violations return
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// SetOTP replaces the user's outstanding verification code.
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error

	// ConsumeOTP atomically marks the user verified and clears the code,
	// provided the user is unverified, code matches and has not expired at
	// now. Otherwise it returns common.ErrorNotFound and changes nothing.
	ConsumeOTP(ctx context.Context, id, code string, now time.Time) (*models.User, error)
}
