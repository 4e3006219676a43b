package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

// TokenStore persists the session in the local key/value table: the token
// under common.AuthTokenKey and the last known profile under
// common.AuthUserKey. Both keys are written and removed together.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Load returns the persisted session, or an empty one when no token is
// stored. A missing or unreadable profile leaves User empty.
func (t *TokenStore) Load(ctx context.Context) (Session, error) {
	repo := kv.NewSQLiteRepository(t.db)

	token, err := repo.Get(ctx, common.AuthTokenKey)
	if errors.Is(err, common.ErrorNotFound) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("load token: %w", err)
	}

	s := Session{Token: string(token)}

	raw, err := repo.Get(ctx, common.AuthUserKey)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return s, nil
	case err != nil:
		return Session{}, fmt.Errorf("load user: %w", err)
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err == nil {
		s.User = u
	}
	return s, nil
}

// Save stores s in a single transaction.
func (t *TokenStore) Save(ctx context.Context, s Session) error {
	if s.Token == "" {
		return errors.New("save session: empty token")
	}

	raw, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, t.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AuthTokenKey, []byte(s.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.AuthUserKey, raw)
	})
}

// Delete removes the token and the cached profile.
func (t *TokenStore) Delete(ctx context.Context) error {
	return dbx.WithTx(ctx, t.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.AuthTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.AuthUserKey)
	})
}
