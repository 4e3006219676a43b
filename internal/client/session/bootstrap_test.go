package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersistence struct {
	session Session
	loadErr error

	saved   []Session
	deleted int
}

func (f *fakePersistence) Load(context.Context) (Session, error) {
	return f.session, f.loadErr
}

func (f *fakePersistence) Save(_ context.Context, s Session) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakePersistence) Delete(context.Context) error {
	f.deleted++
	return nil
}

type fakeVerifier struct {
	user  *models.User
	err   error
	calls []string
}

func (f *fakeVerifier) VerifyUser(_ context.Context, token string) (*models.User, error) {
	f.calls = append(f.calls, token)
	return f.user, f.err
}

func TestBootstrapper_NoToken(t *testing.T) {
	tokens := &fakePersistence{}
	verifier := &fakeVerifier{}
	st := NewStore()

	err := NewBootstrapper(tokens, verifier, st, logging.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, verifier.calls)
	assert.True(t, st.Current().IsZero())
	assert.NoError(t, st.Err())
}

func TestBootstrapper_VerifySuccess(t *testing.T) {
	alice := models.User{ID: "u1", Username: "alice", Email: "a@example.com", Verified: true}
	tokens := &fakePersistence{session: Session{Token: "tok", User: models.User{Username: "stale"}}}
	verifier := &fakeVerifier{user: &alice}
	st := NewStore()

	err := NewBootstrapper(tokens, verifier, st, logging.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"tok"}, verifier.calls)
	assert.Equal(t, Session{Token: "tok", User: alice}, st.Current())
	assert.Equal(t, []Session{{Token: "tok", User: alice}}, tokens.saved)
	assert.Zero(t, tokens.deleted)
}

func TestBootstrapper_ServerRejects(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unauthorized", &client.ServerError{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}},
		{"success false", &client.ServerError{Status: http.StatusOK}},
		{"malformed", client.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakePersistence{session: Session{Token: "tok"}}
			verifier := &fakeVerifier{err: tt.err}
			st := NewStore()
			st.Replace(Session{Token: "old", User: models.User{Username: "x"}})

			err := NewBootstrapper(tokens, verifier, st, logging.Nop{}).Run(context.Background())
			require.ErrorIs(t, err, ErrAuthenticationFailed)
			assert.ErrorIs(t, err, tt.err)

			assert.Len(t, verifier.calls, 1)
			assert.True(t, st.Current().IsZero())
			assert.ErrorIs(t, st.Err(), ErrAuthenticationFailed)
			assert.Equal(t, 1, tokens.deleted)
		})
	}
}

func TestBootstrapper_KeepsTokenWhenServerUnreachable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport", fmt.Errorf("%w: dial tcp: refused", client.ErrTransport)},
		{"internal error", &client.ServerError{Status: http.StatusInternalServerError, Message: "Internal server error"}},
		{"bad gateway", &client.ServerError{Status: http.StatusBadGateway}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakePersistence{session: Session{Token: "tok"}}
			verifier := &fakeVerifier{err: tt.err}
			st := NewStore()

			err := NewBootstrapper(tokens, verifier, st, logging.Nop{}).Run(context.Background())
			require.ErrorIs(t, err, ErrVerificationFailed)
			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, ErrAuthenticationFailed)

			assert.Len(t, verifier.calls, 1)
			assert.True(t, st.Current().IsZero())
			assert.ErrorIs(t, st.Err(), ErrVerificationFailed)
			assert.Zero(t, tokens.deleted)
		})
	}
}

func TestBootstrapper_LoadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	tokens := &fakePersistence{loadErr: boom}
	verifier := &fakeVerifier{}
	st := NewStore()

	err := NewBootstrapper(tokens, verifier, st, logging.Nop{}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, verifier.calls)
	assert.True(t, st.Current().IsZero())
}
