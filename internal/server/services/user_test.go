package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int
	err    error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, x := range m.byID {
		if x.Username == u.Username || x.Email == u.Email {
			return nil, fmt.Errorf("%w: users_username_key", common.ErrorAlreadyExists)
		}
	}
	m.nextID++
	c := *u
	c.ID = fmt.Sprintf("u%d", m.nextID)
	m.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) SetOTP(_ context.Context, id, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.OTPCode, u.OTPExpiresAt = code, expiresAt
	return nil
}

func (m *memUsers) ConsumeOTP(_ context.Context, id, code string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok || u.Verified || u.OTPCode != code || !now.Before(u.OTPExpiresAt) {
		return nil, common.ErrorNotFound
	}
	u.Verified, u.OTPCode, u.OTPExpiresAt = true, "", time.Time{}
	out := *u
	return &out, nil
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func stubSeams(t *testing.T, codes ...string) {
	t.Helper()
	origNow, origOTP, origHash := now, generateOTP, hashPassword
	t.Cleanup(func() { now, generateOTP, hashPassword = origNow, origOTP, origHash })

	now = func() time.Time { return testNow }
	i := 0
	generateOTP = func(int) (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func newTestService(t *testing.T, repo *memUsers, m mailer.Sender) (*UserService, *metrics.Registry) {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		TokenIssuer:                 "test",
		AccessTokenValidityDuration: time.Hour,
		OTPValidityDuration:         10 * time.Minute,
	}
	reg := metrics.NewRegistry()
	return NewUserService(repo, m, reg, logging.Nop{}, cfg), reg
}

// --- Register ---

func TestRegister_CreatesUnverifiedUserAndSendsCode(t *testing.T) {
	stubSeams(t, "0427")
	repo, sender := newMemUsers(), &fakeSender{}
	s, reg := newTestService(t, repo, sender)

	res, err := s.Register(context.Background(), " alice ", "alice@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "alice", res.User.Username)
	assert.False(t, res.User.Verified)
	assert.Equal(t, "0427", res.User.OTPCode)
	assert.Equal(t, testNow.Add(10*time.Minute), res.User.OTPExpiresAt)
	assert.NotEqual(t, "pw", res.User.PasswordHash)

	id, err := auth.GetUserIDFromToken(res.Token, []byte("k"), "test")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "alice@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "0427")

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.AuthEvents.WithLabelValues("register", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.EmailsSent.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService(t, newMemUsers(), &fakeSender{})
	for _, in := range [][3]string{
		{"", "a@example.com", "pw"},
		{"a", "", "pw"},
		{"a", "a@example.com", ""},
		{"  ", "a@example.com", "pw"},
	} {
		_, err := s.Register(context.Background(), in[0], in[1], in[2])
		assert.ErrorIs(t, err, common.ErrorValidation, "%v", in)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	stubSeams(t, "1111")
	repo := newMemUsers()
	s, _ := newTestService(t, repo, &fakeSender{})

	_, err := s.Register(context.Background(), "bob", "bob@example.com", "pw")
	require.NoError(t, err)

	_, err = s.Register(context.Background(), "bob", "other@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_MailFailureStillRegisters(t *testing.T) {
	stubSeams(t, "1111")
	s, reg := newTestService(t, newMemUsers(), &fakeSender{err: errors.New("smtp down")})

	res, err := s.Register(context.Background(), "bob", "bob@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.EmailsSent.WithLabelValues(metrics.OutcomeFailure)))
}

func TestRegister_RepoError(t *testing.T) {
	stubSeams(t, "1111")
	repo := newMemUsers()
	repo.err = errors.New("db error: boom")
	s, _ := newTestService(t, repo, &fakeSender{})

	_, err := s.Register(context.Background(), "bob", "bob@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

// --- Login ---

func TestLogin(t *testing.T) {
	stubSeams(t, "1111")
	s, _ := newTestService(t, newMemUsers(), &fakeSender{})
	reg, err := s.Register(context.Background(), "carol", "carol@example.com", "secret")
	require.NoError(t, err)

	res, err := s.Login(context.Background(), "carol", "secret")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = s.Login(context.Background(), "carol", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(context.Background(), "nobody", "secret")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(context.Background(), "carol", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_MalformedHash(t *testing.T) {
	repo := newMemUsers()
	_, err := repo.Create(context.Background(), &models.User{Username: "dave", Email: "d@example.com", PasswordHash: "garbage"})
	require.NoError(t, err)
	s, _ := newTestService(t, repo, &fakeSender{})

	_, err = s.Login(context.Background(), "dave", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

// --- VerifyEmail ---

func TestVerifyEmail(t *testing.T) {
	stubSeams(t, "0427")
	s, _ := newTestService(t, newMemUsers(), &fakeSender{})
	res, err := s.Register(context.Background(), "erin", "erin@example.com", "pw")
	require.NoError(t, err)
	id := res.User.ID

	_, err = s.VerifyEmail(context.Background(), id, "12a4")
	assert.ErrorIs(t, err, common.ErrInvalidOTP)

	_, err = s.VerifyEmail(context.Background(), id, "9999")
	assert.ErrorIs(t, err, common.ErrInvalidOTP)

	u, err := s.VerifyEmail(context.Background(), id, "0427")
	require.NoError(t, err)
	assert.True(t, u.Verified)

	// single use
	_, err = s.VerifyEmail(context.Background(), id, "0427")
	assert.ErrorIs(t, err, common.ErrAlreadyVerified)

	_, err = s.VerifyEmail(context.Background(), "missing", "0427")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyEmail_Expired(t *testing.T) {
	stubSeams(t, "0427")
	s, _ := newTestService(t, newMemUsers(), &fakeSender{})
	res, err := s.Register(context.Background(), "frank", "frank@example.com", "pw")
	require.NoError(t, err)

	now = func() time.Time { return testNow.Add(11 * time.Minute) }
	_, err = s.VerifyEmail(context.Background(), res.User.ID, "0427")
	assert.ErrorIs(t, err, common.ErrOTPExpired)
}

// --- ResendOTP ---

func TestResendOTP_ReplacesCode(t *testing.T) {
	stubSeams(t, "1111", "2222")
	sender := &fakeSender{}
	s, _ := newTestService(t, newMemUsers(), sender)
	res, err := s.Register(context.Background(), "gina", "gina@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.ResendOTP(context.Background(), res.User.ID))
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1].Body, "2222")

	_, err = s.VerifyEmail(context.Background(), res.User.ID, "1111")
	assert.ErrorIs(t, err, common.ErrInvalidOTP)

	_, err = s.VerifyEmail(context.Background(), res.User.ID, "2222")
	require.NoError(t, err)

	assert.ErrorIs(t, s.ResendOTP(context.Background(), res.User.ID), common.ErrAlreadyVerified)
	assert.ErrorIs(t, s.ResendOTP(context.Background(), "missing"), common.ErrorUnauthorized)
}

func TestResendOTP_MailFailure(t *testing.T) {
	stubSeams(t, "1111")
	sender := &fakeSender{}
	s, _ := newTestService(t, newMemUsers(), sender)
	res, err := s.Register(context.Background(), "hank", "hank@example.com", "pw")
	require.NoError(t, err)

	sender.err = errors.New("smtp down")
	assert.ErrorIs(t, s.ResendOTP(context.Background(), res.User.ID), common.ErrorInternal)
}

// --- VerifyUser / tokens ---

func TestVerifyUser(t *testing.T) {
	stubSeams(t, "1111")
	s, _ := newTestService(t, newMemUsers(), &fakeSender{})
	res, err := s.Register(context.Background(), "ivy", "ivy@example.com", "pw")
	require.NoError(t, err)

	id, err := s.UserIDFromToken(res.Token)
	require.NoError(t, err)

	u, err := s.VerifyUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ivy", u.Username)

	_, err = s.VerifyUser(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.UserIDFromToken("not-a-token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
