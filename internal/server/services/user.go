// Package services contains server-side business logic. This file implements
// UserService: registration, login, email verification by one-time code and
// bearer token checks.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// seams for tests
var (
	now            = time.Now
	generateOTP    = cryptox.GenerateOTP
	hashPassword   = cryptox.HashPassword
	verifyPassword = cryptox.VerifyPassword
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *models.User
}

// UserService implements the auth operations on top of a users.Repository.
type UserService struct {
	users   users.Repository
	mailer  mailer.Sender
	metrics *metrics.Registry
	logger  logging.Logger

	jwtSecret                   []byte
	tokenIssuer                 string
	accessTokenValidityDuration time.Duration
	otpValidityDuration         time.Duration
}

// NewUserService constructs a UserService. reg may be nil.
func NewUserService(repo users.Repository, m mailer.Sender, reg *metrics.Registry, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		users:                       repo,
		mailer:                      m,
		metrics:                     reg,
		logger:                      l.With("module", "user_service"),
		jwtSecret:                   []byte(cfg.SecretKey),
		tokenIssuer:                 cfg.TokenIssuer,
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		otpValidityDuration:         cfg.OTPValidityDuration,
	}
}

// Register creates an unverified user, emails a fresh code and returns a
// token so the client can proceed to verification.
func (s *UserService) Register(ctx context.Context, username, email, password string) (res *AuthResult, err error) {
	defer func() { s.metrics.AuthEvent("register", err) }()

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	hash, err := hashPassword([]byte(password))
	if err != nil {
		s.logger.Error(ctx, "hash password", "error", err)
		return nil, common.ErrorInternal
	}
	code, err := generateOTP(common.OTPLength)
	if err != nil {
		s.logger.Error(ctx, "generate otp", "error", err)
		return nil, common.ErrorInternal
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		OTPCode:      code,
		OTPExpiresAt: now().Add(s.otpValidityDuration),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "create user", "error", err)
		return nil, common.ErrorInternal
	}

	// a failed delivery leaves the account in place; the client can resend
	_ = s.deliver(ctx, user, code)

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (res *AuthResult, err error) {
	defer func() { s.metrics.AuthEvent("login", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "get user", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := verifyPassword(user.PasswordHash, []byte(password))
	if err != nil {
		s.logger.Error(ctx, "verify password", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// VerifyEmail consumes the user's outstanding code. A code can be used once.
func (s *UserService) VerifyEmail(ctx context.Context, userID, code string) (user *models.User, err error) {
	defer func() { s.metrics.AuthEvent("verify_email", err) }()

	if len(code) != common.OTPLength || !common.IsDigits(code) {
		return nil, common.ErrInvalidOTP
	}

	t := now()
	user, err = s.users.ConsumeOTP(ctx, userID, code, t)
	if err == nil {
		s.logger.Info(ctx, "email verified", "user_id", userID)
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "consume otp", "error", err)
		return nil, common.ErrorInternal
	}

	// nothing matched; find out why
	current, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil, common.ErrorUnauthorized
	case err != nil:
		s.logger.Error(ctx, "get user", "error", err)
		return nil, common.ErrorInternal
	case current.Verified:
		return nil, common.ErrAlreadyVerified
	case current.OTPCode == code && current.OTPExpired(t):
		return nil, common.ErrOTPExpired
	default:
		return nil, common.ErrInvalidOTP
	}
}

// ResendOTP replaces the outstanding code with a new one and emails it.
func (s *UserService) ResendOTP(ctx context.Context, userID string) (err error) {
	defer func() { s.metrics.AuthEvent("resend_otp", err) }()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "get user", "error", err)
		return common.ErrorInternal
	}
	if user.Verified {
		return common.ErrAlreadyVerified
	}

	code, err := generateOTP(common.OTPLength)
	if err != nil {
		s.logger.Error(ctx, "generate otp", "error", err)
		return common.ErrorInternal
	}
	if err := s.users.SetOTP(ctx, user.ID, code, now().Add(s.otpValidityDuration)); err != nil {
		s.logger.Error(ctx, "set otp", "error", err)
		return common.ErrorInternal
	}

	if err := s.deliver(ctx, user, code); err != nil {
		return fmt.Errorf("%w: email delivery failed", common.ErrorInternal)
	}
	return nil
}

// VerifyUser resolves a user id taken from a valid token into the user record.
func (s *UserService) VerifyUser(ctx context.Context, userID string) (user *models.User, err error) {
	defer func() { s.metrics.AuthEvent("verify_user", err) }()

	user, err = s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "get user", "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UserIDFromToken validates a bearer token and returns its subject.
func (s *UserService) UserIDFromToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret, s.tokenIssuer)
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenIssuer, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *UserService) deliver(ctx context.Context, user *models.User, code string) error {
	msg, err := mailer.RenderOTPEmail(user.Email, mailer.OTPEmailParams{
		Username:   user.Username,
		Code:       code,
		Expiration: s.otpValidityDuration,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	s.metrics.EmailSent(err)
	if err != nil {
		s.logger.Error(ctx, "send otp email", "user_id", user.ID, "error", err)
	}
	return err
}
