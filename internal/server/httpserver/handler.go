package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

const (
	msgWelcome       = "Welcome to the gophauth server!"
	msgLoggedIn      = "Login successful"
	msgRegistered    = "User registered successfully. Please verify your email."
	msgEmailVerified = "Email verified successfully"
	msgOTPSent       = "OTP sent successfully"

	msgBadBody         = "Invalid request body"
	msgMissingFields   = "Please fill in all fields."
	msgBadEmail        = "Please provide a valid email address."
	msgBadOTPFormat    = "Please enter a valid 4-digit OTP"
	msgBadCredentials  = "Invalid username or password"
	msgUnauthorized    = "Authentication failed"
	msgNoToken         = "Authorization token missing"
	msgBadToken        = "Invalid or expired token"
	msgUserExists      = "User already exists"
	msgAlreadyVerified = "Email already verified"
	msgInvalidOTP      = "Invalid OTP"
	msgOTPExpired      = "OTP has expired, please request a new one"
	msgInternal        = "Internal server error"
)

// AuthService is the business logic behind the handlers.
type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, username, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, username, password string) (*services.AuthResult, error)
	VerifyEmail(ctx context.Context, userID, code string) (*models.User, error)
	ResendOTP(ctx context.Context, userID string) error
	VerifyUser(ctx context.Context, userID string) (*models.User, error)
}

// Handler serves the auth API.
type Handler struct {
	svc      AuthService
	logger   logging.Logger
	validate *validator.Validate
}

func NewHandler(svc AuthService, l logging.Logger) *Handler {
	return &Handler{
		svc:      svc,
		logger:   l.With("module", "http_handler"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgWelcome})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: msgLoggedIn,
		Token:   res.Token,
		User:    newUserResponse(res.User),
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: msgRegistered,
		Token:   res.Token,
		User:    newUserResponse(res.User),
	})
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.svc.VerifyEmail(r.Context(), UserIDFromContext(r.Context()), req.OTP); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgEmailVerified})
}

func (h *Handler) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResendOTP(r.Context(), UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgOTPSent})
}

func (h *Handler) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.VerifyUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyUserResponse{Success: true, User: newUserResponse(user)})
}

// decode reads and validates a JSON body. On failure it writes a 400 and
// returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgMissingFields
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return msgMissingFields
		}
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "email":
		return msgBadEmail
	case fe.Field() == "OTP":
		return msgBadOTPFormat
	default:
		return fe.Field() + " is invalid"
	}
}

// handleServiceError maps service errors to HTTP status codes and messages.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, common.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, msgInvalidOTP)
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, msgBadToken)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, msgUserExists)
	case errors.Is(err, common.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, msgAlreadyVerified)
	case errors.Is(err, common.ErrOTPExpired):
		writeError(w, http.StatusGone, msgOTPExpired)
	default:
		h.logger.Error(r.Context(), "request failed",
			"request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Success: false, Message: message})
}
