package otp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/route"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

const (
	MsgIncomplete      = "Error: Please enter a valid 4-digit OTP"
	MsgVerified        = "OTP verified successfully! Please login!"
	MsgInvalid         = "Error: Invalid OTP. Please try again."
	MsgResent          = "OTP resend successful!"
	MsgResendFailed    = "Error: Please try again."
	MsgUnexpected      = "An error occurred. Please try again."
	LabelVerify        = "Verify OTP"
	LabelVerifying     = "Verifying..."
	LabelResend        = "Resend OTP"
	LabelResendWaiting = "Wait..."
)

var (
	ErrIncomplete = fmt.Errorf("%w: incomplete otp", client.ErrValidation)
	ErrBusy       = errors.New("request already in progress")
)

// API is the part of the auth client the flow calls.
type API interface {
	VerifyEmail(ctx context.Context, token, otp string) (string, error)
	ResendOTP(ctx context.Context, token string) (string, error)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Flow drives the OTP screen. Verify and resend each allow one request in
// flight and do not block each other.
type Flow struct {
	buf      Buffer
	api      API
	store    *session.Store
	notify   Notifier
	navigate func(route.Screen)
	logger   logging.Logger

	verifying atomic.Bool
	resending atomic.Bool
}

func NewFlow(api API, store *session.Store, n Notifier, navigate func(route.Screen), l logging.Logger) *Flow {
	return &Flow{api: api, store: store, notify: n, navigate: navigate, logger: l}
}

// Buffer exposes the digits for rendering.
func (f *Flow) Buffer() *Buffer {
	return &f.buf
}

// Input feeds one keystroke or paste into the buffer and submits when it
// becomes full.
func (f *Flow) Input(ctx context.Context, i int, value string) error {
	completed, err := f.buf.Input(i, value)
	if err != nil {
		return err
	}
	if completed {
		return f.Submit(ctx)
	}
	return nil
}

// Reset empties the buffer so the next complete code submits again.
func (f *Flow) Reset() {
	f.buf.Reset()
}

func (f *Flow) Backspace(i int) error {
	return f.buf.Backspace(i)
}

// Submit verifies the buffered code with the session's token. An
// incomplete buffer is rejected without a request. On success the buffer is
// reset and the user is sent to login; on failure the digits are kept.
func (f *Flow) Submit(ctx context.Context) error {
	if !f.verifying.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.verifying.Store(false)

	if !f.buf.Full() {
		f.notify.Error(MsgIncomplete)
		return ErrIncomplete
	}

	token := f.store.Current().Token
	if _, err := f.api.VerifyEmail(ctx, token, f.buf.Code()); err != nil {
		f.logger.Warn(ctx, "otp verification failed", "error", err)
		f.notify.Error(failureMessage(err, MsgInvalid))
		return err
	}

	f.buf.Reset()
	f.notify.Success(MsgVerified)
	f.navigate(route.Login)
	return nil
}

// Resend asks the server for a fresh code.
func (f *Flow) Resend(ctx context.Context) error {
	if !f.resending.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.resending.Store(false)

	token := f.store.Current().Token
	if _, err := f.api.ResendOTP(ctx, token); err != nil {
		f.logger.Warn(ctx, "otp resend failed", "error", err)
		f.notify.Error(failureMessage(err, MsgResendFailed))
		return err
	}

	f.notify.Success(MsgResent)
	return nil
}

func (f *Flow) Verifying() bool { return f.verifying.Load() }
func (f *Flow) Resending() bool { return f.resending.Load() }

// VerifyLabel and ResendLabel are the button captions for the current state.
func (f *Flow) VerifyLabel() string {
	if f.Verifying() {
		return LabelVerifying
	}
	return LabelVerify
}

func (f *Flow) ResendLabel() string {
	if f.Resending() {
		return LabelResendWaiting
	}
	return LabelResend
}

// failureMessage prefers the server's text. A server failure without text
// gets serverDefault; anything else gets the generic message.
func failureMessage(err error, serverDefault string) string {
	var se *client.ServerError
	if errors.As(err, &se) && se.Message == "" {
		return serverDefault
	}
	return "Error: " + client.UserMessage(err, MsgUnexpected)
}
