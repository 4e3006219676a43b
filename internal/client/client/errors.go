package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned for input rejected before any request is made.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized matches 401 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport covers network failures, timeouts and unreadable bodies.
	ErrTransport = errors.New("server unavailable")

	// ErrMalformedResponse is a body that parsed but lacks required fields.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrTransport)
)

// ServerError is a failure reported by the server in a {success:false} body.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error: %d %s", e.Status, e.Message)
}

func (e *ServerError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// UserMessage returns the text to show for err: the server's or validator's
// message when there is one, else fallback.
func UserMessage(err error, fallback string) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return fallback
}
