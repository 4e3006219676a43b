package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

const maxResponseBytes = 1 << 20

// HTTPClient talks JSON to the auth server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient validates serverURL (scheme and host required; a missing
// scheme means http) and returns a client with the given request timeout.
func NewHTTPClient(serverURL string, timeout time.Duration) (*HTTPClient, error) {
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		serverURL = "http://" + serverURL
	}
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", serverURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// envelope is the union of all response shapes. Pointers distinguish absent
// fields from zero values.
type envelope struct {
	Success *bool        `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	env, err := c.do(ctx, http.MethodPost, "/register", "", body)
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	env, err := c.do(ctx, http.MethodPost, "/login", "", body)
	if err != nil {
		return nil, err
	}
	return authResult(env)
}

// VerifyEmail submits otp and returns the server's message.
func (c *HTTPClient) VerifyEmail(ctx context.Context, token, otp string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/verify-email", token, map[string]string{"otp": otp})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ResendOTP asks for a new code and returns the server's message.
func (c *HTTPClient) ResendOTP(ctx context.Context, token string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/resend-otp", token, struct{}{})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) VerifyUser(ctx context.Context, token string) (*models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/verify-user", token, nil)
	if err != nil {
		return nil, err
	}
	if !validUser(env.User) {
		return nil, ErrMalformedResponse
	}
	return env.User, nil
}

// Ping checks that the server answers its welcome document.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodGet, c.baseURL+"/", "", nil)
	return err
}

func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (*envelope, error) {
	return c.send(ctx, method, c.baseURL+common.APIBasePath+path, token, body)
}

func (c *HTTPClient) send(ctx context.Context, method, target, token string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &ServerError{Status: resp.StatusCode}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.StatusCode >= 400 || (env.Success != nil && !*env.Success) {
		return nil, &ServerError{Status: resp.StatusCode, Message: env.Message}
	}
	if env.Success == nil {
		return nil, ErrMalformedResponse
	}
	return &env, nil
}

func authResult(env *envelope) (*AuthResult, error) {
	if env.Token == "" || !validUser(env.User) {
		return nil, ErrMalformedResponse
	}
	return &AuthResult{Message: env.Message, Token: env.Token, User: *env.User}, nil
}

func validUser(u *models.User) bool {
	return u != nil && u.ID != "" && u.Username != ""
}

// IsRejection reports whether the server answered and refused the request:
// a 4xx, a 2xx with success false, or a body without the required fields.
// 5xx responses and network failures are not rejections.
func IsRejection(err error) bool {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status < http.StatusInternalServerError
	}
	return errors.Is(err, ErrMalformedResponse)
}
