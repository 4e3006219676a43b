package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.NotNil(t, r.registry)
	assert.NotNil(t, r.RequestsTotal)
	assert.NotNil(t, r.RequestDuration)
	assert.NotNil(t, r.AuthEvents)
	assert.NotNil(t, r.EmailsSent)
	assert.NotNil(t, r.StorageUp)
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveRequest("POST /api/v1/auth/login", http.MethodPost, 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	s := string(body)
	assert.True(t, strings.Contains(s, "go_goroutines"))
	assert.True(t, strings.Contains(s, "gophauth_http_requests_total"))
}

func TestObserveRequest(t *testing.T) {
	r := NewRegistry()
	r.ObserveRequest("GET /", http.MethodGet, 200, time.Millisecond)
	r.ObserveRequest("GET /", http.MethodGet, 200, time.Millisecond)
	r.ObserveRequest("GET /", http.MethodGet, 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("GET /", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RequestsTotal.WithLabelValues("GET /", "GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RequestDuration))
}

func TestAuthEventAndEmails(t *testing.T) {
	r := NewRegistry()
	r.AuthEvent("login", nil)
	r.AuthEvent("login", errors.New("nope"))
	r.AuthEvent("login", errors.New("nope"))
	r.EmailSent(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.AuthEvents.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.AuthEvents.WithLabelValues("login", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EmailsSent.WithLabelValues(OutcomeSuccess)))
}

func TestStorageUp(t *testing.T) {
	r := NewRegistry()
	r.SetStorageUp(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StorageUp))
	r.SetStorageUp(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.StorageUp))
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveRequest("GET /", "GET", 200, time.Second)
		r.AuthEvent("login", nil)
		r.EmailSent(nil)
		r.SetStorageUp(true)
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
