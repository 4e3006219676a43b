// Package metrics exposes Prometheus metrics for the auth server.
//
// All Registry methods are safe to call on a nil *Registry, so components can
// be built without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophauth"

// Auth outcomes recorded by AuthEvent.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Registry holds the server's collectors and its own prometheus.Registry.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	AuthEvents *prometheus.CounterVec
	EmailsSent *prometheus.CounterVec

	StorageUp prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Auth operations by kind and outcome.",
		}, []string{"event", "outcome"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mailer",
			Name:      "emails_total",
			Help:      "OTP emails by delivery outcome.",
		}, []string{"outcome"}),
		StorageUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "up",
			Help:      "1 if the last storage probe succeeded.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.AuthEvents,
		r.EmailsSent,
		r.StorageUp,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) ObserveRequest(route, method string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// AuthEvent counts one login, register, verify_email, resend_otp or
// verify_user attempt.
func (r *Registry) AuthEvent(event string, err error) {
	if r == nil {
		return
	}
	r.AuthEvents.WithLabelValues(event, outcome(err)).Inc()
}

func (r *Registry) EmailSent(err error) {
	if r == nil {
		return
	}
	r.EmailsSent.WithLabelValues(outcome(err)).Inc()
}

func (r *Registry) SetStorageUp(up bool) {
	if r == nil {
		return
	}
	if up {
		r.StorageUp.Set(1)
	} else {
		r.StorageUp.Set(0)
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
