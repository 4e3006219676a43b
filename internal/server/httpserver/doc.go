// Package httpserver is the REST surface of the auth server.
//
// Routes (all JSON):
//
//	GET  /                            welcome document, used as a liveness probe
//	GET  /metrics                     Prometheus exposition
//	POST /api/v1/auth/login
//	POST /api/v1/auth/register
//	POST /api/v1/auth/verify-email    bearer
//	POST /api/v1/auth/resend-otp      bearer
//	GET  /api/v1/auth/verify-user     bearer
//
// Every response body carries a boolean "success" and, on failure, a
// human-readable "message".
package httpserver
