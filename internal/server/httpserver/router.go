package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
)

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	Service AuthService
	Logger  logging.Logger

	// Metrics may be nil, in which case /metrics is not served.
	Metrics *metrics.Registry

	// CORSAllowedOrigin is the single browser origin allowed to call the API.
	CORSAllowedOrigin string
}

// NewRouter builds the handler tree.
// Order: Recover -> RequestID -> AccessLog -> CORS -> routes.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := NewHandler(cfg.Service, cfg.Logger)
	protected := RequireAuth(cfg.Service)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleWelcome)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	base := common.APIBasePath
	mux.HandleFunc("POST "+base+"/login", h.handleLogin)
	mux.HandleFunc("POST "+base+"/register", h.handleRegister)
	mux.Handle("POST "+base+"/verify-email", protected(http.HandlerFunc(h.handleVerifyEmail)))
	mux.Handle("POST "+base+"/resend-otp", protected(http.HandlerFunc(h.handleResendOTP)))
	mux.Handle("GET "+base+"/verify-user", protected(http.HandlerFunc(h.handleVerifyUser)))

	return Chain(mux,
		Recover(cfg.Logger),
		RequestID(),
		AccessLog(cfg.Logger, cfg.Metrics),
		CORS(cfg.CORSAllowedOrigin),
	)
}
