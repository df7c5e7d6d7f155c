package http

import (
	"net/http"
	"time"

	"authgate/internal/adapters/http/middleware"
	"authgate/internal/adapters/http/response"
	"authgate/internal/config"
	"authgate/internal/domain"
	"authgate/internal/logger"
)

type RouterDeps struct {
	Auth    *AuthHandler
	Svc     domain.AuthService
	Limiter domain.RateLimiter
	Log     logger.Logger
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New()
	globalMw.Use(middleware.CORS(cfg))
	globalMw.Use(middleware.Timeout(cfg.RequestTimeout))

	bearerStack := middleware.New()
	bearerStack.Use(middleware.Bearer(deps.Svc))

	registerLimit := middleware.RateLimit(deps.Limiter, deps.Log, "register", 3, 10*time.Minute)
	loginLimit := middleware.RateLimit(deps.Limiter, deps.Log, "login", 5, 5*time.Minute)
	forgotLimit := middleware.RateLimit(deps.Limiter, deps.Log, "forgot-password", 3, 10*time.Minute)
	resetLimit := middleware.RateLimit(deps.Limiter, deps.Log, "reset-password", 5, 5*time.Minute)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.Handle("POST /api/v1/auth/register/", registerLimit(http.HandlerFunc(deps.Auth.Register)))
	mux.Handle("POST /api/v1/auth/login/", loginLimit(http.HandlerFunc(deps.Auth.Login)))
	mux.Handle("POST /api/v1/auth/logout/", bearerStack.Then(http.HandlerFunc(deps.Auth.Logout)))
	mux.HandleFunc("POST /api/v1/auth/refresh/", deps.Auth.Refresh)
	mux.Handle("GET /api/v1/auth/profile/", bearerStack.Then(http.HandlerFunc(deps.Auth.Profile)))
	mux.Handle("POST /api/v1/auth/forgot-password/", forgotLimit(http.HandlerFunc(deps.Auth.ForgotPassword)))
	mux.Handle("POST /api/v1/auth/reset-password/", resetLimit(http.HandlerFunc(deps.Auth.ResetPassword)))
	mux.HandleFunc("GET /api/v1/auth/health/", deps.Auth.Health)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w)
	})

	return globalMw.Apply(mux)
}

func NewServer(handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
