// Package server assembles the HTTP router and owns the server lifecycle.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/jobboardhq/job-board-api/internal/auth"
	"github.com/jobboardhq/job-board-api/internal/config"
	"github.com/jobboardhq/job-board-api/internal/handler"
	"github.com/jobboardhq/job-board-api/internal/middleware"
	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/ratelimit"
)

// Per-IP fixed-window limits on the unauthenticated auth endpoints.
const (
	rateWindow          = time.Minute
	rateLimitSignup     = 5
	rateLimitLogin      = 12
	rateLimitForgot     = 5
	healthCheckTimeout  = 2 * time.Second
	healthCheckresponse = `{"status":"ok"}`
)

// Handlers groups the endpoint handlers the router wires up.
type Handlers struct {
	Auth          *handler.AuthHandler
	PasswordReset *handler.PasswordResetHandler
	Job           *handler.JobHandler
}

// Server is the HTTP server for the job board API.
type Server struct {
	httpServer *http.Server
	logger     *zerolog.Logger
	cfg        config.HTTP
}

// New assembles the router and returns a Server ready to run.
func New(
	cfg *config.Config,
	logger *zerolog.Logger,
	jwtAuth auth.JWTAuthenticator,
	handlers Handlers,
	limiter ratelimit.Limiter,
	dbHealth func(context.Context) error,
) *Server {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(*logger))
	r.Use(hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(req).Info().
			Str("method", req.Method).
			Stringer("url", req.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request handled")
	}))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()

		if err := dbHealth(ctx); err != nil {
			hlog.FromRequest(req).Error().Err(err).Msg("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(healthCheckresponse))
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimitPerIP(limiter, "signup", rateLimitSignup, rateWindow)).
			Post("/signup", handlers.Auth.Signup)
		r.With(middleware.RateLimitPerIP(limiter, "login", rateLimitLogin, rateWindow)).
			Post("/login", handlers.Auth.Login)
		r.Post("/refresh", handlers.Auth.Refresh)
		r.Post("/logout", handlers.Auth.Logout)
		r.With(middleware.RateLimitPerIP(limiter, "forgot", rateLimitForgot, rateWindow)).
			Post("/forgot-password", handlers.PasswordReset.ForgotPassword)
		r.Post("/reset-password", handlers.PasswordReset.ResetPassword)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/all", handlers.Job.ListJobs)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtAuth, cfg.Token.AccessTokenSecret))
			r.Use(middleware.RequireRole(model.RoleCompany))
			r.Post("/", handlers.Job.CreateJob)
			r.Get("/company", handlers.Job.ListCompanyJobs)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      r,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		logger: logger,
		cfg:    cfg.HTTP,
	}
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down http server")

	return s.httpServer.Shutdown(shutdownCtx)
}
