// Package httpapi exposes the credential and session services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const shutdownTimeout = 10 * time.Second

type CredentialService interface {
	Register(ctx context.Context, email, password, invitationToken string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPasswordTokenIsValid(token string) bool
	UpdatePasswordWithToken(ctx context.Context, token, newPassword string) error
	InviteUser(ctx context.Context, email string) error
}

type SessionService interface {
	LogIn(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, artifact string) (*models.User, error)
}

type HTTPServer struct {
	address  string
	creds    CredentialService
	sessions SessionService
	logger   logging.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	validate *validator.Validate
}

// NewHTTPServer wires the handlers. A nil registry disables /metrics.
func NewHTTPServer(addr string, l logging.Logger, creds CredentialService, sessions SessionService,
	m *metrics.Metrics, reg *prometheus.Registry) *HTTPServer {
	return &HTTPServer{
		address:  addr,
		creds:    creds,
		sessions: sessions,
		logger:   l.With("module", "http_server"),
		metrics:  m,
		registry: reg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the routed handler.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.health)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.registry))
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/password", s.forgotPassword)
		r.Patch("/password", s.updatePassword)
		r.Get("/resetPasswordToken/valid/{token}", s.resetTokenIsValid)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/me", s.me)
			r.Post("/invitation", s.invite)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, route, status, time.Since(start))
	})
}
