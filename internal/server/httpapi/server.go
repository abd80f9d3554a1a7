// Package httpapi exposes the registration, login and admin operations over
// HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// Registrar runs the two-step email registration.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (string, error)
	Verify(ctx context.Context, token, otp string) error
}

// Authenticator issues and verifies credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ParseAccessToken(token string) (*auth.Identity, error)
	ParseRefreshToken(token string) (*auth.Identity, error)
}

// UserAdmin is the admin-only user management surface.
type UserAdmin interface {
	List(ctx context.Context) ([]services.UserSummary, error)
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in services.UpdateUserInput) error
	Delete(ctx context.Context, id int64) error
}

type Options struct {
	Address       string
	AllowedOrigin string
	PhoneRegion   string
	AccessLog     io.Writer
}

type Server struct {
	opts         Options
	registration Registrar
	auth         Authenticator
	admin        UserAdmin
	logger       logging.Logger
}

func NewServer(opts Options, l logging.Logger, reg Registrar, a Authenticator, adm UserAdmin) *Server {
	if opts.AccessLog == nil {
		opts.AccessLog = io.Discard
	}
	return &Server{
		opts:         opts,
		registration: reg,
		auth:         a,
		admin:        adm,
		logger:       l.With("module", "http_server"),
	}
}

const shutdownTimeout = 5 * time.Second

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
