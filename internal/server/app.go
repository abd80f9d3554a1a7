// Package server wires configuration, storage, mail and the HTTP API into a
// runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/filestore"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/otp"
	"github.com/dmitrijs2005/gophauth/internal/server/pending"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/tokencodec"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	files, err := newFileStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("file storage init error: %w", err)
	}

	reg := services.NewRegistrationService(
		db, rm,
		pending.NewMemoryStore(c.PendingRegistrationTTL),
		tokencodec.New(c.SecretKey),
		otp.NewGenerator(),
		newMailer(c, logger),
		files,
		c, logger,
	)
	authService := services.NewAuthService(db, rm, c, logger)
	adminService := services.NewAdminService(db, rm, logger)

	srv := httpapi.NewServer(httpapi.Options{
		Address:       c.EndpointAddrHTTP,
		AllowedOrigin: c.AllowedOrigin,
		PhoneRegion:   c.PhoneRegion,
		AccessLog:     os.Stdout,
	}, logger, reg, authService, adminService)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func newFileStore(ctx context.Context, c *config.Config) (filestore.Store, error) {
	if c.ProfilePicStorage == config.StorageS3 {
		return filestore.NewS3Store(ctx, c)
	}
	return filestore.NewLocalStore(c.UploadDir)
}

func newMailer(c *config.Config, logger logging.Logger) mailer.Sender {
	if c.SMTPHost == "" {
		return mailer.NewLogSender(logger)
	}
	return mailer.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.MailFrom)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until the context is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
