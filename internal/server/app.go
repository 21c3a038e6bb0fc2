// Package server wires the Resource API: it opens PostgreSQL, runs the
// migrations, builds the services and serves HTTP until the process is
// signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/team-dbx/dbx/internal/logging"
	"github.com/team-dbx/dbx/internal/server/auth"
	"github.com/team-dbx/dbx/internal/server/config"
	"github.com/team-dbx/dbx/internal/server/httpapi"
	"github.com/team-dbx/dbx/internal/server/raster"
	"github.com/team-dbx/dbx/internal/server/repositories/repomanager"
	"github.com/team-dbx/dbx/internal/server/services"
	"github.com/team-dbx/dbx/internal/server/storage"
)

// previewWidth is the pixel width of generated PNG previews.
const previewWidth = 512

type App struct {
	config *config.Config
	logger logging.Logger
	zap    *zap.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	zl, err := logging.NewProductionZap(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	verifier, err := newVerifier(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	store, err := storage.NewS3Store(ctx, storage.Settings{
		Region:          c.S3Region,
		Bucket:          c.S3Bucket,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		BaseEndpoint:    c.S3BaseEndpoint,
		PublicURL:       c.S3PublicURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	api := httpapi.New(
		services.NewUserService(db, rm, verifier),
		services.NewCategoryService(db, rm),
		services.NewResourceService(db, rm, store, raster.BimgRasterizer{Width: previewWidth}, logger),
		logger,
	)
	api.RateLimit = c.RateLimit

	srv := httpapi.NewServer(c.EndpointAddr, api.Handler(), c.ShutdownTimeout, logger)
	return &App{config: c, logger: logger, zap: zl, db: db, server: srv}, nil
}

// newVerifier checks Google ID tokens when a client id is configured and
// falls back to tokens signed with the shared secret otherwise.
func newVerifier(ctx context.Context, c *config.Config, log logging.Logger) (auth.Verifier, error) {
	if c.GoogleClientID == "" {
		log.Warn(ctx, "GOOGLE_CLIENT_ID is not set, accepting HMAC-signed tokens")
		return auth.NewHMACVerifier([]byte(c.SecretKey)), nil
	}
	v, err := auth.NewGoogleVerifier(ctx, c.GoogleJWKSURL, c.GoogleClientID, log)
	if err != nil {
		return nil, fmt.Errorf("jwks init error: %w", err)
	}
	return v, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(gctx)
	})

	err := g.Wait()
	app.logger.Info(ctx, "Stopped app")

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close error", "error", cerr)
	}
	_ = app.zap.Sync()
	return err
}
