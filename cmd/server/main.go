package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/passgate/passgate/assets"
	"github.com/passgate/passgate/internal"
	"github.com/passgate/passgate/internal/auth"
	authdb "github.com/passgate/passgate/internal/auth/db"
	"github.com/passgate/passgate/internal/db"
	"github.com/passgate/passgate/internal/db/migrate"
	"github.com/passgate/passgate/internal/web"
	"github.com/passgate/passgate/internal/web/sessions"
	"github.com/passgate/passgate/internal/web/view"
	"github.com/passgate/passgate/migrations"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Variables that are already set take precedence over the .env file.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	cfg, err := configFromEnv()
	if err != nil {
		// The logger can't be configured yet, so we use the defaults.
		slog.New(slog.NewTextHandler(w, nil)).Error("failed to get config from environment", "error", err)
		return 1
	}

	logger := newLogger(w, cfg.log)

	readDB, writeDB, err := openDBs(ctx, cfg.db)
	if err != nil {
		logger.Error("failed to open database", "file", cfg.db.file, "driver", cfg.db.driver, "error", err)
		return 1
	}

	defer func() {
		err := errors.Join(readDB.Close(), writeDB.Close())
		if err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.db.migrate {
		logger.Info("attempting to migrate database", "file", cfg.db.file)

		meta := migrate.Metadata{
			AppVersion: internal.BuildInfo.Revision,
			Timestamp:  time.Now().UTC(),
		}

		ran, err := migrate.RunFS(ctx, writeDB, migrations.FS, meta)
		if err != nil {
			logger.Error("failed to migrate database", "error", err)
			return 1
		}

		for _, m := range ran {
			logger.Info("migration ran", "sequence", m.Sequence, "filename", m.Filename)
		}
	}

	svc, err := auth.NewService(authdb.New(readDB, writeDB))
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	viewRenderer, err := newViewRenderer(logger, cfg.http.viewDir)
	if err != nil {
		logger.Error("failed to create view renderer", "error", err)
		return 1
	}

	server := web.NewServer(&web.ServerDeps{
		Logger:       logger,
		ViewRenderer: viewRenderer,
		Controller:   auth.NewController(svc, logger),
		SessionStore: sessions.NewCookieStore(cfg.http.cookieKeys, cfg.http.server.SecureCookie),
	}, cfg.http.server)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler:      server,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"build", internal.BuildInfo,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func newLogger(w io.Writer, cfg logConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.level,
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(web.LogHandler(h))
}

// openDBs opens separate pools for reading and writing and checks that
// both are reachable.
func openDBs(ctx context.Context, cfg dbConfig) (*sql.DB, *sql.DB, error) {
	readDB, err := db.OpenSQLite(cfg.driver, cfg.file, false)
	if err != nil {
		return nil, nil, err
	}

	writeDB, err := db.OpenSQLite(cfg.driver, cfg.file, true)
	if err != nil {
		return nil, nil, errors.Join(err, readDB.Close())
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = errors.Join(db.Ping(pingCtx, readDB), db.Ping(pingCtx, writeDB))
	if err != nil {
		return nil, nil, errors.Join(err, readDB.Close(), writeDB.Close())
	}

	return readDB, writeDB, nil
}

// newViewRenderer returns a renderer that can render every view the
// controller asks for.
func newViewRenderer(logger *slog.Logger, viewDir string) (web.ViewRenderer, error) {
	var r interface {
		web.ViewRenderer
		view.Checker
	}

	if viewDir != "" {
		logger.Info("loading templates from disk", "dir", viewDir)
		r = view.NewFSRenderer(os.DirFS(viewDir))
	} else {
		mem, err := view.NewMemRenderer(assets.TemplateFS)
		if err != nil {
			return nil, err
		}
		r = mem
	}

	err := view.Require(r, auth.ViewHome, auth.ViewLogin, auth.ViewRegister)
	if err != nil {
		return nil, err
	}

	return r, nil
}
