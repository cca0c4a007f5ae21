package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fraud-dashboard/internal/config"
	"fraud-dashboard/internal/cron"
	"fraud-dashboard/internal/export"
	"fraud-dashboard/internal/handlers"
	"fraud-dashboard/internal/middleware"
	"fraud-dashboard/internal/prefs"
	"fraud-dashboard/internal/querycache"
	"fraud-dashboard/internal/resilience"
	"fraud-dashboard/internal/riskapi"
	"fraud-dashboard/internal/storage"
	"fraud-dashboard/internal/upload"
	"fraud-dashboard/internal/views"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, cleanup, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		// Background jobs
		if deps.Alerts != nil {
			deps.Alerts.Start(ctx)
		}
		limiter := middleware.NewLimiter(rate.Every(12*time.Second), 5)
		go limiter.RunSweeper(ctx)

		router := handlers.NewRouter(deps, handlers.RouterConfig{
			JWTSecret:      cfg.Auth.JWTSecret,
			TokenTTL:       cfg.Auth.TokenTTL(),
			SecureCookie:   cfg.Server.CookieSecure,
			Users:          cfg.Auth.Users,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			LoginLimiter:   limiter,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server forced to shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.String("backend", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		zap.L().Info("server exited properly")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildDeps creates the collaborators shared by the handlers. cleanup
// releases the preference store.
func buildDeps(ctx context.Context, c *config.Config) (handlers.Deps, func(), error) {
	cleanup := func() {}

	api := riskapi.New(c.API.BaseURL,
		riskapi.WithToken(c.API.Token),
		riskapi.WithTimeout(c.API.Timeout()),
	)

	retry := resilience.DefaultPolicy()
	retry.Retries = c.API.Retries
	cache := querycache.New(
		querycache.WithStaleTime(c.Cache.StaleTime()),
		querycache.WithRetry(retry),
	)

	renderer, err := views.New()
	if err != nil {
		return handlers.Deps{}, cleanup, eris.Wrap(err, "load templates")
	}

	repo, closeRepo, err := openPrefs(ctx, c.Prefs)
	if err != nil {
		return handlers.Deps{}, cleanup, err
	}
	cleanup = closeRepo

	files, filesDir, err := openStorage(ctx, c.Storage)
	if err != nil {
		cleanup()
		return handlers.Deps{}, func() {}, err
	}

	deps := handlers.Deps{
		API:      api,
		Cache:    cache,
		Views:    renderer,
		Prefs:    repo,
		Alerts:   cron.NewAlertWatcher(api, cron.WithInterval(c.Alerts.PollInterval())),
		Staging:  handlers.NewStaging(files),
		Uploads:  upload.NewSessions(handlers.AfterUpload(cache)),
		Archiver: export.NewArchiver(files),
		Files:    files,
		FilesDir: filesDir,
	}
	return deps, cleanup, nil
}

func openPrefs(ctx context.Context, c config.PrefsConfig) (prefs.Repository, func(), error) {
	switch c.Driver {
	case "postgres":
		r, err := prefs.NewPostgresRepository(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case "sqlite":
		r, err := prefs.NewSQLiteRepository(ctx, c.Path)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return prefs.NewFileRepository(c.Path), func() {}, nil
	}
}

// openStorage returns the file store and, for local stores, its directory.
func openStorage(ctx context.Context, c config.StorageConfig) (storage.Store, string, error) {
	if c.Driver == "r2" {
		s, err := storage.NewR2Store(ctx, c.R2)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}
	s, err := storage.NewLocalStore(c.Dir, c.BaseURL)
	if err != nil {
		return nil, "", eris.Wrap(err, "init local storage")
	}
	return s, c.Dir, nil
}
