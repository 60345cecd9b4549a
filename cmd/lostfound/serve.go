package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/media"
	"github.com/erazemk/lostfound/internal/service"
	"github.com/erazemk/lostfound/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server. Settings come from the environment and an optional .env
file: PORT, DB_PATH, STATIC_DIR, MEDIA_DIR, PUBLIC_URL, CLOUDINARY_CLOUD_NAME,
CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET, MAX_UPLOAD_BYTES, MAX_IMAGE_DIMENSION,
CORS_ORIGINS, PERSIST_FOUND_REPORTS and LOG_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		logger.Error("failed to ensure database schema", "error", err)
		return err
	}
	logger.Info("database ready", "path", cfg.DBPath)

	uploader, mediaHandler, err := newUploader(cfg, logger)
	if err != nil {
		logger.Error("failed to set up media storage", "error", err)
		return err
	}

	svc := service.New(database, uploader, logger, service.Options{
		MaxImageDimension:   cfg.MaxImageDimension,
		PersistFoundReports: cfg.PersistFoundReports,
	})

	pages, err := web.NewServer(svc, logger, cfg.MaxUploadBytes)
	if err != nil {
		logger.Error("failed to set up web pages", "error", err)
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(svc, api.Options{
			Logger:         logger,
			MaxUploadBytes: cfg.MaxUploadBytes,
			CORSOrigins:    cfg.CORSOrigins,
			StaticDir:      cfg.StaticDir,
			Media:          mediaHandler,
			Pages:          pages.Routes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("server stopped, closing database")
	return nil
}

// newUploader picks Cloudinary when credentials are configured and the media
// directory otherwise. The handler is nil for Cloudinary.
func newUploader(cfg *config.Config, logger *slog.Logger) (media.Uploader, http.Handler, error) {
	if cfg.Cloudinary.Enabled() {
		c, err := media.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("storing photos on Cloudinary", "cloud", cfg.Cloudinary.CloudName)
		return c, nil, nil
	}

	local, err := media.NewLocal(cfg.MediaDir, cfg.PublicURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("storing photos locally", "dir", cfg.MediaDir)
	return local, local.Handler(), nil
}
