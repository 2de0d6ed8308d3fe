package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"projecthub/config"
	"projecthub/handlers"
	"projecthub/notify"
	"projecthub/services"
	"projecthub/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// serve wires services onto the router and runs the HTTP server until SIGINT or
// SIGTERM, then drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Upload, cfg.Server.PublicURL)
	if err != nil {
		return fmt.Errorf("init upload storage: %w", err)
	}
	var filesDir string
	if local, ok := store.(*storage.LocalStore); ok {
		filesDir = local.Dir()
	}

	notifier := notify.NewEmailNotifier(cfg.SMTP, cfg.Server.PublicURL, log)
	if !notifier.Enabled() {
		log.Info("smtp not configured, invite emails disabled")
	}

	creds := services.NewCredentials(db, cfg.Auth, log)
	access := services.NewAccess(db)
	router := handlers.NewRouter(handlers.Deps{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Credentials: creds,
		Users:       services.NewUsers(db, creds, log),
		Access:      access,
		Projects:    services.NewProjects(db, access, notifier, log),
		Tasks:       services.NewTasks(db, access, log),
		Proposals:   services.NewProposals(db, access, log),
		Store:       store,
		FilesDir:    filesDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("upload_backend", cfg.Upload.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
