// Command storepress runs the storefront CMS server: the template
// publish workflow, the live-update event stream, and the storefront
// read API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storepress/internal/broadcast"
	"storepress/internal/cache"
	"storepress/internal/config"
	"storepress/internal/database"
	"storepress/internal/handlers"
	"storepress/internal/publish"
	"storepress/internal/router"
	"storepress/internal/session"
	"storepress/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	valkey, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkey.Close()

	themes := store.NewThemeStore(db)
	templates := store.NewTemplateStore(db)
	versions := store.NewVersionStore(db)
	users := store.NewUserStore(db)

	registry := broadcast.NewRegistry()
	pageCache := cache.NewPublishedCache(valkey, cache.DefaultPublishedTTL)
	sessions := session.NewStore(valkey, !cfg.IsDev())
	workflow := publish.NewWorkflow(templates, versions, themes, registry, pageCache)

	handler := router.New(router.Handlers{
		Public:    handlers.NewPublic(themes, templates, pageCache),
		Subscribe: handlers.NewSubscribe(registry),
		Auth:      handlers.NewAuth(users, sessions),
		Admin:     handlers.NewAdmin(themes, templates, versions, users, workflow),
		Health:    handlers.NewHealth(db, valkey, registry),
	}, sessions)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr(), "env", cfg.Env)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	registry.Shutdown()

	slog.Info("server stopped")
	return nil
}
