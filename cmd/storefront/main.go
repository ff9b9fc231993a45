package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/cart"
	"github.com/rabiauynk/Organik-kose/internal/handlers"
	"github.com/rabiauynk/Organik-kose/internal/localstore"
	"github.com/rabiauynk/Organik-kose/internal/platform/config"
	"github.com/rabiauynk/Organik-kose/internal/platform/observability"
	"github.com/rabiauynk/Organik-kose/internal/session"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		os.Stderr.WriteString("logger init: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("storefront exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := localstore.New(afero.NewOsFs(), cfg.Store.Dir)
	if err != nil {
		return err
	}

	client, err := api.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(session.Deps{
		Auth:   client,
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	sessions.Initialize()

	carts, err := cart.New(cart.Deps{
		Service: client,
		Store:   store,
		Token:   sessions.Token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	initCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	if err := carts.Initialize(initCtx); err != nil {
		logger.Warn("cart initialize fell back to persisted state", zap.Error(err))
	}
	cancel()

	h, err := handlers.New(handlers.Deps{
		Cart:       carts,
		Sessions:   sessions,
		Catalog:    client,
		Orders:     client,
		Logger:     logger,
		AdminPanel: cfg.Features.EnableAdminPanel,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.Bool("admin_panel", cfg.Features.EnableAdminPanel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
