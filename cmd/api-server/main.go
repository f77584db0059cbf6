package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardhub/internal/app"
	"cardhub/internal/config"
	"cardhub/internal/prefetch"
	"cardhub/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := logging.MustNew(cfg.Logging.Logging())
	defer func() { _ = logger.Sync() }()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	var scheduler *prefetch.Scheduler
	if cfg.Prefetch.Enabled {
		scheduler, err = prefetch.NewScheduler(ctx, cfg.Prefetch.Schedule, a.Prefetcher)
		if err != nil {
			logger.Fatal("prefetch schedule", zap.Error(err))
		}
		scheduler.Start()
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("db", cfg.Database.Path))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	logger.Info("server stopped")
}
