// cmd/admin-console/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"homecare-admin/internal/api"
	"homecare-admin/internal/common/config"
	"homecare-admin/internal/common/database"
	"homecare-admin/internal/common/logger"
	"homecare-admin/internal/common/observability"
	"homecare-admin/internal/lists"
	"homecare-admin/internal/server"
	"homecare-admin/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting admin console...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Backend API client ---
	backend := api.New(cfg.Backend, log)

	// --- List services ---
	bus := lists.NewBus(rdb.GetClient(), log)
	cache := lists.NewCountCache(rdb, config.GetDuration(cfg.Views.CountCacheTTL))
	debounce := config.GetDuration(cfg.Views.SearchDebounce)

	appsSrc := &lists.ApplicationsSource{Client: backend}
	reqsSrc := &lists.RequestsSource{Client: backend}
	cancelsSrc := &lists.CancellationsSource{Client: backend}

	opts := []lists.Option{
		lists.WithDebounce(debounce),
		lists.WithPageSize(cfg.Views.PageSize),
		lists.WithObservability(obs),
	}

	apps := lists.NewService(ctx, appsSrc, bus, cache, log, opts...)
	requests := lists.NewService(ctx, reqsSrc, bus, cache, log, opts...)
	cancels := lists.NewService(ctx, cancelsSrc, bus, cache, log, opts...)

	for _, svc := range []*lists.Service{apps, requests, cancels} {
		svc.Start()
		defer svc.Close()
	}

	// --- Sessions ---
	sessions := session.NewStore(rdb, cfg.Session, log)

	// --- HTTP surface ---
	srv := server.New(*cfg, server.Deps{
		Applications:    apps,
		ServiceRequests: requests,
		Cancellations:   cancels,
		AppsSource:      appsSrc,
		RequestsSource:  reqsSrc,
		Backend:         backend,
		Sessions:        sessions,
	}, log)

	httpSrv := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("admin console listening", zap.String("address", cfg.Server.Address))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("admin console stopped")
}
