package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)
	appLogger := cli.ConfigureLogger(cfg, applog.ComponentApp)

	res := cli.InitBackend(context.Background(), appLogger.Logger, cfg, false)

	srv := apphttp.NewServer(":"+cfg.Port, res.Service,
		apphttp.WithLogger(appLogger),
		apphttp.WithReadiness(res.Ready),
	)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(appLogger.Logger, cfg.ShutdownTimeout, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			appLogger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	appLogger.Info("Starting expense tracker server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	appLogger.Info("Server stopped gracefully")
}
