package main

import (
	"context"
	"errors"
	"os"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	applog "expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)
	appLogger := cli.ConfigureLogger(cfg, applog.ComponentWorker)
	appLogger.Info("Starting expense-worker", "formats", cfg.ExportFormats)

	// The worker only reads; it must not announce changes of its own.
	res := cli.InitBackend(context.Background(), appLogger.Logger, cfg, true)

	exporters, err := cli.BuildExporters(context.Background(), cfg)
	if err != nil {
		appLogger.Error("Failed to configure exporters", applog.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	exportWorker := worker.NewExportWorker(res.Service, exporters...)

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			appLogger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			_ = res.Cleanup()
			os.Exit(1)
		}
	} else {
		appLogger.Info("AMQP disabled - exporting on a timer only", "interval", cfg.ExportInterval)
	}

	ctx, done := cli.GracefulShutdown(appLogger.Logger, cfg.ShutdownTimeout, func() {
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				appLogger.Error("AMQP close error", applog.FieldError, err)
			}
		}
		if err := res.Cleanup(); err != nil {
			appLogger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	// Catch up on anything that changed while the worker was down.
	if err := exportWorker.StartupExport(ctx); err != nil {
		appLogger.Error("Startup export failed", applog.FieldError, err)
	}

	if consumer != nil {
		go func() {
			err := consumer.ConsumeExpenseEvents(ctx, exportWorker.HandleEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Error("Message consumption failed", applog.FieldError, err)
			}
		}()
	}

	go exportWorker.RunPeriodic(ctx, cfg.ExportInterval)

	cli.WaitForShutdown(ctx, done)
	appLogger.Info("expense-worker stopped")
}
