package main

import (
	"context"
	"os"

	"expensetracker/internal/cli"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	a := &app{
		out: os.Stdout,
		open: func(ctx context.Context) (*services.ExpenseService, func() error, error) {
			cfg := cli.LoadAndValidateConfig(logger)
			appLogger := cli.ConfigureLogger(cfg, applog.ComponentCLI)
			res := cli.InitBackend(ctx, appLogger.Logger, cfg, false)
			return res.Service, res.Cleanup, nil
		},
	}

	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}
