package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/currency"
	"expensetracker/internal/services"
)

// opener connects to the configured backend. The returned func releases it.
type opener func(ctx context.Context) (*services.ExpenseService, func() error, error)

type app struct {
	out  io.Writer
	open opener

	currencyCode string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "expensectl",
		Short: "Manage expenses from the command line",
		Long: `expensectl reads and writes the same store as the expensetracker server.

Amounts are read and printed in the selected currency's locale.

Examples:
  expensectl currencies
  expensectl use-currency EUR
  expensectl add --amount "1.234,56" --description Rent --category "Bills & Utilities"
  expensectl report --month 2024-03`,
		SilenceUsage: true,
	}
	root.SetOut(a.out)
	root.SetErr(os.Stderr)
	root.PersistentFlags().StringVarP(&a.currencyCode, "currency", "c", "", "Currency code overriding the stored selection")

	root.AddCommand(
		newCurrenciesCmd(a),
		newUseCurrencyCmd(a),
		newFormatCmd(a),
		newParseCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newReportCmd(a),
		newExportCmd(a),
	)
	return root
}

// withService opens the backend for the duration of fn.
func (a *app) withService(ctx context.Context, fn func(*services.ExpenseService) error) error {
	svc, cleanup, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			printError("close backend", cerr)
		}
	}()
	return fn(svc)
}

// formatter resolves --currency, falling back to the stored selection.
func (a *app) formatter(ctx context.Context, svc *services.ExpenseService) (currency.Formatter, error) {
	if a.currencyCode != "" {
		c, err := currency.Find(a.currencyCode)
		if err != nil {
			return currency.Formatter{}, err
		}
		return currency.NewFormatter(&c), nil
	}
	return svc.Formatter(ctx)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
