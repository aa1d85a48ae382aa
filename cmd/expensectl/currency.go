package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"expensetracker/internal/currency"
	"expensetracker/internal/services"
)

func newCurrenciesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currencies",
		Long: `Lists the supported currencies in display order. The stored selection
is marked with an asterisk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *services.ExpenseService) error {
				selected, ok, err := svc.Currency(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range currency.List() {
					mark := " "
					if ok && c.Code == selected.Code {
						mark = "*"
					}
					fmt.Fprintf(a.out, "%s %-4s %-4s %-8s %s\n", mark, c.Code, c.Symbol, c.Locale, c.Name)
				}
				return nil
			})
		},
	}
}

func newUseCurrencyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use-currency <code>",
		Short: "Select the display currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *services.ExpenseService) error {
				c, err := svc.SelectCurrency(cmd.Context(), strings.ToUpper(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Selected %s (%s)\n", c.Name, c.Code)
				return nil
			})
		},
	}
}

func newFormatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format <amount>",
		Short: "Format a plain number in the selected currency",
		Long: `Formats a plain decimal number (dot separator) the way the UI shows it.

Examples:
  expensectl format 1234.5 --currency INR   # ₹1,234.50
  expensectl format -- -12 --currency EUR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return a.withFormatter(cmd, func(f currency.Formatter) error {
				fmt.Fprintln(a.out, f.Format(amount))
				return nil
			})
		},
	}
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse a locale-formatted amount",
		Long: `Parses text typed in the selected currency's locale into a plain number.
Unparseable input yields 0.

Examples:
  expensectl parse "1.234,56 €" --currency EUR   # 1234.56`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFormatter(cmd, func(f currency.Formatter) error {
				fmt.Fprintln(a.out, strconv.FormatFloat(f.Parse(args[0]), 'f', -1, 64))
				return nil
			})
		},
	}
}

// withFormatter avoids opening the backend when --currency is given.
func (a *app) withFormatter(cmd *cobra.Command, fn func(currency.Formatter) error) error {
	if a.currencyCode != "" {
		c, err := currency.Find(a.currencyCode)
		if err != nil {
			return err
		}
		return fn(currency.NewFormatter(&c))
	}
	return a.withService(cmd.Context(), func(svc *services.ExpenseService) error {
		f, err := svc.Formatter(cmd.Context())
		if err != nil {
			return err
		}
		return fn(f)
	})
}
