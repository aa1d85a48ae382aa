package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/analytics"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	"expensetracker/internal/export"
	"expensetracker/internal/services"
)

func newAddCmd(a *app) *cobra.Command {
	var amount, description, category, date string
	var strict bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Records an expense. The amount is read in the selected currency's locale,
so "1.234,56" is 1234.56 under EUR and "1,234.56" is 1234.56 under USD.

With --strict the amount must be a plain positive decimal such as 12.34 or
12,34 (no grouping, no symbol); anything else is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withService(ctx, func(svc *services.ExpenseService) error {
				f, err := a.formatter(ctx, svc)
				if err != nil {
					return err
				}
				money, err := readAmount(amount, strict, f)
				if err != nil {
					return err
				}
				in := core.ExpenseInput{
					Amount:      money,
					Category:    category,
					Description: description,
					Date:        svc.Today(),
				}
				if date != "" {
					if in.Date, err = core.ParseDate(date); err != nil {
						return err
					}
				}
				e, err := svc.Add(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added %s: %s %s (%s)\n", e.ID, f.FormatCents(e.Amount.Cents), e.Description, e.Category)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in the currency's locale")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&category, "category", "Other", "Category")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject anything but a plain positive decimal amount")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

// readAmount parses a command-line amount, leniently in the currency's
// locale or strictly as a plain decimal.
func readAmount(s string, strict bool, f currency.Formatter) (core.Money, error) {
	if strict {
		cents, err := core.ParseDecimalToCents(s)
		if err != nil {
			return core.Money{}, fmt.Errorf("%w: %q", err, s)
		}
		return core.Money{Cents: cents}, nil
	}
	return core.NewMoney(f.Parse(s))
}

func newListCmd(a *app) *cobra.Command {
	var opts analytics.ListOptions
	var sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.Sort = analytics.ParseSortKey(sort)
			return a.withService(ctx, func(svc *services.ExpenseService) error {
				f, err := a.formatter(ctx, svc)
				if err != nil {
					return err
				}
				expenses, err := svc.List(ctx, opts)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
				for _, e := range expenses {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, f.FormatCents(e.Amount.Cents), e.Category, e.Description, e.ID)
				}
				fmt.Fprintf(tw, "\t%s\t\t%d expenses\t\n", f.FormatCents(core.Total(expenses).Cents), len(expenses))
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Match description or category")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Only this category")
	cmd.Flags().StringVar(&sort, "sort", "date", "Sort by date, amount or category")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the monthly report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withService(ctx, func(svc *services.ExpenseService) error {
				current := svc.Today().YearMonth()
				ym := current
				if month != "" {
					var err error
					if ym, err = core.ParseYearMonth(month); err != nil {
						return err
					}
				}
				f, err := a.formatter(ctx, svc)
				if err != nil {
					return err
				}
				r, _, err := svc.MonthReport(ctx, ym, current)
				if err != nil {
					return err
				}

				fmt.Fprintf(a.out, "%s\n", r.Label)
				fmt.Fprintf(a.out, "Total:          %s (%d expenses)\n", f.FormatCents(r.Total.Cents), r.Count)
				fmt.Fprintf(a.out, "Average/day:    %s\n", f.FormatCents(r.AveragePerDay.Cents))
				fmt.Fprintf(a.out, "Previous month: %s\n", f.FormatCents(r.PreviousTotal.Cents))
				fmt.Fprintf(a.out, "Change:         %s (%.1f%%)\n", f.FormatCents(r.Change.Cents), r.ChangePercent)
				if r.TopCategory != "" {
					fmt.Fprintf(a.out, "Top category:   %s %s\n", r.TopCategory, f.FormatCents(r.TopAmount.Cents))
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				for _, c := range r.Categories {
					fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\n", c.Name, f.FormatCents(c.Amount.Cents), c.Percentage)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default current)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var dir, formats string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the expense list to files",
		Long: `Writes a snapshot of all expenses with the json and/or xlsx exporters.

Examples:
  expensectl export --dir ./exports --format json,xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := &config.Config{ExportDir: dir}
			for _, f := range strings.Split(formats, ",") {
				if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
					cfg.ExportFormats = append(cfg.ExportFormats, f)
				}
			}
			exporters, err := cli.BuildExporters(ctx, cfg)
			if err != nil {
				return err
			}
			return a.withService(ctx, func(svc *services.ExpenseService) error {
				snap, err := svc.Snapshot(ctx)
				if err != nil {
					return err
				}
				start := time.Now()
				refs, err := export.Run(ctx, snap, exporters...)
				if err != nil {
					return err
				}
				for _, e := range exporters {
					fmt.Fprintf(a.out, "%s: %s\n", e.Name(), refs[e.Name()])
				}
				fmt.Fprintf(a.out, "Exported %d expenses in %s\n", len(snap.Expenses), time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./exports", "Output directory")
	cmd.Flags().StringVar(&formats, "format", config.FormatJSON, "Comma-separated formats (json, xlsx)")
	return cmd
}
