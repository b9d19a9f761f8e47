package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-spice-must-sync/internal/cli"
)

func syncCmd() *cobra.Command {
	var (
		from          int
		to            int
		force         bool
		withRecurring bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring the local cache up to date with the remote store",
		Long: `Sync categories, recurring expenses, reminders and one or more years of
transactions. Partitions whose cached token still matches the remote token are
served from the cache without reading their documents.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				current := time.Now().In(a.location).Year()
				if !cmd.Flags().Changed("from") {
					from = current
				}
				if !cmd.Flags().Changed("to") {
					to = current
				}
				years, err := yearRange(from, to)
				if err != nil {
					return err
				}

				if force {
					if err := a.sync.ClearCache(cmd.Context()); err != nil {
						return fmt.Errorf("failed to clear cache: %w", err)
					}
				}

				return runSync(cmd, a, years, withRecurring)
			})
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "first year to sync (defaults to the current year)")
	cmd.Flags().IntVar(&to, "to", 0, "last year to sync (defaults to the current year)")
	cmd.Flags().BoolVar(&force, "force", false, "clear the cache before syncing")
	cmd.Flags().BoolVar(&withRecurring, "process-recurring", false, "create transactions for missed recurring occurrences after syncing")

	return cmd
}

func runSync(cmd *cobra.Command, a *app, years []string, withRecurring bool) error {
	ctx := cmd.Context()
	summary := cli.NewTable("Partition", "Items")
	bar := cli.NewProgress(os.Stderr, len(years)+3, "Syncing")

	bar.Step("categories")
	categories, err := a.sync.SyncCategories(ctx)
	if err != nil {
		bar.Finish()
		return fmt.Errorf("failed to sync categories: %w", err)
	}
	summary.AddRow("categories", strconv.Itoa(len(categories)))

	bar.Step("recurring expenses")
	expenses, err := a.recurring.GetRecurringExpenses(ctx, false)
	if err != nil {
		bar.Finish()
		return fmt.Errorf("failed to sync recurring expenses: %w", err)
	}
	summary.AddRow("recurring expenses", strconv.Itoa(len(expenses)))

	bar.Step("reminders")
	reminders, err := a.reminders.GetReminders(ctx, false)
	if err != nil {
		bar.Finish()
		return fmt.Errorf("failed to sync reminders: %w", err)
	}
	summary.AddRow("reminders", strconv.Itoa(len(reminders)))

	for _, year := range years {
		bar.Step("transactions " + year)
		txns, err := a.sync.SyncTransactionsYear(ctx, year)
		if err != nil {
			bar.Finish()
			return fmt.Errorf("failed to sync transactions for %s: %w", year, err)
		}
		summary.AddRow("transactions "+year, strconv.Itoa(len(txns)))
	}
	bar.Finish()

	if withRecurring {
		result, err := processRecurring(cmd, a)
		if err != nil {
			return err
		}
		summary.AddRow("recurring transactions created", strconv.Itoa(result.Created))
	}

	fmt.Println(cli.RenderBox("Sync complete", summary.String()))
	return nil
}
