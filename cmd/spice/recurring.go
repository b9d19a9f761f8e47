package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-spice-must-sync/internal/cli"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/sync"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring expenses",
		Long:  `Define recurring expenses and turn their missed occurrences into transactions.`,
	}

	cmd.AddCommand(listRecurringCmd())
	cmd.AddCommand(addRecurringCmd())
	cmd.AddCommand(deleteRecurringCmd())
	cmd.AddCommand(processRecurringCmd())

	return cmd
}

func listRecurringCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active recurring expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				expenses, err := a.recurring.GetRecurringExpenses(cmd.Context(), force)
				if err != nil {
					return fmt.Errorf("failed to sync recurring expenses: %w", err)
				}

				if len(expenses) == 0 {
					fmt.Println(cli.InfoStyle.Render("No active recurring expenses"))
					return nil
				}

				table := cli.NewTable("ID", "Frequency", "Amount", "Category", "Next", "Description")
				for _, e := range expenses {
					table.AddRow(
						e.ID,
						strings.ToLower(string(e.Frequency)),
						cli.FormatAmount(e.Amount),
						e.CategoryID,
						e.NextOccurrence.In(a.location).Format("2006-01-02"),
						e.Description,
					)
				}
				fmt.Print(table.String())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "refetch from the remote store even when the cache is fresh")

	return cmd
}

func addRecurringCmd() *cobra.Command {
	var (
		amount      float64
		categoryID  string
		frequency   string
		start       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				startDate := time.Now().In(a.location)
				if start != "" {
					var err error
					if startDate, err = parseDate(start, a.location); err != nil {
						return err
					}
				}

				id, err := a.recurring.AddRecurringExpense(cmd.Context(), model.RecurringExpense{
					StartDate:   startDate,
					CategoryID:  categoryID,
					Description: description,
					Frequency:   model.Frequency(strings.ToUpper(frequency)),
					Amount:      amount,
					IsActive:    true,
				})
				if err != nil {
					return fmt.Errorf("failed to add recurring expense: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added recurring expense %s", id)))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount of each occurrence")
	cmd.Flags().StringVar(&categoryID, "category", "", "category ID")
	cmd.Flags().StringVar(&frequency, "frequency", string(model.FrequencyMonthly), "weekly, monthly or yearly")
	cmd.Flags().StringVar(&start, "start", "", "first occurrence (defaults to now)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func deleteRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.recurring.DeleteRecurringExpense(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete recurring expense: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted recurring expense %s", args[0])))
				return nil
			})
		},
	}
}

func processRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Create transactions for every missed occurrence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				result, err := processRecurring(cmd, a)
				if err != nil {
					return err
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %d transactions", result.Created)))
				return nil
			})
		},
	}
}

// processRecurring runs the processor and warns about skipped definitions.
func processRecurring(cmd *cobra.Command, a *app) (sync.ProcessResult, error) {
	processor := sync.NewRecurringProcessor(a.recurring, a.sync, a.options...)
	result, err := processor.ProcessRecurringExpenses(cmd.Context())
	if err != nil {
		return result, fmt.Errorf("failed to process recurring expenses: %w", err)
	}

	for _, id := range result.Malformed {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Skipped recurring expense %s: unknown frequency", id)))
	}
	return result, nil
}
