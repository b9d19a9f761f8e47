package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-spice-must-sync/internal/cli"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/ofx"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "Manage transactions",
		Long:    `List, add, update, delete and import transactions. Transactions are cached per calendar year.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	cmd.AddCommand(importTransactionsCmd())

	return cmd
}

// resolveYear returns year, or the current year in loc when year is zero.
func resolveYear(year int, loc *time.Location) string {
	if year == 0 {
		year = time.Now().In(loc).Year()
	}
	return strconv.Itoa(year)
}

func listTransactionsCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the transactions of one year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				y := resolveYear(year, a.location)
				txns, err := a.sync.SyncTransactionsYear(cmd.Context(), y)
				if err != nil {
					return fmt.Errorf("failed to sync transactions for %s: %w", y, err)
				}

				if len(txns) == 0 {
					fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("No transactions in %s", y)))
					return nil
				}

				sorted := append([]model.Transaction(nil), txns...)
				sort.SliceStable(sorted, func(i, j int) bool {
					return sorted[i].Timestamp.Before(sorted[j].Timestamp)
				})

				var total float64
				table := cli.NewTable("ID", "Date", "Amount", "Category", "Description")
				for _, t := range sorted {
					total += t.Amount
					table.AddRow(t.ID, t.Timestamp.In(a.location).Format("2006-01-02"), cli.FormatAmount(t.Amount), t.CategoryID, t.Description)
				}
				fmt.Print(table.String())
				fmt.Printf("\n%d transactions, total %s\n", len(sorted), cli.FormatAmount(total))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to list (defaults to the current year)")

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var (
		amount      float64
		categoryID  string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				ts := time.Now().In(a.location)
				if date != "" {
					var err error
					if ts, err = parseDate(date, a.location); err != nil {
						return err
					}
				}

				created, err := a.sync.CreateTransaction(cmd.Context(), model.Transaction{
					Timestamp:   ts,
					CategoryID:  categoryID,
					Description: description,
					Amount:      amount,
				})
				if err != nil {
					return fmt.Errorf("failed to create transaction: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created transaction %s in %s", created.ID, created.Year(a.location))))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "transaction amount")
	cmd.Flags().StringVar(&categoryID, "category", "", "category ID")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (defaults to now)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// findTransaction looks id up in the cached or freshly synced year.
func findTransaction(cmd *cobra.Command, a *app, id, year string) (model.Transaction, error) {
	txns, err := a.sync.SyncTransactionsYear(cmd.Context(), year)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to sync transactions for %s: %w", year, err)
	}
	for _, t := range txns {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Transaction{}, fmt.Errorf("transaction %q not found in %s", id, year)
}

func updateTransactionCmd() *cobra.Command {
	var (
		year        int
		amount      float64
		categoryID  string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a transaction, moving it to another year if its date changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				original, err := findTransaction(cmd, a, args[0], resolveYear(year, a.location))
				if err != nil {
					return err
				}

				updated := original
				if cmd.Flags().Changed("amount") {
					updated.Amount = amount
				}
				if cmd.Flags().Changed("category") {
					updated.CategoryID = categoryID
				}
				if cmd.Flags().Changed("description") {
					updated.Description = description
				}
				if cmd.Flags().Changed("date") {
					if updated.Timestamp, err = parseDate(date, a.location); err != nil {
						return err
					}
				}

				result, err := a.sync.UpdateTransaction(cmd.Context(), original, updated)
				if err != nil {
					return fmt.Errorf("failed to update transaction: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated transaction %s in %s", result.ID, result.Year(a.location))))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year the transaction is filed under (defaults to the current year)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "new amount")
	cmd.Flags().StringVar(&categoryID, "category", "", "new category ID")
	cmd.Flags().StringVar(&date, "date", "", "new date")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				y := resolveYear(year, a.location)
				if err := a.sync.DeleteTransaction(cmd.Context(), args[0], y); err != nil {
					return fmt.Errorf("failed to delete transaction: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transaction %s from %s", args[0], y)))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year the transaction is filed under (defaults to the current year)")

	return cmd
}

func importTransactionsCmd() *cobra.Command {
	var categoryID string

	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import transactions from an OFX/QFX file",
		Long: `Import every statement transaction of an OFX or QFX file into one category.
Re-importing the same file overwrites the same transactions instead of duplicating them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			return withApp(cmd.Context(), func(a *app) error {
				entries, err := ofx.NewParser(a.logger).Parse(cmd.Context(), f)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Println(cli.InfoStyle.Render("No transactions found in the file"))
					return nil
				}

				bar := cli.NewProgress(os.Stderr, len(entries), "Importing")
				imported, err := ofx.Import(cmd.Context(), a.sync, entries, a.cfg.UserID, categoryID, func(t model.Transaction) {
					bar.Step(t.Description)
				})
				bar.Finish()
				if err != nil {
					fmt.Println(cli.FormatWarning(fmt.Sprintf("Imported %d of %d transactions before failing", imported, len(entries))))
					return err
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", imported)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "category ID for the imported transactions")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
