package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/the-spice-must-sync/internal/cli"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the local cache",
	}

	cmd.AddCommand(showCacheCmd())
	cmd.AddCommand(statusCacheCmd())
	cmd.AddCommand(clearCacheCmd())

	return cmd
}

// toYAML renders v as YAML using its JSON field names.
func toYAML(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func showCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cached snapshot and reminders as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				snap, err := a.cache.GetSnapshot(cmd.Context())
				if err != nil {
					return err
				}
				reminders, token, found, err := a.cache.GetReminders(cmd.Context())
				if err != nil {
					return err
				}

				doc := map[string]any{"snapshot": snap}
				if found {
					doc["reminders"] = map[string]any{"token": token, "reminders": reminders}
				}

				out, err := toYAML(doc)
				if err != nil {
					return fmt.Errorf("failed to render cache: %w", err)
				}
				fmt.Print(out)
				return nil
			})
		},
	}
}

// partitionStatus is one cached partition compared against the remote store.
type partitionStatus struct {
	partition model.Partition
	local     string
	remote    string
}

func (p partitionStatus) fresh() bool {
	return p.local != "" && p.local == p.remote
}

func statusCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare cached freshness tokens with the remote store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				snap, err := a.cache.GetSnapshot(cmd.Context())
				if err != nil {
					return err
				}
				_, remindersToken, _, err := a.cache.GetReminders(cmd.Context())
				if err != nil {
					return err
				}

				statuses := []partitionStatus{
					{partition: model.PartitionCategories, local: snap.CategoriesToken()},
					{partition: model.PartitionRecurring, local: snap.RecurringToken()},
					{partition: model.PartitionReminders, local: remindersToken},
				}
				if snap != nil {
					years := make([]string, 0, len(snap.Tokens.TransactionTokens))
					for year := range snap.Tokens.TransactionTokens {
						years = append(years, year)
					}
					sort.Strings(years)
					for _, year := range years {
						statuses = append(statuses, partitionStatus{
							partition: model.TransactionsPartition(year),
							local:     snap.TransactionToken(year),
						})
					}
				}

				store := a.collections()
				table := cli.NewTable("Partition", "Local", "Remote", "Fresh")
				for _, st := range statuses {
					if st.remote, err = store.GetToken(cmd.Context(), st.partition); err != nil {
						return fmt.Errorf("failed to read %s token: %w", st.partition, err)
					}
					fresh := cli.ErrorStyle.Render(cli.ErrorIcon)
					if st.fresh() {
						fresh = cli.SuccessStyle.Render(cli.SuccessIcon)
					}
					table.AddRow(string(st.partition), orDash(st.local), orDash(st.remote), fresh)
				}
				fmt.Print(table.String())
				return nil
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached record for the user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.sync.ClearCache(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}

				fmt.Println(cli.FormatSuccess("Cache cleared"))
				return nil
			})
		},
	}
}
