package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-spice-must-sync/internal/cli"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/sync"
)

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage payment reminders",
	}

	cmd.AddCommand(listRemindersCmd())
	cmd.AddCommand(addReminderCmd())
	cmd.AddCommand(updateReminderCmd())
	cmd.AddCommand(deleteReminderCmd())
	cmd.AddCommand(watchRemindersCmd())

	return cmd
}

func parseSchedules(values []string) []model.ReminderSchedule {
	schedules := make([]model.ReminderSchedule, 0, len(values))
	for _, v := range values {
		schedules = append(schedules, model.ReminderSchedule(strings.ToUpper(strings.TrimSpace(v))))
	}
	return schedules
}

func formatSchedules(schedules []model.ReminderSchedule) string {
	parts := make([]string, 0, len(schedules))
	for _, s := range schedules {
		parts = append(parts, strings.ToLower(string(s)))
	}
	return strings.Join(parts, ", ")
}

func listRemindersCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders by due time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				reminders, err := a.reminders.GetReminders(cmd.Context(), force)
				if err != nil {
					return fmt.Errorf("failed to sync reminders: %w", err)
				}

				if len(reminders) == 0 {
					fmt.Println(cli.InfoStyle.Render("No reminders"))
					return nil
				}

				table := cli.NewTable("ID", "Name", "Due", "Schedule")
				for _, r := range reminders {
					table.AddRow(r.ID, r.Name, r.DueTime.In(a.location).Format("2006-01-02 15:04"), formatSchedules(r.ReminderSchedule))
				}
				fmt.Print(table.String())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "refetch from the remote store even when the cache is fresh")

	return cmd
}

func addReminderCmd() *cobra.Command {
	var (
		due       string
		schedules []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				dueTime, err := parseDate(due, a.location)
				if err != nil {
					return err
				}

				id, err := a.reminders.AddReminder(cmd.Context(), model.ReminderInput{
					DueTime:          dueTime,
					Name:             args[0],
					ReminderSchedule: parseSchedules(schedules),
				})
				if err != nil {
					return fmt.Errorf("failed to add reminder: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added reminder %s", id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "due time")
	cmd.Flags().StringSliceVar(&schedules, "schedule", []string{string(model.ScheduleOneDay)}, "lead times (1_day, 2_days, 1_week, 1_month)")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func updateReminderCmd() *cobra.Command {
	var (
		name      string
		due       string
		schedules []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				existing, err := a.collections().GetReminder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if existing == nil {
					return fmt.Errorf("reminder %q not found", args[0])
				}

				in := model.ReminderInput{
					DueTime:          existing.DueTime,
					Name:             existing.Name,
					ReminderSchedule: existing.ReminderSchedule,
				}
				if cmd.Flags().Changed("name") {
					in.Name = name
				}
				if cmd.Flags().Changed("due") {
					if in.DueTime, err = parseDate(due, a.location); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("schedule") {
					in.ReminderSchedule = parseSchedules(schedules)
				}

				if err := a.reminders.UpdateReminder(cmd.Context(), args[0], in); err != nil {
					return fmt.Errorf("failed to update reminder: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated reminder %s", args[0])))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&due, "due", "", "new due time")
	cmd.Flags().StringSliceVar(&schedules, "schedule", nil, "new lead times")

	return cmd
}

func deleteReminderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.reminders.DeleteReminder(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete reminder: %w", err)
				}

				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted reminder %s", args[0])))
				return nil
			})
		},
	}
}

func watchRemindersCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print reminder notifications as they come due",
		Long: `Check reminders immediately and then on every interval, printing each
notification once per schedule window. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if !cmd.Flags().Changed("interval") {
					interval = a.cfg.Reminders.CheckInterval
				}

				fmt.Println(cli.FormatInfo(fmt.Sprintf("Watching reminders every %s", interval)))
				notifier := sync.NewReminderNotifier(a.reminders, a.options...)
				err := notifier.Run(cmd.Context(), interval, func(n model.Notification) {
					fmt.Println(cli.ReminderIcon + " " + cli.WarningStyle.Render(n.Message()))
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "check interval (defaults to reminders.check_interval)")

	return cmd
}
