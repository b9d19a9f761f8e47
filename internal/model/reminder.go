package model

import (
	"fmt"
	"math"
	"time"
)

// ReminderSchedule is how long before the due time a reminder should fire.
type ReminderSchedule string

// Supported schedules.
const (
	ScheduleOneDay   ReminderSchedule = "1_DAY"
	ScheduleTwoDays  ReminderSchedule = "2_DAYS"
	ScheduleOneWeek  ReminderSchedule = "1_WEEK"
	ScheduleOneMonth ReminderSchedule = "1_MONTH"
)

var scheduleWindows = []struct {
	schedule ReminderSchedule
	hours    float64
}{
	{ScheduleOneDay, 24},
	{ScheduleTwoDays, 48},
	{ScheduleOneWeek, 168},
	{ScheduleOneMonth, 720},
}

// WindowHours returns the notification lead time in hours.
func (s ReminderSchedule) WindowHours() (float64, bool) {
	for _, w := range scheduleWindows {
		if w.schedule == s {
			return w.hours, true
		}
	}
	return 0, false
}

// Reminder is a named due date with notification schedules.
type Reminder struct {
	DueTime          time.Time          `json:"dueTime"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	UserID           string             `json:"userId"`
	ReminderSchedule []ReminderSchedule `json:"reminderSchedule"`
}

// ReminderInput holds the user-editable fields of a reminder.
type ReminderInput struct {
	DueTime          time.Time          `json:"dueTime"`
	Name             string             `json:"name" validate:"required"`
	ReminderSchedule []ReminderSchedule `json:"reminderSchedule" validate:"dive,oneof=1_DAY 2_DAYS 1_WEEK 1_MONTH"`
}

// Notification is a reminder that should be shown to the user now.
type Notification struct {
	DueTime          time.Time
	NotificationTime time.Time
	ReminderID       string
	ReminderName     string
	HoursUntilDue    float64
}

// Message renders the notification text.
func (n Notification) Message() string {
	var when string
	switch {
	case n.HoursUntilDue < 1:
		when = "less than 1 hour"
	case n.HoursUntilDue < 24:
		when = fmt.Sprintf("%d hours", int(math.Round(n.HoursUntilDue)))
	default:
		when = fmt.Sprintf("%d days", int(math.Round(n.HoursUntilDue/24)))
	}
	return fmt.Sprintf("Reminder: %s is due in %s", n.ReminderName, when)
}

// ShouldNotify reports whether one of the reminder's schedules falls in the
// hour ending hoursUntilDue hours before the due time.
func ShouldNotify(r Reminder, hoursUntilDue float64) bool {
	for _, s := range r.ReminderSchedule {
		window, ok := s.WindowHours()
		if !ok {
			continue
		}
		if hoursUntilDue <= window && hoursUntilDue > window-1 {
			return true
		}
	}
	return false
}

// ActiveSchedules lists the schedules whose window already contains due.
func ActiveSchedules(due, now time.Time) []ReminderSchedule {
	hours := due.Sub(now).Hours()
	if hours <= 0 {
		return nil
	}
	var active []ReminderSchedule
	for _, w := range scheduleWindows {
		if hours <= w.hours {
			active = append(active, w.schedule)
		}
	}
	return active
}

// DueNotifications returns the notifications to show at now. Only reminders
// due within the next 24 hours are considered.
func DueNotifications(reminders []Reminder, now time.Time) []Notification {
	var out []Notification
	for _, r := range reminders {
		hours := r.DueTime.Sub(now).Hours()
		if hours <= 0 || hours > 24 {
			continue
		}
		if !ShouldNotify(r, hours) {
			continue
		}
		out = append(out, Notification{
			ReminderID:       r.ID,
			ReminderName:     r.Name,
			DueTime:          r.DueTime,
			NotificationTime: now,
			HoursUntilDue:    hours,
		})
	}
	return out
}
