// Package due classifies tasks by due date at calendar-day granularity.
package due

import (
	"time"

	"github.com/tarefo/tarefo/internal/model"
)

// DefaultWindowDays is the size of the upcoming-tasks window.
const DefaultWindowDays = 7

// Classification holds the due-date buckets a task falls into. A task
// with no due date falls into none of them.
type Classification struct {
	Overdue    bool
	DueToday   bool
	DueInDays  bool // due within the window, today included
	WindowDays int
}

// StartOfDay truncates t to midnight in its location. Time of day is
// never significant when comparing due dates.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Classify buckets a task relative to today using a 7-day window.
func Classify(task model.Task, today time.Time) Classification {
	return ClassifyWindow(task, today, DefaultWindowDays)
}

// ClassifyWindow buckets a task relative to today. The window upper
// bound is inclusive: a task due exactly windowDays from today counts
// as upcoming.
func ClassifyWindow(task model.Task, today time.Time, windowDays int) Classification {
	c := Classification{WindowDays: windowDays}
	if task.DueDate == nil {
		return c
	}

	day := StartOfDay(today)
	dueDay := StartOfDay(*task.DueDate)
	windowEnd := day.AddDate(0, 0, windowDays)

	// A completed task is never overdue, no matter the date.
	c.Overdue = dueDay.Before(day) && task.Status != model.StatusDone
	c.DueToday = dueDay.Equal(day)
	c.DueInDays = !dueDay.Before(day) && !dueDay.After(windowEnd)
	return c
}

// IsOverdue reports whether the task's due date has passed and the task
// is not done.
func IsOverdue(task model.Task, today time.Time) bool {
	return ClassifyWindow(task, today, 0).Overdue
}

// IsDueToday reports whether the task is due on today's calendar day.
func IsDueToday(task model.Task, today time.Time) bool {
	return ClassifyWindow(task, today, 0).DueToday
}

// IsDueWithin reports whether the task is due between today and
// today+days, both ends inclusive.
func IsDueWithin(task model.Task, today time.Time, days int) bool {
	return ClassifyWindow(task, today, days).DueInDays
}
