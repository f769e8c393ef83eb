package notify

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/due"
	"github.com/tarefo/tarefo/internal/model"
)

// Reminder ids are derived from the task id so a task's reminders can
// be cancelled without extra bookkeeping.
const (
	reminderIDBase = 1000
	dueDayIDOffset = 10000
)

// ReminderID returns the id of the lead reminder for a task.
func ReminderID(taskID int) int { return taskID + reminderIDBase }

// DueDayID returns the id of the due-day reminder for a task.
func DueDayID(taskID int) int { return ReminderID(taskID) + dueDayIDOffset }

// Scheduler turns task due dates into platform notification requests
// according to the persisted reminder settings.
type Scheduler struct {
	platform Platform
	config   *ConfigStore
	logger   *log.Logger
	now      func() time.Time
}

// NewScheduler wires a scheduler over the given platform and settings.
func NewScheduler(platform Platform, config *ConfigStore, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		platform: platform,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// ScheduleTask schedules the reminders for one task, or cancels them
// when the task no longer qualifies: reminders disabled, no due date,
// task done, or due date already past.
func (s *Scheduler) ScheduleTask(task model.Task) error {
	cfg := s.config.Get()
	now := s.now()
	today := due.StartOfDay(now)

	qualifies := cfg.Enabled &&
		task.DueDate != nil &&
		task.Status != model.StatusDone &&
		!due.StartOfDay(*task.DueDate).Before(today)
	if !qualifies {
		return s.CancelTask(task.ID)
	}

	dueDay := due.StartOfDay(*task.DueDate)
	leadInstant := cfg.At(dueDay.AddDate(0, 0, -cfg.LeadDays))
	if leadInstant.Before(now) {
		leadInstant = cfg.At(today)
		if leadInstant.Before(now) {
			leadInstant = leadInstant.AddDate(0, 0, 1)
		}
	}

	err := s.platform.Schedule(Request{
		ID:    ReminderID(task.ID),
		Title: "Task due soon",
		Body:  fmt.Sprintf("%s is due on %s", task.Title, dueDay.Format("2006-01-02")),
		At:    leadInstant,
		Sound: "default",
		Extra: map[string]string{"task_id": fmt.Sprintf("%d", task.ID)},
	})
	if err != nil {
		return fmt.Errorf("schedule reminder for task %d: %w", task.ID, err)
	}

	// A second reminder fires on the due day itself, as long as its
	// slot has not passed. Both fire even when they land on the same
	// day: they carry distinct ids and bodies.
	dueInstant := cfg.At(dueDay)
	if dueInstant.After(now) {
		err := s.platform.Schedule(Request{
			ID:    DueDayID(task.ID),
			Title: "Task due today",
			Body:  fmt.Sprintf("%s is due today", task.Title),
			At:    dueInstant,
			Sound: "default",
			Extra: map[string]string{"task_id": fmt.Sprintf("%d", task.ID)},
		})
		if err != nil {
			return fmt.Errorf("schedule due-day reminder for task %d: %w", task.ID, err)
		}
	} else if err := s.platform.Cancel(DueDayID(task.ID)); err != nil {
		return fmt.Errorf("cancel due-day reminder for task %d: %w", task.ID, err)
	}
	return nil
}

// CancelTask drops both reminders of a task. Cancelling reminders that
// were never scheduled is fine.
func (s *Scheduler) CancelTask(taskID int) error {
	if err := s.platform.Cancel(ReminderID(taskID)); err != nil {
		return fmt.Errorf("cancel reminder for task %d: %w", taskID, err)
	}
	if err := s.platform.Cancel(DueDayID(taskID)); err != nil {
		return fmt.Errorf("cancel due-day reminder for task %d: %w", taskID, err)
	}
	return nil
}

// RescheduleAll drops every pending request and rebuilds the spool
// from the given tasks. Individual failures are logged and skipped so
// one bad task does not block the rest.
func (s *Scheduler) RescheduleAll(tasks []model.Task) error {
	pending, err := s.platform.Pending()
	if err != nil {
		return fmt.Errorf("list pending reminders: %w", err)
	}
	for _, req := range pending {
		if err := s.platform.Cancel(req.ID); err != nil {
			s.logger.Error("cancel pending reminder", "id", req.ID, "err", err)
		}
	}
	for _, task := range tasks {
		if err := s.ScheduleTask(task); err != nil {
			s.logger.Error("reschedule task reminder", "task", task.ID, "err", err)
		}
	}
	return nil
}

// Pending lists the platform's pending requests.
func (s *Scheduler) Pending() ([]Request, error) {
	return s.platform.Pending()
}
