package cmd

import (
	"flag"
	"fmt"
	"time"

	"github.com/tarefo/tarefo/internal/notify"
)

func notifyCommand(a *app, args []string) error {
	if len(args) == 0 {
		return notifyStatus(a)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "status":
		return notifyStatus(a)
	case "config":
		return notifyConfig(a, rest)
	case "enable":
		return notifySetEnabled(a, true)
	case "disable":
		return notifySetEnabled(a, false)
	case "pending":
		return notifyPending(a)
	case "reschedule":
		return notifyReschedule(a)
	case "due":
		return notifyDue(a)
	default:
		return fmt.Errorf("unknown notify subcommand: %s", sub)
	}
}

func notifyStatus(a *app) error {
	cfg := a.notifyCfg.Get()
	state := "disabled"
	if cfg.Enabled {
		state = "enabled"
	}
	fmt.Printf("Reminders:  %s\n", state)
	fmt.Printf("Lead time:  %d day(s)\n", cfg.LeadDays)
	fmt.Printf("Fire at:    %s\n", cfg.Time)

	pending, err := a.scheduler.Pending()
	if err != nil {
		return err
	}
	fmt.Printf("Pending:    %d reminder(s)\n", len(pending))
	return nil
}

func notifyConfig(a *app, args []string) error {
	cfg := a.notifyCfg.Get()

	fs := flag.NewFlagSet("tarefo notify config", flag.ContinueOnError)
	leadDays := fs.Int("lead-days", cfg.LeadDays, "Days of lead time (0-30)")
	at := fs.String("at", cfg.Time, "Time of day reminders fire (HH:MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NFlag() == 0 {
		return notifyStatus(a)
	}

	cfg.LeadDays = *leadDays
	cfg.Time = *at
	if err := a.notifyCfg.Set(cfg); err != nil {
		return err
	}
	fmt.Println("Updated reminder settings.")
	return a.scheduler.RescheduleAll(a.tasks.All())
}

func notifySetEnabled(a *app, enabled bool) error {
	if err := a.notifyCfg.SetEnabled(enabled); err != nil {
		return err
	}
	if enabled {
		fmt.Println("Reminders enabled.")
	} else {
		fmt.Println("Reminders disabled.")
	}
	return a.scheduler.RescheduleAll(a.tasks.All())
}

func notifyPending(a *app) error {
	pending, err := a.scheduler.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No pending reminders.")
		return nil
	}
	for _, req := range pending {
		printReminder(req)
	}
	return nil
}

func notifyReschedule(a *app) error {
	tasks := a.tasks.All()
	if err := a.scheduler.RescheduleAll(tasks); err != nil {
		return err
	}
	pending, err := a.scheduler.Pending()
	if err != nil {
		return err
	}
	fmt.Printf("Rescheduled reminders for %d task(s); %d pending.\n", len(tasks), len(pending))
	return nil
}

// notifyDue lists the tasks a reminder would currently flag: overdue,
// due today, and due within the upcoming week.
func notifyDue(a *app) error {
	now := time.Now()

	if overdue := a.tasks.Overdue(now); len(overdue) > 0 {
		fmt.Printf("Overdue (%d):\n", len(overdue))
		printTaskList(a, overdue, false)
		fmt.Println()
	}
	if today := a.tasks.DueToday(now); len(today) > 0 {
		fmt.Printf("Due today (%d):\n", len(today))
		printTaskList(a, today, false)
		fmt.Println()
	}
	soon := a.tasks.DueSoon(now)
	fmt.Printf("Due within 7 days (%d):\n", len(soon))
	printTaskList(a, soon, false)
	return nil
}

func printReminder(req notify.Request) {
	fmt.Printf("  #%-6d %s  %s\n", req.ID, req.At.Format("2006-01-02 15:04"), req.Title)
	if req.Body != "" {
		fmt.Printf("          %s\n", req.Body)
	}
}
