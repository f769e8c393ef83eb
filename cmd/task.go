package cmd

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/tarefo/tarefo/internal/due"
	"github.com/tarefo/tarefo/internal/model"
)

func taskCommand(a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("task subcommand required: add, ls, show, edit, done, rm, move, assign, search, categories")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		return taskAdd(a, rest)
	case "ls", "list":
		return taskList(a, rest)
	case "show":
		return taskShow(a, rest)
	case "edit":
		return taskEdit(a, rest)
	case "done":
		return taskDone(a, rest)
	case "rm", "remove":
		return taskRemove(a, rest)
	case "move":
		return taskMove(a, rest)
	case "assign":
		return taskAssign(a, rest)
	case "search":
		return taskSearch(a, rest)
	case "categories":
		return taskCategories(a)
	default:
		return fmt.Errorf("unknown task subcommand: %s", sub)
	}
}

func taskAdd(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo task add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Task description")
	dueFlag := fs.String("due", "", "Due date (YYYY-MM-DD)")
	priority := fs.String("priority", "", "Priority: low, medium, high")
	status := fs.String("status", "", "Status: todo, in_progress, done")
	category := fs.String("category", "", "Free-text category label")
	project := fs.Int("project", 0, "Project id to attach to")
	tags := fs.String("tags", "", "Comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := model.TaskForm{
		Title:       joinRest(fs.Args()),
		Description: *desc,
		Status:      model.Status(*status),
		Priority:    model.Priority(*priority),
		Category:    *category,
		Tags:        splitTags(*tags),
	}
	if *dueFlag != "" {
		d, err := parseDate(*dueFlag)
		if err != nil {
			return err
		}
		form.DueDate = &d
	}
	if *project > 0 {
		if _, err := a.projects.Get(*project); err != nil {
			return err
		}
		form.ProjectID = project
	}

	task, err := a.tasks.Create(form)
	if err != nil {
		return err
	}
	fmt.Printf("Created task %d: %s\n", task.ID, task.Title)
	return nil
}

func taskList(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo task ls", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status")
	project := fs.Int("project", 0, "Filter by project id")
	overdue := fs.Bool("overdue", false, "Only overdue tasks")
	today := fs.Bool("today", false, "Only tasks due today")
	soon := fs.Bool("soon", false, "Only tasks due within the next 7 days")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	var tasks []model.Task
	switch {
	case *overdue:
		tasks = a.tasks.Overdue(now)
	case *today:
		tasks = a.tasks.DueToday(now)
	case *soon:
		tasks = a.tasks.DueSoon(now)
	case *project > 0:
		tasks = a.tasks.ByProject(*project)
	case *status != "":
		s := model.Status(*status)
		if !model.ValidStatus(s) {
			return fmt.Errorf("unknown status %q", *status)
		}
		tasks = a.tasks.ByStatus(s)
	default:
		tasks = a.tasks.All()
	}

	printTaskList(a, tasks, *verbose)
	return nil
}

func taskShow(a *app, args []string) error {
	id, _, err := parseID(args, "task")
	if err != nil {
		return err
	}
	task, err := a.tasks.Get(id)
	if err != nil {
		return err
	}
	printTaskDetail(a, task)
	return nil
}

func taskEdit(a *app, args []string) error {
	id, rest, err := parseID(args, "task")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("tarefo task edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description")
	dueFlag := fs.String("due", "", "New due date (YYYY-MM-DD)")
	clearDue := fs.Bool("clear-due", false, "Remove the due date")
	priority := fs.String("priority", "", "New priority")
	status := fs.String("status", "", "New status")
	category := fs.String("category", "", "New category label")
	tags := fs.String("tags", "", "New comma-separated tags")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var patch model.TaskPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "desc":
			patch.Description = desc
		case "priority":
			p := model.Priority(*priority)
			patch.Priority = &p
		case "status":
			s := model.Status(*status)
			patch.Status = &s
		case "category":
			patch.Category = category
		case "tags":
			patch.Tags = splitTags(*tags)
		}
	})
	if *clearDue {
		patch.ClearDue = true
	} else if *dueFlag != "" {
		d, err := parseDate(*dueFlag)
		if err != nil {
			return err
		}
		patch.DueDate = &d
	}

	task, err := a.tasks.Update(id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %d\n", task.ID)
	return nil
}

func taskDone(a *app, args []string) error {
	id, _, err := parseID(args, "task")
	if err != nil {
		return err
	}
	status := model.StatusDone
	task, err := a.tasks.Update(id, model.TaskPatch{Status: &status})
	if err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", task.Title)
	return nil
}

func taskRemove(a *app, args []string) error {
	id, _, err := parseID(args, "task")
	if err != nil {
		return err
	}
	if err := a.tasks.Remove(id); err != nil {
		return err
	}
	fmt.Printf("Removed task %d\n", id)
	return nil
}

func taskMove(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo task move", flag.ContinueOnError)
	project := fs.Int("project", 0, "Reorder within this project only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: task move [-project id] <from> <to>")
	}
	var from, to int
	if _, err := fmt.Sscanf(rest[0], "%d", &from); err != nil {
		return fmt.Errorf("invalid position %q", rest[0])
	}
	if _, err := fmt.Sscanf(rest[1], "%d", &to); err != nil {
		return fmt.Errorf("invalid position %q", rest[1])
	}

	var scope *int
	if *project > 0 {
		scope = project
	}
	if err := a.tasks.Move(from, to, scope); err != nil {
		return err
	}
	fmt.Printf("Moved position %d to %d\n", from, to)
	return nil
}

func taskAssign(a *app, args []string) error {
	id, rest, err := parseID(args, "task")
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("usage: task assign <id> <project-id|none>")
	}

	if rest[0] == "none" {
		task, err := a.tasks.MoveToProject(id, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Detached task %d from its project\n", task.ID)
		return nil
	}

	var projectID int
	if _, err := fmt.Sscanf(rest[0], "%d", &projectID); err != nil || projectID <= 0 {
		return fmt.Errorf("invalid project id %q", rest[0])
	}
	if _, err := a.projects.Get(projectID); err != nil {
		return err
	}
	task, err := a.tasks.MoveToProject(id, &projectID)
	if err != nil {
		return err
	}
	fmt.Printf("Assigned task %d to project %d\n", task.ID, projectID)
	return nil
}

func taskSearch(a *app, args []string) error {
	query := joinRest(args)
	if query == "" {
		return fmt.Errorf("usage: task search <query>")
	}
	tasks := a.tasks.Search(query)
	printTaskList(a, tasks, false)
	return nil
}

// taskCategories lists the distinct free-text category labels still in
// use on tasks, in first-seen order.
func taskCategories(a *app) error {
	labels := a.tasks.LegacyCategories()
	if len(labels) == 0 {
		fmt.Println("No task categories in use.")
		return nil
	}
	for _, label := range labels {
		fmt.Printf("  %s\n", label)
	}
	return nil
}

func printTaskList(a *app, tasks []model.Task, verbose bool) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}
	now := time.Now()
	for _, t := range tasks {
		printTask(a, t, now, verbose)
	}
}

func printTask(a *app, t model.Task, now time.Time, verbose bool) {
	statusIcon := " "
	switch t.Status {
	case model.StatusInProgress:
		statusIcon = ">"
	case model.StatusDone:
		statusIcon = "x"
	}

	line := fmt.Sprintf("  [%s] #%-3d %-8s %s", statusIcon, t.ID, t.Priority, t.Title)
	if badge := dueBadge(t, now); badge != "" {
		line += "  " + badge
	}
	fmt.Println(line)

	if verbose {
		if t.Description != "" {
			fmt.Printf("        %s\n", t.Description)
		}
		if t.ProjectID != nil {
			if p, err := a.projects.Get(*t.ProjectID); err == nil {
				fmt.Printf("        project: %s\n", p.Name)
			}
		}
		if len(t.Tags) > 0 {
			fmt.Printf("        tags: %s\n", strings.Join(t.Tags, ", "))
		}
	}
}

func printTaskDetail(a *app, t model.Task) {
	fmt.Printf("Task #%d\n", t.ID)
	fmt.Printf("  Title:    %s\n", t.Title)
	if t.Description != "" {
		fmt.Printf("  Desc:     %s\n", t.Description)
	}
	fmt.Printf("  Status:   %s\n", t.Status)
	fmt.Printf("  Priority: %s\n", t.Priority)
	fmt.Printf("  Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	if t.DueDate != nil {
		fmt.Printf("  Due:      %s", t.DueDate.Format("2006-01-02"))
		if badge := dueBadge(t, time.Now()); badge != "" {
			fmt.Printf("  %s", badge)
		}
		fmt.Println()
	}
	if t.Category != "" {
		fmt.Printf("  Category: %s\n", t.Category)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("  Tags:     %s\n", strings.Join(t.Tags, ", "))
	}
	if t.ProjectID != nil {
		if p, err := a.projects.Get(*t.ProjectID); err == nil {
			fmt.Printf("  Project:  %s (#%d)\n", p.Name, p.ID)
		} else {
			fmt.Printf("  Project:  #%d\n", *t.ProjectID)
		}
	}
}

func dueBadge(t model.Task, now time.Time) string {
	c := due.Classify(t, now)
	switch {
	case c.Overdue:
		return "(overdue)"
	case c.DueToday:
		return "(due today)"
	case c.DueInDays:
		return "(due soon)"
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
