package cmd

import (
	"flag"
	"fmt"

	"github.com/tarefo/tarefo/internal/model"
)

func projectCommand(a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("project subcommand required: add, ls, show, edit, rm")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		return projectAdd(a, rest)
	case "ls", "list":
		return projectList(a, rest)
	case "show":
		return projectShow(a, rest)
	case "edit":
		return projectEdit(a, rest)
	case "rm", "remove":
		return projectRemove(a, rest)
	default:
		return fmt.Errorf("unknown project subcommand: %s", sub)
	}
}

func projectAdd(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo project add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Project description")
	category := fs.Int("category", 0, "Category id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	project, err := a.projects.Create(model.ProjectForm{
		Name:        joinRest(fs.Args()),
		Description: *desc,
		CategoryID:  *category,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created project %d: %s\n", project.ID, project.Name)
	return nil
}

func projectList(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo project ls", flag.ContinueOnError)
	category := fs.Int("category", 0, "Filter by category id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var projects []model.Project
	if *category > 0 {
		projects = a.projects.ByCategory(*category)
	} else {
		projects = a.projects.All()
	}
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}
	for _, p := range projects {
		count := len(a.tasks.ByProject(p.ID))
		categoryName := fmt.Sprintf("#%d", p.CategoryID)
		if c, err := a.categories.Get(p.CategoryID); err == nil {
			categoryName = c.Name
		}
		fmt.Printf("  #%-3d %-24s %-16s %d tasks\n", p.ID, p.Name, categoryName, count)
	}
	return nil
}

func projectShow(a *app, args []string) error {
	id, _, err := parseID(args, "project")
	if err != nil {
		return err
	}
	project, err := a.projects.Get(id)
	if err != nil {
		return err
	}

	fmt.Printf("Project #%d\n", project.ID)
	fmt.Printf("  Name:     %s\n", project.Name)
	if project.Description != "" {
		fmt.Printf("  Desc:     %s\n", project.Description)
	}
	if c, err := a.categories.Get(project.CategoryID); err == nil {
		fmt.Printf("  Category: %s (#%d)\n", c.Name, c.ID)
	} else {
		fmt.Printf("  Category: #%d\n", project.CategoryID)
	}
	fmt.Printf("  Created:  %s\n", project.CreatedAt.Format("2006-01-02 15:04"))

	tasks := a.tasks.ByProject(project.ID)
	fmt.Printf("  Tasks:    %d\n", len(tasks))
	printTaskList(a, tasks, false)
	return nil
}

func projectEdit(a *app, args []string) error {
	id, rest, err := parseID(args, "project")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("tarefo project edit", flag.ContinueOnError)
	name := fs.String("name", "", "New name")
	desc := fs.String("desc", "", "New description")
	category := fs.Int("category", 0, "New category id")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var patch model.ProjectPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "desc":
			patch.Description = desc
		case "category":
			patch.CategoryID = category
		}
	})

	project, err := a.projects.Update(id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated project %d\n", project.ID)
	return nil
}

func projectRemove(a *app, args []string) error {
	id, _, err := parseID(args, "project")
	if err != nil {
		return err
	}
	count := len(a.tasks.ByProject(id))
	if err := a.projects.Remove(id); err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("Removed project %d and its %d tasks\n", id, count)
	} else {
		fmt.Printf("Removed project %d\n", id)
	}
	return nil
}
