package cmd

import (
	"flag"
	"fmt"

	"github.com/tarefo/tarefo/internal/model"
)

func categoryCommand(a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("category subcommand required: add, ls, edit, rm")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		return categoryAdd(a, rest)
	case "ls", "list":
		return categoryList(a, rest)
	case "edit":
		return categoryEdit(a, rest)
	case "rm", "remove":
		return categoryRemove(a, rest)
	default:
		return fmt.Errorf("unknown category subcommand: %s", sub)
	}
}

func categoryAdd(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo category add", flag.ContinueOnError)
	color := fs.String("color", "", "Display color")
	icon := fs.String("icon", "", "Display icon")
	if err := fs.Parse(args); err != nil {
		return err
	}

	category, err := a.categories.Create(model.CategoryForm{
		Name:  joinRest(fs.Args()),
		Color: *color,
		Icon:  *icon,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created category %d: %s\n", category.ID, category.Name)
	return nil
}

func categoryList(a *app, args []string) error {
	fs := flag.NewFlagSet("tarefo category ls", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	categories := a.categories.All()
	if len(categories) == 0 {
		fmt.Println("No categories found.")
		return nil
	}
	for _, c := range categories {
		count := len(a.projects.ByCategory(c.ID))
		fmt.Printf("  #%-3d %-24s %d projects\n", c.ID, c.Name, count)
	}
	return nil
}

func categoryEdit(a *app, args []string) error {
	id, rest, err := parseID(args, "category")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("tarefo category edit", flag.ContinueOnError)
	name := fs.String("name", "", "New name")
	color := fs.String("color", "", "New color")
	icon := fs.String("icon", "", "New icon")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var patch model.CategoryPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "color":
			patch.Color = color
		case "icon":
			patch.Icon = icon
		}
	})

	category, err := a.categories.Update(id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated category %d\n", category.ID)
	return nil
}

func categoryRemove(a *app, args []string) error {
	id, _, err := parseID(args, "category")
	if err != nil {
		return err
	}
	if err := a.categories.Remove(id); err != nil {
		return err
	}
	fmt.Printf("Removed category %d\n", id)
	return nil
}
