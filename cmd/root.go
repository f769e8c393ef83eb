// Package cmd implements the CLI command structure for tarefo.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/config"
	"github.com/tarefo/tarefo/internal/logging"
	"github.com/tarefo/tarefo/internal/notify"
	"github.com/tarefo/tarefo/internal/schema"
	"github.com/tarefo/tarefo/internal/storage"
	"github.com/tarefo/tarefo/internal/store"
	"github.com/tarefo/tarefo/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tarefo CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tarefo", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, os.Stdout)
		return nil
	}
	subcommand := remaining[0]
	remaining = remaining[1:]

	switch subcommand {
	case "task", "t":
		return withApp(cfg, func(a *app) error { return taskCommand(a, remaining) })
	case "project", "p":
		return withApp(cfg, func(a *app) error { return projectCommand(a, remaining) })
	case "category", "c":
		return withApp(cfg, func(a *app) error { return categoryCommand(a, remaining) })
	case "notify", "n":
		return withApp(cfg, func(a *app) error { return notifyCommand(a, remaining) })
	case "tui":
		return withApp(cfg, func(a *app) error {
			return ui.RunBoard(ctx, a.tasks, a.projects)
		})
	case "doctor":
		return doctorCommand(cfg, remaining)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// app bundles the wired stores for one invocation.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	kv         storage.Store
	scheduler  *notify.Scheduler
	notifyCfg  *notify.ConfigStore
	tasks      *store.TaskStore
	projects   *store.ProjectStore
	categories *store.CategoryStore
}

func openApp(cfg *config.Config) (*app, error) {
	logger := logging.New(cfg)

	kv, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage in %s: %w", cfg.Storage, cfg.DataDir, err)
	}

	validator, err := schema.New()
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("compiling schemas: %w", err)
	}

	platform := notify.Platform(notify.NewSpoolPlatform(kv, logger))
	notifyCfg := notify.NewConfigStore(kv, logger)
	scheduler := notify.NewScheduler(platform, notifyCfg, logger)

	tasks := store.NewTaskStore(kv, validator, scheduler, logger)
	categories := store.NewCategoryStore(kv, validator, logger)
	projects := store.NewProjectStore(kv, validator, categories, tasks, logger)
	categories.BindProjects(projects)

	// Startup reconciliation: the pending spool follows the collection,
	// not the other way around.
	if err := scheduler.RescheduleAll(tasks.All()); err != nil {
		logger.Warn("reschedule reminders at startup", "err", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		kv:         kv,
		scheduler:  scheduler,
		notifyCfg:  notifyCfg,
		tasks:      tasks,
		projects:   projects,
		categories: categories,
	}, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}

// withApp opens the stores, runs fn, and closes the backend.
func withApp(cfg *config.Config, fn func(*app) error) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// doctorCommand checks storage, config, and collection validity.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tarefo doctor", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Tarefo Doctor")
	fmt.Println("=============")
	fmt.Println()

	allOK := true

	fmt.Printf("Data dir: %s\n", cfg.DataDir)
	if info, err := os.Stat(cfg.DataDir); err != nil {
		fmt.Println("  - missing (created on first write)")
	} else if !info.IsDir() {
		fmt.Println("  ✗ not a directory")
		allOK = false
	} else {
		fmt.Println("  ✓ OK")
	}
	fmt.Println()

	fmt.Printf("Storage driver: %s\n", cfg.Storage)
	kv, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		return fmt.Errorf("doctor found problems")
	}
	defer kv.Close()
	fmt.Println("  ✓ OK")
	fmt.Println()

	validator, err := schema.New()
	if err != nil {
		return fmt.Errorf("compiling schemas: %w", err)
	}

	checks := []struct {
		label      string
		key        string
		collection string
	}{
		{"Tasks", store.TasksKey, schema.Tasks},
		{"Projects", store.ProjectsKey, schema.Projects},
		{"Categories", store.CategoriesKey, schema.Categories},
	}
	for _, c := range checks {
		fmt.Printf("%s (%s)\n", c.label, c.key)
		data, ok, err := kv.Get(c.key)
		switch {
		case err != nil:
			fmt.Printf("  ✗ read failed: %v\n", err)
			allOK = false
		case !ok:
			fmt.Println("  - not present yet")
		default:
			if err := validator.Validate(c.collection, data); err != nil {
				fmt.Printf("  ✗ invalid: %v\n", err)
				allOK = false
			} else {
				fmt.Println("  ✓ valid")
			}
		}
		fmt.Println()
	}

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func versionCommand() error {
	fmt.Printf("tarefo %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tarefo - local task, project, and category manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tarefo [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  task      Manage tasks (add, ls, show, edit, done, rm, move, assign, search)")
	fmt.Fprintln(w, "  project   Manage projects (add, ls, show, edit, rm)")
	fmt.Fprintln(w, "  category  Manage categories (add, ls, edit, rm)")
	fmt.Fprintln(w, "  notify    Reminder settings and pending reminders")
	fmt.Fprintln(w, "  tui       Open the interactive task board")
	fmt.Fprintln(w, "  doctor    Check storage and collection validity")
	fmt.Fprintln(w, "  version   Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// parseID parses a positional numeric id argument.
func parseID(args []string, entity string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%s id required", entity)
	}
	var id int
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid %s id %q", entity, args[0])
	}
	return id, args[1:], nil
}

func joinRest(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
