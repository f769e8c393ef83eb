package cmd

import (
	"context"
	"os"
	"strings"
	"testing"
)

// isolate keeps real user data and config out of command tests.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home+"/.config")
	t.Setenv("TAREFO_DATA_DIR", t.TempDir())
	chdir(t, t.TempDir())
}

// chdir changes the working directory for the test and restores it on
// cleanup, like t.Chdir in Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestRunUnknownCommand(t *testing.T) {
	isolate(t)

	err := Run(context.Background(), []string{"frobnicate"})
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %v, want unknown command", err)
	}
}

func TestRunNoArgsShowsUsage(t *testing.T) {
	isolate(t)

	if err := Run(context.Background(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	isolate(t)

	if err := Run(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("Run version: %v", err)
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	steps := [][]string{
		{"category", "add", "Work"},
		{"project", "add", "-category", "1", "App"},
		{"task", "add", "-project", "1", "-due", "2030-01-02", "Ship", "it"},
		{"task", "ls", "-v"},
		{"task", "show", "4"},
		{"task", "edit", "4", "-priority", "high"},
		{"task", "done", "4"},
		{"notify", "status"},
		{"notify", "due"},
		{"doctor"},
		{"task", "rm", "4"},
		{"project", "rm", "1"},
		{"category", "rm", "1"},
	}
	for _, args := range steps {
		if err := Run(ctx, args); err != nil {
			t.Fatalf("Run %v: %v", args, err)
		}
	}
}

func TestRunTaskValidationErrorSurfaces(t *testing.T) {
	isolate(t)

	err := Run(context.Background(), []string{"project", "add", "-category", "9", "Ghost"})
	if err == nil {
		t.Fatal("Run succeeded, want validation error")
	}
	if !strings.Contains(err.Error(), "invalid category") {
		t.Errorf("error = %v, want invalid category", err)
	}
}

func TestRunSQLiteBackend(t *testing.T) {
	isolate(t)
	t.Setenv("TAREFO_STORAGE", "sqlite")

	if err := Run(context.Background(), []string{"task", "ls"}); err != nil {
		t.Fatalf("Run with sqlite backend: %v", err)
	}
}
