// Package store implements the task, project, and category stores.
//
// Each store owns one in-memory collection backed by a whole-collection
// JSON snapshot in the storage layer: every mutation validates, updates
// the collection, and persists the full snapshot. Reads return copies.
//
// Cross-entity checks go through narrow read-only interfaces
// (CategoryDirectory, ProjectDirectory, TaskCascader) instead of one
// store reaching into another's state.
package store

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/model"
)

// Storage keys for the persisted collections. The names predate the Go
// rewrite and are kept so existing exports stay loadable.
const (
	TasksKey      = "tarefas_app"
	ProjectsKey   = "projetos_app"
	CategoriesKey = "categorias_projeto_app"
)

// CategoryDirectory is the read-only view the project store needs for
// foreign-key checks.
type CategoryDirectory interface {
	CategoryExists(id int) bool
}

// ProjectDirectory is the read-only view the category store needs to
// block deletes of referenced categories.
type ProjectDirectory interface {
	HasProjectsForCategory(categoryID int) bool
}

// TaskCascader lets the project store cascade-delete a project's tasks.
type TaskCascader interface {
	RemoveByProject(projectID int) error
}

// NotificationScheduler receives task mutations so reminders track the
// collection. Calls are best-effort: stores log failures and move on.
type NotificationScheduler interface {
	ScheduleTask(task model.Task) error
	CancelTask(taskID int) error
}

// subscribers is a change-notification callback registry shared by the
// stores. Callbacks run synchronously after a mutation has persisted.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

// add registers fn and returns an unsubscribe func.
func (s *subscribers) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func())
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func orDefault(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.Default()
}
