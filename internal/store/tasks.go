package store

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/due"
	"github.com/tarefo/tarefo/internal/model"
	"github.com/tarefo/tarefo/internal/ordering"
	"github.com/tarefo/tarefo/internal/schema"
	"github.com/tarefo/tarefo/internal/storage"
)

// TaskStore owns the task collection.
type TaskStore struct {
	mu        sync.RWMutex
	store     storage.Store
	validator *schema.Validator
	scheduler NotificationScheduler
	logger    *log.Logger
	tasks     []model.Task
	subs      subscribers
}

// NewTaskStore loads (or seeds) the task collection. A nil scheduler
// disables notification wiring; a nil validator skips schema checks.
func NewTaskStore(st storage.Store, validator *schema.Validator, scheduler NotificationScheduler, logger *log.Logger) *TaskStore {
	s := &TaskStore{
		store:     st,
		validator: validator,
		scheduler: scheduler,
		logger:    orDefault(logger),
	}
	s.load()
	return s
}

// load reads the persisted collection. Missing key seeds defaults and
// persists them; a corrupt payload degrades to the seed without
// overwriting whatever is on disk.
func (s *TaskStore) load() {
	data, ok, err := s.store.Get(TasksKey)
	if err != nil {
		s.logger.Error("load tasks", "err", err)
		s.tasks = seedTasks()
		return
	}
	if !ok {
		s.tasks = seedTasks()
		s.persist()
		return
	}

	if s.validator != nil {
		if err := s.validator.Validate(schema.Tasks, data); err != nil {
			s.logger.Warn("task payload failed schema validation, using defaults", "err", err)
			s.tasks = seedTasks()
			return
		}
	}

	var records []model.TaskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("parse tasks", "err", err)
		s.tasks = seedTasks()
		return
	}

	tasks := make([]model.Task, len(records))
	for i, rec := range records {
		tasks[i] = model.TaskFromRecord(rec, i)
	}
	s.tasks = tasks
}

// seedTasks is the first-run collection.
func seedTasks() []model.Task {
	now := time.Now()
	return []model.Task{
		{
			ID: 1, Title: "Estudar Angular",
			Description: "Revisar documentação e fazer exercícios práticos",
			Status:      model.StatusTodo, Priority: model.PriorityHigh,
			CreatedAt: now, Category: "Estudos",
			Tags: []string{"angular", "estudo"}, Ordinal: 0,
		},
		{
			ID: 2, Title: "Trabalho de Programação Móvel",
			Description: "Desenvolver aplicação completa",
			Status:      model.StatusInProgress, Priority: model.PriorityHigh,
			CreatedAt: now, Category: "Projetos",
			Tags: []string{"projeto"}, Ordinal: 1,
		},
		{
			ID: 3, Title: "Lanche de curso",
			Description: "Organizar lanche para o curso",
			Status:      model.StatusTodo, Priority: model.PriorityLow,
			CreatedAt: now, Category: "Pessoais",
			Tags: []string{"pessoal"}, Ordinal: 2,
		},
	}
}

// persist writes the whole collection. Write failures are logged, not
// propagated: the in-memory state stays authoritative.
func (s *TaskStore) persist() {
	records := make([]model.TaskRecord, len(s.tasks))
	for i, task := range s.tasks {
		records[i] = task.ToRecord()
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.logger.Error("marshal tasks", "err", err)
		return
	}
	if err := s.store.Put(TasksKey, data); err != nil {
		s.logger.Error("save tasks", "err", err)
	}
}

// Subscribe registers a callback invoked after every mutation. The
// returned func unsubscribes.
func (s *TaskStore) Subscribe(fn func()) func() {
	return s.subs.add(fn)
}

func (s *TaskStore) nextID() int {
	max := 0
	for _, task := range s.tasks {
		if task.ID > max {
			max = task.ID
		}
	}
	return max + 1
}

// All returns the collection in canonical order.
func (s *TaskStore) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ordering.Sorted(s.tasks)
}

// Get returns the task with the given id.
func (s *TaskStore) Get(id int) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return model.Task{}, &NotFoundError{Entity: "task", ID: id}
}

// ByStatus returns tasks with the given status, in canonical order.
func (s *TaskStore) ByStatus(status model.Status) []model.Task {
	return s.filtered(func(t model.Task) bool { return t.Status == status })
}

// ByProject returns the tasks of one project, in canonical order.
func (s *TaskStore) ByProject(projectID int) []model.Task {
	return s.filtered(func(t model.Task) bool {
		return t.ProjectID != nil && *t.ProjectID == projectID
	})
}

// Overdue returns tasks whose due date has passed, excluding done ones.
func (s *TaskStore) Overdue(today time.Time) []model.Task {
	return s.filtered(func(t model.Task) bool { return due.IsOverdue(t, today) })
}

// DueToday returns tasks due on today's calendar day.
func (s *TaskStore) DueToday(today time.Time) []model.Task {
	return s.filtered(func(t model.Task) bool { return due.IsDueToday(t, today) })
}

// DueSoon returns tasks due within the next seven days, today and the
// seventh day included.
func (s *TaskStore) DueSoon(today time.Time) []model.Task {
	return s.filtered(func(t model.Task) bool {
		return due.IsDueWithin(t, today, due.DefaultWindowDays)
	})
}

// Search matches the query case-insensitively against title,
// description, legacy category, and tags.
func (s *TaskStore) Search(query string) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.All()
	}
	return s.filtered(func(t model.Task) bool {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Category), q) {
			return true
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// LegacyCategories returns the distinct free-text categories still
// present on tasks, in first-seen order.
func (s *TaskStore) LegacyCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, task := range s.tasks {
		if task.Category == "" || seen[task.Category] {
			continue
		}
		seen[task.Category] = true
		out = append(out, task.Category)
	}
	return out
}

func (s *TaskStore) filtered(keep func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, task := range s.tasks {
		if keep(task) {
			out = append(out, task)
		}
	}
	ordering.Sort(out)
	return out
}

// Create validates the form, assigns the next id and the last ordinal,
// persists, and schedules the task's reminders.
func (s *TaskStore) Create(form model.TaskForm) (model.Task, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return model.Task{}, &ValidationError{Field: "title", Message: "title is required"}
	}
	status := form.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !model.ValidStatus(status) {
		return model.Task{}, &ValidationError{Field: "status", Message: "invalid status " + string(status)}
	}
	priority := form.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return model.Task{}, &ValidationError{Field: "priority", Message: "invalid priority " + string(priority)}
	}

	s.mu.Lock()
	task := model.Task{
		ID:          s.nextID(),
		Title:       title,
		Description: strings.TrimSpace(form.Description),
		Status:      status,
		Priority:    priority,
		CreatedAt:   time.Now(),
		DueDate:     form.DueDate,
		Category:    strings.TrimSpace(form.Category),
		Tags:        form.Tags,
		ProjectID:   form.ProjectID,
		Ordinal:     len(s.tasks),
	}
	s.tasks = append(s.tasks, task)
	s.persist()
	s.mu.Unlock()

	s.scheduleBestEffort(task)
	s.subs.notify()
	return task, nil
}

// Update merges the patch over the existing task, persists, and
// reschedules its reminders.
func (s *TaskStore) Update(id int, patch model.TaskPatch) (model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Task{}, &ValidationError{Field: "title", Message: "title is required"}
	}
	if patch.Status != nil && !model.ValidStatus(*patch.Status) {
		return model.Task{}, &ValidationError{Field: "status", Message: "invalid status " + string(*patch.Status)}
	}
	if patch.Priority != nil && !model.ValidPriority(*patch.Priority) {
		return model.Task{}, &ValidationError{Field: "priority", Message: "invalid priority " + string(*patch.Priority)}
	}

	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return model.Task{}, &NotFoundError{Entity: "task", ID: id}
	}

	task := s.tasks[idx]
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.ClearDue {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Category != nil {
		task.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Tags != nil {
		task.Tags = patch.Tags
	}
	if patch.ClearProj {
		task.ProjectID = nil
	} else if patch.ProjectID != nil {
		task.ProjectID = patch.ProjectID
	}

	s.tasks[idx] = task
	s.persist()
	s.mu.Unlock()

	s.scheduleBestEffort(task)
	s.subs.notify()
	return task, nil
}

// Remove deletes the task and cancels its reminders.
func (s *TaskStore) Remove(id int) error {
	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return &NotFoundError{Entity: "task", ID: id}
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.persist()
	s.mu.Unlock()

	s.cancelBestEffort(id)
	s.subs.notify()
	return nil
}

// RemoveByProject deletes every task of a project. Used by the project
// store's cascade.
func (s *TaskStore) RemoveByProject(projectID int) error {
	s.mu.Lock()
	var kept []model.Task
	var removed []int
	for _, task := range s.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			removed = append(removed, task.ID)
			continue
		}
		kept = append(kept, task)
	}
	s.tasks = kept
	if len(removed) > 0 {
		s.persist()
	}
	s.mu.Unlock()

	for _, id := range removed {
		s.cancelBestEffort(id)
	}
	if len(removed) > 0 {
		s.subs.notify()
	}
	return nil
}

// MoveToProject reassigns a task to a project, or detaches it when
// projectID is nil, then reschedules its reminders.
func (s *TaskStore) MoveToProject(taskID int, projectID *int) (model.Task, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return model.Task{}, &NotFoundError{Entity: "task", ID: taskID}
	}
	s.tasks[idx].ProjectID = projectID
	task := s.tasks[idx]
	s.persist()
	s.mu.Unlock()

	s.scheduleBestEffort(task)
	s.subs.notify()
	return task, nil
}

// Move relocates a task within its ordering scope (all tasks when
// projectID is nil, one project's tasks otherwise) and renumbers the
// scope densely. Tasks outside the scope keep their ordinals.
func (s *TaskStore) Move(from, to int, projectID *int) error {
	s.mu.Lock()
	var scope []model.Task
	for _, task := range s.tasks {
		if projectID != nil && (task.ProjectID == nil || *task.ProjectID != *projectID) {
			continue
		}
		scope = append(scope, task)
	}
	ordering.Sort(scope)

	reordered, err := ordering.Move(scope, from, to)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tasks = ordering.ApplyScope(s.tasks, reordered, projectID)
	s.persist()
	s.mu.Unlock()

	s.subs.notify()
	return nil
}

// ApplyOrder persists new ordinals from an already-reordered view, as
// produced by the TUI. Positions in the slice become ordinals; only
// tasks inside the scope change.
func (s *TaskStore) ApplyOrder(reordered []model.Task, projectID *int) {
	s.mu.Lock()
	s.tasks = ordering.ApplyScope(s.tasks, reordered, projectID)
	s.persist()
	s.mu.Unlock()
	s.subs.notify()
}

func (s *TaskStore) scheduleBestEffort(task model.Task) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.ScheduleTask(task); err != nil {
		s.logger.Error("schedule reminder", "task", task.ID, "err", err)
	}
}

func (s *TaskStore) cancelBestEffort(taskID int) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.CancelTask(taskID); err != nil {
		s.logger.Error("cancel reminder", "task", taskID, "err", err)
	}
}
