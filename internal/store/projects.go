package store

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/model"
	"github.com/tarefo/tarefo/internal/schema"
	"github.com/tarefo/tarefo/internal/storage"
)

// ProjectStore owns the project collection. Category references are
// checked through the CategoryDirectory, and deletes cascade to tasks
// through the TaskCascader.
type ProjectStore struct {
	mu         sync.RWMutex
	store      storage.Store
	validator  *schema.Validator
	categories CategoryDirectory
	tasks      TaskCascader
	logger     *log.Logger
	projects   []model.Project
	subs       subscribers
}

// NewProjectStore loads the project collection.
func NewProjectStore(st storage.Store, validator *schema.Validator, categories CategoryDirectory, tasks TaskCascader, logger *log.Logger) *ProjectStore {
	s := &ProjectStore{
		store:      st,
		validator:  validator,
		categories: categories,
		tasks:      tasks,
		logger:     orDefault(logger),
	}
	s.load()
	return s
}

func (s *ProjectStore) load() {
	data, ok, err := s.store.Get(ProjectsKey)
	if err != nil {
		s.logger.Error("load projects", "err", err)
		return
	}
	if !ok {
		return
	}

	if s.validator != nil {
		if err := s.validator.Validate(schema.Projects, data); err != nil {
			s.logger.Warn("project payload failed schema validation, starting empty", "err", err)
			return
		}
	}

	var records []model.ProjectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("parse projects", "err", err)
		return
	}
	projects := make([]model.Project, len(records))
	for i, rec := range records {
		projects[i] = model.ProjectFromRecord(rec)
	}
	s.projects = projects
}

func (s *ProjectStore) persist() {
	records := make([]model.ProjectRecord, len(s.projects))
	for i, p := range s.projects {
		records[i] = p.ToRecord()
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.logger.Error("marshal projects", "err", err)
		return
	}
	if err := s.store.Put(ProjectsKey, data); err != nil {
		s.logger.Error("save projects", "err", err)
	}
}

// Subscribe registers a change callback; the returned func removes it.
func (s *ProjectStore) Subscribe(fn func()) func() {
	return s.subs.add(fn)
}

func (s *ProjectStore) nextID() int {
	max := 0
	for _, p := range s.projects {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// All returns all projects.
func (s *ProjectStore) All() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Get returns the project with the given id.
func (s *ProjectStore) Get(id int) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, &NotFoundError{Entity: "project", ID: id}
}

// ByCategory returns the projects of one category.
func (s *ProjectStore) ByCategory(categoryID int) []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Project
	for _, p := range s.projects {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// HasProjectsForCategory reports whether any project references the
// category. Implements ProjectDirectory for the category store.
func (s *ProjectStore) HasProjectsForCategory(categoryID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// Create validates the form and appends a new project.
func (s *ProjectStore) Create(form model.ProjectForm) (model.Project, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return model.Project{}, &ValidationError{Field: "name", Message: "name is required"}
	}
	if s.categories == nil || !s.categories.CategoryExists(form.CategoryID) {
		return model.Project{}, &ValidationError{Field: "category_id", Message: "invalid category"}
	}

	s.mu.Lock()
	project := model.Project{
		ID:          s.nextID(),
		Name:        name,
		Description: strings.TrimSpace(form.Description),
		CategoryID:  form.CategoryID,
		CreatedAt:   time.Now(),
	}
	s.projects = append(s.projects, project)
	s.persist()
	s.mu.Unlock()

	s.subs.notify()
	return project, nil
}

// Update merges the patch over the existing project, validating only
// the fields present.
func (s *ProjectStore) Update(id int, patch model.ProjectPatch) (model.Project, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Project{}, &ValidationError{Field: "name", Message: "name is required"}
	}
	if patch.CategoryID != nil {
		if s.categories == nil || !s.categories.CategoryExists(*patch.CategoryID) {
			return model.Project{}, &ValidationError{Field: "category_id", Message: "invalid category"}
		}
	}

	s.mu.Lock()
	idx := -1
	for i := range s.projects {
		if s.projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return model.Project{}, &NotFoundError{Entity: "project", ID: id}
	}

	project := s.projects[idx]
	if patch.Name != nil {
		project.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		project.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.CategoryID != nil {
		project.CategoryID = *patch.CategoryID
	}
	s.projects[idx] = project
	s.persist()
	s.mu.Unlock()

	s.subs.notify()
	return project, nil
}

// Remove deletes the project and cascades to its tasks.
func (s *ProjectStore) Remove(id int) error {
	s.mu.Lock()
	idx := -1
	for i := range s.projects {
		if s.projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return &NotFoundError{Entity: "project", ID: id}
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	s.persist()
	s.mu.Unlock()

	if s.tasks != nil {
		if err := s.tasks.RemoveByProject(id); err != nil {
			s.logger.Error("cascade project tasks", "project", id, "err", err)
		}
	}
	s.subs.notify()
	return nil
}
