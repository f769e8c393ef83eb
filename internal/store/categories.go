package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/model"
	"github.com/tarefo/tarefo/internal/schema"
	"github.com/tarefo/tarefo/internal/storage"
)

// CategoryStore owns the category collection. Deletion is blocked
// while the ProjectDirectory reports referencing projects.
type CategoryStore struct {
	mu         sync.RWMutex
	store      storage.Store
	validator  *schema.Validator
	projects   ProjectDirectory
	logger     *log.Logger
	categories []model.Category
	subs       subscribers
}

// NewCategoryStore loads the category collection. The project
// directory is bound afterwards with BindProjects, since the project
// store needs this store first.
func NewCategoryStore(st storage.Store, validator *schema.Validator, logger *log.Logger) *CategoryStore {
	s := &CategoryStore{
		store:     st,
		validator: validator,
		logger:    orDefault(logger),
	}
	s.load()
	return s
}

// BindProjects wires the read-only project view used by Remove.
func (s *CategoryStore) BindProjects(projects ProjectDirectory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
}

func (s *CategoryStore) load() {
	data, ok, err := s.store.Get(CategoriesKey)
	if err != nil {
		s.logger.Error("load categories", "err", err)
		return
	}
	if !ok {
		return
	}

	if s.validator != nil {
		if err := s.validator.Validate(schema.Categories, data); err != nil {
			s.logger.Warn("category payload failed schema validation, starting empty", "err", err)
			return
		}
	}

	var records []model.CategoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("parse categories", "err", err)
		return
	}
	categories := make([]model.Category, len(records))
	for i, rec := range records {
		categories[i] = model.CategoryFromRecord(rec)
	}
	s.categories = categories
}

func (s *CategoryStore) persist() {
	records := make([]model.CategoryRecord, len(s.categories))
	for i, c := range s.categories {
		records[i] = c.ToRecord()
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.logger.Error("marshal categories", "err", err)
		return
	}
	if err := s.store.Put(CategoriesKey, data); err != nil {
		s.logger.Error("save categories", "err", err)
	}
}

// Subscribe registers a change callback; the returned func removes it.
func (s *CategoryStore) Subscribe(fn func()) func() {
	return s.subs.add(fn)
}

func (s *CategoryStore) nextID() int {
	max := 0
	for _, c := range s.categories {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// nameTaken reports whether another category already uses the name,
// comparing case-insensitively. Callers hold the lock.
func (s *CategoryStore) nameTaken(name string, excludeID int) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.categories {
		if c.ID != excludeID && strings.ToLower(c.Name) == lower {
			return true
		}
	}
	return false
}

// All returns all categories.
func (s *CategoryStore) All() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Get returns the category with the given id.
func (s *CategoryStore) Get(id int) (model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, &NotFoundError{Entity: "category", ID: id}
}

// CategoryExists reports whether the id resolves. Implements
// CategoryDirectory for the project store.
func (s *CategoryStore) CategoryExists(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Create validates the form and appends a new category.
func (s *CategoryStore) Create(form model.CategoryForm) (model.Category, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return model.Category{}, &ValidationError{Field: "name", Message: "name is required"}
	}

	s.mu.Lock()
	if s.nameTaken(name, 0) {
		s.mu.Unlock()
		return model.Category{}, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("a category named %q already exists", name),
		}
	}
	category := model.Category{
		ID:        s.nextID(),
		Name:      name,
		Color:     strings.TrimSpace(form.Color),
		Icon:      strings.TrimSpace(form.Icon),
		CreatedAt: time.Now(),
	}
	s.categories = append(s.categories, category)
	s.persist()
	s.mu.Unlock()

	s.subs.notify()
	return category, nil
}

// Update merges the patch over the existing category. The uniqueness
// check excludes the category being updated.
func (s *CategoryStore) Update(id int, patch model.CategoryPatch) (model.Category, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Category{}, &ValidationError{Field: "name", Message: "name is required"}
	}

	s.mu.Lock()
	idx := -1
	for i := range s.categories {
		if s.categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return model.Category{}, &NotFoundError{Entity: "category", ID: id}
	}

	if patch.Name != nil && s.nameTaken(*patch.Name, id) {
		s.mu.Unlock()
		return model.Category{}, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("a category named %q already exists", strings.TrimSpace(*patch.Name)),
		}
	}

	category := s.categories[idx]
	if patch.Name != nil {
		category.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		category.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.Icon != nil {
		category.Icon = strings.TrimSpace(*patch.Icon)
	}
	s.categories[idx] = category
	s.persist()
	s.mu.Unlock()

	s.subs.notify()
	return category, nil
}

// Remove deletes the category unless projects still reference it.
func (s *CategoryStore) Remove(id int) error {
	s.mu.Lock()
	idx := -1
	for i := range s.categories {
		if s.categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return &NotFoundError{Entity: "category", ID: id}
	}
	if s.projects != nil && s.projects.HasProjectsForCategory(id) {
		s.mu.Unlock()
		return &ConstraintError{Message: "category has associated projects and cannot be removed"}
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	s.persist()
	s.mu.Unlock()

	s.subs.notify()
	return nil
}
