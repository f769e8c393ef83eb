package model

import "time"

// Project groups tasks under a required category.
type Project struct {
	ID          int
	Name        string
	Description string
	CategoryID  int
	CreatedAt   time.Time
}

// ProjectRecord is the storage shape of a Project.
type ProjectRecord struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  int    `json:"category_id"`
	CreatedAt   string `json:"created_at"`
}

// ToRecord converts a Project to its storage shape.
func (p Project) ToRecord() ProjectRecord {
	return ProjectRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// ProjectFromRecord converts a storage record back to a Project.
func ProjectFromRecord(rec ProjectRecord) Project {
	return Project{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		CategoryID:  rec.CategoryID,
		CreatedAt:   ParseTimeSafe(rec.CreatedAt),
	}
}

// ProjectForm holds the user-editable project fields.
type ProjectForm struct {
	Name        string
	Description string
	CategoryID  int
}

// ProjectPatch holds a partial project update.
type ProjectPatch struct {
	Name        *string
	Description *string
	CategoryID  *int
}
