package model

import (
	"time"
)

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the known priority values.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single task, optionally attached to a project.
type Task struct {
	ID          int
	Title       string
	Description string
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	DueDate     *time.Time
	Category    string // legacy free-text category, kept for old data
	Tags        []string
	ProjectID   *int
	Ordinal     int
}

// TaskRecord is the storage shape of a Task. Dates are RFC 3339 strings
// and fields added after the first release are pointers so older
// payloads still decode.
type TaskRecord struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	CreatedAt   string   `json:"created_at"`
	DueDate     *string  `json:"due_date,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ProjectID   *int     `json:"project_id,omitempty"`
	Ordinal     *int     `json:"ordinal,omitempty"`
}

// ToRecord converts a Task to its storage shape.
func (t Task) ToRecord() TaskRecord {
	rec := TaskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		Category:    t.Category,
		Tags:        t.Tags,
		ProjectID:   t.ProjectID,
	}
	ord := t.Ordinal
	rec.Ordinal = &ord
	if t.DueDate != nil {
		due := t.DueDate.Format(time.RFC3339)
		rec.DueDate = &due
	}
	return rec
}

// TaskFromRecord converts a storage record back to a Task. Malformed
// dates fall back to the current time (with a logged warning), and a
// missing ordinal defaults to index, the record's position in load
// order.
func TaskFromRecord(rec TaskRecord, index int) Task {
	t := Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      rec.Status,
		Priority:    rec.Priority,
		CreatedAt:   ParseTimeSafe(rec.CreatedAt),
		Category:    rec.Category,
		Tags:        rec.Tags,
		ProjectID:   rec.ProjectID,
		Ordinal:     index,
	}
	if rec.DueDate != nil {
		due := ParseTimeSafe(*rec.DueDate)
		t.DueDate = &due
	}
	if rec.Ordinal != nil {
		t.Ordinal = *rec.Ordinal
	}
	return t
}

// TaskForm holds the user-editable task fields for create operations.
type TaskForm struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	Category    string
	Tags        []string
	ProjectID   *int
}

// TaskPatch holds a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	ClearDue    bool
	Category    *string
	Tags        []string
	ProjectID   *int
	ClearProj   bool
}
