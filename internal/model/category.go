package model

import "time"

// Category groups projects. Names are unique case-insensitively.
type Category struct {
	ID        int
	Name      string
	Color     string // hex color for the UI, e.g. "#3880ff"
	Icon      string // icon glyph name
	CreatedAt time.Time
}

// CategoryRecord is the storage shape of a Category.
type CategoryRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ToRecord converts a Category to its storage shape.
func (c Category) ToRecord() CategoryRecord {
	return CategoryRecord{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// CategoryFromRecord converts a storage record back to a Category.
func CategoryFromRecord(rec CategoryRecord) Category {
	return Category{
		ID:        rec.ID,
		Name:      rec.Name,
		Color:     rec.Color,
		Icon:      rec.Icon,
		CreatedAt: ParseTimeSafe(rec.CreatedAt),
	}
}

// CategoryForm holds the user-editable category fields.
type CategoryForm struct {
	Name  string
	Color string
	Icon  string
}

// CategoryPatch holds a partial category update.
type CategoryPatch struct {
	Name  *string
	Color *string
	Icon  *string
}
