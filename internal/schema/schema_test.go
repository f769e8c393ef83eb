package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTasks(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "empty collection",
			payload: `[]`,
		},
		{
			name: "full task",
			payload: `[{"id":1,"title":"T","description":"d","status":"todo",
				"priority":"high","created_at":"2024-01-01T00:00:00Z",
				"due_date":"2024-01-10T00:00:00Z","category":"Work",
				"tags":["a"],"project_id":2,"ordinal":0}]`,
		},
		{
			name: "legacy task without ordinal or project",
			payload: `[{"id":1,"title":"T","status":"todo","priority":"low",
				"created_at":"2024-01-01T00:00:00Z"}]`,
		},
		{
			name:    "bad status",
			payload: `[{"id":1,"title":"T","status":"paused","priority":"low","created_at":"x"}]`,
			wantErr: true,
		},
		{
			name:    "missing title",
			payload: `[{"id":1,"status":"todo","priority":"low","created_at":"x"}]`,
			wantErr: true,
		},
		{
			name:    "not an array",
			payload: `{"tasks":[]}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			payload: `[`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(Tasks, []byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error should be *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestValidateProjectsAndCategories(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := v.Validate(Projects, []byte(`[{"id":1,"name":"P","category_id":1,"created_at":"2024-01-01T00:00:00Z"}]`)); err != nil {
		t.Errorf("valid project rejected: %v", err)
	}
	if err := v.Validate(Projects, []byte(`[{"id":1,"name":"P","created_at":"x"}]`)); err == nil {
		t.Error("project without category_id accepted")
	}
	if err := v.Validate(Categories, []byte(`[{"id":1,"name":"Work","color":"#fff","created_at":"x"}]`)); err != nil {
		t.Errorf("valid category rejected: %v", err)
	}
	if err := v.Validate(Categories, []byte(`[{"id":1,"created_at":"x"}]`)); err == nil {
		t.Error("category without name accepted")
	}
}

func TestValidationErrorPath(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = v.Validate(Tasks, []byte(`[{"id":1,"title":"T","status":"nope","priority":"low","created_at":"x"}]`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got %T", err)
	}
	if !strings.Contains(ve.Path, "[0]") {
		t.Errorf("path should point into element 0, got %q", ve.Path)
	}
}
