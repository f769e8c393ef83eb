// Package schema validates persisted collection payloads against
// embedded JSON Schemas before they are trusted.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Collection names with an embedded schema.
const (
	Tasks      = "tasks"
	Projects   = "projects"
	Categories = "categories"
)

// ValidationError reports the first schema violation found in a
// payload, with a JSON-path style location.
type ValidationError struct {
	Collection string
	Path       string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Collection, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Collection, e.Message)
}

// Validator holds the compiled collection schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	v := &Validator{schemas: make(map[string]*jsonschema.Schema)}
	for _, name := range []string{Tasks, Projects, Categories} {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", name, err)
		}
		url := name + ".schema.json"
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add %s schema: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// Validate checks a raw payload against the named collection schema.
func (v *Validator) Validate(collection string, data []byte) error {
	schema, ok := v.schemas[collection]
	if !ok {
		return fmt.Errorf("no schema for collection %q", collection)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationError{Collection: collection, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := schema.Validate(doc); err != nil {
		return mapValidationError(collection, err)
	}
	return nil
}

// mapValidationError converts a jsonschema error tree into the first
// leaf violation.
func mapValidationError(collection string, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Collection: collection, Message: err.Error()}
	}

	leaf := firstLeaf(ve)
	return &ValidationError{
		Collection: collection,
		Path:       pointerToPath(leaf.InstanceLocation),
		Message:    leaf.Message,
	}
}

func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// pointerToPath turns a JSON pointer ("/3/title") into a readable path
// ("[3].title").
func pointerToPath(pointer string) string {
	if pointer == "" {
		return ""
	}
	var b strings.Builder
	for _, segment := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if segment == "" {
			continue
		}
		isIndex := true
		for _, r := range segment {
			if r < '0' || r > '9' {
				isIndex = false
				break
			}
		}
		if isIndex {
			b.WriteString("[" + segment + "]")
		} else {
			if b.Len() > 0 {
				b.WriteString(".")
			}
			b.WriteString(segment)
		}
	}
	return b.String()
}
