package lesson

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const contentSchemaURL = "schema://lesson-content.json"

// contentSchema is the minimal shape every served content document must
// have. Unknown keys are allowed so newer servers stay compatible.
var contentSchema = map[string]any{
	"type":     "object",
	"required": []any{"sections"},
	"properties": map[string]any{
		"sections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"type"},
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []any{"overview", "teach", "vocab", "grammar", "patterns", "build", "listen", "dictation", "review"},
					},
					"title": map[string]any{"type": "string"},
					"text":  map[string]any{"type": "string"},
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"term", "translation"},
						},
					},
					"points": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"title", "explanation"},
						},
					},
					"examples": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "object", "required": []any{"english"}},
					},
					"tasks": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "object", "required": []any{"prompt"}},
					},
				},
			},
		},
	},
}

var (
	compileOnce     sync.Once
	compiledContent *jsonschema.Schema
	compileErr      error
)

func contentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a plain decoded JSON value.
		b, err := json.Marshal(contentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(b, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(contentSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledContent, compileErr = c.Compile(contentSchemaURL)
	})
	return compiledContent, compileErr
}

// ContentError reports a content document that does not match the schema.
type ContentError struct {
	Err error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("invalid lesson content: %v", e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

func validateContent(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ContentError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	schema, err := contentValidator()
	if err != nil {
		return fmt.Errorf("compile content schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return &ContentError{Err: err}
	}
	return nil
}
