package content

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	courseSchemaOnce sync.Once
	courseSchema     *jsonschema.Schema
	courseSchemaErr  error
)

func compiledCourseSchema() (*jsonschema.Schema, error) {
	courseSchemaOnce.Do(func() {
		defBytes, err := json.Marshal(courseSchemaDef)
		if err != nil {
			courseSchemaErr = fmt.Errorf("marshal course schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			courseSchemaErr = fmt.Errorf("parse course schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://course.json", def); err != nil {
			courseSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		courseSchema, courseSchemaErr = c.Compile("schema://course.json")
	})
	return courseSchema, courseSchemaErr
}

// Parse decodes and validates a course JSON document into a Tree.
// This is the single boundary where external course content is
// checked; ordering fields are normalized to their list positions.
func Parse(data []byte) (*Tree, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid course JSON: %w", err)
	}

	schema, err := compiledCourseSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("course document rejected: %w", err)
	}

	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode course: %w", err)
	}

	normalize(&tree)
	return &tree, nil
}

// normalize rewrites module and concept order fields to match their
// position in the document. Stored order values from external authors
// are advisory; position is authoritative.
func normalize(t *Tree) {
	for mi := range t.Modules {
		t.Modules[mi].Order = mi
		for ci := range t.Modules[mi].Concepts {
			t.Modules[mi].Concepts[ci].Order = ci
		}
	}
}
