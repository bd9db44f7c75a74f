package content

// courseSchemaDef is the JSON Schema a course document must satisfy
// before it is accepted into the library. Validation happens exactly
// once, at ingest; navigation and scoring code trusts the typed Tree.
var courseSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":    map[string]any{"type": "string", "minLength": 1},
		"title": map[string]any{"type": "string", "minLength": 1},
		"topic": map[string]any{"type": "string"},
		"modules": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":    map[string]any{"type": "string", "minLength": 1},
					"title": map[string]any{"type": "string", "minLength": 1},
					"order": map[string]any{"type": "integer", "minimum": 0},
					"concepts": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":      map[string]any{"type": "string", "minLength": 1},
								"title":   map[string]any{"type": "string", "minLength": 1},
								"content": map[string]any{"type": "string"},
								"order":   map[string]any{"type": "integer", "minimum": 0},
							},
							"required": []any{"id", "title"},
						},
					},
				},
				"required": []any{"id", "title", "concepts"},
			},
		},
	},
	"required": []any{"id", "title", "modules"},
}
