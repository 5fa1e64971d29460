package formapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Response schemas for the service's documented shapes. Each response is
// validated before decoding so that shape drift surfaces as a clear
// ErrSchemaMismatch instead of silently zeroed struct fields.

// textFragmentSchema is the schema of one recognized text fragment.
var textFragmentSchema = map[string]any{
	"type":     "object",
	"required": []any{"text"},
	"properties": map[string]any{
		"text": map[string]any{"type": "string"},
	},
}

// textListSchema is the schema of a fragment list.
var textListSchema = map[string]any{
	"type":  "array",
	"items": textFragmentSchema,
}

// modelInfoSchema is the schema of one model record.
var modelInfoSchema = map[string]any{
	"type":     "object",
	"required": []any{"modelId", "status"},
	"properties": map[string]any{
		"modelId":             map[string]any{"type": "string"},
		"status":              map[string]any{"type": "string"},
		"createdDateTime":     map[string]any{"type": "string"},
		"lastUpdatedDateTime": map[string]any{"type": "string"},
	},
}

// trainResultSchema is the schema of a model status response.
var trainResultSchema = map[string]any{
	"type":     "object",
	"required": []any{"modelId", "status"},
	"properties": map[string]any{
		"modelId":             map[string]any{"type": "string"},
		"status":              map[string]any{"type": "string"},
		"createdDateTime":     map[string]any{"type": "string"},
		"lastUpdatedDateTime": map[string]any{"type": "string"},
		"trainingDocuments": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"documentName", "status"},
				"properties": map[string]any{
					"documentName": map[string]any{"type": "string"},
					"pages":        map[string]any{"type": "integer"},
					"status":       map[string]any{"type": "string"},
					"errors": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

// keysSchema is the schema of the extracted-keys response.
var keysSchema = map[string]any{
	"type":     "object",
	"required": []any{"clusters"},
	"properties": map[string]any{
		"clusters": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}

// listModelsSchema is the schema of the model listing response.
var listModelsSchema = map[string]any{
	"type":     "object",
	"required": []any{"modelsSummary", "models"},
	"properties": map[string]any{
		"modelsSummary": map[string]any{
			"type":     "object",
			"required": []any{"count"},
			"properties": map[string]any{
				"count": map[string]any{"type": "integer"},
				"limit": map[string]any{"type": "integer"},
			},
		},
		"models": map[string]any{
			"type":  "array",
			"items": modelInfoSchema,
		},
	},
}

// analyzeResultSchema is the schema of an analysis response.
var analyzeResultSchema = map[string]any{
	"type":     "object",
	"required": []any{"status", "pages"},
	"properties": map[string]any{
		"status": map[string]any{"type": "string"},
		"pages": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"number"},
				"properties": map[string]any{
					"number":    map[string]any{"type": "integer"},
					"clusterId": map[string]any{"type": []any{"integer", "null"}},
					"keyValuePairs": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"key":        textListSchema,
								"value":      textListSchema,
								"confidence": map[string]any{"type": "number"},
							},
						},
					},
					"tables": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id": map[string]any{"type": "string"},
								"columns": map[string]any{
									"type": "array",
									"items": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"header": textListSchema,
											"entries": map[string]any{
												"type":  "array",
												"items": textListSchema,
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	},
}

var (
	compiledSchemas   = map[string]*jsonschema.Schema{}
	compiledSchemasMu sync.Mutex
)

// compileSchema compiles schemaMap once and caches it under name.
func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	compiledSchemasMu.Lock()
	defer compiledSchemasMu.Unlock()

	if s, ok := compiledSchemas[name]; ok {
		return s, nil
	}

	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	compiledSchemas[name] = schema
	return schema, nil
}

// validateResponse checks raw against the named schema.
func validateResponse(name string, schemaMap map[string]any, raw []byte) error {
	schema, err := compileSchema(name, schemaMap)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrSchemaMismatch, name, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrSchemaMismatch, name, err)
	}
	return nil
}
