package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildJobResultSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the job-results payload. Upstream extraction quality
// is untrusted, so the schema pins down only the structure the reconciliation
// engine and export path rely on.
func BuildJobResultSchema() map[string]any {
	stringArray := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"job_id":                 map[string]any{"type": "string", "minLength": 1},
			"status":                 map[string]any{"type": "string"},
			"total_files":            map[string]any{"type": "integer", "minimum": 0},
			"successfully_processed": map[string]any{"type": "integer", "minimum": 0},
			"failed_files":           map[string]any{"type": "integer", "minimum": 0},
			"extracted_csv_data": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"csv_data": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"invoice_rows":       stringArray,
							"delivery_note_rows": stringArray,
							"anomaly_rows":       stringArray,
						},
						"required": []string{"invoice_rows", "delivery_note_rows", "anomaly_rows"},
					},
				},
				"required": []string{"csv_data"},
			},
		},
		"required": []string{"job_id", "status"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
