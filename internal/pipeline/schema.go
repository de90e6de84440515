package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordSchema describes one serialized Record.
var RecordSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"page", "needs_review", "confidence"},
	"properties": map[string]any{
		"page":   map[string]any{"type": "integer", "minimum": 1},
		"code":   map[string]any{"type": "string", "pattern": `^\d{6,8}$`},
		"date":   map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"amount": map[string]any{"type": "number", "minimum": 0},
		"ntpn":   map[string]any{"type": "string", "pattern": `^\d{16}$`},
		"missing_fields": map[string]any{
			"type":        "array",
			"uniqueItems": true,
			"items":       map[string]any{"enum": []string{"code", "date", "amount", "ntpn"}},
		},
		"warning_message": map[string]any{"type": "string"},
		"error":           map[string]any{"type": "string"},
		"needs_review":    map[string]any{"type": "boolean"},
		"confidence":      map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"preview_image":   map[string]any{"type": "string"},
	},
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		b, err := json.Marshal(RecordSchema)
		if err != nil {
			recordSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			recordSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile("record.json")
		if recordSchemaErr != nil {
			recordSchemaErr = fmt.Errorf("compile schema: %w", recordSchemaErr)
		}
	})
	return recordSchema, recordSchemaErr
}

// ValidateRecordJSON validates serialized record bytes against RecordSchema.
func ValidateRecordJSON(data []byte) error {
	schema, err := compiledRecordSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

// ValidateRecord serializes rec and validates it.
func ValidateRecord(rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return ValidateRecordJSON(b)
}
