// Package schema provides structural validation of loaded tenant documents.
//
// This is a coarse wire-format check applied once at load time, before the
// document is decoded into typed collections. Field-level and cross-entity
// rules live in pkg/validation; this layer only rejects documents whose
// sections have the wrong JSON shape.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

const documentSchema = `{
	"type": "object",
	"properties": {
		"programs": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"program_id":   {"type": "string"},
					"program_name": {"type": "string"}
				},
				"required": ["program_id", "program_name"]
			}
		},
		"forms": {
			"oneOf": [
				{
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"form_id": {"type": "string"},
							"title":   {"type": "string"},
							"program": {"type": "string"},
							"fields":  {"type": "array"}
						},
						"required": ["form_id", "title", "program"]
					}
				},
				{
					"type": "object",
					"additionalProperties": {
						"type": "object",
						"properties": {
							"title":   {"type": "string"},
							"program": {"type": "string"},
							"fields":  {"type": "array"}
						},
						"required": ["title", "program"]
					}
				}
			]
		},
		"ctas": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"label":  {"type": "string"},
					"action": {"type": "string"}
				},
				"required": ["label", "action"]
			}
		},
		"conversation_branches": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"detection_keywords": {"type": "array", "items": {"type": "string"}},
					"available_ctas":     {"type": "object"}
				},
				"required": ["detection_keywords"]
			}
		},
		"action_chips": {
			"oneOf": [
				{"type": "object"},
				{"type": "array"},
				{"type": "null"}
			]
		},
		"content_showcase": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id":   {"type": "string"},
					"name": {"type": "string"}
				},
				"required": ["id", "name"]
			}
		},
		"cta_settings":         {"type": "object"},
		"bedrock_instructions": {"type": "object"},
		"metadata":             {"type": "object"}
	}
}`

// ValidateDocument checks a raw server document against the wire-format
// schema. It returns a single error aggregating every schema violation.
func ValidateDocument(doc models.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document for schema validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	dataLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to run document schema validation: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("document failed schema validation: %s", strings.Join(descriptions, "; "))
	}

	return nil
}
