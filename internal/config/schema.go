package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	hterrors "github.com/mhallin2/ansible-dev-tools/internal/errors"
)

// definitionSchema is the JSON schema for the hubtoken.yaml document. It is
// checked against the raw file, before defaults are merged, so it catches
// typoed keys and wrong types that yaml.Unmarshal would silently drop.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "hubtoken configuration",
  "type": "object",
  "properties": {
    "version": {
      "type": "integer"
    },
    "target_file": {
      "type": "string",
      "minLength": 1
    },
    "placeholder": {
      "type": "string",
      "minLength": 1
    },
    "keyVault": {
      "type": "object",
      "properties": {
        "name": {
          "type": "string",
          "pattern": "^[a-zA-Z0-9-]*$"
        },
        "secret_name": {
          "type": "string",
          "pattern": "^[a-zA-Z0-9-]*$"
        },
        "secret_version": {
          "type": "string",
          "pattern": "^[a-f0-9]*$"
        },
        "tenant_id": {
          "type": "string"
        },
        "client_id": {
          "type": "string"
        },
        "client_secret": {
          "type": "string"
        },
        "use_managed_identity": {
          "type": "boolean"
        },
        "user_assigned_identity_id": {
          "type": "string"
        }
      },
      "additionalProperties": false
    },
    "fetch": {
      "type": "object",
      "properties": {
        "strategy": {
          "type": "string",
          "enum": ["sdk", "cli"]
        },
        "timeout_ms": {
          "type": "integer",
          "minimum": 1
        }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// validateSchemaDocument validates raw hubtoken.yaml bytes against the
// embedded JSON schema
func validateSchemaDocument(data []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// Syntax errors are reported by the typed unmarshal in Load
		return nil
	}
	if raw == nil {
		return nil // empty file, defaults apply
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(definitionSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return hterrors.ConfigError{
			Message:    fmt.Sprintf("configuration does not match schema:\n  - %s", strings.Join(errorMessages, "\n  - ")),
			Suggestion: "Compare your hubtoken.yaml against the documented fields",
		}
	}

	return nil
}
