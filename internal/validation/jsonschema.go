package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowlint/flowlint/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// workflowSchemaJSON is the JSON Schema for Definition validation.
// Embedded as a constant to avoid filesystem dependencies.
const workflowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowlint.dev/schemas/workflow.json",
  "type": "object",
  "required": ["sequence"],
  "properties": {
    "id": { "type": "string" },
    "sequence": {
      "type": "array",
      "items": { "$ref": "#/$defs/step" }
    },
    "triggers": {
      "type": "array",
      "items": { "$ref": "#/$defs/trigger" }
    },
    "metadata": { "type": "object" }
  },
  "additionalProperties": false,
  "$defs": {
    "step": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "id": { "type": "string" },
        "name": { "type": "string" },
        "type": {
          "type": "string",
          "minLength": 1
        },
        "componentType": {
          "type": "string",
          "enum": ["task", "container", "switch"]
        },
        "properties": { "$ref": "#/$defs/properties" },
        "sequence": {
          "type": "array",
          "items": { "$ref": "#/$defs/step" }
        },
        "branches": {
          "type": "object",
          "required": ["true"],
          "properties": {
            "true": {
              "type": "array",
              "items": { "$ref": "#/$defs/step" }
            }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    },
    "properties": {
      "type": "object",
      "properties": {
        "with": { "type": "object" },
        "if": { "type": "string" },
        "assert": { "type": "string" },
        "transform": { "type": "string" },
        "provider": { "type": "string" }
      },
      "additionalProperties": false
    },
    "trigger": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {
          "type": "string",
          "enum": ["manual", "interval", "alert"]
        },
        "value": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

// JSONSchemaValidator validates definitions against the embedded workflow
// schema (JSON Schema Draft 2020-12). Safe for concurrent use: the compiled
// schema is immutable after construction.
type JSONSchemaValidator struct {
	workflowSchema *jsonschema.Schema
}

// NewJSONSchemaValidator compiles the embedded workflow schema.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(workflowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal workflow schema: %w", err)
	}
	if err := c.AddResource("https://flowlint.dev/schemas/workflow.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add workflow schema resource: %w", err)
	}

	wfSchema, err := c.Compile("https://flowlint.dev/schemas/workflow.json")
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}

	return &JSONSchemaValidator{workflowSchema: wfSchema}, nil
}

// ValidateDefinition validates a Definition against the workflow JSON Schema.
func (v *JSONSchemaValidator) ValidateDefinition(def *schema.Definition) error {
	if def == nil {
		return schema.NewError(schema.ErrCodeValidation, "workflow definition is nil")
	}

	doc, err := toJSONValue(def)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize workflow definition").WithCause(err)
	}

	if err := v.workflowSchema.Validate(doc); err != nil {
		return toLintError(err)
	}

	// Structural checks JSON Schema cannot express: duplicate step names.
	// Names key the steps namespace, so they must be unique across the tree.
	seen := make(map[string]struct{})
	var checkNames func(steps []schema.Step) error
	checkNames = func(steps []schema.Step) error {
		for i := range steps {
			s := &steps[i]
			if s.Name != "" && s.ComponentType == schema.ComponentTypeTask {
				if _, exists := seen[s.Name]; exists {
					return schema.NewError(schema.ErrCodeValidation,
						fmt.Sprintf("duplicate step name %q", s.Name))
				}
				seen[s.Name] = struct{}{}
			}
			if err := checkNames(s.Sequence); err != nil {
				return err
			}
			if s.Branches != nil {
				if err := checkNames(s.Branches.True); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return checkNames(def.Sequence)
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toLintError converts a jsonschema.ValidationError into a LintError with
// one message per leaf violation.
func toLintError(err error) *schema.LintError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
