package validation

import (
	"fmt"

	"github.com/flowlint/flowlint/internal/expressions"
	"github.com/flowlint/flowlint/internal/providers"
	"github.com/flowlint/flowlint/pkg/schema"
)

// WorkflowValidator orchestrates the validation pipeline:
// 1. Structural (JSON Schema)
// 2. Container rules (single root container, non-empty, action ordering)
// 3. Step rules (foreach/condition/task constraints, expressions, providers)
// 4. References ({{ steps.* }} tokens: existence, order, cycles)
// 5. Triggers (interval/cron syntax)
type WorkflowValidator struct {
	jsonSchema *JSONSchemaValidator
	lookup     providers.Lookup

	guards     expressions.Engine // CEL, `if`
	asserts    expressions.Engine // expr, `assert`
	transforms expressions.Engine // jq, `transform` and token pipe filters
}

// NewWorkflowValidator creates a WorkflowValidator.
// lookup may be nil to skip provider existence checks.
func NewWorkflowValidator(lookup providers.Lookup) (*WorkflowValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	cel, err := expressions.NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &WorkflowValidator{
		jsonSchema: jsv,
		lookup:     lookup,
		guards:     cel,
		asserts:    expressions.NewExprEngine(),
		transforms: expressions.NewGoJQEngine(),
	}, nil
}

// Validate runs the full pipeline and returns an aggregated result.
// Structural errors short-circuit: later stages are skipped. Container
// errors skip the step and reference stages (there is no container to walk),
// but triggers are always checked.
func (wv *WorkflowValidator) Validate(def *schema.Definition) *schema.ValidationResult {
	if def == nil {
		r := &schema.ValidationResult{}
		r.AddError("/", schema.ErrCodeValidation, "workflow definition is nil")
		return r
	}

	// Stage 1: Structural (JSON Schema).
	result := validateStructural(wv.jsonSchema, def)
	if !result.Valid() {
		return result
	}

	// Stage 2: Container rules.
	result.Merge(validateContainer(def))

	// Stages 3-4 need a well-formed container.
	if result.Valid() {
		container := def.Container()
		result.Merge(wv.validateSteps(container))
		if result.Valid() {
			result.Merge(wv.validateReferences(container))
		}
	}

	// Stage 5: Triggers (independent of the step tree).
	result.Merge(validateTriggers(def.Triggers))

	return result
}

// ValidateDefinition satisfies the Validator interface.
func (wv *WorkflowValidator) ValidateDefinition(def *schema.Definition) error {
	return wv.Validate(def).ToError()
}

// validateStructural wraps JSONSchemaValidator.ValidateDefinition, converting
// its error output into ValidationResult.
func validateStructural(v *JSONSchemaValidator, def *schema.Definition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	err := v.ValidateDefinition(def)
	if err == nil {
		return result
	}

	lintErr, ok := err.(*schema.LintError)
	if !ok {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return result
	}

	if lintErr.Details != nil {
		if violations, ok := lintErr.Details["violations"].([]string); ok {
			for _, v := range violations {
				result.AddError("/", schema.ErrCodeValidation, v)
			}
			return result
		}
	}
	result.AddError("/", schema.ErrCodeValidation, lintErr.Message)
	return result
}

// stepPath renders a tree location like "sequence[2].branches.true[0]".
func stepPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
