package validation

import (
	"fmt"
	"strings"

	"github.com/flowlint/flowlint/internal/providers"
	"github.com/flowlint/flowlint/pkg/schema"
)

// Messages for the per-step rules.
const (
	msgForeachNonCondition = "foreach containers may only hold condition steps"
	msgConditionEmpty      = "condition must have at least one action in its true branch"
	msgConditionNonAction  = "condition branches may only hold actions"
	msgTaskNameMissing     = "task step requires a name"
	msgTaskWithMissing     = "task step is missing its 'with' parameters"
)

// validateSteps walks the container's step tree and applies the per-step
// rules to every node.
func (wv *WorkflowValidator) validateSteps(container *schema.Step) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	for i := range container.Sequence {
		wv.validateStep(&container.Sequence[i], stepPath("/sequence[0].sequence", i), result)
	}
	return result
}

// validateStep applies the rules for a single node, then recurses into its
// children. Dispatch is on the closed StepKind, never on the raw tag.
func (wv *WorkflowValidator) validateStep(step *schema.Step, path string, result *schema.ValidationResult) {
	switch step.Kind() {
	case schema.KindForeach:
		wv.validateForeach(step, path, result)
	case schema.KindCondition:
		wv.validateCondition(step, path, result)
	default:
		if step.ComponentType == schema.ComponentTypeTask {
			wv.validateTask(step, path, result)
		}
		// Anything else is a pass-through: no constraint.
	}

	wv.validateExpressions(step, path, result)
	wv.validateProvider(step, path, result)
}

// validateForeach requires every direct child to be a condition node.
func (wv *WorkflowValidator) validateForeach(step *schema.Step, path string, result *schema.ValidationResult) {
	for i := range step.Sequence {
		child := &step.Sequence[i]
		childPath := stepPath(path+".sequence", i)
		if child.Kind() != schema.KindCondition {
			result.AddError(childPath, schema.ErrCodeValidation, msgForeachNonCondition)
		}
		wv.validateStep(child, childPath, result)
	}
}

// validateCondition requires a non-empty true branch holding only actions.
func (wv *WorkflowValidator) validateCondition(step *schema.Step, path string, result *schema.ValidationResult) {
	if step.Branches == nil || len(step.Branches.True) == 0 {
		result.AddError(path+".branches.true", schema.ErrCodeValidation, msgConditionEmpty)
		return
	}
	for i := range step.Branches.True {
		child := &step.Branches.True[i]
		childPath := stepPath(path+".branches.true", i)
		if child.Kind() != schema.KindAction {
			result.AddError(childPath, schema.ErrCodeValidation, msgConditionNonAction)
		}
		wv.validateStep(child, childPath, result)
	}
}

// validateTask requires a name. A missing `with` map is reported as a
// warning: the message surfaces in the builder but does not block save.
func (wv *WorkflowValidator) validateTask(step *schema.Step, path string, result *schema.ValidationResult) {
	if strings.TrimSpace(step.Name) == "" {
		result.AddError(path+".name", schema.ErrCodeValidation, msgTaskNameMissing)
	}
	if step.Properties.With == nil {
		result.AddWarning(path+".properties.with", schema.ErrCodeValidation, msgTaskWithMissing)
	}
}

// validateExpressions compile-checks the step's embedded expressions:
// `if` under CEL, `assert` under expr, `transform` under jq.
func (wv *WorkflowValidator) validateExpressions(step *schema.Step, path string, result *schema.ValidationResult) {
	if e := step.Properties.If; e != "" {
		if err := wv.guards.Compile(e); err != nil {
			result.AddError(path+".properties.if", schema.ErrCodeExpression, err.Error())
		}
	}
	if e := step.Properties.Assert; e != "" {
		if step.Kind() != schema.KindCondition {
			result.AddWarning(path+".properties.assert", schema.ErrCodeExpression,
				"'assert' is only evaluated on condition steps")
		}
		if err := wv.asserts.Compile(e); err != nil {
			result.AddError(path+".properties.assert", schema.ErrCodeExpression, err.Error())
		}
	}
	if e := step.Properties.Transform; e != "" {
		if err := wv.transforms.Compile(e); err != nil {
			result.AddError(path+".properties.transform", schema.ErrCodeExpression, err.Error())
		}
	}
}

// validateProvider checks that a task's provider type exists in the catalog,
// supports the node's capability, and that the required `with` keys are set.
// A nil lookup skips the stage.
func (wv *WorkflowValidator) validateProvider(step *schema.Step, path string, result *schema.ValidationResult) {
	if wv.lookup == nil || step.ComponentType != schema.ComponentTypeTask {
		return
	}

	ptype := step.ProviderType()
	if ptype == "" {
		return
	}

	desc, err := wv.lookup.Get(ptype)
	if err != nil {
		result.AddError(path+".type", schema.ErrCodeProviderUnavailable,
			fmt.Sprintf("provider %q not available", ptype))
		return
	}

	var need providers.Capability
	switch step.Kind() {
	case schema.KindStep:
		need = providers.CapabilityQuery
	case schema.KindAction:
		need = providers.CapabilityNotify
	default:
		return
	}
	if !desc.Supports(need) {
		result.AddError(path+".type", schema.ErrCodeProviderUnavailable,
			fmt.Sprintf("provider %q does not support %s", ptype, need))
		return
	}

	for _, key := range desc.RequiredWith {
		if _, ok := step.Properties.With[key]; !ok {
			result.AddError(path+".properties.with."+key, schema.ErrCodeValidation,
				fmt.Sprintf("provider %q requires 'with.%s'", ptype, key))
		}
	}
}
