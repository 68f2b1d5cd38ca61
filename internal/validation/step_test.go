package validation

import (
	"testing"

	"github.com/flowlint/flowlint/internal/providers"
	"github.com/flowlint/flowlint/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T, lookup providers.Lookup) *WorkflowValidator {
	t.Helper()
	wv, err := NewWorkflowValidator(lookup)
	require.NoError(t, err)
	return wv
}

func condition(name string, branch ...schema.Step) schema.Step {
	return schema.Step{
		Name:     name,
		Type:     "condition-threshold",
		Branches: &schema.Branches{True: branch},
	}
}

// --- Foreach ---

func TestStep_ForeachWithOnlyConditions(t *testing.T) {
	wv := newValidator(t, nil)
	fe := schema.Step{
		Name:     "each-alert",
		Type:     "foreach",
		Sequence: []schema.Step{condition("high", notifyAction("page"))},
	}
	result := wv.validateSteps(&wrap(fe).Sequence[0])
	assert.True(t, result.Valid())
}

func TestStep_ForeachWithNonConditionChild(t *testing.T) {
	wv := newValidator(t, nil)
	fe := schema.Step{
		Name:     "each-alert",
		Type:     "foreach",
		Sequence: []schema.Step{queryStep("fetch")},
	}
	result := wv.validateSteps(&wrap(fe).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, msgForeachNonCondition, result.Errors[0].Message)
}

// --- Condition ---

func TestStep_ConditionEmptyTrueBranch(t *testing.T) {
	wv := newValidator(t, nil)
	result := wv.validateSteps(&wrap(condition("high")).Sequence[0])
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgConditionEmpty, result.Errors[0].Message)
}

func TestStep_ConditionNilBranches(t *testing.T) {
	wv := newValidator(t, nil)
	cond := schema.Step{Name: "high", Type: "condition-threshold"}
	result := wv.validateSteps(&wrap(cond).Sequence[0])
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgConditionEmpty, result.Errors[0].Message)
}

func TestStep_ConditionWithAction(t *testing.T) {
	wv := newValidator(t, nil)
	result := wv.validateSteps(&wrap(condition("high", notifyAction("page"))).Sequence[0])
	assert.True(t, result.Valid())
}

func TestStep_ConditionWithStepInBranch(t *testing.T) {
	wv := newValidator(t, nil)
	result := wv.validateSteps(&wrap(condition("high", queryStep("fetch"))).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, msgConditionNonAction, result.Errors[0].Message)
}

// --- Task ---

func TestStep_TaskWithoutName(t *testing.T) {
	wv := newValidator(t, nil)
	unnamed := task("", "step-db", map[string]any{"query": "SELECT 1"})
	result := wv.validateSteps(&wrap(unnamed).Sequence[0])
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgTaskNameMissing, result.Errors[0].Message)
}

func TestStep_TaskWithBlankName(t *testing.T) {
	wv := newValidator(t, nil)
	blank := task("   ", "step-db", map[string]any{"query": "SELECT 1"})
	result := wv.validateSteps(&wrap(blank).Sequence[0])
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgTaskNameMissing, result.Errors[0].Message)
}

func TestStep_TaskWithoutWithIsWarningOnly(t *testing.T) {
	wv := newValidator(t, nil)
	bare := task("fetch", "step-db", nil)
	result := wv.validateSteps(&wrap(bare).Sequence[0])
	assert.True(t, result.Valid(), "missing 'with' must not fail validation")
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, msgTaskWithMissing, result.Warnings[0].Message)
}

func TestStep_TaskWithoutNameAndWithoutWith(t *testing.T) {
	wv := newValidator(t, nil)
	bare := task("", "step-db", nil)
	result := wv.validateSteps(&wrap(bare).Sequence[0])
	assert.Len(t, result.Errors, 1, "only the name is an error")
	assert.Len(t, result.Warnings, 1)
}

// --- Expressions ---

func TestStep_ValidIfGuard(t *testing.T) {
	wv := newValidator(t, nil)
	s := queryStep("fetch")
	s.Properties.If = `alert.severity == "critical"`
	result := wv.validateSteps(&wrap(s).Sequence[0])
	assert.True(t, result.Valid())
}

func TestStep_InvalidIfGuard(t *testing.T) {
	wv := newValidator(t, nil)
	s := queryStep("fetch")
	s.Properties.If = "alert.severity =="
	result := wv.validateSteps(&wrap(s).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, schema.ErrCodeExpression, result.Errors[0].Code)
}

func TestStep_InvalidAssert(t *testing.T) {
	wv := newValidator(t, nil)
	cond := condition("high", notifyAction("page"))
	cond.Properties.Assert = "value > "
	result := wv.validateSteps(&wrap(cond).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, schema.ErrCodeExpression, result.Errors[0].Code)
}

func TestStep_AssertUsingBuiltinFieldNames(t *testing.T) {
	// count/sum/min/max are common alert field names; they must stay valid
	// assert identifiers even though expr ships builtins with those names.
	wv := newValidator(t, nil)
	cond := condition("high", notifyAction("page"))
	cond.Properties.Assert = "count > 3 && max - min > 10"
	result := wv.validateSteps(&wrap(cond).Sequence[0])
	assert.True(t, result.Valid(), "errors: %v", result.Errors)
}

func TestStep_AssertOutsideConditionWarns(t *testing.T) {
	wv := newValidator(t, nil)
	s := queryStep("fetch")
	s.Properties.Assert = "value > 3"
	result := wv.validateSteps(&wrap(s).Sequence[0])
	assert.True(t, result.Valid())
	assert.Len(t, result.Warnings, 1)
}

func TestStep_InvalidTransform(t *testing.T) {
	wv := newValidator(t, nil)
	s := queryStep("fetch")
	s.Properties.Transform = ".results | "
	result := wv.validateSteps(&wrap(s).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, schema.ErrCodeExpression, result.Errors[0].Code)
}

// --- Providers ---

func TestStep_UnknownProvider(t *testing.T) {
	wv := newValidator(t, providers.Builtin())
	s := task("fetch", "step-nosuch", map[string]any{"query": "x"})
	result := wv.validateSteps(&wrap(s).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, schema.ErrCodeProviderUnavailable, result.Errors[0].Code)
}

func TestStep_ProviderCapabilityMismatch(t *testing.T) {
	wv := newValidator(t, providers.Builtin())
	// slack can only notify, not query.
	s := task("fetch", "step-slack", map[string]any{"message": "hi"})
	result := wv.validateSteps(&wrap(s).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, schema.ErrCodeProviderUnavailable, result.Errors[0].Code)
	assert.Contains(t, result.Errors[0].Message, "does not support query")
}

func TestStep_ProviderMissingRequiredWith(t *testing.T) {
	wv := newValidator(t, providers.Builtin())
	s := task("notify", "action-slack", map[string]any{})
	result := wv.validateSteps(&wrap(s).Sequence[0])
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "requires 'with.message'")
}

func TestStep_ProviderOverrideInProperties(t *testing.T) {
	wv := newValidator(t, providers.Builtin())
	s := task("fetch", "step-custom", map[string]any{"query": "up"})
	s.Properties.Provider = "grafana"
	result := wv.validateSteps(&wrap(s).Sequence[0])
	assert.True(t, result.Valid())
}

func TestStep_NilLookupSkipsProviderChecks(t *testing.T) {
	wv := newValidator(t, nil)
	s := task("fetch", "step-nosuch", map[string]any{"query": "x"})
	result := wv.validateSteps(&wrap(s).Sequence[0])
	assert.True(t, result.Valid())
}
