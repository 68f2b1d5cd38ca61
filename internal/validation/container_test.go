package validation

import (
	"testing"

	"github.com/flowlint/flowlint/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Builders ---

func task(name, typeTag string, with map[string]any) schema.Step {
	return schema.Step{
		Name:          name,
		Type:          typeTag,
		ComponentType: schema.ComponentTypeTask,
		Properties:    schema.Properties{With: with},
	}
}

func queryStep(name string) schema.Step {
	return task(name, "step-db", map[string]any{"query": "SELECT 1"})
}

func notifyAction(name string) schema.Step {
	return task(name, "action-slack", map[string]any{"message": "hi"})
}

func wrap(steps ...schema.Step) *schema.Definition {
	return &schema.Definition{
		Sequence: []schema.Step{{
			Name:          "wf",
			Type:          "container",
			ComponentType: schema.ComponentTypeContainer,
			Sequence:      steps,
		}},
	}
}

// --- Rule 1: single root container ---

func TestContainer_EmptyRootSequence(t *testing.T) {
	def := &schema.Definition{}
	result := validateContainer(def)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgOutsideContainer, result.Errors[0].Message)
}

func TestContainer_TwoRootEntries(t *testing.T) {
	def := &schema.Definition{
		Sequence: []schema.Step{
			{Name: "wf", Type: "container"},
			queryStep("stray"),
		},
	}
	result := validateContainer(def)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgOutsideContainer, result.Errors[0].Message)
}

// --- Rule 2: container not empty ---

func TestContainer_EmptyContainer(t *testing.T) {
	result := validateContainer(wrap())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgEmptyContainer, result.Errors[0].Message)
}

// --- Rule 3: actions are terminal ---

func TestContainer_StepAfterAction(t *testing.T) {
	def := wrap(notifyAction("notify"), queryStep("fetch"))
	result := validateContainer(def)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, msgStepsAfterActions, result.Errors[0].Message)
}

func TestContainer_StepBeforeAction(t *testing.T) {
	def := wrap(queryStep("fetch"), notifyAction("notify"))
	result := validateContainer(def)
	assert.True(t, result.Valid())
}

func TestContainer_MultipleStepsAfterAction(t *testing.T) {
	def := wrap(notifyAction("notify"), queryStep("a"), queryStep("b"))
	result := validateContainer(def)
	assert.Len(t, result.Errors, 2, "each trailing step is reported")
}

func TestContainer_ActionsOnly(t *testing.T) {
	def := wrap(notifyAction("a"), notifyAction("b"))
	result := validateContainer(def)
	assert.True(t, result.Valid())
}

func TestContainer_ConditionAfterAction(t *testing.T) {
	// Only step nodes are forbidden after actions.
	def := wrap(notifyAction("notify"), schema.Step{Name: "cond", Type: "condition-threshold"})
	result := validateContainer(def)
	assert.True(t, result.Valid())
}
