package validation

import "github.com/flowlint/flowlint/pkg/schema"

// Messages for the container rules. These surface verbatim in the builder UI,
// so they stay short and user-facing.
const (
	msgOutsideContainer  = "steps must be inside the workflow container"
	msgEmptyContainer    = "at least one step/action required"
	msgStepsAfterActions = "cannot have steps after actions"
)

// validateContainer enforces the workflow-level rules, in order:
//  1. the root sequence holds exactly one workflow container;
//  2. that container's nested sequence is non-empty;
//  3. once an action appears in the container sequence, no step node may
//     follow it (actions are terminal).
func validateContainer(def *schema.Definition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	container := def.Container()
	if container == nil {
		result.AddError("/sequence", schema.ErrCodeValidation, msgOutsideContainer)
		return result
	}

	if len(container.Sequence) == 0 {
		result.AddError("/sequence[0].sequence", schema.ErrCodeValidation, msgEmptyContainer)
		return result
	}

	// Scan forward from the first action; any later step node is an error.
	firstAction := -1
	for i := range container.Sequence {
		if container.Sequence[i].Kind() == schema.KindAction {
			firstAction = i
			break
		}
	}
	if firstAction >= 0 {
		for i := firstAction + 1; i < len(container.Sequence); i++ {
			if container.Sequence[i].Kind() == schema.KindStep {
				result.AddError(stepPath("/sequence[0].sequence", i),
					schema.ErrCodeValidation, msgStepsAfterActions)
			}
		}
	}

	return result
}
