package validation

import "github.com/flowlint/flowlint/pkg/schema"

// Validator checks workflow definitions for correctness before save/run.
// Uses JSON Schema Draft 2020-12 for structural validation.
type Validator interface {
	ValidateDefinition(def *schema.Definition) error
}
