package expressions

import "context"

// Engine compiles and evaluates expressions embedded in workflow steps.
// Three implementations: CEL (if guards), Expr (condition asserts),
// GoJQ (result transforms).
type Engine interface {
	Name() string
	// Compile checks an expression without evaluating it. Used by the
	// validator on every edit, so implementations keep it cheap (parse-only
	// or cached programs).
	Compile(expression string) error
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
