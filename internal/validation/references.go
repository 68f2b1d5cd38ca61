package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowlint/flowlint/pkg/schema"
)

// refNamespaces are the token namespaces a running workflow resolves.
var refNamespaces = []string{"steps", "alert", "inputs", "env"}

// stepRef is one parsed {{ ... }} token found inside a step's with values.
type stepRef struct {
	raw    string // full token body, trimmed
	target string // referenced step name, "" for non-steps namespaces
	filter string // optional jq filter after the pipe
}

// validateReferences checks every {{ ... }} token inside with values:
// syntax, namespace, target existence, sequence order, and cycles in the
// step-to-step reference graph (Kahn's algorithm).
func (wv *WorkflowValidator) validateReferences(container *schema.Step) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	// Preorder walk: step name -> position. Later positions see earlier results.
	order := map[string]int{}
	walkNamedSteps(container.Sequence, func(s *schema.Step) {
		if _, exists := order[s.Name]; !exists {
			order[s.Name] = len(order)
		}
	})

	// refs[name] = set of step names referenced from that step's with values.
	refs := make(map[string]map[string]bool)

	var walk func(steps []schema.Step, parentPath string)
	walk = func(steps []schema.Step, parentPath string) {
		for i := range steps {
			s := &steps[i]
			path := stepPath(parentPath, i)

			if s.ComponentType == schema.ComponentTypeTask && s.Properties.With != nil {
				for key, val := range s.Properties.With {
					text, ok := val.(string)
					if !ok {
						continue
					}
					tokens, err := extractTokens(text)
					if err != nil {
						result.AddError(fmt.Sprintf("%s.properties.with.%s", path, key),
							schema.ErrCodeReference, err.Error())
						continue
					}
					for _, tok := range tokens {
						wv.checkToken(tok, s, order, refs,
							fmt.Sprintf("%s.properties.with.%s", path, key), result)
					}
				}
			}

			walk(s.Sequence, path+".sequence")
			if s.Branches != nil {
				walk(s.Branches.True, path+".branches.true")
			}
		}
	}
	walk(container.Sequence, "/sequence[0].sequence")

	result.Merge(checkReferenceCycles(refs))
	return result
}

// checkToken validates one parsed token against the step order and records
// the edge for cycle detection.
func (wv *WorkflowValidator) checkToken(tok stepRef, from *schema.Step,
	order map[string]int, refs map[string]map[string]bool,
	path string, result *schema.ValidationResult) {

	if tok.filter != "" {
		if err := wv.transforms.Compile(tok.filter); err != nil {
			result.AddError(path, schema.ErrCodeExpression, err.Error())
		}
	}

	ns, _, _ := strings.Cut(tok.raw, ".")
	known := false
	for _, n := range refNamespaces {
		if ns == n {
			known = true
			break
		}
	}
	if !known {
		result.AddError(path, schema.ErrCodeReference,
			fmt.Sprintf("unknown namespace %q in {{ %s }}; available: %s",
				ns, tok.raw, strings.Join(refNamespaces, ", ")))
		return
	}
	if tok.target == "" {
		return // alert/inputs/env resolve at run time against the trigger payload
	}

	targetPos, exists := order[tok.target]
	if !exists {
		result.AddError(path, schema.ErrCodeReference,
			fmt.Sprintf("step %q not found in {{ %s }}; available steps: [%s]",
				tok.target, tok.raw, strings.Join(sortedKeys(order), ", ")))
		return
	}

	if from.Name != "" {
		set := refs[from.Name]
		if set == nil {
			set = make(map[string]bool)
			refs[from.Name] = set
		}
		set[tok.target] = true
	}

	// Referencing a step that has not run yet resolves to nothing. The builder
	// flags it but lets the user keep editing.
	if fromPos, ok := order[from.Name]; ok && from.Name != tok.target && targetPos >= fromPos {
		result.AddWarning(path, schema.ErrCodeReference,
			fmt.Sprintf("step %q runs after this step; its results will be empty", tok.target))
	}
}

// extractTokens scans text for {{ ... }} tokens and parses each body.
func extractTokens(text string) ([]stepRef, error) {
	var tokens []stepRef

	for i := 0; i < len(text); {
		idx := strings.Index(text[i:], "{{")
		if idx == -1 {
			break
		}
		start := i + idx + 2

		end := strings.Index(text[start:], "}}")
		if end == -1 {
			return nil, schema.NewError(schema.ErrCodeReference, "unclosed {{ reference")
		}
		end += start

		body := strings.TrimSpace(text[start:end])
		if body == "" {
			return nil, schema.NewError(schema.ErrCodeReference, "empty reference: {{ }}")
		}
		if strings.Contains(body, "{{") {
			return nil, schema.NewError(schema.ErrCodeReference,
				"nested reference not allowed: {{ ... }} cannot contain {{")
		}

		tok, err := parseToken(body)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)

		i = end + 2
	}

	return tokens, nil
}

// parseToken splits "steps.db.results | .[0].count" into path and filter and
// resolves the referenced step name for the steps namespace.
func parseToken(body string) (stepRef, error) {
	tok := stepRef{raw: body}

	if pathPart, filter, found := strings.Cut(body, "|"); found {
		tok.raw = strings.TrimSpace(pathPart)
		tok.filter = strings.TrimSpace(filter)
		if tok.filter == "" {
			return tok, schema.NewErrorf(schema.ErrCodeReference,
				"empty filter after pipe in {{ %s }}", body)
		}
	}

	if strings.HasPrefix(tok.raw, "steps.") {
		// Expected: steps.<name>.results[.<field>...]
		parts := strings.SplitN(tok.raw, ".", 3)
		if len(parts) < 3 || parts[1] == "" || !strings.HasPrefix(parts[2], "results") {
			return tok, schema.NewErrorf(schema.ErrCodeReference,
				"invalid step reference {{ %s }}: expected steps.<name>.results[.<field>]", tok.raw)
		}
		tok.target = parts[1]
	}

	return tok, nil
}

// checkReferenceCycles runs Kahn's algorithm over the step reference graph.
// A cycle cannot resolve regardless of sequence order.
func checkReferenceCycles(refs map[string]map[string]bool) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	// Collect every node mentioned on either side of an edge.
	nodes := make(map[string]bool)
	for from, targets := range refs {
		nodes[from] = true
		for to := range targets {
			nodes[to] = true
		}
	}

	// edges[name] = referenced steps, reverse[name] = referencing steps.
	reverse := make(map[string][]string, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	for name := range nodes {
		inDegree[name] = len(refs[name])
		for to := range refs[name] {
			reverse[to] = append(reverse[to], name)
		}
	}

	queue := make([]string, 0, len(nodes))
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	// Sort roots for deterministic output.
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range reverse[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if visited != len(nodes) {
		result.AddError("/sequence", schema.ErrCodeCycleDetected,
			"workflow contains a circular step reference")
	}

	return result
}

// walkNamedSteps visits every named task step in the tree, preorder.
func walkNamedSteps(steps []schema.Step, visit func(*schema.Step)) {
	for i := range steps {
		s := &steps[i]
		if s.Name != "" && s.ComponentType == schema.ComponentTypeTask {
			visit(s)
		}
		walkNamedSteps(s.Sequence, visit)
		if s.Branches != nil {
			walkNamedSteps(s.Branches.True, visit)
		}
	}
}

// sortedKeys returns the map keys sorted for stable error messages.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
