package schema

import "strings"

// Definition is the serializable workflow format produced by the visual
// builder: a single root sequence holding the workflow container, plus
// optional triggers and free-form metadata.
type Definition struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Sequence []Step         `json:"sequence" yaml:"sequence"`
	Triggers []Trigger      `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Container returns the single top-level workflow container, or nil when the
// root sequence does not hold exactly one element.
func (d *Definition) Container() *Step {
	if len(d.Sequence) != 1 {
		return nil
	}
	return &d.Sequence[0]
}

// Step is a node in the workflow tree. The wire tag in Type stays free-form
// ("step-grafana", "action-slack", "condition-threshold", "foreach", ...);
// dispatch happens on the StepKind derived from it.
type Step struct {
	ID            string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string     `json:"name" yaml:"name"`
	Type          string     `json:"type" yaml:"type"`
	ComponentType string     `json:"componentType,omitempty" yaml:"componentType,omitempty"` // task | container | switch
	Properties    Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Sequence      []Step     `json:"sequence,omitempty" yaml:"sequence,omitempty"` // containers, foreach
	Branches      *Branches  `json:"branches,omitempty" yaml:"branches,omitempty"` // conditions
}

// Branches holds the ordered children of a branching condition step.
type Branches struct {
	True []Step `json:"true" yaml:"true"`
}

// Properties carries the task parameters and per-step behavior knobs.
type Properties struct {
	With      map[string]any `json:"with,omitempty" yaml:"with,omitempty"`
	If        string         `json:"if,omitempty" yaml:"if,omitempty"`               // CEL guard
	Assert    string         `json:"assert,omitempty" yaml:"assert,omitempty"`       // expr condition
	Transform string         `json:"transform,omitempty" yaml:"transform,omitempty"` // jq filter
	Provider  string         `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// Component types emitted by the builder.
const (
	ComponentTypeTask      = "task"
	ComponentTypeContainer = "container"
	ComponentTypeSwitch    = "switch"
)

// StepKind is the closed discriminator derived from the wire type tag.
// The builder emits prefixed string tags; they are parsed exactly once here
// so the rest of the codebase never does substring matching.
type StepKind int

const (
	KindUnknown StepKind = iota
	KindStep
	KindAction
	KindCondition
	KindForeach
	KindContainer
)

// String returns the kind name for error messages.
func (k StepKind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindAction:
		return "action"
	case KindCondition:
		return "condition"
	case KindForeach:
		return "foreach"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Kind parses the step's wire tag into its StepKind.
func (s *Step) Kind() StepKind {
	return ParseKind(s.Type)
}

// ParseKind maps a wire type tag onto the closed StepKind enum.
func ParseKind(typeTag string) StepKind {
	switch {
	case typeTag == "foreach":
		return KindForeach
	case typeTag == "container" || typeTag == "workflow":
		return KindContainer
	case strings.HasPrefix(typeTag, "step-"):
		return KindStep
	case strings.HasPrefix(typeTag, "action-"):
		return KindAction
	case strings.HasPrefix(typeTag, "condition-"):
		return KindCondition
	default:
		return KindUnknown
	}
}

// ProviderType returns the provider suffix of a step/action tag
// ("step-grafana" -> "grafana"), or "" for non-provider nodes. An explicit
// properties.provider overrides the tag suffix.
func (s *Step) ProviderType() string {
	if s.Properties.Provider != "" {
		return s.Properties.Provider
	}
	switch s.Kind() {
	case KindStep:
		return strings.TrimPrefix(s.Type, "step-")
	case KindAction:
		return strings.TrimPrefix(s.Type, "action-")
	default:
		return ""
	}
}

// Trigger describes how a workflow is started.
type Trigger struct {
	Type  string `json:"type" yaml:"type"` // manual | interval | alert
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Trigger types accepted by the validator.
const (
	TriggerManual   = "manual"
	TriggerInterval = "interval"
	TriggerAlert    = "alert"
)
