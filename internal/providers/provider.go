package providers

// Capability describes what a provider can do within a workflow.
type Capability string

const (
	// CapabilityQuery providers back "step-*" nodes (read data, run queries).
	CapabilityQuery Capability = "query"
	// CapabilityNotify providers back "action-*" nodes (send messages, open tickets).
	CapabilityNotify Capability = "notify"
)

// Descriptor declares a provider type the validator can check steps against:
// its capabilities and the `with` parameter contract.
type Descriptor struct {
	Type         string       `json:"type"`
	Description  string       `json:"description,omitempty"`
	Capabilities []Capability `json:"capabilities"`
	// RequiredWith keys must be present in a step's properties.with.
	RequiredWith []string `json:"required_with,omitempty"`
	// OptionalWith keys are recognized but not required.
	OptionalWith []string `json:"optional_with,omitempty"`
}

// Supports reports whether the descriptor declares the given capability.
func (d Descriptor) Supports(c Capability) bool {
	for _, cap := range d.Capabilities {
		if cap == c {
			return true
		}
	}
	return false
}

// Lookup is the read-only view the validator needs. A nil Lookup skips
// provider checks entirely.
type Lookup interface {
	Has(providerType string) bool
	Get(providerType string) (Descriptor, error)
}
