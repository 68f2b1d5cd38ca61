package providers

// Builtin returns a registry seeded with the provider types the hosted
// catalog ships. The `with` contracts mirror each provider's query/notify
// parameters, not its connection credentials (credential validation happens
// at install time, outside the linter).
func Builtin() *Registry {
	r := NewRegistry()
	for _, d := range builtinCatalog {
		// Catalog is static and duplicate-free; a failure here is a programming error.
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

var builtinCatalog = []Descriptor{
	{
		Type:         "grafana",
		Description:  "Query Grafana dashboards and alert rules",
		Capabilities: []Capability{CapabilityQuery},
		RequiredWith: []string{"query"},
		OptionalWith: []string{"datasource", "time_range"},
	},
	{
		Type:         "datadog",
		Description:  "Query Datadog metrics and monitors",
		Capabilities: []Capability{CapabilityQuery},
		RequiredWith: []string{"query"},
		OptionalWith: []string{"from", "to"},
	},
	{
		Type:         "cloudwatch",
		Description:  "Query AWS CloudWatch metrics and logs",
		Capabilities: []Capability{CapabilityQuery},
		RequiredWith: []string{"query"},
		OptionalWith: []string{"log_group", "region"},
	},
	{
		Type:         "gke",
		Description:  "Query GKE cluster state",
		Capabilities: []Capability{CapabilityQuery},
		RequiredWith: []string{"command"},
		OptionalWith: []string{"namespace"},
	},
	{
		Type:         "db",
		Description:  "Run a SQL query against a connected database",
		Capabilities: []Capability{CapabilityQuery},
		RequiredWith: []string{"query"},
		OptionalWith: []string{"single_row"},
	},
	{
		Type:         "slack",
		Description:  "Send a Slack message",
		Capabilities: []Capability{CapabilityNotify},
		RequiredWith: []string{"message"},
		OptionalWith: []string{"channel", "blocks"},
	},
	{
		Type:         "google_chat",
		Description:  "Send a Google Chat webhook message",
		Capabilities: []Capability{CapabilityNotify},
		RequiredWith: []string{"message"},
	},
	{
		Type:         "linear",
		Description:  "Create or update a Linear issue",
		Capabilities: []Capability{CapabilityNotify},
		RequiredWith: []string{"team", "title"},
		OptionalWith: []string{"description", "labels"},
	},
	{
		Type:         "mock",
		Description:  "Deterministic provider for tests and dry runs",
		Capabilities: []Capability{CapabilityQuery, CapabilityNotify},
	},
}
