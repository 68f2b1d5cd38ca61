package providers

import (
	"sync"
	"testing"

	"github.com/flowlint/flowlint/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryDescriptor(ptype string) Descriptor {
	return Descriptor{
		Type:         ptype,
		Capabilities: []Capability{CapabilityQuery},
		RequiredWith: []string{"query"},
	}
}

// --- Register ---

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(queryDescriptor("prom")))
	assert.True(t, r.Has("prom"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(queryDescriptor("prom")))

	err := r.Register(queryDescriptor("prom"))
	require.Error(t, err)
	var lintErr *schema.LintError
	require.ErrorAs(t, err, &lintErr)
	assert.Equal(t, schema.ErrCodeConflict, lintErr.Code)
}

func TestRegistry_RegisterEmptyType(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Descriptor{Capabilities: []Capability{CapabilityQuery}}))
}

func TestRegistry_RegisterNoCapabilities(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Descriptor{Type: "prom"}))
}

// --- Get / Has ---

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("ghost")
	require.Error(t, err)
	var lintErr *schema.LintError
	require.ErrorAs(t, err, &lintErr)
	assert.Equal(t, schema.ErrCodeProviderUnavailable, lintErr.Code)
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(queryDescriptor("prom")))

	d, err := r.Get("prom")
	require.NoError(t, err)
	assert.Equal(t, []string{"query"}, d.RequiredWith)
}

// --- List ---

func TestRegistry_ListSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(queryDescriptor("zabbix")))
	require.NoError(t, r.Register(queryDescriptor("axiom")))
	require.NoError(t, r.Register(queryDescriptor("mimir")))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "axiom", list[0].Type)
	assert.Equal(t, "mimir", list[1].Type)
	assert.Equal(t, "zabbix", list[2].Type)
}

// --- Descriptor ---

func TestDescriptor_Supports(t *testing.T) {
	d := Descriptor{Type: "mock", Capabilities: []Capability{CapabilityQuery, CapabilityNotify}}
	assert.True(t, d.Supports(CapabilityQuery))
	assert.True(t, d.Supports(CapabilityNotify))

	q := queryDescriptor("prom")
	assert.False(t, q.Supports(CapabilityNotify))
}

// --- Builtin catalog ---

func TestBuiltin_KnownProviders(t *testing.T) {
	r := Builtin()
	for _, ptype := range []string{"grafana", "datadog", "cloudwatch", "gke", "db", "slack", "google_chat", "linear", "mock"} {
		assert.True(t, r.Has(ptype), "missing builtin provider %q", ptype)
	}
}

func TestBuiltin_CapabilitiesSplit(t *testing.T) {
	r := Builtin()

	grafana, err := r.Get("grafana")
	require.NoError(t, err)
	assert.True(t, grafana.Supports(CapabilityQuery))
	assert.False(t, grafana.Supports(CapabilityNotify))

	slack, err := r.Get("slack")
	require.NoError(t, err)
	assert.True(t, slack.Supports(CapabilityNotify))
	assert.False(t, slack.Supports(CapabilityQuery))

	mock, err := r.Get("mock")
	require.NoError(t, err)
	assert.True(t, mock.Supports(CapabilityQuery))
	assert.True(t, mock.Supports(CapabilityNotify))
}

// --- Concurrency ---

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := Builtin()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = r.Has("grafana")
				_, _ = r.Get("slack")
				_ = r.List()
			}
		}()
	}
	wg.Wait()
}
