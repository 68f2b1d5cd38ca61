package expressions

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCEL(t *testing.T) *CELEngine {
	t.Helper()
	e, err := NewCELEngine()
	require.NoError(t, err)
	return e
}

func TestCELEngine_Name(t *testing.T) {
	assert.Equal(t, "cel", newCEL(t).Name())
}

func TestCELEngine_CompileValid(t *testing.T) {
	e := newCEL(t)
	assert.NoError(t, e.Compile(`alert.severity == "critical"`))
	assert.NoError(t, e.Compile(`size(steps) > 0 && inputs.enabled == true`))
}

func TestCELEngine_CompileInvalid(t *testing.T) {
	e := newCEL(t)
	assert.Error(t, e.Compile("alert.severity =="))
	assert.Error(t, e.Compile(""))
}

func TestCELEngine_CompileUnknownRootVariable(t *testing.T) {
	e := newCEL(t)
	assert.Error(t, e.Compile("secrets.token == 'x'"), "only the four namespaces exist")
}

func TestCELEngine_Evaluate(t *testing.T) {
	e := newCEL(t)
	out, err := e.Evaluate(context.Background(), `alert.severity == "critical"`, map[string]any{
		"alert": map[string]any{"severity": "critical"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestCELEngine_EvaluateMissingNamespaceDefaultsToEmptyMap(t *testing.T) {
	e := newCEL(t)
	out, err := e.Evaluate(context.Background(), "size(alert) == 0", nil)
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestCELEngine_CompileResultIsCached(t *testing.T) {
	e := newCEL(t)
	expr := "size(steps) > 0"
	require.NoError(t, e.Compile(expr))

	e.mu.RLock()
	_, cached := e.cache[expr]
	e.mu.RUnlock()
	assert.True(t, cached)
}

func TestCELEngine_ConcurrentCompile(t *testing.T) {
	e := newCEL(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Compile(`alert.status == "firing"`))
		}()
	}
	wg.Wait()
}
