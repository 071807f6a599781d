package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/proto-rules/internal/graph"
)

func TestRegistry_NewRegistry(t *testing.T) {
	// Test: registry copies its input and sorts identifiers
	defs := map[string]Definition{
		"py": PythonDefinition(),
		"cc": CCDefinition(),
	}
	r := NewRegistry(defs)

	// Mutating the input map doesn't affect the registry.
	defs["go"] = GoDefinition()
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"cc", "py"}, r.IDs())
}

func TestRegistry_Get(t *testing.T) {
	// Test: lookup hits and misses
	r := DefaultRegistry()

	def, ok := r.Get("go")
	require.True(t, ok)
	assert.NotNil(t, def.BuildStep)

	_, ok = r.Get("rust")
	assert.False(t, ok)
}

func TestDefaultRegistry_Languages(t *testing.T) {
	// Test: the stock registry carries the four default languages
	r := DefaultRegistry()
	assert.Equal(t, []string{"cc", "go", "java", "py"}, r.IDs())
}

func TestGRPCRegistry_Languages(t *testing.T) {
	// Test: the gRPC registry mirrors the stock language set
	r := GRPCRegistry()
	assert.Equal(t, []string{"cc", "go", "java", "py"}, r.IDs())
}

func TestProvides_Entries_NameSet(t *testing.T) {
	// Test: plain names resolve by the "<primary>#<name>" convention
	g := graph.New("p")
	provides := ProvideNames("cc_hdrs")

	entries := provides.Entries(g, "api", "//p:_api#cc")
	assert.Equal(t, map[string]graph.Target{
		"cc_hdrs": "//p:_api#cc#cc_hdrs",
	}, entries)
}

func TestProvides_Entries_ExplicitMapping(t *testing.T) {
	// Test: explicit mappings resolve sub-target names, expanding {name}
	g := graph.New("p")
	provides := ProvideTargets(map[string]string{
		"go_src": "_{name}#protoc_go",
	})

	entries := provides.Entries(g, "api", "//p:_api#go")
	assert.Equal(t, map[string]graph.Target{
		"go_src": "//p:_api#protoc_go",
	}, entries)
}

func TestProvides_Empty(t *testing.T) {
	// Test: zero value declares nothing
	assert.True(t, Provides{}.Empty())
	assert.False(t, ProvideNames("x").Empty())
	assert.False(t, ProvideTargets(map[string]string{"x": "y"}).Empty())
}
