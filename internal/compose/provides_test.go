package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/proto-rules/internal/graph"
)

func TestProvidesTable_Add(t *testing.T) {
	// Test: keys register once, duplicates are rejected
	table := newProvidesTable()

	require.NoError(t, table.add("go", "//p:_api#go"))
	err := table.add("go", "//p:_api#go2")

	var dupErr *DuplicateProviderKeyError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "go", dupErr.Key)

	target, ok := table.Lookup("go")
	require.True(t, ok)
	assert.Equal(t, graph.Target("//p:_api#go"), target)
}

func TestProvidesTable_KeysSorted(t *testing.T) {
	// Test: key iteration is lexicographic
	table := newProvidesTable()
	require.NoError(t, table.add("py", "//p:_api#py"))
	require.NoError(t, table.add("cc", "//p:_api#cc"))
	require.NoError(t, table.add(ProvenanceKey, "//p:_api#proto"))

	assert.Equal(t, []string{"cc", ProvenanceKey, "py"}, table.Keys())
}

func TestProvidesTable_ValuesDeduplicated(t *testing.T) {
	// Test: two keys mapping to one target contribute a single value
	table := newProvidesTable()
	require.NoError(t, table.add("go", "//p:_api#go"))
	require.NoError(t, table.add("go_src", "//p:_api#go"))
	require.NoError(t, table.add("py", "//p:_api#py"))

	values := table.Values()
	assert.Len(t, values, 2)
	assert.Contains(t, values, graph.Target("//p:_api#go"))
	assert.Contains(t, values, graph.Target("//p:_api#py"))
}

func TestProvidesTable_Map_Copies(t *testing.T) {
	// Test: mutating the returned map doesn't affect the table
	table := newProvidesTable()
	require.NoError(t, table.add("go", "//p:_api#go"))

	entries := table.Map()
	entries["py"] = "//p:_api#py"

	_, ok := table.Lookup("py")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}
