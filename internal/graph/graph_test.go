package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNode(t *testing.T) {
	// Test: AddNode returns a fully-qualified label
	g := New("proto/example")

	target, err := g.AddNode(NodeSpec{Name: "api"})
	require.NoError(t, err)
	assert.Equal(t, Target("//proto/example:api"), target)

	node, ok := g.Node(target)
	require.True(t, ok)
	assert.Equal(t, "api", node.Spec.Name)
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	// Test: duplicate node names within a graph are rejected
	g := New("proto/example")

	_, err := g.AddNode(NodeSpec{Name: "api"})
	require.NoError(t, err)

	_, err = g.AddNode(NodeSpec{Name: "api"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGraph_AddNode_EmptyName(t *testing.T) {
	// Test: nodes must be named
	g := New("")

	_, err := g.AddNode(NodeSpec{})
	assert.Error(t, err)
}

func TestGraph_Resolve(t *testing.T) {
	// Test: provides entries are resolvable by key
	g := New("proto/example")

	sub, err := g.AddNode(NodeSpec{Name: "_api#go"})
	require.NoError(t, err)

	target, err := g.AddNode(NodeSpec{
		Name:     "api",
		Provides: map[string]Target{"go": sub},
	})
	require.NoError(t, err)

	resolved, err := g.Resolve(target, "go")
	require.NoError(t, err)
	assert.Equal(t, sub, resolved)

	_, err = g.Resolve(target, "rust")
	assert.Error(t, err)

	_, err = g.Resolve("//proto/example:missing", "go")
	assert.Error(t, err)
}

func TestGraph_Targets_Sorted(t *testing.T) {
	// Test: target listing is deterministic regardless of insertion order
	g := New("p")

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := g.AddNode(NodeSpec{Name: name})
		require.NoError(t, err)
	}

	assert.Equal(t, []Target{"//p:alpha", "//p:mid", "//p:zeta"}, g.Targets())
}

func TestGraph_Sorted_TopologicalOrder(t *testing.T) {
	// Test: dependencies come before their dependents
	g := New("p")

	gen, err := g.AddNode(NodeSpec{Name: "_api#protoc_go"})
	require.NoError(t, err)
	lib, err := g.AddNode(NodeSpec{Name: "_api#go", Deps: []Target{gen}})
	require.NoError(t, err)
	_, err = g.AddNode(NodeSpec{Name: "api", Deps: []Target{lib}})
	require.NoError(t, err)

	nodes, err := g.Sorted()
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	position := make(map[string]int)
	for i, node := range nodes {
		position[node.Spec.Name] = i
	}
	assert.Less(t, position["_api#protoc_go"], position["_api#go"])
	assert.Less(t, position["_api#go"], position["api"])
}

func TestGraph_Sorted_SubTargetDependency(t *testing.T) {
	// Test: a dep on "_api#cc#cc_hdrs" orders after the owning "_api#cc" node
	g := New("p")

	_, err := g.AddNode(NodeSpec{Name: "_api#cc"})
	require.NoError(t, err)
	_, err = g.AddNode(NodeSpec{Name: "api", Deps: []Target{"//p:_api#cc#cc_hdrs"}})
	require.NoError(t, err)

	nodes, err := g.Sorted()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "_api#cc", nodes[0].Spec.Name)
	assert.Equal(t, "api", nodes[1].Spec.Name)
}

func TestGraph_Sorted_ExternalDepsIgnored(t *testing.T) {
	// Test: deps on targets outside the graph don't block sorting
	g := New("p")

	_, err := g.AddNode(NodeSpec{Name: "api", Deps: []Target{"//third_party:protobuf"}})
	require.NoError(t, err)

	nodes, err := g.Sorted()
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestGraph_Sorted_ExternalDepSharingLocalName(t *testing.T) {
	// Test: a dep on another package whose name matches a local node stays
	// external and never closes a spurious cycle
	g := New("p")

	_, err := g.AddNode(NodeSpec{Name: "api", Deps: []Target{":prov"}})
	require.NoError(t, err)
	_, err = g.AddNode(NodeSpec{Name: "prov", Deps: []Target{"//other:api"}})
	require.NoError(t, err)

	nodes, err := g.Sorted()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "prov", nodes[0].Spec.Name)
	assert.Equal(t, "api", nodes[1].Spec.Name)
}

func TestGraph_Node_ExternalPackage(t *testing.T) {
	// Test: lookups only match targets in the graph's own package
	g := New("p")

	_, err := g.AddNode(NodeSpec{Name: "api"})
	require.NoError(t, err)

	_, ok := g.Node("//other:api")
	assert.False(t, ok)
	_, ok = g.Node("//p:api")
	assert.True(t, ok)
	_, ok = g.Node(":api")
	assert.True(t, ok)

	_, err = g.Resolve("//other:api", "go")
	assert.Error(t, err)
}

func TestGraph_Sorted_CycleDetected(t *testing.T) {
	// Test: cyclic graphs are rejected
	g := New("p")

	_, err := g.AddNode(NodeSpec{Name: "a", Deps: []Target{"//p:b"}})
	require.NoError(t, err)
	_, err = g.AddNode(NodeSpec{Name: "b", Deps: []Target{"//p:a"}})
	require.NoError(t, err)

	_, err = g.Sorted()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestGraph_Filegroup(t *testing.T) {
	// Test: filegroup nodes carry srcs and exported deps, no command
	g := New("p")

	target, err := g.Filegroup(FilegroupSpec{
		Name:         "_api#proto",
		Srcs:         []string{"api.proto"},
		ExportedDeps: []Target{"//common:types"},
		Intermediate: true,
	})
	require.NoError(t, err)

	node, ok := g.Node(target)
	require.True(t, ok)
	assert.Empty(t, node.Spec.Cmd)
	assert.Equal(t, []string{"api.proto"}, node.Spec.Srcs)
	assert.Equal(t, []Target{"//common:types"}, node.Spec.ExportedDeps)
	assert.True(t, node.Spec.Intermediate)
}

func TestGraph_RemoteArchive(t *testing.T) {
	// Test: remote archive nodes require a URL
	g := New("p")

	_, err := g.RemoteArchive(RemoteArchiveSpec{Name: "_protoc#download"})
	assert.Error(t, err)

	target, err := g.RemoteArchive(RemoteArchiveSpec{
		Name: "_protoc#download",
		URL:  "https://example.com/protoc.zip",
		Hash: "abc123",
		Outs: []string{"bin/protoc"},
	})
	require.NoError(t, err)

	node, ok := g.Node(target)
	require.True(t, ok)
	assert.True(t, node.Spec.Intermediate)
	assert.Contains(t, node.Spec.Labels, "hash:abc123")
}
