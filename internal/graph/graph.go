// Package graph describes a build graph: addressable nodes with declared
// inputs, outputs and a production rule. It only models graph shape; executing
// the graph is the build engine's job.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Target is the label of a node, e.g. "//proto/example:api" or ":api" for the
// current package. Sub-targets are addressed by appending "#<key>".
type Target string

// NodeSpec declares a node to be added to a Graph.
type NodeSpec struct {
	// Name is the node's name, unique within the graph.
	Name string

	// Srcs are the input files, relative to the package directory.
	Srcs []string

	// Outs are the declared output files.
	Outs []string

	// Cmd is the production rule. Empty for grouping nodes.
	Cmd string

	// Tools are executables the command needs. Each entry is either a
	// filesystem path or a graph-internal target label.
	Tools []string

	// Deps are targets that must be built before this node.
	Deps []Target

	// ExportedDeps are deps that are additionally re-exported to anything
	// depending on this node.
	ExportedDeps []Target

	// Visibility controls which packages may depend on this node.
	Visibility []string

	// Labels are free-form classification strings.
	Labels []string

	// TestOnly restricts the node to test consumers.
	TestOnly bool

	// Intermediate marks the node's output as not being a final artifact.
	Intermediate bool

	// Provides maps logical keys to targets, letting a dependent resolve a
	// specific output of this node instead of the default one.
	Provides map[string]Target
}

// Node is a node registered in a Graph.
type Node struct {
	Target Target
	Spec   NodeSpec
}

// Graph is one package-scoped build graph under construction.
type Graph struct {
	pkg   string
	nodes map[string]*Node
}

// New creates an empty graph for the given package path ("" for the root
// package).
func New(pkg string) *Graph {
	return &Graph{
		pkg:   pkg,
		nodes: make(map[string]*Node),
	}
}

// Pkg returns the package path this graph describes.
func (g *Graph) Pkg() string {
	return g.pkg
}

// Label returns the fully-qualified target label for a node name in this
// graph's package.
func (g *Graph) Label(name string) Target {
	return Target("//" + g.pkg + ":" + name)
}

// AddNode registers a node and returns its target label. Names must be unique
// within the graph.
func (g *Graph) AddNode(spec NodeSpec) (Target, error) {
	if spec.Name == "" {
		return "", fmt.Errorf("node name cannot be empty")
	}
	if _, exists := g.nodes[spec.Name]; exists {
		return "", fmt.Errorf("node %q already exists in package %q", spec.Name, g.pkg)
	}

	target := g.Label(spec.Name)
	g.nodes[spec.Name] = &Node{
		Target: target,
		Spec:   spec,
	}

	return target, nil
}

// Node returns the node registered under the given target, if any. The target
// may use the ":name" short form for the graph's own package; targets in other
// packages are never found, even when their name matches a local node.
func (g *Graph) Node(target Target) (*Node, bool) {
	node, ok := g.nodes[g.nodeName(target)]
	return node, ok
}

// Resolve looks up the target a node provides under the given key. It fails if
// the target is unknown to this graph or declares no such key.
func (g *Graph) Resolve(target Target, key string) (Target, error) {
	node, ok := g.Node(target)
	if !ok {
		return "", fmt.Errorf("unknown target %s", target)
	}

	provided, ok := node.Spec.Provides[key]
	if !ok {
		return "", fmt.Errorf("target %s provides no key %q", target, key)
	}

	return provided, nil
}

// Targets returns the labels of all registered nodes, sorted for deterministic
// iteration.
func (g *Graph) Targets() []Target {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]Target, len(names))
	for i, name := range names {
		targets[i] = g.nodes[name].Target
	}

	return targets
}

// Sorted returns all nodes in topological order (dependencies first) using
// Kahn's algorithm. Dependencies on targets outside this graph are ignored.
// Returns an error if the graph contains a cycle.
func (g *Graph) Sorted() ([]*Node, error) {
	inDegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))

	for name, node := range g.nodes {
		if _, ok := inDegree[name]; !ok {
			inDegree[name] = 0
		}
		for _, dep := range g.internalDeps(node) {
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	// Seed the queue with dependency-free nodes, sorted so the resulting
	// order is stable across runs.
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []*Node
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current])

		next := dependents[current]
		sort.Strings(next)
		for _, name := range next {
			inDegree[name]--
			if inDegree[name] == 0 {
				queue = append(queue, name)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("cycle detected in build graph for package %q", g.pkg)
	}

	return result, nil
}

// internalDeps returns the names of dependencies that resolve to nodes within
// this graph, deduplicated.
func (g *Graph) internalDeps(node *Node) []string {
	seen := make(map[string]bool)
	var names []string

	add := func(target Target) {
		name := g.nodeName(target)
		if _, ok := g.nodes[name]; !ok {
			return
		}
		// A sub-target reference still depends on its parent node.
		if name == node.Spec.Name || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, dep := range node.Spec.Deps {
		add(dep)
	}
	for _, dep := range node.Spec.ExportedDeps {
		add(dep)
	}

	return names
}

// nodeName extracts the node name a target refers to, or "" when the target
// lives in another package. A sub-target like "_api#cc#cc_hdrs" resolves to
// its owning node by peeling trailing "#key" segments until a registered name
// matches.
func (g *Graph) nodeName(target Target) string {
	s := string(target)
	switch {
	case strings.HasPrefix(s, "//"):
		rest := s[2:]
		i := strings.Index(rest, ":")
		if i < 0 || rest[:i] != g.pkg {
			return ""
		}
		s = rest[i+1:]
	case strings.HasPrefix(s, ":"):
		s = s[1:]
	}

	name := s
	for {
		if _, ok := g.nodes[name]; ok {
			return name
		}
		i := strings.LastIndex(name, "#")
		if i < 0 {
			return s
		}
		name = name[:i]
	}
}
