package graph

import (
	"fmt"
)

// FilegroupSpec declares a grouping node: no production rule, just a named
// collection of files and dependencies.
type FilegroupSpec struct {
	Name         string
	Srcs         []string
	Deps         []Target
	ExportedDeps []Target
	Visibility   []string
	Labels       []string
	TestOnly     bool
	Intermediate bool
	Provides     map[string]Target
}

// Filegroup adds a grouping node to the graph.
func (g *Graph) Filegroup(spec FilegroupSpec) (Target, error) {
	return g.AddNode(NodeSpec{
		Name:         spec.Name,
		Srcs:         spec.Srcs,
		Deps:         spec.Deps,
		ExportedDeps: spec.ExportedDeps,
		Visibility:   spec.Visibility,
		Labels:       spec.Labels,
		TestOnly:     spec.TestOnly,
		Intermediate: spec.Intermediate,
		Provides:     spec.Provides,
	})
}

// RemoteArchiveSpec declares a node that downloads an archive, verifies its
// hash and extracts the listed outputs.
type RemoteArchiveSpec struct {
	Name string
	URL  string
	Hash string
	Outs []string
}

// RemoteArchive adds a download-and-extract node to the graph.
func (g *Graph) RemoteArchive(spec RemoteArchiveSpec) (Target, error) {
	if spec.URL == "" {
		return "", fmt.Errorf("remote archive %q has no URL", spec.Name)
	}

	return g.AddNode(NodeSpec{
		Name:         spec.Name,
		Outs:         spec.Outs,
		Cmd:          fmt.Sprintf("fetch %s", spec.URL),
		Labels:       []string{"remote", "hash:" + spec.Hash},
		Intermediate: true,
	})
}
