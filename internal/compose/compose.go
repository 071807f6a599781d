// Package compose builds the multi-language code-generation portion of a
// build graph from one logical source-definition target: it resolves the
// requested languages against a registry, invokes each language's build step
// with a normalized argument bundle, collects the declared outputs into a
// provides table and wires the user-facing aggregate node on top.
package compose

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/malonaz/proto-rules/internal/graph"
	"github.com/malonaz/proto-rules/internal/lang"
	"github.com/malonaz/proto-rules/internal/toolchain"
)

// Request is one top-level composition request. All entities derived from it
// are constructed once and immutable after the aggregate is emitted.
type Request struct {
	// Name is the externally-visible logical target name.
	Name string

	// Srcs are the interface-definition files.
	Srcs []string

	// Deps are targets the source files themselves require.
	Deps []graph.Target

	Visibility []string
	Labels     []string

	// Languages selects which languages to generate. The zero value selects
	// all registry defaults.
	Languages Selection

	TestOnly bool

	// Root is the directory the compiler resolves imports relative to.
	Root string

	// ProtocFlags are extra compiler flags passed to every language's
	// invocation.
	ProtocFlags []string

	// Context carries optional language-specific settings.
	Context map[string]string

	// Toolchain locates the compiler. The zero value uses executables from
	// PATH.
	Toolchain toolchain.Toolchain

	// Registry supplies the default language definitions. The zero value
	// uses the entry point's stock registry.
	Registry lang.Registry

	Logger zerolog.Logger
}

// Aggregate is the single node callers depend on. It carries the provides
// table forward so a second-order composition can resolve a specific
// language's artifact by key instead of re-deriving language defaults.
type Aggregate struct {
	Target   graph.Target
	Provides *ProvidesTable
}

// ProtoLibrary composes message-generation steps for every requested language
// plus the provenance node, and returns the aggregate target.
//
// On error the graph may retain nodes added for languages that completed
// before the failure; callers composing several requests into one graph must
// discard the graph when any request fails.
func ProtoLibrary(g *graph.Graph, req Request) (*Aggregate, error) {
	registry := req.Registry
	if registry.Len() == 0 {
		registry = lang.DefaultRegistry()
	}
	return composeLibrary(g, req, registry)
}

// GRPCLibrary composes service-stub generation steps. It substitutes the
// gRPC-oriented language registry while honoring explicit caller overrides,
// fixes the "grpc" classification label and otherwise delegates to the same
// pipeline as ProtoLibrary, including its discard-the-graph-on-error contract.
func GRPCLibrary(g *graph.Graph, req Request) (*Aggregate, error) {
	registry := req.Registry
	if registry.Len() == 0 {
		registry = lang.GRPCRegistry()
	}

	selection, err := MergeDefaults(req.Languages, registry)
	if err != nil {
		return nil, err
	}
	req.Languages = selection
	req.Labels = append(append([]string(nil), req.Labels...), "grpc")

	return composeLibrary(g, req, registry)
}

func composeLibrary(g *graph.Graph, req Request, registry lang.Registry) (*Aggregate, error) {
	if req.Name == "" {
		return nil, ErrNoName
	}
	if len(req.Srcs) == 0 {
		return nil, ErrNoSources
	}
	if req.Toolchain == (toolchain.Toolchain{}) {
		req.Toolchain = toolchain.Default()
	}
	if err := req.Toolchain.Validate(); err != nil {
		return nil, err
	}

	resolved, err := resolveLanguages(req.Languages, registry)
	if err != nil {
		return nil, err
	}

	provenance, err := provenanceTarget(g, req)
	if err != nil {
		return nil, err
	}

	table := newProvidesTable()
	if err := table.add(ProvenanceKey, provenance); err != nil {
		return nil, err
	}

	for _, language := range resolved {
		primary, err := language.def.BuildStep(lang.StepArgs{
			Graph:       g,
			Toolchain:   req.Toolchain,
			Name:        req.Name,
			Proto:       provenance,
			Srcs:        req.Srcs,
			Deps:        req.Deps,
			Visibility:  req.Visibility,
			Labels:      req.Labels,
			TestOnly:    req.TestOnly,
			Root:        req.Root,
			ProtocFlags: req.ProtocFlags,
			Context:     req.Context,
			Logger:      req.Logger,
		})
		if err != nil {
			// A graph missing one language silently breaks its consumers, so
			// a step failure aborts the whole request, unwrapped.
			return nil, err
		}

		if err := table.add(language.id, primary); err != nil {
			return nil, err
		}

		secondary := language.def.AdditionalProvides.Entries(g, req.Name, primary)
		names := make([]string, 0, len(secondary))
		for name := range secondary {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := table.add(name, secondary[name]); err != nil {
				return nil, err
			}
		}
	}

	target, err := g.Filegroup(graph.FilegroupSpec{
		Name:       req.Name,
		Srcs:       req.Srcs,
		Deps:       table.Values(),
		Visibility: req.Visibility,
		Labels:     req.Labels,
		TestOnly:   req.TestOnly,
		Provides:   table.Map(),
	})
	if err != nil {
		return nil, err
	}

	req.Logger.Debug().
		Str("target", string(target)).
		Int("languages", len(resolved)).
		Int("provides", table.Len()).
		Msg("composed aggregate target")

	return &Aggregate{Target: target, Provides: table}, nil
}

// provenanceTarget builds the node representing the raw definition files,
// re-exporting the caller's deps. When the compiler is itself a graph node,
// the node additionally depends on the toolchain's well-known shared
// definitions so every language's generated code can resolve standard imports.
func provenanceTarget(g *graph.Graph, req Request) (graph.Target, error) {
	var deps []graph.Target
	if toolchain.IsGraphInternal(req.Toolchain.Protoc) {
		deps = append(deps, graph.Target(req.Toolchain.WellKnownDefs))
	}

	return g.Filegroup(graph.FilegroupSpec{
		Name:         "_" + req.Name + "#proto",
		Srcs:         req.Srcs,
		Deps:         deps,
		ExportedDeps: req.Deps,
		Visibility:   req.Visibility,
		TestOnly:     req.TestOnly,
		Intermediate: true,
	})
}
