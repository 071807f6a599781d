// Package plan turns a loaded manifest into a composed build graph and
// renders it for inspection.
package plan

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/malonaz/proto-rules/internal/compose"
	"github.com/malonaz/proto-rules/internal/config"
	"github.com/malonaz/proto-rules/internal/graph"
	"github.com/malonaz/proto-rules/internal/toolchain"
)

// Planner composes every manifest target into one build graph.
type Planner struct {
	config *config.Config
	pkg    string
	logger zerolog.Logger
}

// NewPlanner creates a planner for a loaded manifest. pkg is the package path
// composed targets are labeled under.
func NewPlanner(cfg *config.Config, pkg string, logger zerolog.Logger) *Planner {
	return &Planner{
		config: cfg,
		pkg:    pkg,
		logger: logger,
	}
}

// Plan is the result of composing a manifest.
type Plan struct {
	Graph      *graph.Graph
	Aggregates map[string]*compose.Aggregate

	// order preserves the manifest's target order for rendering.
	order []string
}

// Plan composes the graph. Any single target failure aborts the whole plan;
// a partial graph silently breaks consumers of the missing targets.
func (p *Planner) Plan() (*Plan, error) {
	g := graph.New(p.pkg)

	tc := toolchain.Toolchain{
		Protoc:        p.config.Toolchain.Protoc,
		GRPCPlugin:    p.config.Toolchain.GRPCPlugin,
		WellKnownDefs: p.config.Toolchain.WellKnownDefs,
	}
	if download := p.config.Toolchain.Download; download != nil {
		var err error
		tc, err = tc.WithDownload(g, toolchain.DownloadSpec{
			URL:  download.URL,
			Hash: download.Hash,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := tc.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{
		Graph:      g,
		Aggregates: make(map[string]*compose.Aggregate, len(p.config.Targets)),
	}

	for _, target := range p.config.Targets {
		deps := make([]graph.Target, len(target.Deps))
		for i, dep := range target.Deps {
			deps[i] = graph.Target(dep)
		}

		req := compose.Request{
			Name:        target.Name,
			Srcs:        target.Srcs,
			Deps:        deps,
			Visibility:  target.Visibility,
			Labels:      target.Labels,
			Languages:   target.Languages.ToSelection(),
			TestOnly:    target.TestOnly,
			Root:        target.Root,
			ProtocFlags: target.ProtocFlags,
			Toolchain:   tc,
			Logger:      p.logger,
		}

		var aggregate *compose.Aggregate
		var err error
		switch target.Kind {
		case config.KindGRPC:
			aggregate, err = compose.GRPCLibrary(g, req)
		default:
			aggregate, err = compose.ProtoLibrary(g, req)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to compose target %q: %w", target.Name, err)
		}

		plan.Aggregates[target.Name] = aggregate
		plan.order = append(plan.order, target.Name)

		p.logger.Info().
			Str("target", string(aggregate.Target)).
			Str("kind", target.Kind).
			Msg("planned target")
	}

	return plan, nil
}

// Render writes a human-readable listing of the plan: each aggregate with its
// provider keys, then the full node set in topological order.
func (plan *Plan) Render(w io.Writer) error {
	for _, name := range plan.order {
		aggregate := plan.Aggregates[name]
		fmt.Fprintf(w, "%s\n", aggregate.Target)
		for _, key := range aggregate.Provides.Keys() {
			target, _ := aggregate.Provides.Lookup(key)
			fmt.Fprintf(w, "  %-12s -> %s\n", key, target)
		}
	}

	nodes, err := plan.Graph.Sorted()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d nodes:\n", len(nodes))
	for _, node := range nodes {
		marker := " "
		if node.Spec.Intermediate {
			marker = "~"
		}
		fmt.Fprintf(w, "%s %s\n", marker, node.Target)
	}

	return nil
}

// planDump is the JSON shape of a rendered plan.
type planDump struct {
	Targets map[string]targetDump `json:"targets"`
	Nodes   []nodeDump            `json:"nodes"`
}

type targetDump struct {
	Target   graph.Target            `json:"target"`
	Provides map[string]graph.Target `json:"provides"`
}

type nodeDump struct {
	Target       graph.Target   `json:"target"`
	Srcs         []string       `json:"srcs,omitempty"`
	Outs         []string       `json:"outs,omitempty"`
	Cmd          string         `json:"cmd,omitempty"`
	Tools        []string       `json:"tools,omitempty"`
	Deps         []graph.Target `json:"deps,omitempty"`
	ExportedDeps []graph.Target `json:"exported_deps,omitempty"`
	Labels       []string       `json:"labels,omitempty"`
	TestOnly     bool           `json:"test_only,omitempty"`
	Intermediate bool           `json:"intermediate,omitempty"`
}

// JSON serializes the plan for machine consumers.
func (plan *Plan) JSON() ([]byte, error) {
	dump := planDump{Targets: make(map[string]targetDump, len(plan.Aggregates))}
	for name, aggregate := range plan.Aggregates {
		dump.Targets[name] = targetDump{
			Target:   aggregate.Target,
			Provides: aggregate.Provides.Map(),
		}
	}

	nodes, err := plan.Graph.Sorted()
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		dump.Nodes = append(dump.Nodes, nodeDump{
			Target:       node.Target,
			Srcs:         node.Spec.Srcs,
			Outs:         node.Spec.Outs,
			Cmd:          node.Spec.Cmd,
			Tools:        node.Spec.Tools,
			Deps:         node.Spec.Deps,
			ExportedDeps: node.Spec.ExportedDeps,
			Labels:       node.Spec.Labels,
			TestOnly:     node.Spec.TestOnly,
			Intermediate: node.Spec.Intermediate,
		})
	}

	return json.MarshalIndent(dump, "", "  ")
}
