// Package lang defines the pluggable per-language code-generation behaviors
// and the registry they are looked up in. A Definition knows how to turn
// shared .proto sources into one language's build steps; the composition layer
// treats every language uniformly through this contract.
package lang

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/malonaz/proto-rules/internal/graph"
	"github.com/malonaz/proto-rules/internal/toolchain"
)

// StepArgs is the normalized argument bundle passed to every language's build
// step within one request. It is identical across languages; deriving a
// collision-free per-language child name from Name is each step's own job.
type StepArgs struct {
	// Graph is the build graph being composed into.
	Graph *graph.Graph

	// Toolchain locates the compiler and its companions.
	Toolchain toolchain.Toolchain

	// Name is the externally-visible logical target name.
	Name string

	// Proto is the provenance target grouping the raw source files.
	Proto graph.Target

	// Srcs are the interface-definition files.
	Srcs []string

	// Deps are targets the sources depend on.
	Deps []graph.Target

	Visibility []string
	Labels     []string
	TestOnly   bool

	// Root is the directory protoc resolves imports relative to.
	Root string

	// ProtocFlags are extra compiler flags appended verbatim.
	ProtocFlags []string

	// Context carries optional language-specific settings.
	Context map[string]string

	Logger zerolog.Logger
}

// StepFunc builds one language's generation steps and returns the target
// identifying its primary output.
type StepFunc func(args StepArgs) (graph.Target, error)

// Definition describes one target language's code-generation behavior.
// Immutable once registered.
type Definition struct {
	// BuildStep constructs the language's build steps.
	BuildStep StepFunc

	// AdditionalProvides declares secondary outputs beyond the primary one.
	AdditionalProvides Provides
}

// Provides is a declaration of secondary output names, expressed either as a
// plain name set (each resolved to a conventionally-named sub-target of the
// primary output) or as an explicit name-to-sub-target mapping.
type Provides struct {
	names   []string
	targets map[string]string
}

// ProvideNames declares secondary outputs resolved by the naming convention
// "<primary>#<name>".
func ProvideNames(names ...string) Provides {
	return Provides{names: append([]string(nil), names...)}
}

// ProvideTargets declares secondary outputs with explicit sub-target names.
// Values may contain the "{name}" placeholder, substituted with the request's
// logical target name.
func ProvideTargets(targets map[string]string) Provides {
	copied := make(map[string]string, len(targets))
	for name, sub := range targets {
		copied[name] = sub
	}
	return Provides{targets: copied}
}

// Empty reports whether no secondary outputs are declared.
func (p Provides) Empty() bool {
	return len(p.names) == 0 && len(p.targets) == 0
}

// Entries resolves the declared secondary outputs to concrete targets, given
// the graph, the request's logical name and the step's primary output.
func (p Provides) Entries(g *graph.Graph, name string, primary graph.Target) map[string]graph.Target {
	entries := make(map[string]graph.Target, len(p.names)+len(p.targets))
	for _, n := range p.names {
		entries[n] = graph.Target(string(primary) + "#" + n)
	}
	for n, sub := range p.targets {
		entries[n] = g.Label(strings.ReplaceAll(sub, "{name}", name))
	}
	return entries
}
