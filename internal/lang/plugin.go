package lang

import (
	"fmt"

	"github.com/malonaz/proto-rules/internal/graph"
)

// PluginSpec describes a custom protoc plugin as a language, letting callers
// register languages the stock registry doesn't know about.
type PluginSpec struct {
	// Language is the identifier the definition is registered under. It also
	// names the plugin's output flag ("--<language>_out").
	Language string

	// Plugin is the plugin executable, as a path or graph-internal target.
	Plugin string

	// Flags are extra compiler flags for this plugin.
	Flags []string

	// Provides are secondary output names, resolved by the sub-target naming
	// convention.
	Provides []string
}

// PluginDefinition builds a language definition around a custom plugin. The
// generated files cannot be predicted for an arbitrary plugin, so the
// invocation node declares no outs and the primary output groups whatever the
// plugin produced.
func PluginDefinition(spec PluginSpec) Definition {
	step := func(a StepArgs) (graph.Target, error) {
		if spec.Language == "" {
			return "", fmt.Errorf("plugin language cannot be empty")
		}
		if spec.Plugin == "" {
			return "", fmt.Errorf("plugin for language %q has no executable", spec.Language)
		}

		a.ProtocFlags = append(copyStrings(a.ProtocFlags), spec.Flags...)
		gen, err := protocInvocation(a, spec.Language, "--"+spec.Language+"_out=.", nil, spec.Plugin)
		if err != nil {
			return "", err
		}

		return library(a, spec.Language, "", gen, nil)
	}

	return Definition{
		BuildStep:          step,
		AdditionalProvides: ProvideNames(spec.Provides...),
	}
}
