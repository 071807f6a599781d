package lang

import (
	"sort"
)

// Registry is an immutable set of language definitions keyed by language
// identifier. It is constructed up front and passed explicitly into every
// composition call; it is never consulted as ambient global state.
type Registry struct {
	defs map[string]Definition
	ids  []string
}

// NewRegistry creates a registry from the given definitions. The input map is
// copied; the registry cannot be modified afterwards.
func NewRegistry(defs map[string]Definition) Registry {
	copied := make(map[string]Definition, len(defs))
	ids := make([]string, 0, len(defs))
	for id, def := range defs {
		copied[id] = def
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return Registry{defs: copied, ids: ids}
}

// Get returns the definition registered under the given language identifier.
func (r Registry) Get(id string) (Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// IDs returns the registered language identifiers in lexicographic order.
func (r Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Len returns the number of registered languages.
func (r Registry) Len() int {
	return len(r.defs)
}

// DefaultRegistry returns the stock protobuf message-generation languages.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Definition{
		"cc":   CCDefinition(),
		"go":   GoDefinition(),
		"java": JavaDefinition(),
		"py":   PythonDefinition(),
	})
}

// GRPCRegistry returns the service-stub generation variants of the stock
// languages, used as the default set by the gRPC entry point.
func GRPCRegistry() Registry {
	return NewRegistry(map[string]Definition{
		"cc":   CCGRPCDefinition(),
		"go":   GoGRPCDefinition(),
		"java": JavaGRPCDefinition(),
		"py":   PythonGRPCDefinition(),
	})
}
