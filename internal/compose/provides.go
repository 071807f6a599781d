package compose

import (
	"sort"

	"github.com/malonaz/proto-rules/internal/graph"
)

// ProvenanceKey is the reserved provider key under which the raw-source node
// is registered. It is present in every request's provides table, regardless
// of which languages were requested.
const ProvenanceKey = "proto"

// ProvidesTable maps provider keys — language identifiers, secondary-output
// names and the reserved provenance key — to targets. Keys are unique.
type ProvidesTable struct {
	entries map[string]graph.Target
}

func newProvidesTable() *ProvidesTable {
	return &ProvidesTable{entries: make(map[string]graph.Target)}
}

// add registers a target under a key, rejecting collisions.
func (t *ProvidesTable) add(key string, target graph.Target) error {
	if _, exists := t.entries[key]; exists {
		return &DuplicateProviderKeyError{Key: key}
	}
	t.entries[key] = target
	return nil
}

// Lookup resolves a provider key to its target.
func (t *ProvidesTable) Lookup(key string) (graph.Target, bool) {
	target, ok := t.entries[key]
	return target, ok
}

// Keys returns all provider keys in lexicographic order.
func (t *ProvidesTable) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the distinct targets in key order.
func (t *ProvidesTable) Values() []graph.Target {
	seen := make(map[graph.Target]bool, len(t.entries))
	var values []graph.Target
	for _, key := range t.Keys() {
		target := t.entries[key]
		if seen[target] {
			continue
		}
		seen[target] = true
		values = append(values, target)
	}
	return values
}

// Map returns a copy of the key-to-target entries.
func (t *ProvidesTable) Map() map[string]graph.Target {
	copied := make(map[string]graph.Target, len(t.entries))
	for key, target := range t.entries {
		copied[key] = target
	}
	return copied
}

// Len returns the number of registered keys.
func (t *ProvidesTable) Len() int {
	return len(t.entries)
}
