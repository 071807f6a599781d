package compose

import (
	"sort"

	"github.com/malonaz/proto-rules/internal/lang"
)

type selectionKind int

const (
	allDefaults selectionKind = iota
	idList
	overrideMap
)

// Selection is the caller's request for which languages to generate. It is a
// tagged variant: all registry defaults, an explicit identifier list taking
// defaults verbatim, or a per-language override map where a nil override means
// "use the registry default".
type Selection struct {
	kind      selectionKind
	ids       []string
	overrides map[string]*lang.Definition
}

// SelectAll requests every language in the registry.
func SelectAll() Selection {
	return Selection{kind: allDefaults}
}

// SelectLanguages requests exactly the given language identifiers, using the
// registry defaults for each.
func SelectLanguages(ids ...string) Selection {
	return Selection{kind: idList, ids: append([]string(nil), ids...)}
}

// SelectOverrides requests the mapped languages, substituting each non-nil
// definition for the registry default.
func SelectOverrides(overrides map[string]*lang.Definition) Selection {
	copied := make(map[string]*lang.Definition, len(overrides))
	for id, def := range overrides {
		copied[id] = def
	}
	return Selection{kind: overrideMap, overrides: copied}
}

// IsAll reports whether the selection requests all registry defaults.
func (s Selection) IsAll() bool {
	return s.kind == allDefaults
}

// MergeDefaults fills a selection's nil overrides from the given registry,
// producing an effective selection where every present key carries a concrete
// definition. Keys absent from the selection are not added; identifier-list
// and all-defaults selections pass through unchanged. This runs before
// resolution so an entry point can substitute its own registry while honoring
// explicit caller overrides.
func MergeDefaults(sel Selection, defaults lang.Registry) (Selection, error) {
	if sel.kind != overrideMap {
		return sel, nil
	}

	merged := make(map[string]*lang.Definition, len(sel.overrides))
	for id, override := range sel.overrides {
		if override != nil {
			merged[id] = override
			continue
		}
		def, ok := defaults.Get(id)
		if !ok {
			return Selection{}, &UnknownLanguageError{Language: id}
		}
		merged[id] = &def
	}

	return SelectOverrides(merged), nil
}

// resolvedLanguage pairs a language identifier with its effective definition.
type resolvedLanguage struct {
	id  string
	def lang.Definition
}

// resolveLanguages produces the effective (identifier, definition) pairs for a
// selection, sorted lexicographically by identifier so the resulting graph
// shape is stable across runs with the same logical inputs.
func resolveLanguages(sel Selection, defaults lang.Registry) ([]resolvedLanguage, error) {
	var resolved []resolvedLanguage

	switch sel.kind {
	case allDefaults:
		for _, id := range defaults.IDs() {
			def, _ := defaults.Get(id)
			resolved = append(resolved, resolvedLanguage{id: id, def: def})
		}

	case idList:
		ids := append([]string(nil), sel.ids...)
		sort.Strings(ids)
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			def, ok := defaults.Get(id)
			if !ok {
				return nil, &UnknownLanguageError{Language: id}
			}
			resolved = append(resolved, resolvedLanguage{id: id, def: def})
		}

	case overrideMap:
		ids := make([]string, 0, len(sel.overrides))
		for id := range sel.overrides {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if override := sel.overrides[id]; override != nil {
				resolved = append(resolved, resolvedLanguage{id: id, def: *override})
				continue
			}
			def, ok := defaults.Get(id)
			if !ok {
				return nil, &UnknownLanguageError{Language: id}
			}
			resolved = append(resolved, resolvedLanguage{id: id, def: def})
		}
	}

	return resolved, nil
}
