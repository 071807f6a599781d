package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/malonaz/proto-rules/internal/compose"
	"github.com/malonaz/proto-rules/internal/lang"
)

// LanguageSelection is the polymorphic "languages" manifest field: absent or
// null selects all registry defaults, an array selects those identifiers, and
// an object maps identifiers to optional plugin overrides (null value = use
// the registry default). The JSON shape is resolved into a tagged value at
// decode time; nothing downstream inspects raw JSON.
type LanguageSelection struct {
	ids     []string
	plugins map[string]*PluginConfig
	set     bool
	mapped  bool
}

// PluginConfig overrides one language with a custom protoc plugin.
type PluginConfig struct {
	Plugin   string   `json:"plugin"`
	Flags    []string `json:"flags"`
	Provides []string `json:"provides"`
}

// SelectAllLanguages returns the selection taking every registry default.
func SelectAllLanguages() LanguageSelection {
	return LanguageSelection{}
}

// SelectLanguageIDs returns a selection of exactly the given identifiers.
func SelectLanguageIDs(ids ...string) LanguageSelection {
	return LanguageSelection{ids: append([]string(nil), ids...), set: true}
}

// UnmarshalJSON decodes the array, object or null form.
func (s *LanguageSelection) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = LanguageSelection{}
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		*s = LanguageSelection{ids: ids, set: true}
		return nil
	}

	var plugins map[string]*PluginConfig
	if err := json.Unmarshal(data, &plugins); err != nil {
		return fmt.Errorf("languages must be an array of identifiers or an identifier-to-plugin object: %w", err)
	}
	*s = LanguageSelection{plugins: plugins, set: true, mapped: true}

	return nil
}

// MarshalJSON encodes the selection back into its manifest form.
func (s LanguageSelection) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	if s.mapped {
		return json.Marshal(s.plugins)
	}
	return json.Marshal(s.ids)
}

// ToSelection converts the manifest field into a composition selection,
// building plugin-backed definitions for explicit overrides.
func (s LanguageSelection) ToSelection() compose.Selection {
	if !s.set {
		return compose.SelectAll()
	}

	if !s.mapped {
		return compose.SelectLanguages(s.ids...)
	}

	overrides := make(map[string]*lang.Definition, len(s.plugins))
	for id, plugin := range s.plugins {
		if plugin == nil {
			overrides[id] = nil
			continue
		}
		def := lang.PluginDefinition(lang.PluginSpec{
			Language: id,
			Plugin:   plugin.Plugin,
			Flags:    plugin.Flags,
			Provides: plugin.Provides,
		})
		overrides[id] = &def
	}

	return compose.SelectOverrides(overrides)
}
