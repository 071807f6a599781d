package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/proto-rules/internal/lang"
)

func TestResolveLanguages_AllDefaults(t *testing.T) {
	// Test: the zero selection resolves the full registry in sorted order
	resolved, err := resolveLanguages(SelectAll(), lang.DefaultRegistry())
	require.NoError(t, err)

	var ids []string
	for _, language := range resolved {
		ids = append(ids, language.id)
	}
	assert.Equal(t, []string{"cc", "go", "java", "py"}, ids)
}

func TestResolveLanguages_IDList(t *testing.T) {
	// Test: identifier lists are sorted and deduplicated
	resolved, err := resolveLanguages(SelectLanguages("py", "cc", "py"), lang.DefaultRegistry())
	require.NoError(t, err)

	var ids []string
	for _, language := range resolved {
		ids = append(ids, language.id)
	}
	assert.Equal(t, []string{"cc", "py"}, ids)
}

func TestResolveLanguages_UnknownID(t *testing.T) {
	// Test: unknown identifiers fail resolution
	_, err := resolveLanguages(SelectLanguages("rust"), lang.DefaultRegistry())

	var unknownErr *UnknownLanguageError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "rust", unknownErr.Language)
}

func TestResolveLanguages_OverrideMapUnknownKey(t *testing.T) {
	// Test: a nil override for an unregistered language fails resolution
	selection := SelectOverrides(map[string]*lang.Definition{"rust": nil})

	_, err := resolveLanguages(selection, lang.DefaultRegistry())

	var unknownErr *UnknownLanguageError
	require.True(t, errors.As(err, &unknownErr))
}

func TestMergeDefaults_FillsNilOverrides(t *testing.T) {
	// Test: present keys keep caller overrides, nil values take the registry
	// default, absent keys are not added
	override := lang.Definition{BuildStep: lang.GoDefinition().BuildStep}
	selection := SelectOverrides(map[string]*lang.Definition{
		"go": &override,
		"py": nil,
	})

	merged, err := MergeDefaults(selection, lang.GRPCRegistry())
	require.NoError(t, err)

	resolved, err := resolveLanguages(merged, lang.NewRegistry(nil))
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "go", resolved[0].id)
	assert.Equal(t, "py", resolved[1].id)
}

func TestMergeDefaults_UnknownKey(t *testing.T) {
	// Test: a nil override absent from the registry fails the merge
	selection := SelectOverrides(map[string]*lang.Definition{"rust": nil})

	_, err := MergeDefaults(selection, lang.GRPCRegistry())

	var unknownErr *UnknownLanguageError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "rust", unknownErr.Language)
}

func TestMergeDefaults_PassesThroughLists(t *testing.T) {
	// Test: identifier lists and the all-defaults selection are unchanged
	list := SelectLanguages("go")
	merged, err := MergeDefaults(list, lang.GRPCRegistry())
	require.NoError(t, err)
	assert.Equal(t, list, merged)

	all := SelectAll()
	merged, err = MergeDefaults(all, lang.GRPCRegistry())
	require.NoError(t, err)
	assert.True(t, merged.IsAll())
}
