package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/proto-rules/internal/config"
)

func TestInitCommand_WritesManifest(t *testing.T) {
	// Test: init writes a loadable manifest from the chosen options
	dir := t.TempDir()
	cmd := NewInitCommand(dir)
	cmd.testOptions = &InitOptions{
		TargetName: "api",
		Srcs:       "api.proto, common.proto",
		Languages:  []string{"go", "py"},
		GRPC:       true,
	}

	require.NoError(t, cmd.Run(context.Background()))

	cfg, err := config.LoadConfigFromPath(filepath.Join(dir, config.ManifestName))
	require.NoError(t, err)
	require.Len(t, cfg.Targets, 1)

	target := cfg.Targets[0]
	assert.Equal(t, "api", target.Name)
	assert.Equal(t, config.KindGRPC, target.Kind)
	assert.Equal(t, []string{"api.proto", "common.proto"}, target.Srcs)
	assert.False(t, target.Languages.ToSelection().IsAll())
}

func TestInitCommand_NoLanguagesSelectsAll(t *testing.T) {
	// Test: leaving the language multi-select empty keeps all defaults
	dir := t.TempDir()
	cmd := NewInitCommand(dir)
	cmd.testOptions = &InitOptions{
		TargetName: "api",
		Srcs:       "api.proto",
	}

	require.NoError(t, cmd.Run(context.Background()))

	cfg, err := config.LoadConfigFromPath(filepath.Join(dir, config.ManifestName))
	require.NoError(t, err)
	assert.True(t, cfg.Targets[0].Languages.ToSelection().IsAll())
}

func TestInitCommand_ExistingManifest(t *testing.T) {
	// Test: init refuses to overwrite an existing manifest
	dir := t.TempDir()
	path := filepath.Join(dir, config.ManifestName)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	cmd := NewInitCommand(dir)
	cmd.testOptions = &InitOptions{TargetName: "api", Srcs: "api.proto"}

	err := cmd.Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
