// Package config loads the protos.json build manifest.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the manifest file searched for in the working directory and
// its parents.
const ManifestName = "protos.json"

// Config represents the protos.json manifest.
type Config struct {
	Toolchain ToolchainConfig `json:"toolchain"`
	Targets   []TargetConfig  `json:"targets"`
}

// ToolchainConfig locates the protobuf compiler. References are filesystem
// paths or graph-internal target labels; a download block fetches a release
// archive instead.
type ToolchainConfig struct {
	Protoc        string          `json:"protoc"`
	GRPCPlugin    string          `json:"grpc_plugin"`
	WellKnownDefs string          `json:"well_known_defs"`
	Download      *DownloadConfig `json:"download,omitempty"`
}

// DownloadConfig describes a compiler release archive.
type DownloadConfig struct {
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// TargetConfig declares one composition target.
type TargetConfig struct {
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Srcs        []string          `json:"srcs"`
	Deps        []string          `json:"deps"`
	Visibility  []string          `json:"visibility"`
	Labels      []string          `json:"labels"`
	Languages   LanguageSelection `json:"languages"`
	TestOnly    bool              `json:"test_only"`
	Root        string            `json:"root"`
	ProtocFlags []string          `json:"protoc_flags"`
}

// Target kinds.
const (
	KindProto = "proto"
	KindGRPC  = "grpc"
)

// LoadConfig loads the manifest from the current directory or a parent
// directory.
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the manifest from a specific path.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	// Set defaults
	if config.Toolchain.Protoc == "" && config.Toolchain.Download == nil {
		config.Toolchain.Protoc = "protoc"
	}
	if config.Toolchain.GRPCPlugin == "" {
		config.Toolchain.GRPCPlugin = "protoc-gen-grpc"
	}
	for i := range config.Targets {
		target := &config.Targets[i]
		if target.Kind == "" {
			target.Kind = KindProto
		}
		if target.Kind != KindProto && target.Kind != KindGRPC {
			return nil, fmt.Errorf("target %q has unknown kind %q", target.Name, target.Kind)
		}
		if target.Name == "" {
			return nil, fmt.Errorf("manifest target %d has no name", i)
		}
	}

	return &config, nil
}

// loadConfigFromDir searches for the manifest in the given directory and its
// parents.
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		path := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadConfigFromPath(path)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("no %s found in %s or any parent directory", ManifestName, startDir)
}
