package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/malonaz/proto-rules/internal/config"
	"github.com/malonaz/proto-rules/internal/lang"
)

type InitOptions struct {
	TargetName string
	Srcs       string
	Languages  []string
	GRPC       bool
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// InitCommand interactively scaffolds a protos.json manifest.
type InitCommand struct {
	filesystem FileSystem
	dir        string
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand(dir string) *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		dir:        dir,
	}
}

func (c *Controller) Init(ctx context.Context) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cmd := NewInitCommand(dir)
	return cmd.Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	manifestPath := filepath.Join(ic.dir, config.ManifestName)
	if _, err := ic.filesystem.Stat(manifestPath); err == nil {
		return fmt.Errorf("%s already exists", manifestPath)
	}

	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	data, err := ic.renderManifest(options)
	if err != nil {
		return err
	}

	if err := ic.filesystem.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Printf("Created %s\n", manifestPath)
	return nil
}

func (ic *InitCommand) renderManifest(options *InitOptions) ([]byte, error) {
	kind := config.KindProto
	if options.GRPC {
		kind = config.KindGRPC
	}

	var srcs []string
	for _, src := range strings.Split(options.Srcs, ",") {
		if src = strings.TrimSpace(src); src != "" {
			srcs = append(srcs, src)
		}
	}

	languages := config.SelectAllLanguages()
	if len(options.Languages) > 0 {
		languages = config.SelectLanguageIDs(options.Languages...)
	}

	manifest := config.Config{
		Targets: []config.TargetConfig{{
			Name:      options.TargetName,
			Kind:      kind,
			Srcs:      srcs,
			Languages: languages,
		}},
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest: %w", err)
	}

	return append(data, '\n'), nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	options := &InitOptions{}

	form := ic.createInitForm(options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	var languageOptions []huh.Option[string]
	for _, id := range lang.DefaultRegistry().IDs() {
		languageOptions = append(languageOptions, huh.NewOption(id, id))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target name").
				Description("Name of the aggregate target").
				Value(&options.TargetName).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("target name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Sources").
				Description("Comma-separated .proto files").
				Value(&options.Srcs).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("at least one source file is required")
					}
					return nil
				}),

			huh.NewMultiSelect[string]().
				Title("Languages").
				Description("Languages to generate (none selects all)").
				Options(languageOptions...).
				Value(&options.Languages),

			huh.NewConfirm().
				Title("Generate gRPC stubs?").
				Value(&options.GRPC),
		),
	)
}
