package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/malonaz/proto-rules/internal/config"
	"github.com/malonaz/proto-rules/internal/plan"
)

// PlanOptions control the plan command.
type PlanOptions struct {
	// Format is "text" or "json".
	Format string

	// Watch re-plans whenever the manifest or a proto source changes.
	Watch bool
}

// Plan loads the manifest, composes the build graph and prints it.
func (c *Controller) Plan(ctx context.Context, opts PlanOptions) error {
	cfg, root, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := c.renderPlan(cfg, opts.Format); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	watcher, err := plan.NewFileWatcher(
		[]string{config.ManifestName, "*.proto", "**/*.proto"},
		[]string{".git"},
		c.Logger,
		func(path string, op fsnotify.Op) {
			c.Logger.Info().Str("path", path).Str("op", op.String()).Msg("change detected, re-planning")

			cfg, _, err := config.LoadConfig()
			if err != nil {
				c.Logger.Error().Err(err).Msg("failed to reload manifest")
				return
			}
			if err := c.renderPlan(cfg, opts.Format); err != nil {
				c.Logger.Error().Err(err).Msg("failed to re-plan")
			}
		},
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.AddDirectory(root); err != nil {
		return err
	}

	c.Logger.Info().Str("root", root).Msg("watching for changes")
	return watcher.Start(ctx)
}

func (c *Controller) renderPlan(cfg *config.Config, format string) error {
	// Composed targets live in the root label package until a workspace
	// layout maps manifest directories to packages.
	planner := plan.NewPlanner(cfg, "", c.Logger)
	result, err := planner.Plan()
	if err != nil {
		return err
	}

	switch format {
	case "", "text":
		return result.Render(os.Stdout)
	case "json":
		data, err := result.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

