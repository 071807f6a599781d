package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/malonaz/proto-rules/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "proto-rules",
		Usage:   `Compose multi-language protobuf code-generation build graphs from a single manifest.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "warn",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a protos.json manifest interactively",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
			{
				Name:  "plan",
				Usage: "Compose the build graph from the manifest and print it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "output format (text, json)",
						Value: "text",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "re-plan when the manifest or proto sources change",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Plan(ctx, commands.PlanOptions{
						Format: c.String("format"),
						Watch:  c.Bool("watch"),
					})
				},
			},
			{
				Name:  "languages",
				Usage: "List the languages of the default registry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "grpc",
						Usage: "list the gRPC-oriented registry instead",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Languages(ctx, c.Bool("grpc"))
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run proto-rules")
	}
}
