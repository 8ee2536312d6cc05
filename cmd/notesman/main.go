package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notesman/internal"
	"github.com/starford/notesman/internal/apperr"
	pkgconfig "github.com/starford/notesman/pkg/config"
)

const version = "0.6.0"

// options loads the config named by --config and builds the run options.
// A missing config file leaves the defaults in place.
func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func ledgerArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%w: expected exactly one ledger file, got %d arguments",
			apperr.ErrInvalidInput, cmd.Args().Len())
	}
	return cmd.Args().First(), nil
}

// action adapts a run mode to a cli action.
func action(run func(ctx context.Context, path string, opts ...internal.Option) error) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, cmd *cli.Command) error {
		path, err := ledgerArg(cmd)
		if err != nil {
			return err
		}
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		return run(ctx, path, opts...)
	}
}

func process(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	return action(func(ctx context.Context, path string, opts ...internal.Option) error {
		return internal.Process(ctx, path, dryRun, opts...)
	})(ctx, cmd)
}

func preview(ctx context.Context, path string, opts ...internal.Option) error {
	return internal.Process(ctx, path, true, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:      "notesman",
		Usage:     "Move touched and completed tasks from a markdown ledger into its journal and archive",
		ArgsUsage: "<file.md>",
		Version:   version,
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("NOTESMAN_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print what would be journaled and archived without writing",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "preview",
				Usage:     "Show what a run would do without writing anything",
				ArgsUsage: "<file.md>",
				Action:    action(preview),
			},
			{
				Name:      "status",
				Usage:     "Print open, complete and touched counts per section",
				ArgsUsage: "<file.md>",
				Action:    action(internal.Status),
			},
			{
				Name:      "watch",
				Usage:     "Process the ledger every time it is saved",
				ArgsUsage: "<file.md>",
				Action:    action(internal.Watch),
			},
			{
				Name:      "serve",
				Usage:     "Serve the ledger over HTTP with live events",
				ArgsUsage: "<file.md>",
				Action:    action(internal.Serve),
			},
			{
				Name:      "mcp",
				Usage:     "Expose the ledger as MCP tools over stdio",
				ArgsUsage: "<file.md>",
				Action:    action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		if errors.Is(err, apperr.ErrInvalidInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
