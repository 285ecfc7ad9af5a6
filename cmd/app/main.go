package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quire/internal"
	pkgconfig "github.com/starford/quire/pkg/config"
)

var version = "dev"

type runner func(ctx context.Context, opts ...internal.Option) error

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.Bool("drafts") {
		cfg.Build.Drafts = true
	}
	return cfg, nil
}

func action(run runner) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithVersion(version),
			internal.WithWatch(cmd.Bool("watch")),
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	draftsFlag := &cli.BoolFlag{
		Name:    "drafts",
		Usage:   "Include draft posts",
		Sources: cli.EnvVars("QUIRE_DRAFTS"),
	}

	cmd := &cli.Command{
		Name:    "quire",
		Usage:   "Static personal website and blog generator",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Generate the site into the output directory",
				Flags:  []cli.Flag{draftsFlag},
				Action: action(internal.Build),
			},
			{
				Name:  "serve",
				Usage: "Build the site and serve it locally",
				Flags: []cli.Flag{
					draftsFlag,
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Rebuild on content changes and live reload open pages",
					},
				},
				Action: action(internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Serve content tools over MCP on stdio",
				Flags:  []cli.Flag{draftsFlag},
				Action: action(internal.MCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
