package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notestxt/internal"
	pkgconfig "github.com/starford/notestxt/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// options builds the application options. Commands that print results or
// speak a protocol on stdout send their logs to stderr.
func options(cmd *cli.Command, quiet bool) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}
	if quiet {
		opts = append(opts, internal.WithLogOutput(os.Stderr))
	}
	return opts, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd, false)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "notestxt",
		Usage:   "Plain-text notes shared between machines through one folder",
		Version: version,
		Action:  serve,
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
				Name:   "serve",
				Usage:  "Run the HTTP API and watch the notes folder",
				Action: serve,
			},
			{
				Name:  "mcp",
				Usage: "Serve the notes over MCP on stdin/stdout",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := options(cmd, true)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, opts...)
				},
			},
			{
				Name:      "select",
				Usage:     "List notes matching a selection, e.g. \"! #work\"",
				ArgsUsage: "[selection...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of notes to print (0 prints all)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := options(cmd, true)
					if err != nil {
						return err
					}
					return internal.RunSelect(ctx, strings.Join(cmd.Args().Slice(), " "), int(cmd.Int("limit")), opts...)
				},
			},
			{
				Name:  "tags",
				Usage: "Print every tag in use",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := options(cmd, true)
					if err != nil {
						return err
					}
					return internal.RunTags(ctx, opts...)
				},
			},
			{
				Name:      "add",
				Usage:     "Create a note in this machine's notes file",
				ArgsUsage: "<text...>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := options(cmd, true)
					if err != nil {
						return err
					}
					return internal.RunAdd(ctx, strings.Join(cmd.Args().Slice(), " "), opts...)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
