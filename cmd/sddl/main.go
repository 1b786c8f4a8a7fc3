package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/sddl/internal"
	pkgconfig "github.com/starford/sddl/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func parse(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("parse: expected exactly one FILE argument")
	}
	return parseFile(os.Stdout, os.Stderr, cmd.Args().First(), parseFlags{
		all:  cmd.Bool("all"),
		vars: cmd.Bool("vars"),
	})
}

func decl(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("decl: expected exactly one quoted DECLARATION argument")
	}
	return describeDeclaration(os.Stdout, cmd.Args().First())
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:    "sddl",
		Usage:   "SDDL schema parser and registry",
		Version: version,
		Flags:   []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the schema registry HTTP server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the SDDL tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:      "parse",
				Usage:     "Parse a document, print diagnostics and its canonical JSON",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Keep going after the first error"},
					&cli.BoolFlag{Name: "vars", Usage: "Print the flattened variables instead of canonical JSON"},
				},
				Action: parse,
			},
			{
				Name:      "decl",
				Usage:     "Parse a single declaration string",
				ArgsUsage: "DECLARATION",
				Action:    decl,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
