package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/masmgr/gitsqlite/config"
	"github.com/masmgr/gitsqlite/internal/output"
	"github.com/urfave/cli/v2"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "gitsqlite",
		Usage:     "Export Git commit history and references into SQLite",
		ArgsUsage: "[repository path] [database path]",
		Version:   "1.0.0",
		Commands: []*cli.Command{
			ExportCmd(),
			SchemaCmd(),
			ConfigCmd(),
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		}, exportFlags()...),
		Action: exportAction,
	}
}

// Flags shared by the root action and the export command
func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Records per transaction (default from config: 50)",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Commit traversal order (time, dfs, bfs)",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Repository reader (native, gitcli)",
		},
		&cli.StringSliceFlag{
			Name:  "include-ref",
			Usage: "Glob patterns on reference names to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-ref",
			Usage: "Glob patterns on reference names to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Summary format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Summary file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Report every committed chunk and log at debug level",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress progress lines",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// parseLogLevel maps a config level name to a slog level. Unknown names fall back to warn.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// loadConfig loads configuration from file or defaults, then applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("chunk-size") {
		cfg.Export.ChunkSize = c.Int("chunk-size")
	}
	if order := c.String("order"); order != "" {
		cfg.Export.Order = order
	}
	if backend := c.String("backend"); backend != "" {
		cfg.Export.Backend = backend
	}
	if includes := c.StringSlice("include-ref"); len(includes) > 0 {
		cfg.Refs.Include = includes
	}
	if excludes := c.StringSlice("exclude-ref"); len(excludes) > 0 {
		cfg.Refs.Exclude = excludes
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
