package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/masmgr/gitsqlite/config"
	"github.com/masmgr/gitsqlite/internal/output"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// CommandContext holds common state for command execution.
// It resolves the positional arguments and builds the diagnostic logger.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	DBPath   string
	Logger   *slog.Logger
	Output   output.OutputOptions
	Stdout   io.Writer
	Stderr   io.Writer
}

// NewCommandContext creates a context from CLI flags and positional arguments.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	repoPath := "."
	if c.NArg() > 0 {
		repoPath = c.Args().Get(0)
	}
	dbPath := cfg.Store.DefaultPath
	if c.NArg() > 1 {
		dbPath = c.Args().Get(1)
	}
	if c.NArg() > 2 {
		return nil, fmt.Errorf("too many arguments: expected [repository path] [database path]")
	}

	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}

	stdout, stderr := appWriters(c)
	if !isTerminal(stdout) {
		color.NoColor = true
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		DBPath:   dbPath,
		Logger:   logger,
		Output:   OutputOptions(c),
		Stdout:   stdout,
		Stderr:   stderr,
	}, nil
}

// StatusWriter returns where human-readable status lines go, or nil when they are suppressed.
func (ctx *CommandContext) StatusWriter() io.Writer {
	if ctx.Output.Quiet {
		return nil
	}
	switch ctx.Output.Format {
	case output.FormatConsole, "":
		return ctx.Stdout
	case output.FormatCI:
		return nil
	default:
		return ctx.Stderr
	}
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		OutputPath: c.String("output"),
		Verbose:    c.Bool("verbose"),
		Quiet:      c.Bool("quiet"),
	}
}

func appWriters(c *cli.Context) (io.Writer, io.Writer) {
	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if c.App != nil {
		if c.App.Writer != nil {
			stdout = c.App.Writer
		}
		if c.App.ErrWriter != nil {
			stderr = c.App.ErrWriter
		}
	}
	return stdout, stderr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
