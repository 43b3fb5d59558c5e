package cmd

import (
	"fmt"
	"time"

	"github.com/masmgr/gitsqlite/internal/git"
	"github.com/masmgr/gitsqlite/internal/output"
	"github.com/masmgr/gitsqlite/internal/pipeline"
	"github.com/masmgr/gitsqlite/internal/store"
	"github.com/urfave/cli/v2"
)

// ExportCmd returns the export command.
func ExportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Aliases:   []string{"e"},
		Usage:     "Write commits, parent relations and references into the database",
		ArgsUsage: "[repository path] [database path]",
		Flags:     exportFlags(),
		Action:    exportAction,
	}
}

func exportAction(c *cli.Context) error {
	cctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	cfg := cctx.Config

	order, err := git.ParseTraversalOrder(cfg.Export.Order)
	if err != nil {
		return err
	}
	backend, err := git.ParseBackend(cfg.Export.Backend)
	if err != nil {
		return err
	}

	skips := pipeline.NewSkipLog(cctx.Logger)
	source, err := git.Open(git.ReadOptions{
		RepoPath: cctx.RepoPath,
		Backend:  backend,
		Order:    order,
		Include:  cfg.Refs.Include,
		Exclude:  cfg.Refs.Exclude,
		OnSkip:   skips.Record,
	})
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	st, err := store.Open(cctx.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	created, err := st.EnsureSchema(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if w := cctx.StatusWriter(); created && w != nil {
		fmt.Fprintln(w, "Database and tables created successfully!")
	}

	driver := pipeline.NewDriver(source, st, pipeline.Options{
		ChunkSize: cfg.Export.ChunkSize,
		Progress:  output.NewProgress(cctx.Output, cctx.Stdout, cctx.Stderr),
		Skips:     skips,
	})
	cctx.Logger.Debug("export started",
		"repo", cctx.RepoPath, "database", st.Path(),
		"chunkSize", cfg.Export.ChunkSize, "order", order, "backend", backend)

	result, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	totals, err := st.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}

	return writeRunReport(cctx, &output.RunReport{
		RepoPath:      cctx.RepoPath,
		DBPath:        st.Path(),
		SchemaCreated: created,
		GeneratedAt:   time.Now(),
		Result:        result,
		Totals:        totals,
	})
}
