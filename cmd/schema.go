package cmd

import (
	"fmt"

	"github.com/masmgr/gitsqlite/internal/store"
	"github.com/urfave/cli/v2"
)

// SchemaCmd returns the schema command.
func SchemaCmd() *cli.Command {
	return &cli.Command{
		Name:      "schema",
		Usage:     "Create the tables in a new database without exporting",
		ArgsUsage: "[database path]",
		Action:    schemaAction,
	}
}

func schemaAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	dbPath := cfg.Store.DefaultPath
	if c.NArg() > 0 {
		dbPath = c.Args().Get(0)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	created, err := st.EnsureSchema(c.Context)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	stdout, _ := appWriters(c)
	if created {
		fmt.Fprintln(stdout, "Database and tables created successfully!")
	} else {
		fmt.Fprintf(stdout, "%s already exists; schema left unchanged.\n", st.Path())
	}
	return nil
}
