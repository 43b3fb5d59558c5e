package cmd

import (
	"fmt"
	"os"

	"github.com/masmgr/gitsqlite/config"
	"github.com/urfave/cli/v2"
)

// ConfigCmd returns the config command.
func ConfigCmd() *cli.Command {
	return &cli.Command{
		Name:      "config",
		Usage:     "Write the default configuration file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
		},
		Action: configAction,
	}
}

func configAction(c *cli.Context) error {
	path := config.FileName
	if c.NArg() > 0 {
		path = c.Args().Get(0)
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	stdout, _ := appWriters(c)
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
