package cmd

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/masmgr/gitsqlite/internal/output"
	"github.com/urfave/cli/v2"
)

func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		input string
		want  output.OutputFormat
	}{
		{input: "json", want: output.FormatJSON},
		{input: "csv", want: output.FormatCSV},
		{input: "markdown", want: output.FormatMarkdown},
		{input: "md", want: output.FormatMarkdown},
		{input: "ci", want: output.FormatCI},
		{input: "ndjson", want: output.FormatCI},
		{input: "unknown", want: output.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := getOutputFormat(tt.input); got != tt.want {
				t.Fatalf("getOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Fatalf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// newFlagContext parses args against the root flag set.
func newFlagContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	app := App()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cli.NewContext(app, set, nil)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	// Keep a stray config in the working directory from leaking in.
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c := newFlagContext(t,
		"--chunk-size", "7",
		"--order", "dfs",
		"--backend", "gitcli",
		"--include-ref", "refs/heads/**",
		"--exclude-ref", "refs/remotes/**",
		"--verbose",
	)

	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Export.ChunkSize != 7 || cfg.Export.Order != "dfs" || cfg.Export.Backend != "gitcli" {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if len(cfg.Refs.Include) != 1 || len(cfg.Refs.Exclude) != 1 {
		t.Errorf("Refs = %+v", cfg.Refs)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, expected debug", cfg.Log.Level)
	}
}

func TestLoadConfig_RejectsInvalidFlags(t *testing.T) {
	testChdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{name: "ZeroChunkSize", args: []string{"--chunk-size", "0"}},
		{name: "UnknownOrder", args: []string{"--order", "random"}},
		{name: "UnknownBackend", args: []string{"--backend", "svn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(newFlagContext(t, tt.args...)); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	if err := os.WriteFile(path, []byte(`{"export": {"chunkSize": 3}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newFlagContext(t, "--config", path))
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Export.ChunkSize != 3 {
		t.Errorf("ChunkSize = %d, expected 3", cfg.Export.ChunkSize)
	}
}
