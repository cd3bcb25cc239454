// Command strongs-merge fills the strong_def field of every verse token in
// verses.json from the Strong's definitions in strongs_cleaned.json, then
// rewrites verses.json in place and prints a summary.
//
// Usage:
//
//	strongs-merge [--dir DIR] [--dry-run] [--index strongs.db]
//
// With no arguments both files are read from the directory holding the
// executable.
package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/strongsdef/core/errors"
	"github.com/FocuswithJustin/strongsdef/internal/enrich"
	"github.com/FocuswithJustin/strongsdef/internal/logging"
	"github.com/FocuswithJustin/strongsdef/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for strongs-merge.
type CLI struct {
	Dir         string `help:"Directory holding the data files (default: the executable's directory)" type:"path"`
	Definitions string `help:"Strong's definitions file, relative to --dir" default:"strongs_cleaned.json"`
	Verses      string `help:"Verse file to enrich in place, relative to --dir" default:"verses.json"`
	Index       string `help:"Also write a SQLite index of Strong's usage to this path" type:"path"`
	DryRun      bool   `name:"dry-run" help:"Merge and report without rewriting the verse file"`

	LogLevel  string `name:"log-level" help:"Log level (${enum})" enum:"debug,info,warn,error" default:"warn"`
	LogFormat string `name:"log-format" help:"Log format (${enum})" enum:"text,json" default:"text"`

	Version kong.VersionFlag `help:"Print version information and quit"`
}

// Run executes the merge, writing the report to stdout and logs to stderr.
func (c *CLI) Run() error {
	return c.run(context.Background(), os.Stdout, os.Stderr)
}

func (c *CLI) run(ctx context.Context, stdout, stderr io.Writer) error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format, stderr)

	dir := c.Dir
	if dir == "" {
		dir = executableDir()
	}

	paths := map[string]string{
		"definitions": resolve(dir, c.Definitions),
		"verses":      resolve(dir, c.Verses),
	}
	if c.Index != "" {
		paths["index"] = c.Index
	}
	if err := validation.ValidatePaths(paths); err != nil {
		return err
	}

	runID := logging.NewRunID()
	ctx = logging.WithRunID(ctx, runID)
	logging.DebugContext(ctx, "run_started", "dir", dir, "dry_run", c.DryRun, "version", version)

	_, err = enrich.Run(ctx, enrich.Options{
		DefinitionsPath: paths["definitions"],
		VersesPath:      paths["verses"],
		IndexPath:       c.Index,
		DryRun:          c.DryRun,
		Out:             stdout,
	})
	if err != nil {
		args := []any{
			"error", err.Error(),
			"invalid_input", errors.Is(err, errors.ErrInvalidInput),
		}
		var ioErr *errors.IOError
		if errors.As(err, &ioErr) {
			args = append(args, "operation", ioErr.Operation, "path", ioErr.Path)
		}
		logging.ErrorContext(ctx, "run_failed", args...)
	}
	return err
}

// resolve joins a relative file name onto dir.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// executableDir returns the directory holding the running binary, falling
// back to the working directory.
func executableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if abs, err := filepath.Abs("."); err == nil {
		return abs
	}
	return "."
}

func options(configPaths configFiles) []kong.Option {
	return []kong.Option{
		kong.Name("strongs-merge"),
		kong.Description("Fill verse token strong_def fields from a Strong's definitions file"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"version": "strongs-merge version " + version},
		kong.Configuration(tomlConfig, configPaths.TOML...),
		kong.Configuration(yamlConfig, configPaths.YAML...),
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, options(defaultConfigFiles(executableDir()))...)
	ctx.FatalIfErrorf(cli.Run())
}
