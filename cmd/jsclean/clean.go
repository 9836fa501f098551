package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/jsclean/internal/cache"
	"github.com/panbanda/jsclean/internal/fileproc"
	"github.com/panbanda/jsclean/internal/output"
	"github.com/panbanda/jsclean/internal/progress"
	"github.com/panbanda/jsclean/pkg/cleaner"
	"github.com/panbanda/jsclean/pkg/config"
	"github.com/panbanda/jsclean/pkg/scanner"
)

// errDeadCode is returned by check --strict when anything would be removed.
var errDeadCode = errors.New("dead code found")

// engineFlags are shared by every command that cleans files.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "fixed-point",
			Usage: "Repeat elimination until nothing more is removed",
		},
		&cli.IntFlag{
			Name:  "passes",
			Usage: "Number of elimination passes (overrides config)",
		},
		&cli.StringFlag{
			Name:  "grammar",
			Usage: "Force a grammar: javascript, typescript, tsx (default: by extension)",
		},
		&cli.StringFlag{
			Name:  "suffix",
			Usage: "Suffix inserted before the extension of outputs (default \".cleaned\")",
		},
		&cli.BoolFlag{
			Name:  "no-format",
			Usage: "Print surviving code without reformatting it",
		},
	}
}

func batchFlags() []cli.Flag {
	return append(engineFlags(),
		&cli.BoolFlag{
			Name:  "details",
			Usage: "List every removal in the report",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Maximum files cleaned concurrently (default: 2x CPUs)",
		},
	)
}

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "Remove dead code and write <name>.cleaned.<ext> beside each file",
		ArgsUsage: "[path...]",
		Flags:     batchFlags(),
		Action: func(c *cli.Context) error {
			return runClean(c, false)
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Report dead code without writing any files",
		ArgsUsage: "[path...]",
		Flags: append(batchFlags(),
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit with an error when any dead code is found",
			},
		),
		Action: func(c *cli.Context) error {
			return runClean(c, true)
		},
	}
}

// applyEngineFlags overrides config values with the flags that were set.
func applyEngineFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("passes") {
		cfg.Engine.Passes = c.Int("passes")
	}
	if c.Bool("fixed-point") {
		cfg.Engine.FixedPoint = true
	}
	if c.IsSet("grammar") {
		cfg.Engine.Grammar = c.String("grammar")
	}
	if c.IsSet("suffix") {
		cfg.Output.Suffix = c.String("suffix")
	}
	if c.Bool("no-format") {
		cfg.Format.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// cleanerOptions builds cleaner options from cfg, attaching the result
// cache unless --no-cache is set.
func cleanerOptions(c *cli.Context, cfg *config.Config) cleaner.Options {
	opts := cleaner.FromConfig(cfg)
	if c.Bool("no-cache") || !cfg.Cache.Enabled {
		return opts
	}
	rc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
	if err != nil {
		status().Warning("Cache disabled: %v", err)
		return opts
	}
	opts.Cache = rc
	return opts
}

// newFormatter builds the report formatter from --format and --output,
// falling back to the configured format.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
}

func runClean(c *cli.Context, dryRun bool) error {
	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	if err := applyEngineFlags(c, cfg); err != nil {
		return err
	}

	opts := cleanerOptions(c, cfg)
	opts.DryRun = dryRun

	files, err := scanner.NewScanner(cfg).ScanPaths(getPaths(c))
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	if len(files) == 0 {
		status().Warning("No source files found")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	label := "Cleaning..."
	if dryRun {
		label = "Checking..."
	}
	tracker := progress.NewTracker(label, len(files))
	results, errs := cleaner.CleanFiles(ctx, files, opts, fileproc.Options{
		Workers:    c.Int("workers"),
		OnProgress: tracker.Tick,
	})
	if ctx.Err() != nil {
		tracker.FinishSkipped("interrupted")
	} else {
		tracker.FinishSuccess()
	}

	title := "Dead code removed"
	if dryRun {
		title = "Dead code found"
	}
	report := output.NewCleanReport(title, results, errs)
	report.DryRun = dryRun
	report.Details = c.Bool("details")

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(report); err != nil {
		return err
	}

	if errs.HasErrors() {
		return fmt.Errorf("%d of %d files failed", errs.Len(), len(files))
	}
	if dryRun && c.Bool("strict") && report.Summary.Removals > 0 {
		return fmt.Errorf("%w: %d removals in %d files", errDeadCode, report.Summary.Removals, report.Summary.Changed)
	}
	return nil
}
