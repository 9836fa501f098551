package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/jsclean/pkg/cleaner"
	"github.com/panbanda/jsclean/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-clean them",
		ArgsUsage: "[path]",
		Flags: append(engineFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a changed file is cleaned",
			},
		),
		Action: runWatchCmd,
	}
}

// reportChange prints the outcome of re-cleaning one file.
func reportChange(res *cleaner.Result, err error) {
	if err != nil {
		status().Error("%v", err)
		return
	}
	n := res.Stats.Total()
	if n == 0 {
		status().Success("  No dead code, wrote %s", res.OutputPath)
		return
	}
	fmt.Fprintf(statusOut, "  Removed %d (%s), wrote %s\n", n, summarizeKinds(res), res.OutputPath)
}

func runWatchCmd(c *cli.Context) error {
	paths := getPaths(c)

	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	if err := applyEngineFlags(c, cfg); err != nil {
		return err
	}
	opts := cleanerOptions(c, cfg)

	absPath, err := filepath.Abs(paths[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, cfg, c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	watcher.SetCallback(func(ctx context.Context, changedPath string) {
		reportChange(cleaner.CleanFile(ctx, changedPath, opts))
	})

	// Handle Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nStopping watch...")
		cancel()
	}()

	return watcher.Start(ctx)
}
