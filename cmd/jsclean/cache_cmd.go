package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/jsclean/internal/cache"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache size and entry ages",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached result",
				Action: runCacheClear,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	loaded, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config
	rc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", cfg.Cache.Dir, err)
	}
	return rc, nil
}

func runCacheStats(c *cli.Context) error {
	rc, err := openCache(c)
	if err != nil {
		return err
	}
	if !rc.Enabled() {
		status().Warning("Cache is disabled")
		return nil
	}

	stats, err := rc.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	fmt.Printf("Entries:    %d\n", stats.Entries)
	fmt.Printf("Total size: %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Printf("Oldest:     %s\n", stats.OldestAge.Round(time.Second))
		fmt.Printf("Newest:     %s\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(c *cli.Context) error {
	rc, err := openCache(c)
	if err != nil {
		return err
	}
	if err := rc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	status().Success("Cache cleared")
	return nil
}
