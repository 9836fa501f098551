package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/jsclean/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new jsclean configuration file",
		Description: `Creates a new jsclean.toml configuration file in the current directory
with sensible defaults. Use --output to specify a different location.

Examples:
  jsclean init                          # Creates jsclean.toml in current directory
  jsclean init -o .jsclean/jsclean.toml # Creates config in .jsclean directory
  jsclean init --force                  # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "jsclean.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	return writeDefaultConfig(c.String("output"), c.Bool("force"))
}

func writeDefaultConfig(outputPath string, force bool) error {
	// Check if file already exists
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	// Create parent directory if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	st := status()
	st.Success("Created %s", outputPath)
	st.Info("Edit this file to customize cleaning settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# jsclean configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/jsclean\n\n")
	buf.Write(content)

	return buf.String(), nil
}
