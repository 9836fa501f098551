package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/jsclean/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes jsclean as tools
LLMs can invoke. Assistants use it to strip dead code from sources before
reading them into context.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "jsclean": {
        "command": "jsclean",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - clean_source   Clean inline source text
  - clean_files    Clean files and write <name>.cleaned.<ext> outputs
  - check_files    Report dead code without writing files`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the server.json manifest for MCP registries",
				Action: runMCPManifest,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}

func runMCPManifest(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
