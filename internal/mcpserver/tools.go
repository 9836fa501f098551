package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/panbanda/jsclean/internal/fileproc"
	"github.com/panbanda/jsclean/internal/output"
	"github.com/panbanda/jsclean/pkg/cleaner"
	"github.com/panbanda/jsclean/pkg/config"
	"github.com/panbanda/jsclean/pkg/deadcode"
	"github.com/panbanda/jsclean/pkg/parser"
	"github.com/panbanda/jsclean/pkg/scanner"
)

// defaultSourceName names inline sources that come with no path, so they
// parse as plain JavaScript.
const defaultSourceName = "source.js"

// EngineInput holds the elimination options shared by all tools.
type EngineInput struct {
	FixedPoint bool   `json:"fixed_point,omitempty" jsonschema:"Repeat elimination until nothing more is removed."`
	NoFormat   bool   `json:"no_format,omitempty" jsonschema:"Print surviving code without reformatting it."`
	Format     string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// CleanSourceInput is the input of clean_source.
type CleanSourceInput struct {
	EngineInput
	Source   string `json:"source" jsonschema:"JavaScript or TypeScript source text to clean."`
	Path     string `json:"path,omitempty" jsonschema:"File name used to pick the grammar, e.g. app.ts. Defaults to JavaScript."`
	Language string `json:"language,omitempty" jsonschema:"Force a grammar: javascript, typescript, or tsx."`
}

// FilesInput is the input of clean_files and check_files.
type FilesInput struct {
	EngineInput
	Paths []string `json:"paths,omitempty" jsonschema:"Files or directories to clean. Defaults to current directory if empty."`
}

// CleanSourceOutput is the result of clean_source.
type CleanSourceOutput struct {
	Output       string             `json:"output" toon:"output"`
	Language     parser.Language    `json:"language" toon:"language"`
	Passes       int                `json:"passes" toon:"passes"`
	Removals     []deadcode.Removal `json:"removals" toon:"removals"`
	TokensBefore int                `json:"tokens_before" toon:"tokens_before"`
	TokensAfter  int                `json:"tokens_after" toon:"tokens_after"`
}

// Helper functions

func getPaths(input FilesInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input EngineInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

// cleanOptions builds cleaner options from the project config and the tool
// input. Logs are discarded since stdout carries the protocol.
func cleanOptions(input EngineInput) cleaner.Options {
	opts := cleaner.FromConfig(config.LoadOrDefault())
	if input.FixedPoint {
		opts.Engine.FixedPoint = true
	}
	if input.NoFormat {
		opts.Formatting = false
	}
	opts.Logger = slog.New(slog.DiscardHandler)
	return opts
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		if r, ok := data.(output.Renderable); ok {
			var buf bytes.Buffer
			if err := r.RenderMarkdown(&buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "\n```", nil
	default:
		if r, ok := data.(output.Renderable); ok {
			data = r.RenderData()
		}
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func handleCleanSource(ctx context.Context, req *mcp.CallToolRequest, input CleanSourceInput) (*mcp.CallToolResult, any, error) {
	if input.Source == "" {
		return toolError("source is required")
	}

	opts := cleanOptions(input.EngineInput)
	if input.Language != "" {
		lang, err := parser.ParseLanguage(input.Language)
		if err != nil {
			return toolError(err.Error())
		}
		opts.Language = lang
	}

	name := input.Path
	if name == "" {
		name = defaultSourceName
	}

	result, err := cleaner.CleanSource(ctx, []byte(input.Source), name, opts)
	if err != nil {
		return toolError(err.Error())
	}

	removals := result.Stats.Removals
	if removals == nil {
		removals = []deadcode.Removal{}
	}
	return toolResult(CleanSourceOutput{
		Output:       result.Output,
		Language:     result.Language,
		Passes:       result.Stats.Passes,
		Removals:     removals,
		TokensBefore: output.EstimateTokens(input.Source),
		TokensAfter:  output.EstimateTokens(result.Output),
	}, getFormat(input.EngineInput))
}

func handleCleanFiles(ctx context.Context, req *mcp.CallToolRequest, input FilesInput) (*mcp.CallToolResult, any, error) {
	return runFiles(ctx, input, false)
}

func handleCheckFiles(ctx context.Context, req *mcp.CallToolRequest, input FilesInput) (*mcp.CallToolResult, any, error) {
	return runFiles(ctx, input, true)
}

func runFiles(ctx context.Context, input FilesInput, dryRun bool) (*mcp.CallToolResult, any, error) {
	cfg := config.LoadOrDefault()
	files, err := scanner.NewScanner(cfg).ScanPaths(getPaths(input))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	opts := cleanOptions(input.EngineInput)
	opts.DryRun = dryRun

	results, errs := cleaner.CleanFiles(ctx, files, opts, fileproc.Options{})
	title := "Dead code removed"
	if dryRun {
		title = "Dead code found"
	}
	report := output.NewCleanReport(title, results, errs)
	report.DryRun = dryRun
	report.Details = true

	if len(results) == 0 && errs.HasErrors() {
		return toolError(fmt.Sprintf("no files could be cleaned: %v", errs))
	}
	return toolResult(report, getFormat(input.EngineInput))
}
