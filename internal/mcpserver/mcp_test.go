package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/jsclean/internal/output"
)

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
}

// TestServerCreationEmptyVersion verifies empty version defaults to "dev".
func TestServerCreationEmptyVersion(t *testing.T) {
	if NewServer("") == nil {
		t.Fatal("NewServer(\"\") returned nil")
	}
}

// TestToolDescriptions verifies all description functions carry the guidance sections.
func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"cleanSource": describeCleanSource,
		"cleanFiles":  describeCleanFiles,
		"checkFiles":  describeCheckFiles,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		input    FilesInput
		expected []string
	}{
		{"nil paths defaults to current dir", FilesInput{}, []string{"."}},
		{"empty slice defaults to current dir", FilesInput{Paths: []string{}}, []string{"."}},
		{"paths returned as-is", FilesInput{Paths: []string{"/foo", "/bar"}}, []string{"/foo", "/bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getPaths(tt.input)
			if strings.Join(result, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("getPaths() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"unknown", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := getFormat(EngineInput{Format: tt.format}); got != tt.expected {
				t.Errorf("getFormat(%q) = %q, want %q", tt.format, got, tt.expected)
			}
		})
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, result); got != "Error: test error message" {
		t.Errorf("toolError text = %q, want %q", got, "Error: test error message")
	}
}

func TestFormatOutput(t *testing.T) {
	data := map[string]any{"name": "test", "value": 123}

	for _, format := range []string{"", "toon", "json", "markdown"} {
		t.Run(format, func(t *testing.T) {
			text, err := formatOutput(data, getFormat(EngineInput{Format: format}))
			if err != nil {
				t.Fatalf("formatOutput failed for format %q: %v", format, err)
			}
			if !strings.Contains(text, "test") {
				t.Errorf("formatOutput(%q) = %q, missing value", format, text)
			}
		})
	}
}

func TestFormatOutputReportMarkdown(t *testing.T) {
	report := output.NewCleanReport("Dead code", nil, nil)
	text, err := formatOutput(report, output.FormatMarkdown)
	if err != nil {
		t.Fatalf("formatOutput() error: %v", err)
	}
	if !strings.HasPrefix(text, "## Dead code\n") {
		t.Errorf("markdown report should render as a table, got:\n%s", text)
	}
}

func TestHandleCleanSource(t *testing.T) {
	input := CleanSourceInput{
		EngineInput: EngineInput{Format: "json"},
		Source:      "var a = 1;\nuse();\n",
	}

	result, _, err := handleCleanSource(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleCleanSource returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleCleanSource returned tool error: %s", text)
	}

	var out CleanSourceOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("Unmarshal() error: %v\n%s", err, text)
	}
	if out.Output != "use();\n" {
		t.Errorf("Output = %q, want %q", out.Output, "use();\n")
	}
	if len(out.Removals) != 1 || out.Removals[0].Name != "a" || out.Removals[0].Kind != "variable" {
		t.Errorf("Removals = %+v", out.Removals)
	}
	if out.TokensBefore != 5 || out.TokensAfter != 2 {
		t.Errorf("tokens = %d -> %d, want 5 -> 2", out.TokensBefore, out.TokensAfter)
	}
}

func TestHandleCleanSourceTypeScript(t *testing.T) {
	input := CleanSourceInput{
		EngineInput: EngineInput{Format: "json"},
		Source:      "let x: number = 1;\ngo();\n",
		Path:        "a.ts",
	}

	result, _, err := handleCleanSource(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleCleanSource returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleCleanSource returned tool error: %s", text)
	}

	var out CleanSourceOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out.Language != "typescript" {
		t.Errorf("Language = %q, want typescript", out.Language)
	}
	if out.Output != "go();\n" {
		t.Errorf("Output = %q, want %q", out.Output, "go();\n")
	}
}

func TestHandleCleanSourceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input CleanSourceInput
	}{
		{"empty source", CleanSourceInput{}},
		{"syntax error", CleanSourceInput{Source: "function ("}},
		{"unknown language", CleanSourceInput{Source: "a();", Language: "cobol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := handleCleanSource(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("handleCleanSource returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected tool error, got %q", resultText(t, result))
			}
		})
	}
}

func TestHandleCheckFiles(t *testing.T) {
	tmpDir := t.TempDir()
	jsFile := filepath.Join(tmpDir, "app.js")
	if err := os.WriteFile(jsFile, []byte("function unused() {}\nrun();\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	input := FilesInput{
		EngineInput: EngineInput{Format: "json"},
		Paths:       []string{tmpDir},
	}

	result, _, err := handleCheckFiles(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleCheckFiles returned error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("handleCheckFiles returned tool error: %s", text)
	}

	var report struct {
		DryRun  bool `json:"dry_run"`
		Summary struct {
			Files     int `json:"files"`
			Functions int `json:"functions"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !report.DryRun {
		t.Error("check_files should report a dry run")
	}
	if report.Summary.Files != 1 || report.Summary.Functions != 1 {
		t.Errorf("summary = %+v, want 1 file with 1 function", report.Summary)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "app.cleaned.js")); !os.IsNotExist(err) {
		t.Error("check_files should not write output files")
	}
}

func TestHandleCleanFiles(t *testing.T) {
	tmpDir := t.TempDir()
	jsFile := filepath.Join(tmpDir, "app.js")
	if err := os.WriteFile(jsFile, []byte("var dead = 1;\nrun();\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result, _, err := handleCleanFiles(context.Background(), nil, FilesInput{Paths: []string{jsFile}})
	if err != nil {
		t.Fatalf("handleCleanFiles returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleCleanFiles returned tool error: %s", resultText(t, result))
	}

	cleaned, err := os.ReadFile(filepath.Join(tmpDir, "app.cleaned.js"))
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(cleaned) != "run();\n" {
		t.Errorf("output = %q, want %q", cleaned, "run();\n")
	}
}

func TestHandleCleanFilesAllFailed(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "broken.js"), []byte("function ("), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result, _, err := handleCleanFiles(context.Background(), nil, FilesInput{Paths: []string{tmpDir}})
	if err != nil {
		t.Fatalf("handleCleanFiles returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error when every file fails")
	}
}

// TestEmptyPathsError verifies handlers return error for empty file lists.
func TestEmptyPathsError(t *testing.T) {
	result, _, err := handleCheckFiles(context.Background(), nil, FilesInput{Paths: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("handleCheckFiles returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError to be true for empty file list")
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		description string
		body        string
	}{
		{"with frontmatter", "---\ndescription: Trim things\n---\nBody text\n", "Trim things", "Body text\n"},
		{"blank line after frontmatter", "---\ndescription: D\n---\n\nBody\n", "D", "Body\n"},
		{"no frontmatter", "Just a body\n", "", "Just a body\n"},
		{"unterminated", "---\ndescription: D\nBody\n", "", "---\ndescription: D\nBody\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			description, body := parseFrontmatter([]byte(tt.content))
			if description != tt.description {
				t.Errorf("description = %q, want %q", description, tt.description)
			}
			if body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestLoadPrompts(t *testing.T) {
	prompts, err := loadPrompts()
	if err != nil {
		t.Fatalf("loadPrompts() error: %v", err)
	}
	if len(prompts) == 0 {
		t.Fatal("no prompts embedded")
	}

	for _, p := range prompts {
		t.Run(p.Name, func(t *testing.T) {
			if p.Description == "" {
				t.Error("prompt description is empty")
			}
			if p.Body == "" || strings.HasPrefix(p.Body, "---") {
				t.Errorf("prompt body not parsed: %q", p.Body)
			}
		})
	}
}

func TestPromptHandler(t *testing.T) {
	handler := makePromptHandler("desc", "body text")

	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "x"},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Description != "desc" {
		t.Errorf("Description = %q, want desc", result.Description)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	msg := result.Messages[0]
	if msg.Role != "user" {
		t.Errorf("expected role 'user', got %q", msg.Role)
	}
	text, ok := msg.Content.(*mcp.TextContent)
	if !ok || text.Text != "body text" {
		t.Errorf("unexpected content %#v", msg.Content)
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest() error: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if m.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", m.Version)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/jsclean:1.2.3" {
		t.Errorf("Packages = %+v", m.Packages)
	}
	if m.Packages[0].Transport.Type != "stdio" {
		t.Errorf("Transport = %q, want stdio", m.Packages[0].Transport.Type)
	}

	data, err = GenerateManifest("")
	if err != nil {
		t.Fatalf("GenerateManifest(\"\") error: %v", err)
	}
	if !strings.Contains(string(data), `"version": "0.0.0"`) {
		t.Error("empty version should default to 0.0.0")
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}
