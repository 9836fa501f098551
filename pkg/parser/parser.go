package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported grammar.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangUnknown    Language = "unknown"
)

// Languages lists the grammars that can be selected by name.
var Languages = []Language{LangJavaScript, LangTypeScript, LangTSX}

// Parser wraps tree-sitter for JavaScript and TypeScript parsing.
// A Parser must not be shared between goroutines.
type Parser struct {
	parser *sitter.Parser
	// override forces a grammar regardless of the file extension.
	override Language
}

// ParseResult contains the parsed concrete syntax tree and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// SyntaxError reports the first position at which the source could not be
// parsed.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
	// Kind is "unexpected" for an ERROR node and the expected token for a
	// MISSING node.
	Kind string
}

func (e *SyntaxError) Error() string {
	name := e.Path
	if name == "" {
		name = "<input>"
	}
	if e.Kind == "" || e.Kind == "unexpected" {
		return fmt.Sprintf("%s:%d:%d: syntax error: unexpected token", name, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error: missing %q", name, e.Line, e.Column, e.Kind)
}

// Option configures a Parser.
type Option func(*Parser)

// WithLanguage forces the grammar used for every file.
func WithLanguage(lang Language) Option {
	return func(p *Parser) {
		p.override = lang
	}
}

// New creates a new parser instance.
func New(opts ...Option) *Parser {
	p := &Parser{
		parser: sitter.NewParser(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(ctx, source, p.languageFor(path), path)
}

// ParseSource parses in-memory source, choosing the grammar from path.
func (p *Parser) ParseSource(ctx context.Context, source []byte, path string) (*ParseResult, error) {
	return p.Parse(ctx, source, p.languageFor(path), path)
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

func (p *Parser) languageFor(path string) Language {
	if p.override != "" && p.override != LangUnknown {
		return p.override
	}
	if lang := DetectLanguage(path); lang != LangUnknown {
		return lang
	}
	return LangTSX
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// ParseLanguage maps a configured grammar name to a Language.
// The empty string and "auto" select detection by extension.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return LangUnknown, nil
	case "javascript", "js":
		return LangJavaScript, nil
	case "typescript", "ts":
		return LangTypeScript, nil
	case "tsx", "jsx":
		return LangTSX, nil
	default:
		return LangUnknown, fmt.Errorf("unknown grammar %q", name)
	}
}

// DetectLanguage determines the grammar from a file path.
//
// Plain JavaScript is parsed with the TSX grammar: it is a superset that
// also accepts JSX and type annotations found in loosely typed bundles.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx", ".jsx", ".js", ".mjs", ".cjs":
		return LangTSX
	default:
		return LangUnknown
	}
}

// IsSupported reports whether the path has a recognized source extension.
func IsSupported(path string) bool {
	return DetectLanguage(path) != LangUnknown
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits CST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the CST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// FirstError returns the first ERROR or MISSING node in document order,
// or nil when the tree parsed cleanly.
func FirstError(root *sitter.Node) *sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}
	var found *sitter.Node
	Walk(root, nil, func(node *sitter.Node, _ []byte) bool {
		if found != nil {
			return false
		}
		if node.IsMissing() || node.Type() == "ERROR" {
			found = node
			return false
		}
		return node.HasError()
	})
	return found
}

// NewSyntaxError builds a SyntaxError positioned at node.
func NewSyntaxError(path string, node *sitter.Node) *SyntaxError {
	pt := node.StartPoint()
	kind := "unexpected"
	if node.IsMissing() {
		kind = node.Type()
	}
	return &SyntaxError{
		Path:   path,
		Line:   int(pt.Row) + 1,
		Column: int(pt.Column) + 1,
		Kind:   kind,
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
