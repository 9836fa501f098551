package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.ts", LangTypeScript},
		{"mod.mts", LangTypeScript},
		{"mod.cts", LangTypeScript},
		{"component.tsx", LangTSX},
		{"component.jsx", LangTSX},
		{"audiodg.js", LangTSX},
		{"module.mjs", LangTSX},
		{"common.cjs", LangTSX},

		{"file.txt", LangUnknown},
		{"file.json", LangUnknown},
		{"file", LangUnknown},

		// Case insensitivity
		{"BUNDLE.JS", LangTSX},
		{"Types.TS", LangTypeScript},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DetectLanguage(tt.path)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	for _, lang := range Languages {
		t.Run(string(lang), func(t *testing.T) {
			tsLang, err := GetTreeSitterLanguage(lang)
			if err != nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned error: %v", lang, err)
			}
			if tsLang == nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned nil", lang)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := GetTreeSitterLanguage(LangUnknown)
		if err == nil {
			t.Error("GetTreeSitterLanguage(LangUnknown) should return error")
		}
	})
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name    string
		want    Language
		wantErr bool
	}{
		{"", LangUnknown, false},
		{"auto", LangUnknown, false},
		{"js", LangJavaScript, false},
		{"JavaScript", LangJavaScript, false},
		{"ts", LangTypeScript, false},
		{"tsx", LangTSX, false},
		{"jsx", LangTSX, false},
		{"coffee", LangUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLanguage(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLanguage(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLanguage(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		lang   Language
	}{
		{
			name:   "javascript function",
			source: "function hello() {\n  console.log('hello');\n}\n",
			lang:   LangJavaScript,
		},
		{
			name:   "typescript annotation",
			source: "let x: number = 1;\n",
			lang:   LangTypeScript,
		},
		{
			name:   "jsx element",
			source: "const el = <div>{name}</div>;\n",
			lang:   LangTSX,
		},
		{
			name:   "top-level return",
			source: "if (done) return;\nrun();\n",
			lang:   LangTSX,
		},
	}

	p := New()
	defer p.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse(context.Background(), []byte(tt.source), tt.lang, "test.file")
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}

			if result.Tree == nil {
				t.Fatal("result.Tree is nil")
			}
			if result.Language != tt.lang {
				t.Errorf("result.Language = %v, want %v", result.Language, tt.lang)
			}
			if string(result.Source) != tt.source {
				t.Error("result.Source doesn't match input")
			}
			if result.Path != "test.file" {
				t.Errorf("result.Path = %v, want test.file", result.Path)
			}

			root := result.Tree.RootNode()
			if root.ChildCount() == 0 {
				t.Error("root node has no children")
			}
			if n := FirstError(root); n != nil {
				t.Errorf("unexpected syntax error at %v", n.StartPoint())
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	jsFile := filepath.Join(tmpDir, "test.js")
	content := "var a = 1;\n"

	if err := os.WriteFile(jsFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	p := New()
	defer p.Close()

	result, err := p.ParseFile(context.Background(), jsFile)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if result.Language != LangTSX {
		t.Errorf("Language = %v, want %v", result.Language, LangTSX)
	}
	if result.Path != jsFile {
		t.Errorf("Path = %v, want %v", result.Path, jsFile)
	}
}

func TestParseFileMissing(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.js"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestWithLanguage(t *testing.T) {
	p := New(WithLanguage(LangJavaScript))
	defer p.Close()

	result, err := p.ParseSource(context.Background(), []byte("a = 1;\n"), "types.ts")
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	if result.Language != LangJavaScript {
		t.Errorf("Language = %v, want %v", result.Language, LangJavaScript)
	}
}

func TestFirstError(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte("var a = 1;\nvar = ;\n"), LangJavaScript, "bad.js")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	node := FirstError(result.Tree.RootNode())
	if node == nil {
		t.Fatal("FirstError() = nil, want error node")
	}

	se := NewSyntaxError("bad.js", node)
	if se.Line != 2 {
		t.Errorf("Line = %d, want 2", se.Line)
	}
	if se.Error() == "" {
		t.Error("Error() is empty")
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	tests := []struct {
		err  *SyntaxError
		want string
	}{
		{&SyntaxError{Path: "a.js", Line: 3, Column: 7, Kind: "unexpected"}, "a.js:3:7: syntax error: unexpected token"},
		{&SyntaxError{Line: 1, Column: 2, Kind: ";"}, "<input>:1:2: syntax error: missing \";\""},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWalk(t *testing.T) {
	source := []byte("function a() {}\nfunction b() {}\n")
	p := New()
	defer p.Close()

	result, err := p.Parse(context.Background(), source, LangJavaScript, "walk.js")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var names []string
	Walk(result.Tree.RootNode(), source, func(node *sitter.Node, src []byte) bool {
		if node.Type() == "function_declaration" {
			names = append(names, GetNodeText(node.ChildByFieldName("name"), src))
		}
		return true
	})

	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("function names = %v, want [a b]", names)
	}
}

func TestGetNodeText(t *testing.T) {
	if got := GetNodeText(nil, []byte("x")); got != "" {
		t.Errorf("GetNodeText(nil) = %q, want empty", got)
	}
}
