package format

import (
	"github.com/panbanda/jsclean/pkg/ast"
)

// tok is one emitted token with the context spacing depends on.
type tok struct {
	text string
	// spaced operators take a space on both sides.
	spaced bool
	// keyword is an anonymous word token such as `return` or `else`.
	keyword bool
	// padded braces of inline objects take a space on their inner side.
	padded bool
	// star is the `*` of `function*` or `yield*`, spaced after only.
	star bool
	// head closes the parenthesized head of an if, for, while or with.
	head bool
}

// needsSpace decides whether a space separates two tokens on one line.
func needsSpace(prev, cur tok) bool {
	a, b := prev.text, cur.text
	if a == "" || b == "" {
		return false
	}

	if a == "{" {
		return b != "}" && prev.padded
	}
	if b == "}" {
		return cur.padded
	}

	switch b {
	case ";", ",", ")", "]", ".", "?.":
		return false
	}
	switch a {
	case "(", "[", "...", ".", "?.", "@", "!", "~":
		return false
	}

	if prev.spaced || cur.spaced {
		return true
	}
	switch a {
	case ",", ";", ":":
		return true
	}
	if b == ":" {
		return false
	}

	if prev.keyword {
		switch {
		case b == "(":
			return a != "import"
		case b == "*":
			return a != "function" && a != "yield"
		}
		return true
	}
	if prev.star {
		return true
	}
	if cur.keyword && (a == "}" || a == ")" || a == "]") {
		return true
	}

	switch b {
	case "{":
		return true
	case "(", "[":
		return false
	}
	if a == ")" && (prev.head || isWordStart(b[0])) {
		return true
	}

	if isWordEnd(a[len(a)-1]) && isWordStart(b[0]) {
		return true
	}
	last := a[len(a)-1]
	return (last == '+' || last == '-') && b[0] == last
}

func isWordStart(c byte) bool {
	return c == '_' || c == '$' || c == '#' || c == '\\' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWordEnd(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// classify builds the spacing context of a leaf token.
func classify(n *ast.Node, text string) tok {
	t := tok{text: text}
	if n.Named {
		return t
	}
	p := n.Parent
	if p == nil {
		return t
	}

	if isWord(text) {
		switch p.Kind {
		case "binary_expression":
			t.spaced = true
		default:
			t.keyword = true
		}
		return t
	}

	switch text {
	case "=>":
		t.spaced = true
	case "*":
		switch p.Kind {
		case "binary_expression", "namespace_import", "export_statement", "namespace_export":
			t.spaced = true
		case ast.KindGeneratorDecl, ast.KindGeneratorFunc, "yield_expression":
			t.star = true
		}
	case "=":
		switch p.Kind {
		case ast.KindAssignment, ast.KindDeclarator, ast.KindAssignPattern, ast.KindObjAssignPat,
			"field_definition", "public_field_definition", ast.KindTypeAliasDecl,
			"enum_assignment", "default_type", "import_alias", ast.KindImportRequire:
			t.spaced = true
		}
	case "?", ":":
		switch p.Kind {
		case "ternary_expression", "conditional_type":
			t.spaced = true
		}
	case "|", "&":
		switch p.Kind {
		case "binary_expression", "union_type", "intersection_type":
			t.spaced = true
		}
	case ")":
		switch p.Kind {
		case ast.KindForStmt, ast.KindForInStmt:
			t.head = true
		case ast.KindParenthesized:
			if p.Field == "condition" || p.Field == "object" {
				t.head = p.Parent.Is(ast.KindIfStmt, ast.KindWhileStmt, ast.KindWithStmt)
			}
		}
	}

	switch p.Kind {
	case "binary_expression", ast.KindAugAssignment:
		if n.Field == "operator" {
			t.spaced = true
		}
	}
	return t
}
