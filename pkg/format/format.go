// Package format prints JavaScript and TypeScript source in a canonical
// layout: one statement per line, two-space indentation, expanded blocks
// and normalized string quotes.
//
// The formatter works on a fresh parse of its input. It never changes what
// the program does; print width is not considered, so long expressions
// stay on one line.
package format

import (
	"context"
	"fmt"
	"strings"

	"github.com/panbanda/jsclean/pkg/ast"
	"github.com/panbanda/jsclean/pkg/ast/treesitter"
	"github.com/panbanda/jsclean/pkg/parser"
)

const indent = "  "

// Options controls the formatter's output style.
type Options struct {
	// SingleQuote prefers 'single' over "double" quoted strings.
	SingleQuote bool
	// Semi terminates statements with semicolons. Without it semicolons
	// are only printed where a statement would otherwise continue the
	// previous one.
	Semi bool
	// TrailingComma adds a comma after the last member of expanded lists.
	TrailingComma bool
}

// DefaultOptions returns the default formatting style.
func DefaultOptions() Options {
	return Options{
		SingleQuote:   true,
		Semi:          true,
		TrailingComma: false,
	}
}

// Format parses src and prints it canonically.
func Format(ctx context.Context, src []byte, lang parser.Language, opts Options) (string, error) {
	p := parser.New()
	defer p.Close()

	res, err := p.Parse(ctx, src, lang, "")
	if err != nil {
		return "", err
	}
	tree, err := treesitter.Build(res)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return FormatTree(tree, opts), nil
}

// FormatTree prints an unmodified tree canonically. Trees that had nodes
// removed must be rendered and re-parsed first.
func FormatTree(tree *ast.Tree, opts Options) string {
	f := &formatter{
		tree:   tree,
		opts:   opts,
		bol:    true,
		broken: make(map[*ast.Node]bool),
	}
	f.node(tree.Root)

	out := strings.TrimSpace(f.out.String())
	if out == "" {
		return ""
	}
	return out + "\n"
}

type formatter struct {
	tree  *ast.Tree
	opts  Options
	out   strings.Builder
	depth int
	// bol is set at the beginning of an output line.
	bol  bool
	prev tok
	// broken memoizes whether a subtree contains a forced line break.
	broken map[*ast.Node]bool
}

func (f *formatter) emit(t tok) {
	if f.bol {
		f.out.WriteString(strings.Repeat(indent, f.depth))
		f.bol = false
	} else if needsSpace(f.prev, t) {
		f.out.WriteByte(' ')
	}
	f.out.WriteString(t.text)
	f.prev = t
}

func (f *formatter) newline() {
	if f.bol {
		return
	}
	f.out.WriteByte('\n')
	f.bol = true
	f.prev = tok{}
}

func (f *formatter) node(n *ast.Node) {
	switch {
	case n.Kind == ast.KindComment:
		return
	case isVerbatim(n.Kind):
		f.emit(tok{text: f.tree.SourceText(n)})
		return
	case n.Kind == ast.KindString:
		f.emit(tok{text: NormalizeString(f.tree.SourceText(n), f.opts.SingleQuote)})
		return
	case len(n.Children) == 0:
		f.emit(classify(n, n.Text))
		return
	}

	switch {
	case n.Kind == ast.KindProgram:
		f.statements(n.Children)
	case n.Is(ast.KindStatementBlock, ast.KindClassBody, ast.KindSwitchBody, "interface_body"):
		f.block(n)
	case n.Is(ast.KindObject, ast.KindObjectPattern, "object_type", "enum_body",
		ast.KindNamedImports, ast.KindExportClause):
		f.braced(n)
	case n.Is(ast.KindSwitchCase, ast.KindSwitchDefault):
		f.switchCase(n)
	case n.Kind == ast.KindElseClause:
		if f.prev.text != "}" {
			f.newline()
		}
		f.children(n, n.Children)
	case f.terminated(n):
		f.terminatedStatement(n)
	default:
		f.children(n, n.Children)
	}
}

// children prints a node's children on the current line.
func (f *formatter) children(n *ast.Node, list []*ast.Node) {
	for i, c := range list {
		if c.Kind == ast.KindComment {
			continue
		}
		if !c.Named && c.Text == "," && isTrailingComma(list, i) {
			continue
		}
		if n.Kind == ast.KindDoStmt && !c.Named && c.Text == "while" && f.prev.text != "}" {
			f.newline()
		}
		f.node(c)
	}
}

// statements prints a statement list, one statement per line.
func (f *formatter) statements(list []*ast.Node) {
	for _, c := range list {
		if !c.Named || c.Kind == ast.KindComment || c.Kind == ast.KindEmptyStmt {
			continue
		}
		f.newline()
		if !f.opts.Semi && continuesPrevious(leftmost(c)) {
			f.emit(tok{text: ";"})
			f.prev = tok{}
		}
		f.node(c)
	}
}

// block prints a braced body expanded over several lines.
func (f *formatter) block(n *ast.Node) {
	members := listMembers(n)
	f.emit(tok{text: "{"})
	if len(members) == 0 {
		f.emit(tok{text: "}"})
		return
	}

	f.depth++
	switch n.Kind {
	case ast.KindClassBody:
		f.classMembers(members)
	case ast.KindSwitchBody:
		for _, m := range members {
			f.newline()
			f.node(m)
		}
	case "interface_body":
		f.typeMembers(members)
	default:
		f.statements(n.Children)
	}
	f.depth--
	f.newline()
	f.emit(tok{text: "}"})
}

func (f *formatter) classMembers(members []*ast.Node) {
	for i, m := range members {
		f.newline()
		f.node(m)
		if !isFieldMember(m.Kind) {
			continue
		}
		if f.opts.Semi {
			f.emit(tok{text: ";"})
			continue
		}
		if i+1 < len(members) && continuesField(leftmost(members[i+1])) {
			f.emit(tok{text: ";"})
		}
	}
}

func (f *formatter) typeMembers(members []*ast.Node) {
	for _, m := range members {
		f.newline()
		f.node(m)
		if f.opts.Semi {
			f.emit(tok{text: ";"})
		}
	}
}

// braced prints an object-like list inline, or expanded when the source
// broke the line after its opening brace or a member cannot stay inline.
func (f *formatter) braced(n *ast.Node) {
	members := listMembers(n)
	open := tok{text: "{", padded: true}
	closing := tok{text: "}", padded: true}
	if len(members) == 0 {
		f.emit(open)
		f.emit(closing)
		return
	}

	sep := ","
	if n.Kind == "object_type" {
		sep = ";"
	}

	if !f.expands(n, members) {
		f.emit(open)
		for i, m := range members {
			if i > 0 {
				f.emit(tok{text: sep})
			}
			f.node(m)
		}
		f.emit(closing)
		return
	}

	f.emit(open)
	f.depth++
	for i, m := range members {
		f.newline()
		f.node(m)
		last := i == len(members)-1
		switch {
		case sep == ";":
			if f.opts.Semi {
				f.emit(tok{text: ";"})
			}
		case !last:
			f.emit(tok{text: ","})
		case f.opts.TrailingComma && m.Kind != ast.KindRestPattern:
			f.emit(tok{text: ","})
		}
	}
	f.depth--
	f.newline()
	f.emit(closing)
}

func (f *formatter) expands(n *ast.Node, members []*ast.Node) bool {
	switch {
	case n.Kind == "enum_body":
		return true
	case n.Kind == "object_type" && n.Parent.Is(ast.KindInterfaceDecl):
		return true
	case n.Is(ast.KindNamedImports, ast.KindExportClause):
		return false
	}
	if f.sourceBreak(n, members[0]) {
		return true
	}
	for _, m := range members {
		if f.breaks(m) {
			return true
		}
	}
	return false
}

// sourceBreak reports whether the source had a line break between the
// opening brace of n and its first member.
func (f *formatter) sourceBreak(n, first *ast.Node) bool {
	if first.Start < n.Start || int(first.Start) > len(f.tree.Source) {
		return false
	}
	return strings.Contains(string(f.tree.Source[n.Start:first.Start]), "\n")
}

// breaks reports whether printing n forces a line break.
func (f *formatter) breaks(n *ast.Node) bool {
	if v, ok := f.broken[n]; ok {
		return v
	}
	var v bool
	switch {
	case isVerbatim(n.Kind), n.Kind == ast.KindString:
	case n.Is(ast.KindStatementBlock, ast.KindClassBody, ast.KindSwitchBody, "interface_body", "enum_body"):
		v = len(listMembers(n)) > 0
	case n.Is(ast.KindObject, ast.KindObjectPattern, "object_type"):
		if m := listMembers(n); len(m) > 0 {
			v = f.sourceBreak(n, m[0])
		}
	}
	if !v && !isVerbatim(n.Kind) && n.Kind != ast.KindString {
		for _, c := range n.Children {
			if f.breaks(c) {
				v = true
				break
			}
		}
	}
	f.broken[n] = v
	return v
}

func (f *formatter) switchCase(n *ast.Node) {
	var body []*ast.Node
	colon := false
	for _, c := range n.Children {
		if colon {
			body = append(body, c)
			continue
		}
		if c.Kind == ast.KindComment {
			continue
		}
		f.node(c)
		if !c.Named && c.Text == ":" {
			colon = true
		}
	}

	stmts := statementsOf(body)
	if len(stmts) == 1 && stmts[0].Kind == ast.KindStatementBlock {
		f.node(stmts[0])
		return
	}
	f.depth++
	f.statements(body)
	f.depth--
}

// terminated reports whether n is a statement that ends in a semicolon.
func (f *formatter) terminated(n *ast.Node) bool {
	if p := n.Parent; p.Is(ast.KindForStmt) && (n.Field == "initializer" || n.Field == "condition") {
		return false
	}
	switch n.Kind {
	case ast.KindExpressionStmt, ast.KindLexicalDecl, ast.KindVariableDecl,
		ast.KindReturnStmt, ast.KindThrowStmt, ast.KindBreakStmt, ast.KindContinueStmt,
		ast.KindDebuggerStmt, ast.KindDoStmt, ast.KindImportStmt, ast.KindTypeAliasDecl,
		ast.KindFunctionSig, "import_alias":
		return true
	case ast.KindExportStmt:
		if n.ChildByField("declaration") != nil {
			return false
		}
		if v := n.ChildByField("value"); v != nil {
			return !v.Is(ast.KindFunction, ast.KindFunctionExpr, ast.KindGeneratorFunc, ast.KindClass)
		}
		return true
	}
	return false
}

func (f *formatter) terminatedStatement(n *ast.Node) {
	list := n.Children
	if k := len(list); k > 0 && !list[k-1].Named && list[k-1].Text == ";" {
		list = list[:k-1]
	}
	f.children(n, list)
	if f.opts.Semi {
		f.emit(tok{text: ";"})
	}
}

// isTrailingComma reports whether the comma at list[i] only precedes the
// closing token. A comma after another comma or an opening bracket marks
// an array hole and is kept.
func isTrailingComma(list []*ast.Node, i int) bool {
	next := -1
	for j := i + 1; j < len(list); j++ {
		if list[j].Kind != ast.KindComment {
			next = j
			break
		}
	}
	if next < 0 || list[next].Named {
		return false
	}
	switch list[next].Text {
	case ")", "]", "}":
	default:
		return false
	}
	for j := i - 1; j >= 0; j-- {
		if list[j].Kind == ast.KindComment {
			continue
		}
		return list[j].Named || (list[j].Text != "," && list[j].Text != "[")
	}
	return false
}

// listMembers returns the named children of a braced list.
func listMembers(n *ast.Node) []*ast.Node {
	return n.NamedChildren()
}

func statementsOf(list []*ast.Node) []*ast.Node {
	var out []*ast.Node
	for _, c := range list {
		if c.Named && c.Kind != ast.KindComment && c.Kind != ast.KindEmptyStmt {
			out = append(out, c)
		}
	}
	return out
}

// leftmost returns the text of the first token printed for n.
func leftmost(n *ast.Node) string {
	for n != nil {
		if isVerbatim(n.Kind) || n.Kind == ast.KindString || len(n.Children) == 0 {
			if n.Text != "" {
				return n.Text
			}
			return string(n.Kind)
		}
		var next *ast.Node
		for _, c := range n.Children {
			if c.Kind != ast.KindComment {
				next = c
				break
			}
		}
		n = next
	}
	return ""
}

// continuesPrevious reports whether a statement starting with s would be
// parsed as a continuation of the previous line without a semicolon.
func continuesPrevious(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '(', '[', '`', '+', '-', '/':
		return true
	}
	return s == string(ast.KindTemplate) || s == string(ast.KindRegex)
}

func continuesField(s string) bool {
	return s == "[" || s == "(" || s == "*"
}

func isFieldMember(kind ast.Kind) bool {
	switch kind {
	case "field_definition", "public_field_definition", "method_signature",
		"abstract_method_signature", "index_signature":
		return true
	}
	return false
}

func isVerbatim(kind ast.Kind) bool {
	switch kind {
	case ast.KindTemplate, ast.KindRegex, ast.KindHashBang,
		ast.KindJSXElement, ast.KindJSXSelfClosing, ast.KindJSXFragment:
		return true
	}
	return false
}
