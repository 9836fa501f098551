package ast

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Kind is the grammar type of a node, as reported by tree-sitter.
type Kind string

// Node kinds the engine, the scope analyzer and the printers dispatch on.
const (
	KindProgram      Kind = "program"
	KindComment      Kind = "comment"
	KindHashBang     Kind = "hash_bang_line"
	KindError        Kind = "ERROR"
	KindIdentifier   Kind = "identifier"
	KindTypeIdent    Kind = "type_identifier"
	KindPropertyID   Kind = "property_identifier"
	KindLabelID      Kind = "statement_identifier"
	KindShorthandID  Kind = "shorthand_property_identifier"
	KindShorthandPat Kind = "shorthand_property_identifier_pattern"
	KindNumber       Kind = "number"
	KindString       Kind = "string"
	KindTemplate     Kind = "template_string"
	KindRegex        Kind = "regex"

	KindStatementBlock Kind = "statement_block"
	KindExpressionStmt Kind = "expression_statement"
	KindEmptyStmt      Kind = "empty_statement"
	KindLabeledStmt    Kind = "labeled_statement"
	KindIfStmt         Kind = "if_statement"
	KindElseClause     Kind = "else_clause"
	KindForStmt        Kind = "for_statement"
	KindForInStmt      Kind = "for_in_statement"
	KindWhileStmt      Kind = "while_statement"
	KindDoStmt         Kind = "do_statement"
	KindWithStmt       Kind = "with_statement"
	KindSwitchStmt     Kind = "switch_statement"
	KindSwitchBody     Kind = "switch_body"
	KindSwitchCase     Kind = "switch_case"
	KindSwitchDefault  Kind = "switch_default"
	KindTryStmt        Kind = "try_statement"
	KindCatchClause    Kind = "catch_clause"
	KindReturnStmt     Kind = "return_statement"
	KindThrowStmt      Kind = "throw_statement"
	KindBreakStmt      Kind = "break_statement"
	KindContinueStmt   Kind = "continue_statement"
	KindDebuggerStmt   Kind = "debugger_statement"

	KindLexicalDecl    Kind = "lexical_declaration"
	KindVariableDecl   Kind = "variable_declaration"
	KindDeclarator     Kind = "variable_declarator"
	KindFunctionDecl   Kind = "function_declaration"
	KindGeneratorDecl  Kind = "generator_function_declaration"
	KindClassDecl      Kind = "class_declaration"
	KindClass          Kind = "class"
	KindClassBody      Kind = "class_body"
	KindStaticBlock    Kind = "class_static_block"
	KindFunction       Kind = "function"
	KindFunctionExpr   Kind = "function_expression"
	KindGeneratorFunc  Kind = "generator_function"
	KindArrowFunction  Kind = "arrow_function"
	KindMethod         Kind = "method_definition"
	KindFormalParams   Kind = "formal_parameters"
	KindRequiredParam  Kind = "required_parameter"
	KindOptionalParam  Kind = "optional_parameter"
	KindEnumDecl       Kind = "enum_declaration"
	KindAbstractClass  Kind = "abstract_class_declaration"
	KindFunctionSig    Kind = "function_signature"
	KindAmbientDecl    Kind = "ambient_declaration"
	KindInterfaceDecl  Kind = "interface_declaration"
	KindTypeAliasDecl  Kind = "type_alias_declaration"
	KindImportStmt     Kind = "import_statement"
	KindImportClause   Kind = "import_clause"
	KindNamedImports   Kind = "named_imports"
	KindImportSpec     Kind = "import_specifier"
	KindNamespaceImp   Kind = "namespace_import"
	KindImportRequire  Kind = "import_require_clause"
	KindExportStmt     Kind = "export_statement"
	KindExportClause   Kind = "export_clause"
	KindExportSpec     Kind = "export_specifier"
	KindObjectPattern  Kind = "object_pattern"
	KindArrayPattern   Kind = "array_pattern"
	KindPairPattern    Kind = "pair_pattern"
	KindAssignPattern  Kind = "assignment_pattern"
	KindObjAssignPat   Kind = "object_assignment_pattern"
	KindRestPattern    Kind = "rest_pattern"
	KindAssignment     Kind = "assignment_expression"
	KindAugAssignment  Kind = "augmented_assignment_expression"
	KindParenthesized  Kind = "parenthesized_expression"
	KindObject         Kind = "object"
	KindArray          Kind = "array"
	KindArguments      Kind = "arguments"
	KindSequenceExpr   Kind = "sequence_expression"
	KindMemberExpr     Kind = "member_expression"
	KindCallExpr       Kind = "call_expression"
	KindNewExpr        Kind = "new_expression"
	KindTypeAnnotation Kind = "type_annotation"
	KindJSXElement     Kind = "jsx_element"
	KindJSXSelfClosing Kind = "jsx_self_closing_element"
	KindJSXFragment    Kind = "jsx_fragment"
)

// Position is a 1-based line and column in the original source.
type Position struct {
	Line   int
	Column int
}

// Span is a half-open byte range of the original source.
type Span struct {
	Start uint32
	End   uint32
}

// Node is one node of the mutable tree.
type Node struct {
	ID    uint32
	Kind  Kind
	Field string
	Named bool
	// Text holds the token text of leaves; inner nodes leave it empty.
	Text  string
	Start uint32
	End   uint32
	Pos   Position
	// Synthetic nodes were created by tree surgery and have no source text.
	Synthetic bool

	Parent   *Node
	Children []*Node

	cuts []Span
}

// Cuts returns the source spans of children that were removed from n.
func (n *Node) Cuts() []Span {
	return n.cuts
}

// IsLeaf reports whether the node is a token.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0 && len(n.cuts) == 0
}

// Is reports whether the node has one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// ChildByField returns the first child attached under the given field name.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns all children attached under the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOfKind returns the direct children with the given kind.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named (non-punctuation) children, skipping comments.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named && c.Kind != KindComment {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether an anonymous child token with the given text exists.
func (n *Node) HasToken(text string) bool {
	for _, c := range n.Children {
		if !c.Named && c.Text == text {
			return true
		}
	}
	return false
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// FirstToken returns the first anonymous child token text, or "".
func (n *Node) FirstToken() string {
	for _, c := range n.Children {
		if !c.Named {
			return c.Text
		}
	}
	return ""
}

// Enclosing returns the nearest proper ancestor with one of the given kinds.
func (n *Node) Enclosing(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// Visitor is called for every node in pre-order. Returning false skips
// the node's children.
type Visitor func(n *Node) bool

// Walk traverses the subtree rooted at n. The tree must not be mutated
// during the walk; use Tree.Walk for that.
func Walk(n *Node, v Visitor) {
	if n == nil {
		return
	}
	if !v(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, v)
	}
}

// Tree is a mutable syntax tree together with the source it was built from.
type Tree struct {
	Root   *Node
	Source []byte
	Path   string

	generation uint64
	removed    *roaring.Bitmap
	nextID     uint32
}

// NewTree wraps a built node hierarchy.
func NewTree(root *Node, source []byte, path string) *Tree {
	t := &Tree{
		Root:    root,
		Source:  source,
		Path:    path,
		removed: roaring.New(),
	}
	Walk(root, func(n *Node) bool {
		if n.ID >= t.nextID {
			t.nextID = n.ID + 1
		}
		return true
	})
	return t
}

// Generation increases every time the tree is mutated.
func (t *Tree) Generation() uint64 {
	return t.generation
}

// IsRemoved reports whether a node was detached, directly or as part of a
// removed subtree.
func (t *Tree) IsRemoved(n *Node) bool {
	return t.removed.Contains(n.ID)
}

// RemovedCount returns the number of nodes detached so far.
func (t *Tree) RemovedCount() uint64 {
	return t.removed.GetCardinality()
}

// SourceText returns the original source text covered by n.
func (t *Tree) SourceText(n *Node) string {
	if n.Synthetic {
		return n.Text
	}
	if n.Start > n.End || int(n.End) > len(t.Source) {
		return ""
	}
	return string(t.Source[n.Start:n.End])
}

// Walk traverses the live tree in pre-order, tolerating mutation by the
// visitor. Children are snapshotted before descent and nodes removed in
// the meantime are skipped.
func (t *Tree) Walk(v Visitor) {
	t.walk(t.Root, v)
}

func (t *Tree) walk(n *Node, v Visitor) {
	if t.IsRemoved(n) {
		return
	}
	if !v(n) || t.IsRemoved(n) {
		return
	}
	children := make([]*Node, len(n.Children))
	copy(children, n.Children)
	for _, c := range children {
		t.walk(c, v)
	}
}

func (t *Tree) newNode(kind Kind, named bool, text string) *Node {
	n := &Node{ID: t.nextID, Kind: kind, Named: named, Text: text, Synthetic: true}
	t.nextID++
	return n
}

func (t *Tree) markRemoved(n *Node) {
	Walk(n, func(d *Node) bool {
		t.removed.Add(d.ID)
		return true
	})
}
