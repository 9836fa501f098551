// Package scope computes lexical scopes and bindings over an ast tree.
//
// Scopes are recomputed on demand. Each Scope remembers the tree
// generation it was last crawled at and is crawled again the first time it
// is used after any mutation of the tree.
//
// Writes count as references. A binding that is only ever assigned, as in
// `var c; c = 5;`, is referenced and its declaration stays, because
// removing it would leave the assignment writing an undeclared name.
package scope

import (
	"github.com/panbanda/jsclean/pkg/ast"
)

// BindingKind classifies how a name was introduced.
type BindingKind string

const (
	KindVar             BindingKind = "var"
	KindLet             BindingKind = "let"
	KindConst           BindingKind = "const"
	KindFunction        BindingKind = "function"
	KindClass           BindingKind = "class"
	KindParam           BindingKind = "param"
	KindImport          BindingKind = "import"
	KindNamespaceImport BindingKind = "namespace"
	KindCatch           BindingKind = "catch"
	// KindLocal names its own function or class expression.
	KindLocal BindingKind = "local"
)

// Binding is a name declared in a scope.
type Binding struct {
	Name string
	Kind BindingKind
	// Declarations are the constructs that introduce the name, in source
	// order: declarators, function declarations, import specifiers, or the
	// identifier itself for default imports and params.
	Declarations []*ast.Node
	// Identifiers are the binding identifier nodes.
	Identifiers []*ast.Node
	// References counts every read and write of the name resolved to this
	// binding.
	References int
	// Exported bindings are referenced by their export declaration.
	Exported bool
	Scope    *Scope
}

// Referenced reports whether anything refers to the binding, writes
// included.
func (b *Binding) Referenced() bool {
	return b.References > 0 || b.Exported
}

// Scope is one lexical scope.
type Scope struct {
	Node   *ast.Node
	Parent *Scope

	bindings map[string]*Binding
	order    []*Binding

	analyzer   *Analyzer
	generation uint64
	crawled    bool
}

// IsFunction reports whether var declarations hoist to this scope.
func (s *Scope) IsFunction() bool {
	return isFunctionScope(s.Node)
}

// Stale reports whether the tree was mutated since the last crawl.
func (s *Scope) Stale() bool {
	return !s.crawled || s.generation != s.analyzer.tree.Generation()
}

// Bindings returns the scope's own bindings in declaration order.
func (s *Scope) Bindings() []*Binding {
	s.analyzer.Crawl(s)
	return s.order
}

// Binding returns the binding declared directly in s, or nil.
func (s *Scope) Binding(name string) *Binding {
	s.analyzer.Crawl(s)
	return s.bindings[name]
}

// Lookup resolves name through s and its ancestors.
func (s *Scope) Lookup(name string) *Binding {
	for cur := s; cur != nil; cur = cur.Parent {
		if b := cur.Binding(name); b != nil {
			return b
		}
	}
	return nil
}

// HasBinding reports whether name resolves to a declared binding in the
// scope chain or to a builtin global.
func (s *Scope) HasBinding(name string) bool {
	if s.Lookup(name) != nil {
		return true
	}
	return IsGlobal(name)
}

// Analyzer owns the scopes of one tree.
type Analyzer struct {
	tree   *ast.Tree
	scopes map[*ast.Node]*Scope
	decls  map[*ast.Node]*declCache
	crawls int
}

// New creates an analyzer for tree.
func New(tree *ast.Tree) *Analyzer {
	return &Analyzer{
		tree:   tree,
		scopes: make(map[*ast.Node]*Scope),
		decls:  make(map[*ast.Node]*declCache),
	}
}

// Tree returns the analyzed tree.
func (a *Analyzer) Tree() *ast.Tree {
	return a.tree
}

// Crawls returns how many scope crawls have run.
func (a *Analyzer) Crawls() int {
	return a.crawls
}

// Program returns the root scope.
func (a *Analyzer) Program() *Scope {
	return a.scopeFor(a.tree.Root)
}

// ScopeOf returns the scope a node belongs to. A scope-creating node
// belongs to its own scope.
func (a *Analyzer) ScopeOf(n *ast.Node) *Scope {
	for p := n; p != nil; p = p.Parent {
		if IsScopeNode(p) {
			return a.scopeFor(p)
		}
	}
	return a.Program()
}

func (a *Analyzer) scopeFor(n *ast.Node) *Scope {
	if s, ok := a.scopes[n]; ok {
		return s
	}
	s := &Scope{Node: n, analyzer: a}
	if n.Parent != nil {
		s.Parent = a.ScopeOf(n.Parent)
	}
	a.scopes[n] = s
	return s
}

// Crawl recomputes the bindings and reference counts of s if the tree
// changed since its last crawl.
func (a *Analyzer) Crawl(s *Scope) {
	if !s.Stale() {
		return
	}
	a.crawls++

	s.bindings = make(map[string]*Binding)
	s.order = nil
	for _, d := range a.declarations(s.Node) {
		b := s.bindings[d.name]
		if b == nil {
			b = &Binding{Name: d.name, Kind: d.kind, Scope: s}
			s.bindings[d.name] = b
			s.order = append(s.order, b)
		}
		b.Declarations = append(b.Declarations, d.node)
		b.Identifiers = append(b.Identifiers, d.id)
		if d.exported {
			b.Exported = true
		}
	}
	a.countReferences(s)

	s.generation = a.tree.Generation()
	s.crawled = true
}

// IsScopeNode reports whether n creates a scope.
func IsScopeNode(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindProgram,
		ast.KindFunctionDecl, ast.KindGeneratorDecl,
		ast.KindFunction, ast.KindFunctionExpr, ast.KindGeneratorFunc,
		ast.KindArrowFunction, ast.KindMethod,
		ast.KindForStmt, ast.KindForInStmt,
		ast.KindCatchClause, ast.KindSwitchBody,
		ast.KindClass, ast.KindStaticBlock:
		return true
	case ast.KindStatementBlock:
		return !isFunctionBody(n)
	}
	return false
}

// isFunctionBody reports whether a block shares the scope of its parent.
func isFunctionBody(n *ast.Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	return isFunctionScope(p) || p.Kind == ast.KindCatchClause
}

func isFunctionScope(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindProgram,
		ast.KindFunctionDecl, ast.KindGeneratorDecl,
		ast.KindFunction, ast.KindFunctionExpr, ast.KindGeneratorFunc,
		ast.KindArrowFunction, ast.KindMethod, ast.KindStaticBlock:
		return true
	}
	return false
}
