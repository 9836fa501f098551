package scope

import (
	"github.com/panbanda/jsclean/pkg/ast"
)

// decl is one binding identifier found while collecting a scope.
type decl struct {
	name     string
	kind     BindingKind
	node     *ast.Node
	id       *ast.Node
	exported bool
}

type declCache struct {
	generation uint64
	decls      []decl
	names      map[string]bool
}

// declarations returns the names declared directly in the scope created by
// node, memoized against the tree generation.
func (a *Analyzer) declarations(node *ast.Node) []decl {
	return a.declCacheFor(node).decls
}

func (a *Analyzer) declCacheFor(node *ast.Node) *declCache {
	gen := a.tree.Generation()
	if c, ok := a.decls[node]; ok && c.generation == gen {
		return c
	}
	col := &collector{function: isFunctionScope(node)}
	col.header(node)
	for _, child := range node.Children {
		col.visit(child, true, false)
	}
	c := &declCache{generation: gen, decls: col.decls, names: make(map[string]bool, len(col.decls))}
	for _, d := range col.decls {
		c.names[d.name] = true
	}
	a.decls[node] = c
	return c
}

type collector struct {
	function bool
	decls    []decl
}

func (c *collector) add(kind BindingKind, node, id *ast.Node, exported bool) {
	if id == nil || id.Text == "" {
		return
	}
	c.decls = append(c.decls, decl{name: id.Text, kind: kind, node: node, id: id, exported: exported})
}

func (c *collector) addPattern(kind BindingKind, node, pattern *ast.Node, exported bool) {
	for _, id := range BindingIdentifiers(pattern) {
		c.add(kind, node, id, exported)
	}
}

// header registers the names a scope node introduces itself: parameters,
// the name of a function or class expression, a catch parameter and
// lexical loop heads.
func (c *collector) header(n *ast.Node) {
	switch n.Kind {
	case ast.KindFunction, ast.KindFunctionExpr, ast.KindGeneratorFunc:
		c.add(KindLocal, n, n.ChildByField("name"), false)
		c.params(n)
	case ast.KindFunctionDecl, ast.KindGeneratorDecl, ast.KindMethod:
		c.params(n)
	case ast.KindArrowFunction:
		if p := n.ChildByField("parameter"); p != nil {
			c.add(KindParam, p, p, false)
		}
		c.params(n)
	case ast.KindClass:
		c.add(KindLocal, n, n.ChildByField("name"), false)
	case ast.KindCatchClause:
		if p := n.ChildByField("parameter"); p != nil {
			c.addPattern(KindCatch, p, p, false)
		}
	case ast.KindForInStmt:
		switch loopKind(n) {
		case "let":
			c.addPattern(KindLet, n, n.ChildByField("left"), false)
		case "const":
			c.addPattern(KindConst, n, n.ChildByField("left"), false)
		}
	}
}

func (c *collector) params(n *ast.Node) {
	params := n.ChildByField("parameters")
	if params == nil {
		return
	}
	for _, p := range params.NamedChildren() {
		c.addPattern(KindParam, p, p, false)
	}
}

// visit walks the statements of a scope. own is false once the walk has
// entered a nested block scope, where only hoisted var declarations still
// belong to the collected scope.
func (c *collector) visit(n *ast.Node, own, exported bool) {
	if IsScopeNode(n) {
		switch n.Kind {
		case ast.KindFunctionDecl, ast.KindGeneratorDecl:
			if own {
				c.add(KindFunction, n, n.ChildByField("name"), exported)
			}
			return
		case ast.KindForInStmt:
			if c.function && loopKind(n) == "var" {
				c.addPattern(KindVar, n, n.ChildByField("left"), false)
			}
		case ast.KindStatementBlock, ast.KindForStmt, ast.KindCatchClause, ast.KindSwitchBody:
		default:
			return
		}
		for _, child := range n.Children {
			c.visit(child, false, false)
		}
		return
	}

	switch n.Kind {
	case ast.KindVariableDecl:
		if c.function {
			for _, d := range n.ChildrenOfKind(ast.KindDeclarator) {
				c.addPattern(KindVar, d, d.ChildByField("name"), exported)
			}
		}
		return
	case ast.KindLexicalDecl:
		if own {
			kind := KindLet
			if n.FirstToken() == "const" {
				kind = KindConst
			}
			for _, d := range n.ChildrenOfKind(ast.KindDeclarator) {
				c.addPattern(kind, d, d.ChildByField("name"), exported)
			}
		}
		return
	case ast.KindClassDecl, ast.KindAbstractClass:
		if own {
			c.add(KindClass, n, n.ChildByField("name"), exported)
		}
		return
	case ast.KindEnumDecl:
		if own {
			c.add(KindLocal, n, n.ChildByField("name"), exported)
		}
		return
	case ast.KindImportStmt:
		if own {
			c.imports(n)
		}
		return
	case ast.KindExportStmt:
		for _, child := range n.Children {
			c.visit(child, own, child.Field == "declaration")
		}
		return
	case ast.KindExpressionStmt, ast.KindReturnStmt, ast.KindThrowStmt:
		// Expressions cannot declare names outside nested scopes.
		return
	}

	for _, child := range n.Children {
		c.visit(child, own, false)
	}
}

func (c *collector) imports(stmt *ast.Node) {
	for _, child := range stmt.Children {
		switch child.Kind {
		case ast.KindImportClause:
			for _, part := range child.Children {
				switch part.Kind {
				case ast.KindIdentifier:
					c.add(KindImport, part, part, false)
				case ast.KindNamespaceImp:
					for _, id := range part.ChildrenOfKind(ast.KindIdentifier) {
						c.add(KindNamespaceImport, part, id, false)
					}
				case ast.KindNamedImports:
					for _, spec := range part.ChildrenOfKind(ast.KindImportSpec) {
						id := spec.ChildByField("alias")
						if id == nil {
							id = spec.ChildByField("name")
						}
						if id != nil && id.Kind == ast.KindIdentifier {
							c.add(KindImport, spec, id, false)
						}
					}
				}
			}
		case ast.KindImportRequire:
			for _, id := range child.ChildrenOfKind(ast.KindIdentifier) {
				c.add(KindNamespaceImport, child, id, false)
			}
		}
	}
}

// loopKind returns the declaration keyword of a for-in/of head, or "".
func loopKind(n *ast.Node) string {
	if k := n.ChildByField("kind"); k != nil {
		return k.Text
	}
	return ""
}

// BindingIdentifiers returns the identifiers a pattern binds, in source
// order.
func BindingIdentifiers(pattern *ast.Node) []*ast.Node {
	var ids []*ast.Node
	var walk func(p *ast.Node)
	walk = func(p *ast.Node) {
		if p == nil {
			return
		}
		switch p.Kind {
		case ast.KindIdentifier, ast.KindShorthandPat:
			ids = append(ids, p)
		case ast.KindObjectPattern, ast.KindArrayPattern:
			for _, child := range p.NamedChildren() {
				walk(child)
			}
		case ast.KindPairPattern:
			walk(p.ChildByField("value"))
		case ast.KindAssignPattern, ast.KindObjAssignPat:
			walk(p.ChildByField("left"))
		case ast.KindRestPattern:
			if named := p.NamedChildren(); len(named) > 0 {
				walk(named[0])
			}
		case ast.KindRequiredParam, ast.KindOptionalParam:
			walk(p.ChildByField("pattern"))
		}
	}
	walk(pattern)
	return ids
}
