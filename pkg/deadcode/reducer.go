package deadcode

import (
	"github.com/panbanda/jsclean/pkg/ast"
	"github.com/panbanda/jsclean/pkg/scope"
)

// removalKind selects how an unreferenced binding is removed.
type removalKind int

const (
	removeNone removalKind = iota
	removeDeclarator
	removeFunction
	removeImport
)

// remover removes one declaring construct of a binding.
type remover struct {
	report RemovalKind
	// accepts reports whether a declaring node has the shape this remover
	// handles.
	accepts func(decl *ast.Node) bool
}

var removers = [...]remover{
	removeNone: {},
	removeDeclarator: {
		report:  RemovedVariable,
		accepts: isStatementDeclarator,
	},
	removeFunction: {
		report:  RemovedFunction,
		accepts: isStatementFunction,
	},
	removeImport: {
		report:  RemovedImport,
		accepts: isImportBinding,
	},
}

// kindFor maps a binding to its removal kind. Bindings introduced by
// parameters, classes, catch clauses, namespace imports and loop heads are
// never removed.
func kindFor(b *scope.Binding) removalKind {
	var kind removalKind
	switch b.Kind {
	case scope.KindVar, scope.KindLet, scope.KindConst:
		kind = removeDeclarator
	case scope.KindFunction:
		kind = removeFunction
	case scope.KindImport:
		kind = removeImport
	default:
		return removeNone
	}
	for _, d := range b.Declarations {
		if !removers[kind].accepts(d) {
			return removeNone
		}
	}
	return kind
}

// plan is one removal decided from a single crawl.
type plan struct {
	binding *scope.Binding
	kind    removalKind
}

// reduce removes every unreferenced binding of s. The scope is crawled
// first if the tree changed since its last crawl.
func (e *engine) reduce(s *scope.Scope) error {
	gen := e.tree.Generation()
	if last, ok := e.reduced[s]; ok && last == gen {
		return nil
	}
	e.reduced[s] = gen

	var plans []plan
	for _, b := range s.Bindings() {
		if b.Referenced() {
			continue
		}
		kind := kindFor(b)
		if kind == removeNone {
			continue
		}
		if kind == removeDeclarator && !patternDead(s, b) {
			continue
		}
		plans = append(plans, plan{binding: b, kind: kind})
	}

	for _, p := range plans {
		for i, decl := range p.binding.Declarations {
			if e.tree.IsRemoved(decl) {
				continue
			}
			if _, err := e.tree.Remove(decl); err != nil {
				return err
			}
			if p.kind != removeDeclarator {
				e.record(removers[p.kind].report, p.binding.Identifiers[i])
				continue
			}
			for _, id := range scope.BindingIdentifiers(decl.ChildByField("name")) {
				e.record(RemovedVariable, id)
			}
		}
	}
	return nil
}

// patternDead reports whether every name a destructuring declarator binds
// is unreferenced, so the declarator can go as a whole.
func patternDead(s *scope.Scope, b *scope.Binding) bool {
	for _, decl := range b.Declarations {
		for _, id := range scope.BindingIdentifiers(decl.ChildByField("name")) {
			if id.Text == b.Name {
				continue
			}
			other := s.Binding(id.Text)
			if other == nil || other.Referenced() {
				return false
			}
		}
	}
	return true
}

// isStatementDeclarator reports whether decl is a declarator of a var,
// let or const statement in a statement list.
func isStatementDeclarator(decl *ast.Node) bool {
	if decl.Kind != ast.KindDeclarator {
		return false
	}
	stmt := decl.Parent
	return stmt != nil && stmt.Is(ast.KindVariableDecl, ast.KindLexicalDecl) && inStatementList(stmt)
}

func isStatementFunction(decl *ast.Node) bool {
	return decl.Is(ast.KindFunctionDecl, ast.KindGeneratorDecl) && inStatementList(decl)
}

// isImportBinding accepts named specifiers and default import identifiers.
func isImportBinding(decl *ast.Node) bool {
	switch decl.Kind {
	case ast.KindImportSpec:
		return true
	case ast.KindIdentifier:
		return decl.Parent != nil && decl.Parent.Kind == ast.KindImportClause
	}
	return false
}

func inStatementList(n *ast.Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	return p.Is(ast.KindProgram, ast.KindStatementBlock, ast.KindSwitchCase, ast.KindSwitchDefault)
}
