package scope

import (
	"github.com/panbanda/jsclean/pkg/ast"
)

// countReferences walks the subtree of s and counts every identifier that
// resolves to one of its own bindings. Names declared by nested scopes
// shadow the bindings of s below their scope node.
func (a *Analyzer) countReferences(s *Scope) {
	if len(s.bindings) == 0 {
		return
	}
	r := &resolver{
		analyzer: a,
		own:      s.bindings,
		skip:     make(map[uint32]bool),
	}
	for _, b := range s.order {
		for _, id := range b.Identifiers {
			r.skip[id.ID] = true
		}
	}
	for _, child := range s.Node.Children {
		r.visit(child)
	}
}

type resolver struct {
	analyzer *Analyzer
	own      map[string]*Binding
	skip     map[uint32]bool
	shadow   []map[string]bool
}

func (r *resolver) visit(n *ast.Node) {
	if IsScopeNode(n) {
		c := r.analyzer.declCacheFor(n)
		for _, d := range c.decls {
			r.skip[d.id.ID] = true
		}
		r.shadow = append(r.shadow, c.names)
		defer func() { r.shadow = r.shadow[:len(r.shadow)-1] }()
	}

	switch n.Kind {
	case ast.KindImportSpec, ast.KindImportClause, ast.KindImportRequire:
		return
	case ast.KindExportStmt:
		if n.ChildByField("source") != nil {
			// Re-exports name bindings of another module.
			return
		}
	case ast.KindExportSpec:
		r.reference(n.ChildByField("name"))
		return
	}

	if IsReferenceKind(n.Kind) {
		r.reference(n)
		return
	}
	for _, child := range n.Children {
		r.visit(child)
	}
}

func (r *resolver) reference(id *ast.Node) {
	if id == nil || !IsReferenceKind(id.Kind) || r.skip[id.ID] {
		return
	}
	for i := len(r.shadow) - 1; i >= 0; i-- {
		if r.shadow[i][id.Text] {
			return
		}
	}
	if b := r.own[id.Text]; b != nil {
		b.References++
	}
}

// IsReferenceKind reports whether nodes of kind name a binding when they
// are not declaring it.
func IsReferenceKind(kind ast.Kind) bool {
	switch kind {
	case ast.KindIdentifier, ast.KindShorthandID, ast.KindShorthandPat, ast.KindTypeIdent:
		return true
	}
	return false
}
