package deadcode

import (
	"cmp"
	"slices"
	"strings"

	"github.com/panbanda/jsclean/pkg/ast"
	"github.com/panbanda/jsclean/pkg/scope"
)

// dangling tracks `name = <number>;` statements assigning undeclared names.
// One instance lives for exactly one traversal.
type dangling struct {
	// candidates maps a name to its last qualifying assignment.
	candidates map[string]*ast.Node
	// reads holds every name observed outside a plain assignment target.
	reads map[string]bool
}

func newDangling() *dangling {
	return &dangling{
		candidates: make(map[string]*ast.Node),
		reads:      make(map[string]bool),
	}
}

// observe is called for every live node in traversal order.
func (d *dangling) observe(n *ast.Node, s *scope.Scope) {
	if isNameToken(n.Kind) {
		if isAssignTarget(n) {
			return
		}
		d.reads[n.Text] = true
		delete(d.candidates, n.Text)
		return
	}

	if n.Kind != ast.KindAssignment {
		return
	}
	name, ok := qualifies(n, s)
	if !ok || d.reads[name] {
		return
	}
	d.candidates[name] = n
}

// survivors returns the remaining candidates in source order.
func (d *dangling) survivors() []*ast.Node {
	out := make([]*ast.Node, 0, len(d.candidates))
	for _, n := range d.candidates {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *ast.Node) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}

// qualifies reports whether an assignment is a standalone statement that
// stores a numeric literal in an undeclared name. The initializer and
// condition of a for head parse as expression statements but are not
// statements of their own.
func qualifies(n *ast.Node, s *scope.Scope) (string, bool) {
	stmt := n.Parent
	if stmt == nil || stmt.Kind != ast.KindExpressionStmt {
		return "", false
	}
	if stmt.Parent != nil && stmt.Parent.Kind == ast.KindForStmt {
		return "", false
	}
	left := unwrapParens(n.ChildByField("left"))
	if left == nil || left.Kind != ast.KindIdentifier {
		return "", false
	}
	right := unwrapParens(n.ChildByField("right"))
	if !isNumericLiteral(right) {
		return "", false
	}
	if s.HasBinding(left.Text) {
		return "", false
	}
	return left.Text, true
}

func isNumericLiteral(n *ast.Node) bool {
	if n == nil || n.Kind != ast.KindNumber {
		return false
	}
	// BigInt literals are a separate literal type.
	return !strings.HasSuffix(n.Text, "n")
}

func unwrapParens(n *ast.Node) *ast.Node {
	for n != nil && n.Kind == ast.KindParenthesized {
		named := n.NamedChildren()
		if len(named) != 1 {
			return n
		}
		n = named[0]
	}
	return n
}

// isAssignTarget reports whether an identifier is the left side of a plain
// `=` assignment, looking through parentheses.
func isAssignTarget(n *ast.Node) bool {
	child, p := n, n.Parent
	for p != nil && p.Kind == ast.KindParenthesized {
		child, p = p, p.Parent
	}
	return p != nil && p.Kind == ast.KindAssignment && child.Field == "left"
}

// isNameToken reports whether nodes of kind spell a name that could read a
// candidate. Property names and labels are included.
func isNameToken(kind ast.Kind) bool {
	switch kind {
	case ast.KindIdentifier, ast.KindShorthandID, ast.KindShorthandPat,
		ast.KindPropertyID, ast.KindTypeIdent, ast.KindLabelID:
		return true
	}
	return false
}
