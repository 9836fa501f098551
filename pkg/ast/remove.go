package ast

import (
	"errors"
	"fmt"
)

// ErrStaleNode is returned when a removal targets a node that is no longer
// attached to the tree.
var ErrStaleNode = errors.New("stale node")

// Remove detaches n from the tree.
//
// The node actually detached may be an ancestor of n: a sole declarator
// takes its declaration with it, an expression takes its expression
// statement, and a declaration takes its export or label wrapper. When the
// detached statement occupies a single-statement slot (an if branch or a
// loop body) it is replaced by an empty block instead, and a for head
// initializer or condition is replaced by an empty statement. Adjacent list
// separators are removed together with list members.
//
// Remove returns the node that was detached or replaced.
func (t *Tree) Remove(n *Node) (*Node, error) {
	if n == nil || n.Parent == nil || t.IsRemoved(n) || n.Index() < 0 {
		return nil, fmt.Errorf("remove %s: %w", describe(n), ErrStaleNode)
	}

	target := removalTarget(n)
	parent := target.Parent

	switch {
	case occupiesSlot(target):
		t.replace(target, t.newNode(KindStatementBlock, true, "{}"))
	case parent.Kind == KindForStmt && (target.Field == "initializer" || target.Field == "condition"):
		t.replace(target, t.newNode(KindEmptyStmt, true, ";"))
	default:
		t.detach(target)
		t.collapseImport(parent)
	}

	t.generation++
	return target, nil
}

// removalTarget climbs from n to the construct that has to go with it.
func removalTarget(n *Node) *Node {
	target := n
	for {
		parent := target.Parent
		if parent == nil || parent.Parent == nil {
			return target
		}
		switch {
		case target.Kind == KindDeclarator &&
			parent.Is(KindLexicalDecl, KindVariableDecl) &&
			len(parent.ChildrenOfKind(KindDeclarator)) == 1:
			target = parent
		case parent.Kind == KindExpressionStmt && len(parent.NamedChildren()) == 1:
			target = parent
		case parent.Kind == KindExportStmt && target.Field == "declaration":
			target = parent
		case parent.Kind == KindLabeledStmt && target.Field == "body":
			target = parent
		default:
			return target
		}
	}
}

// occupiesSlot reports whether n is the statement of a construct that
// syntactically requires exactly one statement.
func occupiesSlot(n *Node) bool {
	p := n.Parent
	switch p.Kind {
	case KindIfStmt:
		return n.Field == "consequence"
	case KindElseClause:
		return n.Named && n.Kind != KindComment
	case KindForStmt, KindForInStmt, KindWhileStmt, KindDoStmt, KindWithStmt:
		return n.Field == "body"
	}
	return false
}

func (t *Tree) replace(old, repl *Node) {
	i := old.Index()
	parent := old.Parent
	repl.Field = old.Field
	repl.Start = old.Start
	repl.End = old.Start
	repl.Pos = old.Pos
	repl.Parent = parent
	parent.Children[i] = repl
	parent.cuts = append(parent.cuts, Span{Start: old.Start, End: old.End})
	t.markRemoved(old)
	old.Parent = nil
}

// detach unlinks n and its adjacent list separator from the parent.
func (t *Tree) detach(n *Node) {
	parent := n.Parent
	i := n.Index()

	sep := -1
	if next := nextToken(parent, i); next >= 0 && parent.Children[next].Text == "," {
		sep = next
	} else if prev := prevToken(parent, i); prev >= 0 && parent.Children[prev].Text == "," {
		sep = prev
	}

	if sep < 0 {
		t.unlink(parent, i)
		return
	}

	// Cut the blanks between the member and its separator too, so the
	// neighbours keep their original spacing.
	s := parent.Children[sep]
	if sep > i {
		parent.cuts = append(parent.cuts, Span{Start: n.End, End: t.skipBlanks(s.End)})
	} else {
		parent.cuts = append(parent.cuts, Span{Start: s.End, End: n.Start})
	}
	t.unlink(parent, i)
	if sep > i {
		sep--
	}
	t.unlink(parent, sep)
}

func (t *Tree) skipBlanks(pos uint32) uint32 {
	for int(pos) < len(t.Source) && (t.Source[pos] == ' ' || t.Source[pos] == '\t') {
		pos++
	}
	return pos
}

func (t *Tree) unlink(parent *Node, i int) {
	c := parent.Children[i]
	parent.Children = append(parent.Children[:i:i], parent.Children[i+1:]...)
	if !c.Synthetic {
		parent.cuts = append(parent.cuts, Span{Start: c.Start, End: c.End})
	}
	t.markRemoved(c)
	c.Parent = nil
}

// collapseImport drops import containers left without bindings, so that
// `import a, { b } from 'm'` with both bindings gone becomes `import 'm'`.
func (t *Tree) collapseImport(n *Node) {
	if n.Kind == KindNamedImports && len(n.ChildrenOfKind(KindImportSpec)) == 0 {
		clause := n.Parent
		if clause == nil {
			return
		}
		t.detach(n)
		n = clause
	}
	if n.Kind != KindImportClause || len(n.NamedChildren()) > 0 {
		return
	}
	stmt := n.Parent
	if stmt == nil {
		return
	}
	t.unlink(stmt, n.Index())
	for i, c := range stmt.Children {
		if !c.Named && c.Text == "from" {
			t.unlink(stmt, i)
			break
		}
	}
}

func nextToken(parent *Node, i int) int {
	for j := i + 1; j < len(parent.Children); j++ {
		if parent.Children[j].Kind != KindComment {
			return j
		}
	}
	return -1
}

func prevToken(parent *Node, i int) int {
	for j := i - 1; j >= 0; j-- {
		if parent.Children[j].Kind != KindComment {
			return j
		}
	}
	return -1
}

func describe(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s at %d:%d", n.Kind, n.Pos.Line, n.Pos.Column)
}
