// Package printer renders a mutated ast tree back to source text.
//
// Rendering splices the original source: every surviving token is copied
// verbatim, the spans of removed nodes are skipped, comments are dropped,
// and blank lines left behind by removals are collapsed.
package printer

import (
	"cmp"
	"slices"
	"strings"

	"github.com/panbanda/jsclean/pkg/ast"
)

// Render returns the source text of the live tree.
func Render(t *ast.Tree) string {
	var sb strings.Builder
	sb.Grow(len(t.Source))
	p := &printer{tree: t, out: &sb}
	p.node(t.Root)

	out := strings.TrimLeft(sb.String(), " \t\r\n")
	out = strings.TrimRight(out, " \t\r\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// RenderNode returns the source text of a single live subtree.
func RenderNode(t *ast.Tree, n *ast.Node) string {
	var sb strings.Builder
	p := &printer{tree: t, out: &sb}
	p.node(n)
	return strings.TrimSpace(sb.String())
}

type printer struct {
	tree *ast.Tree
	out  *strings.Builder
}

func (p *printer) node(n *ast.Node) {
	switch {
	case n.Synthetic:
		p.out.WriteString(n.Text)
		return
	case n.Kind == ast.KindComment:
		// A block comment can be the only separator between two tokens.
		p.out.WriteByte(' ')
		return
	case len(n.Children) == 0 && len(n.Cuts()) == 0:
		p.out.Write(p.tree.Source[n.Start:n.End])
		return
	}

	raw := n.Kind == ast.KindTemplate
	pos := n.Start
	for _, c := range n.Children {
		if !c.Synthetic || c.Start > pos {
			p.gap(n, pos, c.Start, raw)
		}
		p.node(c)
		if c.End > pos {
			pos = c.End
		}
	}
	p.gap(n, pos, n.End, raw)
}

// gap writes the source between two children of n, skipping spans that
// belonged to removed children.
func (p *printer) gap(n *ast.Node, from, to uint32, raw bool) {
	if from >= to {
		return
	}
	var sb strings.Builder
	pos := from
	for _, cut := range sortedCuts(n.Cuts()) {
		if cut.End <= pos || cut.Start >= to {
			continue
		}
		if cut.Start > pos {
			sb.Write(p.tree.Source[pos:cut.Start])
		}
		if cut.End > pos {
			pos = cut.End
		}
	}
	if pos < to {
		sb.Write(p.tree.Source[pos:to])
	}

	if raw {
		p.out.WriteString(sb.String())
		return
	}
	p.out.WriteString(CollapseBlankLines(sb.String()))
}

func sortedCuts(cuts []ast.Span) []ast.Span {
	if len(cuts) < 2 {
		return cuts
	}
	sorted := slices.Clone(cuts)
	slices.SortFunc(sorted, func(a, b ast.Span) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return sorted
}

// CollapseBlankLines removes whitespace-only lines from s, keeping the
// indentation of the line that follows them.
func CollapseBlankLines(s string) string {
	if strings.Count(s, "\n") < 2 {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		first, last := i == 0, i == len(lines)-1
		if !first && !last && strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	// Trailing whitespace before a dropped line break is meaningless.
	if len(kept) > 1 && strings.TrimSpace(kept[0]) == "" {
		kept[0] = ""
	}
	return strings.Join(kept, "\n")
}
