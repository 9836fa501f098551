// Package treesitter converts tree-sitter parse results into mutable
// ast trees.
package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/jsclean/pkg/ast"
	"github.com/panbanda/jsclean/pkg/parser"
)

// Build converts a parse result into an ast.Tree. Sources with syntax
// errors are rejected with a *parser.SyntaxError.
func Build(result *parser.ParseResult) (*ast.Tree, error) {
	root := result.Tree.RootNode()
	if bad := parser.FirstError(root); bad != nil {
		return nil, parser.NewSyntaxError(result.Path, bad)
	}

	b := &builder{source: result.Source}
	node := b.convert(root, "")
	return ast.NewTree(node, result.Source, result.Path), nil
}

type builder struct {
	source []byte
	nextID uint32
}

func (b *builder) convert(sn *sitter.Node, field string) *ast.Node {
	pt := sn.StartPoint()
	n := &ast.Node{
		ID:    b.nextID,
		Kind:  ast.Kind(sn.Type()),
		Field: field,
		Named: sn.IsNamed(),
		Start: sn.StartByte(),
		End:   sn.EndByte(),
		Pos: ast.Position{
			Line:   int(pt.Row) + 1,
			Column: int(pt.Column) + 1,
		},
	}
	b.nextID++

	count := int(sn.ChildCount())
	if count == 0 {
		n.Text = parser.GetNodeText(sn, b.source)
		return n
	}

	n.Children = make([]*ast.Node, 0, count)
	for i := range count {
		child := sn.Child(i)
		if child == nil {
			continue
		}
		c := b.convert(child, sn.FieldNameForChild(i))
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}
