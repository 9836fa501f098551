// Package ast provides the mutable syntax tree that the elimination engine
// rewrites in place.
//
// Trees are built from a tree-sitter parse by the treesitter subpackage.
// Every visible tree-sitter node becomes a Node that keeps its kind, its
// field name in the parent and its byte span in the original source.
// Removal is pure tree surgery: a removed node is detached from its parent
// and the parent remembers the source span it used to occupy, so the
// printer can render the remaining program by splicing the original text.
//
// Usage:
//
//	tree, err := treesitter.Build(result)
//	if err != nil {
//	    return err
//	}
//
//	tree.Walk(func(n *ast.Node) bool {
//	    if n.Kind == ast.KindFunctionDecl {
//	        return false
//	    }
//	    return true
//	})
package ast
