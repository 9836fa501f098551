// Package deadcode removes unreferenced bindings and dangling numeric
// assignments from an ast tree.
//
// One traversal visits every live node in pre-order. On entering a node the
// scope it belongs to is crawled if the tree changed since that scope was
// last crawled, and every unreferenced variable, function and import
// binding of that scope is removed. The same traversal collects standalone
// `name = <number>;` statements assigning undeclared names; those whose
// name is never read anywhere are removed once the traversal completes.
//
// A single traversal is best effort: removing a binding can leave other
// bindings or assignments dead that were already visited. Options.Passes
// and Options.FixedPoint repeat the traversal.
package deadcode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panbanda/jsclean/pkg/ast"
	"github.com/panbanda/jsclean/pkg/scope"
)

// Eliminate runs the engine over tree, mutating it in place.
func Eliminate(ctx context.Context, tree *ast.Tree, opts Options) (*Stats, error) {
	e := &engine{
		tree:     tree,
		analyzer: scope.New(tree),
		opts:     opts,
		logger:   opts.Logger,
		stats:    &Stats{},
		reduced:  make(map[*scope.Scope]uint64),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if err := e.run(ctx); err != nil {
		return nil, err
	}
	return e.stats, nil
}

type engine struct {
	tree     *ast.Tree
	analyzer *scope.Analyzer
	opts     Options
	logger   *slog.Logger
	stats    *Stats
	pass     int
	// reduced holds the generation at which each scope was last reduced.
	reduced map[*scope.Scope]uint64
}

func (e *engine) run(ctx context.Context) error {
	limit := e.opts.passes()
	if e.opts.FixedPoint {
		limit = e.opts.maxPasses()
	}

	for e.pass = 1; e.pass <= limit; e.pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		before := len(e.stats.Removals)
		if err := e.traverse(); err != nil {
			return fmt.Errorf("pass %d: %w", e.pass, err)
		}
		e.stats.Passes = e.pass
		removed := len(e.stats.Removals) - before

		e.logger.Debug("elimination pass complete",
			slog.String("path", e.tree.Path),
			slog.Int("pass", e.pass),
			slog.Int("removed", removed),
		)
		if e.opts.FixedPoint && removed == 0 {
			break
		}
	}
	e.stats.Crawls = e.analyzer.Crawls()
	return nil
}

// traverse runs one walk of the scope reducer and the dangling-assignment
// collector, then removes the surviving candidates.
func (e *engine) traverse() error {
	collected := newDangling()
	var walkErr error

	e.tree.Walk(func(n *ast.Node) bool {
		if walkErr != nil {
			return false
		}
		s := e.analyzer.ScopeOf(n)
		if err := e.reduce(s); err != nil {
			walkErr = err
			return false
		}
		if e.tree.IsRemoved(n) {
			return false
		}
		collected.observe(n, s)
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	for _, n := range collected.survivors() {
		if e.tree.IsRemoved(n) {
			continue
		}
		left := unwrapParens(n.ChildByField("left"))
		if _, err := e.tree.Remove(n); err != nil {
			return err
		}
		e.record(RemovedAssignment, left)
	}
	return nil
}

func (e *engine) record(kind RemovalKind, id *ast.Node) {
	r := Removal{
		Kind:   kind,
		Name:   id.Text,
		Line:   id.Pos.Line,
		Column: id.Pos.Column,
		Pass:   e.pass,
	}
	e.stats.Removals = append(e.stats.Removals, r)
	e.logger.Debug("removed",
		slog.String("kind", string(kind)),
		slog.String("name", r.Name),
		slog.Int("line", r.Line),
	)
}
