package deadcode

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/jsclean/pkg/ast"
	"github.com/panbanda/jsclean/pkg/ast/treesitter"
	"github.com/panbanda/jsclean/pkg/parser"
	"github.com/panbanda/jsclean/pkg/printer"
)

var spaces = regexp.MustCompile(`[ \t]+`)

func parse(t *testing.T, src string, lang parser.Language) *ast.Tree {
	t.Helper()
	p := parser.New()
	defer p.Close()

	res, err := p.Parse(context.Background(), []byte(src), lang, "test.js")
	require.NoError(t, err)
	tree, err := treesitter.Build(res)
	require.NoError(t, err)
	return tree
}

func clean(t *testing.T, src string, opts Options) (string, *Stats) {
	t.Helper()
	tree := parse(t, src, parser.LangTSX)
	stats, err := Eliminate(context.Background(), tree, opts)
	require.NoError(t, err)
	return spaces.ReplaceAllString(printer.Render(tree), " "), stats
}

func TestScopeReducer(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "multi-declarator keeps used sibling",
			source: "let a = 1, b = 2;\nuse(b);\n",
			want:   "let b = 2;\nuse(b);\n",
		},
		{
			name:   "unreferenced function removed",
			source: "function helper() { return 1; }\n",
			want:   "",
		},
		{
			name:   "called function kept",
			source: "function helper() { return 1; }\nhelper();\n",
			want:   "function helper() { return 1; }\nhelper();\n",
		},
		{
			name:   "unused import specifier removed",
			source: "import { used, unused } from 'm';\nused();\n",
			want:   "import { used } from 'm';\nused();\n",
		},
		{
			name:   "unused default import removed",
			source: "import def, { used } from 'm';\nused();\n",
			want:   "import { used } from 'm';\nused();\n",
		},
		{
			name:   "emptied import keeps side effect",
			source: "import { gone } from 'm';\n",
			want:   "import 'm';\n",
		},
		{
			name:   "namespace import kept",
			source: "import * as ns from 'm';\n",
			want:   "import * as ns from 'm';\n",
		},
		{
			name:   "parameters kept",
			source: "function f(unused) { return 1; }\nf();\n",
			want:   "function f(unused) { return 1; }\nf();\n",
		},
		{
			name:   "classes kept",
			source: "class Foo {}\n",
			want:   "class Foo {}\n",
		},
		{
			name:   "catch parameter kept",
			source: "try { run(); } catch (err) {}\n",
			want:   "try { run(); } catch (err) {}\n",
		},
		{
			name:   "loop head kept",
			source: "for (const k of list) {}\n",
			want:   "for (const k of list) {}\n",
		},
		{
			name:   "exports kept",
			source: "export const a = 1;\nexport function f() {}\n",
			want:   "export const a = 1;\nexport function f() {}\n",
		},
		{
			name:   "export clause references",
			source: "const a = 1;\nexport { a };\n",
			want:   "const a = 1;\nexport { a };\n",
		},
		{
			name:   "parameter shadows outer binding",
			source: "var x = 1;\nfunction f(x) { return x; }\nf(2);\n",
			want:   "function f(x) { return x; }\nf(2);\n",
		},
		{
			name:   "block binding shadows outer binding",
			source: "let v = 1;\n{ let v = 2; use(v); }\n",
			want:   "{ let v = 2; use(v); }\n",
		},
		{
			name:   "nested scope reduced",
			source: "function f() { var inner = 1; return 2; }\nf();\n",
			want:   "function f() { return 2; }\nf();\n",
		},
		{
			name:   "var hoists out of blocks",
			source: "function f() { if (c) { var h = 1; } return h; }\nf();\n",
			want:   "function f() { if (c) { var h = 1; } return h; }\nf();\n",
		},
		{
			name:   "writes count as references",
			source: "var counter;\ncounter = 5;\n",
			want:   "var counter;\ncounter = 5;\n",
		},
		{
			name:   "partly used destructuring kept",
			source: "const { a, b } = obj;\nuse(a);\n",
			want:   "const { a, b } = obj;\nuse(a);\n",
		},
		{
			name:   "unused destructuring removed",
			source: "const { a, b } = obj;\n",
			want:   "",
		},
		{
			name:   "dead chain settles when program scope is revisited",
			source: "function a() { b(); }\nfunction b() {}\nrun();\n",
			want:   "run();\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := clean(t, tt.source, DefaultOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDanglingAssignments(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "unread assignment removed",
			source: "x = 5;\nrun();\n",
			want:   "run();\n",
		},
		{
			name:   "later read cancels",
			source: "x = 5;\nconsole.log(x);\n",
			want:   "x = 5;\nconsole.log(x);\n",
		},
		{
			name:   "earlier read cancels",
			source: "console.log(x);\nx = 5;\n",
			want:   "console.log(x);\nx = 5;\n",
		},
		{
			name:   "read inside function cancels",
			source: "x = 5;\nfunction show() { return x; }\nshow();\n",
			want:   "x = 5;\nfunction show() { return x; }\nshow();\n",
		},
		{
			name:   "last write wins",
			source: "x = 5;\nx = 6;\n",
			want:   "x = 5;\n",
		},
		{
			name:   "compound assignment reads",
			source: "x = 5;\nx += 1;\n",
			want:   "x = 5;\nx += 1;\n",
		},
		{
			name:   "call result kept",
			source: "y = compute();\n",
			want:   "y = compute();\n",
		},
		{
			name:   "string literal kept",
			source: "y = 'five';\n",
			want:   "y = 'five';\n",
		},
		{
			name:   "bigint literal kept",
			source: "z = 1n;\n",
			want:   "z = 1n;\n",
		},
		{
			name:   "parenthesized number removed",
			source: "w = (7);\n",
			want:   "",
		},
		{
			name:   "declared name kept",
			source: "function f() { var d; d = 1; return d; }\nf();\n",
			want:   "function f() { var d; d = 1; return d; }\nf();\n",
		},
		{
			name:   "builtin global kept",
			source: "NaN = 1;\n",
			want:   "NaN = 1;\n",
		},
		{
			name:   "nested in expression kept",
			source: "run(q = 1);\n",
			want:   "run(q = 1);\n",
		},
		{
			name:   "if branch becomes empty block",
			source: "if (c) q = 1;\n",
			want:   "if (c) {}\n",
		},
		{
			name:   "for initializer kept",
			source: "for (i = 0;;) {}\n",
			want:   "for (i = 0;;) {}\n",
		},
		{
			name:   "for condition kept",
			source: "for (; i = 1;) { break; }\n",
			want:   "for (; i = 1;) { break; }\n",
		},
		{
			name:   "for initializer with other loop variable",
			source: "for (i = 0; j < 3; j++) {}\nuse(j);\n",
			want:   "for (i = 0; j < 3; j++) {}\nuse(j);\n",
		},
		{
			name:   "property name cancels",
			source: "x = 5;\nobj.x();\n",
			want:   "x = 5;\nobj.x();\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := clean(t, tt.source, DefaultOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdempotence(t *testing.T) {
	sources := []string{
		"let a = 1, b = 2;\nuse(b);\n",
		"import { used, unused } from 'm';\nused();\nx = 5;\n",
		"function helper() { return 1; }\nvar keep = helper();\nexport { keep };\n",
		"function f() { var inner = 1; return 2; }\nf();\ndebug = 0;\n",
	}

	for _, src := range sources {
		once, _ := clean(t, src, DefaultOptions())
		twice, stats := clean(t, once, DefaultOptions())
		assert.Equal(t, once, twice, "second run changed %q", src)
		assert.Zero(t, stats.Total(), "second run removed from %q", src)
	}
}

func TestFixedPoint(t *testing.T) {
	src := "function a() { b(); }\nfunction b() {}\n"

	single, stats := clean(t, src, DefaultOptions())
	assert.Equal(t, "function b() {}\n", single)
	assert.Equal(t, 1, stats.Passes)

	settled, stats := clean(t, src, Options{FixedPoint: true})
	assert.Equal(t, "", settled)
	assert.Equal(t, []string{"a", "b"}, stats.Names(RemovedFunction))
	assert.Equal(t, 3, stats.Passes)

	twoPasses, stats := clean(t, src, Options{Passes: 2})
	assert.Equal(t, "", twoPasses)
	assert.Equal(t, 2, stats.Passes)
}

func TestStats(t *testing.T) {
	src := "import { gone } from 'm';\nvar dead = 1;\nfunction unused() {}\nflag = 1;\n"
	_, stats := clean(t, src, DefaultOptions())

	assert.Equal(t, 4, stats.Total())
	assert.Equal(t, 1, stats.Count(RemovedImport))
	assert.Equal(t, 1, stats.Count(RemovedVariable))
	assert.Equal(t, 1, stats.Count(RemovedFunction))
	assert.Equal(t, 1, stats.Count(RemovedAssignment))
	assert.Equal(t, []string{"flag"}, stats.Names(RemovedAssignment))
	assert.Positive(t, stats.Crawls)

	for _, r := range stats.Removals {
		assert.Equal(t, 1, r.Pass)
		assert.Positive(t, r.Line)
	}
	assert.Equal(t, Removal{Kind: RemovedAssignment, Name: "flag", Line: 4, Column: 1, Pass: 1},
		stats.Removals[len(stats.Removals)-1])
}

func TestTypeScriptReferences(t *testing.T) {
	src := "import { Foo, Bar } from './types';\nlet v: Foo = make();\nuse(v);\n"
	tree := parse(t, src, parser.LangTypeScript)

	stats, err := Eliminate(context.Background(), tree, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar"}, stats.Names(RemovedImport))
}

func TestJSXReferences(t *testing.T) {
	src := "import Button from './button';\nimport Link from './link';\nrender(<Button />);\n"
	got, _ := clean(t, src, DefaultOptions())
	assert.Equal(t, "import Button from './button';\nimport './link';\nrender(<Button />);\n", got)
}

func TestCanceledContext(t *testing.T) {
	tree := parse(t, "var a = 1;\n", parser.LangTSX)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Eliminate(ctx, tree, DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentEnginesIndependent(t *testing.T) {
	sources := []string{
		"x = 5;\nrun();\n",
		"x = 5;\nconsole.log(x);\n",
		"var unused = 1;\nx = 2;\n",
		"function f() {}\nx = 3;\nuse(x);\n",
	}
	want := make([]string, len(sources))
	for i, src := range sources {
		want[i], _ = clean(t, src, DefaultOptions())
	}

	var wg sync.WaitGroup
	got := make([]string, len(sources)*8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := sources[i%len(sources)]
			p := parser.New()
			defer p.Close()
			res, err := p.Parse(context.Background(), []byte(src), parser.LangTSX, "c.js")
			if err != nil {
				return
			}
			tree, err := treesitter.Build(res)
			if err != nil {
				return
			}
			if _, err := Eliminate(context.Background(), tree, DefaultOptions()); err != nil {
				return
			}
			got[i] = spaces.ReplaceAllString(printer.Render(tree), " ")
		}(i)
	}
	wg.Wait()

	for i := range got {
		assert.Equal(t, want[i%len(sources)], got[i])
	}
}
