package format

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/jsclean/pkg/parser"
)

func format(t *testing.T, src string, opts Options) string {
	t.Helper()
	out, err := Format(context.Background(), []byte(src), parser.LangTSX, opts)
	require.NoError(t, err)
	return out
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "one statement per line",
			source: "let a=1;let b=2",
			want:   "let a = 1;\nlet b = 2;\n",
		},
		{
			name:   "function body expanded",
			source: "function f(a,b){return a+b}",
			want:   "function f(a, b) {\n  return a + b;\n}\n",
		},
		{
			name:   "if else blocks",
			source: "if(a){b()}else{c()}",
			want:   "if (a) {\n  b();\n} else {\n  c();\n}\n",
		},
		{
			name:   "else after statement",
			source: "if (a) b(); else c();",
			want:   "if (a) b();\nelse c();\n",
		},
		{
			name:   "empty block",
			source: "while (more()) {\n\n}",
			want:   "while (more()) {}\n",
		},
		{
			name:   "strings use single quotes",
			source: `var s = "x";`,
			want:   "var s = 'x';\n",
		},
		{
			name:   "inline object padded",
			source: "const o = {a:1, b}",
			want:   "const o = { a: 1, b };\n",
		},
		{
			name:   "object broken in source stays expanded",
			source: "const o = {\na: 1,\nb: 2\n};",
			want:   "const o = {\n  a: 1,\n  b: 2\n};\n",
		},
		{
			name:   "named imports",
			source: `import {a,b} from "m"`,
			want:   "import { a, b } from 'm';\n",
		},
		{
			name:   "side effect import",
			source: `import "m"`,
			want:   "import 'm';\n",
		},
		{
			name:   "for loop head",
			source: "for(let i=0;i<n;i++){}",
			want:   "for (let i = 0; i < n; i++) {}\n",
		},
		{
			name:   "for of array pattern",
			source: "for (const [k, v] of Object.entries(o)) use(k, v);",
			want:   "for (const [k, v] of Object.entries(o)) use(k, v);\n",
		},
		{
			name:   "do while",
			source: "do{x()}while(y)",
			want:   "do {\n  x();\n} while (y);\n",
		},
		{
			name:   "switch cases indented",
			source: "switch(x){case 1:a();break;default:b()}",
			want:   "switch (x) {\n  case 1:\n    a();\n    break;\n  default:\n    b();\n}\n",
		},
		{
			name:   "class members",
			source: "class A{x=1;m(){}}",
			want:   "class A {\n  x = 1;\n  m() {}\n}\n",
		},
		{
			name:   "anonymous function keyword spacing",
			source: "x = function(){}",
			want:   "x = function () {};\n",
		},
		{
			name:   "async arrow with body",
			source: "const g = async () => { await x; };",
			want:   "const g = async () => {\n  await x;\n};\n",
		},
		{
			name:   "template literal verbatim",
			source: "const t = `a  ${b}`;",
			want:   "const t = `a  ${b}`;\n",
		},
		{
			name:   "inline trailing comma dropped",
			source: "f(a, b,);",
			want:   "f(a, b);\n",
		},
		{
			name:   "array holes kept",
			source: "x = [a,,];",
			want:   "x = [a,,];\n",
		},
		{
			name:   "unary and update operators",
			source: "a = -b + ++c; d = !e;",
			want:   "a = -b + ++c;\nd = !e;\n",
		},
		{
			name:   "member calls",
			source: "obj . run ( 1 ) ;",
			want:   "obj.run(1);\n",
		},
		{
			name:   "empty program",
			source: "\n\n",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(t, tt.source, DefaultOptions()))
		})
	}
}

func TestFormatTrailingComma(t *testing.T) {
	opts := DefaultOptions()
	opts.TrailingComma = true
	got := format(t, "const o = {\na: 1,\nb: 2\n};", opts)
	assert.Equal(t, "const o = {\n  a: 1,\n  b: 2,\n};\n", got)

	// Inline lists never get one.
	assert.Equal(t, "f(a, b);\n", format(t, "f(a, b)", opts))
}

func TestFormatWithoutSemicolons(t *testing.T) {
	opts := DefaultOptions()
	opts.Semi = false

	assert.Equal(t, "let a = 1\nrun()\n", format(t, "let a = 1; run();", opts))
	assert.Equal(t, "a()\n;(b)()\n", format(t, "a();\n(b)();", opts))
	assert.Equal(t, "for (let i = 0; i < n; i++) {}\n", format(t, "for(let i=0;i<n;i++){}", opts))
}

func TestFormatDoubleQuotes(t *testing.T) {
	opts := DefaultOptions()
	opts.SingleQuote = false
	assert.Equal(t, "var s = \"x\";\n", format(t, "var s = 'x';", opts))
}

func TestFormatTypeScript(t *testing.T) {
	out, err := Format(context.Background(),
		[]byte("interface A { a: string, b?: number }\nlet v: A = make();"),
		parser.LangTypeScript, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "interface A {\n  a: string;\n  b?: number;\n}\nlet v: A = make();\n", out)
}

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		"function f(a,b){if(a){return b}else{return a}}",
		"const o = {\na: { b: 1 },\nc() { return 2; }\n};",
		"switch(x){case 1:{a();break}default:b()}",
		"try{a()}catch(e){}finally{b()}",
	}
	for _, src := range sources {
		once := format(t, src, DefaultOptions())
		twice := format(t, once, DefaultOptions())
		assert.Equal(t, once, twice, "formatting %q twice changed it", src)
	}
}

func TestFormatSyntaxError(t *testing.T) {
	_, err := Format(context.Background(), []byte("let = ;"), parser.LangJavaScript, DefaultOptions())
	require.Error(t, err)

	var syntaxErr *parser.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}
