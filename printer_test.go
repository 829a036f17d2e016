package cssvet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbjohnson/cssvet"
	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/parser"
)

// Ensure than the printer prints stylesheets correctly.
func TestPrinter_Print(t *testing.T) {
	pretty := cssvet.DefaultStyle()
	compact := cssvet.Style{Compact: true}

	var tests = []struct {
		in    string
		style cssvet.Style
		s     string
	}{
		// 0. Full stylesheet.
		{in: `/* h */ a , b { color:red ; margin : 0 !important } @media print { .c { x : y } } @import "x.css";`, style: pretty,
			s: "/* h */\na, b {\n  color: red;\n  margin: 0 !important;\n}\n@media print {\n  .c {\n    x: y;\n  }\n}\n@import \"x.css\";\n"},

		// 1. Compact drops optional whitespace and the last semicolon.
		{in: `/* h */ a , b { color:red ; margin : 0 !important } @media print { .c { x : y } } @import "x.css";`, style: compact,
			s: `/* h */a,b{color:red;margin:0!important}@media print{.c{x:y}}@import "x.css";`},

		// 2. Brace on its own line.
		{in: `a { x: y }`, style: cssvet.Style{Indent: "\t", BraceOnNewLine: true}, s: "a\n{\n\tx: y;\n}\n"},

		// 3. Header is written first.
		{in: `.a{x:y}`, style: cssvet.Style{Indent: "  ", Header: "/* new */"}, s: "/* new */\n.a {\n  x: y;\n}\n"},

		// 4. Header is not repeated.
		{in: `/* new */ .a{x:y}`, style: cssvet.Style{Compact: true, Header: "/* new */"}, s: `/* new */.a{x:y}`},

		// 5. Unclosed blocks have no closing brace.
		{in: `.a { x: y`, style: pretty, s: ".a {\n  x: y;\n"},
		{in: `.a { x: y`, style: compact, s: `.a{x:y`},

		// 7. Invalid declarations are written as they were.
		{in: `.a { color; x: y }`, style: pretty, s: ".a {\n  color;\n  x: y;\n}\n"},
		{in: `.a { x: y; color }`, style: compact, s: `.a{x:y;color}`},

		// 9. Whitespace is collapsed outside strings.
		{in: ".a   >\n  .b { font-family: \"A   B\",   serif;  margin:1px\n  2px }", style: pretty,
			s: ".a > .b {\n  font-family: \"A   B\", serif;\n  margin: 1px 2px;\n}\n"},

		// 10. Comments are written verbatim.
		{in: ".a { /* keep\n   this */ x: y }", style: pretty, s: ".a {\n  /* keep\n   this */\n  x: y;\n}\n"},

		// 11. Nested rules and comments in compact mode.
		{in: `.a { x: y; .b { z: w } /* c */ }`, style: compact, s: `.a{x:y;.b{z:w}/* c */}`},

		// 12. Empty stylesheet.
		{in: ``, style: pretty, s: ``},

		// 13. Compact drops whitespace around combinators and commas.
		{in: `.a > .b + .c, .d ~ .e { margin: 0 , 1px; font: 1px "a , b" , serif }`, style: compact,
			s: `.a>.b+.c,.d~.e{margin:0,1px;font:1px "a , b",serif}`},
		{in: `.a > .b + .c, .d ~ .e { margin: 0 , 1px }`, style: pretty,
			s: ".a > .b + .c, .d ~ .e {\n  margin: 0 , 1px;\n}\n"},

		// 15. Parentheses, brackets, calc() and escapes keep their spaces.
		{in: `li:nth-child(2n + 1) , a[title ~= "x"] { width: calc(1px + 2px) }`, style: compact,
			s: `li:nth-child(2n + 1),a[title ~= "x"]{width:calc(1px + 2px)}`},
		{in: `.a\+ .b { x: y }`, style: compact, s: `.a\+ .b{x:y}`},

		// 17. Custom properties keep their value as written.
		{in: `:root { --x: a , b }`, style: compact, s: `:root{--x:a , b}`},

		// 18. Conditions drop whitespace around colons and commas.
		{in: `@media screen and (min-width : 1px) , print { .a { x: y } }`, style: compact,
			s: `@media screen and (min-width:1px),print{.a{x:y}}`},
		{in: `@page :first { margin: 0 }`, style: compact, s: `@page :first{margin:0}`},

		// 20. Invalid selector lists are written unchanged.
		{in: `a,,b { color: red }`, style: pretty, s: "a,,b {\n  color: red;\n}\n"},
		{in: `, .a { color: red }`, style: compact, s: `,.a{color:red}`},

		// 22. No terminator is appended inside runaway constructs.
		{in: `@import '/*url(`, style: pretty, s: "@import '/*url(\n"},
		{in: `.a { content: "x`, style: pretty, s: ".a {\n  content: \"x\n"},
		{in: `.a { x: y\`, style: pretty, s: ".a {\n  x: y\\\n"},
		{in: `.a { x: url(a b; c: d }`, style: pretty, s: ".a {\n  x: url(a b; c: d }\n"},
	}

	for i, tt := range tests {
		p := cssvet.Printer{Style: tt.style}
		var buf bytes.Buffer
		require.NoError(t, p.Print(&buf, parser.Parse(tt.in)), "%d. <%q>", i, tt.in)
		assert.Equal(t, tt.s, buf.String(), "%d. <%q>", i, tt.in)
	}
}

// Ensure that printed text parses back into the same model.
func TestPrinter_RoundTrip(t *testing.T) {
	inputs := []string{
		`/* h */ a, b > c { color: red; margin: 0 !important } @media (min-width: 10px) { .c { x: y } }`,
		`@import url("a;b.css"); .a { content: "}" } .b { background: url(data:x;y) }`,
		`@font-face { font-family: "x"; src: url(x.woff2) format("woff2") } .a { .b { x: y } }`,
		`.a { color; margin: }`,
		`a,,b { x: y } .c > .d, .e ~ .f { margin: 0 , 1px }`,
		`@import '/*url(`,
		`.a { content: "x`,
		`.a { x: y\`,
	}
	styles := []cssvet.Style{cssvet.DefaultStyle(), {Compact: true}, {BraceOnNewLine: true}}

	for i, s := range inputs {
		ss := parser.Parse(s)
		for j, style := range styles {
			out, err := cssvet.String(ss, style)
			require.NoError(t, err)
			other := parser.Parse(out)
			assert.Len(t, other.Diagnostics, len(ss.Diagnostics), "%d/%d. <%q>", i, j, out)
			if !style.Compact {
				assert.True(t, ast.Equal(ss, other), "%d/%d. <%q>\n%s\n%s\n%s", i, j, out, ast.Dump(ss), ast.Dump(other))
			}

			// Printing the parsed output gives the output again.
			reprinted, err := cssvet.String(other, style)
			require.NoError(t, err)
			assert.Equal(t, out, reprinted, "%d/%d", i, j)

			// Output is deterministic.
			again, _ := cssvet.String(ss, style)
			assert.Equal(t, out, again)
		}
	}
}

// Ensure that the printer refuses to print broken models.
func TestPrinter_Invariant(t *testing.T) {
	var tests = []ast.Node{
		&ast.Rule{Block: &ast.Block{}},
		&ast.Rule{Selectors: []string{" "}, Block: &ast.Block{}},
		&ast.Rule{Selectors: []string{"a"}},
		&ast.Rule{Selectors: []string{"a"}, Block: &ast.Block{Nodes: []ast.Node{&ast.Declaration{Value: "x"}}}},
		&ast.Rule{Selectors: []string{"a"}, Block: &ast.Block{Nodes: []ast.Node{&ast.Declaration{Invalid: true}}}},
		&ast.AtRule{},
		(*ast.Rule)(nil),
		(*ast.Declaration)(nil),
		nil,
	}

	for i, n := range tests {
		ss := &ast.StyleSheet{Nodes: []ast.Node{&ast.Comment{Text: "/* x */"}, n}}
		var buf bytes.Buffer
		err := (&cssvet.Printer{Style: cssvet.DefaultStyle()}).Print(&buf, ss)

		var e *cssvet.InvariantError
		require.ErrorAs(t, err, &e, "%d", i)
		assert.Equal(t, 0, buf.Len(), "%d. nothing is written", i)
	}
}

// Ensure that a nil stylesheet prints nothing.
func TestPrinter_Nil(t *testing.T) {
	s, err := cssvet.String(nil, cssvet.DefaultStyle())
	assert.NoError(t, err)
	assert.Equal(t, "", s)
}
