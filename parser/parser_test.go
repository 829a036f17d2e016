package parser_test

import (
	"strings"
	"testing"

	douceur "github.com/aymerick/douceur/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/parser"
	"github.com/benbjohnson/cssvet/token"
)

// Ensure that valid stylesheets produce one node per top-level rule and no
// diagnostics. The rule count is cross-checked against the douceur parser.
func TestParse_Valid(t *testing.T) {
	var tests = []struct {
		s string
		n int
	}{
		{s: ``, n: 0},
		{s: `a{}`, n: 1},
		{s: `.a{width:10px} .b{} .c { x: y }`, n: 3},
		{s: `@import url("a.css"); a, b { color: red; } @media screen { .a { x: y } .b { z: w } }`, n: 3},
		{s: `@font-face { font-family: "x"; src: url(x.woff2) format("woff2"); } p { margin: 0 }`, n: 2},
		{s: `/* header */ .a { content: "}" } /* { */ .b { background: url(data:a;b) }`, n: 2},
		{s: `@keyframes spin { from { transform: rotate(0) } to { transform: rotate(360deg) } }`, n: 1},
	}

	for i, tt := range tests {
		ss := parser.Parse(tt.s)
		require.Empty(t, ss.Diagnostics, "%d. <%q>\n%s", i, tt.s, ast.Dump(ss))
		assert.False(t, ss.Unbalanced(), "%d. <%q>", i, tt.s)
		assert.Equal(t, tt.n, ss.Rules(), "%d. <%q>\n%s", i, tt.s, ast.Dump(ss))

		oracle, err := douceur.Parse(tt.s)
		require.NoError(t, err, "%d. <%q>", i, tt.s)
		assert.Equal(t, len(oracle.Rules), ss.Rules(), "%d. <%q> douceur rule count", i, tt.s)
	}
}

// Ensure that rules, declarations and at-rules are modeled.
func TestParse_Structure(t *testing.T) {
	ss := parser.Parse("/* h */\na, b > c { color: red !important; margin:0 }\n@media (min-width: 1px) { .x { y: z } }\n@import 'q.css';")
	require.Len(t, ss.Nodes, 4, ast.Dump(ss))

	c := ss.Nodes[0].(*ast.Comment)
	assert.Equal(t, `/* h */`, c.Text)

	r := ss.Nodes[1].(*ast.Rule)
	assert.Equal(t, []string{`a`, `b > c`}, r.Selectors)
	decls := r.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, &ast.Declaration{
		Property: `color`, Value: `red`, Important: true,
		Pos: token.Span{Start: 19, End: 40}, ValuePos: token.Span{Start: 26, End: 29},
	}, decls[0])
	assert.Equal(t, `margin`, decls[1].Property)
	assert.Equal(t, `0`, decls[1].Value)

	m := ss.Nodes[2].(*ast.AtRule)
	assert.Equal(t, `media`, m.Name)
	assert.Equal(t, `(min-width: 1px)`, m.Prelude)
	require.NotNil(t, m.Block)
	require.Len(t, m.Block.Nodes, 1)
	assert.Equal(t, []string{`.x`}, m.Block.Nodes[0].(*ast.Rule).Selectors)

	imp := ss.Nodes[3].(*ast.AtRule)
	assert.Equal(t, `import`, imp.Name)
	assert.Equal(t, `'q.css'`, imp.Prelude)
	assert.Nil(t, imp.Block)
}

// Ensure that an unmatched close brace is reported at its position and the
// rules around it are kept.
func TestParse_UnmatchedClose(t *testing.T) {
	rules := []string{`.a { x: y }`, `.b { x: y }`, `@media print { .c { x: y } }`, `.d { x: y }`}
	for pos := 0; pos <= len(rules); pos++ {
		var buf strings.Builder
		offset := -1
		for i, r := range rules {
			if i == pos {
				offset = buf.Len()
				buf.WriteString("}\n")
			}
			buf.WriteString(r + "\n")
		}
		if offset < 0 {
			offset = buf.Len()
			buf.WriteString("}")
		}

		ss := parser.Parse(buf.String())
		require.Len(t, ss.Diagnostics, 1, "pos=%d\n%s", pos, ast.Dump(ss))
		d := ss.Diagnostics[0]
		assert.Equal(t, ast.UnmatchedClose, d.Kind)
		assert.Equal(t, token.Span{Start: offset, End: offset + 1}, d.Pos)
		assert.True(t, ss.Unbalanced())
		assert.Equal(t, len(rules), ss.Rules(), "pos=%d", pos)
	}
}

// Ensure that blocks left open at the end of input are kept and flagged.
func TestParse_Unclosed(t *testing.T) {
	ss := parser.Parse(`.a { x: y } @media screen { .b { z: w }`)
	require.Len(t, ss.Diagnostics, 1)
	assert.Equal(t, ast.Unclosed, ss.Diagnostics[0].Kind)
	assert.Equal(t, token.Span{Start: 26, End: 27}, ss.Diagnostics[0].Pos)

	m := ss.Nodes[1].(*ast.AtRule)
	assert.True(t, m.Block.Unclosed)
	assert.False(t, m.Block.Nodes[0].(*ast.Rule).Block.Unclosed)
}

// Ensure that braces inside comments do not affect nesting.
func TestParse_BracesInComments(t *testing.T) {
	ss := parser.Parse("/* } { } */ .a { /* { */ color: red; /* } */ } /* }} */")
	assert.Empty(t, ss.Diagnostics)
	assert.Equal(t, 1, ss.Rules())
	r := ss.Nodes[1].(*ast.Rule)
	assert.Len(t, r.Declarations(), 1)
	assert.Len(t, r.Block.Nodes, 3)
}

// Ensure that malformed fragments are recorded and counted, never silently dropped.
func TestParse_Diagnostics(t *testing.T) {
	var tests = []struct {
		s     string
		kinds []ast.DiagnosticKind
	}{
		{s: `color: red;`, kinds: []ast.DiagnosticKind{ast.StrayDeclaration}},
		{s: `{ color: red }`, kinds: []ast.DiagnosticKind{ast.MissingSelector}},
		{s: `a { : red }`, kinds: []ast.DiagnosticKind{ast.EmptyProperty}},
		{s: `a { color }`, kinds: []ast.DiagnosticKind{ast.InvalidDeclaration}},
		{s: `a { color: ; }`, kinds: []ast.DiagnosticKind{ast.InvalidDeclaration}},
		{s: `a { content: "x }`, kinds: []ast.DiagnosticKind{ast.UnterminatedString, ast.Unclosed}},
		{s: `a { x: y } /* open`, kinds: []ast.DiagnosticKind{ast.UnterminatedComment}},
		{s: `a { b: url(x }`, kinds: []ast.DiagnosticKind{ast.UnterminatedURL, ast.Unclosed}},
		{s: `a,,b{}`, kinds: []ast.DiagnosticKind{ast.InvalidSelector}},
		{s: `,a{}`, kinds: []ast.DiagnosticKind{ast.InvalidSelector}},
		{s: `a, b, { x: y }`, kinds: []ast.DiagnosticKind{ast.InvalidSelector}},
		{s: `, ,{}`, kinds: []ast.DiagnosticKind{ast.MissingSelector}},
	}

	for i, tt := range tests {
		ss := parser.Parse(tt.s)
		var kinds []ast.DiagnosticKind
		for _, d := range ss.Diagnostics {
			kinds = append(kinds, d.Kind)
		}
		assert.Equal(t, tt.kinds, kinds, "%d. <%q>", i, tt.s)
	}
}

// Ensure that a selector list with an empty entry is kept as written.
func TestParse_InvalidSelector(t *testing.T) {
	ss := parser.Parse(`a, ,b { color: red }`)
	require.Len(t, ss.Diagnostics, 1)
	assert.Equal(t, ast.InvalidSelector, ss.Diagnostics[0].Kind)
	assert.Equal(t, token.Span{Start: 0, End: 5}, ss.Diagnostics[0].Pos)

	r := ss.Nodes[0].(*ast.Rule)
	assert.Equal(t, []string{`a, ,b`}, r.Selectors)
	assert.Len(t, r.Declarations(), 1)
}

// Ensure that invalid declarations keep their text.
func TestParse_InvalidDeclaration(t *testing.T) {
	ss := parser.Parse(`a { color; margin: }`)
	decls := ss.Nodes[0].(*ast.Rule).Declarations()
	require.Len(t, decls, 2)
	assert.True(t, decls[0].Invalid)
	assert.Equal(t, `color`, decls[0].Raw)
	assert.True(t, decls[1].Invalid)
	assert.Equal(t, `margin:`, decls[1].Raw)
}

// Ensure that nested rules are modeled inside their parent's block.
func TestParse_Nested(t *testing.T) {
	ss := parser.Parse(`.a { color: red; .b { color: blue; } &:hover { x: y } }`)
	require.Empty(t, ss.Diagnostics)
	r := ss.Nodes[0].(*ast.Rule)
	require.Len(t, r.Block.Nodes, 3)
	assert.Equal(t, []string{`.b`}, r.Block.Nodes[1].(*ast.Rule).Selectors)
	assert.Equal(t, []string{`&:hover`}, r.Block.Nodes[2].(*ast.Rule).Selectors)
}
