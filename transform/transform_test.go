package transform_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/parser"
	"github.com/benbjohnson/cssvet/transform"
)

// text returns the single-line form of every top-level node.
func text(ss *ast.StyleSheet) string {
	return strings.TrimSpace(strings.ReplaceAll(ss.String(), "\n", " "))
}

// Ensure that comments are stripped except the ones a predicate keeps.
func TestCommentStrip(t *testing.T) {
	var tests = []struct {
		in       string
		preserve transform.Predicate
		out      string
	}{
		{in: `/* a */ .a { x: y }`, preserve: nil, out: `.a {x: y;}`},
		{in: `/* a */ .a { x: y }`, preserve: transform.LeadingHeader(), out: `/* a */ .a {x: y;}`},
		{in: `.a { x: y } /* a */`, preserve: transform.LeadingHeader(), out: `.a {x: y;}`},
		{in: `/* a */ /* b */ .a { x: y }`, preserve: transform.LeadingHeader(), out: `/* a */ .a {x: y;}`},
		{in: `.a { /* in */ x: y; /* in */ }`, preserve: nil, out: `.a {x: y;}`},
		{in: `.a, .b /* x */ { x: y /* x */ z }`, preserve: nil, out: `.a, .b {x: y z;}`},
		{in: `.a { x: 1px/**/solid }`, preserve: nil, out: `.a {x: 1px solid;}`},
		{in: `.a { content: "/* keep */" }`, preserve: nil, out: `.a {content: "/* keep */";}`},
		{in: `@media /* x */ print { .a { x: y } }`, preserve: nil, out: `@media print {.a {x: y;}}`},
		{in: `/*! legal */ /* long comment text */ .a { x: y }`, preserve: transform.Matching(regexp.MustCompile(`^/\*!|@license`)), out: `/*! legal */ .a {x: y;}`},
		{in: `/* ok */ /* too long for it */ .a { x: y }`, preserve: transform.MaxLength(8), out: `/* ok */ .a {x: y;}`},
		{in: `/* h */ /* @license MIT */ /* drop */ .a { x: y }`, preserve: transform.Any(transform.LeadingHeader(), transform.Matching(regexp.MustCompile(`@license`)), nil), out: `/* h */ /* @license MIT */ .a {x: y;}`},
	}

	for i, tt := range tests {
		ss := parser.Parse(tt.in)
		other := (&transform.CommentStrip{Preserve: tt.preserve}).Apply(ss)
		assert.Equal(t, tt.out, text(other), "%d. <%q>\n%s", i, tt.in, ast.Dump(other))
	}
}

// Ensure that kept comments are marked as preserved.
func TestCommentStrip_Preserved(t *testing.T) {
	ss := parser.Parse(`/* header */ .a { x: y }`)
	other := (&transform.CommentStrip{Preserve: transform.LeadingHeader()}).Apply(ss)
	require.IsType(t, &ast.Comment{}, other.Nodes[0])
	assert.True(t, other.Nodes[0].(*ast.Comment).Preserved)

	// The input is not modified.
	assert.False(t, ss.Nodes[0].(*ast.Comment).Preserved)

	// Comments already marked are kept without a predicate.
	other = (&transform.CommentStrip{}).Apply(other)
	assert.Equal(t, `/* header */ .a {x: y;}`, text(other))
}

// Ensure that empty rules are removed bottom-up.
func TestEmptyRuleElision(t *testing.T) {
	var tests = []struct {
		in  string
		out string
	}{
		{in: `.a {} .b { x: y }`, out: `.b {x: y;}`},
		{in: `.a { /* only */ } .b { x: y }`, out: `.b {x: y;}`},
		{in: `.a { .b { } }`, out: ``},
		{in: `.a { .b { } x: y }`, out: `.a {x: y;}`},
		{in: `@media print { .a {} }`, out: ``},
		{in: `@media print { .a {} .b { x: y } }`, out: `@media print {.b {x: y;}}`},
		{in: `@font-face {} @import "x.css";`, out: `@font-face {} @import "x.css";`},
		{in: `.a { color; }`, out: `.a {color;}`},
		{in: `.a {`, out: `.a {`},
	}

	for i, tt := range tests {
		other := (&transform.EmptyRuleElision{}).Apply(parser.Parse(tt.in))
		assert.Equal(t, tt.out, text(other), "%d. <%q>", i, tt.in)
	}
}

// Ensure that unclosed blocks are closed and the repair is recorded.
func TestBalanceRepair(t *testing.T) {
	ss := parser.Parse(`} .a { x: y } @media print { .b { z: w }`)
	require.True(t, ss.Unbalanced())

	other := (&transform.BalanceRepair{}).Apply(ss)
	assert.Equal(t, `.a {x: y;} @media print {.b {z: w;}}`, text(other))

	var kinds []ast.DiagnosticKind
	for _, d := range other.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []ast.DiagnosticKind{ast.UnmatchedClose, ast.Repaired}, kinds)

	// The unmatched close brace is still reported.
	assert.True(t, other.Unbalanced())

	// The input keeps its defects.
	assert.Equal(t, ast.Unclosed, ss.Diagnostics[1].Kind)
	assert.True(t, ss.Nodes[1].(*ast.AtRule).Block.Unclosed)
}

// Ensure that exact duplicate declarations are removed.
func TestDedupeDeclarations(t *testing.T) {
	var tests = []struct {
		in  string
		out string
	}{
		{in: `.a { x: y; z: w; x: y }`, out: `.a {z: w; x: y;}`},
		{in: `.a { x: 1; x: 2 }`, out: `.a {x: 1; x: 2;}`},
		{in: `.a { x: y !important; x: y }`, out: `.a {x: y !important; x: y;}`},
		{in: `.a { x: y } .b { x: y }`, out: `.a {x: y;} .b {x: y;}`},
		{in: `@media print { .a { x: y; x: y } }`, out: `@media print {.a {x: y;}}`},
	}

	for i, tt := range tests {
		other := (&transform.DedupeDeclarations{}).Apply(parser.Parse(tt.in))
		assert.Equal(t, tt.out, text(other), "%d. <%q>", i, tt.in)
	}
}

// Ensure that values are shortened outside strings, urls and functions.
func TestShortenValues(t *testing.T) {
	var tests = []struct {
		in  string
		out string
	}{
		{in: `.a { color: #aabbcc }`, out: `.a {color: #abc;}`},
		{in: `.a { color: #AABBCC }`, out: `.a {color: #ABC;}`},
		{in: `.a { color: #aabbcd }`, out: `.a {color: #aabbcd;}`},
		{in: `.a { color: #aabbccdd }`, out: `.a {color: #abcd;}`},
		{in: `.a { margin: 0px 0em 10px 0.0rem }`, out: `.a {margin: 0 0 10px 0;}`},
		{in: `.a { width: 0% }`, out: `.a {width: 0;}`},
		{in: `.a { flex: 1 1 0% }`, out: `.a {flex: 1 1 0%;}`},
		{in: `.a { width: calc(100% - 0px) }`, out: `.a {width: calc(100% - 0px);}`},
		{in: `.a { transition: opacity 0s }`, out: `.a {transition: opacity 0s;}`},
		{in: `.a { content: "#aabbcc 0px" }`, out: `.a {content: "#aabbcc 0px";}`},
		{in: `.a { background: url(#aabbcc) }`, out: `.a {background: url(#aabbcc);}`},
		{in: `:root { --x: 0px }`, out: `:root {--x: 0px;}`},
	}

	for i, tt := range tests {
		other := (&transform.ShortenValues{}).Apply(parser.Parse(tt.in))
		assert.Equal(t, tt.out, text(other), "%d. <%q>", i, tt.in)
	}
}

// Ensure that running the default pipeline twice equals running it once.
func TestDefaultPasses_Idempotent(t *testing.T) {
	inputs := []string{
		`/* header */ .a { /* x */ } .b { x: y } @media print { .c {} }`,
		`.a { .b { /* c */ } } /* trailing */`,
		`/* h */ :root { --x: 1px } .a { width: var(--x) } .b {}`,
		`} .a { x: y } .b {`,
		``,
	}
	preserve := transform.Any(transform.LeadingHeader(), transform.MaxLength(8))

	for i, s := range inputs {
		once := transform.Apply(parser.Parse(s), transform.DefaultPasses(preserve)...)
		twice := transform.Apply(once, transform.DefaultPasses(preserve)...)
		assert.True(t, ast.Equal(once, twice), "%d. <%q>\nonce:\n%s\ntwice:\n%s", i, s, ast.Dump(once), ast.Dump(twice))
	}
}

// Ensure that passes run in order and never modify their input.
func TestApply(t *testing.T) {
	ss := parser.Parse(`:root{--x:1px} .a{width:var(--x)} .b{}`)
	before := ss.Clone()

	other := transform.Apply(ss, transform.DefaultPasses(nil)...)
	assert.Equal(t, `:root {--x: 1px;} .a {width: var(--x);}`, text(other))
	assert.True(t, ast.Equal(before, ss))

	assert.Nil(t, transform.Apply(nil, &transform.EmptyRuleElision{}))
	assert.Same(t, ss, transform.Apply(ss))
}

// Ensure that every pass has a distinct name.
func TestNames(t *testing.T) {
	passes := []transform.Pass{
		&transform.CommentStrip{},
		&transform.EmptyRuleElision{},
		&transform.DedupeDeclarations{},
		&transform.ShortenValues{},
		&transform.BalanceRepair{},
	}
	var names []string
	for _, p := range passes {
		names = append(names, p.Name())
	}
	assert.Equal(t, transform.Names(), names)
}
