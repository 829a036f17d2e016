package validator

import (
	"io"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/token"
)

// CustomProperty holds the definition and usage sites of one custom property.
type CustomProperty struct {
	Name        string
	Definitions []token.Span
	Usages      []Usage
}

// Usage represents a var() reference to a custom property.
type Usage struct {
	Span        token.Span
	HasFallback bool
}

// CustomPropertyTable maps custom property names to their sites.
type CustomPropertyTable map[string]*CustomProperty

// BuildCustomPropertyTable collects every custom property definition and
// var() reference in ss whose name starts with prefix.
func BuildCustomPropertyTable(ss *ast.StyleSheet, prefix string) CustomPropertyTable {
	t := make(CustomPropertyTable)
	ast.Walk(ss.Nodes, func(n ast.Node, _ int) bool {
		d, ok := n.(*ast.Declaration)
		if !ok || d.Invalid {
			return true
		}
		if d.Custom() && strings.HasPrefix(d.Property, prefix) {
			p := t.get(d.Property)
			p.Definitions = append(p.Definitions, d.Pos)
		}
		for _, ref := range references(d.Value) {
			if !strings.HasPrefix(ref.name, prefix) {
				continue
			}
			p := t.get(ref.name)
			p.Usages = append(p.Usages, Usage{
				Span:        token.Span{Start: d.ValuePos.Start + ref.offset, End: d.ValuePos.Start + ref.offset + len(ref.name)},
				HasFallback: ref.fallback,
			})
		}
		return true
	})
	return t
}

func (t CustomPropertyTable) get(name string) *CustomProperty {
	p := t[name]
	if p == nil {
		p = &CustomProperty{Name: name}
		t[name] = p
	}
	return p
}

// Names returns the property names in sorted order.
func (t CustomPropertyTable) Names() []string {
	a := make([]string, 0, len(t))
	for name := range t {
		a = append(a, name)
	}
	sort.Strings(a)
	return a
}

// Usages returns the total number of usages and the number with a fallback.
func (t CustomPropertyTable) Usages() (total, fallback int) {
	for _, p := range t {
		for _, u := range p.Usages {
			total++
			if u.HasFallback {
				fallback++
			}
		}
	}
	return total, fallback
}

// reference is a var() reference found in a value.
type reference struct {
	name     string
	offset   int
	fallback bool
}

// references returns the var() references in value in source order.
// Nested references inside fallbacks are included.
func references(value string) []reference {
	if !strings.Contains(strings.ToLower(value), "var(") {
		return nil
	}

	type frame struct {
		depth int
		ref   int // index into refs or -1
	}
	var refs []reference
	var stack []frame
	depth, offset := 0, 0
	expectName := false

	l := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if l.Err() != io.EOF {
				return refs
			}
			break
		}

		if expectName && tt != css.WhitespaceToken && tt != css.CommentToken {
			expectName = false
			if (tt == css.IdentToken || tt == css.CustomPropertyNameToken) && strings.HasPrefix(string(data), "--") {
				refs = append(refs, reference{name: string(data), offset: offset})
				stack[len(stack)-1].ref = len(refs) - 1
			}
		}

		switch tt {
		case css.FunctionToken:
			depth++
			if strings.EqualFold(string(data), "var(") {
				stack = append(stack, frame{depth: depth, ref: -1})
				expectName = true
			}
		case css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if n := len(stack); n > 0 && stack[n-1].depth == depth {
				stack = stack[:n-1]
			}
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if n := len(stack); n > 0 && stack[n-1].depth == depth && stack[n-1].ref >= 0 {
				refs[stack[n-1].ref].fallback = true
			}
		}
		offset += len(data)
	}
	return refs
}
