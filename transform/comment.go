package transform

import (
	"regexp"
	"strings"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/scanner"
)

// Predicate reports whether a comment should be kept. The text includes the
// comment delimiters. leading is true only for a comment that is the first
// node of the stylesheet.
type Predicate func(text string, leading bool) bool

// LeadingHeader keeps the single comment at the start of the stylesheet.
func LeadingHeader() Predicate {
	return func(_ string, leading bool) bool { return leading }
}

// MaxLength keeps comments of at most n bytes, delimiters included.
func MaxLength(n int) Predicate {
	return func(text string, _ bool) bool { return len(text) <= n }
}

// Matching keeps comments matched by re, e.g. `^/\*!|@license`.
func Matching(re *regexp.Regexp) Predicate {
	return func(text string, _ bool) bool { return re.MatchString(text) }
}

// Any keeps a comment if any of the predicates keeps it.
// Nil predicates are ignored.
func Any(a ...Predicate) Predicate {
	return func(text string, leading bool) bool {
		for _, fn := range a {
			if fn != nil && fn(text, leading) {
				return true
			}
		}
		return false
	}
}

// CommentStrip removes comments from the stylesheet.
//
// Comment nodes are removed at every depth, as are comments embedded in
// selectors, at-rule preludes and declarations. Comments accepted by Preserve
// are kept and comment nodes are marked as preserved. A nil Preserve removes
// every comment that is not already marked as preserved.
type CommentStrip struct {
	Preserve Predicate
}

func (*CommentStrip) Name() string { return CommentStripName }

func (p *CommentStrip) Apply(ss *ast.StyleSheet) *ast.StyleSheet {
	other := ss.Clone()

	var first ast.Node
	if len(other.Nodes) > 0 {
		first = other.Nodes[0]
	}

	other.Nodes = filterNodes(other.Nodes, func(n ast.Node, depth int) ast.Node {
		switch n := n.(type) {
		case *ast.Comment:
			if n.Preserved || p.keep(n.Text, depth == 0 && ast.Node(n) == first) {
				n.Preserved = true
				return n
			}
			return nil

		case *ast.Rule:
			var selectors []string
			for _, sel := range n.Selectors {
				if sel = p.strip(sel); sel != "" {
					selectors = append(selectors, sel)
				}
			}
			if len(selectors) > 0 {
				n.Selectors = selectors
			}

		case *ast.AtRule:
			n.Prelude = p.strip(n.Prelude)

		case *ast.Declaration:
			if n.Invalid {
				n.Raw = keepIfEmpty(p.strip(n.Raw), n.Raw)
				return n
			}
			n.Property = keepIfEmpty(p.strip(n.Property), n.Property)
			n.Value = keepIfEmpty(p.strip(n.Value), n.Value)
		}
		return n
	})
	return other
}

func (p *CommentStrip) keep(text string, leading bool) bool {
	return p.Preserve != nil && p.Preserve(text, leading)
}

// strip removes the embedded comments of s that are not kept and collapses
// the whitespace left behind. A space is left where the removal would join
// two name characters.
func (p *CommentStrip) strip(s string) string {
	if !strings.Contains(s, "/*") {
		return s
	}

	type segment struct {
		class scanner.Class
		text  string
	}
	var segments []segment
	scanner.Segments(s, func(class scanner.Class, text string) {
		segments = append(segments, segment{class, text})
	})

	var buf strings.Builder
	for i, seg := range segments {
		if seg.class != scanner.Comment || p.keep(seg.text, false) {
			buf.WriteString(seg.text)
			continue
		}
		prev := buf.String()
		if i+1 < len(segments) && prev != "" && isNameByte(prev[len(prev)-1]) && isNameByte(segments[i+1].text[0]) {
			buf.WriteByte(' ')
		}
	}
	return scanner.CollapseWhitespace(buf.String())
}

func keepIfEmpty(s, orig string) string {
	if s == "" {
		return orig
	}
	return s
}

func isNameByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_' || ch >= 0x80
}
