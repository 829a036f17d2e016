package cssvet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/scanner"
)

// Style controls the layout of printed CSS.
type Style struct {
	// Compact drops the last semicolon of every block and all optional
	// whitespace: around braces, colons and semicolons, around selector
	// combinators and commas, around commas in values, and around colons
	// in the conditions of conditional at-rules.
	Compact bool `yaml:"compact"`

	// Indent is written once per nesting level. Ignored when compact.
	Indent string `yaml:"indent"`

	// BraceOnNewLine puts the opening brace of a block on its own line.
	BraceOnNewLine bool `yaml:"brace_on_new_line"`

	// Header is a comment written before the first node.
	Header string `yaml:"header"`
}

// DefaultStyle returns a pretty style with a two space indent.
func DefaultStyle() Style {
	return Style{Indent: "  "}
}

// Printer represents a configurable CSS printer.
type Printer struct {
	Style Style
}

// Print writes the stylesheet to w.
//
// Selectors and values are written with their whitespace collapsed outside
// strings, comments and urls. Comments are written verbatim. Blocks that were
// never closed in the source are written without a closing brace.
//
// Nothing is written if the model breaks an invariant of the printer, such as
// a rule without selectors. An *InvariantError is returned instead.
func (p *Printer) Print(w io.Writer, ss *ast.StyleSheet) error {
	if ss == nil {
		return nil
	}

	var buf bytes.Buffer
	nodes := ss.Nodes
	if p.Style.Header != "" {
		buf.WriteString(p.Style.Header)
		p.newline(&buf)
		if len(nodes) > 0 {
			if c, ok := nodes[0].(*ast.Comment); ok && c.Text == p.Style.Header {
				nodes = nodes[1:]
			}
		}
	}
	if err := p.printNodes(&buf, nodes, 0); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func (p *Printer) printNodes(buf *bytes.Buffer, nodes []ast.Node, depth int) error {
	for i, n := range nodes {
		if err := p.printNode(buf, n, depth); err != nil {
			return err
		}
		if d, ok := n.(*ast.Declaration); ok && terminable(d) {
			if !p.Style.Compact || i < len(nodes)-1 {
				buf.WriteByte(';')
			}
		}
		p.newline(buf)
	}
	return nil
}

func (p *Printer) printNode(buf *bytes.Buffer, n ast.Node, depth int) error {
	switch n := n.(type) {
	case *ast.Comment:
		if n == nil {
			return &InvariantError{Message: "nil comment"}
		}
		p.indent(buf, depth)
		buf.WriteString(n.Text)

	case *ast.Declaration:
		if n == nil {
			return &InvariantError{Message: "nil declaration"}
		}
		p.indent(buf, depth)
		if n.Invalid {
			if n.Raw == "" {
				return &InvariantError{Node: n, Message: "invalid declaration without text"}
			}
			buf.WriteString(n.Raw)
			return nil
		}
		if strings.TrimSpace(n.Property) == "" {
			return &InvariantError{Node: n, Message: "declaration without property"}
		}
		buf.WriteString(n.Property)
		buf.WriteByte(':')
		if !p.Style.Compact {
			buf.WriteByte(' ')
		}
		value := scanner.CollapseWhitespace(n.Value)
		if p.Style.Compact && !n.Custom() {
			value = compact(value, compactValue)
		}
		buf.WriteString(value)
		if n.Important {
			if !p.Style.Compact {
				buf.WriteByte(' ')
			}
			buf.WriteString("!important")
		}

	case *ast.Rule:
		if n == nil {
			return &InvariantError{Message: "nil rule"}
		}
		if len(n.Selectors) == 0 {
			return &InvariantError{Node: n, Message: "rule without selectors"}
		}
		selectors := make([]string, len(n.Selectors))
		for i, sel := range n.Selectors {
			if selectors[i] = scanner.CollapseWhitespace(sel); selectors[i] == "" {
				return &InvariantError{Node: n, Message: "rule with an empty selector"}
			}
			if p.Style.Compact {
				selectors[i] = compact(selectors[i], compactSelector)
			}
		}
		if n.Block == nil {
			return &InvariantError{Node: n, Message: "rule without block"}
		}
		sep := ", "
		if p.Style.Compact {
			sep = ","
		}
		p.indent(buf, depth)
		buf.WriteString(strings.Join(selectors, sep))
		return p.printBlock(buf, n.Block, depth)

	case *ast.AtRule:
		if n == nil {
			return &InvariantError{Message: "nil at-rule"}
		}
		if n.Name == "" {
			return &InvariantError{Node: n, Message: "at-rule without name"}
		}
		p.indent(buf, depth)
		buf.WriteByte('@')
		buf.WriteString(n.Name)
		prelude := scanner.CollapseWhitespace(n.Prelude)
		if p.Style.Compact {
			mode := compactPrelude
			if conditionalAtRules[strings.ToLower(n.Name)] {
				mode = compactCondition
			}
			prelude = compact(prelude, mode)
		}
		if prelude != "" {
			buf.WriteByte(' ')
			buf.WriteString(prelude)
		}
		if n.Block == nil {
			if !scanner.Unterminated("@" + n.Name + " " + n.Prelude) {
				buf.WriteByte(';')
			}
			return nil
		}
		return p.printBlock(buf, n.Block, depth)

	default:
		return &InvariantError{Node: n, Message: fmt.Sprintf("unexpected node %T", n)}
	}
	return nil
}

// terminable returns false if a semicolon after d would end up inside a
// string, comment, url or escape that runs to the end of the declaration.
func terminable(d *ast.Declaration) bool {
	switch {
	case d == nil:
		return false
	case d.Invalid:
		return !scanner.Unterminated(d.Raw)
	case d.Important:
		return true
	}
	return !scanner.Unterminated(d.Value)
}

func (p *Printer) printBlock(buf *bytes.Buffer, b *ast.Block, depth int) error {
	switch {
	case p.Style.Compact:
	case p.Style.BraceOnNewLine:
		p.newline(buf)
		p.indent(buf, depth)
	default:
		buf.WriteByte(' ')
	}
	buf.WriteByte('{')
	p.newline(buf)

	if err := p.printNodes(buf, b.Nodes, depth+1); err != nil {
		return err
	}

	if !b.Unclosed {
		p.indent(buf, depth)
		buf.WriteByte('}')
	}
	return nil
}

func (p *Printer) indent(buf *bytes.Buffer, depth int) {
	if !p.Style.Compact {
		buf.WriteString(strings.Repeat(p.Style.Indent, depth))
	}
}

// newline ends the current line. Blank lines are never written.
func (p *Printer) newline(buf *bytes.Buffer) {
	if !p.Style.Compact && buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// compactMode selects the punctuation that absorbs surrounding whitespace.
type compactMode int

const (
	compactSelector  compactMode = iota // combinators and commas outside () and []
	compactValue                        // commas
	compactPrelude                      // commas
	compactCondition                    // commas, and colons inside parentheses
)

// conditionalAtRules have a media or feature condition as prelude.
var conditionalAtRules = map[string]bool{
	"media":     true,
	"supports":  true,
	"container": true,
	"import":    true,
}

// compact removes the spaces next to punctuation that does not need them.
// s must have its whitespace collapsed already. Strings, comments, urls and
// escapes are copied unchanged and never absorb a space.
func compact(s string, mode compactMode) string {
	var buf strings.Builder
	var depth int // parentheses and brackets
	var last byte // last code byte written; 0 after other classes
	scanner.Segments(s, func(class scanner.Class, text string) {
		if class != scanner.Code {
			buf.WriteString(text)
			last = 0
			return
		}
		for i := 0; i < len(text); i++ {
			ch := text[i]
			if ch == ' ' {
				var next byte
				if i+1 < len(text) {
					next = text[i+1]
				}
				if absorbs(last, depth, mode) || absorbs(next, depth, mode) {
					continue
				}
			}
			switch ch {
			case '(', '[':
				depth++
			case ')', ']':
				if depth > 0 {
					depth--
				}
			}
			buf.WriteByte(ch)
			last = ch
		}
	})
	return buf.String()
}

// absorbs returns true if whitespace next to ch is optional.
func absorbs(ch byte, depth int, mode compactMode) bool {
	switch {
	case ch == ',':
		return mode != compactSelector || depth == 0
	case ch == '>' || ch == '+' || ch == '~':
		return mode == compactSelector && depth == 0
	case ch == ':':
		return mode == compactCondition && depth > 0
	}
	return false
}

// String prints the stylesheet to a string using style.
func String(ss *ast.StyleSheet, style Style) (string, error) {
	p := Printer{Style: style}
	var buf bytes.Buffer
	if err := p.Print(&buf, ss); err != nil {
		return "", err
	}
	return buf.String(), nil
}
