package ast

import (
	"bytes"
	"strings"

	"github.com/benbjohnson/cssvet/token"
)

// Node represents a node in the structural model of a stylesheet.
type Node interface {
	node()
	Span() token.Span
	String() string
}

func (_ *Comment) node()     {}
func (_ *AtRule) node()      {}
func (_ *Rule) node()        {}
func (_ *Declaration) node() {}

// StyleSheet represents a top-level stylesheet.
//
// Diagnostics holds the structural defects recorded while the model was
// built. They describe the source text, not the current shape of the model.
type StyleSheet struct {
	Nodes       []Node
	Diagnostics []Diagnostic
}

// Unbalanced returns true if any brace defect is still recorded.
func (s *StyleSheet) Unbalanced() bool {
	for _, d := range s.Diagnostics {
		if d.Kind == UnmatchedClose || d.Kind == Unclosed {
			return true
		}
	}
	return false
}

// Rules returns the number of top-level rules and at-rules.
func (s *StyleSheet) Rules() int {
	var n int
	for _, node := range s.Nodes {
		switch node.(type) {
		case *Rule, *AtRule:
			n++
		}
	}
	return n
}

func (s *StyleSheet) String() string {
	var buf bytes.Buffer
	for _, n := range s.Nodes {
		buf.WriteString(n.String())
		buf.WriteString("\n")
	}
	return buf.String()
}

// Comment represents a comment between rules or declarations.
// Text includes the "/*" and "*/" delimiters.
type Comment struct {
	Text      string
	Preserved bool
	Pos       token.Span
}

func (c *Comment) Span() token.Span { return c.Pos }
func (c *Comment) String() string   { return c.Text }

// AtRule represents a rule starting with an "@" symbol.
// Block is nil for statement at-rules such as @import.
type AtRule struct {
	Name    string
	Prelude string
	Block   *Block
	Pos     token.Span
}

func (r *AtRule) Span() token.Span { return r.Pos }

func (r *AtRule) String() string {
	var buf bytes.Buffer
	buf.WriteString("@" + r.Name)
	if r.Prelude != "" {
		buf.WriteString(" " + r.Prelude)
	}
	if r.Block != nil {
		buf.WriteString(" " + r.Block.String())
	} else {
		buf.WriteString(";")
	}
	return buf.String()
}

// Rule represents a selector list and its block.
// The block holds declarations and, for nested CSS, rules and at-rules.
type Rule struct {
	Selectors []string
	Block     *Block
	Pos       token.Span
}

func (r *Rule) Span() token.Span { return r.Pos }

func (r *Rule) String() string {
	return strings.Join(r.Selectors, ", ") + " " + r.Block.String()
}

// Declarations returns the declarations of the rule in source order.
func (r *Rule) Declarations() []*Declaration {
	if r.Block == nil {
		return nil
	}
	return r.Block.Declarations()
}

// Declaration represents a property/value pair.
//
// Invalid declarations have no colon or no value. They keep their trimmed
// source text in Raw so they can be written back unchanged.
type Declaration struct {
	Property  string
	Value     string
	Important bool
	Invalid   bool
	Raw       string
	Pos       token.Span
	ValuePos  token.Span
}

func (d *Declaration) Span() token.Span { return d.Pos }

func (d *Declaration) String() string {
	if d.Invalid {
		return d.Raw
	}
	s := d.Property + ": " + d.Value
	if d.Important {
		s += " !important"
	}
	return s
}

// Custom returns true if the declaration defines a custom property.
func (d *Declaration) Custom() bool {
	return strings.HasPrefix(d.Property, "--")
}

// Block represents the contents of a {-block.
// Unclosed is set when the source ended before the block's closing brace.
type Block struct {
	Nodes    []Node
	Unclosed bool
	Pos      token.Span
}

func (b *Block) String() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, n := range b.Nodes {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(n.String())
		if _, ok := n.(*Declaration); ok {
			buf.WriteString(";")
		}
	}
	if !b.Unclosed {
		buf.WriteString("}")
	}
	return buf.String()
}

// Declarations returns the declarations directly inside the block.
func (b *Block) Declarations() []*Declaration {
	var a []*Declaration
	for _, n := range b.Nodes {
		if d, ok := n.(*Declaration); ok {
			a = append(a, d)
		}
	}
	return a
}

// Empty returns true if the block has no declarations, rules or at-rules.
func (b *Block) Empty() bool {
	for _, n := range b.Nodes {
		if _, ok := n.(*Comment); !ok {
			return false
		}
	}
	return true
}

// DiagnosticKind identifies a structural defect found while building.
type DiagnosticKind int

const (
	UnmatchedClose DiagnosticKind = iota + 1
	Unclosed
	Repaired
	UnterminatedComment
	UnterminatedString
	UnterminatedURL
	StrayDeclaration
	MissingSelector
	InvalidDeclaration
	EmptyProperty
	InvalidSelector
)

var diagnosticKinds = [...]string{
	UnmatchedClose:      "unmatched-close",
	Unclosed:            "unclosed-block",
	Repaired:            "repaired-block",
	UnterminatedComment: "unterminated-comment",
	UnterminatedString:  "unterminated-string",
	UnterminatedURL:     "unterminated-url",
	StrayDeclaration:    "stray-declaration",
	MissingSelector:     "missing-selector",
	InvalidDeclaration:  "invalid-declaration",
	EmptyProperty:       "empty-property",
	InvalidSelector:     "invalid-selector",
}

// String returns the string representation of the kind.
func (k DiagnosticKind) String() string {
	if k > 0 && int(k) < len(diagnosticKinds) {
		return diagnosticKinds[k]
	}
	return ""
}

// Diagnostic records a structural defect and its location in the source.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Pos     token.Span
}
