package token

import (
	"sort"
	"strconv"
)

// Token represents a lexical token.
type Token interface {
	token()
	Span() Span
}

func (_ *Comment) token()     {}
func (_ *Whitespace) token()  {}
func (_ *LBrace) token()      {}
func (_ *RBrace) token()      {}
func (_ *Semicolon) token()   {}
func (_ *Selector) token()    {}
func (_ *Declaration) token() {}
func (_ *AtKeyword) token()   {}
func (_ *EOF) token()         {}

// Comment is a "/* ... */" comment. Text includes the delimiters.
// Terminated is false when the comment was closed by the end of input.
type Comment struct {
	Text       string
	Terminated bool
	Pos        Span
}

// Whitespace is a run of whitespace between fragments.
type Whitespace struct {
	Value string
	Pos   Span
}

// LBrace is an opening brace that starts a block.
type LBrace struct {
	Pos Span
}

// RBrace is a closing brace that ends a block.
type RBrace struct {
	Pos Span
}

// Semicolon terminates a declaration or a statement at-rule.
type Semicolon struct {
	Pos Span
}

// Selector is the text in front of a "{" that is not an at-rule prelude.
// The text is raw and may include embedded comments.
type Selector struct {
	Text    string
	Runaway Runaway
	Pos     Span
}

// Declaration is a "property: value" fragment terminated by ";", "}" or EOF.
type Declaration struct {
	Property  string
	Value     string
	Important bool

	// HasColon is false when no colon separated property from value.
	HasColon bool

	Runaway Runaway

	Pos       Span
	ValueSpan Span
}

// AtKeyword marks an at-rule. Name excludes the "@". Prelude is the trimmed
// text between the name and the "{" or ";" that ends the at-rule.
type AtKeyword struct {
	Name    string
	Prelude string
	Runaway Runaway
	Pos     Span
}

func (t *Comment) Span() Span     { return t.Pos }
func (t *Whitespace) Span() Span  { return t.Pos }
func (t *LBrace) Span() Span      { return t.Pos }
func (t *RBrace) Span() Span      { return t.Pos }
func (t *Semicolon) Span() Span   { return t.Pos }
func (t *Selector) Span() Span    { return t.Pos }
func (t *Declaration) Span() Span { return t.Pos }
func (t *AtKeyword) Span() Span   { return t.Pos }
func (t *EOF) Span() Span         { return t.Pos }

// EOF marks the end of input.
type EOF struct {
	Pos Span
}

// Runaway identifies a construct inside a fragment that was closed by the
// end of input instead of its own delimiter.
type Runaway int

const (
	NoRunaway Runaway = iota
	RunawayString
	RunawayComment
	RunawayURL
)

func (r Runaway) String() string {
	switch r {
	case RunawayString:
		return "string"
	case RunawayComment:
		return "comment"
	case RunawayURL:
		return "url"
	}
	return ""
}

// Span is a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// String returns the span formatted as "start:end".
func (s Span) String() string {
	return strconv.Itoa(s.Start) + ":" + strconv.Itoa(s.End)
}

// Pos specifies the line and character position of a byte offset.
// The Char and Line are both zero-based indexes.
type Pos struct {
	Char int
	Line int
}

// String returns the one-based "line:col" form used in diagnostics.
func (p Pos) String() string {
	return strconv.Itoa(p.Line+1) + ":" + strconv.Itoa(p.Char+1)
}

// File maps byte offsets of a source text to line and character positions.
type File struct {
	lines []int // offsets of line starts
}

// NewFile indexes the line starts of src.
func NewFile(src string) *File {
	f := &File{lines: []int{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// Position returns the line and character of offset.
func (f *File) Position(offset int) Pos {
	i := sort.SearchInts(f.lines, offset+1) - 1
	if i < 0 {
		i = 0
	}
	return Pos{Line: i, Char: offset - f.lines[i]}
}
