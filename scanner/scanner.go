package scanner

import (
	"strings"

	"github.com/benbjohnson/cssvet/token"
)

// Scanner splits CSS text into structural tokens.
//
// The scanner never fails. Constructs that run into the end of input are
// closed there and flagged on the token so that the builder can record them.
// Every byte of the input belongs to exactly one token, so the spans of the
// returned tokens reproduce the input when concatenated.
type Scanner struct {
	src string
	pos int

	pending []token.Token // tokens queued by the last fragment
}

// New returns a new instance of Scanner.
func New(src string) *Scanner {
	return &Scanner{src: src}
}

// Tokenize returns all tokens of src, excluding the final EOF.
func Tokenize(src string) []token.Token {
	s := New(src)
	var a []token.Token
	for {
		tok := s.Scan()
		if _, ok := tok.(*token.EOF); ok {
			return a
		}
		a = append(a, tok)
	}
}

// Scan returns the next token.
func (s *Scanner) Scan() token.Token {
	if len(s.pending) > 0 {
		tok := s.pending[0]
		s.pending = s.pending[1:]
		return tok
	}

	if s.pos >= len(s.src) {
		return &token.EOF{Pos: token.Span{Start: len(s.src), End: len(s.src)}}
	}

	ch := s.src[s.pos]
	switch {
	case isWhitespace(ch):
		return s.scanWhitespace()
	case ch == '/' && s.peek(1) == '*':
		return s.scanComment()
	case ch == '{':
		s.pos++
		return &token.LBrace{Pos: token.Span{Start: s.pos - 1, End: s.pos}}
	case ch == '}':
		s.pos++
		return &token.RBrace{Pos: token.Span{Start: s.pos - 1, End: s.pos}}
	case ch == ';':
		s.pos++
		return &token.Semicolon{Pos: token.Span{Start: s.pos - 1, End: s.pos}}
	}
	return s.scanFragment()
}

// scanWhitespace consumes the current byte and all subsequent whitespace.
func (s *Scanner) scanWhitespace() token.Token {
	start := s.pos
	for s.pos < len(s.src) && isWhitespace(s.src[s.pos]) {
		s.pos++
	}
	return &token.Whitespace{Value: s.src[start:s.pos], Pos: token.Span{Start: start, End: s.pos}}
}

// scanComment consumes all characters up to "*/", inclusive.
// An unterminated comment extends to the end of input.
func (s *Scanner) scanComment() token.Token {
	start := s.pos
	_, end, runaway := next(s.src, s.pos)
	s.pos = end
	return &token.Comment{
		Text:       s.src[start:end],
		Terminated: runaway == token.NoRunaway,
		Pos:        token.Span{Start: start, End: end},
	}
}

// scanFragment consumes selector, declaration or at-rule text up to the next
// structural delimiter. Delimiters inside strings, comments, url(...) and
// escapes are literal content.
//
// The fragment is classified by the delimiter that ends it. Trailing
// whitespace is queued as its own token.
func (s *Scanner) scanFragment() token.Token {
	start, colon := s.pos, -1
	runaway := token.NoRunaway

	i := s.pos
loop:
	for i < len(s.src) {
		class, end, r := next(s.src, i)
		if class == Code {
			switch s.src[i] {
			case '{', '}', ';':
				break loop
			case ':':
				if colon < 0 {
					colon = i
				}
			}
		}
		if r != token.NoRunaway {
			runaway = r
		}
		i = end
	}
	s.pos = i

	// Split off trailing whitespace.
	end := start + len(strings.TrimRight(s.src[start:i], whitespace))
	if end < i {
		s.pending = append(s.pending, &token.Whitespace{Value: s.src[end:i], Pos: token.Span{Start: end, End: i}})
	}
	raw, span := s.src[start:end], token.Span{Start: start, End: end}

	block := i < len(s.src) && s.src[i] == '{'
	switch {
	case raw[0] == '@':
		name := scanName(raw[1:])
		return &token.AtKeyword{
			Name:    name,
			Prelude: strings.Trim(raw[1+len(name):], whitespace),
			Runaway: runaway,
			Pos:     span,
		}
	case block:
		return &token.Selector{Text: raw, Runaway: runaway, Pos: span}
	}
	return newDeclaration(raw, span, colon-start, runaway)
}

// newDeclaration splits raw at the colon offset into property and value and
// strips a trailing "!important" from the value.
func newDeclaration(raw string, span token.Span, colon int, runaway token.Runaway) *token.Declaration {
	d := &token.Declaration{Runaway: runaway, Pos: span}
	if colon < 0 {
		d.Property = raw
		d.ValueSpan = token.Span{Start: span.End, End: span.End}
		return d
	}
	d.HasColon = true
	d.Property = strings.Trim(raw[:colon], whitespace)

	value := raw[colon+1:]
	offset := span.Start + colon + 1 + (len(value) - len(strings.TrimLeft(value, whitespace)))
	value = strings.Trim(value, whitespace)
	if v, ok := cutImportant(value); ok {
		d.Important = true
		value = v
	}
	d.Value = value
	d.ValueSpan = token.Span{Start: offset, End: offset + len(value)}
	return d
}

// cutImportant removes a case-insensitive "!important" suffix from value.
func cutImportant(value string) (string, bool) {
	const important = "important"
	if len(value) < len(important)+1 || !strings.EqualFold(value[len(value)-len(important):], important) {
		return value, false
	}
	rest := strings.TrimRight(value[:len(value)-len(important)], whitespace)
	if !strings.HasSuffix(rest, "!") {
		return value, false
	}
	return strings.TrimRight(rest[:len(rest)-1], whitespace), true
}

// peek returns the byte n positions ahead of the current position or zero.
func (s *Scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// scanName returns the leading name code points of s.
func scanName(s string) string {
	for i := 0; i < len(s); i++ {
		if !isName(s[i]) {
			return s[:i]
		}
	}
	return s
}

const whitespace = " \t\n\r\f"

// isWhitespace returns true if the byte is a space, tab, or newline.
func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

// isName returns true if the byte can appear in an identifier.
func isName(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_' || ch >= 0x80
}
