package scanner

import (
	"strings"

	"github.com/benbjohnson/cssvet/token"
)

// Class identifies the lexical context of a run of fragment text.
type Class int

const (
	Code Class = iota
	String
	Comment
	URL
	Escape
)

// next returns the class of the construct starting at src[i] and the offset
// just past it. Code constructs are always one byte long.
func next(src string, i int) (Class, int, token.Runaway) {
	switch ch := src[i]; {
	case ch == '\\':
		if i+2 > len(src) {
			return Escape, len(src), token.NoRunaway
		}
		return Escape, i + 2, token.NoRunaway
	case ch == '"' || ch == '\'':
		end, ok := skipString(src, i)
		if !ok {
			return String, end, token.RunawayString
		}
		return String, end, token.NoRunaway
	case ch == '/' && i+1 < len(src) && src[i+1] == '*':
		if j := strings.Index(src[i+2:], "*/"); j >= 0 {
			return Comment, i + 2 + j + 2, token.NoRunaway
		}
		return Comment, len(src), token.RunawayComment
	case (ch == 'u' || ch == 'U') && isURLStart(src, i):
		return skipURL(src, i)
	}
	return Code, i + 1, token.NoRunaway
}

// skipString returns the offset past the string starting at src[i].
// The end of input closes an unterminated string.
func skipString(src string, i int) (int, bool) {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		}
	}
	return len(src), false
}

// isURLStart returns true if src[i:] starts a "url(" token.
func isURLStart(src string, i int) bool {
	if i > 0 && isName(src[i-1]) {
		return false
	}
	return len(src) >= i+4 && strings.EqualFold(src[i:i+4], "url(")
}

// skipURL consumes "url(" up to and including the closing parenthesis.
// Quoted strings and escapes inside the url are honored.
func skipURL(src string, i int) (Class, int, token.Runaway) {
	for j := i + 4; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"', '\'':
			end, ok := skipString(src, j)
			if !ok {
				return URL, end, token.RunawayString
			}
			j = end - 1
		case ')':
			return URL, j + 1, token.NoRunaway
		}
	}
	return URL, len(src), token.RunawayURL
}

// Segments calls fn for every run of s in a single lexical class.
// Adjacent code bytes are reported as one run.
func Segments(s string, fn func(class Class, text string)) {
	codeStart := -1
	for i := 0; i < len(s); {
		class, end, _ := next(s, i)
		if class == Code {
			if codeStart < 0 {
				codeStart = i
			}
			i = end
			continue
		}
		if codeStart >= 0 {
			fn(Code, s[codeStart:i])
			codeStart = -1
		}
		fn(class, s[i:end])
		i = end
	}
	if codeStart >= 0 {
		fn(Code, s[codeStart:])
	}
}

// Unterminated returns true if s ends inside a string, comment or url, or
// with a backslash that escapes nothing. A delimiter appended to such text
// would become part of it.
func Unterminated(s string) bool {
	for i := 0; i < len(s); {
		class, end, runaway := next(s, i)
		if runaway != token.NoRunaway || (class == Escape && end-i < 2) {
			return true
		}
		i = end
	}
	return false
}

// StripComments removes every comment from s that is not inside a string or url.
func StripComments(s string) string {
	if !strings.Contains(s, "/*") {
		return s
	}
	var buf strings.Builder
	Segments(s, func(class Class, text string) {
		if class != Comment {
			buf.WriteString(text)
		}
	})
	return strings.Trim(buf.String(), whitespace)
}

// Comments returns the comments embedded in s.
func Comments(s string) []string {
	var a []string
	Segments(s, func(class Class, text string) {
		if class == Comment {
			a = append(a, text)
		}
	})
	return a
}

// CollapseWhitespace replaces every whitespace run outside strings, comments
// and urls with a single space and trims the result.
func CollapseWhitespace(s string) string {
	var buf strings.Builder
	Segments(s, func(class Class, text string) {
		if class != Code {
			buf.WriteString(text)
			return
		}
		space := false
		for i := 0; i < len(text); i++ {
			if isWhitespace(text[i]) {
				space = true
				continue
			}
			if space {
				buf.WriteByte(' ')
				space = false
			}
			buf.WriteByte(text[i])
		}
		if space {
			buf.WriteByte(' ')
		}
	})
	return strings.Trim(buf.String(), whitespace)
}

// SplitTopLevel splits s at every sep that is outside strings, comments,
// urls, parentheses and brackets. Parts are trimmed; empty parts are kept.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	var buf strings.Builder
	depth := 0
	Segments(s, func(class Class, text string) {
		if class != Code {
			buf.WriteString(text)
			return
		}
		for i := 0; i < len(text); i++ {
			switch ch := text[i]; {
			case ch == '(' || ch == '[':
				depth++
			case (ch == ')' || ch == ']') && depth > 0:
				depth--
			case ch == sep && depth == 0:
				parts = append(parts, strings.Trim(buf.String(), whitespace))
				buf.Reset()
				continue
			}
			buf.WriteByte(text[i])
		}
	})
	return append(parts, strings.Trim(buf.String(), whitespace))
}
