package transform

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/benbjohnson/cssvet/ast"
)

// ShortenValues rewrites declaration values into shorter equivalents.
//
// Hex colors with repeated digit pairs are shortened ("#aabbcc" to "#abc")
// and zero lengths lose their unit ("0px" to "0"). Values are tokenized so
// strings and urls are never touched. Custom properties, flex percentages and
// zero lengths inside functions such as calc() keep their unit.
type ShortenValues struct{}

func (*ShortenValues) Name() string { return ShortenValuesName }

func (*ShortenValues) Apply(ss *ast.StyleSheet) *ast.StyleSheet {
	other := ss.Clone()
	ast.Walk(other.Nodes, func(n ast.Node, _ int) bool {
		if d, ok := n.(*ast.Declaration); ok && !d.Invalid && !d.Custom() {
			d.Value = shortenValue(d.Property, d.Value)
		}
		return true
	})
	return other
}

// zeroUnits are the units dropped from a zero length.
var zeroUnits = map[string]bool{
	"px": true, "em": true, "rem": true, "vh": true, "vw": true,
	"pt": true, "cm": true, "mm": true, "in": true, "ex": true, "ch": true,
}

// shortenValue returns the shortened form of value.
// The value is returned unchanged if it cannot be tokenized.
func shortenValue(property, value string) string {
	flex := strings.HasPrefix(strings.ToLower(property), "flex")

	var buf strings.Builder
	depth := 0
	l := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if l.Err() != io.EOF {
				return value
			}
			return buf.String()
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
		case css.HashToken:
			data = shortenHex(data)
		case css.DimensionToken:
			if depth == 0 && isZero(data) && zeroUnits[strings.ToLower(unitOf(data))] {
				data = []byte("0")
			}
		case css.PercentageToken:
			if depth == 0 && !flex && isZero(data) {
				data = []byte("0")
			}
		}
		buf.Write(data)
	}
}

// shortenHex returns "#abc" for "#aabbcc" and "#abcd" for "#aabbccdd".
func shortenHex(data []byte) []byte {
	hex := data[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return data
	}
	for i := 0; i < len(hex); i += 2 {
		if !isHex(hex[i]) || lower(hex[i]) != lower(hex[i+1]) {
			return data
		}
	}
	short := []byte{'#'}
	for i := 0; i < len(hex); i += 2 {
		short = append(short, hex[i])
	}
	return short
}

// isZero returns true if the numeric part of a dimension is zero.
func isZero(data []byte) bool {
	num := numberOf(data)
	if len(num) > 0 && (num[0] == '+' || num[0] == '-') {
		num = num[1:]
	}
	if num == "" {
		return false
	}
	for i := 0; i < len(num); i++ {
		if num[i] != '0' && num[i] != '.' {
			return false
		}
	}
	return strings.Contains(num, "0")
}

// numberOf returns the leading number of a dimension or percentage.
func numberOf(data []byte) string {
	i := 0
	for i < len(data) && (data[i] == '+' || data[i] == '-' || data[i] == '.' || (data[i] >= '0' && data[i] <= '9')) {
		i++
	}
	return string(data[:i])
}

func unitOf(data []byte) string {
	return string(data[len(numberOf(data)):])
}

func isHex(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}
