package validator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/scanner"
)

// BraceBalance reports every brace defect recorded by the parser.
type BraceBalance struct{}

func (*BraceBalance) Name() string { return CategoryBraceBalance }

func (*BraceBalance) Run(ss *ast.StyleSheet, _ Config) []Finding {
	var a []Finding
	for _, d := range ss.Diagnostics {
		switch d.Kind {
		case ast.UnmatchedClose:
			a = append(a, newFinding(Error, CategoryBraceBalance, d.Pos, "closing brace without matching opening brace"))
		case ast.Unclosed:
			a = append(a, newFinding(Error, CategoryBraceBalance, d.Pos, "block is never closed"))
		case ast.Repaired:
			a = append(a, newFinding(Warning, CategoryBraceBalance, d.Pos, "block was closed at end of input by repair"))
		}
	}
	return a
}

// Syntax reports malformed constructs: runaway comments, strings and urls,
// declarations outside of rules, rules without selectors, declarations
// without a value and malformed tokens inside values.
type Syntax struct{}

func (*Syntax) Name() string { return CategorySyntax }

func (*Syntax) Run(ss *ast.StyleSheet, _ Config) []Finding {
	var a []Finding
	for _, d := range ss.Diagnostics {
		switch d.Kind {
		case ast.UnterminatedComment, ast.UnterminatedString, ast.UnterminatedURL,
			ast.StrayDeclaration, ast.MissingSelector, ast.InvalidSelector:
			a = append(a, newFinding(Error, CategorySyntax, d.Pos, "%s: %s", d.Kind, d.Message))
		case ast.InvalidDeclaration, ast.EmptyProperty:
			a = append(a, newFinding(Warning, CategorySyntax, d.Pos, "%s: %s", d.Kind, d.Message))
		}
	}

	ast.Walk(ss.Nodes, func(n ast.Node, _ int) bool {
		if d, ok := n.(*ast.Declaration); ok && !d.Invalid {
			a = append(a, checkValue(d)...)
		}
		return true
	})
	return a
}

// checkValue tokenizes a declaration value and reports malformed strings and
// urls. A colon outside parentheses in a regular property usually means the
// semicolon before the next declaration is missing.
func checkValue(d *ast.Declaration) []Finding {
	var a []Finding
	depth, colon := 0, false
	l := css.NewLexer(parse.NewInputString(d.Value))
	for {
		tt, _ := l.Next()
		switch tt {
		case css.ErrorToken:
			if l.Err() != io.EOF {
				a = append(a, newFinding(Error, CategorySyntax, d.ValuePos, "value of %q cannot be tokenized: %s", d.Property, l.Err()))
			}
			if colon && !d.Custom() {
				a = append(a, newFinding(Warning, CategorySyntax, d.Pos, "value of %q contains a colon, possible missing semicolon", d.Property))
			}
			return a
		case css.BadStringToken:
			a = append(a, newFinding(Error, CategorySyntax, d.ValuePos, "value of %q has a string broken by a newline", d.Property))
		case css.BadURLToken:
			a = append(a, newFinding(Error, CategorySyntax, d.ValuePos, "value of %q has a malformed url()", d.Property))
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.ColonToken:
			if depth == 0 {
				colon = true
			}
		}
	}
}

// CustomProperties reports custom properties that are used but never defined
// as errors and properties that are defined but never used as warnings.
// Only properties starting with the configured prefix are considered.
type CustomProperties struct{}

func (*CustomProperties) Name() string { return CategoryCustomProperties }

func (*CustomProperties) Run(ss *ast.StyleSheet, cfg Config) []Finding {
	t := BuildCustomPropertyTable(ss, cfg.CustomPropertyPrefix)

	var a []Finding
	for _, name := range t.Names() {
		p := t[name]
		switch {
		case len(p.Definitions) == 0:
			for _, u := range p.Usages {
				a = append(a, newFinding(Error, CategoryCustomProperties, u.Span, "custom property %q is used but never defined", name))
			}
		case len(p.Usages) == 0:
			for _, span := range p.Definitions {
				a = append(a, newFinding(Warning, CategoryCustomProperties, span, "custom property %q is defined but never used", name))
			}
		}
	}
	return a
}

// FallbackCoverage reports the share of var() references that carry a
// fallback value and warns when it is below the configured threshold.
type FallbackCoverage struct{}

func (*FallbackCoverage) Name() string { return CategoryFallbackCoverage }

func (*FallbackCoverage) Run(ss *ast.StyleSheet, cfg Config) []Finding {
	total, fallback := BuildCustomPropertyTable(ss, cfg.CustomPropertyPrefix).Usages()
	if total == 0 {
		return nil
	}

	percent := float64(fallback) * 100 / float64(total)
	a := []Finding{{
		Severity: Info,
		Category: CategoryFallbackCoverage,
		Message:  fmt.Sprintf("%d of %d var() references have a fallback (%.1f%%)", fallback, total, percent),
	}}
	if percent < cfg.FallbackThresholdPercent {
		a = append(a, Finding{
			Severity: Warning,
			Category: CategoryFallbackCoverage,
			Message:  fmt.Sprintf("fallback coverage %.1f%% is below %.1f%%", percent, cfg.FallbackThresholdPercent),
		})
	}
	return a
}

// SelectorComplexity reports selectors made of more compound selectors than
// the configured threshold.
type SelectorComplexity struct{}

func (*SelectorComplexity) Name() string { return CategorySelectorComplexity }

func (*SelectorComplexity) Run(ss *ast.StyleSheet, cfg Config) []Finding {
	if cfg.SelectorDepthThreshold <= 0 {
		return nil
	}

	var a []Finding
	ast.Walk(ss.Nodes, func(n ast.Node, _ int) bool {
		r, ok := n.(*ast.Rule)
		if !ok {
			return true
		}
		for _, sel := range r.Selectors {
			if depth := SelectorDepth(sel); depth > cfg.SelectorDepthThreshold {
				a = append(a, newFinding(Warning, CategorySelectorComplexity, r.Pos,
					"selector %q has depth %d (threshold %d)", sel, depth, cfg.SelectorDepthThreshold))
			}
		}
		return true
	})
	return a
}

// SelectorDepth returns the number of compound selectors in sel. Whitespace
// and the ">", "+" and "~" combinators separate compounds; whitespace inside
// attribute selectors, functional pseudo-classes and strings does not.
func SelectorDepth(sel string) int {
	var n, depth int
	in := false
	scanner.Segments(sel, func(class scanner.Class, text string) {
		if class == scanner.Comment {
			return
		}
		if class != scanner.Code {
			if !in {
				n, in = n+1, true
			}
			return
		}
		for i := 0; i < len(text); i++ {
			switch ch := text[i]; {
			case ch == '(' || ch == '[':
				depth++
			case (ch == ')' || ch == ']') && depth > 0:
				depth--
			case depth == 0 && (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '>' || ch == '+' || ch == '~'):
				in = false
				continue
			}
			if !in {
				n, in = n+1, true
			}
		}
	})
	return n
}

// Performance counts declarations of expensive properties, will-change,
// transform and transition. Counts above their threshold are warnings.
// The check never reports errors.
type Performance struct{}

func (*Performance) Name() string { return CategoryPerformance }

func (*Performance) Run(ss *ast.StyleSheet, cfg Config) []Finding {
	type counter struct {
		name      string
		threshold int
		count     int
		first     *ast.Declaration // first declaration over the threshold
	}

	names := make([]string, 0, len(cfg.ExpensiveProperties))
	for name := range cfg.ExpensiveProperties {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)

	var counters []*counter
	byName := make(map[string]*counter)
	add := func(name string, threshold int) {
		if byName[name] == nil {
			c := &counter{name: name, threshold: threshold}
			counters = append(counters, c)
			byName[name] = c
		}
	}
	for _, name := range names {
		add(name, thresholdOf(cfg.ExpensiveProperties, name))
	}
	add("will-change", cfg.WillChangeThreshold)
	add("transform", cfg.TransformThreshold)
	add("transition", cfg.TransitionThreshold)

	ast.Walk(ss.Nodes, func(n ast.Node, _ int) bool {
		d, ok := n.(*ast.Declaration)
		if !ok || d.Invalid {
			return true
		}
		name := unprefixed(strings.ToLower(d.Property))
		if strings.HasPrefix(name, "transition-") {
			name = "transition"
		}
		if c := byName[name]; c != nil {
			c.count++
			if c.threshold > 0 && c.count == c.threshold+1 {
				c.first = d
			}
		}
		return true
	})

	var a []Finding
	for _, c := range counters {
		if c.count == 0 {
			continue
		}
		if c.first != nil {
			a = append(a, newFinding(Warning, CategoryPerformance, c.first.Pos,
				"%s is declared %d times (threshold %d)", c.name, c.count, c.threshold))
			continue
		}
		a = append(a, Finding{
			Severity: Info,
			Category: CategoryPerformance,
			Message:  fmt.Sprintf("%s is declared %d times", c.name, c.count),
		})
	}
	return a
}

// thresholdOf looks up a threshold by case-insensitive property name.
func thresholdOf(m map[string]int, name string) int {
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return 0
}

// vendorPrefixes are the recognized vendor prefixes.
var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

// unprefixed returns name without its vendor prefix.
func unprefixed(name string) string {
	for _, prefix := range vendorPrefixes {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

func vendorPrefixed(name string) bool {
	return unprefixed(strings.ToLower(name)) != strings.ToLower(name)
}

// Features reports how often modern CSS features are used.
// All findings are informational.
type Features struct{}

func (*Features) Name() string { return CategoryFeatures }

// features lists the feature names in report order.
var features = []string{
	"grid",
	"flexbox",
	"media queries",
	"keyframes",
	"vendor prefixes",
	"reduced motion",
	"containment",
}

func (*Features) Run(ss *ast.StyleSheet, _ Config) []Finding {
	counts := make(map[string]int)
	ast.Walk(ss.Nodes, func(n ast.Node, _ int) bool {
		switch n := n.(type) {
		case *ast.AtRule:
			name := strings.ToLower(n.Name)
			switch unprefixed(name) {
			case "media":
				counts["media queries"]++
				if strings.Contains(strings.ToLower(n.Prelude), "prefers-reduced-motion") {
					counts["reduced motion"]++
				}
			case "keyframes":
				counts["keyframes"]++
			}
			if vendorPrefixed(name) {
				counts["vendor prefixes"]++
			}

		case *ast.Declaration:
			if n.Invalid || n.Custom() {
				return true
			}
			property := strings.ToLower(n.Property)
			value := strings.ToLower(n.Value)
			switch name := unprefixed(property); {
			case name == "display" && strings.Contains(value, "grid"):
				counts["grid"]++
			case name == "display" && strings.Contains(value, "flex"):
				counts["flexbox"]++
			case strings.HasPrefix(name, "grid-"):
				counts["grid"]++
			case strings.HasPrefix(name, "flex"):
				counts["flexbox"]++
			case name == "contain" || name == "content-visibility" || strings.HasPrefix(name, "contain-intrinsic"):
				counts["containment"]++
			}
			if vendorPrefixed(property) {
				counts["vendor prefixes"]++
			}
		}
		return true
	})

	var a []Finding
	for _, name := range features {
		if counts[name] > 0 {
			a = append(a, Finding{
				Severity: Info,
				Category: CategoryFeatures,
				Message:  fmt.Sprintf("%s: %d", name, counts[name]),
			})
		}
	}
	return a
}
