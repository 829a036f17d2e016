// Package validator implements independent checks over the structural model.
package validator

import (
	"fmt"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/token"
)

// Severity represents how serious a finding is.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

var severities = [...]string{
	Info:    "info",
	Warning: "warning",
	Error:   "error",
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	if s >= 0 && int(s) < len(severities) {
		return severities[s]
	}
	return ""
}

// Categories reported by the checks.
const (
	CategoryBraceBalance       = "brace-balance"
	CategorySyntax             = "syntax"
	CategoryCustomProperties   = "custom-properties"
	CategoryFallbackCoverage   = "fallback-coverage"
	CategorySelectorComplexity = "selector-complexity"
	CategoryPerformance        = "performance"
	CategoryFeatures           = "features"
)

// Finding represents a single validation result.
// Span is nil for findings about the stylesheet as a whole.
type Finding struct {
	Severity Severity
	Category string
	Message  string
	Span     *token.Span
}

// String returns "severity category: message" with the span appended if set.
func (f Finding) String() string {
	s := fmt.Sprintf("%s %s: %s", f.Severity, f.Category, f.Message)
	if f.Span != nil {
		s += " @" + f.Span.String()
	}
	return s
}

// newFinding returns a finding located at span.
func newFinding(sev Severity, category string, span token.Span, format string, args ...interface{}) Finding {
	return Finding{Severity: sev, Category: category, Message: fmt.Sprintf(format, args...), Span: &span}
}

// Report represents the findings of a validation run.
// A report is never modified after it is built.
type Report struct {
	findings []Finding
}

// NewReport returns a report holding a copy of findings.
func NewReport(findings []Finding) *Report {
	return &Report{findings: copyFindings(findings)}
}

// Findings returns a copy of all findings in check order.
func (r *Report) Findings() []Finding {
	return copyFindings(r.findings)
}

func copyFindings(a []Finding) []Finding {
	if len(a) == 0 {
		return nil
	}
	other := make([]Finding, len(a))
	for i, f := range a {
		if f.Span != nil {
			span := *f.Span
			f.Span = &span
		}
		other[i] = f
	}
	return other
}

// Len returns the number of findings.
func (r *Report) Len() int { return len(r.findings) }

// Counts returns the number of findings per category.
func (r *Report) Counts() map[string]int {
	m := make(map[string]int)
	for _, f := range r.findings {
		m[f.Category]++
	}
	return m
}

// Errors returns the findings with Error severity.
func (r *Report) Errors() []Finding { return r.filter(Error) }

// Warnings returns the findings with Warning severity.
func (r *Report) Warnings() []Finding { return r.filter(Warning) }

// HasErrors returns true if any finding has Error severity.
func (r *Report) HasErrors() bool {
	for _, f := range r.findings {
		if f.Severity == Error {
			return true
		}
	}
	return false
}

func (r *Report) filter(sev Severity) []Finding {
	var a []Finding
	for _, f := range r.findings {
		if f.Severity == sev {
			a = append(a, f)
		}
	}
	return copyFindings(a)
}

// Config holds the thresholds used by the checks.
type Config struct {
	// Only custom properties starting with this prefix are checked.
	CustomPropertyPrefix string

	// Selectors with more compound selectors than this are reported.
	// Zero disables the check.
	SelectorDepthThreshold int

	// Expensive property names mapped to the number of declarations
	// allowed before a warning. Zero means unlimited.
	ExpensiveProperties map[string]int

	WillChangeThreshold int
	TransformThreshold  int
	TransitionThreshold int

	// Fallback coverage below this percentage is reported.
	FallbackThresholdPercent float64
}

// DefaultConfig returns the default check configuration.
func DefaultConfig() Config {
	return Config{
		CustomPropertyPrefix:   "--",
		SelectorDepthThreshold: 3,
		ExpensiveProperties: map[string]int{
			"box-shadow":      100,
			"filter":          20,
			"backdrop-filter": 20,
		},
		WillChangeThreshold:      10,
		FallbackThresholdPercent: 50,
	}
}

// Check represents an independent validation check.
type Check interface {
	Name() string
	Run(ss *ast.StyleSheet, cfg Config) []Finding
}

// All returns every check in canonical order.
func All() []Check {
	return []Check{
		&BraceBalance{},
		&Syntax{},
		&CustomProperties{},
		&FallbackCoverage{},
		&SelectorComplexity{},
		&Performance{},
		&Features{},
	}
}

// Run executes checks against ss and returns their findings as a report.
// All checks are run if none are given.
func Run(ss *ast.StyleSheet, cfg Config, checks ...Check) *Report {
	if len(checks) == 0 {
		checks = All()
	}
	var findings []Finding
	for _, c := range checks {
		findings = append(findings, c.Run(ss, cfg)...)
	}
	return &Report{findings: findings}
}
