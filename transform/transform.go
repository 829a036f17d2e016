// Package transform implements composable passes over the structural model.
//
// Every pass returns a new stylesheet and leaves its argument untouched, so a
// caller can keep the model it validated while experimenting with passes.
package transform

import (
	"strings"

	"github.com/benbjohnson/cssvet/ast"
)

// Pass names as used in configuration files.
const (
	CommentStripName       = "comment-strip"
	EmptyRuleElisionName   = "empty-rule-elision"
	BalanceRepairName      = "balance-repair"
	DedupeDeclarationsName = "dedupe-declarations"
	ShortenValuesName      = "shorten-values"
)

// Names returns the names of all passes in canonical order.
func Names() []string {
	return []string{
		CommentStripName,
		EmptyRuleElisionName,
		DedupeDeclarationsName,
		ShortenValuesName,
		BalanceRepairName,
	}
}

// Pass represents a single transformation of a stylesheet.
type Pass interface {
	Name() string
	Apply(ss *ast.StyleSheet) *ast.StyleSheet
}

// DefaultPasses returns the default pipeline: comment stripping followed by
// empty rule elision. Comments accepted by preserve are kept.
func DefaultPasses(preserve Predicate) []Pass {
	return []Pass{
		&CommentStrip{Preserve: preserve},
		&EmptyRuleElision{},
	}
}

// Apply runs passes over ss in order and returns the result.
// A nil stylesheet is returned unchanged.
func Apply(ss *ast.StyleSheet, passes ...Pass) *ast.StyleSheet {
	if ss == nil {
		return nil
	}
	for _, p := range passes {
		ss = p.Apply(ss)
	}
	return ss
}

// filterNodes rebuilds a node list, recursing into blocks first.
// fn returns the replacement node or nil to drop the node.
func filterNodes(nodes []ast.Node, fn func(n ast.Node, depth int) ast.Node) []ast.Node {
	return filter(nodes, 0, fn)
}

func filter(nodes []ast.Node, depth int, fn func(n ast.Node, depth int) ast.Node) []ast.Node {
	var other []ast.Node
	for _, n := range nodes {
		if b := blockOf(n); b != nil {
			b.Nodes = filter(b.Nodes, depth+1, fn)
		}
		if n = fn(n, depth); n != nil {
			other = append(other, n)
		}
	}
	return other
}

// blocks calls fn for every block in nodes, innermost first.
func blocks(nodes []ast.Node, fn func(b *ast.Block)) {
	for _, n := range nodes {
		if b := blockOf(n); b != nil {
			blocks(b.Nodes, fn)
			fn(b)
		}
	}
}

func blockOf(n ast.Node) *ast.Block {
	switch n := n.(type) {
	case *ast.Rule:
		return n.Block
	case *ast.AtRule:
		return n.Block
	}
	return nil
}

// EmptyRuleElision removes rules that have no declarations and no nested
// rules. Elision works bottom-up so a parent left empty by the removal of its
// children is removed as well. Grouping at-rules such as @media are removed
// when their block is empty.
//
// Blocks that were never closed in the source are kept so that the defect
// stays visible in the output.
type EmptyRuleElision struct{}

func (*EmptyRuleElision) Name() string { return EmptyRuleElisionName }

func (*EmptyRuleElision) Apply(ss *ast.StyleSheet) *ast.StyleSheet {
	other := ss.Clone()
	other.Nodes = filterNodes(other.Nodes, func(n ast.Node, _ int) ast.Node {
		switch n := n.(type) {
		case *ast.Rule:
			if n.Block != nil && n.Block.Empty() && !n.Block.Unclosed {
				return nil
			}
		case *ast.AtRule:
			if n.Block != nil && n.Block.Empty() && !n.Block.Unclosed && groupingAtRules[strings.ToLower(n.Name)] {
				return nil
			}
		}
		return n
	})
	return other
}

// groupingAtRules hold rules and carry no meaning when their block is empty.
var groupingAtRules = map[string]bool{
	"media":          true,
	"supports":       true,
	"container":      true,
	"document":       true,
	"-moz-document":  true,
	"scope":          true,
	"starting-style": true,
}

// BalanceRepair closes every block left open at the end of input.
//
// The repair is recorded by turning each unclosed-block diagnostic into a
// repaired-block diagnostic. Unmatched closing braces are never deleted.
type BalanceRepair struct{}

func (*BalanceRepair) Name() string { return BalanceRepairName }

func (*BalanceRepair) Apply(ss *ast.StyleSheet) *ast.StyleSheet {
	other := ss.Clone()
	blocks(other.Nodes, func(b *ast.Block) {
		b.Unclosed = false
	})
	for i, d := range other.Diagnostics {
		if d.Kind == ast.Unclosed {
			other.Diagnostics[i].Kind = ast.Repaired
			other.Diagnostics[i].Message = "block closed at end of input"
		}
	}
	return other
}

// DedupeDeclarations removes exact duplicate declarations within a block.
// The last occurrence is kept. Declarations that differ only in value are kept.
type DedupeDeclarations struct{}

func (*DedupeDeclarations) Name() string { return DedupeDeclarationsName }

func (*DedupeDeclarations) Apply(ss *ast.StyleSheet) *ast.StyleSheet {
	other := ss.Clone()
	blocks(other.Nodes, func(b *ast.Block) {
		b.Nodes = dedupe(b.Nodes)
	})
	return other
}

func dedupe(nodes []ast.Node) []ast.Node {
	type key struct {
		property, value string
		important       bool
	}
	last := make(map[key]int)
	for i, n := range nodes {
		if d, ok := n.(*ast.Declaration); ok && !d.Invalid {
			last[key{d.Property, d.Value, d.Important}] = i
		}
	}

	var other []ast.Node
	for i, n := range nodes {
		if d, ok := n.(*ast.Declaration); ok && !d.Invalid {
			if last[key{d.Property, d.Value, d.Important}] != i {
				continue
			}
		}
		other = append(other, n)
	}
	return other
}
