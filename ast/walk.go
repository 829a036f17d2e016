package ast

// Visitor is called for every node by Walk. Returning false skips the
// children of the node.
type Visitor func(n Node, depth int) bool

// Walk traverses nodes depth-first in source order.
func Walk(nodes []Node, fn Visitor) {
	walk(nodes, 0, fn)
}

func walk(nodes []Node, depth int, fn Visitor) {
	for _, n := range nodes {
		if !fn(n, depth) {
			continue
		}
		if b := blockOf(n); b != nil {
			walk(b.Nodes, depth+1, fn)
		}
	}
}

// blockOf returns the block owned by n, if any.
func blockOf(n Node) *Block {
	switch n := n.(type) {
	case *Rule:
		return n.Block
	case *AtRule:
		return n.Block
	}
	return nil
}

// Clone returns a deep copy of the stylesheet.
func (s *StyleSheet) Clone() *StyleSheet {
	if s == nil {
		return nil
	}
	other := &StyleSheet{Nodes: cloneNodes(s.Nodes)}
	if s.Diagnostics != nil {
		other.Diagnostics = append([]Diagnostic(nil), s.Diagnostics...)
	}
	return other
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	a := make([]Node, len(nodes))
	for i, n := range nodes {
		a[i] = cloneNode(n)
	}
	return a
}

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case *Comment:
		other := *n
		return &other
	case *Declaration:
		other := *n
		return &other
	case *Rule:
		other := *n
		other.Selectors = append([]string(nil), n.Selectors...)
		other.Block = cloneBlock(n.Block)
		return &other
	case *AtRule:
		other := *n
		other.Block = cloneBlock(n.Block)
		return &other
	}
	return n
}

func cloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	other := *b
	other.Nodes = cloneNodes(b.Nodes)
	return &other
}

// Equal returns true if a and b have the same structure and text.
// Source positions and diagnostics are ignored.
func Equal(a, b *StyleSheet) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equalNodes(a.Nodes, b.Nodes)
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalNode(a, b Node) bool {
	switch a := a.(type) {
	case *Comment:
		b, ok := b.(*Comment)
		return ok && a.Text == b.Text && a.Preserved == b.Preserved
	case *Declaration:
		b, ok := b.(*Declaration)
		return ok && a.Property == b.Property && a.Value == b.Value &&
			a.Important == b.Important && a.Invalid == b.Invalid && a.Raw == b.Raw
	case *Rule:
		b, ok := b.(*Rule)
		if !ok || len(a.Selectors) != len(b.Selectors) {
			return false
		}
		for i := range a.Selectors {
			if a.Selectors[i] != b.Selectors[i] {
				return false
			}
		}
		return equalBlock(a.Block, b.Block)
	case *AtRule:
		b, ok := b.(*AtRule)
		return ok && a.Name == b.Name && a.Prelude == b.Prelude && equalBlock(a.Block, b.Block)
	}
	return false
}

func equalBlock(a, b *Block) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Unclosed == b.Unclosed && equalNodes(a.Nodes, b.Nodes)
}
