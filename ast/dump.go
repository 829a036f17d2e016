package ast

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"
)

// Dump renders the structure of the stylesheet as an indented tree.
// It is meant for debugging and test failure output.
func Dump(s *StyleSheet) string {
	printer := tp.New()
	printer.SetValue("stylesheet")
	for _, n := range s.Nodes {
		dumpNode(printer, n)
	}
	for _, d := range s.Diagnostics {
		printer.AddMetaNode("diagnostic", fmt.Sprintf("%s @%s", d.Kind, d.Pos))
	}
	return printer.String()
}

func dumpNode(printer tp.Tree, n Node) {
	switch n := n.(type) {
	case *Comment:
		text := n.Text
		if r := []rune(text); len(r) > 40 {
			text = string(r[:37]) + "..."
		}
		if n.Preserved {
			printer.AddMetaNode("preserved", text)
			return
		}
		printer.AddNode(text)
	case *Declaration:
		printer.AddNode(n.String())
	case *Rule:
		dumpBlock(printer.AddBranch(strings.Join(n.Selectors, ", ")), n.Block)
	case *AtRule:
		label := "@" + n.Name
		if n.Prelude != "" {
			label += " " + n.Prelude
		}
		if n.Block == nil {
			printer.AddNode(label + ";")
			return
		}
		dumpBlock(printer.AddBranch(label), n.Block)
	}
}

func dumpBlock(branch tp.Tree, b *Block) {
	if b == nil {
		return
	}
	if b.Unclosed {
		branch.SetMetaValue("unclosed")
	}
	for _, n := range b.Nodes {
		dumpNode(branch, n)
	}
}
