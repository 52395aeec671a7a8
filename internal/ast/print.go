package ast

import (
	"fmt"
	"strings"
)

// Print writes an indented tree dump of node and its descendants to w,
// mirroring the teacher's pkg/printer.Printer.Print in spirit (a recursive
// depth-first walk with two-space indents) but operating over Arena/NodeID
// instead of a tree-sitter cursor.
func Print(a *Arena, node NodeID, w func(string)) {
	printNode(a, node, 0, w)
}

func printNode(a *Arena, node NodeID, depth int, w func(string)) {
	if node == InvalidNode {
		w(strings.Repeat("  ", depth) + "<nil>")
		return
	}
	n := a.Get(node)
	label := n.Kind.String()
	if n.Lexeme != "" {
		label += fmt.Sprintf("(%s)", n.Lexeme)
	}
	w(strings.Repeat("  ", depth) + label)
	for _, child := range n.Children {
		printNode(a, child, depth+1, w)
	}
}
