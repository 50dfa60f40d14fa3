package tree

import (
	"fmt"
	"strings"
)

// NoLength marks an edge without a branch length.
const NoLength = -1.0

// Node is a tree vertex. Length is the length of the edge to the parent, or
// NoLength if absent. Label may name a taxon or carry an unrelated value
// such as a support score on internal nodes.
type Node struct {
	Label    string
	Length   float64
	Children []*Node
}

// Leaf returns a labeled leaf.
func Leaf(label string, length float64) *Node {
	return &Node{Label: label, Length: length}
}

// Inner returns an unlabeled internal node with the given children.
func Inner(length float64, children ...*Node) *Node {
	return &Node{Length: length, Children: children}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// HasLength reports whether the edge to the parent carries a length.
func (n *Node) HasLength() bool { return n.Length >= 0 }

// Weight returns the edge length, or 1 when there is none.
func (n *Node) Weight() float64 {
	if !n.HasLength() {
		return 1
	}
	return n.Length
}

// Tree is a rooted tree. Name is optional.
type Tree struct {
	Name string
	Root *Node
}

// Walk visits every node below the root in post-order. fn receives the node
// and its parent; the root itself is visited last with a nil parent. Walking
// stops at the first error.
func (t *Tree) Walk(fn func(n, parent *Node) error) error {
	if t.Root == nil {
		return nil
	}
	return walk(t.Root, nil, fn)
}

func walk(n, parent *Node, fn func(n, parent *Node) error) error {
	for _, c := range n.Children {
		if err := walk(c, n, fn); err != nil {
			return err
		}
	}
	return fn(n, parent)
}

// Leaves returns the leaves in left-to-right order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	_ = t.Walk(func(n, _ *Node) error {
		if n.IsLeaf() {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// Edges returns the number of edges.
func (t *Tree) Edges() int {
	count := 0
	_ = t.Walk(func(_, parent *Node) error {
		if parent != nil {
			count++
		}
		return nil
	})
	return count
}

// String formats the tree in Newick notation.
func (t *Tree) String() string {
	if t.Root == nil {
		return ";"
	}
	var sb strings.Builder
	writeNewick(&sb, t.Root)
	sb.WriteByte(';')
	return sb.String()
}

func writeNewick(sb *strings.Builder, n *Node) {
	if !n.IsLeaf() {
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeNewick(sb, c)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(n.Label)
	if n.HasLength() {
		fmt.Fprintf(sb, ":%g", n.Length)
	}
}
