// Package syntax provides read-only access to parsed PHP syntax trees.
//
// The lint engine never builds trees itself; it consumes them from a
// Provider. The default provider is backed by the tree-sitter PHP
// grammar, which produces a tolerant, immutable tree with byte-accurate
// node ranges: sibling ranges are non-overlapping and strictly
// increasing, and a parent's range fully contains its children.
package syntax

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree is an immutable parse result for a single file.
//
// The tree owns the source buffer and the underlying tree-sitter tree;
// nodes handed out by Root and traversal helpers stay valid for the
// lifetime of the Tree and must never be mutated.
type Tree struct {
	path       string
	src        []byte
	tree       *sitter.Tree
	lineStarts []int
}

// newTree wraps a parsed tree-sitter tree.
func newTree(path string, src []byte, tree *sitter.Tree) *Tree {
	return &Tree{
		path:       path,
		src:        src,
		tree:       tree,
		lineStarts: buildLineIndex(src),
	}
}

// Path returns the file path this tree was parsed from.
func (t *Tree) Path() string { return t.path }

// Source returns the original source buffer. Callers must not modify it.
func (t *Tree) Source() []byte { return t.src }

// Len returns the length of the source buffer in bytes.
func (t *Tree) Len() int { return len(t.src) }

// Root returns the root node of the tree.
func (t *Tree) Root() *Node {
	return &Node{inner: t.tree.RootNode(), tree: t}
}

// Position is a 1-based line/column pair. Column counts bytes, matching
// how most PHP tooling reports locations.
type Position struct {
	Line   int
	Column int
}

// PositionAt converts a byte offset into a line/column position.
// Offsets past the end of the buffer clamp to the final position.
func (t *Tree) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.src) {
		offset = len(t.src)
	}
	// Binary search for the last line start <= offset.
	i := sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	}) - 1
	return Position{Line: i + 1, Column: offset - t.lineStarts[i] + 1}
}

// LineAt returns the full text of the 1-based line containing offset,
// without the trailing newline.
func (t *Tree) LineAt(offset int) string {
	pos := t.PositionAt(offset)
	start := t.lineStarts[pos.Line-1]
	end := len(t.src)
	if pos.Line < len(t.lineStarts) {
		end = t.lineStarts[pos.Line] - 1
	}
	return strings.TrimRight(string(t.src[start:end]), "\r")
}

func buildLineIndex(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Node is a single node in a parsed tree. Nodes are cheap value wrappers
// around the underlying tree-sitter node and may be copied freely.
type Node struct {
	inner *sitter.Node
	tree  *Tree
}

// Kind returns the node's grammar type tag (e.g. "if_statement").
func (n *Node) Kind() string { return n.inner.Type() }

// Start returns the byte offset where the node's range begins.
func (n *Node) Start() int { return int(n.inner.StartByte()) }

// End returns the byte offset just past the node's range.
func (n *Node) End() int { return int(n.inner.EndByte()) }

// Text returns the source text covered by the node.
func (n *Node) Text() string { return n.inner.Content(n.tree.src) }

// IsNamed reports whether the node is a named grammar node, as opposed
// to an anonymous token like "(" or ";".
func (n *Node) IsNamed() bool { return n.inner.IsNamed() }

// HasError reports whether the node or any descendant failed to parse.
// The tree is tolerant: rules still run over the well-formed parts.
func (n *Node) HasError() bool { return n.inner.HasError() }

// ChildCount returns the number of children, including anonymous tokens.
func (n *Node) ChildCount() int { return int(n.inner.ChildCount()) }

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	child := n.inner.Child(i)
	if child == nil {
		return nil
	}
	return &Node{inner: child, tree: n.tree}
}

// NamedChildCount returns the number of named children.
func (n *Node) NamedChildCount() int { return int(n.inner.NamedChildCount()) }

// NamedChild returns the i-th named child, or nil when out of range.
func (n *Node) NamedChild(i int) *Node {
	child := n.inner.NamedChild(i)
	if child == nil {
		return nil
	}
	return &Node{inner: child, tree: n.tree}
}

// ChildByField returns the child occupying the named grammar field
// (e.g. "condition" on an if_statement), or nil when absent.
func (n *Node) ChildByField(name string) *Node {
	child := n.inner.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return &Node{inner: child, tree: n.tree}
}

// Parent returns the parent node, or nil at the root.
func (n *Node) Parent() *Node {
	parent := n.inner.Parent()
	if parent == nil {
		return nil
	}
	return &Node{inner: parent, tree: n.tree}
}

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree { return n.tree }

// Walk traverses the subtree rooted at n in pre-order. The visit
// function returning false prunes the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		Walk(n.Child(i), visit)
	}
}
