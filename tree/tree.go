// Package tree implements the in-memory tree materialization of
// spec.md §4.6: a consumer/error-handler pair that can be installed on
// a walk.Engine to assemble the emitted entries into a navigable node
// tree, plus the error list that walk could not resolve on its own.
//
// tree depends only on attr, extract (for the Supplier type) and
// walkerr, never on walk, so it stays usable standalone (e.g. against a hand-built
// stream of entries in a test) the same way extract stays independent
// of walk.
package tree

import (
	"path"
	"strings"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
	"github.com/fulmenhq/walktree/walkerr"
)

// Node is one entry in the materialized tree. A placeholder node (one
// created only to complete an intermediate path component, never
// itself emitted by the walk) has a nil Attrs.
type Node struct {
	Name     string
	Attrs    *attr.Bundle
	Parent   *Node
	Children map[string]*Node

	// childOrder preserves emission order for Children's iteration,
	// since spec.md §5's ordering guarantee ("entries are delivered in
	// the order produced by the enclosing walker") should survive
	// materialization.
	childOrder []string
}

func newNode(name string, parent *Node) *Node {
	return &Node{Name: name, Parent: parent, Children: make(map[string]*Node)}
}

// Child looks up a direct child by name.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.Children[name]
	return c, ok
}

// Path returns n's display path, matching the bare, root-prefix-free
// paths spec.md §3/§8 give the walk's own consumer: the tree root's
// path is "", and every descendant's path is its ancestors' names
// joined with "/", per spec.md §3's "(name, path, attributes,
// child-map keyed by name)" node shape.
func (n *Node) Path() string {
	if n.Parent == nil {
		return ""
	}
	return path.Join(n.Parent.Path(), n.Name)
}

// OrderedChildren returns n's children in first-seen order.
func (n *Node) OrderedChildren() []*Node {
	out := make([]*Node, 0, len(n.childOrder))
	for _, name := range n.childOrder {
		out = append(out, n.Children[name])
	}
	return out
}

// IsPlaceholder reports whether n was created only to bridge an
// intermediate path component and never received a real attribute
// bundle from the walk.
func (n *Node) IsPlaceholder() bool {
	return n.Attrs == nil
}

func (n *Node) addChild(name string) *Node {
	if existing, ok := n.Children[name]; ok {
		return existing
	}
	child := newNode(name, n)
	n.Children[name] = child
	n.childOrder = append(n.childOrder, name)
	return child
}

// ErrorRecord is one entry of Builder's read-only error list, per
// spec.md §4.6: "(path, message, cause, maybe-existing-node)".
type ErrorRecord struct {
	DisplayPath string
	Message     string
	Cause       error

	// Node is the tree node that existed at DisplayPath at the time of
	// the error, if any (e.g. the already-populated node a duplicate
	// emission collided with).
	Node *Node
}

// reentryError tags an error Builder.Consume itself raised (a
// duplicate leaf re-add), so Builder.OnError can recognise it coming
// back from the walk's error-handling path and re-raise it as fatal
// instead of recording it a second time, per spec.md §4.6 "if the
// originating stack indicates a self-referential re-entry ... re-raise
// as fatal".
type reentryError struct {
	cause error
}

func (e *reentryError) Error() string { return e.cause.Error() }
func (e *reentryError) Unwrap() error { return e.cause }

// Builder accumulates a Node tree and an error list from a sequence of
// walk emissions. The zero value is not usable; use NewBuilder.
type Builder struct {
	root   *Node
	errors []ErrorRecord
}

// NewBuilder creates a Builder whose root node is named rootName. A
// display path whose first whole component is rootName has that
// component stripped (see splitDisplayPath); the walk engine's own
// display paths carry no root component.
func NewBuilder(rootName string) *Builder {
	return &Builder{root: newNode(rootName, nil)}
}

// Root returns the tree's root node.
func (b *Builder) Root() *Node {
	return b.root
}

// Errors returns the accumulated, read-only error list.
func (b *Builder) Errors() []ErrorRecord {
	out := make([]ErrorRecord, len(b.errors))
	copy(out, b.errors)
	return out
}

// Consume implements the walk.Consumer signature: relativize
// displayPath against the tree root, walking components and creating
// placeholder intermediates, then assign attrs to the leaf. Re-adding
// a path that already has a real (non-placeholder) bundle is an error,
// per spec.md §4.6.
func (b *Builder) Consume(displayPath string, _ extract.Supplier, attrs *attr.Bundle) error {
	components := splitDisplayPath(displayPath, b.root.Name)
	if len(components) == 0 {
		if b.root.Attrs != nil {
			cause := walkerr.Newf(walkerr.CodeTreeReentry, "tree.consume", displayPath, "path already present in tree")
			return &reentryError{cause: cause}
		}
		b.root.Attrs = attrs
		return nil
	}
	node := b.root
	for i, name := range components {
		last := i == len(components)-1
		if !last {
			node = node.addChild(name)
			continue
		}
		child := node.addChild(name)
		if child.Attrs != nil {
			cause := walkerr.Newf(walkerr.CodeTreeReentry, "tree.consume", displayPath, "path already present in tree")
			return &reentryError{cause: cause}
		}
		child.Attrs = attrs
		node = child
	}
	return nil
}

// OnError implements the walk.ErrorHandler signature. A *reentryError
// escaping back from the walk's own error-handling path (this
// Builder's own Consume error, re-raised by the engine because nothing
// downstream swallowed it) is re-raised as fatal; every other error is
// recorded and traversal continues.
func (b *Builder) OnError(displayPath string, _ *attr.Bundle, message string, cause error) error {
	if re, ok := cause.(*reentryError); ok {
		return re
	}

	existing, _ := b.lookup(displayPath)
	b.errors = append(b.errors, ErrorRecord{
		DisplayPath: displayPath,
		Message:     message,
		Cause:       cause,
		Node:        existing,
	})
	return nil
}

func (b *Builder) lookup(displayPath string) (*Node, bool) {
	components := splitDisplayPath(displayPath, b.root.Name)
	node := b.root
	for _, name := range components {
		child, ok := node.Child(name)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// splitDisplayPath strips rootName from the front of displayPath, when
// it appears there as a whole leading path component (not merely a
// string prefix), and returns the remaining "/"-separated components.
// The walk engine's own display paths are already root-prefix-free;
// MakeTree builds with an empty rootName and names the root only after
// the walk, so nothing is stripped from them. Stripping exists so Builder.Consume also
// accepts the older, explicitly rootName-prefixed path form that this
// package's own tests and callers outside the engine use directly.
func splitDisplayPath(displayPath, rootName string) []string {
	trimmed := strings.Trim(displayPath, "/")
	if rootName != "" {
		if trimmed == rootName {
			trimmed = ""
		} else if rest, ok := strings.CutPrefix(trimmed, rootName+"/"); ok {
			trimmed = rest
		}
	}
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

