package ast

import (
	"strings"

	"github.com/jppquery/jsonpath/value"
)

// Segment represents a child or descendant segment as defined in
// RFC 9535 §1.4.2. A segment holds one or more selectors.
type Segment struct {
	selectors  []Selector
	descendant bool
}

// Child creates a child [Segment] that applies selectors to direct children.
func Child(sel ...Selector) Segment {
	return Segment{selectors: sel}
}

// Descendant creates a descendant [Segment] that applies selectors recursively
// to all descendants.
func Descendant(sel ...Selector) Segment {
	return Segment{selectors: sel, descendant: true}
}

// Selectors returns the segment's selectors.
func (s *Segment) Selectors() []Selector { return s.selectors }

// IsDescendant reports whether the segment is a descendant segment.
func (s *Segment) IsDescendant() bool { return s.descendant }

// IsSingular reports whether the segment selects at most one node.
// A segment is singular only if it is a child segment with exactly one
// singular selector.
func (s *Segment) IsSingular() bool {
	if s.descendant || len(s.selectors) != 1 {
		return false
	}
	return s.selectors[0].IsSingular()
}

// writeTo writes the canonical string representation of the segment to buf.
// Child segments format as [<selectors>]; descendant segments as ..[<selectors>].
func (s *Segment) writeTo(buf *strings.Builder) {
	if s.descendant {
		buf.WriteString("..")
	}
	buf.WriteByte('[')
	for i := range s.selectors {
		if i > 0 {
			buf.WriteByte(',')
		}
		s.selectors[i].writeTo(buf)
	}
	buf.WriteByte(']')
}

// String returns the canonical string representation of the segment.
func (s *Segment) String() string {
	var buf strings.Builder
	s.writeTo(&buf)
	return buf.String()
}

// Apply applies the segment to a list of nodes and returns the result.
// This and [Segment.ApplyLocated] are the only two places that walk a
// segment over a node list: the root package's Select/SelectLocated and
// filter sub-expression evaluation both call through here rather than
// each keeping their own copy of this walk.
func (s *Segment) Apply(nodes []value.Value, root value.Value) []value.Value {
	if len(nodes) == 0 {
		return nodes
	}

	result := make([]value.Value, 0, len(nodes))
	if s.descendant {
		for _, node := range nodes {
			result = appendDescendant(result, s.selectors, node, root)
		}
	} else {
		for _, node := range nodes {
			result = appendSelectors(result, s.selectors, node, root)
		}
	}
	return result
}

// ApplyLocated is the located variant of Apply.
func (s *Segment) ApplyLocated(nodes []*LocatedNode, root value.Value) []*LocatedNode {
	if len(nodes) == 0 {
		return nodes
	}

	result := make([]*LocatedNode, 0, len(nodes))
	if s.descendant {
		for _, n := range nodes {
			result = appendDescendantLocated(result, s.selectors, n.Value, n.Path, root)
		}
	} else {
		for _, n := range nodes {
			result = appendSelectorsLocated(result, s.selectors, n.Value, n.Path, root)
		}
	}
	return result
}

// appendSelectors applies selectors to a single node and appends results.
func appendSelectors(out []value.Value, selectors []Selector, node, root value.Value) []value.Value {
	for i := range selectors {
		out = selectors[i].Apply(out, node, root)
	}
	return out
}

// appendDescendant applies selectors to node and all its descendants in
// pre-order (the node itself, then its children left to right). The
// traversal uses an explicit stack instead of recursion so arbitrarily
// deep documents cannot exhaust the goroutine stack; children are pushed
// in reverse so pops come off in document order.
func appendDescendant(out []value.Value, selectors []Selector, node, root value.Value) []value.Value {
	stack := []value.Value{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out = appendSelectors(out, selectors, n, root)

		switch n.Kind() {
		case value.KindObject:
			obj, _ := n.AsObject()
			keys := obj.Keys()
			for i := len(keys) - 1; i >= 0; i-- {
				v, _ := obj.Get(keys[i])
				stack = append(stack, v)
			}
		case value.KindArray:
			arr, _ := n.AsArray()
			for i := len(arr) - 1; i >= 0; i-- {
				stack = append(stack, arr[i])
			}
		}
	}
	return out
}

func appendSelectorsLocated(out []*LocatedNode, selectors []Selector, node value.Value, path NormalizedPath, root value.Value) []*LocatedNode {
	for i := range selectors {
		out = selectors[i].ApplyLocated(out, node, path, root)
	}
	return out
}

func appendDescendantLocated(out []*LocatedNode, selectors []Selector, node value.Value, path NormalizedPath, root value.Value) []*LocatedNode {
	stack := []*LocatedNode{{Value: node, Path: path}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out = appendSelectorsLocated(out, selectors, n.Value, n.Path, root)

		switch n.Value.Kind() {
		case value.KindObject:
			obj, _ := n.Value.AsObject()
			keys := obj.Keys()
			for i := len(keys) - 1; i >= 0; i-- {
				v, _ := obj.Get(keys[i])
				stack = append(stack, &LocatedNode{Value: v, Path: extendPath(n.Path, NameElement(keys[i]))})
			}
		case value.KindArray:
			arr, _ := n.Value.AsArray()
			for i := len(arr) - 1; i >= 0; i-- {
				stack = append(stack, &LocatedNode{Value: arr[i], Path: extendPath(n.Path, IndexElement(i))})
			}
		}
	}
	return out
}
