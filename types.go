package jsonpath

import (
	"iter"
	"slices"

	"github.com/jppquery/jsonpath/internal/ast"
	"github.com/jppquery/jsonpath/value"
)

// PathElement is either a Name (string key) or an Index (array index) in a
// normalized path. Implemented by [NameElement] and [IndexElement].
type PathElement = ast.PathElement

// NameElement is a string key in a normalized path.
type NameElement = ast.NameElement

// IndexElement is an array index in a normalized path.
type IndexElement = ast.IndexElement

// NormalizedPath is a sequence of Name/Index selectors per RFC 9535 §2.7.
type NormalizedPath = ast.NormalizedPath

// LocatedNode pairs a value with the [NormalizedPath] for its location within
// a JSON query argument.
type LocatedNode = ast.LocatedNode

// NodeList is a list of nodes selected by a JSONPath query. Each node
// represents a single JSON value selected from the JSON query argument.
type NodeList []value.Value

// All returns an iterator over all the nodes in list.
func (l NodeList) All() iter.Seq[value.Value] {
	return slices.Values(l)
}

// LocatedNodeList is a list of nodes selected by a JSONPath query, along with
// their [NormalizedPath] locations.
type LocatedNodeList []*LocatedNode

// All returns an iterator over all the located nodes in list.
func (l LocatedNodeList) All() iter.Seq[*LocatedNode] {
	return slices.Values(l)
}

// Values returns an iterator over all the node values in list.
func (l LocatedNodeList) Values() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for _, n := range l {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Paths returns an iterator over all the [NormalizedPath] values in list.
func (l LocatedNodeList) Paths() iter.Seq[NormalizedPath] {
	return func(yield func(NormalizedPath) bool) {
		for _, n := range l {
			if !yield(n.Path) {
				return
			}
		}
	}
}

// Deduplicate deduplicates the nodes in list based on their [NormalizedPath]
// values, modifying the contents of list. It returns the modified list, which
// may have a shorter length, and zeroes the elements between the new length
// and the original length.
func (l LocatedNodeList) Deduplicate() LocatedNodeList {
	if len(l) <= 1 {
		return l
	}

	seen := make(map[string]struct{}, len(l))
	uniq := l[:0]
	for _, n := range l {
		p := n.Path.String()
		if _, exists := seen[p]; !exists {
			seen[p] = struct{}{}
			uniq = append(uniq, n)
		}
	}
	clear(l[len(uniq):])
	return slices.Clip(uniq)
}

// Sort sorts list by the [NormalizedPath] of each node.
func (l LocatedNodeList) Sort() {
	slices.SortFunc(l, func(a, b *LocatedNode) int {
		return a.Path.Compare(b.Path)
	})
}
