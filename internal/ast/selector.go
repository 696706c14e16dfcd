package ast

import (
	"strconv"
	"strings"

	"github.com/jppquery/jsonpath/value"
)

// SelectorKind identifies the variant stored in a [Selector].
type SelectorKind uint8

const (
	Name     SelectorKind = iota // member name selector
	Index                        // array index selector
	Slice                        // array slice selector
	Wildcard                     // wildcard selector
	Filter                       // filter selector
)

// Selector is a tagged union representing one of the five RFC 9535 selector
// types. Using a concrete struct (instead of an interface) keeps selector
// slices contiguous in memory for cache efficiency.
type Selector struct {
	Kind   SelectorKind
	Name   string      // KindName: the member name
	Index  int64       // KindIndex: the array index (may be negative)
	Slice  SliceArgs   // KindSlice
	Filter *FilterExpr // KindFilter
}

// SliceArgs holds the optional start, end, step for a slice selector.
type SliceArgs struct {
	Start    int64
	End      int64
	Step     int64
	HasStart bool
	HasEnd   bool
	HasStep  bool
}

// NameSelector returns a Selector for a member name.
func NameSelector(name string) Selector {
	return Selector{Kind: Name, Name: name}
}

// IndexSelector returns a Selector for an array index.
func IndexSelector(idx int64) Selector {
	return Selector{Kind: Index, Index: idx}
}

// SliceSelector returns a Selector for an array slice.
func SliceSelector(args SliceArgs) Selector {
	return Selector{Kind: Slice, Slice: args}
}

// WildcardSelector returns a wildcard Selector.
func WildcardSelector() Selector {
	return Selector{Kind: Wildcard}
}

// FilterSelector returns a filter Selector.
func FilterSelector(expr *FilterExpr) Selector {
	return Selector{Kind: Filter, Filter: expr}
}

// IsSingular reports whether the selector can select at most one node.
// Only name and index selectors are singular.
func (s *Selector) IsSingular() bool {
	return s.Kind == Name || s.Kind == Index
}

// writeTo writes the canonical string representation of s to buf.
func (s *Selector) writeTo(buf *strings.Builder) {
	switch s.Kind {
	case Name:
		buf.WriteString(strconv.Quote(s.Name))
	case Index:
		buf.WriteString(strconv.FormatInt(s.Index, 10))
	case Slice:
		s.Slice.writeTo(buf)
	case Wildcard:
		buf.WriteByte('*')
	case Filter:
		buf.WriteByte('?')
		s.Filter.writeTo(buf)
	}
}

// String returns the canonical string representation of s.
func (s *Selector) String() string {
	var buf strings.Builder
	s.writeTo(&buf)
	return buf.String()
}

// Apply applies the selector to node, appending matching children to out.
// This is the single entry point for selector evaluation: both the
// top-level segment walk and filter sub-expression path evaluation call
// through it, so there is exactly one implementation of selector
// semantics in the module.
func (s *Selector) Apply(out []value.Value, node, root value.Value) []value.Value {
	switch s.Kind {
	case Name:
		if obj, ok := node.AsObject(); ok {
			if v, ok := obj.Get(s.Name); ok {
				out = append(out, v)
			}
		}
	case Index:
		if arr, ok := node.AsArray(); ok {
			if i, ok := normalizeIndex(s.Index, len(arr)); ok {
				out = append(out, arr[i])
			}
		}
	case Slice:
		if arr, ok := node.AsArray(); ok {
			out = appendSlice(out, arr, s.Slice)
		}
	case Wildcard:
		switch node.Kind() {
		case value.KindObject:
			obj, _ := node.AsObject()
			for _, k := range obj.Keys() {
				v, _ := obj.Get(k)
				out = append(out, v)
			}
		case value.KindArray:
			arr, _ := node.AsArray()
			out = append(out, arr...)
		}
	case Filter:
		switch node.Kind() {
		case value.KindObject:
			obj, _ := node.AsObject()
			for _, k := range obj.Keys() {
				v, _ := obj.Get(k)
				if s.Filter.Eval(v, root) {
					out = append(out, v)
				}
			}
		case value.KindArray:
			arr, _ := node.AsArray()
			for _, v := range arr {
				if s.Filter.Eval(v, root) {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// ApplyLocated is the located variant of Apply: it additionally tracks the
// normalized-path element leading to each result.
func (s *Selector) ApplyLocated(out []*LocatedNode, node value.Value, path NormalizedPath, root value.Value) []*LocatedNode {
	switch s.Kind {
	case Name:
		if obj, ok := node.AsObject(); ok {
			if v, ok := obj.Get(s.Name); ok {
				out = append(out, &LocatedNode{Value: v, Path: extendPath(path, NameElement(s.Name))})
			}
		}
	case Index:
		if arr, ok := node.AsArray(); ok {
			if i, ok := normalizeIndex(s.Index, len(arr)); ok {
				out = append(out, &LocatedNode{Value: arr[i], Path: extendPath(path, IndexElement(i))})
			}
		}
	case Slice:
		if arr, ok := node.AsArray(); ok {
			out = appendSliceLocated(out, arr, path, s.Slice)
		}
	case Wildcard:
		switch node.Kind() {
		case value.KindObject:
			obj, _ := node.AsObject()
			for _, k := range obj.Keys() {
				v, _ := obj.Get(k)
				out = append(out, &LocatedNode{Value: v, Path: extendPath(path, NameElement(k))})
			}
		case value.KindArray:
			arr, _ := node.AsArray()
			for i, v := range arr {
				out = append(out, &LocatedNode{Value: v, Path: extendPath(path, IndexElement(i))})
			}
		}
	case Filter:
		switch node.Kind() {
		case value.KindObject:
			obj, _ := node.AsObject()
			for _, k := range obj.Keys() {
				v, _ := obj.Get(k)
				if s.Filter.Eval(v, root) {
					out = append(out, &LocatedNode{Value: v, Path: extendPath(path, NameElement(k))})
				}
			}
		case value.KindArray:
			arr, _ := node.AsArray()
			for i, v := range arr {
				if s.Filter.Eval(v, root) {
					out = append(out, &LocatedNode{Value: v, Path: extendPath(path, IndexElement(i))})
				}
			}
		}
	}
	return out
}

// normalizeIndex converts a possibly-negative index into a non-negative
// array index, returning false if it is out of bounds.
func normalizeIndex(idx int64, length int) (int, bool) {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, false
	}
	return int(idx), true
}

// sliceIndices computes the ordered array indices selected by args for an
// array of the given length, per RFC 9535 §2.3.4.
func sliceIndices(args SliceArgs, length int) []int {
	if length == 0 {
		return nil
	}

	step := int64(1)
	if args.HasStep {
		step = args.Step
	}
	if step == 0 {
		return nil
	}

	var start, end int64
	if step > 0 {
		start = 0
		if args.HasStart {
			start = args.Start
		}
		end = int64(length)
		if args.HasEnd {
			end = args.End
		}
	} else {
		start = int64(length - 1)
		if args.HasStart {
			start = args.Start
		}
		end = -int64(length) - 1
		if args.HasEnd {
			end = args.End
		}
	}

	start, end = normalizeSliceBounds(start, end, step, int64(length))

	var indices []int
	if step > 0 {
		for i := start; i < end; i += step {
			if i >= 0 && i < int64(length) {
				indices = append(indices, int(i))
			}
		}
	} else {
		for i := start; i > end; i += step {
			if i >= 0 && i < int64(length) {
				indices = append(indices, int(i))
			}
		}
	}
	return indices
}

// normalizeSliceBounds normalizes start and end per RFC 9535 §2.3.4,
// handling negative indices and out-of-bounds values based on step
// direction.
func normalizeSliceBounds(start, end, step, length int64) (int64, int64) {
	if start < 0 {
		start += length
		if start < 0 && step > 0 {
			start = 0
		}
	} else if start >= length && step < 0 {
		start = length - 1
	}

	if end < 0 {
		end += length
		if end < 0 && step < 0 {
			end = -1
		}
	} else if end > length {
		end = length
	}

	if step > 0 {
		if start < 0 {
			start = 0
		}
		if start > length {
			start = length
		}
		if end < 0 {
			end = 0
		}
	} else {
		if start >= length {
			start = length - 1
		}
		if end >= length {
			end = length - 1
		}
	}

	return start, end
}

func appendSlice(out []value.Value, arr []value.Value, args SliceArgs) []value.Value {
	for _, i := range sliceIndices(args, len(arr)) {
		out = append(out, arr[i])
	}
	return out
}

func appendSliceLocated(out []*LocatedNode, arr []value.Value, path NormalizedPath, args SliceArgs) []*LocatedNode {
	for _, i := range sliceIndices(args, len(arr)) {
		out = append(out, &LocatedNode{Value: arr[i], Path: extendPath(path, IndexElement(i))})
	}
	return out
}

// writeTo writes the canonical slice notation (e.g. "1:5:2") to buf.
func (a *SliceArgs) writeTo(buf *strings.Builder) {
	if a.HasStart {
		buf.WriteString(strconv.FormatInt(a.Start, 10))
	}
	buf.WriteByte(':')
	if a.HasEnd {
		buf.WriteString(strconv.FormatInt(a.End, 10))
	}
	if a.HasStep {
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(a.Step, 10))
	}
}
