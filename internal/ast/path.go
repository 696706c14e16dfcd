package ast

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jppquery/jsonpath/value"
)

// PathElement is either a Name (string key) or an Index (array index)
// in a normalized path. Implemented by [NameElement] and [IndexElement].
type PathElement interface {
	pathElement()
	// writeNormalizedTo writes the element formatted as a normalized path
	// element to buf.
	writeNormalizedTo(buf *strings.Builder)
	// writePointerTo writes the element formatted as an RFC 6901 JSON Pointer
	// reference token to buf.
	writePointerTo(buf *strings.Builder)
}

// NameElement is a string key in a normalized path.
type NameElement string

func (NameElement) pathElement() {}

// writeNormalizedTo writes n to buf as ['name'] with proper escaping per
// RFC 9535 §2.7.
func (n NameElement) writeNormalizedTo(buf *strings.Builder) {
	buf.WriteString("['")
	for _, r := range string(n) {
		switch r {
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\'':
			buf.WriteString(`\'`)
		case '\\':
			buf.WriteString(`\\`)
		case '\x00', '\x01', '\x02', '\x03', '\x04', '\x05', '\x06', '\x07',
			'\x0b', '\x0e', '\x0f':
			fmt.Fprintf(buf, `\u000%x`, r)
		case '\x10', '\x11', '\x12', '\x13', '\x14', '\x15', '\x16', '\x17',
			'\x18', '\x19', '\x1a', '\x1b', '\x1c', '\x1d', '\x1e', '\x1f':
			fmt.Fprintf(buf, `\u00%x`, r)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteString("']")
}

// writePointerTo writes n to buf as an RFC 6901 JSON Pointer reference token,
// escaping ~ as ~0 and / as ~1.
func (n NameElement) writePointerTo(buf *strings.Builder) {
	s := strings.ReplaceAll(string(n), "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	buf.WriteString(s)
}

// IndexElement is an array index in a normalized path.
type IndexElement int

func (IndexElement) pathElement() {}

// writeNormalizedTo writes i to buf as [N].
func (i IndexElement) writeNormalizedTo(buf *strings.Builder) {
	buf.WriteByte('[')
	buf.WriteString(strconv.Itoa(int(i)))
	buf.WriteByte(']')
}

// writePointerTo writes i to buf as its decimal string.
func (i IndexElement) writePointerTo(buf *strings.Builder) {
	buf.WriteString(strconv.Itoa(int(i)))
}

// NormalizedPath is a sequence of Name/Index selectors per RFC 9535 §2.7.
type NormalizedPath []PathElement

// String returns the normalized path string, e.g. $['a'][0].
func (p NormalizedPath) String() string {
	var buf strings.Builder
	buf.WriteByte('$')
	for _, e := range p {
		e.writeNormalizedTo(&buf)
	}
	return buf.String()
}

// Pointer returns an RFC 6901 JSON Pointer string, e.g. /a/0.
func (p NormalizedPath) Pointer() string {
	var buf strings.Builder
	for _, e := range p {
		buf.WriteByte('/')
		e.writePointerTo(&buf)
	}
	return buf.String()
}

// Compare compares p to q and returns -1, 0, or 1. Indexes are always
// considered less than names.
func (p NormalizedPath) Compare(q NormalizedPath) int {
	minLen := min(len(p), len(q))

	for i := range minLen {
		v1, isName1 := p[i].(NameElement)
		v2, isName2 := q[i].(NameElement)

		if isName1 && isName2 {
			if x := cmp.Compare(string(v1), string(v2)); x != 0 {
				return x
			}
			continue
		}

		if isName1 {
			return 1 // name > index
		}
		if isName2 {
			return -1 // index < name
		}

		idx1 := p[i].(IndexElement)
		idx2 := q[i].(IndexElement)
		if x := cmp.Compare(int(idx1), int(idx2)); x != 0 {
			return x
		}
	}

	return cmp.Compare(len(p), len(q))
}

// MarshalText marshals p into its normalized path string. Implements
// [encoding.TextMarshaler].
func (p NormalizedPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// LocatedNode pairs a value with the [NormalizedPath] for its location
// within a JSON query argument.
type LocatedNode struct {
	Value value.Value
	Path  NormalizedPath
}

// extendPath creates a new path by appending elem to path. The original
// path is not modified.
func extendPath(path NormalizedPath, elem PathElement) NormalizedPath {
	return append(slices.Clone(path), elem)
}
