// Package jsonpath implements RFC 9535 JSONPath: Query Expressions for JSON.
package jsonpath

import (
	"errors"

	"github.com/jppquery/jsonpath/internal/ast"
	"github.com/jppquery/jsonpath/value"
)

// Sentinel errors. Evaluation itself never fails: once an expression has
// parsed, every query resolves to a (possibly empty) node list.
var (
	// ErrPathParse is returned when a JSONPath expression cannot be parsed.
	ErrPathParse = errors.New("jsonpath: parse error")
	// ErrUnmarshal is returned when JSON decoding fails in QueryJSON functions.
	ErrUnmarshal = errors.New("jsonpath: unmarshal error")
)

// ParseError describes a failure to parse a JSONPath expression: a
// human-readable message and the byte offset of the offending token, or
// the length of the expression when the failure is at end of input.
// Every error returned by [Parse] matches [ErrPathParse] via [errors.Is]
// and *ParseError via [errors.As].
type ParseError struct {
	Message string
	Offset  int
	err     error
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.err }

// Path is a compiled RFC 9535 JSONPath query. Safe for concurrent use.
type Path struct {
	query *ast.PathQuery
}

// Select returns all nodes matched by p in input. Segment and selector
// evaluation lives entirely in [github.com/jppquery/jsonpath/internal/ast];
// Select only seeds the walk with input as both the current and root node.
func (p *Path) Select(input value.Value) NodeList {
	if p.query == nil {
		return nil
	}
	return NodeList(p.query.Select(input, input))
}

// SelectLocated returns matched nodes paired with their normalized paths.
func (p *Path) SelectLocated(input value.Value) LocatedNodeList {
	if p.query == nil {
		return nil
	}
	return LocatedNodeList(p.query.SelectLocated(input, input, nil))
}

// String returns the canonical string representation of p.
func (p *Path) String() string {
	if p.query == nil {
		return ""
	}
	return p.query.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p *Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	path, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = *path
	return nil
}

// Parse compiles a JSONPath expression. Returns ErrPathParse on failure.
func Parse(expr string) (*Path, error) {
	p := NewParser()
	return p.Parse(expr)
}

// MustParse compiles a JSONPath expression. Panics on failure.
func MustParse(expr string) *Path {
	path, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return path
}

// Valid reports whether expr is a syntactically valid JSONPath expression.
func Valid(expr string) bool {
	_, err := Parse(expr)
	return err == nil
}

// Query parses expr and evaluates it against src in one call. Callers
// evaluating the same expression against many documents should [Parse]
// once and reuse the [Path] instead.
func Query(expr string, src []byte) (NodeList, error) {
	path, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return QueryJSON(src, path)
}

// QueryJSON decodes src and evaluates path against it. Decoding preserves
// object member order via [value.Decode].
func QueryJSON(src []byte, path *Path) (NodeList, error) {
	v, err := value.Decode(src)
	if err != nil {
		return nil, errors.Join(ErrUnmarshal, err)
	}
	return path.Select(v), nil
}

// QueryJSONLocated is the located variant of QueryJSON.
func QueryJSONLocated(src []byte, path *Path) (LocatedNodeList, error) {
	v, err := value.Decode(src)
	if err != nil {
		return nil, errors.Join(ErrUnmarshal, err)
	}
	return path.SelectLocated(v), nil
}
