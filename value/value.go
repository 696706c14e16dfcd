// Package value provides the host JSON data model assumed by RFC 9535:
// Null, Bool, Number, String, Array, and insertion-ordered Object. It
// exists because Go's builtin map type does not preserve insertion
// order, which JSONPath's wildcard and descendant traversal require for
// deterministic results.
package value

import (
	"bytes"
	"fmt"
	"iter"
	"math"

	"github.com/go-json-experiment/json/jsontext"
)

// Kind identifies the JSON type held by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the human-readable name of k.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is an immutable JSON value: Null, Bool, Number, String, Array, or
// Object. The zero Value is Null. Arrays and Objects are held by
// reference, so copying a Value does not copy the underlying collection.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a JSON boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a JSON number value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a JSON string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a JSON array value wrapping elems. elems is not copied.
func Array(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// FromObject returns a JSON object value wrapping obj.
func FromObject(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind reports the type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns v's boolean value and true if v is a [KindBool].
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsFloat64 returns v's numeric value and true if v is a [KindNumber].
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsString returns v's string value and true if v is a [KindString].
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsArray returns v's elements and true if v is a [KindArray].
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns v's members and true if v is a [KindObject].
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Len returns the number of elements or members in v, or -1 if v is not
// an array, object, or string.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len([]rune(v.s))
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return -1
	}
}

// Truthy reports whether v is truthy per RFC 9535 logical-expression
// rules: false, null, 0, "", [], and {} are falsy; everything else is
// truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr) != 0
	case KindObject:
		return v.obj.Len() != 0
	default:
		return false
	}
}

// SameType reports whether a and b have comparable JSON types for
// ordering purposes: both numbers, both strings, both booleans, or both
// null. Arrays and objects are never "same type" for ordering (they
// support only structural equality).
func SameType(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		return true
	}
	return a.kind == b.kind && (a.kind == KindString || a.kind == KindBool || a.kind == KindNull)
}

// Less reports whether a < b. Only meaningful when [SameType] holds for
// numbers and strings; other types have no ordering and return false.
func Less(a, b Value) bool {
	switch {
	case a.kind == KindNumber && b.kind == KindNumber:
		return a.n < b.n
	case a.kind == KindString && b.kind == KindString:
		return a.s < b.s
	default:
		return false
	}
}

// Equal reports whether a and b are equal per RFC 9535 §2.3.5.2.2:
// numbers compare by value, strings and booleans by value, null equals
// null, and arrays/objects compare structurally (order matters for
// arrays; for objects only member sets and values matter).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, k := range a.obj.Keys() {
			av, _ := a.obj.Get(k)
			bv, ok := b.obj.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Object is an insertion-ordered mapping from string keys to [Value]s.
// The zero Object is not usable; create one with [NewObject].
type Object struct {
	keys []string
	idx  map[string]int
	vals []Value
}

// NewObject creates an empty [Object].
func NewObject() *Object {
	return &Object{idx: make(map[string]int)}
}

// Set inserts or updates key. New keys are appended at the end;
// updating an existing key keeps its original position, matching how
// a standard JSON decoder handles duplicate members (last value wins,
// first position kept).
func (o *Object) Set(key string, v Value) {
	if i, ok := o.idx[key]; ok {
		o.vals[i] = v
		return
	}
	o.idx[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.idx[key]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

// Len returns the number of members in o.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the member names in insertion order. The returned slice
// must not be mutated.
func (o *Object) Keys() []string { return o.keys }

// All returns an iterator over (key, value) pairs in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, k := range o.keys {
			if !yield(k, o.vals[i]) {
				return
			}
		}
	}
}

// Decode parses data as a single JSON value, preserving object member
// order exactly as written.
func Decode(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("value: decode: %w", err)
	}
	return v, nil
}

// decodeValue reads a single JSON value (object, array, or scalar) from dec.
func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

// decodeFromToken converts an already-read token into a Value, recursing
// into dec for composite kinds.
func decodeFromToken(dec *jsontext.Decoder, tok jsontext.Token) (Value, error) {
	switch tok.Kind() {
	case 'n':
		return Null(), nil
	case 'f':
		return Bool(false), nil
	case 't':
		return Bool(true), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return numberValue(tok.Float()), nil
	case '{':
		obj := NewObject()
		for dec.PeekKind() != '}' {
			nameTok, err := dec.ReadToken()
			if err != nil {
				return Value{}, err
			}
			name := nameTok.String()
			val, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			obj.Set(name, val)
		}
		if _, err := dec.ReadToken(); err != nil { // consume '}'
			return Value{}, err
		}
		return FromObject(obj), nil
	case '[':
		var elems []Value
		for dec.PeekKind() != ']' {
			val, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, val)
		}
		if _, err := dec.ReadToken(); err != nil { // consume ']'
			return Value{}, err
		}
		return Array(elems), nil
	default:
		return Value{}, fmt.Errorf("value: unexpected token kind %q", tok.Kind())
	}
}

// numberValue coerces a non-finite float (which cannot occur from a
// conforming JSON number but could arise from pathological input) to
// Null, matching how JSONPath literal numbers are normalized.
func numberValue(f float64) Value {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Null()
	}
	return Number(f)
}
