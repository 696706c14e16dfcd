package value

import (
	"bytes"

	"github.com/go-json-experiment/json/jsontext"
)

// Encode renders v as a JSON text. If indent is non-empty, the output is
// pretty-printed using it as the per-level indentation string.
func Encode(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	opts := []jsontext.Options{}
	if indent != "" {
		opts = append(opts, jsontext.WithIndent(indent))
	}
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := encodeValue(enc, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *jsontext.Encoder, v Value) error {
	switch v.kind {
	case KindNull:
		return enc.WriteToken(jsontext.Null)
	case KindBool:
		if v.b {
			return enc.WriteToken(jsontext.True)
		}
		return enc.WriteToken(jsontext.False)
	case KindNumber:
		return enc.WriteToken(jsontext.Float(v.n))
	case KindString:
		return enc.WriteToken(jsontext.String(v.s))
	case KindArray:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, elem := range v.arr {
			if err := encodeValue(enc, elem); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case KindObject:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for k, val := range v.obj.All() {
			if err := enc.WriteToken(jsontext.String(k)); err != nil {
				return err
			}
			if err := encodeValue(enc, val); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	default:
		return enc.WriteToken(jsontext.Null)
	}
}

// EncodeArray renders nodes as a JSON array, pretty-printed when indent is
// non-empty.
func EncodeArray(nodes []Value, indent string) ([]byte, error) {
	return Encode(Array(nodes), indent)
}
