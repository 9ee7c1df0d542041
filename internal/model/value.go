package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind identifies which scalar a Value holds.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueString
	ValueInt
	ValueFloat
	ValueBool
)

// String returns the string representation of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a scalar property value: string, integer, float or boolean.
// The zero Value is null.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
}

// String constructs a string Value.
func String(s string) Value { return Value{kind: ValueString, s: s} }

// Int constructs an integer Value.
func Int(i int64) Value { return Value{kind: ValueInt, i: i} }

// Float constructs a float Value.
func Float(f float64) Value { return Value{kind: ValueFloat, f: f} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: ValueBool, b: b} }

// Kind reports which scalar the value holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value holds nothing.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// AsInt returns the integer payload and whether the value is an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == ValueInt }

// AsFloat returns the value as a float64 for numeric kinds.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case ValueFloat:
		return v.f, true
	case ValueInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsBool returns the boolean payload and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == ValueBool }

// String renders the value as text. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.s
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

// MarshalJSON encodes the value as a bare JSON scalar. Floats always carry a
// fractional part or exponent so they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.s)
	case ValueInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case ValueFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("unsupported float value %v", v.f)
		}
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !bytes.ContainsAny([]byte(s), ".e") {
			s += ".0"
		}
		return []byte(s), nil
	case ValueBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Numbers without a fractional part or
// exponent decode as integers when they fit in int64.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '{', '[':
		return fmt.Errorf("property values must be scalars, got %s", data)
	default:
		if !bytes.ContainsAny(data, ".eE") {
			if i, err := strconv.ParseInt(string(data), 10, 64); err == nil {
				*v = Int(i)
				return nil
			}
		}
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %s: %w", data, err)
		}
		*v = Float(f)
	}
	return nil
}

// Properties is the open-ended property mapping carried by nodes and edges.
type Properties map[string]Value

// Get returns the value stored under key.
func (p Properties) Get(key string) (Value, bool) {
	v, ok := p[key]
	return v, ok
}

// Has reports whether key is present, regardless of its value.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Text returns the textual form of the value under key, or "" when absent.
func (p Properties) Text(key string) string {
	return p[key].String()
}

// Set stores v under key. Set on a nil map panics, as with any Go map;
// nodes and edges allocate their maps on construction.
func (p Properties) Set(key string, v Value) {
	p[key] = v
}

// Delete removes key.
func (p Properties) Delete(key string) {
	delete(p, key)
}

// Clone returns a shallow copy. Values are immutable so this is a full copy.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p)+3)
	for k, v := range p {
		out[k] = v
	}
	return out
}
