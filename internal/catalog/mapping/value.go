package mapping

import (
	"encoding/json"
	"slices"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindList
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is one mapping payload value: a string, a list of strings or a bool.
// The zero Value is invalid.
type Value struct {
	kind Kind
	str  string
	list []string
	b    bool
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsList returns a copy of the list variant.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return nil, errInvalidValue
	}
}
