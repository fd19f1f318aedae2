package capability

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	// KindAbsent marks a value that was extracted as empty ("null", "none",
	// empty string, or JSON null). Providers treat absent values as missing.
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns the kind name for logging and error messages.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Value is a tagged union over the JSON scalar and container types.
// Step parameters and provider responses use Value maps so providers can
// validate inputs by kind instead of reflecting on interface{} payloads.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

// Absent returns the absent sentinel value.
func Absent() Value { return Value{kind: KindAbsent} }

// String wraps a string as a Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a float64 as a Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a bool as a Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List wraps a slice of Values.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map wraps a map of Values.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind returns the tag of the union.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is the absent sentinel.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsString returns the string content and whether the value is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the numeric content and whether the value is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean content and whether the value is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsList returns the list content and whether the value is a list.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// AsMap returns the map content and whether the value is a map.
func (v Value) AsMap() (map[string]Value, bool) {
	return v.m, v.kind == KindMap
}

// Text renders any scalar value as a display string. Containers render as
// compact JSON. Absent renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindAbsent:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// FromAny converts a decoded JSON value (the interface{} shapes produced by
// encoding/json) into a Value. Unsupported types map to Absent.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Absent()
	case string:
		return String(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case bool:
		return Bool(t)
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return List(items...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = FromAny(item)
		}
		return Map(m)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(n)
	}
	return Absent()
}

// MapFromAny converts a decoded JSON object into a Value map.
func MapFromAny(raw map[string]any) map[string]Value {
	if raw == nil {
		return nil
	}
	m := make(map[string]Value, len(raw))
	for k, v := range raw {
		m[k] = FromAny(v)
	}
	return m
}

// ToAny converts a Value back into the interface{} shapes used by
// encoding/json. Absent converts to nil.
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		items := make([]any, 0, len(v.list))
		for _, item := range v.list {
			items = append(items, item.ToAny())
		}
		return items
	case KindMap:
		m := make(map[string]any, len(v.m))
		for k, item := range v.m {
			m[k] = item.ToAny()
		}
		return m
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// MergeValueMaps shallow-merges src into dst, last write wins on key
// collision. Nested maps are not deep-merged. dst may be nil.
func MergeValueMaps(dst, src map[string]Value) map[string]Value {
	if dst == nil {
		dst = make(map[string]Value, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
