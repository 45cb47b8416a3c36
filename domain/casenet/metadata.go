package casenet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"casegraph/domain/core/valueobjects"
)

// ValueKind tags the scalar held by a MetaValue
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// MetaValue is a scalar metadata entry: a string, number, boolean, or null
type MetaValue struct {
	kind ValueKind
	str  string
	num  float64
	flag bool
}

// StringValue wraps a string
func StringValue(s string) MetaValue { return MetaValue{kind: KindString, str: s} }

// NumberValue wraps a number
func NumberValue(f float64) MetaValue { return MetaValue{kind: KindNumber, num: f} }

// BoolValue wraps a boolean
func BoolValue(b bool) MetaValue { return MetaValue{kind: KindBool, flag: b} }

// NullValue is the absent value
func NullValue() MetaValue { return MetaValue{} }

// ValueOf converts a raw store property into a MetaValue. Temporal values
// become RFC3339 strings; unknown shapes fall back to their printed form.
func ValueOf(v any) MetaValue {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case MetaValue:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case time.Time:
		return StringValue(t.Format(time.RFC3339))
	case interface{ Time() time.Time }:
		return StringValue(t.Time().Format(time.RFC3339))
	}
	if f, ok := valueobjects.ToFloat(v); ok {
		return NumberValue(f)
	}
	if s, ok := v.(fmt.Stringer); ok {
		return StringValue(s.String())
	}
	return StringValue(fmt.Sprint(v))
}

// Kind returns the tag
func (v MetaValue) Kind() ValueKind { return v.kind }

// IsNull reports whether v holds no value
func (v MetaValue) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload when v holds a string
func (v MetaValue) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload when v holds a number
func (v MetaValue) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload when v holds a boolean
func (v MetaValue) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// Truthy reports whether v would display: null, "", 0, and false do not
func (v MetaValue) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0
	case KindBool:
		return v.flag
	default:
		return false
	}
}

// Display renders v for a human reader
func (v MetaValue) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler
func (v MetaValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Only scalars are accepted.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = NullValue()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '{', '[':
		return fmt.Errorf("metadata values must be scalars, got %s", string(data[:1]))
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = NumberValue(f)
	}
	return nil
}

// Metadata is an open mapping of scalar attributes shown by the inspector
type Metadata map[string]MetaValue

// Keys returns the metadata keys in lexical order
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores a raw property under key
func (m Metadata) Set(key string, raw any) {
	m[key] = ValueOf(raw)
}
