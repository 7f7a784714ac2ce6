package database

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind is the scalar type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindTime
	KindUUID
	KindOther
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindBytes:  "bytes",
	KindTime:   "time",
	KindUUID:   "uuid",
	KindOther:  "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value wraps one column value as decoded by the driver. Integers are
// normalized to int64 and floats to float64; types without a dedicated kind
// (numeric, json, arrays, ...) are kept as KindOther.
type Value struct {
	kind Kind
	v    any
}

// Null is the absent value.
func Null() Value { return Value{} }

func NewValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case bool:
		return Value{KindBool, t}
	case int:
		return Value{KindInt, int64(t)}
	case int8:
		return Value{KindInt, int64(t)}
	case int16:
		return Value{KindInt, int64(t)}
	case int32:
		return Value{KindInt, int64(t)}
	case int64:
		return Value{KindInt, t}
	case uint8:
		return Value{KindInt, int64(t)}
	case uint16:
		return Value{KindInt, int64(t)}
	case uint32:
		return Value{KindInt, int64(t)}
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{KindOther, t}
		}
		return Value{KindInt, int64(t)}
	case uint64:
		if t > math.MaxInt64 {
			return Value{KindOther, t}
		}
		return Value{KindInt, int64(t)}
	case float32:
		return Value{KindFloat, float64(t)}
	case float64:
		return Value{KindFloat, t}
	case string:
		return Value{KindString, t}
	case []byte:
		return Value{KindBytes, t}
	case time.Time:
		return Value{KindTime, t}
	case [16]byte:
		return Value{KindUUID, uuid.UUID(t)}
	case uuid.UUID:
		return Value{KindUUID, t}
	default:
		return Value{KindOther, v}
	}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface returns the normalized underlying value, nil for Null.
func (v Value) Interface() any { return v.v }

func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

func (v Value) Int64() (int64, bool) {
	i, ok := v.v.(int64)
	return i, ok
}

// Float64 also accepts integer values.
func (v Value) Float64() (float64, bool) {
	switch t := v.v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok
}

func (v Value) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok
}

// UUID decodes uuid columns, and strings or 16-byte slices holding a uuid.
func (v Value) UUID() (uuid.UUID, bool) {
	switch t := v.v.(type) {
	case uuid.UUID:
		return t, true
	case string:
		u, err := uuid.Parse(t)
		return u, err == nil
	case []byte:
		u, err := uuid.FromBytes(t)
		return u, err == nil
	}
	return uuid.Nil, false
}

// String renders the value as text; Null renders as the empty string.
func (v Value) String() string {
	switch t := v.v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
