package types

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

// Kind is the shape of a runtime value.
//
// Values are plain Go values; KindOf classifies them into this closed set so
// that functions can switch exhaustively instead of probing host types.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindInteger
	KindFloat
	KindBigInt
	KindString
	KindArray
	KindObject
	KindDateTime
	KindOpaque
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBigInt:    "bigint",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindDateTime:  "datetime",
	KindOpaque:    "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsNumeric reports whether k is one of the numeric kinds.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat || k == KindBigInt
}

var timeType = reflect.TypeOf(time.Time{})

// KindOf classifies v.
func KindOf(v interface{}) Kind {
	switch val := v.(type) {
	case nil:
		return KindUndefined
	case Null:
		return KindNull
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInteger
	case uint, uint64:
		return KindInteger
	case float32, float64:
		return KindFloat
	case *big.Int:
		if val == nil {
			return KindUndefined
		}
		return KindBigInt
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}, *OrderedMap:
		return KindObject
	case time.Time:
		return KindDateTime
	case *time.Time:
		if val == nil {
			return KindUndefined
		}
		return KindDateTime
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return KindUndefined
		}
		return KindArray
	case reflect.Map:
		if rv.IsNil() {
			return KindUndefined
		}
		if rv.Type().Key().Kind() == reflect.String {
			return KindObject
		}
	case reflect.Struct:
		return KindObject
	case reflect.Ptr:
		if rv.IsNil() {
			return KindUndefined
		}
		if rv.Elem().Kind() == reflect.Struct && rv.Elem().Type() != timeType {
			return KindObject
		}
	}
	return KindOpaque
}

// IsNull reports whether v is undefined or explicit null.
func IsNull(v interface{}) bool {
	k := KindOf(v)
	return k == KindUndefined || k == KindNull
}

// IsNumber reports whether v is a numeric value.
func IsNumber(v interface{}) bool {
	return KindOf(v).IsNumeric()
}

// IsInteger reports whether v is an integer: an integer kind, a big integer,
// or a float with no fractional part.
func IsInteger(v interface{}) bool {
	switch KindOf(v) {
	case KindInteger, KindBigInt:
		return true
	case KindFloat:
		f, _ := ToFloat(v)
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return false
}

// ToInt64 converts an integral value to int64.
func ToInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case *big.Int:
		if val.IsInt64() {
			return val.Int64(), true
		}
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// ToFloat converts a numeric value to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return f, true
	}
	if i, ok := ToInt64(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	if u, ok := v.(uint); ok {
		return float64(u), true
	}
	return 0, false
}

// ToBigInt converts an integral value to a new *big.Int.
func ToBigInt(v interface{}) (*big.Int, bool) {
	switch val := v.(type) {
	case *big.Int:
		return new(big.Int).Set(val), true
	case uint64:
		return new(big.Int).SetUint64(val), true
	case uint:
		return new(big.Int).SetUint64(uint64(val)), true
	}
	if i, ok := ToInt64(v); ok {
		return big.NewInt(i), true
	}
	return nil, false
}

// Normalize converts host numeric types to the canonical int64/float64/*big.Int
// forms, recursively through []interface{} and map[string]interface{}.
// Other values are returned unchanged.
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case int, int8, int16, int32, uint8, uint16, uint32:
		i, _ := ToInt64(val)
		return i
	case uint, uint64:
		if i, ok := ToInt64(val); ok {
			return i
		}
		b, _ := ToBigInt(val)
		return b
	case float32:
		return float64(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[stringKey(k)] = Normalize(item)
		}
		return out
	}
	return v
}

func stringKey(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// ToList returns the elements of an array value.
// Host slices of other element types are converted with reflection.
func ToList(v interface{}) ([]interface{}, bool) {
	if arr, ok := v.([]interface{}); ok {
		return arr, true
	}
	if KindOf(v) != KindArray {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = Normalize(rv.Index(i).Interface())
	}
	return out, true
}

// DeepCopy returns a copy of v that shares no mutable structure with it.
// Arrays and mappings are rebuilt as []interface{} and map[string]interface{}
// (OrderedMap is preserved); big integers are copied; scalars are returned
// as-is. Opaque host objects cannot be copied and are shared.
func DeepCopy(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, Null, bool, string, int64, float64, time.Time:
		return val
	case *big.Int:
		if val == nil {
			return nil
		}
		return new(big.Int).Set(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = DeepCopy(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = DeepCopy(item)
		}
		return out
	case *OrderedMap:
		out := NewOrderedMap()
		for _, k := range val.keys {
			out.Set(k, DeepCopy(val.values[k]))
		}
		return out
	}

	switch KindOf(v) {
	case KindArray:
		list, _ := ToList(v)
		return DeepCopy(list)
	case KindObject:
		m, _ := AsMapping(v)
		out := make(map[string]interface{}, len(m.Keys()))
		for _, k := range m.Keys() {
			item, _ := m.Get(k)
			out[k] = DeepCopy(item)
		}
		return out
	case KindInteger, KindFloat:
		return Normalize(v)
	}
	return v
}
