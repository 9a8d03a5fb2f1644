// Package compare provides equality, truthiness and ordering over runtime
// values, shared by the operators and the collection functions.
package compare

import (
	"math"
	"math/big"
	"time"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Epsilon is the tolerance for equality between numbers.
const Epsilon = 2.220446049250313e-16

// IsEqual reports whether a and b are equal.
//
//   - undefined and null are equal to each other and to nothing else
//   - two empty arrays are equal, as are two mappings without properties
//   - numbers of any numeric kind are equal within Epsilon
//   - non-empty arrays and mappings compare element by element
//
// IsEqual never fails: a comparison that panics (uncomparable host values)
// reports false.
func IsEqual(a, b interface{}) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return isEqual(a, b)
}

func isEqual(a, b interface{}) bool {
	ka, kb := types.KindOf(a), types.KindOf(b)
	aNull := ka == types.KindUndefined || ka == types.KindNull
	bNull := kb == types.KindUndefined || kb == types.KindNull
	if aNull || bNull {
		return aNull && bNull
	}

	if ka == types.KindArray && kb == types.KindArray {
		la, _ := types.ToList(a)
		lb, _ := types.ToList(b)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !isEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}

	if ka == types.KindObject && kb == types.KindObject {
		ma, _ := types.AsMapping(a)
		mb, _ := types.AsMapping(b)
		keys := ma.Keys()
		if len(keys) != len(mb.Keys()) {
			return false
		}
		for _, k := range keys {
			va, _ := ma.Get(k)
			vb, ok := mb.Get(k)
			if !ok || !isEqual(va, vb) {
				return false
			}
		}
		return true
	}

	if ka.IsNumeric() && kb.IsNumeric() {
		return NumbersEqual(a, b)
	}

	if ka != kb {
		return false
	}
	switch ka {
	case types.KindDateTime:
		return toTime(a).Equal(toTime(b))
	case types.KindBoolean, types.KindString:
		return a == b
	}
	return a == b
}

// NumbersEqual compares two numeric values within Epsilon. Integers that do
// not fit in a float64 mantissa are compared exactly.
func NumbersEqual(a, b interface{}) bool {
	ba, aInt := types.ToBigInt(a)
	bb, bInt := types.ToBigInt(b)
	if aInt && bInt && types.KindOf(a) != types.KindFloat && types.KindOf(b) != types.KindFloat {
		return ba.Cmp(bb) == 0
	}
	fa, _ := types.ToFloat(a)
	fb, _ := types.ToFloat(b)
	if fa == fb {
		return true
	}
	return math.Abs(fa-fb) < Epsilon
}

// IsLogicTrue reports whether v counts as true in a condition.
// Booleans are themselves; undefined and null are false; every other value,
// including 0 and the empty string, is true.
func IsLogicTrue(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case nil, types.Null:
		return false
	}
	return !types.IsNull(v)
}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		return *t
	}
	return time.Time{}
}

// ToTime returns v as a time if it is a date/time value.
func ToTime(v interface{}) (time.Time, bool) {
	if types.KindOf(v) != types.KindDateTime {
		return time.Time{}, false
	}
	return toTime(v), true
}

func bigFloat(v interface{}) *big.Float {
	if b, ok := v.(*big.Int); ok {
		return new(big.Float).SetInt(b)
	}
	if i, ok := types.ToInt64(v); ok && types.KindOf(v) != types.KindFloat {
		return new(big.Float).SetInt64(i)
	}
	f, _ := types.ToFloat(v)
	return big.NewFloat(f)
}
