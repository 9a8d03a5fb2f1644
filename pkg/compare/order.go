package compare

import (
	"math"
	"strings"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Compare orders two numbers, two strings or two date/times.
// It returns -1, 0 or 1, or a TypeMismatch error for any other pair.
func Compare(a, b interface{}) (int, error) {
	ka, kb := types.KindOf(a), types.KindOf(b)
	switch {
	case ka.IsNumeric() && kb.IsNumeric():
		return compareNumbers(a, b), nil
	case ka == types.KindString && kb == types.KindString:
		return strings.Compare(a.(string), b.(string)), nil
	case ka == types.KindDateTime && kb == types.KindDateTime:
		return toTime(a).Compare(toTime(b)), nil
	}
	return 0, types.NewError(types.ErrTypeMismatch, "%v and %v are not comparable", a, b)
}

func compareNumbers(a, b interface{}) int {
	if NumbersEqual(a, b) {
		return 0
	}
	fa, _ := types.ToFloat(a)
	fb, _ := types.ToFloat(b)
	if math.IsNaN(fa) || math.IsNaN(fb) || math.IsInf(fa, 0) || math.IsInf(fb, 0) {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return bigFloat(a).Cmp(bigFloat(b))
}

// sort rank of each kind when two values are not comparable with Compare.
var kindRank = map[types.Kind]int{
	types.KindBoolean:   0,
	types.KindInteger:   1,
	types.KindFloat:     1,
	types.KindBigInt:    1,
	types.KindString:    2,
	types.KindDateTime:  3,
	types.KindArray:     4,
	types.KindObject:    5,
	types.KindOpaque:    6,
	types.KindNull:      7,
	types.KindUndefined: 8,
}

// SortCompare is a total order used for sorting: comparable values use
// Compare, booleans sort false before true, and values of different kinds
// are ordered by kind with null and undefined last.
func SortCompare(a, b interface{}) int {
	if c, err := Compare(a, b); err == nil {
		return c
	}
	ka, kb := types.KindOf(a), types.KindOf(b)
	if ra, rb := kindRank[ka], kindRank[kb]; ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if ka == types.KindBoolean {
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	}
	return strings.Compare(Key(a), Key(b))
}
