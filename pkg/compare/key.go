package compare

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Key produces a canonical string for v such that values equal under
// structural comparison share a key. Integral numbers share a key regardless
// of numeric kind; mapping keys are sorted.
func Key(v interface{}) string {
	var sb strings.Builder
	writeKey(&sb, v)
	return sb.String()
}

func writeKey(sb *strings.Builder, v interface{}) {
	switch types.KindOf(v) {
	case types.KindUndefined:
		sb.WriteString("U")
	case types.KindNull:
		sb.WriteString("N")
	case types.KindBoolean:
		if v.(bool) {
			sb.WriteString("bt")
		} else {
			sb.WriteString("bf")
		}
	case types.KindInteger, types.KindBigInt, types.KindFloat:
		sb.WriteByte('n')
		sb.WriteString(numberKey(v))
	case types.KindString:
		sb.WriteByte('s')
		sb.WriteString(strconv.Quote(v.(string)))
	case types.KindDateTime:
		sb.WriteByte('t')
		sb.WriteString(toTime(v).UTC().Format(time.RFC3339Nano))
	case types.KindArray:
		list, _ := types.ToList(v)
		sb.WriteString("a[")
		for i, item := range list {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeKey(sb, item)
		}
		sb.WriteByte(']')
	case types.KindObject:
		m, _ := types.AsMapping(v)
		keys := append([]string(nil), m.Keys()...)
		sort.Strings(keys)
		sb.WriteString("o{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			item, _ := m.Get(k)
			writeKey(sb, item)
		}
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "%T:%v", v, v)
	}
}

func numberKey(v interface{}) string {
	switch n := v.(type) {
	case *big.Int:
		return n.String()
	case float64, float32:
		f, _ := types.ToFloat(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if i, ok := types.ToInt64(v); ok {
		return strconv.FormatInt(i, 10)
	}
	b, _ := types.ToBigInt(v)
	return b.String()
}
