package evaluator

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// defaultFlattenDepth is the depth of flatten without a depth argument.
const defaultFlattenDepth = 100

func collectionFunctions() []*FunctionDef {
	return []*FunctionDef{
		newFunction("count", "<(sa):n>", apply(fnCount, verifyStringOrList)),
		newFunction("contains", "<x-x:b>", apply(fnContains, nil)),
		newFunction("empty", "<x:b>", apply(fnEmpty, nil)),
		newFunction("first", "<x:x>", apply(fnFirst, nil)),
		newFunction("last", "<x:x>", apply(fnLast, nil)),
		newFunction("join", "<a-s-s?:s>", applyWithError(fnJoin, nil)),
		newFunction("unique", "<a:a>", apply(fnUnique, verifyList)),
		newFunction("flatten", "<a-n?:a>", applyWithError(fnFlatten, nil)),
		newFunction("union", "<a+:a>", apply(fnUnion, verifyList)),
		newFunction("intersection", "<a+:a>", apply(fnIntersection, verifyList)),
		newFunction("skip", "<a-n:a>", applyWithError(fnSkip, nil)),
		newFunction("take", "<(sa)-n:x>", applyWithError(fnTake, nil)),
		newFunction("subArray", "<a-n-n?:a>", applyWithError(fnSubArray, nil)),
		newFunction("reverse", "<(sa):x>", apply(fnReverse, verifyStringOrList)),
		newFunction("sortBy", "<a-s?:a>", sortBy(false)),
		newFunction("sortByDescending", "<a-s?:a>", sortBy(true)),
		{
			Name:       "createArray",
			ReturnType: types.ReturnArray,
			Evaluate: apply(func(args []interface{}) interface{} {
				return append([]interface{}{}, args...)
			}, nil),
		},
	}
}

func fnCount(args []interface{}) interface{} {
	if s, ok := args[0].(string); ok {
		return int64(utf8.RuneCountInString(s))
	}
	list, _ := types.ToList(args[0])
	return int64(len(list))
}

// fnContains reports substring presence for two strings, element presence
// for a list, key presence for an explicit map and case-insensitive property
// presence for any other structured value.
func fnContains(args []interface{}) interface{} {
	haystack, needle := args[0], args[1]
	if s, ok := haystack.(string); ok {
		if sub, ok := needle.(string); ok {
			return strings.Contains(s, sub)
		}
		return false
	}
	if list, ok := types.ToList(haystack); ok {
		for _, item := range list {
			if compare.IsEqual(item, needle) {
				return true
			}
		}
		return false
	}
	key, ok := needle.(string)
	if !ok {
		return false
	}
	if types.IsExplicitMap(haystack) {
		m, _ := types.AsMapping(haystack)
		_, found := m.Get(key)
		return found
	}
	v, err := memory.AccessProperty(haystack, key)
	return err == nil && v != nil
}

func fnEmpty(args []interface{}) interface{} {
	v := args[0]
	switch types.KindOf(v) {
	case types.KindUndefined, types.KindNull:
		return true
	case types.KindString:
		return v.(string) == ""
	case types.KindArray:
		list, _ := types.ToList(v)
		return len(list) == 0
	case types.KindObject:
		m, _ := types.AsMapping(v)
		return len(m.Keys()) == 0
	}
	return false
}

// fnFirst returns the first character of a string or the first element of a
// list; anything else, or an empty one, is undefined.
func fnFirst(args []interface{}) interface{} {
	if s, ok := args[0].(string); ok {
		if s == "" {
			return nil
		}
		r, _ := utf8.DecodeRuneInString(s)
		return string(r)
	}
	if list, ok := types.ToList(args[0]); ok && len(list) > 0 {
		return list[0]
	}
	return nil
}

func fnLast(args []interface{}) interface{} {
	if s, ok := args[0].(string); ok {
		if s == "" {
			return nil
		}
		r, _ := utf8.DecodeLastRuneInString(s)
		return string(r)
	}
	if list, ok := types.ToList(args[0]); ok && len(list) > 0 {
		return list[len(list)-1]
	}
	return nil
}

// fnJoin joins with sep. With lastSep, the last element is appended with
// lastSep instead; lists shorter than three are joined with lastSep alone.
func fnJoin(args []interface{}) (interface{}, error) {
	list, ok := types.ToList(args[0])
	if !ok {
		return nil, types.NewError(types.ErrNotCollection, "%v is not a list.", args[0])
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = stringify(item)
	}
	sep := optString(args[1])
	if len(args) == 2 {
		return strings.Join(parts, sep), nil
	}
	lastSep := optString(args[2])
	if len(parts) < 3 {
		return strings.Join(parts, lastSep), nil
	}
	return strings.Join(parts[:len(parts)-1], sep) + lastSep + parts[len(parts)-1], nil
}

// fnUnique keeps the first occurrence of each distinct element.
func fnUnique(args []interface{}) interface{} {
	list, _ := types.ToList(args[0])
	return uniqueValues(list)
}

func uniqueValues(list []interface{}) []interface{} {
	seen := make(map[string]bool, len(list))
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		k := compare.Key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

// fnFlatten splices nested lists into their parent, one level per pass, for
// at most depth passes or until no element is a list. Depth below 1 is 1.
func fnFlatten(args []interface{}) (interface{}, error) {
	list, ok := types.ToList(args[0])
	if !ok {
		return nil, types.NewError(types.ErrNotCollection, "%v is not a list.", args[0])
	}
	depth := int64(defaultFlattenDepth)
	if len(args) > 1 && args[1] != nil {
		d, ok := types.ToInt64(args[1])
		if !ok {
			return nil, types.NewError(types.ErrTypeMismatch, "flatten depth %v is not an integer", args[1])
		}
		depth = d
	}
	if depth < 1 {
		depth = 1
	}
	out := list
	for ; depth > 0; depth-- {
		nested := false
		next := make([]interface{}, 0, len(out))
		for _, item := range out {
			if inner, ok := types.ToList(item); ok {
				nested = true
				next = append(next, inner...)
			} else {
				next = append(next, item)
			}
		}
		if !nested {
			break
		}
		out = next
	}
	return types.DeepCopy(out), nil
}

func fnUnion(args []interface{}) interface{} {
	var all []interface{}
	for _, arg := range args {
		list, _ := types.ToList(arg)
		all = append(all, list...)
	}
	return uniqueValues(all)
}

// fnIntersection keeps the distinct elements of the first list present in
// every other list.
func fnIntersection(args []interface{}) interface{} {
	first, _ := types.ToList(args[0])
	sets := make([]map[string]bool, len(args)-1)
	for i, arg := range args[1:] {
		list, _ := types.ToList(arg)
		sets[i] = make(map[string]bool, len(list))
		for _, item := range list {
			sets[i][compare.Key(item)] = true
		}
	}
	out := []interface{}{}
	for _, item := range uniqueValues(first) {
		k := compare.Key(item)
		inAll := true
		for _, set := range sets {
			if !set[k] {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, item)
		}
	}
	return out
}

func listAndCount(args []interface{}) ([]interface{}, int64, error) {
	list, ok := types.ToList(args[0])
	if !ok {
		return nil, 0, types.NewError(types.ErrNotCollection, "%v is not a list.", args[0])
	}
	n, ok := types.ToInt64(args[1])
	if !ok {
		return nil, 0, types.NewError(types.ErrTypeMismatch, "%v is not an integer.", args[1])
	}
	return list, n, nil
}

// fnSkip drops the first n elements. A negative n skips nothing.
func fnSkip(args []interface{}) (interface{}, error) {
	list, n, err := listAndCount(args)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n >= int64(len(list)) {
		return []interface{}{}, nil
	}
	return append([]interface{}{}, list[n:]...), nil
}

// fnTake keeps the first n elements or characters.
func fnTake(args []interface{}) (interface{}, error) {
	n, ok := types.ToInt64(args[1])
	if !ok || n < 0 {
		return nil, types.NewError(types.ErrInvalidRange, "%v is not a non-negative integer.", args[1])
	}
	if s, ok := args[0].(string); ok {
		runes := []rune(s)
		if n > int64(len(runes)) {
			n = int64(len(runes))
		}
		return string(runes[:n]), nil
	}
	list, ok := types.ToList(args[0])
	if !ok {
		return nil, types.NewError(types.ErrNotCollection, "%v is neither a list nor a string.", args[0])
	}
	if n > int64(len(list)) {
		n = int64(len(list))
	}
	return append([]interface{}{}, list[:n]...), nil
}

// fnSubArray returns list[start:end]; end defaults to the list length.
func fnSubArray(args []interface{}) (interface{}, error) {
	list, start, err := listAndCount(args)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > int64(len(list)) {
		return nil, types.NewError(types.ErrIndexOutOfRange, "%d is not a valid start index for a list of length %d", start, len(list))
	}
	end := int64(len(list))
	if len(args) > 2 && args[2] != nil {
		e, ok := types.ToInt64(args[2])
		if !ok || e < start || e > end {
			return nil, types.NewError(types.ErrIndexOutOfRange, "%v is not a valid end index for a list of length %d", args[2], len(list))
		}
		end = e
	}
	return append([]interface{}{}, list[start:end]...), nil
}

func fnReverse(args []interface{}) interface{} {
	if s, ok := args[0].(string); ok {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	}
	list, _ := types.ToList(args[0])
	out := make([]interface{}, len(list))
	for i, item := range list {
		out[len(list)-1-i] = item
	}
	return out
}

// sortBy sorts by natural order, or by the value at a property path of each
// element. Descending order is the stable ascending result reversed, so
// equal keys come out in reverse input order.
func sortBy(descending bool) EvaluateFunc {
	return applyWithError(func(args []interface{}) (interface{}, error) {
		list, ok := types.ToList(args[0])
		if !ok {
			return nil, types.NewError(types.ErrNotCollection, "%v is not a list.", args[0])
		}
		keys := make([]interface{}, len(list))
		if len(args) > 1 && !types.IsNull(args[1]) {
			path, ok := args[1].(string)
			if !ok {
				return nil, types.NewError(types.ErrTypeMismatch, "sort property %v is not a string", args[1])
			}
			for i, item := range list {
				v, err := memory.Wrap(item).GetValue(path)
				if err != nil {
					return nil, err
				}
				keys[i] = v
			}
		} else {
			copy(keys, list)
		}

		idx := make([]int, len(list))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return compare.SortCompare(keys[idx[a]], keys[idx[b]]) < 0
		})

		out := make([]interface{}, len(list))
		for i, j := range idx {
			out[i] = list[j]
		}
		if descending {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
		return out, nil
	}, nil)
}
