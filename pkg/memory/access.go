package memory

import (
	"golang.org/x/text/cases"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// AccessProperty looks up property on instance.
//
// Lookup is two-phase: the exact key first, then a case-insensitive scan of
// the keys in mapping order returning the first match. An undefined or null
// instance, a non-structured instance, or a missing property yield undefined
// without error.
func AccessProperty(instance interface{}, property string) (interface{}, error) {
	if types.IsNull(instance) {
		return nil, nil
	}
	m, ok := types.AsMapping(instance)
	if !ok {
		return nil, nil
	}
	if v, ok := m.Get(property); ok {
		return v, nil
	}
	key, ok := FindKey(m, property)
	if !ok {
		return nil, nil
	}
	v, _ := m.Get(key)
	return v, nil
}

// FindKey returns the first key of m equal to name under Unicode case folding.
func FindKey(m types.Mapping, name string) (string, bool) {
	// Casers carry state and are not shared between goroutines.
	folder := cases.Fold()
	want := folder.String(name)
	for _, k := range m.Keys() {
		if folder.String(k) == want {
			return k, true
		}
	}
	return "", false
}

// AccessIndex returns instance[index].
// An out-of-range index is an error, distinct from an absent property.
func AccessIndex(instance interface{}, index int64) (interface{}, error) {
	if types.IsNull(instance) {
		return nil, nil
	}
	list, ok := types.ToList(instance)
	if !ok {
		return nil, types.NewError(types.ErrNotCollection, "%v is not a collection.", instance)
	}
	if index < 0 || index >= int64(len(list)) {
		return nil, types.NewError(types.ErrIndexOutOfRange, "%d is out of range for %v", index, list)
	}
	return list[index], nil
}

// ResolvePath walks segs from value.
func ResolvePath(value interface{}, segs []Segment) (interface{}, error) {
	current := value
	for _, seg := range segs {
		var err error
		if seg.IsIndex {
			current, err = AccessIndex(current, seg.Index)
		} else {
			current, err = AccessProperty(current, seg.Name)
		}
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}
	}
	return current, nil
}
