// Package memory implements the scopes that identifiers resolve against.
//
// A Memory resolves a path such as `user.name` or `items[2].price` to a
// value. SimpleObjectMemory wraps a single host value; StackedMemory layers
// several memories and is how iteration binds its iterator name.
//
//	mem := memory.Wrap(map[string]interface{}{"user": user})
//	v, err := mem.GetValue("user.name")
package memory

import (
	"fmt"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Memory resolves paths to values.
//
// GetValue returns (nil, nil) when the path resolves to nothing. It returns
// an error only for a path that cannot be applied, such as an out-of-range
// index.
type Memory interface {
	GetValue(path string) (interface{}, error)
}

// SimpleObjectMemory wraps one value.
type SimpleObjectMemory struct {
	value interface{}
}

// Wrap returns v as a Memory. A Memory is returned unchanged.
func Wrap(v interface{}) Memory {
	if m, ok := v.(Memory); ok && m != nil {
		return m
	}
	return &SimpleObjectMemory{value: v}
}

// Value returns the wrapped value.
func (m *SimpleObjectMemory) Value() interface{} {
	return m.value
}

// GetValue resolves path against the wrapped value.
func (m *SimpleObjectMemory) GetValue(path string) (interface{}, error) {
	if path == "" {
		return m.value, nil
	}
	segs, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return ResolvePath(m.value, segs)
}

func (m *SimpleObjectMemory) String() string {
	return fmt.Sprintf("SimpleObjectMemory{%v}", m.value)
}

// Layer returns a memory binding exactly one name.
func Layer(name string, value interface{}) Memory {
	om := types.NewOrderedMap()
	om.Set(name, value)
	return &SimpleObjectMemory{value: om}
}
