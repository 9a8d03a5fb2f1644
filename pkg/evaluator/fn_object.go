package evaluator

import (
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func objectFunctions() []*FunctionDef {
	return []*FunctionDef{
		newFunction("getProperty", "<x-s?:x>", applyWithState(fnGetProperty, nil)),
		newFunction("setProperty", "<o-s-x:o>", applyWithError(fnSetProperty, nil)),
		newFunction("addProperty", "<o-s-x:o>", applyWithError(fnAddProperty, nil)),
		newFunction("removeProperty", "<o-s:o>", applyWithError(fnRemoveProperty, nil)),
		newFunction("merge", "<x+:o>", applyWithError(fnMerge, nil)),
		newFunction("keys", "<o:a>", applyWithError(fnKeys, verifyObject)),
	}
}

// fnGetProperty reads a property of an object, or with a single argument a
// path from the current memory.
func fnGetProperty(s *State, mem memory.Memory, args []interface{}) (interface{}, error) {
	if len(args) == 1 {
		path, ok := args[0].(string)
		if !ok {
			return nil, types.NewError(types.ErrTypeMismatch, "%v is not a string.", args[0])
		}
		return s.getValue(mem, path)
	}
	name, ok := args[1].(string)
	if !ok {
		return nil, types.NewError(types.ErrTypeMismatch, "%v is not a string.", args[1])
	}
	return memory.AccessProperty(args[0], name)
}

// editableCopy returns a copy of an object that can be changed without
// touching the argument.
func editableCopy(v interface{}) (*types.OrderedMap, error) {
	m, ok := types.AsMapping(v)
	if !ok {
		return nil, types.NewError(types.ErrTypeMismatch, "%v is not an object.", v)
	}
	out := types.NewOrderedMap()
	for _, k := range m.Keys() {
		item, _ := m.Get(k)
		out.Set(k, types.DeepCopy(item))
	}
	return out, nil
}

func propertyArgs(args []interface{}) (*types.OrderedMap, string, error) {
	obj, err := editableCopy(args[0])
	if err != nil {
		return nil, "", err
	}
	name, ok := args[1].(string)
	if !ok {
		return nil, "", types.NewError(types.ErrTypeMismatch, "%v is not a string.", args[1])
	}
	return obj, name, nil
}

func fnSetProperty(args []interface{}) (interface{}, error) {
	obj, name, err := propertyArgs(args)
	if err != nil {
		return nil, err
	}
	obj.Set(name, types.DeepCopy(args[2]))
	return obj, nil
}

func fnAddProperty(args []interface{}) (interface{}, error) {
	obj, name, err := propertyArgs(args)
	if err != nil {
		return nil, err
	}
	if _, exists := obj.Get(name); exists {
		return nil, types.NewError(types.ErrInvalidRange, "%s already exists", name)
	}
	obj.Set(name, types.DeepCopy(args[2]))
	return obj, nil
}

func fnRemoveProperty(args []interface{}) (interface{}, error) {
	obj, name, err := propertyArgs(args)
	if err != nil {
		return nil, err
	}
	obj.Delete(name)
	return obj, nil
}

// fnMerge combines objects left to right; later properties win. Lists of
// objects are merged element by element.
func fnMerge(args []interface{}) (interface{}, error) {
	out := types.NewOrderedMap()
	var add func(v interface{}) error
	add = func(v interface{}) error {
		if list, ok := types.ToList(v); ok {
			for _, item := range list {
				if err := add(item); err != nil {
					return err
				}
			}
			return nil
		}
		m, ok := types.AsMapping(v)
		if !ok {
			return types.NewError(types.ErrTypeMismatch, "%v is not a valid object or array of objects.", v)
		}
		for _, k := range m.Keys() {
			item, _ := m.Get(k)
			out.Set(k, types.DeepCopy(item))
		}
		return nil
	}
	for _, arg := range args {
		if err := add(arg); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fnKeys(args []interface{}) (interface{}, error) {
	m, _ := types.AsMapping(args[0])
	keys := m.Keys()
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out, nil
}
