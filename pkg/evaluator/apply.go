package evaluator

import (
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// verifyFunc checks one evaluated argument before a delegate runs.
type verifyFunc func(value interface{}, child *types.Node) error

// evalChildren evaluates the children of node in order. The first child
// error is returned unchanged and the remaining children are not evaluated.
func evalChildren(s *State, node *types.Node, mem memory.Memory, verify verifyFunc) ([]interface{}, error) {
	args := make([]interface{}, len(node.Children))
	for i, child := range node.Children {
		v, err := s.Eval(child, mem)
		if err != nil {
			return nil, err
		}
		if verify != nil {
			if err := verify(v, child); err != nil {
				return nil, err
			}
		}
		args[i] = v
	}
	return args, nil
}

// apply lifts a pure function over evaluated arguments into an EvaluateFunc.
func apply(fn func(args []interface{}) interface{}, verify verifyFunc) EvaluateFunc {
	return func(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
		args, err := evalChildren(s, node, mem, verify)
		if err != nil {
			return nil, err
		}
		return fn(args), nil
	}
}

// applyWithError is apply for functions that can fail.
func applyWithError(fn func(args []interface{}) (interface{}, error), verify verifyFunc) EvaluateFunc {
	return func(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
		args, err := evalChildren(s, node, mem, verify)
		if err != nil {
			return nil, err
		}
		return fn(args)
	}
}

// applyWithState is applyWithError for functions that need the evaluation
// state or memory, such as locale-aware or random functions.
func applyWithState(fn func(s *State, mem memory.Memory, args []interface{}) (interface{}, error), verify verifyFunc) EvaluateFunc {
	return func(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
		args, err := evalChildren(s, node, mem, verify)
		if err != nil {
			return nil, err
		}
		return fn(s, mem, args)
	}
}

func verifyNumber(value interface{}, child *types.Node) error {
	if !types.IsNumber(value) {
		return typeError("%s is not a number.", child)
	}
	return nil
}

func verifyInteger(value interface{}, child *types.Node) error {
	if !types.IsInteger(value) {
		return typeError("%s is not an integer.", child)
	}
	return nil
}

func verifyString(value interface{}, child *types.Node) error {
	if types.KindOf(value) != types.KindString {
		return typeError("%s is not a string.", child)
	}
	return nil
}

func verifyStringOrNull(value interface{}, child *types.Node) error {
	if types.IsNull(value) {
		return nil
	}
	return verifyString(value, child)
}

func verifyList(value interface{}, child *types.Node) error {
	if types.KindOf(value) != types.KindArray {
		return typeError("%s is not a list or array.", child)
	}
	return nil
}

func verifyNotNull(value interface{}, child *types.Node) error {
	if types.IsNull(value) {
		return types.NewError(types.ErrNullInstance, "%s is null.", child)
	}
	return nil
}

func verifyNumberOrNumericList(value interface{}, child *types.Node) error {
	if types.IsNumber(value) {
		return nil
	}
	list, ok := types.ToList(value)
	if !ok {
		return typeError("%s is neither a number nor a numeric list.", child)
	}
	for _, item := range list {
		if !types.IsNumber(item) {
			return typeError("%s is not a numeric list.", child)
		}
	}
	return nil
}

func verifyStringOrList(value interface{}, child *types.Node) error {
	switch types.KindOf(value) {
	case types.KindString, types.KindArray:
		return nil
	}
	return typeError("%s is neither a list nor a string.", child)
}

func verifyObject(value interface{}, child *types.Node) error {
	if types.KindOf(value) != types.KindObject {
		return typeError("%s is not an object.", child)
	}
	return nil
}

func typeError(format string, child *types.Node) error {
	return types.NewError(types.ErrTypeMismatch, format, child).WithExpr(child)
}

// validateAtLeast returns a validator requiring n or more children of any type.
func validateAtLeast(n int) ValidateFunc {
	return func(node *types.Node) error {
		if len(node.Children) < n {
			return arityError(node, n, -1)
		}
		return nil
	}
}
