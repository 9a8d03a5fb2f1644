package evaluator

import (
	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func logicFunctions() []*FunctionDef {
	return []*FunctionDef{
		newFunction("==", "<x-x:b>", apply(func(args []interface{}) interface{} {
			return compare.IsEqual(args[0], args[1])
		}, nil)),
		newFunction("!=", "<x-x:b>", apply(func(args []interface{}) interface{} {
			return !compare.IsEqual(args[0], args[1])
		}, nil)),
		newFunction("<", "<x-x:b>", applyWithError(comparison(func(c int) bool { return c < 0 }), nil)),
		newFunction("<=", "<x-x:b>", applyWithError(comparison(func(c int) bool { return c <= 0 }), nil)),
		newFunction(">", "<x-x:b>", applyWithError(comparison(func(c int) bool { return c > 0 }), nil)),
		newFunction(">=", "<x-x:b>", applyWithError(comparison(func(c int) bool { return c >= 0 }), nil)),
		{Name: "&&", ReturnType: types.ReturnBoolean, Validate: validateAtLeast(1), Evaluate: evalAnd},
		{Name: "||", ReturnType: types.ReturnBoolean, Validate: validateAtLeast(1), Evaluate: evalOr},
		newFunction("!", "<x:b>", apply(func(args []interface{}) interface{} {
			return !compare.IsLogicTrue(args[0])
		}, nil)),
		newFunction("if", "<x-x-x:x>", evalIf),
		newFunction("exists", "<x:b>", apply(func(args []interface{}) interface{} {
			return !types.IsNull(args[0])
		}, nil)),
		{Name: "coalesce", ReturnType: types.ReturnObject, Validate: validateAtLeast(1), Evaluate: evalCoalesce},
		kindPredicate("isString", func(v interface{}) bool { return types.KindOf(v) == types.KindString }),
		kindPredicate("isInteger", types.IsInteger),
		kindPredicate("isFloat", func(v interface{}) bool { return types.IsNumber(v) && !types.IsInteger(v) }),
		kindPredicate("isArray", func(v interface{}) bool { return types.KindOf(v) == types.KindArray }),
		kindPredicate("isObject", func(v interface{}) bool { return types.KindOf(v) == types.KindObject }),
		kindPredicate("isBoolean", func(v interface{}) bool { return types.KindOf(v) == types.KindBoolean }),
		kindPredicate("isDateTime", isDateTimeValue),
	}
}

func kindPredicate(name string, pred func(interface{}) bool) *FunctionDef {
	return newFunction(name, "<x:b>", apply(func(args []interface{}) interface{} {
		return pred(args[0])
	}, nil))
}

// comparison orders two numbers, strings or date/times.
func comparison(accept func(int) bool) func(args []interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		c, err := compare.Compare(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return accept(c), nil
	}
}

// evalAnd stops at the first child that is not logic-true.
func evalAnd(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	for _, child := range node.Children {
		v, err := s.Eval(child, mem)
		if err != nil {
			return nil, err
		}
		if !compare.IsLogicTrue(v) {
			return false, nil
		}
	}
	return true, nil
}

// evalOr stops at the first child that is logic-true.
func evalOr(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	for _, child := range node.Children {
		v, err := s.Eval(child, mem)
		if err != nil {
			return nil, err
		}
		if compare.IsLogicTrue(v) {
			return true, nil
		}
	}
	return false, nil
}

// evalIf evaluates only the branch selected by the condition.
func evalIf(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	cond, err := s.Eval(node.Children[0], mem)
	if err != nil {
		return nil, err
	}
	if compare.IsLogicTrue(cond) {
		return s.Eval(node.Children[1], mem)
	}
	return s.Eval(node.Children[2], mem)
}

// evalCoalesce returns the first argument that is neither undefined nor
// null. Empty strings and containers are values and are returned as-is.
// Arguments after the first value are not evaluated; an error halts.
func evalCoalesce(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	for _, child := range node.Children {
		v, err := s.Eval(child, mem)
		if err != nil {
			return nil, err
		}
		if !types.IsNull(v) {
			return v, nil
		}
	}
	return nil, nil
}
