package evaluator

import (
	"math"
	"math/big"

	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func mathFunctions() []*FunctionDef {
	var defs []*FunctionDef
	defs = append(defs, aliases(&FunctionDef{
		Name:       "+",
		ReturnType: types.ReturnNumber | types.ReturnString,
		Validate:   validateAtLeast(2),
		Evaluate:   evalAdd,
	}, "add")...)
	defs = append(defs, aliases(newFunction("-", "<n+:n>", applyWithError(fnSubtract, verifyNumber)), "sub")...)
	defs = append(defs, aliases(newFunction("*", "<n-n+:n>", applyWithError(fnMultiply, verifyNumber)), "mul")...)
	defs = append(defs, aliases(newFunction("/", "<n-n+:n>", applyWithError(fnDivide, verifyNumber)), "div")...)
	defs = append(defs, aliases(newFunction("%", "<n-n:n>", applyWithError(fnMod, verifyNumber)), "mod")...)
	defs = append(defs, aliases(newFunction("^", "<n-n+:n>", applyWithError(fnPower, verifyNumber)), "power")...)
	defs = append(defs,
		newFunction("max", "<(na)+:n>", applyWithError(fnMax, verifyNumberOrNumericList)),
		newFunction("min", "<(na)+:n>", applyWithError(fnMin, verifyNumberOrNumericList)),
		newFunction("sum", "<a:n>", applyWithError(fnSum, verifyNumberOrNumericList)),
		newFunction("average", "<a:n>", applyWithError(fnAverage, verifyNumberOrNumericList)),
		newFunction("abs", "<n:n>", applyWithError(fnAbs, verifyNumber)),
		newFunction("sqrt", "<n:n>", applyWithError(fnSqrt, verifyNumber)),
		newFunction("floor", "<n:n>", applyWithError(fnFloor, verifyNumber)),
		newFunction("ceiling", "<n:n>", applyWithError(fnCeiling, verifyNumber)),
		newFunction("round", "<n-n?:n>", applyWithError(fnRound, verifyNumber)),
		newFunction("rand", "<n-n:n>", applyWithState(fnRand, verifyInteger)),
	)
	return defs
}

// evalAdd adds numbers. When any operand is a string the operands are
// concatenated instead, with undefined and null contributing nothing.
func evalAdd(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	args, err := evalChildren(s, node, mem, nil)
	if err != nil {
		return nil, err
	}
	acc := args[0]
	for i, arg := range args[1:] {
		switch {
		case types.IsNumber(acc) && types.IsNumber(arg):
			acc = arith(acc, arg, opAdd)
		case types.KindOf(acc) == types.KindString || types.KindOf(arg) == types.KindString:
			acc = stringify(acc) + stringify(arg)
		default:
			bad := node.Children[0]
			if types.IsNumber(acc) || types.KindOf(acc) == types.KindString {
				bad = node.Children[i+1]
			}
			return nil, typeError("%s is not a number or string.", bad)
		}
	}
	return acc, nil
}

func fnSubtract(args []interface{}) (interface{}, error) {
	if len(args) == 1 {
		return negate(args[0])
	}
	acc := args[0]
	for _, arg := range args[1:] {
		acc = arith(acc, arg, opSub)
	}
	return acc, nil
}

func fnMultiply(args []interface{}) (interface{}, error) {
	acc := args[0]
	for _, arg := range args[1:] {
		acc = arith(acc, arg, opMul)
	}
	return acc, nil
}

func fnDivide(args []interface{}) (interface{}, error) {
	acc := args[0]
	for _, arg := range args[1:] {
		var err error
		if acc, err = divide(acc, arg); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func fnMod(args []interface{}) (interface{}, error) {
	return modulo(args[0], args[1])
}

// fnPower folds left: power(2, 3, 2) is (2^3)^2.
func fnPower(args []interface{}) (interface{}, error) {
	acc := args[0]
	for _, arg := range args[1:] {
		var err error
		if acc, err = power(acc, arg); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// numbersOf flattens number and numeric-list arguments.
func numbersOf(args []interface{}) []interface{} {
	var out []interface{}
	for _, arg := range args {
		if list, ok := types.ToList(arg); ok {
			out = append(out, list...)
		} else {
			out = append(out, arg)
		}
	}
	return out
}

func extreme(args []interface{}, want int) (interface{}, error) {
	nums := numbersOf(args)
	if len(nums) == 0 {
		return nil, types.NewError(types.ErrInvalidRange, "no numbers to compare")
	}
	best := nums[0]
	for _, n := range nums[1:] {
		c, err := compare.Compare(n, best)
		if err != nil {
			return nil, err
		}
		if c == want {
			best = n
		}
	}
	return types.Normalize(best), nil
}

func fnMax(args []interface{}) (interface{}, error) {
	return extreme(args, 1)
}

func fnMin(args []interface{}) (interface{}, error) {
	return extreme(args, -1)
}

func fnSum(args []interface{}) (interface{}, error) {
	var acc interface{} = int64(0)
	for _, n := range numbersOf(args) {
		acc = arith(acc, n, opAdd)
	}
	return acc, nil
}

func fnAverage(args []interface{}) (interface{}, error) {
	nums := numbersOf(args)
	if len(nums) == 0 {
		return nil, types.NewError(types.ErrInvalidRange, "average of an empty list")
	}
	sum, _ := fnSum(args)
	avg, err := divideDecimal(sum, int64(len(nums)))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRange, "average of %v", nums).WithCause(err)
	}
	return avg, nil
}

func fnAbs(args []interface{}) (interface{}, error) {
	switch n := types.Normalize(args[0]).(type) {
	case float64:
		return math.Abs(n), nil
	case int64:
		if n >= 0 {
			return n, nil
		}
		return negate(n)
	case *big.Int:
		return narrow(new(big.Int).Abs(n)), nil
	}
	return nil, types.NewError(types.ErrTypeMismatch, "%v is not a number.", args[0])
}

func fnSqrt(args []interface{}) (interface{}, error) {
	f, _ := types.ToFloat(args[0])
	if f < 0 {
		return nil, types.NewError(types.ErrInvalidRange, "%v is not a non-negative number", args[0])
	}
	return math.Sqrt(f), nil
}

// integral returns f as an integer value when it is integral and finite.
func integral(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	if i, ok := types.ToInt64(f); ok {
		return i
	}
	b, _ := new(big.Float).SetFloat64(f).Int(nil)
	return b
}

func fnFloor(args []interface{}) (interface{}, error) {
	if !isFloatOperand(args[0]) {
		return types.Normalize(args[0]), nil
	}
	f, _ := types.ToFloat(args[0])
	return integral(math.Floor(f)), nil
}

func fnCeiling(args []interface{}) (interface{}, error) {
	if !isFloatOperand(args[0]) {
		return types.Normalize(args[0]), nil
	}
	f, _ := types.ToFloat(args[0])
	return integral(math.Ceil(f)), nil
}

// fnRound rounds half away from zero to an optional number of digits
// between 0 and 15.
func fnRound(args []interface{}) (interface{}, error) {
	var digits int64
	if len(args) > 1 {
		d, ok := types.ToInt64(args[1])
		if !ok || d < 0 || d > 15 {
			return nil, types.NewError(types.ErrInvalidRange, "The second parameter %v must be an integer between 0 and 15.", args[1])
		}
		digits = d
	}
	if !isFloatOperand(args[0]) {
		return types.Normalize(args[0]), nil
	}
	d, err := roundDecimal(args[0], int32(digits))
	if err != nil {
		return nil, err
	}
	return decimalValue(d), nil
}

// fnRand returns an integer in [min, max).
func fnRand(_ *State, mem memory.Memory, args []interface{}) (interface{}, error) {
	lo, okLo := types.ToInt64(args[0])
	hi, okHi := types.ToInt64(args[1])
	if !okLo || !okHi {
		return nil, types.NewError(types.ErrInvalidRange, "rand bounds %v and %v must fit in 64 bits", args[0], args[1])
	}
	if lo > hi {
		return nil, types.NewError(types.ErrInvalidRange, "Min value %d cannot be greater than max value %d.", lo, hi)
	}
	return memory.RandomNext(mem, lo, hi), nil
}
