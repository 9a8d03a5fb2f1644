package evaluator

import (
	"math"
	"math/big"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Integer arithmetic stays exact: int64 results that overflow are promoted
// to *big.Int and big results that fit are narrowed back to int64. Any float
// operand makes the operation a float64 one.

type intOp struct {
	small func(a, b int64) (int64, bool)
	big   func(z, a, b *big.Int) *big.Int
	float func(a, b float64) float64
}

var (
	opAdd = intOp{
		small: func(a, b int64) (int64, bool) {
			c := a + b
			return c, (c > a) == (b > 0)
		},
		big:   (*big.Int).Add,
		float: func(a, b float64) float64 { return a + b },
	}
	opSub = intOp{
		small: func(a, b int64) (int64, bool) {
			c := a - b
			return c, (c < a) == (b > 0)
		},
		big:   (*big.Int).Sub,
		float: func(a, b float64) float64 { return a - b },
	}
	opMul = intOp{
		small: func(a, b int64) (int64, bool) {
			if a == 0 || b == 0 {
				return 0, true
			}
			c := a * b
			if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return 0, false
			}
			return c, true
		},
		big:   (*big.Int).Mul,
		float: func(a, b float64) float64 { return a * b },
	}
)

func isFloatOperand(v interface{}) bool {
	return types.KindOf(v) == types.KindFloat
}

// arith applies op to two numbers.
func arith(a, b interface{}, op intOp) interface{} {
	if isFloatOperand(a) || isFloatOperand(b) {
		fa, _ := types.ToFloat(a)
		fb, _ := types.ToFloat(b)
		return op.float(fa, fb)
	}
	ia, aSmall := a.(int64)
	ib, bSmall := b.(int64)
	if aSmall && bSmall {
		if c, ok := op.small(ia, ib); ok {
			return c
		}
	}
	ba, _ := types.ToBigInt(a)
	bb, _ := types.ToBigInt(b)
	return narrow(op.big(new(big.Int), ba, bb))
}

// narrow returns b as int64 when it fits.
func narrow(b *big.Int) interface{} {
	if b.IsInt64() {
		return b.Int64()
	}
	return b
}

func isZero(v interface{}) bool {
	switch n := v.(type) {
	case *big.Int:
		return n.Sign() == 0
	}
	f, _ := types.ToFloat(v)
	return f == 0
}

// divide divides a by b. Integer division truncates toward zero.
func divide(a, b interface{}) (interface{}, error) {
	if isZero(b) {
		return nil, types.NewError(types.ErrInvalidRange, "Cannot divide by zero.")
	}
	if isFloatOperand(a) || isFloatOperand(b) {
		fa, _ := types.ToFloat(a)
		fb, _ := types.ToFloat(b)
		return fa / fb, nil
	}
	ia, aSmall := a.(int64)
	ib, bSmall := b.(int64)
	if aSmall && bSmall && !(ia == math.MinInt64 && ib == -1) {
		return ia / ib, nil
	}
	ba, _ := types.ToBigInt(a)
	bb, _ := types.ToBigInt(b)
	return narrow(new(big.Int).Quo(ba, bb)), nil
}

// modulo returns the remainder of a / b with the sign of a.
func modulo(a, b interface{}) (interface{}, error) {
	if isZero(b) {
		return nil, types.NewError(types.ErrInvalidRange, "Cannot divide by zero.")
	}
	if isFloatOperand(a) || isFloatOperand(b) {
		fa, _ := types.ToFloat(a)
		fb, _ := types.ToFloat(b)
		return math.Mod(fa, fb), nil
	}
	ia, aSmall := a.(int64)
	ib, bSmall := b.(int64)
	if aSmall && bSmall && ib != -1 {
		return ia % ib, nil
	}
	ba, _ := types.ToBigInt(a)
	bb, _ := types.ToBigInt(b)
	return narrow(new(big.Int).Rem(ba, bb)), nil
}

// maxExactPowerBits bounds the size of an exact integer power.
const maxExactPowerBits = 1 << 16

// power raises x to y. Integer bases with non-negative integer exponents are
// computed exactly while the result stays within maxExactPowerBits.
func power(x, y interface{}) (interface{}, error) {
	if !isFloatOperand(x) && !isFloatOperand(y) {
		bx, _ := types.ToBigInt(x)
		by, _ := types.ToBigInt(y)
		if by.Sign() >= 0 && by.IsInt64() && exactPowerFits(bx, by.Int64()) {
			return narrow(new(big.Int).Exp(bx, by, nil)), nil
		}
	}
	fx, _ := types.ToFloat(x)
	fy, _ := types.ToFloat(y)
	r := math.Pow(fx, fy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, types.NewError(types.ErrInvalidRange, "%v ^ %v is not a finite number", x, y)
	}
	return r, nil
}

// exactPowerFits reports whether base^exp stays within maxExactPowerBits.
// Bases 0, 1 and -1 never grow.
func exactPowerFits(base *big.Int, exp int64) bool {
	bits := int64(base.BitLen())
	return bits <= 1 || exp <= maxExactPowerBits/bits
}

// negate returns -v for a number of any host type.
func negate(v interface{}) (interface{}, error) {
	switch n := types.Normalize(v).(type) {
	case float64:
		return -n, nil
	case int64:
		if n != math.MinInt64 {
			return -n, nil
		}
		return new(big.Int).Neg(big.NewInt(n)), nil
	case *big.Int:
		return narrow(new(big.Int).Neg(n)), nil
	}
	return nil, types.NewError(types.ErrTypeMismatch, "%v is not a number.", v)
}

// toDecimal converts a number to a decimal. Floats use their shortest
// decimal representation, so 2.675 is 2.675 and not its binary neighbour.
// NaN and infinities have no decimal form.
func toDecimal(v interface{}) (*apd.Decimal, error) {
	if b, ok := v.(*big.Int); ok {
		return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(b), 0), nil
	}
	if isFloatOperand(v) {
		f, _ := types.ToFloat(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, types.NewError(types.ErrInvalidRange, "%v is not a finite number", f)
		}
		d, _, err := apd.NewFromString(strconv.FormatFloat(f, 'g', -1, 64))
		return d, err
	}
	i, ok := types.ToInt64(v)
	if !ok {
		return nil, types.NewError(types.ErrTypeMismatch, "%v is not a number", v)
	}
	return apd.New(i, 0), nil
}

// decimalContext rounds half away from zero.
func decimalContext() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}

// roundDecimal rounds v to digits decimal places.
func roundDecimal(v interface{}, digits int32) (*apd.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRange, "%v cannot be rounded", v).WithCause(err)
	}
	out := new(apd.Decimal)
	if _, err := decimalContext().Quantize(out, d, -digits); err != nil {
		return nil, types.NewError(types.ErrInvalidRange, "%v cannot be rounded to %d digits", v, digits).WithCause(err)
	}
	return out, nil
}

// decimalValue converts a decimal back to a runtime number: int64 or
// *big.Int when integral, float64 otherwise.
func decimalValue(d *apd.Decimal) interface{} {
	var i apd.Decimal
	cond, err := apd.BaseContext.WithPrecision(1000).Quantize(&i, d, 0)
	if err == nil && !cond.Inexact() {
		b := i.Coeff.MathBigInt()
		if i.Negative {
			b.Neg(b)
		}
		return narrow(b)
	}
	f, _ := d.Float64()
	return f
}

// divideDecimal returns a / b as a float64 computed in decimal.
func divideDecimal(a interface{}, b int64) (float64, error) {
	da, err := toDecimal(a)
	if err != nil {
		return 0, err
	}
	q := new(apd.Decimal)
	if _, err := decimalContext().Quo(q, da, apd.New(b, 0)); err != nil {
		return 0, err
	}
	return q.Float64()
}
