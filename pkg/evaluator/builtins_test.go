package evaluator

import (
	"context"
	"math"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func TestMathFunctions(t *testing.T) {
	runValueTests(t, []valueTest{
		{name: "add integers", expr: call("+", c(1), c(2)), want: int64(3)},
		{name: "add string", expr: call("+", c("a"), c(1)), want: "a1"},
		{name: "add float", expr: call("+", c(1.5), c(1)), want: 2.5},
		{name: "add overflows to big", expr: call("add", c(int64(9223372036854775807)), c(1)), want: bigInt("9223372036854775808")},
		{name: "negate", expr: call("-", c(5)), want: int64(-5)},
		{name: "subtract left fold", expr: call("-", c(10), c(3), c(2)), want: int64(5)},
		{name: "multiply mixed", expr: call("*", c(2), c(3.5)), want: 7.0},
		{name: "integer division truncates", expr: call("/", c(7), c(2)), want: int64(3)},
		{name: "float division", expr: call("div", c(7.0), c(2)), want: 3.5},
		{name: "modulo", expr: call("%", c(7), c(3)), want: int64(1)},
		{name: "modulo keeps sign", expr: call("mod", c(-7), c(3)), want: int64(-1)},
		{name: "power", expr: call("^", c(2), c(10)), want: int64(1024)},
		{name: "power folds left", expr: call("power", c(2), c(3), c(2)), want: int64(64)},
		{name: "power exact big", expr: call("power", c(2), c(64)), want: bigInt("18446744073709551616")},
		{name: "max over lists", expr: call("max", c(1), c([]interface{}{5, 2}), c(3)), want: int64(5)},
		{name: "min with float", expr: call("min", c([]interface{}{4, 2.5})), want: 2.5},
		{name: "sum", expr: call("sum", c([]interface{}{1, 2, 3})), want: int64(6)},
		{name: "average", expr: call("average", c([]interface{}{1, 2})), want: 1.5},
		{name: "abs", expr: call("abs", c(-3)), want: int64(3)},
		{name: "sqrt", expr: call("sqrt", c(16)), want: 4.0},
		{name: "floor", expr: call("floor", c(2.7)), want: int64(2)},
		{name: "ceiling", expr: call("ceiling", c(2.1)), want: int64(3)},
		{name: "floor of integer", expr: call("floor", c(4)), want: int64(4)},
		{name: "round half away from zero", expr: call("round", c(2.5)), want: int64(3)},
		{name: "round negative half", expr: call("round", c(-2.5)), want: int64(-3)},
		{name: "round digits", expr: call("round", c(2.675), c(2)), want: 2.68},
		{name: "power of one with huge exponent", expr: call("power", c(1), c(int64(1)<<62)), want: int64(1)},
		{name: "power of minus one with huge odd exponent", expr: call("power", c(-1), c(int64(1)<<62+1)), want: int64(-1)},
		{name: "power of zero with max exponent", expr: call("power", c(0), c(int64(math.MaxInt64))), want: int64(0)},
		{name: "abs of min int", expr: call("abs", c(int64(math.MinInt64))), want: bigInt("9223372036854775808")},
		{name: "negate min int", expr: call("-", c(int64(math.MinInt64))), want: bigInt("9223372036854775808")},
	})
}

func TestMathHostNumbers(t *testing.T) {
	state := map[string]interface{}{
		"f32":  float32(-1.5),
		"i":    int(-3),
		"u64":  uint64(math.MaxUint64),
		"i8":   int8(4),
		"list": []interface{}{float32(0.5), int(2), uint64(3)},
	}
	runValueTests(t, []valueTest{
		{name: "abs float32", expr: call("abs", acc("f32")), state: state, want: 1.5},
		{name: "negate float32", expr: call("-", acc("f32")), state: state, want: 1.5},
		{name: "abs int", expr: call("abs", acc("i")), state: state, want: int64(3)},
		{name: "negate int", expr: call("-", acc("i")), state: state, want: int64(3)},
		{name: "abs uint64", expr: call("abs", acc("u64")), state: state, want: bigInt("18446744073709551615")},
		{name: "negate uint64", expr: call("-", acc("u64")), state: state, want: bigInt("-18446744073709551615")},
		{name: "add uint64 overflows to big", expr: call("+", acc("u64"), c(1)), state: state, want: bigInt("18446744073709551616")},
		{name: "multiply float32", expr: call("*", acc("f32"), c(2)), state: state, want: -3.0},
		{name: "power int8", expr: call("power", acc("i8"), c(2)), state: state, want: int64(16)},
		{name: "sum mixed host list", expr: call("sum", acc("list")), state: state, want: 5.5},
		{name: "max mixed host list", expr: call("max", acc("list")), state: state, want: int64(3)},
		{name: "round float32", expr: call("round", acc("f32")), state: state, want: int64(-2)},
		{name: "floor host int", expr: call("floor", acc("i")), state: state, want: int64(-3)},
		{name: "min host list", expr: call("min", acc("list")), state: state, want: 0.5},
	})
}

func TestMathErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "divide by zero", expr: call("/", c(1), c(0)), code: types.ErrInvalidRange},
		{name: "modulo by zero", expr: call("%", c(1), c(0)), code: types.ErrInvalidRange},
		{name: "sqrt of negative", expr: call("sqrt", c(-1)), code: types.ErrInvalidRange},
		{name: "round digits out of range", expr: call("round", c(1.5), c(16)), code: types.ErrInvalidRange},
		{name: "add boolean", expr: call("+", c(true), c(1)), code: types.ErrTypeMismatch},
		{name: "subtract string at runtime", expr: call("-", acc("s"), c(1)), state: map[string]interface{}{"s": "x"}, code: types.ErrTypeMismatch},
		{name: "average of empty list", expr: call("average", c([]interface{}{})), code: types.ErrInvalidRange},
		{name: "rand bounds reversed", expr: call("rand", c(5), c(1)), code: types.ErrInvalidRange},
		{name: "power with huge exponent", expr: call("power", c(2), c(int64(1)<<62)), code: types.ErrInvalidRange},
		{name: "power with max exponent", expr: call("power", c(3), c(int64(math.MaxInt64))), code: types.ErrInvalidRange},
	})
}

func TestRand(t *testing.T) {
	ev := New()
	expr := ev.MustBind(call("rand", c(1), c(4)))
	draw := func(seed int64) []interface{} {
		mem := memory.WithRandom(memory.Wrap(nil), rand.New(rand.NewSource(seed)))
		var out []interface{}
		for i := 0; i < 50; i++ {
			v, err := ev.Evaluate(context.Background(), expr, mem, Options{})
			qt.Assert(t, qt.IsNil(err))
			out = append(out, v)
		}
		return out
	}

	first := draw(42)
	for _, v := range first {
		n, ok := v.(int64)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Assert(t, qt.IsTrue(n >= 1 && n < 4), qt.Commentf("%d", n))
	}
	qt.Assert(t, qt.DeepEquals(draw(42), first))

	v := mustEval(t, call("rand", c(5), c(5)), nil)
	qt.Assert(t, qt.Equals(v, interface{}(int64(5))))

	v = mustEval(t, call("rand", c(int64(math.MaxInt64)), c(int64(math.MaxInt64))), nil)
	qt.Assert(t, qt.Equals(v, interface{}(int64(math.MaxInt64))))
}

func TestRandWideRange(t *testing.T) {
	ev := New()
	tests := []struct {
		name   string
		lo, hi int64
	}{
		{"full int64 range", math.MinInt64, math.MaxInt64},
		{"span one past max int", -1, math.MaxInt64},
		{"negative half", math.MinInt64, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expr := ev.MustBind(call("rand", c(test.lo), c(test.hi)))
			seeded := memory.WithRandom(memory.Wrap(nil), rand.New(rand.NewSource(7)))
			for _, mem := range []memory.Memory{seeded, memory.Wrap(nil)} {
				for i := 0; i < 20; i++ {
					v, err := ev.Evaluate(context.Background(), expr, mem, Options{})
					qt.Assert(t, qt.IsNil(err))
					n, ok := v.(int64)
					qt.Assert(t, qt.IsTrue(ok))
					qt.Assert(t, qt.IsTrue(n >= test.lo && n < test.hi), qt.Commentf("%d", n))
				}
			}
		})
	}
}

func TestLogicFunctions(t *testing.T) {
	runValueTests(t, []valueTest{
		{name: "equal across number kinds", expr: call("==", c(1), c(1.0)), want: true},
		{name: "not equal", expr: call("!=", c("a"), c("b")), want: true},
		{name: "less", expr: call("<", c(1), c(2)), want: true},
		{name: "greater or equal strings", expr: call(">=", c("b"), c("a")), want: true},
		{name: "and treats zero as true", expr: call("&&", c(true), c(0)), want: true},
		{name: "or with null", expr: call("||", c(false), c(types.NullValue)), want: false},
		{name: "not null", expr: call("!", c(types.NullValue)), want: true},
		{name: "if else branch", expr: call("if", c(false), c(1), c(2)), want: int64(2)},
		{name: "if skips the other branch", expr: call("if", c(true), c("ok"), call("/", c(1), c(0))), want: "ok"},
		{name: "and short circuits", expr: call("&&", c(false), call("/", c(1), c(0))), want: false},
		{name: "exists missing", expr: call("exists", acc("missing")), want: false},
		{name: "coalesce keeps empty string", expr: call("coalesce", acc("missing"), c(types.NullValue), c(""), c("x")), want: ""},
		{name: "coalesce all null", expr: call("coalesce", c(types.NullValue), acc("missing")), want: nil},
		{name: "coalesce is lazy", expr: call("coalesce", c(1), call("/", c(1), c(0))), want: int64(1)},
		{name: "isInteger of integral float", expr: call("isInteger", c(2.0)), want: true},
		{name: "isFloat", expr: call("isFloat", c(2.5)), want: true},
		{name: "isFloat of integral float", expr: call("isFloat", c(2.0)), want: false},
		{name: "isString", expr: call("isString", c("s")), want: true},
		{name: "isArray", expr: call("isArray", c([]interface{}{})), want: true},
		{name: "isObject", expr: call("isObject", c(map[string]interface{}{})), want: true},
		{name: "isBoolean", expr: call("isBoolean", c(false)), want: true},
		{name: "isDateTime string", expr: call("isDateTime", c("2024-01-02T03:04:05Z")), want: true},
		{name: "isDateTime invalid", expr: call("isDateTime", c("nope")), want: false},
	})
}

func TestLogicErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "compare incomparable", expr: call("<", c(1), c("a")), code: types.ErrTypeMismatch},
		{name: "coalesce stops on error", expr: call("coalesce", c(types.NullValue), call("/", c(1), c(0)), c(1)), code: types.ErrInvalidRange},
		{name: "or propagates error", expr: call("||", call("/", c(1), c(0)), c(true)), code: types.ErrInvalidRange},
	})
}

func TestStringFunctions(t *testing.T) {
	runValueTests(t, []valueTest{
		{name: "concat strings", expr: call("concat", c("a"), c(1), c(types.NullValue)), want: "a1"},
		{name: "concat lists", expr: call("&", c([]interface{}{1}), c([]interface{}{2})), want: list(int64(1), int64(2))},
		{name: "length counts characters", expr: call("length", c("héllo")), want: int64(5)},
		{name: "length of null", expr: call("length", acc("missing")), want: int64(0)},
		{name: "toLower", expr: call("toLower", c("ABC")), want: "abc"},
		{name: "toUpper with locale", expr: call("toUpper", c("istanbul"), c("tr-TR")), want: "İSTANBUL"},
		{name: "trim", expr: call("trim", c("  x ")), want: "x"},
		{name: "replace", expr: call("replace", c("a.b.c"), c("."), c("-")), want: "a-b-c"},
		{name: "replaceIgnoreCase", expr: call("replaceIgnoreCase", c("Hello hello"), c("HELLO"), c("bye")), want: "bye bye"},
		{name: "split", expr: call("split", c("a,b"), c(",")), want: list("a", "b")},
		{name: "split into characters", expr: call("split", c("ab")), want: list("a", "b")},
		{name: "substring", expr: call("substring", c("hello"), c(1), c(3)), want: "ell"},
		{name: "substring to end", expr: call("substring", c("hello"), c(3)), want: "lo"},
		{name: "startsWith", expr: call("startsWith", c("hello"), c("he")), want: true},
		{name: "endsWith", expr: call("endsWith", c("hello"), c("he")), want: false},
		{name: "indexOf character index", expr: call("indexOf", c("héllo"), c("l")), want: int64(2)},
		{name: "lastIndexOf character index", expr: call("lastIndexOf", c("héllo"), c("l")), want: int64(3)},
		{name: "indexOf missing", expr: call("indexOf", c("abc"), c("z")), want: int64(-1)},
		{name: "indexOf list", expr: call("indexOf", c([]interface{}{1, 2, 1}), c(1)), want: int64(0)},
		{name: "lastIndexOf list", expr: call("lastIndexOf", c([]interface{}{1, 2, 1}), c(1)), want: int64(2)},
		{name: "formatNumber", expr: call("formatNumber", c(1234567.891), c(2)), want: "1,234,567.89"},
		{name: "formatNumber rounds half up", expr: call("formatNumber", c(2.675), c(2)), want: "2.68"},
		{name: "formatNumber locale", expr: call("formatNumber", c(1234567.891), c(2), c("de-DE")), want: "1.234.567,89"},
	})
}

func TestStringErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "substring start out of range", expr: call("substring", c("hello"), c(9)), code: types.ErrInvalidRange},
		{name: "substring length out of range", expr: call("substring", c("hello"), c(2), c(9)), code: types.ErrInvalidRange},
		{name: "substring max length", expr: call("substring", c("abc"), c(1), c(int64(math.MaxInt64))), code: types.ErrInvalidRange},
		{name: "substring max start", expr: call("substring", c("abc"), c(int64(math.MaxInt64))), code: types.ErrInvalidRange},
		{name: "substring min start", expr: call("substring", c("abc"), c(int64(math.MinInt64)), c(1)), code: types.ErrInvalidRange},
		{name: "substring min length", expr: call("substring", c("abc"), c(1), c(int64(math.MinInt64))), code: types.ErrInvalidRange},
		{name: "replace empty", expr: call("replace", c("abc"), c(""), c("x")), code: types.ErrInvalidRange},
		{name: "toUpper bad locale", expr: call("toUpper", c("a"), c("not a locale!")), code: types.ErrInvalidRange},
		{name: "length of number at runtime", expr: call("length", acc("n")), state: map[string]interface{}{"n": int64(1)}, code: types.ErrTypeMismatch},
	})
}

func TestEvaluationLocale(t *testing.T) {
	v, err := evalNode(New(), call("toUpper", c("i")), nil, Options{Locale: "tr"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, interface{}("İ")))

	v, err = evalNode(New(), call("formatNumber", c(1234.5), c(1)), nil, Options{Locale: "de"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, interface{}("1.234,5")))
}

func TestNewGuid(t *testing.T) {
	v := mustEval(t, call("newGuid"), nil)
	s, ok := v.(string)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Matches(s, regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}`)))
	qt.Assert(t, qt.Not(qt.Equals(mustEval(t, call("newGuid"), nil), v)))
}

func TestCollectionFunctions(t *testing.T) {
	people := []interface{}{
		map[string]interface{}{"name": "b", "age": 30},
		map[string]interface{}{"name": "a", "age": 20},
	}
	ties := []interface{}{
		map[string]interface{}{"n": "a", "k": 1},
		map[string]interface{}{"n": "b", "k": 1},
		map[string]interface{}{"n": "c", "k": 2},
	}
	runValueTests(t, []valueTest{
		{name: "count string", expr: call("count", c("héllo")), want: int64(5)},
		{name: "count list", expr: call("count", c([]interface{}{1, 2})), want: int64(2)},
		{name: "contains substring", expr: call("contains", c("hello"), c("ell")), want: true},
		{name: "contains element", expr: call("contains", c([]interface{}{1, "a"}), c("a")), want: true},
		{name: "contains record property ignores case", expr: call("contains", c(map[string]interface{}{"Name": 1}), c("name")), want: true},
		{name: "contains explicit map key is exact", expr: call("contains", c(obj("Name", int64(1))), c("name")), want: false},
		{name: "empty string", expr: call("empty", c("")), want: true},
		{name: "empty list", expr: call("empty", c([]interface{}{})), want: true},
		{name: "empty object", expr: call("empty", c(map[string]interface{}{})), want: true},
		{name: "zero is not empty", expr: call("empty", c(0)), want: false},
		{name: "first character", expr: call("first", c("abc")), want: "a"},
		{name: "first of empty", expr: call("first", c([]interface{}{})), want: nil},
		{name: "last element", expr: call("last", c([]interface{}{1, 2})), want: int64(2)},
		{name: "join", expr: call("join", c([]interface{}{1, 2}), c("-")), want: "1-2"},
		{name: "join with last separator", expr: call("join", c([]interface{}{"a", "b", "c"}), c(", "), c(" and ")), want: "a, b and c"},
		{name: "join two with last separator", expr: call("join", c([]interface{}{"a", "b"}), c(", "), c(" and ")), want: "a and b"},
		{name: "unique keeps first", expr: call("unique", c([]interface{}{1, 2, 1, "1", 2.0})), want: list(int64(1), int64(2), "1")},
		{name: "flatten fully", expr: call("flatten", c([]interface{}{1, []interface{}{2, []interface{}{3, []interface{}{4}}}})), want: list(int64(1), int64(2), int64(3), int64(4))},
		{name: "flatten one level", expr: call("flatten", c([]interface{}{1, []interface{}{2, []interface{}{3}}}), c(1)), want: list(int64(1), int64(2), list(int64(3)))},
		{name: "flatten depth below one", expr: call("flatten", c([]interface{}{[]interface{}{1, []interface{}{2}}}), c(0)), want: list(int64(1), list(int64(2)))},
		{name: "union", expr: call("union", c([]interface{}{1, 2}), c([]interface{}{2, 3})), want: list(int64(1), int64(2), int64(3))},
		{name: "intersection", expr: call("intersection", c([]interface{}{1, 2, 2, 3}), c([]interface{}{2, 3, 4})), want: list(int64(2), int64(3))},
		{name: "skip", expr: call("skip", c([]interface{}{1, 2, 3}), c(1)), want: list(int64(2), int64(3))},
		{name: "skip past end", expr: call("skip", c([]interface{}{1}), c(5)), want: list()},
		{name: "take string", expr: call("take", c("hello"), c(2)), want: "he"},
		{name: "take list", expr: call("take", c([]interface{}{1, 2, 3}), c(5)), want: list(int64(1), int64(2), int64(3))},
		{name: "subArray", expr: call("subArray", c([]interface{}{1, 2, 3, 4}), c(1), c(3)), want: list(int64(2), int64(3))},
		{name: "skip max", expr: call("skip", c([]interface{}{1, 2}), c(int64(math.MaxInt64))), want: list()},
		{name: "skip min", expr: call("skip", c([]interface{}{1, 2}), c(int64(math.MinInt64))), want: list(int64(1), int64(2))},
		{name: "take max from list", expr: call("take", c([]interface{}{1, 2}), c(int64(math.MaxInt64))), want: list(int64(1), int64(2))},
		{name: "take max from string", expr: call("take", c("abc"), c(int64(math.MaxInt64))), want: "abc"},
		{name: "take host int", expr: call("take", c("abc"), acc("n")), state: map[string]interface{}{"n": int(2)}, want: "ab"},
		{name: "subArray host uint64 bounds", expr: call("subArray", c([]interface{}{1, 2, 3}), acc("s"), acc("e")), state: map[string]interface{}{"s": uint64(1), "e": uint8(2)}, want: list(int64(2))},
		{name: "reverse string", expr: call("reverse", c("abc")), want: "cba"},
		{name: "reverse list", expr: call("reverse", c([]interface{}{1, 2})), want: list(int64(2), int64(1))},
		{name: "sortBy natural", expr: call("sortBy", c([]interface{}{3, 1, 2})), want: list(int64(1), int64(2), int64(3))},
		{name: "sortBy property", expr: call("sortBy", c(people), c("age")), want: list(
			map[string]interface{}{"name": "a", "age": int64(20)},
			map[string]interface{}{"name": "b", "age": int64(30)},
		)},
		{name: "sortByDescending reverses ties", expr: call("sortByDescending", c(ties), c("k")), want: list(
			map[string]interface{}{"n": "c", "k": int64(2)},
			map[string]interface{}{"n": "b", "k": int64(1)},
			map[string]interface{}{"n": "a", "k": int64(1)},
		)},
		{name: "createArray", expr: call("createArray", c(1), c("a")), want: list(int64(1), "a")},
		{name: "createArray empty", expr: call("createArray"), want: list()},
	})
}

func TestCollectionErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "join a string", expr: call("join", acc("s"), c(",")), state: map[string]interface{}{"s": "abc"}, code: types.ErrNotCollection},
		{name: "subArray bad end", expr: call("subArray", c([]interface{}{1, 2}), c(1), c(5)), code: types.ErrIndexOutOfRange},
		{name: "take negative", expr: call("take", c([]interface{}{1}), c(-1)), code: types.ErrInvalidRange},
		{name: "take min", expr: call("take", c("abc"), c(int64(math.MinInt64))), code: types.ErrInvalidRange},
		{name: "subArray max start", expr: call("subArray", c([]interface{}{1, 2}), c(int64(math.MaxInt64))), code: types.ErrIndexOutOfRange},
		{name: "subArray min start", expr: call("subArray", c([]interface{}{1, 2}), c(int64(math.MinInt64))), code: types.ErrIndexOutOfRange},
		{name: "subArray max end", expr: call("subArray", c([]interface{}{1, 2}), c(0), c(int64(math.MaxInt64))), code: types.ErrIndexOutOfRange},
		{name: "subArray min end", expr: call("subArray", c([]interface{}{1, 2}), c(1), c(int64(math.MinInt64))), code: types.ErrIndexOutOfRange},
		{name: "unique of object", expr: call("unique", acc("o")), state: map[string]interface{}{"o": map[string]interface{}{}}, code: types.ErrTypeMismatch},
	})
}

func TestFlattenIsIdempotent(t *testing.T) {
	nested := c([]interface{}{1, []interface{}{2, []interface{}{3}}, []interface{}{}})
	once := mustEval(t, call("flatten", nested), nil)
	twice := mustEval(t, call("flatten", call("flatten", nested)), nil)
	assertValue(t, twice, once)
	assertValue(t, once, list(int64(1), int64(2), int64(3)))
}

func TestUniqueDoesNotChangeInput(t *testing.T) {
	input := []interface{}{int64(1), int64(1)}
	state := map[string]interface{}{"items": input}
	assertValue(t, mustEval(t, call("unique", acc("items")), state), list(int64(1)))
	qt.Assert(t, qt.HasLen(input, 2))
}

func TestObjectFunctions(t *testing.T) {
	state := map[string]interface{}{"user": map[string]interface{}{"name": "ada"}}
	runValueTests(t, []valueTest{
		{name: "getProperty", expr: call("getProperty", c(map[string]interface{}{"a": 1}), c("a")), want: int64(1)},
		{name: "getProperty path", expr: call("getProperty", c("user.name")), state: state, want: "ada"},
		{name: "getProperty missing", expr: call("getProperty", c("user.age")), state: state, want: nil},
		{name: "setProperty appends", expr: call("setProperty", c(map[string]interface{}{"a": 1}), c("b"), c(2)), want: obj("a", int64(1), "b", int64(2))},
		{name: "setProperty replaces", expr: call("setProperty", c(obj("a", int64(1), "b", int64(2))), c("a"), c(3)), want: obj("a", int64(3), "b", int64(2))},
		{name: "addProperty", expr: call("addProperty", c(obj("a", int64(1))), c("z"), c(true)), want: obj("a", int64(1), "z", true)},
		{name: "removeProperty", expr: call("removeProperty", c(map[string]interface{}{"a": 1, "b": 2}), c("a")), want: obj("b", int64(2))},
		{name: "merge later wins", expr: call("merge", c(map[string]interface{}{"a": 1, "b": 1}), c(map[string]interface{}{"b": 2})), want: obj("a", int64(1), "b", int64(2))},
		{name: "merge list of objects", expr: call("merge", c([]interface{}{obj("a", int64(1)), obj("b", int64(2))})), want: obj("a", int64(1), "b", int64(2))},
		{name: "keys", expr: call("keys", c(map[string]interface{}{"b": 1, "a": 2})), want: list("a", "b")},
		{name: "keys keep insertion order", expr: call("keys", c(obj("b", int64(1), "a", int64(2)))), want: list("b", "a")},
	})
}

func TestObjectErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "addProperty existing", expr: call("addProperty", c(obj("a", int64(1))), c("a"), c(2)), code: types.ErrInvalidRange},
		{name: "merge scalar", expr: call("merge", c(obj()), c(1)), code: types.ErrTypeMismatch},
		{name: "setProperty on string", expr: call("setProperty", acc("s"), c("a"), c(1)), state: map[string]interface{}{"s": "x"}, code: types.ErrTypeMismatch},
	})
}

func TestSetPropertyCopies(t *testing.T) {
	source := obj("a", int64(1))
	state := map[string]interface{}{"o": source}
	assertValue(t, mustEval(t, call("setProperty", acc("o"), c("a"), c(2)), state), obj("a", int64(2)))
	assertValue(t, source, obj("a", int64(1)))
}

func TestConvertFunctions(t *testing.T) {
	runValueTests(t, []valueTest{
		{name: "int from string", expr: call("int", c("42")), want: int64(42)},
		{name: "int truncates", expr: call("int", c(3.9)), want: int64(3)},
		{name: "float from string", expr: call("float", c("1.5")), want: 1.5},
		{name: "string of integral float", expr: call("string", c(1.0)), want: "1"},
		{name: "string of list", expr: call("string", c([]interface{}{1, "a"})), want: `[1,"a"]`},
		{name: "string of null", expr: call("string", c(types.NullValue)), want: ""},
		{name: "bool of zero", expr: call("bool", c(0)), want: false},
		{name: "bool of empty string", expr: call("bool", c("")), want: true},
		{name: "json keeps key order", expr: call("json", c(`{"b":1,"a":[true,null]}`)), want: obj("b", int64(1), "a", list(true, types.NullValue))},
		{name: "jsonStringify map", expr: call("jsonStringify", c(map[string]interface{}{"b": 1, "a": "x"})), want: `{"a":"x","b":1}`},
		{name: "jsonStringify ordered", expr: call("jsonStringify", call("json", c(`{"b":1,"a":2}`))), want: `{"b":1,"a":2}`},
		{name: "jsonStringify keeps html", expr: call("jsonStringify", c("<b>")), want: `"<b>"`},
	})
}

func TestConvertErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "int of text", expr: call("int", c("abc")), code: types.ErrTypeMismatch},
		{name: "int of null", expr: call("int", c(types.NullValue)), code: types.ErrNullInstance},
		{name: "float of text", expr: call("float", c("abc")), code: types.ErrTypeMismatch},
		{name: "json invalid", expr: call("json", c("{nope")), code: types.ErrTypeMismatch},
	})
}

var fixedNow = time.Date(2024, 3, 5, 6, 7, 8, 9_000_000, time.UTC)

func TestDateTimeFunctions(t *testing.T) {
	clock := WithClock(func() time.Time { return fixedNow })
	runValueTests(t, []valueTest{
		{name: "utcNow", expr: call("utcNow"), want: "2024-03-05T06:07:08.009Z"},
		{name: "utcNow format", expr: call("utcNow", c("yyyy")), want: "2024"},
		{name: "addDays crosses leap day", expr: call("addDays", c("2024-02-28T00:00:00.000Z"), c(2)), want: "2024-03-01T00:00:00.000Z"},
		{name: "addDays format", expr: call("addDays", c("2024-02-28T00:00:00Z"), c(1), c("yyyy-MM-dd")), want: "2024-02-29"},
		{name: "addHours keeps time value", expr: call("addHours", c(fixedNow), c(1)), want: fixedNow.Add(time.Hour)},
		{name: "addMinutes", expr: call("addMinutes", c("2024-03-05T06:07:08Z"), c(-7)), want: "2024-03-05T06:00:08.000Z"},
		{name: "addSeconds", expr: call("addSeconds", c("2024-03-05T23:59:59Z"), c(1)), want: "2024-03-06T00:00:00.000Z"},
		{name: "dayOfMonth", expr: call("dayOfMonth", c("2024-03-05T00:00:00Z")), want: int64(5)},
		{name: "dayOfWeek", expr: call("dayOfWeek", c("2024-03-05T00:00:00Z")), want: int64(2)},
		{name: "dayOfYear", expr: call("dayOfYear", c("2024-03-05T00:00:00Z")), want: int64(65)},
		{name: "month", expr: call("month", c(fixedNow)), want: int64(3)},
		{name: "year", expr: call("year", c("2024-03-05")), want: int64(2024)},
		{name: "startOfDay", expr: call("startOfDay", c("2024-03-05T06:07:08Z")), want: "2024-03-05T00:00:00.000Z"},
		{name: "formatDateTime numeric", expr: call("formatDateTime", c("2024-03-05T06:07:08Z"), c("dd/MM/yyyy HH:mm")), want: "05/03/2024 06:07"},
		{name: "formatDateTime names", expr: call("formatDateTime", c("2024-03-05T06:07:08Z"), c("dddd, MMMM d 'at' h tt")), want: "Tuesday, March 5 at 6 AM"},
		{name: "formatDateTime default", expr: call("formatDateTime", c(fixedNow)), want: "2024-03-05T06:07:08.009Z"},
		{name: "ticks", expr: call("ticks", c("1970-01-01T00:00:00Z")), want: bigInt("621355968000000000")},
		{name: "ticksToDays", expr: call("ticksToDays", c(int64(864000000000))), want: 1.0},
		{name: "ticksToHours", expr: call("ticksToHours", c(int64(18000000000))), want: 0.5},
		{name: "ticksToMinutes", expr: call("ticksToMinutes", c(int64(600000000))), want: 1.0},
		{name: "dateTimeDiff", expr: call("dateTimeDiff", c("2024-01-02T00:00:00Z"), c("2024-01-01T00:00:00Z")), want: int64(864000000000)},
	}, clock)
}

func TestDateTimeErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "addDays invalid", expr: call("addDays", c("nope"), c(1)), code: types.ErrInvalidTimestamp},
		{name: "dayOfWeek number", expr: call("dayOfWeek", c(1)), code: types.ErrInvalidTimestamp},
		{name: "ticksToDays float", expr: call("ticksToDays", c(1.5)), code: types.ErrTypeMismatch},
	})
}
