package evaluator

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func TestLambda(t *testing.T) {
	nums := c([]interface{}{1, 2, 3})
	x := acc("x")
	runValueTests(t, []valueTest{
		{name: "foreach", expr: call("foreach", nums, x, call("*", x, c(2))), want: list(int64(2), int64(4), int64(6))},
		{name: "select", expr: call("select", nums, x, call("string", x)), want: list("1", "2", "3")},
		{name: "foreach empty", expr: call("foreach", c([]interface{}{}), x, x), want: list()},
		{name: "where", expr: call("where", nums, x, call(">", x, c(1))), want: list(int64(2), int64(3))},
		{name: "where on object", expr: call("where", c(obj("a", int64(1), "b", int64(2))), x, call(">", acc("value", x), c(1))), want: obj("b", int64(2))},
		{name: "foreach object keys", expr: call("foreach", c(map[string]interface{}{"b": 1, "a": 2}), x, acc("key", x)), want: list("a", "b")},
		{name: "any", expr: call("any", nums, x, call("==", x, c(2))), want: true},
		{name: "any empty", expr: call("any", c([]interface{}{}), x, c(true)), want: false},
		{name: "all", expr: call("all", nums, x, call(">", x, c(0))), want: true},
		{name: "all fails", expr: call("all", nums, x, call(">", x, c(1))), want: false},
		{name: "all empty", expr: call("all", c([]interface{}{}), x, c(false)), want: true},
		{name: "outer memory visible", expr: call("foreach", c([]interface{}{1, 2}), x, call("+", x, acc("offset"))), state: map[string]interface{}{"offset": int64(10)}, want: list(int64(11), int64(12))},
		{name: "inner iterator shadows", expr: call("foreach", c([]interface{}{1, 2}), x, call("foreach", c([]interface{}{10}), x, x)), want: list(list(int64(10)), list(int64(10)))},
		{name: "outer iterator visible", expr: call("foreach", c([]interface{}{1, 2}), x, call("foreach", c([]interface{}{10}), acc("y"), call("+", x, acc("y")))), want: list(list(int64(11)), list(int64(12)))},
		{name: "iterator unbound afterwards", expr: call("createArray", call("foreach", c([]interface{}{1}), x, x), x), want: list(list(int64(1)), nil)},
		{name: "undefined element falls through", expr: call("foreach", c([]interface{}{nil}), x, x), state: map[string]interface{}{"x": "outer"}, want: list("outer")},
		{name: "source from memory", expr: call("foreach", acc("items"), x, acc("n", x)), state: map[string]interface{}{"items": []interface{}{map[string]interface{}{"n": "a"}}}, want: list("a")},
	})
}

func TestLambdaErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{name: "null source", expr: call("foreach", c(types.NullValue), acc("x"), acc("x")), code: types.ErrNullInstance},
		{name: "undefined source", expr: call("where", acc("missing"), acc("x"), acc("x")), code: types.ErrNullInstance},
		{name: "scalar source", expr: call("foreach", c(1), acc("x"), acc("x")), code: types.ErrNotCollection},
		{name: "body error", expr: call("foreach", c([]interface{}{1, 0}), acc("x"), call("/", c(1), acc("x"))), code: types.ErrInvalidRange},
	})
}

func TestLambdaBindErrors(t *testing.T) {
	tests := []struct {
		name string
		expr *types.Node
		code types.ErrorCode
	}{
		{"call as iterator", call("foreach", c([]interface{}{}), call("concat", c("x")), c(1)), types.ErrLambdaIdentifier},
		{"path as iterator", call("all", c([]interface{}{}), acc("a", acc("b")), c(1)), types.ErrLambdaIdentifier},
		{"constant as iterator", call("any", c([]interface{}{}), c("x"), c(1)), types.ErrLambdaIdentifier},
		{"missing body", call("where", c([]interface{}{}), acc("x")), types.ErrArgumentCount},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New().Bind(test.expr)
			qt.Assert(t, qt.Equals(types.CodeOf(err), test.code), qt.Commentf("%v", err))
		})
	}
}

func TestLambdaRestoresMemoryStack(t *testing.T) {
	ev := New()
	for _, body := range []*types.Node{
		acc("x"),
		call("/", c(1), acc("x")),
	} {
		expr := ev.MustBind(call("foreach", c([]interface{}{1, 0}), acc("x"), body))
		root := memory.Wrap(nil)
		stack := memory.NewStacked(root)
		s := newState(context.Background(), ev, root, Options{})
		_, _ = s.Eval(expr.Root(), stack)
		qt.Assert(t, qt.Equals(stack.Depth(), 1), qt.Commentf("%s", body))
	}
}
