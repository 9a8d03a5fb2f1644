package evaluator

import (
	"context"
	"math/big"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"github.com/sandrolain/goadaptive/pkg/types"
)

var (
	c    = types.Constant
	acc  = types.Accessor
	call = types.Call
	elem = types.Element
)

type entry struct {
	Key   string
	Value interface{}
}

// valueOpts compares ordered maps by their entries and big integers by value.
var valueOpts = cmp.Options{
	cmp.Transformer("OrderedMap", func(m *types.OrderedMap) []entry {
		out := make([]entry, 0, m.Len())
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			out = append(out, entry{k, v})
		}
		return out
	}),
	cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 }),
}

func assertValue(t *testing.T, got, want interface{}) {
	t.Helper()
	qt.Assert(t, qt.CmpEquals(got, want, valueOpts))
}

// obj builds an ordered map from alternating keys and values.
func obj(kv ...interface{}) *types.OrderedMap {
	om := types.NewOrderedMap()
	for i := 0; i+1 < len(kv); i += 2 {
		om.Set(kv[i].(string), kv[i+1])
	}
	return om
}

func list(items ...interface{}) []interface{} {
	if items == nil {
		return []interface{}{}
	}
	return items
}

func bigInt(s string) *big.Int {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big int " + s)
	}
	return b
}

func evalNode(ev *Evaluator, root *types.Node, state interface{}, opts Options) (interface{}, error) {
	return ev.Eval(context.Background(), root, state, opts)
}

func mustEval(t *testing.T, root *types.Node, state interface{}, opts ...EvalOption) interface{} {
	t.Helper()
	v, err := evalNode(New(opts...), root, state, Options{})
	qt.Assert(t, qt.IsNil(err), qt.Commentf("%s", root))
	return v
}

func evalError(t *testing.T, root *types.Node, state interface{}, opts ...EvalOption) error {
	t.Helper()
	_, err := evalNode(New(opts...), root, state, Options{})
	qt.Assert(t, qt.IsNotNil(err), qt.Commentf("%s", root))
	return err
}

type valueTest struct {
	name  string
	expr  *types.Node
	state interface{}
	want  interface{}
}

func runValueTests(t *testing.T, tests []valueTest, opts ...EvalOption) {
	t.Helper()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assertValue(t, mustEval(t, test.expr, test.state, opts...), test.want)
		})
	}
}

type errorTest struct {
	name  string
	expr  *types.Node
	state interface{}
	code  types.ErrorCode
}

func runErrorTests(t *testing.T, tests []errorTest, opts ...EvalOption) {
	t.Helper()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := evalError(t, test.expr, test.state, opts...)
			qt.Assert(t, qt.Equals(types.CodeOf(err), test.code), qt.Commentf("%v", err))
		})
	}
}
