package evaluator

import (
	"sort"
	"sync"

	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// EvaluateFunc evaluates a bound node against mem.
type EvaluateFunc func(s *State, node *types.Node, mem memory.Memory) (interface{}, error)

// ValidateFunc checks a node at bind time. Its children are already bound.
type ValidateFunc func(node *types.Node) error

// FunctionDef defines a function: how calls are validated when a tree is
// bound, how they are evaluated, and the declared return type.
type FunctionDef struct {
	Name       string
	ReturnType types.ReturnType
	Validate   ValidateFunc
	Evaluate   EvaluateFunc
}

var (
	builtinFunctions     map[string]*FunctionDef
	builtinFunctionsOnce sync.Once
)

// initBuiltinFunctions initializes the built-in function registry.
func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		builtinFunctions = make(map[string]*FunctionDef, 128)
		for _, group := range [][]*FunctionDef{
			accessFunctions(),
			logicFunctions(),
			mathFunctions(),
			stringFunctions(),
			collectionFunctions(),
			lambdaFunctions(),
			objectFunctions(),
			convertFunctions(),
			datetimeFunctions(),
		} {
			for _, def := range group {
				if _, dup := builtinFunctions[def.Name]; dup {
					panic("evaluator: duplicate built-in " + def.Name)
				}
				builtinFunctions[def.Name] = def
			}
		}
	})
}

// GetFunction retrieves a built-in function by name.
func GetFunction(name string) (*FunctionDef, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// BuiltinNames returns the names of all built-in functions, sorted.
func BuiltinNames() []string {
	initBuiltinFunctions()
	names := make([]string, 0, len(builtinFunctions))
	for name := range builtinFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newFunction builds a FunctionDef whose arity and argument types come from
// a signature. It panics on a malformed signature: the built-in table is
// static and a bad entry is a programming error.
func newFunction(name, signature string, eval EvaluateFunc) *FunctionDef {
	sig, err := ParseSignature(signature)
	if err != nil {
		panic("evaluator: " + name + ": " + err.Error())
	}
	return &FunctionDef{
		Name:       name,
		ReturnType: sig.ReturnType,
		Validate:   sig.Validate,
		Evaluate:   eval,
	}
}

// aliases returns copies of def registered under other names.
func aliases(def *FunctionDef, names ...string) []*FunctionDef {
	out := []*FunctionDef{def}
	for _, name := range names {
		c := *def
		c.Name = name
		out = append(out, &c)
	}
	return out
}
