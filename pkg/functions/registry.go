// Package functions provides the types hosts use to extend an evaluator.
//
// The core performs no I/O. Anything that needs the outside world, such as
// loading text or calling a service, reaches expressions only as a function
// registered here.
//
// # Example
//
//	ev := evaluator.New(
//	    evaluator.WithCustomFunction("greet", "<s:s>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
//	        return "Hello, " + args[0].(string) + "!", nil
//	    }),
//	)
//
// Named definitions are small expression templates. They are callable like
// functions and may call each other:
//
//	err := ev.Define(functions.Definition{
//	    Name:   "fullName",
//	    Params: []string{"p"},
//	    Body:   types.Call("concat", types.Accessor("first", types.Accessor("p")), types.Constant(" "), types.Accessor("last", types.Accessor("p"))),
//	})
package functions

import (
	"context"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// CustomFunc is the signature for host-defined functions.
// args contains the evaluated arguments in order.
type CustomFunc func(ctx context.Context, args ...interface{}) (interface{}, error)

// CustomFunctionDef describes a host-defined function together with its
// optional type signature (e.g. "<s-s:s>").
// An empty Signature accepts any number of arguments of any type.
type CustomFunctionDef struct {
	// Name is the function name as it appears in expression trees.
	Name string
	// Signature declares arity and argument types. It is checked when a tree
	// is bound and again on the evaluated arguments.
	Signature string
	// Fn is the implementation.
	Fn CustomFunc
}

// Definition is a named expression with parameters.
//
// Calling a definition binds its parameters as a memory layer over the root
// memory of the evaluation and evaluates Body there. A definition that
// reenters itself with the same arguments is reported as a loop.
type Definition struct {
	Name   string
	Params []string
	Body   *types.Node
}

// FunctionEntry is implemented by [CustomFunctionDef] and [Definition] so
// both can be passed to a single registration call.
type FunctionEntry interface {
	isFunctionEntry()
}

func (CustomFunctionDef) isFunctionEntry() {}
func (Definition) isFunctionEntry()        {}
