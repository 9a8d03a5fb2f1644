// Package goadaptive is an embeddable expression-evaluation engine.
//
// Expressions arrive as trees built by an external parser (see package
// treeio for the document format). A tree is bound once against a function
// registry and can then be evaluated many times, concurrently, against
// different memory.
//
// # Quick Start
//
//	// One-shot evaluation of a tree document
//	result, err := goadaptive.Eval(doc, map[string]interface{}{"name": "ada"})
//
//	// Bind once, evaluate many times
//	ev := evaluator.New()
//	expr, err := goadaptive.CompileWith(ev, doc)
//	r1, _ := ev.Evaluate(ctx, expr, state1, evaluator.Options{})
//	r2, _ := ev.Evaluate(ctx, expr, state2, evaluator.Options{Locale: "de-DE"})
//
// # More Information
//
//   - Evaluator: github.com/sandrolain/goadaptive/pkg/evaluator
//   - Memory: github.com/sandrolain/goadaptive/pkg/memory
//   - Functions: github.com/sandrolain/goadaptive/pkg/functions
//   - Types: github.com/sandrolain/goadaptive/pkg/types
package goadaptive

import (
	"context"
	"fmt"

	"github.com/sandrolain/goadaptive/pkg/evaluator"
	"github.com/sandrolain/goadaptive/pkg/treeio"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// Version returns the current version of goadaptive.
func Version() string {
	return "v0.1.0-dev"
}

// Compile decodes a tree document and binds it against the built-in
// functions.
func Compile(doc []byte) (*types.Expression, error) {
	return CompileWith(evaluator.New(), doc)
}

// CompileWith decodes a tree document and binds it with ev. The result
// must be evaluated by the same evaluator.
func CompileWith(ev *evaluator.Evaluator, doc []byte) (*types.Expression, error) {
	root, err := treeio.Decode(doc)
	if err != nil {
		return nil, err
	}
	expr, err := ev.Bind(root)
	if err != nil {
		return nil, err
	}
	return types.NewExpression(expr.Root(), string(doc)), nil
}

// MustCompile is like Compile but panics if the document cannot be bound.
func MustCompile(doc []byte) *types.Expression {
	expr, err := Compile(doc)
	if err != nil {
		panic(fmt.Sprintf("goadaptive: Compile: %v", err))
	}
	return expr
}

// Eval decodes, binds and evaluates a tree document in a single call.
func Eval(doc []byte, state interface{}, opts ...evaluator.EvalOption) (interface{}, error) {
	return EvalWithContext(context.Background(), doc, state, opts...)
}

// EvalWithContext is like Eval with a context that is handed to host
// functions.
func EvalWithContext(ctx context.Context, doc []byte, state interface{}, opts ...evaluator.EvalOption) (interface{}, error) {
	ev := evaluator.New(opts...)
	expr, err := CompileWith(ev, doc)
	if err != nil {
		return nil, err
	}
	return ev.Evaluate(ctx, expr, state, evaluator.Options{})
}
