// Package ext provides optional host functions that are not part of the
// built-in catalog.
//
// Extensions are grouped in sub-packages:
//   - extcrypto – uuid, hash, hmac
//
// # Integration
//
//	ev := evaluator.New(ext.WithAll())
//
// or one function at a time:
//
//	ev := evaluator.New(evaluator.WithFunctions(extcrypto.Hash()))
package ext

import (
	"github.com/sandrolain/goadaptive/pkg/evaluator"
	"github.com/sandrolain/goadaptive/pkg/ext/extcrypto"
	"github.com/sandrolain/goadaptive/pkg/functions"
)

// All returns every extension function definition.
func All() []functions.CustomFunctionDef {
	var all []functions.CustomFunctionDef
	all = append(all, extcrypto.All()...)
	return all
}

// AllEntries returns All as [functions.FunctionEntry] values for
// [evaluator.WithFunctions].
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// WithAll returns an EvalOption that registers every extension function.
func WithAll() evaluator.EvalOption {
	return evaluator.WithFunctions(AllEntries()...)
}

// WithCrypto returns an EvalOption for the cryptographic functions.
func WithCrypto() evaluator.EvalOption {
	return evaluator.WithFunctions(extcrypto.AllEntries()...)
}
