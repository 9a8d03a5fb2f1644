// Package types defines the core type system for goadaptive.
//
// This package contains type definitions for:
//   - Node: expression tree nodes, as produced by an external parser
//   - Expression: a bound, validated tree ready for evaluation
//   - Kind: the closed set of runtime value shapes
//   - Mapping: uniform key/value access over host data
//   - Error types: structured errors with codes
package types

// Expression is a bound expression tree.
//
// An Expression is produced by binding a tree against a function registry.
// Binding validates every call site, so an Expression can be evaluated many
// times against different memory without re-validation. It is safe for
// concurrent use by multiple goroutines.
type Expression struct {
	root   *Node
	source string
}

// NewExpression creates a new Expression from a bound root node.
func NewExpression(root *Node, source string) *Expression {
	return &Expression{
		root:   root,
		source: source,
	}
}

// Root returns the bound root node.
func (e *Expression) Root() *Node {
	return e.root
}

// ReturnType returns the static return type of the whole expression.
func (e *Expression) ReturnType() ReturnType {
	return e.root.ReturnType
}

// Source returns the document the tree was decoded from, if known.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.root.String()
}
