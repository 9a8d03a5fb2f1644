// Package evaluator binds and evaluates expression trees.
//
// Binding resolves every call site against the function registry and runs
// its validator once. The bound tree is then evaluated any number of times
// against different memory:
//
//	ev := evaluator.New()
//	expr, err := ev.Bind(types.Call("join", types.Accessor("names"), types.Constant(", ")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := ev.Evaluate(ctx, expr, data, evaluator.Options{})
//
// # Concurrency
//
// A configured Evaluator and the expressions it bound are read-only and may
// be shared by concurrent evaluations. Every Evaluate call owns its own
// evaluation-target stack and memory stack.
package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/sandrolain/goadaptive/pkg/functions"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// Evaluator binds and evaluates expression trees.
type Evaluator struct {
	opts    EvalOptions
	logger  *slog.Logger
	funcs   map[string]*FunctionDef // host functions and definitions
	defs    map[string]bool
	initErr error
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits nesting of definition calls. Zero disables the limit.
	MaxDepth int
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Clock returns the current time for utcNow. Defaults to time.Now.
	Clock func() time.Time
	// CustomFunctions holds host functions to register with the evaluator.
	CustomFunctions []functions.CustomFunctionDef
	// Definitions holds named definitions to register with the evaluator.
	Definitions []functions.Definition
}

// New creates a new Evaluator.
//
// A custom function or definition that cannot be registered makes every
// later Bind fail with the registration error.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 10000,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	e := &Evaluator{
		opts:   options,
		logger: options.Logger,
		funcs:  make(map[string]*FunctionDef, len(options.CustomFunctions)+len(options.Definitions)),
		defs:   make(map[string]bool, len(options.Definitions)),
	}
	for _, cfd := range options.CustomFunctions {
		if err := e.registerCustom(cfd); err != nil {
			e.initErr = err
			return e
		}
	}
	if len(options.Definitions) > 0 {
		e.initErr = e.Define(options.Definitions...)
	}
	return e
}

func (e *Evaluator) now() time.Time {
	return e.opts.Clock()
}

// lookup resolves a function name: host functions and definitions first,
// then built-ins.
func (e *Evaluator) lookup(name string) (*FunctionDef, bool) {
	if def, ok := e.funcs[name]; ok {
		return def, true
	}
	return GetFunction(name)
}

// Names returns the names of every function the evaluator can call, sorted.
func (e *Evaluator) Names() []string {
	names := BuiltinNames()
	for name := range e.funcs {
		if _, builtin := GetFunction(name); !builtin {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Function returns the definition bound to name.
func (e *Evaluator) Function(name string) (*FunctionDef, bool) {
	return e.lookup(name)
}

// Bind validates root against the registry and returns the bound expression.
//
// The input tree is copied; it is not modified and may be bound again.
// A bind error is fatal: the tree must not be evaluated.
func (e *Evaluator) Bind(root *types.Node) (*types.Expression, error) {
	if e.initErr != nil {
		return nil, e.initErr
	}
	if root == nil {
		return nil, types.NewError(types.ErrMalformedTree, "empty expression tree")
	}
	bound := root.Clone()
	if err := e.bind(bound); err != nil {
		if e.opts.Debug {
			e.logger.Debug("bind failed", "expr", root.String(), "error", err)
		}
		return nil, err
	}
	if e.opts.Debug {
		e.logger.Debug("bound expression", "expr", bound.String(), "returnType", bound.ReturnType.String())
	}
	return types.NewExpression(bound, bound.String()), nil
}

// MustBind is like Bind but panics on error.
func (e *Evaluator) MustBind(root *types.Node) *types.Expression {
	expr, err := e.Bind(root)
	if err != nil {
		panic(err)
	}
	return expr
}

// bind binds children first so validators see their static types.
func (e *Evaluator) bind(n *types.Node) error {
	for _, child := range n.Children {
		if child == nil {
			return types.NewError(types.ErrMalformedTree, "%s has a missing child", n.Type)
		}
		if err := e.bind(child); err != nil {
			return err
		}
	}
	def, ok := e.lookup(n.Type)
	if !ok {
		return types.NewError(types.ErrUnknownFunction, "%s does not have an evaluator, it's not a built-in function or a custom function.", n.Type)
	}
	if def.Validate != nil {
		if err := def.Validate(n); err != nil {
			return err
		}
	}
	if n.Type == types.NodeConstant {
		n.ReturnType = returnTypeOf(n.Value)
	} else {
		n.ReturnType = def.ReturnType
	}
	return nil
}

func returnTypeOf(v interface{}) types.ReturnType {
	switch k := types.KindOf(v); {
	case k == types.KindBoolean:
		return types.ReturnBoolean
	case k.IsNumeric():
		return types.ReturnNumber
	case k == types.KindString:
		return types.ReturnString
	case k == types.KindArray:
		return types.ReturnArray
	}
	return types.ReturnObject
}

// Evaluate evaluates a bound expression against state.
//
// state is any host value, or a memory.Memory to control resolution and the
// random source. ctx is passed to host functions; the core never blocks on it.
func (e *Evaluator) Evaluate(ctx context.Context, expr *types.Expression, state interface{}, opts Options) (interface{}, error) {
	if expr == nil || expr.Root() == nil {
		return nil, types.NewError(types.ErrMalformedTree, "invalid expression")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	root := memory.Wrap(state)
	s := newState(ctx, e, root, opts)
	result, err := s.Eval(expr.Root(), memory.NewStacked(root))
	if err != nil {
		if e.opts.Debug {
			e.logger.Debug("evaluation failed", "expr", expr.String(), "error", err)
		}
		return nil, err
	}
	return result, nil
}

// Eval binds root and evaluates it once.
func (e *Evaluator) Eval(ctx context.Context, root *types.Node, state interface{}, opts Options) (interface{}, error) {
	expr, err := e.Bind(root)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, expr, state, opts)
}

// registerCustom adds a host function.
func (e *Evaluator) registerCustom(cfd functions.CustomFunctionDef) error {
	if err := checkRegistrableName(cfd.Name); err != nil {
		return err
	}
	if cfd.Fn == nil {
		return types.NewError(types.ErrInvalidDefinition, "custom function %s has no implementation", cfd.Name)
	}
	def := &FunctionDef{Name: cfd.Name, ReturnType: types.ReturnObject}
	var sig *Signature
	if cfd.Signature != "" {
		var err error
		sig, err = ParseSignature(cfd.Signature)
		if err != nil {
			return err
		}
		def.ReturnType = sig.ReturnType
		def.Validate = sig.Validate
	}
	fn := cfd.Fn
	def.Evaluate = func(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
		args, err := evalChildren(s, node, mem, nil)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			for i, arg := range args {
				if err := sig.param(i).ValidateArgument(arg); err != nil {
					return nil, types.NewError(types.ErrTypeMismatch, "argument %d of %s: %s", i+1, node.Type, err.(*types.Error).Message).WithExpr(node)
				}
			}
		}
		result, err := fn(s.Context(), args...)
		if err != nil {
			var te *types.Error
			if errors.As(err, &te) {
				return nil, err
			}
			return nil, types.NewError(types.ErrHostFunction, "%s: %v", node.Type, err).WithCause(err)
		}
		return types.Normalize(result), nil
	}
	e.funcs[cfd.Name] = def
	return nil
}

func checkRegistrableName(name string) error {
	switch name {
	case "":
		return types.NewError(types.ErrInvalidDefinition, "function name must not be empty")
	case types.NodeConstant, types.NodeAccessor, types.NodeElement:
		return types.NewError(types.ErrInvalidDefinition, "%s is reserved", name)
	}
	return nil
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum nesting of definition calls.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithClock sets the time source of utcNow.
func WithClock(clock func() time.Time) EvalOption {
	return func(opts *EvalOptions) {
		opts.Clock = clock
	}
}

// WithCustomFunction registers a host function with the evaluator.
// signature is an optional type signature (e.g. "<s:s>"); pass "" to skip.
//
// Example:
//
//	evaluator.New(evaluator.WithCustomFunction("greet", "<s:s>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
//	    return "Hello, " + args[0].(string) + "!", nil
//	}))
func WithCustomFunction(name, signature string, fn functions.CustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, functions.CustomFunctionDef{
			Name:      name,
			Signature: signature,
			Fn:        fn,
		})
	}
}

// WithFunctions registers host functions and definitions in one call.
func WithFunctions(entries ...functions.FunctionEntry) EvalOption {
	return func(opts *EvalOptions) {
		for _, entry := range entries {
			switch v := entry.(type) {
			case functions.CustomFunctionDef:
				opts.CustomFunctions = append(opts.CustomFunctions, v)
			case functions.Definition:
				opts.Definitions = append(opts.Definitions, v)
			}
		}
	}
}

// WithDefinitions registers named definitions with the evaluator.
func WithDefinitions(defs ...functions.Definition) EvalOption {
	return func(opts *EvalOptions) {
		opts.Definitions = append(opts.Definitions, defs...)
	}
}
