package evaluator

import (
	"github.com/sandrolain/goadaptive/pkg/functions"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// Define registers named definitions. Definitions may call each other, so
// all names are registered before any body is bound. If a body fails to bind
// none of defs is registered.
//
// Define must complete before the evaluator is used by other goroutines.
func (e *Evaluator) Define(defs ...functions.Definition) error {
	added := make([]string, 0, len(defs))
	rollback := func() {
		for _, name := range added {
			delete(e.funcs, name)
			delete(e.defs, name)
		}
	}

	bodies := make([]*types.Node, len(defs))
	for i, d := range defs {
		if err := e.checkDefinition(d); err != nil {
			rollback()
			return err
		}
		def, body := newDefinitionFunc(d)
		e.funcs[d.Name] = def
		e.defs[d.Name] = true
		added = append(added, d.Name)
		bodies[i] = body
	}

	for i, d := range defs {
		if err := e.bind(bodies[i]); err != nil {
			rollback()
			return types.NewError(types.ErrInvalidDefinition, "definition %s: %v", d.Name, err).WithCause(err)
		}
	}

	if e.opts.Debug {
		e.logger.Debug("registered definitions", "count", len(defs), "names", added)
	}
	return nil
}

func (e *Evaluator) checkDefinition(d functions.Definition) error {
	if err := checkRegistrableName(d.Name); err != nil {
		return err
	}
	if _, builtin := GetFunction(d.Name); builtin {
		return types.NewError(types.ErrInvalidDefinition, "definition %s shadows a built-in function", d.Name)
	}
	if _, exists := e.funcs[d.Name]; exists {
		return types.NewError(types.ErrInvalidDefinition, "%s is already registered", d.Name)
	}
	if d.Body == nil {
		return types.NewError(types.ErrInvalidDefinition, "definition %s has no body", d.Name)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p == "" {
			return types.NewError(types.ErrInvalidDefinition, "definition %s has an empty parameter name", d.Name)
		}
		if seen[p] {
			return types.NewError(types.ErrInvalidDefinition, "definition %s repeats parameter %s", d.Name, p)
		}
		seen[p] = true
	}
	return nil
}

// newDefinitionFunc returns the function for d and the copy of its body that
// the function evaluates. The body is bound by the caller.
func newDefinitionFunc(d functions.Definition) (*FunctionDef, *types.Node) {
	body := d.Body.Clone()
	name := d.Name
	params := append([]string(nil), d.Params...)

	return &FunctionDef{
		Name:       name,
		ReturnType: types.ReturnObject,
		Validate: func(node *types.Node) error {
			if len(node.Children) != len(params) {
				return arityError(node, len(params), len(params))
			}
			return nil
		},
		Evaluate: func(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
			args, err := evalChildren(s, node, mem, nil)
			if err != nil {
				return nil, err
			}
			scope := types.NewOrderedMap()
			for i, p := range params {
				scope.Set(p, args[i])
			}
			if err := s.pushTarget(EvaluationTarget{Name: name, Scope: scope}); err != nil {
				return nil, err
			}
			defer s.popTarget()

			return s.Eval(body, memory.NewStacked(s.root, memory.Wrap(scope)))
		},
	}, body
}
