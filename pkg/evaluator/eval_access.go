package evaluator

import (
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func accessFunctions() []*FunctionDef {
	return []*FunctionDef{
		{
			Name:       types.NodeConstant,
			ReturnType: types.ReturnObject,
			Validate: func(node *types.Node) error {
				if len(node.Children) != 0 {
					return arityError(node, 0, 0)
				}
				return nil
			},
			Evaluate: func(_ *State, node *types.Node, _ memory.Memory) (interface{}, error) {
				return node.Value, nil
			},
		},
		{
			Name:       types.NodeAccessor,
			ReturnType: types.ReturnObject,
			Validate:   validateAccessor,
			Evaluate:   evalPath,
		},
		{
			Name:       types.NodeElement,
			ReturnType: types.ReturnObject,
			Validate: func(node *types.Node) error {
				if len(node.Children) != 2 {
					return arityError(node, 2, 2)
				}
				return nil
			},
			Evaluate: evalPath,
		},
	}
}

func validateAccessor(node *types.Node) error {
	if len(node.Children) < 1 || len(node.Children) > 2 {
		return arityError(node, 1, 2)
	}
	if _, ok := accessorName(node); !ok {
		return types.NewError(types.ErrMalformedTree, "accessor %s must start with a constant name", node).WithExpr(node)
	}
	return nil
}

// accessorName returns the property name of an accessor node.
func accessorName(node *types.Node) (string, bool) {
	if node.Type != types.NodeAccessor || len(node.Children) == 0 {
		return "", false
	}
	c := node.Children[0]
	if c.Type != types.NodeConstant {
		return "", false
	}
	name, ok := c.Value.(string)
	return name, ok && name != ""
}

// evalPath evaluates a chain of accessors and elements.
//
// The chain is folded into a single path such as `a.b[2].c` and resolved
// with one memory lookup, so the null substitution sees the full path. The
// walk stops at the first node that is not an accessor or element; that
// node is evaluated and the path is resolved against its value.
func evalPath(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	var segs []memory.Segment // innermost last
	cur := node
	for {
		switch cur.Type {
		case types.NodeAccessor:
			name, _ := accessorName(cur)
			segs = append(segs, memory.Segment{Name: name})
			if len(cur.Children) == 1 {
				return s.getValue(mem, buildPath(segs))
			}
			cur = cur.Children[1]
			continue

		case types.NodeElement:
			idx, err := s.Eval(cur.Children[1], mem)
			if err != nil {
				return nil, err
			}
			seg, err := elementSegment(idx, cur)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			cur = cur.Children[0]
			continue
		}

		inst, err := s.Eval(cur, mem)
		if err != nil {
			return nil, err
		}
		return s.getValue(memory.Wrap(inst), buildPath(segs))
	}
}

// elementSegment turns an evaluated index into a path segment: integers
// index lists and strings name properties.
func elementSegment(idx interface{}, node *types.Node) (memory.Segment, error) {
	if str, ok := idx.(string); ok {
		return memory.Segment{Name: str}, nil
	}
	if types.IsInteger(idx) {
		if i, ok := types.ToInt64(idx); ok {
			return memory.Segment{Index: i, IsIndex: true}, nil
		}
	}
	if types.IsNull(idx) {
		return memory.Segment{}, types.NewError(types.ErrNullInstance, "%s evaluated to null.", node.Children[1]).WithExpr(node)
	}
	return memory.Segment{}, types.NewError(types.ErrTypeMismatch, "%s is not an integer or string index.", node.Children[1]).WithExpr(node)
}

// buildPath renders segments collected innermost last.
func buildPath(segs []memory.Segment) string {
	var path string
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].IsIndex {
			path = memory.JoinIndex(path, segs[i].Index)
		} else {
			path = memory.JoinPath(path, segs[i].Name)
		}
	}
	return path
}
