package evaluator

import (
	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// Lambda forms take (source, iterator, body). The iterator is a bare name;
// each element of source is bound to it in a fresh memory layer while body
// is evaluated.

func lambdaFunctions() []*FunctionDef {
	return []*FunctionDef{
		lambdaFunction("foreach", types.ReturnArray, evalSelect),
		lambdaFunction("select", types.ReturnArray, evalSelect),
		lambdaFunction("where", types.ReturnArray|types.ReturnObject, evalWhere),
		lambdaFunction("any", types.ReturnBoolean, evalAny),
		lambdaFunction("all", types.ReturnBoolean, evalAll),
	}
}

func lambdaFunction(name string, rt types.ReturnType, eval EvaluateFunc) *FunctionDef {
	return &FunctionDef{
		Name:       name,
		ReturnType: rt,
		Validate:   validateLambda,
		Evaluate:   eval,
	}
}

// validateLambda requires three children, the second a bare identifier.
func validateLambda(node *types.Node) error {
	if len(node.Children) != 3 {
		return arityError(node, 3, 3)
	}
	it := node.Children[1]
	if _, ok := accessorName(it); !ok || len(it.Children) != 1 {
		return types.NewError(types.ErrLambdaIdentifier,
			"Second parameter of %s is not an identifier : %s", node.Type, it).WithExpr(node)
	}
	return nil
}

// lambdaItem is one element of an iteration with the source it came from.
type lambdaItem struct {
	value interface{}
	key   string // set when the source is a mapping
}

// iterate evaluates body once per element of the source. visit is called
// after the element's layer has been popped and returns false to stop.
func iterate(s *State, node *types.Node, mem memory.Memory, visit func(item lambdaItem, result interface{}) bool) (fromObject bool, err error) {
	src, err := s.Eval(node.Children[0], mem)
	if err != nil {
		return false, err
	}
	if types.IsNull(src) {
		return false, types.NewError(types.ErrNullInstance, "'%s' evaluated to null.", node.Children[0]).WithExpr(node)
	}
	items, fromObject, err := lambdaItems(src, node)
	if err != nil {
		return false, err
	}

	name, _ := accessorName(node.Children[1])
	body := node.Children[2]
	stack := memory.WrapStacked(mem)

	if s.ev.opts.Debug {
		s.ev.logger.Debug("iterate", "function", node.Type, "iterator", name, "items", len(items))
	}

	for _, item := range items {
		bound := item.value
		if fromObject {
			bound = pairOf(item)
		}
		result, err := stack.WithLayer(memory.Layer(name, bound), func() (interface{}, error) {
			return s.Eval(body, stack)
		})
		if err != nil {
			return fromObject, err
		}
		if !visit(item, result) {
			break
		}
	}
	return fromObject, nil
}

// lambdaItems converts the source: lists pass through and mappings become
// their entries in key order.
func lambdaItems(src interface{}, node *types.Node) ([]lambdaItem, bool, error) {
	if list, ok := types.ToList(src); ok {
		items := make([]lambdaItem, len(list))
		for i, v := range list {
			items[i] = lambdaItem{value: v}
		}
		return items, false, nil
	}
	if m, ok := types.AsMapping(src); ok {
		keys := m.Keys()
		items := make([]lambdaItem, len(keys))
		for i, k := range keys {
			v, _ := m.Get(k)
			items[i] = lambdaItem{value: v, key: k}
		}
		return items, true, nil
	}
	return nil, false, types.NewError(types.ErrNotCollection,
		"%s is not a collection or structure object to run %s", node.Children[0], node.Type).WithExpr(node)
}

// pairOf binds a mapping entry as {key, value}.
func pairOf(item lambdaItem) *types.OrderedMap {
	pair := types.NewOrderedMap()
	pair.Set("key", item.key)
	pair.Set("value", item.value)
	return pair
}

// evalSelect collects the body result for every element.
func evalSelect(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	out := []interface{}{}
	_, err := iterate(s, node, mem, func(_ lambdaItem, result interface{}) bool {
		out = append(out, result)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// evalWhere keeps the elements whose body is logic-true. A mapping source
// produces a mapping of the kept entries.
func evalWhere(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	var kept []lambdaItem
	fromObject, err := iterate(s, node, mem, func(item lambdaItem, result interface{}) bool {
		if compare.IsLogicTrue(result) {
			kept = append(kept, item)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if fromObject {
		out := types.NewOrderedMap()
		for _, item := range kept {
			out.Set(item.key, item.value)
		}
		return out, nil
	}
	out := make([]interface{}, len(kept))
	for i, item := range kept {
		out[i] = item.value
	}
	return out, nil
}

// evalAny stops at the first element whose body is logic-true.
func evalAny(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	found := false
	_, err := iterate(s, node, mem, func(_ lambdaItem, result interface{}) bool {
		found = compare.IsLogicTrue(result)
		return !found
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// evalAll stops at the first element whose body is not logic-true.
func evalAll(s *State, node *types.Node, mem memory.Memory) (interface{}, error) {
	all := true
	_, err := iterate(s, node, mem, func(_ lambdaItem, result interface{}) bool {
		all = compare.IsLogicTrue(result)
		return all
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
