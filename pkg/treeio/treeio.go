// Package treeio reads expression trees and values from JSON or YAML.
//
// The engine never parses expression text. An external parser hands over a
// tree document instead, optionally with a table of literals:
//
//	literals:
//	  sep: ", "
//	tree:
//	  type: join
//	  children:
//	    - type: accessor
//	      name: names
//	    - type: constant
//	      literal: sep
//
// A node has a type and children. Constants carry an inline value or name
// an entry of the literal table. An accessor may give its property as name
// instead of a leading constant child. JSON is accepted as well, being a
// subset of YAML.
package treeio

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Decode reads a tree document. The document is either a mapping with a
// tree key (and optionally literals) or a single node.
func Decode(data []byte) (*types.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.NewError(types.ErrMalformedTree, "cannot read tree document: %v", err).WithCause(err)
	}
	root := content(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, types.NewError(types.ErrMalformedTree, "tree document must be a mapping")
	}

	d := &decoder{literals: map[string]interface{}{}}
	treeNode := root
	if tree := field(root, "tree"); tree != nil {
		treeNode = tree
		if lits := field(root, "literals"); lits != nil {
			if lits.Kind != yaml.MappingNode {
				return nil, d.errorf(lits, "literals must be a mapping")
			}
			for i := 0; i+1 < len(lits.Content); i += 2 {
				v, err := valueOf(lits.Content[i+1])
				if err != nil {
					return nil, err
				}
				d.literals[lits.Content[i].Value] = v
			}
		}
	}
	return d.node(treeNode)
}

type decoder struct {
	literals map[string]interface{}
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	return types.NewError(types.ErrMalformedTree, "line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func (d *decoder) node(n *yaml.Node) (*types.Node, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "node must be a mapping")
	}
	typ := field(n, "type")
	if typ == nil || typ.Kind != yaml.ScalarNode || typ.Value == "" {
		return nil, d.errorf(n, "node has no type")
	}
	out := &types.Node{Type: typ.Value}

	if out.Type == types.NodeConstant {
		switch lit, val := field(n, "literal"), field(n, "value"); {
		case lit != nil:
			v, ok := d.literals[lit.Value]
			if !ok {
				return nil, d.errorf(lit, "unknown literal %q", lit.Value)
			}
			out.Value = v
		case val != nil:
			v, err := valueOf(val)
			if err != nil {
				return nil, err
			}
			out.Value = v
		default:
			out.Value = types.NullValue
		}
	}

	if name := field(n, "name"); name != nil {
		if out.Type != types.NodeAccessor {
			return nil, d.errorf(name, "name is only valid on accessor nodes")
		}
		out.Children = append(out.Children, types.Constant(name.Value))
	}

	if children := field(n, "children"); children != nil {
		children = resolve(children)
		if children.Kind != yaml.SequenceNode {
			return nil, d.errorf(children, "children must be a list")
		}
		for _, c := range children.Content {
			child, err := d.node(c)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, child)
		}
	}
	return out, nil
}

// DecodeValue reads a JSON or YAML value. Mappings become *types.OrderedMap
// in document order, integers int64 or *big.Int, null types.Null.
func DecodeValue(data []byte) (interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	n := content(&doc)
	if n == nil {
		return nil, nil
	}
	return valueOf(n)
}

func valueOf(n *yaml.Node) (interface{}, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		m := types.NewOrderedMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := valueOf(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]interface{}, len(n.Content))
		for i, c := range n.Content {
			v, err := valueOf(c)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case yaml.ScalarNode:
		return scalarOf(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalarOf(n *yaml.Node) (interface{}, error) {
	switch n.ShortTag() {
	case "!!null":
		return types.NullValue, nil
	case "!!bool":
		var b bool
		err := n.Decode(&b)
		return b, err
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i, nil
		}
		if b, ok := new(big.Int).SetString(n.Value, 0); ok {
			return b, nil
		}
		var f float64
		err := n.Decode(&f)
		return f, err
	case "!!float":
		var f float64
		err := n.Decode(&f)
		return f, err
	case "!!timestamp":
		var t time.Time
		err := n.Decode(&t)
		return t, err
	}
	return n.Value, nil
}

// content returns the top node of a document, or nil for an empty one.
func content(doc *yaml.Node) *yaml.Node {
	if doc.Kind == 0 {
		return nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return resolve(doc.Content[0])
	}
	return resolve(doc)
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// field returns the value of key in a mapping node.
func field(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}
