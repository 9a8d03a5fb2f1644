package types

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Null represents an explicit null value, distinct from undefined (nil).
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
// This ensures that Null serializes to JSON null instead of {}.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for explicit null.
var NullValue = Null{}

// Node types that are not ordinary function calls.
const (
	NodeConstant = "constant" // literal value
	NodeAccessor = "accessor" // name, or name on an instance: a.b
	NodeElement  = "element"  // instance[index]
)

// Node is a node of an expression tree.
//
// Type is the operator symbol: a function name from the registry ("join",
// "+", "foreach") or one of the access node types above. Value carries the
// literal of a constant node. ReturnType is filled in when the tree is bound.
//
// Bound nodes are never mutated and may be evaluated concurrently.
type Node struct {
	Type       string
	Children   []*Node
	Value      interface{}
	ReturnType ReturnType
}

// NewNode creates an unbound node with the given children.
func NewNode(nodeType string, children ...*Node) *Node {
	return &Node{Type: nodeType, Children: children}
}

// Constant creates a constant node holding value.
func Constant(value interface{}) *Node {
	return &Node{Type: NodeConstant, Value: Normalize(value)}
}

// Accessor creates an accessor for name, optionally applied to instance.
func Accessor(name string, instance ...*Node) *Node {
	children := []*Node{Constant(name)}
	if len(instance) > 0 && instance[0] != nil {
		children = append(children, instance[0])
	}
	return &Node{Type: NodeAccessor, Children: children}
}

// Element creates an instance[index] node.
func Element(instance, index *Node) *Node {
	return &Node{Type: NodeElement, Children: []*Node{instance, index}}
}

// Call creates a function-call node.
func Call(name string, args ...*Node) *Node {
	return &Node{Type: name, Children: args}
}

// Clone returns a deep copy of the node structure. Literal values are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Value: n.Value, ReturnType: n.ReturnType}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

var infixOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true, "&": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true,
}

// String renders the node in expression syntax. It is used in error messages.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Type {
	case NodeConstant:
		writeLiteral(sb, n.Value)
	case NodeAccessor:
		if len(n.Children) > 1 {
			n.Children[1].write(sb)
			sb.WriteByte('.')
		}
		if len(n.Children) > 0 {
			if s, ok := n.Children[0].Value.(string); ok {
				sb.WriteString(s)
			} else {
				n.Children[0].write(sb)
			}
		}
	case NodeElement:
		if len(n.Children) == 2 {
			n.Children[0].write(sb)
			sb.WriteByte('[')
			n.Children[1].write(sb)
			sb.WriteByte(']')
		}
	default:
		if infixOperators[n.Type] && len(n.Children) >= 2 {
			sb.WriteByte('(')
			for i, child := range n.Children {
				if i > 0 {
					sb.WriteByte(' ')
					sb.WriteString(n.Type)
					sb.WriteByte(' ')
				}
				child.write(sb)
			}
			sb.WriteByte(')')
			return
		}
		if n.Type == "!" && len(n.Children) == 1 {
			sb.WriteByte('!')
			n.Children[0].write(sb)
			return
		}
		sb.WriteString(n.Type)
		sb.WriteByte('(')
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			child.write(sb)
		}
		sb.WriteByte(')')
	}
}

func writeLiteral(sb *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("undefined")
	case Null:
		sb.WriteString("null")
	case string:
		sb.WriteByte('\'')
		sb.WriteString(strings.ReplaceAll(val, "'", "\\'"))
		sb.WriteByte('\'')
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case float64:
		sb.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case *big.Int:
		sb.WriteString(val.String())
	case bool:
		sb.WriteString(strconv.FormatBool(val))
	case time.Time:
		sb.WriteString(val.UTC().Format(time.RFC3339Nano))
	default:
		fmt.Fprintf(sb, "%v", val)
	}
}
