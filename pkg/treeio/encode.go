package treeio

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// EncodeValue renders a runtime value as YAML. Mapping keys keep their
// mapping order.
func EncodeValue(v interface{}) ([]byte, error) {
	return yaml.Marshal(ValueNode(v))
}

// ValueNode converts a runtime value to a YAML node.
func ValueNode(v interface{}) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	switch val := v.(type) {
	case nil, types.Null:
		return scalar("!!null", "null")
	case bool:
		return scalar("!!bool", strconv.FormatBool(val))
	case int64:
		return scalar("!!int", strconv.FormatInt(val, 10))
	case *big.Int:
		return scalar("!!int", val.String())
	case float64:
		switch {
		case math.IsNaN(val):
			return scalar("!!float", ".nan")
		case math.IsInf(val, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(val, -1):
			return scalar("!!float", "-.inf")
		}
		return scalar("!!float", strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		return scalar("!!str", val)
	case time.Time:
		return scalar("!!timestamp", val.Format(time.RFC3339Nano))
	}

	switch types.KindOf(v) {
	case types.KindInteger, types.KindFloat, types.KindBigInt:
		return ValueNode(types.Normalize(v))
	case types.KindArray:
		list, _ := types.ToList(v)
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range list {
			n.Content = append(n.Content, ValueNode(item))
		}
		return n
	case types.KindObject:
		m, _ := types.AsMapping(v)
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range m.Keys() {
			item, _ := m.Get(k)
			n.Content = append(n.Content, scalar("!!str", k), ValueNode(item))
		}
		return n
	case types.KindDateTime:
		t := v.(*time.Time)
		return ValueNode(*t)
	}
	return scalar("!!str", fmt.Sprint(v))
}
