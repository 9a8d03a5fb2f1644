package evaluator

import (
	"fmt"
	"strings"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// TypeCode represents a type code in signatures
type TypeCode byte

const (
	TypeAny     TypeCode = 'x' // any type
	TypeString  TypeCode = 's' // string
	TypeNumber  TypeCode = 'n' // number
	TypeBoolean TypeCode = 'b' // boolean
	TypeArray   TypeCode = 'a' // array
	TypeObject  TypeCode = 'o' // object
)

var typeMasks = map[TypeCode]types.ReturnType{
	TypeAny:     types.ReturnObject,
	TypeString:  types.ReturnString,
	TypeNumber:  types.ReturnNumber,
	TypeBoolean: types.ReturnBoolean,
	TypeArray:   types.ReturnArray,
	TypeObject:  types.ReturnObject,
}

// ParamType represents a parameter type in a signature
type ParamType struct {
	Types    []TypeCode // one entry, or several for a union like (ns)
	Optional bool       // '?': may be omitted
	Variadic bool       // '+': one or more
}

// Mask returns the static return-type mask accepted by the parameter.
func (pt ParamType) Mask() types.ReturnType {
	var m types.ReturnType
	for _, t := range pt.Types {
		m |= typeMasks[t]
	}
	return m
}

// Signature represents a parsed function signature
type Signature struct {
	Params     []ParamType
	ReturnType types.ReturnType
}

// ParseSignature parses a function signature string.
// Examples: "<n-n:n>", "<a-s-s?:s>", "<(ns)+:n>", "<:s>"
//
// Parameters are separated by an optional '-'. A '?' suffix marks an optional
// parameter, '+' a variadic one; both may only appear on trailing parameters.
func ParseSignature(sig string) (*Signature, error) {
	if !strings.HasPrefix(sig, "<") || !strings.HasSuffix(sig, ">") {
		return nil, invalidSignature(sig, "missing angle brackets")
	}
	body := sig[1 : len(sig)-1]
	params, ret, found := strings.Cut(body, ":")
	if strings.Contains(ret, ":") {
		return nil, invalidSignature(sig, "more than one return type")
	}

	result := &Signature{ReturnType: types.ReturnObject}
	i := 0
	for i < len(params) {
		if params[i] == '-' {
			i++
			continue
		}
		pt, consumed, err := parseParamTypeAt(params, i)
		if err != nil {
			return nil, invalidSignature(sig, err.Error())
		}
		result.Params = append(result.Params, pt)
		i += consumed
	}

	seenOptional := false
	for idx, p := range result.Params {
		if p.Variadic && idx != len(result.Params)-1 {
			return nil, invalidSignature(sig, "variadic parameter must be last")
		}
		if p.Optional {
			seenOptional = true
		} else if seenOptional && !p.Variadic {
			return nil, invalidSignature(sig, "required parameter after optional one")
		}
	}

	if found {
		if ret == "" {
			return nil, invalidSignature(sig, "empty return type")
		}
		rt, consumed, err := parseParamTypeAt(ret, 0)
		if err != nil {
			return nil, invalidSignature(sig, err.Error())
		}
		if consumed != len(ret) {
			return nil, invalidSignature(sig, "unexpected characters after return type")
		}
		result.ReturnType = rt.Mask()
	}
	return result, nil
}

// parseParamTypeAt parses a parameter type starting at position i
// Returns the parsed type, number of characters consumed, and error
func parseParamTypeAt(s string, i int) (ParamType, int, error) {
	start := i
	var pt ParamType

	if s[i] == '(' {
		j := strings.IndexByte(s[i:], ')')
		if j < 0 {
			return pt, 0, fmt.Errorf("unmatched ( in signature")
		}
		for _, c := range []byte(s[i+1 : i+j]) {
			if _, ok := typeMasks[TypeCode(c)]; !ok {
				return pt, 0, fmt.Errorf("unknown type code in union: %c", c)
			}
			pt.Types = append(pt.Types, TypeCode(c))
		}
		if len(pt.Types) == 0 {
			return pt, 0, fmt.Errorf("empty union")
		}
		i += j + 1
	} else {
		if _, ok := typeMasks[TypeCode(s[i])]; !ok {
			return pt, 0, fmt.Errorf("unknown type code: %c", s[i])
		}
		pt.Types = []TypeCode{TypeCode(s[i])}
		i++
	}

	if i < len(s) {
		switch s[i] {
		case '?':
			pt.Optional = true
			i++
		case '+':
			pt.Variadic = true
			i++
		}
	}
	return pt, i - start, nil
}

func invalidSignature(sig, reason string) error {
	return types.NewError(types.ErrInvalidSignature, "invalid signature %q: %s", sig, reason)
}

// Arity returns the minimum and maximum number of arguments; max is -1
// when the signature ends with a variadic parameter.
func (s *Signature) Arity() (min, max int) {
	for _, p := range s.Params {
		if p.Variadic {
			min++
			return min, -1
		}
		if !p.Optional {
			min++
		}
		max++
	}
	return min, max
}

// param returns the parameter that argument i binds to.
func (s *Signature) param(i int) ParamType {
	if i < len(s.Params) {
		return s.Params[i]
	}
	return s.Params[len(s.Params)-1]
}

// Validate checks the arity of node and the static types of its children.
func (s *Signature) Validate(node *types.Node) error {
	min, max := s.Arity()
	n := len(node.Children)
	if n < min || (max >= 0 && n > max) {
		return arityError(node, min, max)
	}
	for i, child := range node.Children {
		mask := s.param(i).Mask()
		if !child.ReturnType.Accepts(mask) {
			return types.NewError(types.ErrArgumentType,
				"%s is not a %s in %s", child, mask, node).WithExpr(node)
		}
	}
	return nil
}

// ValidateArgument validates that a runtime value matches a parameter type.
// Undefined and null are accepted only by optional or any-typed parameters.
func (pt ParamType) ValidateArgument(value interface{}) error {
	k := types.KindOf(value)
	for _, t := range pt.Types {
		switch t {
		case TypeAny:
			return nil
		case TypeString:
			if k == types.KindString {
				return nil
			}
		case TypeNumber:
			if k.IsNumeric() {
				return nil
			}
		case TypeBoolean:
			if k == types.KindBoolean {
				return nil
			}
		case TypeArray:
			if k == types.KindArray {
				return nil
			}
		case TypeObject:
			if k == types.KindObject {
				return nil
			}
		}
	}
	if pt.Optional && (k == types.KindUndefined || k == types.KindNull) {
		return nil
	}
	return types.NewError(types.ErrTypeMismatch, "expected %s, got %s", pt.Mask(), k)
}

func arityError(node *types.Node, min, max int) error {
	var want string
	switch {
	case max < 0:
		want = fmt.Sprintf("at least %d", min)
	case min == max:
		want = fmt.Sprintf("%d", min)
	default:
		want = fmt.Sprintf("between %d and %d", min, max)
	}
	return types.NewError(types.ErrArgumentCount,
		"%s should have %s children, found %d", node.Type, want, len(node.Children)).WithExpr(node)
}
