package types

import "strings"

// ReturnType is a bit mask describing the values a node can produce.
// Object means "anything": the static type is not known until evaluation.
type ReturnType int

const (
	ReturnBoolean ReturnType = 1 << iota
	ReturnNumber
	ReturnObject
	ReturnString
	ReturnArray
)

// Accepts reports whether a child with static type rt can be passed where
// mask is expected. Statically unknown (Object) children are always accepted
// and checked at evaluation time.
func (rt ReturnType) Accepts(mask ReturnType) bool {
	if rt&ReturnObject != 0 || mask&ReturnObject != 0 {
		return true
	}
	return rt&mask != 0
}

func (rt ReturnType) String() string {
	var names []string
	if rt&ReturnBoolean != 0 {
		names = append(names, "boolean")
	}
	if rt&ReturnNumber != 0 {
		names = append(names, "number")
	}
	if rt&ReturnObject != 0 {
		names = append(names, "object")
	}
	if rt&ReturnString != 0 {
		names = append(names, "string")
	}
	if rt&ReturnArray != 0 {
		names = append(names, "array")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
