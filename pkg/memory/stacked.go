package memory

import "math/rand"

// StackedMemory is an ordered stack of memories.
//
// GetValue consults the most recently pushed layer first and falls through to
// older layers only when a layer resolves the path to nothing.
//
// A StackedMemory belongs to a single evaluation and is not safe for
// concurrent use.
type StackedMemory struct {
	layers []Memory
}

// NewStacked creates a stack whose bottom layers are the given memories,
// first argument lowest.
func NewStacked(layers ...Memory) *StackedMemory {
	s := &StackedMemory{layers: make([]Memory, 0, len(layers)+4)}
	s.layers = append(s.layers, layers...)
	return s
}

// WrapStacked returns m if it already is a *StackedMemory, otherwise a new
// stack with m as its only layer.
func WrapStacked(m Memory) *StackedMemory {
	if s, ok := m.(*StackedMemory); ok {
		return s
	}
	return NewStacked(m)
}

// Push adds a layer on top.
func (s *StackedMemory) Push(m Memory) {
	s.layers = append(s.layers, m)
}

// Pop removes the top layer.
func (s *StackedMemory) Pop() {
	if len(s.layers) == 0 {
		return
	}
	s.layers[len(s.layers)-1] = nil
	s.layers = s.layers[:len(s.layers)-1]
}

// Depth returns the number of layers.
func (s *StackedMemory) Depth() int {
	return len(s.layers)
}

// WithLayer pushes layer, runs fn and pops the layer again. The pop happens
// on every exit path, including a panic in fn.
func (s *StackedMemory) WithLayer(layer Memory, fn func() (interface{}, error)) (interface{}, error) {
	s.Push(layer)
	defer s.Pop()
	return fn()
}

// GetValue resolves path from the top layer down.
func (s *StackedMemory) GetValue(path string) (interface{}, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		v, err := s.layers[i].GetValue(path)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

// Random returns the generator of the nearest layer that carries one.
func (s *StackedMemory) Random() *rand.Rand {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if src, ok := s.layers[i].(RandomSource); ok {
			if r := src.Random(); r != nil {
				return r
			}
		}
	}
	return nil
}
