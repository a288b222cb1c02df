// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package layerdb maintains state layers in a stack.
// Each layer overlays the layers below it; reads walk the stack from the
// active layer down, writes go to the active layer only. It acts as keyed
// state with checkpoint-revert manner.
package layerdb

import (
	"fmt"
	"iter"
)

// Stack is an ordered stack of layers. Index 0 is the base layer and the
// highest index is the active layer. A Stack always holds at least one layer.
type Stack[L any] struct {
	layers []L
	fresh  func() L
}

// New creates a Stack with base as its only layer.
// fresh builds new empty layers for PushFresh.
func New[L any](base L, fresh func() L) *Stack[L] {
	return &Stack[L]{
		layers: []L{base},
		fresh:  fresh,
	}
}

// Depth returns the number of layers.
func (s *Stack[L]) Depth() int {
	return len(s.layers)
}

// ActiveID returns the index of the active (topmost) layer.
func (s *Stack[L]) ActiveID() int {
	return len(s.layers) - 1
}

// Active returns the active layer. It never fails since the stack is never
// empty.
func (s *Stack[L]) Active() L {
	return s.layers[len(s.layers)-1]
}

// Push appends layer to the top, making it the active layer.
// It returns the id of the pushed layer.
func (s *Stack[L]) Push(layer L) int {
	s.layers = append(s.layers, layer)
	return len(s.layers) - 1
}

// PushFresh pushes a fresh empty layer, returning its id and the layer.
func (s *Stack[L]) PushFresh() (int, L) {
	layer := s.fresh()
	return s.Push(layer), layer
}

// RevertTo truncates the stack so the layer with the given id becomes
// active, discarding every layer above it.
// It panics if id is out of range.
func (s *Stack[L]) RevertTo(id int) {
	if id < 0 || id >= len(s.layers) {
		panic(fmt.Sprintf("layerdb: invalid layer id %d, depth %d", id, len(s.layers)))
	}
	var zero L
	for i := id + 1; i < len(s.layers); i++ {
		s.layers[i] = zero
	}
	s.layers = s.layers[:id+1]
}

// TopToBottom iterates layers from the active layer down to the base layer.
// The sequence is restartable; ranging over it again starts a new walk.
func (s *Stack[L]) TopToBottom() iter.Seq[L] {
	return func(yield func(L) bool) {
		for i := len(s.layers) - 1; i >= 0; i-- {
			if !yield(s.layers[i]) {
				return
			}
		}
	}
}
