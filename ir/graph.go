// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir is the intermediate representation of the computation graphs
// processed by export passes.
//
// A Graph owns a root Block. A Block is an ordered list of Nodes. A Node
// consumes and produces Values and may own nested blocks. Every value keeps
// the list of its uses, which all mutations of the graph maintain.
//
// A graph also holds a current Scope: nodes created in the graph are stamped
// with it. The current scope is only changed with WithCurrentScope.
package ir

import (
	"github.com/pkg/errors"
	"github.com/gx-org/exportpass/base/uname"
	"github.com/gx-org/exportpass/ir/symbol"
)

// Graph is a computation graph.
type Graph struct {
	block        *Block
	currentScope *Scope
	insertBefore *Node
	names        *uname.Unique
	nextUnique   int
}

// NewGraph returns an empty graph with a blank root scope.
func NewGraph() *Graph {
	g := &Graph{
		currentScope: NewRootScope(),
		names:        uname.New(),
	}
	g.block = newBlock(g, nil)
	g.insertBefore = g.block.ret
	return g
}

// Block returns the root block of the graph.
func (g *Graph) Block() *Block {
	return g.block
}

// Inputs of the graph.
func (g *Graph) Inputs() []*Value {
	return g.block.Inputs()
}

// Outputs of the graph.
func (g *Graph) Outputs() []*Value {
	return g.block.Outputs()
}

// AddInput appends an input to the graph.
func (g *Graph) AddInput(name string, typ Type) *Value {
	return g.block.AddInput(name, typ)
}

// RegisterOutput appends a value to the outputs of the graph.
func (g *Graph) RegisterOutput(v *Value) int {
	return g.block.RegisterOutput(v)
}

// CurrentScope returns the scope stamped on nodes created in the graph.
func (g *Graph) CurrentScope() *Scope {
	return g.currentScope
}

// WithCurrentScope sets the current scope of the graph.
// The returned function restores the previous current scope.
// It is meant to be deferred so that the scope is restored on every path:
//
//	restore := g.WithCurrentScope(scope)
//	defer restore()
func (g *Graph) WithCurrentScope(s *Scope) (restore func()) {
	prev := g.currentScope
	g.currentScope = s
	return func() {
		g.currentScope = prev
	}
}

// Create returns a new node, not inserted in any block,
// consuming the given inputs and producing numOutputs outputs.
func (g *Graph) Create(kind symbol.Symbol, inputs []*Value, numOutputs int) *Node {
	n := g.newNode(kind)
	for _, in := range inputs {
		n.AddInput(in)
	}
	for range numOutputs {
		n.AddOutput()
	}
	return n
}

// InsertNode inserts a node at the insertion point of the graph.
func (g *Graph) InsertNode(n *Node) *Node {
	return n.InsertBefore(g.insertBefore)
}

// InsertPoint returns the node before which nodes are inserted.
func (g *Graph) InsertPoint() *Node {
	return g.insertBefore
}

// SetInsertPoint sets the node before which new nodes are inserted.
func (g *Graph) SetInsertPoint(n *Node) {
	g.insertBefore = n
}

// WithInsertPoint sets the insertion point of the graph.
// The returned function restores the previous insertion point.
func (g *Graph) WithInsertPoint(n *Node) (restore func()) {
	prev := g.insertBefore
	g.insertBefore = n
	return func() {
		g.insertBefore = prev
	}
}

// Copy returns a deep copy of the graph.
// The nodes of the copy keep their scope unless it is blank.
func (g *Graph) Copy() (*Graph, error) {
	ng := NewGraph()
	undefined := func(v *Value) (*Value, error) {
		return nil, errors.Errorf("value %s is not defined in the graph", v)
	}
	if err := ng.block.cloneFrom(g.block, undefined); err != nil {
		return nil, err
	}
	return ng, nil
}

// InsertGraph inserts a copy of the nodes of callee at the insertion point of g.
// The inputs of callee are replaced by the given values.
// It returns the values corresponding to the outputs of callee.
func (g *Graph) InsertGraph(callee *Graph, inputs []*Value) ([]*Value, error) {
	calleeInputs := callee.Inputs()
	if len(calleeInputs) != len(inputs) {
		return nil, errors.Errorf("cannot insert a graph with %d input(s) given %d value(s)", len(calleeInputs), len(inputs))
	}
	env := make(map[*Value]*Value)
	for i, in := range calleeInputs {
		env[in] = inputs[i]
	}
	lookup := func(v *Value) (*Value, error) {
		mapped, ok := env[v]
		if !ok {
			return nil, errors.Errorf("value %s is used before being defined", v)
		}
		return mapped, nil
	}
	for n := range callee.Block().Nodes() {
		clone, err := g.createClone(n, lookup)
		if err != nil {
			return nil, err
		}
		g.InsertNode(clone)
		for i, out := range n.outputs {
			env[out] = clone.outputs[i]
		}
	}
	outputs := callee.Outputs()
	mapped := make([]*Value, len(outputs))
	for i, out := range outputs {
		var err error
		if mapped[i], err = lookup(out); err != nil {
			return nil, err
		}
	}
	return mapped, nil
}
