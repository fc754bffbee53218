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

package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/exportpass/ir/symbol"
	"golang.org/x/exp/maps"
)

// Node is an operation in a block.
//
// A node consumes input values, produces output values, holds attributes
// and may own nested blocks (for example the branches of a conditional).
type Node struct {
	kind        symbol.Symbol
	graph       *Graph
	owningBlock *Block
	prev, next  *Node
	inputs      []*Value
	outputs     []*Value
	blocks      []*Block
	attrs       map[symbol.Symbol]any
	scope       *Scope
	sourceRange string
	destroyed   bool
}

// newNode returns a detached node.
// The scope of the node is the current scope of the graph.
func (g *Graph) newNode(kind symbol.Symbol) *Node {
	return &Node{
		kind:  kind,
		graph: g,
		attrs: make(map[symbol.Symbol]any),
		scope: g.currentScope,
	}
}

// Kind returns the operator kind of the node.
func (n *Node) Kind() symbol.Symbol {
	return n.kind
}

// Graph owning the node.
func (n *Node) Graph() *Graph {
	return n.graph
}

// OwningBlock returns the block in which the node has been inserted, if any.
func (n *Node) OwningBlock() *Block {
	return n.owningBlock
}

// Next returns the next node in the owning block.
func (n *Node) Next() *Node {
	return n.next
}

// Prev returns the previous node in the owning block.
func (n *Node) Prev() *Node {
	return n.prev
}

// IsDestroyed returns true if the node has been destroyed.
func (n *Node) IsDestroyed() bool {
	return n.destroyed
}

// Inputs returns the values consumed by the node.
func (n *Node) Inputs() []*Value {
	return slices.Clone(n.inputs)
}

// Input returns the ith input of the node.
func (n *Node) Input(i int) *Value {
	return n.inputs[i]
}

// Outputs returns the values produced by the node.
func (n *Node) Outputs() []*Value {
	return slices.Clone(n.outputs)
}

// Output returns the ith output of the node.
func (n *Node) Output(i int) *Value {
	return n.outputs[i]
}

// AddInput appends a value to the inputs of the node.
func (n *Node) AddInput(v *Value) *Value {
	v.uses = append(v.uses, Use{User: n, Offset: len(n.inputs)})
	n.inputs = append(n.inputs, v)
	return v
}

// ReplaceInput replaces the ith input of the node and returns the previous input.
func (n *Node) ReplaceInput(i int, v *Value) *Value {
	old := n.inputs[i]
	old.dropUse(n, i)
	n.inputs[i] = v
	v.uses = append(v.uses, Use{User: n, Offset: i})
	return old
}

// ReplaceInputWith replaces all occurrences of a value in the inputs of the node.
func (n *Node) ReplaceInputWith(from, to *Value) {
	for i, in := range n.inputs {
		if in == from {
			n.ReplaceInput(i, to)
		}
	}
}

// RemoveInput removes the ith input of the node.
// The inputs after i are shifted.
func (n *Node) RemoveInput(i int) {
	n.inputs[i].dropUse(n, i)
	for j := i + 1; j < len(n.inputs); j++ {
		n.inputs[j].moveUse(n, j, j-1)
	}
	n.inputs = slices.Delete(n.inputs, i, i+1)
}

// RemoveAllInputs removes all the inputs of the node.
func (n *Node) RemoveAllInputs() {
	for i := len(n.inputs) - 1; i >= 0; i-- {
		n.inputs[i].dropUse(n, i)
	}
	n.inputs = nil
}

// AddOutput appends a new output to the node.
// The output is a tensor of unknown shape until its type is set.
func (n *Node) AddOutput() *Value {
	v := n.graph.newValue(n, len(n.outputs), &TensorType{})
	n.outputs = append(n.outputs, v)
	return v
}

// AddBlock appends a new nested block to the node.
func (n *Node) AddBlock() *Block {
	b := newBlock(n.graph, n)
	n.blocks = append(n.blocks, b)
	return b
}

// Blocks returns the nested blocks owned by the node.
func (n *Node) Blocks() []*Block {
	return slices.Clone(n.blocks)
}

// inBlockList returns true if the node has been inserted in a block.
func (n *Node) inBlockList() bool {
	return n.owningBlock != nil
}

func (n *Node) insertBetween(prev, next *Node) {
	n.owningBlock = prev.owningBlock
	n.prev = prev
	n.next = next
	prev.next = n
	next.prev = n
}

// InsertBefore inserts the node in the block of pos, before pos.
// The node must not already be in a block.
func (n *Node) InsertBefore(pos *Node) *Node {
	if n.inBlockList() {
		panic(fmt.Sprintf("node %s is already in a block", n.kind))
	}
	if pos.kind == symbol.Param {
		panic("cannot insert a node before the parameters of a block")
	}
	n.insertBetween(pos.prev, pos)
	return n
}

// InsertAfter inserts the node in the block of pos, after pos.
// The node must not already be in a block.
func (n *Node) InsertAfter(pos *Node) *Node {
	if n.inBlockList() {
		panic(fmt.Sprintf("node %s is already in a block", n.kind))
	}
	if pos.kind == symbol.Return {
		panic("cannot insert a node after the return of a block")
	}
	n.insertBetween(pos, pos.next)
	return n
}

func (n *Node) unlink() {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	n.owningBlock = nil
}

// HasUses returns true if any output of the node is consumed.
func (n *Node) HasUses() bool {
	for _, out := range n.outputs {
		if out.HasUses() {
			return true
		}
	}
	return false
}

// ReplaceAllUsesWith redirects the consumers of the outputs of the node
// to the outputs of another node with the same number of outputs.
func (n *Node) ReplaceAllUsesWith(other *Node) error {
	if len(n.outputs) != len(other.outputs) {
		return errors.Errorf("cannot replace the uses of %s (%d outputs) with %s (%d outputs)", n.kind, len(n.outputs), other.kind, len(other.outputs))
	}
	for i, out := range n.outputs {
		out.ReplaceAllUsesWith(other.outputs[i])
	}
	return nil
}

// Destroy removes the node from its block and detaches it from its inputs.
// The outputs of the node must not have any use.
func (n *Node) Destroy() error {
	if n.destroyed {
		return errors.Errorf("node %s has already been destroyed", n.kind)
	}
	if n.kind == symbol.Param || n.kind == symbol.Return {
		return errors.Errorf("cannot destroy %s: it is owned by its block", n.kind)
	}
	for _, out := range n.outputs {
		if out.HasUses() {
			return errors.Errorf("cannot destroy %s: output %s still has %d use(s)", n.kind, out, len(out.uses))
		}
	}
	n.destroy()
	return nil
}

func (n *Node) destroy() {
	for i := len(n.blocks) - 1; i >= 0; i-- {
		n.blocks[i].destroy()
	}
	n.blocks = nil
	n.RemoveAllInputs()
	if n.inBlockList() {
		n.unlink()
	}
	for _, out := range n.outputs {
		if out.debugName != "" {
			n.graph.names.Release(out.debugName)
		}
	}
	n.destroyed = true
}

// HasAttribute returns true if the node has an attribute given its name.
func (n *Node) HasAttribute(name symbol.Symbol) bool {
	_, ok := n.attrs[name]
	return ok
}

// Attribute returns the value of an attribute.
func (n *Node) Attribute(name symbol.Symbol) (any, bool) {
	val, ok := n.attrs[name]
	return val, ok
}

// AttributeNames returns the names of the attributes of the node, sorted.
func (n *Node) AttributeNames() []symbol.Symbol {
	names := maps.Keys(n.attrs)
	slices.SortFunc(names, func(a, b symbol.Symbol) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}

// RemoveAttribute removes an attribute from the node.
func (n *Node) RemoveAttribute(name symbol.Symbol) {
	delete(n.attrs, name)
}

func attr[T any](n *Node, name symbol.Symbol) (T, bool) {
	val, ok := n.attrs[name].(T)
	return val, ok
}

// S returns the value of a string attribute.
// The second returned value is false if the attribute is absent or not a string.
func (n *Node) S(name symbol.Symbol) (string, bool) {
	return attr[string](n, name)
}

// SetS sets a string attribute.
func (n *Node) SetS(name symbol.Symbol, val string) *Node {
	n.attrs[name] = val
	return n
}

// I returns the value of an integer attribute.
func (n *Node) I(name symbol.Symbol) (int64, bool) {
	return attr[int64](n, name)
}

// SetI sets an integer attribute.
func (n *Node) SetI(name symbol.Symbol, val int64) *Node {
	n.attrs[name] = val
	return n
}

// F returns the value of a float attribute.
func (n *Node) F(name symbol.Symbol) (float64, bool) {
	return attr[float64](n, name)
}

// SetF sets a float attribute.
func (n *Node) SetF(name symbol.Symbol, val float64) *Node {
	n.attrs[name] = val
	return n
}

// Ty returns the value of a type attribute.
func (n *Node) Ty(name symbol.Symbol) (Type, bool) {
	return attr[Type](n, name)
}

// SetTy sets a type attribute.
func (n *Node) SetTy(name symbol.Symbol, val Type) *Node {
	n.attrs[name] = val
	return n
}

// CopyAttributes replaces the attributes of the node by the attributes of another node.
func (n *Node) CopyAttributes(from *Node) *Node {
	n.attrs = maps.Clone(from.attrs)
	return n
}

// Scope returns the scope in which the node has been created or stamped.
func (n *Node) Scope() *Scope {
	return n.scope
}

// SetScope stamps the node with a scope.
func (n *Node) SetScope(s *Scope) *Node {
	n.scope = s
	return n
}

// ScopeName returns the path of the scope of the node,
// or an empty string if the node is not in a named scope.
func (n *Node) ScopeName() string {
	if n.scope == nil || n.scope.IsBlank() {
		return ""
	}
	return n.scope.NamesFromRoot(ScopeSeparator)
}

// SourceRange returns a description of the source code the node has been built from.
func (n *Node) SourceRange() string {
	return n.sourceRange
}

// SetSourceRange sets the source code description of the node.
func (n *Node) SetSourceRange(src string) *Node {
	n.sourceRange = src
	return n
}

// CopyMetadata copies the source range and the scope of another node.
// A blank scope is not copied.
func (n *Node) CopyMetadata(from *Node) *Node {
	n.sourceRange = from.sourceRange
	if from.scope != nil && !from.scope.IsBlank() {
		n.scope = from.scope
	}
	return n
}
