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
	"iter"

	"github.com/gx-org/exportpass/ir/symbol"
)

// Block is an ordered list of nodes.
//
// The inputs of a block are the outputs of its prim::Param node and
// the outputs of a block are the inputs of its prim::Return node.
// Both nodes delimit the list and are never yielded when iterating over the nodes.
type Block struct {
	graph      *Graph
	owningNode *Node
	param      *Node
	ret        *Node
}

func newBlock(g *Graph, owner *Node) *Block {
	b := &Block{graph: g, owningNode: owner}
	b.param = g.newNode(symbol.Param)
	b.ret = g.newNode(symbol.Return)
	b.param.owningBlock = b
	b.ret.owningBlock = b
	b.param.next = b.ret
	b.ret.prev = b.param
	return b
}

// Graph owning the block.
func (b *Block) Graph() *Graph {
	return b.graph
}

// OwningNode returns the node owning the block, or nil for the root block of a graph.
func (b *Block) OwningNode() *Node {
	return b.owningNode
}

// ParamNode returns the node producing the inputs of the block.
func (b *Block) ParamNode() *Node {
	return b.param
}

// ReturnNode returns the node consuming the outputs of the block.
func (b *Block) ReturnNode() *Node {
	return b.ret
}

// Inputs of the block.
func (b *Block) Inputs() []*Value {
	return b.param.Outputs()
}

// Outputs of the block.
func (b *Block) Outputs() []*Value {
	return b.ret.Inputs()
}

// AddInput appends an input to the block.
func (b *Block) AddInput(name string, typ Type) *Value {
	return b.param.AddOutput().SetType(typ).SetDebugName(name)
}

// RegisterOutput appends a value to the outputs of the block and returns its index.
func (b *Block) RegisterOutput(v *Value) int {
	b.ret.AddInput(v)
	return len(b.ret.inputs) - 1
}

// AppendNode inserts a node at the end of the block.
func (b *Block) AppendNode(n *Node) *Node {
	return n.InsertBefore(b.ret)
}

// PrependNode inserts a node at the beginning of the block.
func (b *Block) PrependNode(n *Node) *Node {
	return n.InsertAfter(b.param)
}

// Nodes iterates over the nodes of the block.
//
// The successor of a node is read before the node is yielded:
// the consumer can destroy the yielded node or insert nodes around it.
// Nodes inserted right after the yielded node are not visited.
func (b *Block) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := b.param.next; n != b.ret; {
			next := n.next
			if !yield(n) {
				return
			}
			n = next
		}
	}
}

// destroy all the nodes of the block, users first.
func (b *Block) destroy() {
	b.ret.RemoveAllInputs()
	for n := b.ret.prev; n != b.param; {
		prev := n.prev
		n.destroy()
		n = prev
	}
	b.ret.destroyed = true
	b.param.destroyed = true
}

// Walk iterates over all the nodes of a block and of its nested blocks, recursively.
// A node is yielded before the nodes of its nested blocks.
func Walk(b *Block) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		walk(b, yield)
	}
}

func walk(b *Block, yield func(*Node) bool) bool {
	for n := range b.Nodes() {
		if !yield(n) {
			return false
		}
		for _, nested := range n.blocks {
			if !walk(nested, yield) {
				return false
			}
		}
	}
	return true
}
