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

type valueMap func(*Value) (*Value, error)

// createClone returns a detached copy of n owned by g.
// The inputs of the copy are obtained by mapping the inputs of n with env.
// The copy keeps the scope of n, unless that scope is blank in which case
// the copy is stamped with the current scope of g.
func (g *Graph) createClone(n *Node, env valueMap) (*Node, error) {
	r := g.newNode(n.kind)
	for _, out := range n.outputs {
		r.AddOutput().CopyMetadata(out)
	}
	r.CopyAttributes(n)
	r.CopyMetadata(n)
	for _, in := range n.inputs {
		mapped, err := env(in)
		if err != nil {
			return nil, err
		}
		r.AddInput(mapped)
	}
	for _, b := range n.blocks {
		if err := r.AddBlock().cloneFrom(b, env); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// cloneFrom appends copies of the inputs, nodes and outputs of src to b.
// Values not defined in src are mapped with outer.
func (b *Block) cloneFrom(src *Block, outer valueMap) error {
	local := make(map[*Value]*Value)
	env := func(v *Value) (*Value, error) {
		if mapped, ok := local[v]; ok {
			return mapped, nil
		}
		return outer(v)
	}
	for _, in := range src.Inputs() {
		local[in] = b.param.AddOutput().CopyMetadata(in)
	}
	for n := range src.Nodes() {
		clone, err := b.graph.createClone(n, env)
		if err != nil {
			return err
		}
		b.AppendNode(clone)
		for i, out := range n.outputs {
			local[out] = clone.outputs[i]
		}
	}
	for _, out := range src.Outputs() {
		mapped, err := env(out)
		if err != nil {
			return err
		}
		b.RegisterOutput(mapped)
	}
	return nil
}
