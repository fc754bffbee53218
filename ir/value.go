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
	"slices"
	"strconv"
)

// Use is an edge from a value to one of the inputs of a node.
type Use struct {
	// User is the node consuming the value.
	User *Node
	// Offset is the index of the value in the inputs of the user.
	Offset int
}

// Value is an output of a node.
type Value struct {
	node      *Node
	offset    int
	unique    int
	typ       Type
	uses      []Use
	debugName string
}

func (g *Graph) newValue(n *Node, offset int, typ Type) *Value {
	g.nextUnique++
	return &Value{
		node:   n,
		offset: offset,
		unique: g.nextUnique,
		typ:    typ,
	}
}

// Node returns the node producing the value.
func (v *Value) Node() *Node {
	return v.node
}

// Offset returns the index of the value in the outputs of its producer.
func (v *Value) Offset() int {
	return v.offset
}

// Unique returns an identifier of the value unique within its graph.
func (v *Value) Unique() int {
	return v.unique
}

// Type of the value.
func (v *Value) Type() Type {
	return v.typ
}

// SetType sets the type of the value.
func (v *Value) SetType(typ Type) *Value {
	v.typ = typ
	return v
}

// Uses returns the nodes consuming the value.
func (v *Value) Uses() []Use {
	return slices.Clone(v.uses)
}

// HasUses returns true if at least one node consumes the value.
func (v *Value) HasUses() bool {
	return len(v.uses) > 0
}

// HasDebugName returns true if the value has been explicitly named.
func (v *Value) HasDebugName() bool {
	return v.debugName != ""
}

// DebugName returns the name of the value or its unique identifier
// if the value has not been named.
func (v *Value) DebugName() string {
	if v.debugName == "" {
		return strconv.Itoa(v.unique)
	}
	return v.debugName
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// SetDebugName names the value. The name is made unique within the graph.
// Names made only of digits are reserved for unnamed values and are ignored.
func (v *Value) SetDebugName(name string) *Value {
	names := v.node.graph.names
	if v.debugName != "" {
		names.Release(v.debugName)
		v.debugName = ""
	}
	if name == "" || isNumber(name) {
		return v
	}
	v.debugName = names.Name(name)
	return v
}

// CopyMetadata copies the type and the name of another value.
func (v *Value) CopyMetadata(from *Value) *Value {
	v.SetType(from.typ)
	if from.HasDebugName() {
		v.SetDebugName(from.debugName)
	}
	return v
}

// ReplaceAllUsesWith redirects all the consumers of v to another value.
func (v *Value) ReplaceAllUsesWith(other *Value) {
	if v == other {
		return
	}
	for _, use := range v.uses {
		use.User.inputs[use.Offset] = other
		other.uses = append(other.uses, use)
	}
	v.uses = nil
}

func (v *Value) dropUse(user *Node, offset int) {
	for i, use := range v.uses {
		if use.User == user && use.Offset == offset {
			v.uses = slices.Delete(v.uses, i, i+1)
			return
		}
	}
}

func (v *Value) moveUse(user *Node, from, to int) {
	for i, use := range v.uses {
		if use.User == user && use.Offset == from {
			v.uses[i].Offset = to
			return
		}
	}
}

func (v *Value) String() string {
	return "%" + v.DebugName()
}
