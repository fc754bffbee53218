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

// Package irhelper provides helper functions to build graphs programmatically.
//
// Nodes are inserted at the insertion point of the graph, that is at the end
// of its root block unless the insertion point has been moved.
package irhelper

import (
	"fmt"

	"github.com/gx-org/exportpass/ir"
	"github.com/gx-org/exportpass/ir/symbol"
)

// Tensor returns a tensor type with an unknown shape.
func Tensor() *ir.TensorType {
	return &ir.TensorType{}
}

// Class returns a class given its qualified name.
func Class(qualname string) *ir.ClassType {
	return ir.NewClassType(ir.NewQualifiedName(qualname))
}

// Kind parses a qualified symbol and panics if the string is not a valid symbol.
func Kind(qual string) symbol.Symbol {
	kind, err := symbol.FromQualString(qual)
	if err != nil {
		panic(err)
	}
	return kind
}

// Constant appends a constant node producing a value of the given type.
func Constant(g *ir.Graph, typ ir.Type) *ir.Value {
	n := g.InsertNode(g.Create(symbol.Constant, nil, 1))
	return n.Output(0).SetType(typ)
}

// FunctionConstant appends a constant node producing a function value.
func FunctionConstant(g *ir.Graph, fn ir.Function) *ir.Value {
	return Constant(g, ir.NewFunctionType(fn))
}

// GetAttr appends a node reading the attribute name of obj.
func GetAttr(g *ir.Graph, obj *ir.Value, name string, typ ir.Type) *ir.Value {
	n := g.Create(symbol.GetAttr, []*ir.Value{obj}, 1)
	n.SetS(symbol.AttrName, name)
	g.InsertNode(n)
	return n.Output(0).SetType(typ)
}

// Op appends a node given its kind, for example aten::relu, with a single output.
func Op(g *ir.Graph, kind string, typ ir.Type, inputs ...*ir.Value) *ir.Value {
	n := g.InsertNode(g.Create(Kind(kind), inputs, 1))
	return n.Output(0).SetType(typ)
}

// CallFunction appends a constant for fn and a node calling it.
func CallFunction(g *ir.Graph, fn ir.Function, typ ir.Type, args ...*ir.Value) *ir.Node {
	inputs := append([]*ir.Value{FunctionConstant(g, fn)}, args...)
	n := g.InsertNode(g.Create(symbol.CallFunction, inputs, 1))
	n.Output(0).SetType(typ)
	return n
}

// CallMethod appends a node calling the method name on self.
func CallMethod(g *ir.Graph, name string, typ ir.Type, self *ir.Value, args ...*ir.Value) *ir.Node {
	inputs := append([]*ir.Value{self}, args...)
	n := g.Create(symbol.CallMethod, inputs, 1)
	n.SetS(symbol.AttrName, name)
	g.InsertNode(n)
	n.Output(0).SetType(typ)
	return n
}

func addArgs(g *ir.Graph, argTypes []ir.Type) []*ir.Value {
	args := make([]*ir.Value, len(argTypes))
	for i, typ := range argTypes {
		args[i] = g.AddInput(fmt.Sprintf("arg%d", i), typ)
	}
	return args
}

func registerOutputs(g *ir.Graph, outs []*ir.Value) {
	for _, out := range outs {
		g.RegisterOutput(out)
	}
}

// Function builds a function with a graph body.
// body receives the graph and its inputs and returns the outputs of the graph.
func Function(qualname string, argTypes []ir.Type, body func(g *ir.Graph, args []*ir.Value) []*ir.Value) *ir.GraphFunction {
	g := ir.NewGraph()
	args := addArgs(g, argTypes)
	registerOutputs(g, body(g, args))
	return ir.NewGraphFunction(qualname, g)
}

func methodName(class *ir.ClassType, name string) string {
	if class.Name() == nil {
		return name
	}
	return class.Name().QualifiedName() + "." + name
}

// Method builds a method with a graph body and adds it to a class.
// The first input of the graph is the receiver, named self.
func Method(class *ir.ClassType, name string, argTypes []ir.Type, body func(g *ir.Graph, self *ir.Value, args []*ir.Value) []*ir.Value) *ir.GraphFunction {
	g := ir.NewGraph()
	self := g.AddInput("self", class)
	args := addArgs(g, argTypes)
	registerOutputs(g, body(g, self, args))
	fn := ir.NewGraphFunction(methodName(class, name), g)
	class.AddMethod(fn)
	return fn
}

// BuiltinMethod adds a method without a graph body to a class.
func BuiltinMethod(class *ir.ClassType, name string) *ir.BuiltinFunction {
	fn := ir.NewBuiltinFunction(methodName(class, name))
	class.AddMethod(fn)
	return fn
}

// NodesOfKind returns the nodes of a given kind in a block and its nested blocks.
func NodesOfKind(b *ir.Block, kind string) []*ir.Node {
	want := Kind(kind)
	var nodes []*ir.Node
	for n := range ir.Walk(b) {
		if n.Kind() == want {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Kinds returns the kinds of the nodes in a block and its nested blocks,
// in the order in which ir.Walk yields them.
func Kinds(b *ir.Block) []string {
	var kinds []string
	for n := range ir.Walk(b) {
		kinds = append(kinds, n.Kind().String())
	}
	return kinds
}
