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

package funcsub_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/exportpass/base/fmterr"
	"github.com/gx-org/exportpass/ir"
	"github.com/gx-org/exportpass/ir/irhelper"
	"github.com/gx-org/exportpass/ir/symbol"
	"github.com/gx-org/exportpass/passes/funcsub"
)

func conv2d() *ir.ClassType {
	class := irhelper.Class("__torch__.torch.nn.modules.conv.__torch_mangle_1.Conv2d")
	irhelper.Method(class, "forward", []ir.Type{irhelper.Tensor()}, func(g *ir.Graph, self *ir.Value, args []*ir.Value) []*ir.Value {
		w := irhelper.GetAttr(g, self, "weight", irhelper.Tensor())
		return []*ir.Value{irhelper.Op(g, "aten::_convolution", irhelper.Tensor(), args[0], w)}
	})
	return class
}

const convScope = "torch.nn.modules.conv.Conv2d"

// nodeScopes returns the kind and the scope name of all the nodes of a graph.
func nodeScopes(g *ir.Graph) []string {
	var nodes []string
	for n := range ir.Walk(g.Block()) {
		nodes = append(nodes, fmt.Sprintf("%s %s", n.Kind(), n.ScopeName()))
	}
	return nodes
}

func checkNoCalls(t *testing.T, g *ir.Graph) {
	t.Helper()
	for _, kind := range []string{"prim::CallFunction", "prim::CallMethod"} {
		if calls := irhelper.NodesOfKind(g.Block(), kind); len(calls) > 0 {
			t.Errorf("%d %s node(s) left in the graph", len(calls), kind)
		}
	}
}

func checkNoScope(t *testing.T, g *ir.Graph) {
	t.Helper()
	for n := range ir.Walk(g.Block()) {
		if n.ScopeName() != "" {
			t.Errorf("node %s has scope %q", n.Kind(), n.ScopeName())
		}
	}
}

func run(t *testing.T, g *ir.Graph, opts ...funcsub.Option) {
	t.Helper()
	if err := funcsub.Run(g, append(opts, funcsub.WithLint())...); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestTidyClassName(t *testing.T) {
	tests := []struct {
		name *ir.QualifiedName
		want string
	}{
		{name: nil, want: funcsub.UnknownClass},
		{name: ir.NewQualifiedName("__torch__.Foo.__torch_mangle_3.Bar"), want: "Foo.Bar"},
		{name: ir.NewQualifiedName("__torch__.torch.nn.modules.conv.Conv2d"), want: "torch.nn.modules.conv.Conv2d"},
		{name: ir.NewQualifiedName("Net"), want: "Net"},
		{name: ir.NewQualifiedName("models.x__torch_mangle.Net"), want: "models.Net"},
		{name: ir.NewQualifiedName("__torch__.__torch_mangle_0"), want: ""},
		{name: ir.NewQualifiedName(""), want: ""},
	}
	for _, test := range tests {
		if got := funcsub.TidyClassName(test.name); got != test.want {
			t.Errorf("TidyClassName(%v) = %q, want %q", test.name, got, test.want)
		}
	}
}

func TestCallNodeVariableName(t *testing.T) {
	net := irhelper.Class("__torch__.Net")
	conv := conv2d()
	moduleList := irhelper.Class("__torch__.torch.nn.modules.container.ModuleList")
	g := ir.NewGraph()
	self := g.AddInput("self", net)
	x := g.AddInput("x", irhelper.Tensor())
	list := g.AddInput("list", moduleList)

	layers := irhelper.GetAttr(g, self, "layers", moduleList)
	layer0 := irhelper.GetAttr(g, layers, "0", moduleList)
	nested := irhelper.GetAttr(g, layer0, "conv", conv)
	field := irhelper.GetAttr(g, self, "conv", conv)
	global := g.InsertNode(g.Create(symbol.Constant, nil, 1)).SetS(symbol.AttrName, "shared").Output(0).SetType(conv)
	tests := []struct {
		receiver *ir.Value
		want     string
	}{
		{receiver: nested, want: "layers.0.conv"},
		{receiver: field, want: "conv"},
		{receiver: global, want: "shared"},
		{receiver: self, want: ""},
	}
	for _, test := range tests {
		call := irhelper.CallMethod(g, "forward", irhelper.Tensor(), test.receiver, x)
		got, err := funcsub.CallNodeVariableName(call)
		if err != nil {
			t.Errorf("receiver %s: %v", test.receiver, err)
			continue
		}
		if got != test.want {
			t.Errorf("receiver %s: got %q but want %q", test.receiver, got, test.want)
		}
	}

	// The module list is a graph input: its name is unknown.
	fromList := irhelper.GetAttr(g, list, "0", conv)
	call := irhelper.CallMethod(g, "forward", irhelper.Tensor(), fromList, x)
	if _, err := funcsub.CallNodeVariableName(call); !fmterr.IsInternal(err) {
		t.Errorf("unnamed module list: got error %v but want an internal error", err)
	}
	if _, err := funcsub.CallNodeVariableName(layers.Node()); !fmterr.IsInternal(err) {
		t.Errorf("non-call node: got error %v but want an internal error", err)
	}
}

func TestInlineMethod(t *testing.T) {
	net := irhelper.Class("__torch__.Net")
	conv := conv2d()
	g := ir.NewGraph()
	self := g.AddInput("self", net)
	x := g.AddInput("x", irhelper.Tensor())
	c := irhelper.GetAttr(g, self, "conv", conv)
	call := irhelper.CallMethod(g, "forward", irhelper.Tensor(), c, x)
	out := irhelper.Op(g, "aten::relu", irhelper.Tensor(), call.Output(0))
	g.RegisterOutput(out)

	run(t, g)
	checkNoCalls(t, g)
	want := []string{
		"prim::GetAttr Net::",
		"prim::GetAttr Net::/" + convScope + "::conv",
		"aten::_convolution Net::/" + convScope + "::conv",
		"aten::relu Net::",
	}
	if diff := cmp.Diff(want, nodeScopes(g)); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
	if got := len(x.Uses()); got != 1 {
		t.Errorf("x has %d uses but want 1", got)
	}
	if got, want := out.Node().Input(0).Node().Kind().String(), "aten::_convolution"; got != want {
		t.Errorf("relu consumes the output of %s but want %s", got, want)
	}
	// The method of the class is not modified.
	forward, _ := conv.Method("forward")
	body, _ := ir.AsGraphFunction(forward)
	checkNoScope(t, body.Graph())
}

func TestModuleListScope(t *testing.T) {
	net := irhelper.Class("__torch__.Net")
	conv := conv2d()
	moduleList := irhelper.Class("__torch__.torch.nn.modules.container.ModuleList")
	g := ir.NewGraph()
	self := g.AddInput("self", net)
	x := g.AddInput("x", irhelper.Tensor())
	layers := irhelper.GetAttr(g, self, "layers", moduleList)
	layer0 := irhelper.GetAttr(g, layers, "0", moduleList)
	c := irhelper.GetAttr(g, layer0, "conv", conv)
	g.RegisterOutput(irhelper.CallMethod(g, "forward", irhelper.Tensor(), c, x).Output(0))

	run(t, g)
	checkNoCalls(t, g)
	convs := irhelper.NodesOfKind(g.Block(), "aten::_convolution")
	if len(convs) != 1 {
		t.Fatalf("got %d convolutions but want 1", len(convs))
	}
	if got, want := convs[0].ScopeName(), "Net::/"+convScope+"::layers.0.conv"; got != want {
		t.Errorf("got scope %q but want %q", got, want)
	}
}

func TestCallChain(t *testing.T) {
	classC := irhelper.Class("__torch__.C")
	irhelper.Method(classC, "forward", []ir.Type{irhelper.Tensor()}, func(g *ir.Graph, self *ir.Value, args []*ir.Value) []*ir.Value {
		return []*ir.Value{irhelper.Op(g, "aten::sin", irhelper.Tensor(), args[0])}
	})
	classB := irhelper.Class("__torch__.B")
	forwardB := irhelper.Method(classB, "forward", []ir.Type{irhelper.Tensor()}, func(g *ir.Graph, self *ir.Value, args []*ir.Value) []*ir.Value {
		c := irhelper.GetAttr(g, self, "c", classC)
		return []*ir.Value{irhelper.CallMethod(g, "forward", irhelper.Tensor(), c, args[0]).Output(0)}
	})
	classA := irhelper.Class("__torch__.A")
	g := ir.NewGraph()
	self := g.AddInput("self", classA)
	x := g.AddInput("x", irhelper.Tensor())
	b := irhelper.GetAttr(g, self, "b", classB)
	g.RegisterOutput(irhelper.CallMethod(g, "forward", irhelper.Tensor(), b, x).Output(0))

	run(t, g)
	checkNoCalls(t, g)
	want := []string{
		"prim::GetAttr A::",
		"prim::GetAttr A::/B::b",
		"aten::sin A::/B::b/C::c",
	}
	if diff := cmp.Diff(want, nodeScopes(g)); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
	if got := irhelper.NodesOfKind(forwardB.Graph().Block(), "prim::CallMethod"); len(got) != 1 {
		t.Errorf("the method of B has been modified")
	}
}

func TestFunctionCalls(t *testing.T) {
	interpolate := ir.NewBuiltinFunction("torch.nn.functional.interpolate")
	relu := irhelper.Function("__torch__.torch.nn.functional.relu", []ir.Type{irhelper.Tensor()}, func(g *ir.Graph, args []*ir.Value) []*ir.Value {
		return []*ir.Value{irhelper.Op(g, "aten::relu", irhelper.Tensor(), args[0])}
	})
	local := irhelper.Function("__torch__.utils.interpolate", []ir.Type{irhelper.Tensor()}, func(g *ir.Graph, args []*ir.Value) []*ir.Value {
		return []*ir.Value{irhelper.Op(g, "aten::neg", irhelper.Tensor(), args[0])}
	})
	net := irhelper.Class("__torch__.Net")
	g := ir.NewGraph()
	g.AddInput("self", net)
	x := g.AddInput("x", irhelper.Tensor())
	size := g.AddInput("size", &ir.ListType{Elem: ir.IntType})
	up := irhelper.CallFunction(g, interpolate, irhelper.Tensor(), x, size)
	up.Output(0).SetDebugName("up")
	act := irhelper.CallFunction(g, relu, irhelper.Tensor(), up.Output(0))
	neg := irhelper.CallFunction(g, local, irhelper.Tensor(), act.Output(0))
	g.RegisterOutput(neg.Output(0))

	run(t, g)
	checkNoCalls(t, g)
	want := []string{
		"aten::__interpolate Net::",
		"aten::relu Net::",
		"aten::neg Net::",
	}
	if diff := cmp.Diff(want, nodeScopes(g)); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
	ip := irhelper.NodesOfKind(g.Block(), "aten::__interpolate")[0]
	if got, want := ip.Inputs(), []*ir.Value{x, size}; !slices.Equal(got, want) {
		t.Errorf("interpolate inputs: got %v but want %v", got, want)
	}
	if got := ip.Output(0).DebugName(); got != "up" {
		t.Errorf("interpolate output is named %s but want up", got)
	}
	if len(x.Uses()) != 1 || len(size.Uses()) != 1 || len(ip.Output(0).Uses()) != 1 {
		t.Errorf("wrong number of uses: x=%d size=%d interpolate=%d", len(x.Uses()), len(size.Uses()), len(ip.Output(0).Uses()))
	}
}

func TestPassThrough(t *testing.T) {
	net := irhelper.Class("__torch__.Net")
	irhelper.BuiltinMethod(net, "extra_repr")
	g := ir.NewGraph()
	self := g.AddInput("self", net)
	x := g.AddInput("x", irhelper.Tensor())
	r := irhelper.Op(g, "aten::relu", irhelper.Tensor(), x)
	repr := irhelper.CallMethod(g, "extra_repr", ir.StringType, self)
	add := irhelper.CallMethod(g, "add", irhelper.Tensor(), x, r)
	g.RegisterOutput(repr.Output(0))
	g.RegisterOutput(add.Output(0))

	run(t, g)
	want := []string{
		"aten::relu Net::",
		"prim::CallMethod ",
		"prim::CallMethod ",
	}
	if diff := cmp.Diff(want, nodeScopes(g)); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
	if repr.IsDestroyed() || add.IsDestroyed() {
		t.Errorf("calls which cannot be inlined have been destroyed")
	}
}

func TestNestedBlocks(t *testing.T) {
	net := irhelper.Class("__torch__.Net")
	conv := conv2d()
	g := ir.NewGraph()
	self := g.AddInput("self", net)
	x := g.AddInput("x", irhelper.Tensor())
	cond := g.AddInput("cond", ir.BoolType)
	ifNode := g.InsertNode(g.Create(symbol.If, []*ir.Value{cond}, 1))
	then := ifNode.AddBlock()
	restore := g.WithInsertPoint(then.ReturnNode())
	c := irhelper.GetAttr(g, self, "conv", conv)
	call := irhelper.CallMethod(g, "forward", irhelper.Tensor(), c, x)
	restore()
	then.RegisterOutput(call.Output(0))
	els := ifNode.AddBlock()
	restore = g.WithInsertPoint(els.ReturnNode())
	r := irhelper.Op(g, "aten::relu", irhelper.Tensor(), x)
	restore()
	els.RegisterOutput(r)
	g.RegisterOutput(ifNode.Output(0))

	run(t, g)
	checkNoCalls(t, g)
	want := []string{
		"prim::If Net::",
		"prim::GetAttr Net::",
		"prim::GetAttr Net::/" + convScope + "::conv",
		"aten::_convolution Net::/" + convScope + "::conv",
		"aten::relu Net::",
	}
	if diff := cmp.Diff(want, nodeScopes(g)); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
}

func TestFirstInputNotAClass(t *testing.T) {
	conv := conv2d()
	g := ir.NewGraph()
	x := g.AddInput("x", irhelper.Tensor())
	m := g.AddInput("m", conv)
	call := irhelper.CallMethod(g, "forward", irhelper.Tensor(), m, x)
	g.RegisterOutput(irhelper.Op(g, "aten::relu", irhelper.Tensor(), call.Output(0)))

	run(t, g)
	want := []string{
		"prim::GetAttr " + convScope + "::",
		"aten::_convolution " + convScope + "::",
		"aten::relu ",
	}
	if diff := cmp.Diff(want, nodeScopes(g)); diff != "" {
		t.Errorf("unexpected nodes:\n%s", diff)
	}
}

func TestNoInputs(t *testing.T) {
	g := ir.NewGraph()
	cst := irhelper.Constant(g, irhelper.Tensor())
	g.RegisterOutput(irhelper.Op(g, "aten::relu", irhelper.Tensor(), cst))
	run(t, g)
	checkNoScope(t, g)
}

func TestErrors(t *testing.T) {
	net := irhelper.Class("__torch__.Net")
	broken := irhelper.Class("__torch__.Broken")
	irhelper.Method(broken, "forward", nil, func(g *ir.Graph, self *ir.Value, _ []*ir.Value) []*ir.Value {
		return []*ir.Value{irhelper.CallMethod(g, "missing", irhelper.Tensor(), self).Output(0)}
	})
	builtin := ir.NewBuiltinFunction("torch.relu")
	tests := []struct {
		desc  string
		build func(g *ir.Graph, self, x *ir.Value) *ir.Node
	}{
		{
			desc: "missing method",
			build: func(g *ir.Graph, self, x *ir.Value) *ir.Node {
				return irhelper.CallMethod(g, "missing", irhelper.Tensor(), self)
			},
		},
		{
			desc: "missing method in callee",
			build: func(g *ir.Graph, self, x *ir.Value) *ir.Node {
				b := irhelper.GetAttr(g, self, "broken", broken)
				return irhelper.CallMethod(g, "forward", irhelper.Tensor(), b)
			},
		},
		{
			desc: "function without graph",
			build: func(g *ir.Graph, self, x *ir.Value) *ir.Node {
				return irhelper.CallFunction(g, builtin, irhelper.Tensor(), x)
			},
		},
		{
			desc: "function not produced by a constant",
			build: func(g *ir.Graph, self, x *ir.Value) *ir.Node {
				fn := g.AddInput("fn", ir.NewFunctionType(builtin))
				return g.InsertNode(g.Create(symbol.CallFunction, []*ir.Value{fn, x}, 1))
			},
		},
		{
			desc: "method call without name",
			build: func(g *ir.Graph, self, x *ir.Value) *ir.Node {
				return g.InsertNode(g.Create(symbol.CallMethod, []*ir.Value{self}, 1))
			},
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			g := ir.NewGraph()
			self := g.AddInput("self", net)
			x := g.AddInput("x", irhelper.Tensor())
			g.RegisterOutput(test.build(g, self, x).Output(0))
			root := g.CurrentScope()
			err := funcsub.Run(g)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !fmterr.IsInternal(err) {
				t.Errorf("got error %v but want an internal error", err)
			}
			if g.CurrentScope() != root {
				t.Errorf("current scope %q has not been restored", g.CurrentScope())
			}
		})
	}
}

func TestLogger(t *testing.T) {
	build := func() *ir.Graph {
		g := ir.NewGraph()
		self := g.AddInput("self", irhelper.Class("__torch__.Net"))
		x := g.AddInput("x", irhelper.Tensor())
		c := irhelper.GetAttr(g, self, "conv", conv2d())
		g.RegisterOutput(irhelper.CallMethod(g, "forward", irhelper.Tensor(), c, x).Output(0))
		return g
	}
	var debug bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}))
	run(t, build(), funcsub.WithLogger(logger))
	for _, want := range []string{
		"before function call substitution",
		"after function call substitution",
		"call inlined",
		"aten::_convolution",
	} {
		if !strings.Contains(debug.String(), want) {
			t.Errorf("log does not contain %q:\n%s", want, debug.String())
		}
	}

	var info bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}))
	run(t, build(), funcsub.WithLogger(logger))
	if info.Len() > 0 {
		t.Errorf("unexpected log at the info level:\n%s", info.String())
	}
}

func TestScopedNames(t *testing.T) {
	g := ir.NewGraph()
	self := g.AddInput("self", irhelper.Class("__torch__.Net"))
	x := g.AddInput("x", irhelper.Tensor())
	c := irhelper.GetAttr(g, self, "conv", conv2d())
	call := irhelper.CallMethod(g, "forward", irhelper.Tensor(), c, x)
	g.RegisterOutput(irhelper.Op(g, "aten::relu", irhelper.Tensor(), call.Output(0)))

	run(t, g, funcsub.WithScopedNames())
	var got []string
	for n := range ir.Walk(g.Block()) {
		if name, ok := n.S(symbol.AttrScopedName); ok {
			got = append(got, name)
		}
	}
	if diff := cmp.Diff([]string{"/conv/_convolution", "/relu"}, got); diff != "" {
		t.Errorf("unexpected scoped names:\n%s", diff)
	}
}
