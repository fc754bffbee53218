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

// Package funcsub substitutes function and method calls in a graph being exported.
//
// Calls are inlined recursively until no call remains, except calls to the
// interpolation functions of torch.nn.functional which are replaced by a single
// aten::__interpolate operator. While inlining, every node is stamped with a
// scope recording the chain of modules whose methods produced it, for example
// Net::/Conv2d::layers.0.conv. See package naming for the format of scopes.
package funcsub

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/exportpass/base/fmterr"
	"github.com/gx-org/exportpass/ir"
	"github.com/gx-org/exportpass/ir/irstring"
	"github.com/gx-org/exportpass/ir/symbol"
	"github.com/gx-org/exportpass/passes/naming"
)

const (
	interpolateNamespace = "torch.nn.functional"
	interpolateName      = "interpolate"
)

type graphDump struct {
	g *ir.Graph
}

// LogValue builds the dump only if the record is handled.
func (d graphDump) LogValue() slog.Value {
	return slog.StringValue(irstring.Graph(d.g))
}

type substituter struct {
	log *slog.Logger
}

// Run substitutes all the function and method calls of a graph, in place.
//
// Calls to methods without a graph body and calls on receivers which are not
// class instances are left in the graph.
func Run(g *ir.Graph, opts ...Option) error {
	o := newOptions(opts)
	if o.lint {
		if err := ir.Lint(g); err != nil {
			return fmterr.Internal(errors.Wrap(err, "invalid graph before function call substitution"))
		}
	}
	s := &substituter{log: o.logger}
	s.log.Debug("before function call substitution", slog.Any("graph", graphDump{g: g}))
	restore := topLevelScopeGuard(g)
	defer restore()
	if err := s.block(g.Block()); err != nil {
		return err
	}
	s.log.Debug("after function call substitution", slog.Any("graph", graphDump{g: g}))
	if o.lint {
		if err := ir.Lint(g); err != nil {
			return fmterr.Internal(errors.Wrap(err, "invalid graph after function call substitution"))
		}
	}
	if o.scopedNames {
		return naming.AssignScopedNames(g)
	}
	return nil
}

func (s *substituter) block(b *ir.Block) error {
	for n := range b.Nodes() {
		var err error
		switch n.Kind() {
		case symbol.CallFunction:
			err = s.callFunction(n)
		case symbol.CallMethod:
			err = s.callMethod(n)
		default:
			err = s.node(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isInterpolate(fn ir.Function) bool {
	name := fn.QualName().QualifiedName()
	return strings.Contains(name, interpolateNamespace) && strings.Contains(name, interpolateName)
}

// removeFunctionInput removes the function constant from the inputs of a call.
// The constant is destroyed if nothing else uses it.
func removeFunctionInput(call *ir.Node) error {
	cst := call.Input(0).Node()
	call.RemoveInput(0)
	if cst.HasUses() {
		return nil
	}
	return fmterr.Internal(cst.Destroy())
}

func (s *substituter) callFunction(call *ir.Node) error {
	if err := checkCall(call); err != nil {
		return err
	}
	fnValue := call.Input(0)
	if fnValue.Node().Kind() != symbol.Constant {
		return fmterr.Internalf("function called by %s is produced by %s instead of %s", call.Kind(), fnValue.Node().Kind(), symbol.Constant)
	}
	fnType, ok := fnValue.Type().(*ir.FunctionType)
	if !ok {
		return fmterr.Internalf("value %s called by %s has type %s instead of a function type", fnValue, call.Kind(), fnValue.Type())
	}
	fn := fnType.Function()
	if isInterpolate(fn) {
		if err := removeFunctionInput(call); err != nil {
			return err
		}
		return s.substituteInterpolate(call, fn)
	}
	body, ok := ir.AsGraphFunction(fn)
	if !ok {
		return fmterr.Internalf("cannot inline %s: function has no graph", fn.QualName())
	}
	if err := removeFunctionInput(call); err != nil {
		return err
	}
	return s.inline(call, body)
}

// substituteInterpolate replaces a call by an aten::__interpolate node
// consuming the arguments of the call.
func (s *substituter) substituteInterpolate(call *ir.Node, fn ir.Function) error {
	g := call.Graph()
	outs := call.Outputs()
	ip := g.Create(symbol.Interpolate, call.Inputs(), len(outs))
	for i, out := range outs {
		ip.Output(i).SetType(out.Type())
	}
	ip.InsertAfter(call)
	ip.CopyMetadata(call)
	if err := call.ReplaceAllUsesWith(ip); err != nil {
		return fmterr.Internal(err)
	}
	call.RemoveAllInputs()
	if err := call.Destroy(); err != nil {
		return fmterr.Internal(err)
	}
	// Names are transferred once the call has released them.
	for i, out := range outs {
		if out.HasDebugName() {
			ip.Output(i).SetDebugName(out.DebugName())
		}
	}
	s.log.Debug("function call substituted",
		slog.String("function", fn.QualName().QualifiedName()),
		slog.String("operator", symbol.Interpolate.String()),
	)
	return nil
}

func (s *substituter) callMethod(call *ir.Node) error {
	if err := checkCall(call); err != nil {
		return err
	}
	name, ok := call.S(symbol.AttrName)
	if !ok {
		return fmterr.Internalf("%s has no method name", call.Kind())
	}
	receiver := call.Input(0)
	class, ok := receiver.Type().(*ir.ClassType)
	if !ok {
		s.log.Debug("method call left in the graph: receiver is not a class instance",
			slog.String("method", name),
			slog.String("receiver", receiver.String()),
			slog.String("type", receiver.Type().String()),
		)
		return nil
	}
	method, ok := class.Method(name)
	if !ok {
		return fmterr.Internalf("class %s has no method %s", class, name)
	}
	restore, err := setScopeGuardForCall(call.Graph(), call)
	if err != nil {
		return err
	}
	defer restore()
	body, ok := ir.AsGraphFunction(method)
	if !ok {
		s.log.Debug("method call left in the graph: method has no graph",
			slog.String("method", method.QualName().QualifiedName()),
		)
		return nil
	}
	return s.inline(call, body)
}

// inline substitutes the calls of a copy of the callee, in the current scope
// of the caller, and splices the copy in place of the call.
// The callee itself is not modified.
func (s *substituter) inline(call *ir.Node, fn *ir.GraphFunction) error {
	g := call.Graph()
	callee, err := fn.Graph().Copy()
	if err != nil {
		return fmterr.Internal(errors.Wrapf(err, "cannot copy the graph of %s", fn.QualName()))
	}
	restore := callee.WithCurrentScope(g.CurrentScope())
	defer restore()
	if err := s.block(callee.Block()); err != nil {
		return err
	}
	if _, err := ir.InlineCallTo(call, callee); err != nil {
		return fmterr.Internal(err)
	}
	s.log.Debug("call inlined",
		slog.String("function", fn.QualName().QualifiedName()),
		slog.String("scope", g.CurrentScope().String()),
	)
	return nil
}

// node stamps a node with the current scope and substitutes the calls of its nested blocks.
func (s *substituter) node(n *ir.Node) error {
	scope := n.Graph().CurrentScope()
	if !scope.IsBlank() {
		n.SetScope(scope)
	}
	for _, b := range n.Blocks() {
		if err := s.block(b); err != nil {
			return err
		}
	}
	return nil
}
