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

package funcsub

import (
	"github.com/gx-org/exportpass/base/fmterr"
	"github.com/gx-org/exportpass/ir"
	"github.com/gx-org/exportpass/passes/naming"
)

// topModuleVariableName is the variable name of the module being exported.
const topModuleVariableName = ""

// setScopeGuardForCall pushes the scope segment of the receiver of a call
// and makes it the current scope of the graph until restore is called.
func setScopeGuardForCall(g *ir.Graph, call *ir.Node) (restore func(), err error) {
	if err := checkCall(call); err != nil {
		return nil, err
	}
	receiver := call.Input(0)
	named, ok := receiver.Type().(ir.NamedType)
	if !ok {
		return nil, fmterr.Internalf("receiver %s of %s has type %s which has no name", receiver, call.Kind(), receiver.Type())
	}
	variableName, err := CallNodeVariableName(call)
	if err != nil {
		return nil, err
	}
	segment := naming.CreateFullScopeName(TidyClassName(named.Name()), variableName)
	return g.WithCurrentScope(g.CurrentScope().Push(segment)), nil
}

// topLevelScopeGuard pushes the scope segment of the exported module,
// given by the type of the first input of the graph.
// The current scope is left unchanged if that input is not a class instance.
func topLevelScopeGuard(g *ir.Graph) (restore func()) {
	inputs := g.Inputs()
	if len(inputs) == 0 {
		return g.WithCurrentScope(g.CurrentScope())
	}
	class, ok := inputs[0].Type().(*ir.ClassType)
	if !ok {
		return g.WithCurrentScope(g.CurrentScope())
	}
	segment := naming.CreateFullScopeName(TidyClassName(class.Name()), topModuleVariableName)
	return g.WithCurrentScope(g.CurrentScope().Push(segment))
}
