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
	"github.com/gx-org/exportpass/ir/symbol"
)

const moduleListType = "__torch__.torch.nn.modules.container.ModuleList"

func isCall(n *ir.Node) bool {
	return n.Kind() == symbol.CallFunction || n.Kind() == symbol.CallMethod
}

func checkCall(n *ir.Node) error {
	if !isCall(n) {
		return fmterr.Internalf("%s is not a call", n.Kind())
	}
	if len(n.Inputs()) == 0 {
		return fmterr.Internalf("%s has no receiver", n.Kind())
	}
	return nil
}

func isModuleList(typ ir.Type) bool {
	class, ok := typ.(*ir.ClassType)
	if !ok || class.Name() == nil {
		return false
	}
	return class.Name().QualifiedName() == moduleListType
}

// CallNodeVariableName returns the name of the variable holding the receiver of a call.
//
// The name is read from the name attribute of the node producing the receiver.
// Elements of module lists are named by their index: the names of the enclosing
// module lists are prepended, for example layers.0.conv.
// An empty string is returned if the receiver has no name.
func CallNodeVariableName(call *ir.Node) (string, error) {
	if err := checkCall(call); err != nil {
		return "", err
	}
	module := call.Input(0).Node()
	name, ok := module.S(symbol.AttrName)
	if !ok {
		return "", nil
	}
	if len(module.Inputs()) == 0 {
		return name, nil
	}
	for parent := module.Input(0); parent != nil && isModuleList(parent.Type()); {
		container := parent.Node()
		containerName, ok := container.S(symbol.AttrName)
		if !ok {
			return "", fmterr.Internalf("module list %s read by %s has no name", parent, container.Kind())
		}
		name = containerName + "." + name
		parent = nil
		if len(container.Inputs()) > 0 {
			parent = container.Input(0)
		}
	}
	return name, nil
}
