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

// Package symbol defines the namespaced symbols naming operator kinds
// and attribute keys in the IR.
//
// A symbol is written namespace::name, for example prim::CallMethod or attr::name.
package symbol

import (
	"strings"

	"github.com/pkg/errors"
)

// Namespaces of symbols.
const (
	Prim  = "prim"
	Aten  = "aten"
	Onnx  = "onnx"
	Attr  = "attr"
	Scope = "scope"
)

const separator = "::"

// Symbol is a namespaced name. Symbols are comparable values.
type Symbol struct {
	ns   string
	name string
}

// New returns a symbol given its namespace and its unqualified name.
func New(ns, name string) Symbol {
	return Symbol{ns: ns, name: name}
}

// FromQualString parses a namespace::name string.
func FromQualString(s string) (Symbol, error) {
	ns, name, found := strings.Cut(s, separator)
	if !found || ns == "" || name == "" {
		return Symbol{}, errors.Errorf("invalid qualified symbol %q: want namespace%sname", s, separator)
	}
	return New(ns, name), nil
}

// Namespace of the symbol.
func (s Symbol) Namespace() string {
	return s.ns
}

// Unqual returns the name of the symbol without its namespace.
func (s Symbol) Unqual() string {
	return s.name
}

// IsZero returns true if the symbol has not been set.
func (s Symbol) IsZero() bool {
	return s == Symbol{}
}

// Is returns true if the symbol belongs to the given namespace.
func (s Symbol) Is(ns string) bool {
	return s.ns == ns
}

// String returns the qualified representation of the symbol.
func (s Symbol) String() string {
	if s.IsZero() {
		return "<nosymbol>"
	}
	return s.ns + separator + s.name
}

// Operator kinds.
var (
	// Param is the kind of the node producing the inputs of a block.
	Param = New(Prim, "Param")
	// Return is the kind of the node consuming the outputs of a block.
	Return = New(Prim, "Return")
	// Constant is the kind of nodes producing constant values, including functions.
	Constant = New(Prim, "Constant")
	// CallFunction calls the function given by its first input.
	CallFunction = New(Prim, "CallFunction")
	// CallMethod calls the method named attr::name on its first input.
	CallMethod = New(Prim, "CallMethod")
	// GetAttr reads the attribute attr::name of its input object.
	GetAttr = New(Prim, "GetAttr")
	If      = New(Prim, "If")
	Loop    = New(Prim, "Loop")

	// Interpolate is the placeholder operator substituted for interpolation calls.
	Interpolate = New(Aten, "__interpolate")
)

// Attribute keys.
var (
	AttrName       = New(Attr, "name")
	AttrValue      = New(Attr, "value")
	AttrScopedName = New(Attr, "scoped_name")
)
