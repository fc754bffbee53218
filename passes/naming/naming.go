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

// Package naming builds and parses the scope names stamped on nodes by graph passes.
//
// A scope segment is made of a class name and a variable name separated by
// NameSeparator, for example Conv2d::layers.0.conv. The segment of the top-level
// module has an empty variable name. Segments are joined with ir.ScopeSeparator
// to form the scope name of a node, for example Net::/Conv2d::layers.0.conv.
// Export tools parse these names: their format must not change.
package naming

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/exportpass/base/fmterr"
	"github.com/gx-org/exportpass/base/iter"
	"github.com/gx-org/exportpass/base/stringseq"
	"github.com/gx-org/exportpass/base/uname"
	"github.com/gx-org/exportpass/ir"
	"github.com/gx-org/exportpass/ir/symbol"
)

// NameSeparator separates the class name from the variable name in a scope segment.
const NameSeparator = "::"

// CreateFullScopeName returns the scope segment of a variable of a given class.
func CreateFullScopeName(className, variableName string) string {
	return className + NameSeparator + variableName
}

// IsCompatibleScope returns true if the scope has been created from a scope segment.
func IsCompatibleScope(scope *ir.Scope) bool {
	if scope == nil || scope.IsRoot() || scope.IsBlank() {
		return false
	}
	return strings.Contains(scope.Name(), NameSeparator)
}

func split(scope *ir.Scope) (className, variableName string, err error) {
	if scope == nil {
		return "", "", errors.Errorf("cannot parse a nil scope")
	}
	var found bool
	className, variableName, found = strings.Cut(scope.Name(), NameSeparator)
	if !found {
		return "", "", errors.Errorf("scope %q is not of the form Class%sVariable", scope.Name(), NameSeparator)
	}
	return className, variableName, nil
}

// ClassName returns the class name of the last segment of a scope.
func ClassName(scope *ir.Scope) (string, error) {
	className, _, err := split(scope)
	return className, err
}

// VariableName returns the variable name of the last segment of a scope.
func VariableName(scope *ir.Scope) (string, error) {
	_, variableName, err := split(scope)
	return variableName, err
}

// compatibleFromRoot returns the compatible scopes from the outermost one to scope.
func compatibleFromRoot(scope *ir.Scope) ([]*ir.Scope, error) {
	if !IsCompatibleScope(scope) {
		return nil, fmterr.Internalf("scope %q has not been created from a scope segment", scope)
	}
	var scopes []*ir.Scope
	for s := scope; IsCompatibleScope(s); s = s.Parent() {
		scopes = append(scopes, s)
	}
	slices.Reverse(scopes)
	return scopes, nil
}

func fromRoot(scope *ir.Scope, sep string, part func(*ir.Scope) (string, error)) (string, error) {
	scopes, err := compatibleFromRoot(scope)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		if parts[i], err = part(s); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, sep), nil
}

// ClassNameFromRoot joins the class names of the segments of a scope with sep,
// from the outermost segment to the last one.
func ClassNameFromRoot(scope *ir.Scope, sep string) (string, error) {
	return fromRoot(scope, sep, ClassName)
}

// VariableNameFromRoot joins the variable names of the segments of a scope with sep,
// from the outermost segment to the last one.
func VariableNameFromRoot(scope *ir.Scope, sep string) (string, error) {
	return fromRoot(scope, sep, VariableName)
}

// scopedName returns the name of a node built from the variable names of its scope.
func scopedName(n *ir.Node) (string, error) {
	var parts []string
	if IsCompatibleScope(n.Scope()) {
		scopes, err := compatibleFromRoot(n.Scope())
		if err != nil {
			return "", err
		}
		for _, s := range scopes {
			variableName, err := VariableName(s)
			if err != nil {
				return "", err
			}
			parts = append(parts, variableName)
		}
	}
	nonEmpty := iter.Filter(func(s string) bool { return s != "" }, slices.Values(parts))
	path := stringseq.Join(nonEmpty, ir.ScopeSeparator)
	if path == "" {
		return ir.ScopeSeparator + n.Kind().Unqual(), nil
	}
	return ir.ScopeSeparator + path + ir.ScopeSeparator + n.Kind().Unqual(), nil
}

// AssignScopedNames sets the attr::scoped_name attribute of every operator node
// of a graph, including the nodes of nested blocks.
// The name is the path of the variable names of the scope of the node
// followed by the kind of the node, for example /layers.0.conv/_convolution.
// Names are unique within the graph. Nodes in the prim namespace are skipped.
func AssignScopedNames(g *ir.Graph) error {
	names := uname.NewWithSeparator("_")
	for n := range ir.Walk(g.Block()) {
		if n.Kind().Is(symbol.Prim) {
			continue
		}
		name, err := scopedName(n)
		if err != nil {
			return err
		}
		n.SetS(symbol.AttrScopedName, names.Name(name))
	}
	return nil
}
