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

	"github.com/gx-org/exportpass/base/ordered"
	"github.com/gx-org/exportpass/base/stringseq"
)

// ScopeSeparator separates the names of nested scopes in a scope path.
const ScopeSeparator = "/"

// Scope is a node in a tree of scopes. The path from the root to a scope
// records which nested calls produced the nodes stamped with that scope.
//
// The tree only grows: pushing a name twice on the same scope returns the same child.
type Scope struct {
	parent   *Scope
	name     string
	children *ordered.Map[string, *Scope]
}

// NewRootScope returns a new blank root scope.
func NewRootScope() *Scope {
	return &Scope{children: ordered.NewMap[string, *Scope]()}
}

// Push returns the child of the scope with the given name.
func (s *Scope) Push(name string) *Scope {
	child, _ := s.children.LoadOrStore(name, func() *Scope {
		return &Scope{
			parent:   s,
			name:     name,
			children: ordered.NewMap[string, *Scope](),
		}
	})
	return child
}

// Parent returns the parent of the scope or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Name of the scope.
func (s *Scope) Name() string {
	return s.name
}

// IsRoot returns true if the scope has no parent.
func (s *Scope) IsRoot() bool {
	return s.parent == nil
}

// IsBlank returns true for an unnamed root scope.
func (s *Scope) IsBlank() bool {
	return s.IsRoot() && s.name == ""
}

// NamesFromRoot joins the names of the scopes from the root (excluded) to s.
func (s *Scope) NamesFromRoot(sep string) string {
	if s.IsRoot() {
		return s.name
	}
	var names []string
	for sc := s; !sc.IsRoot(); sc = sc.parent {
		names = append(names, sc.name)
	}
	slices.Reverse(names)
	return stringseq.Join(slices.Values(names), sep)
}

func (s *Scope) String() string {
	return s.NamesFromRoot(ScopeSeparator)
}
