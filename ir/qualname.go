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
	"strings"
)

// QualifiedName is a dotted name, for example __torch__.models.Net.
type QualifiedName struct {
	atoms []string
}

// NewQualifiedName splits a dotted name into a qualified name.
func NewQualifiedName(name string) *QualifiedName {
	if name == "" {
		return &QualifiedName{}
	}
	return &QualifiedName{atoms: strings.Split(name, ".")}
}

// QualifiedNameFromAtoms returns a qualified name given its atoms.
func QualifiedNameFromAtoms(atoms ...string) *QualifiedName {
	return &QualifiedName{atoms: slices.Clone(atoms)}
}

// Atoms returns the components of the name.
func (q *QualifiedName) Atoms() []string {
	return slices.Clone(q.atoms)
}

// QualifiedName returns the full dotted name.
func (q *QualifiedName) QualifiedName() string {
	return strings.Join(q.atoms, ".")
}

// Name returns the last atom of the name.
func (q *QualifiedName) Name() string {
	if len(q.atoms) == 0 {
		return ""
	}
	return q.atoms[len(q.atoms)-1]
}

// Prefix returns the dotted name without its last atom.
func (q *QualifiedName) Prefix() string {
	if len(q.atoms) == 0 {
		return ""
	}
	return strings.Join(q.atoms[:len(q.atoms)-1], ".")
}

func (q *QualifiedName) String() string {
	return q.QualifiedName()
}
