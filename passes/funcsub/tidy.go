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
	"slices"
	"strings"

	"github.com/gx-org/exportpass/base/iter"
	"github.com/gx-org/exportpass/base/stringseq"
	"github.com/gx-org/exportpass/ir"
)

const (
	// UnknownClass is the class name used when a type has no name.
	UnknownClass = "UNKNOWN_CLASS"

	internalRootAtom = "__torch__"
	mangleMarker     = "__torch_mangle"
)

func isUserAtom(atom string) bool {
	return atom != internalRootAtom && !strings.Contains(atom, mangleMarker)
}

// TidyClassName returns the dotted class name without the compiler-internal atoms:
// the internal root atom and mangled atoms are removed.
// For example, __torch__.models.__torch_mangle_3.Net becomes models.Net.
func TidyClassName(name *ir.QualifiedName) string {
	if name == nil {
		return UnknownClass
	}
	return stringseq.Join(iter.Filter(isUserAtom, slices.Values(name.Atoms())), ".")
}
