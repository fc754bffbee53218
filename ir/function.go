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

type (
	// Function is a callable. Only graph functions have a body that can be inlined.
	Function interface {
		// Name returns the unqualified name of the function.
		Name() string
		// QualName returns the fully qualified name of the function.
		QualName() *QualifiedName
	}

	// GraphFunction is a function implemented by a graph.
	GraphFunction struct {
		qualname *QualifiedName
		graph    *Graph
	}

	// BuiltinFunction is an opaque function without a graph body.
	BuiltinFunction struct {
		qualname *QualifiedName
	}
)

var (
	_ Function = (*GraphFunction)(nil)
	_ Function = (*BuiltinFunction)(nil)
)

// NewGraphFunction returns a function given its qualified name and its body.
func NewGraphFunction(qualname string, g *Graph) *GraphFunction {
	return &GraphFunction{qualname: NewQualifiedName(qualname), graph: g}
}

// Name of the function.
func (f *GraphFunction) Name() string {
	return f.qualname.Name()
}

// QualName returns the qualified name of the function.
func (f *GraphFunction) QualName() *QualifiedName {
	return f.qualname
}

// Graph returns the body of the function.
func (f *GraphFunction) Graph() *Graph {
	return f.graph
}

// NewBuiltinFunction returns an opaque function.
func NewBuiltinFunction(qualname string) *BuiltinFunction {
	return &BuiltinFunction{qualname: NewQualifiedName(qualname)}
}

// Name of the function.
func (f *BuiltinFunction) Name() string {
	return f.qualname.Name()
}

// QualName returns the qualified name of the function.
func (f *BuiltinFunction) QualName() *QualifiedName {
	return f.qualname
}

// AsGraphFunction returns the function as a graph function if it has a body.
func AsGraphFunction(fn Function) (*GraphFunction, bool) {
	gf, ok := fn.(*GraphFunction)
	if !ok || gf.graph == nil {
		return nil, false
	}
	return gf, true
}
