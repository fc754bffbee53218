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
	"iter"
	"slices"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/exportpass/base/ordered"
	"github.com/gx-org/exportpass/base/stringseq"
)

// TypeKind is the kind of a type.
type TypeKind int

// Kinds of types.
const (
	InvalidKind TypeKind = iota
	TensorKind
	IntKind
	FloatKind
	BoolKind
	StringKind
	NoneKind
	ListKind
	TupleKind
	ClassKind
	FunctionKind
)

// String returns a string representation of a kind.
func (k TypeKind) String() string {
	switch k {
	case TensorKind:
		return "tensor"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	case NoneKind:
		return "none"
	case ListKind:
		return "list"
	case TupleKind:
		return "tuple"
	case ClassKind:
		return "class"
	case FunctionKind:
		return "function"
	}
	return "invalid"
}

type (
	// Type of a value in the graph.
	Type interface {
		Kind() TypeKind
		String() string
	}

	// NamedType is a type identified by a qualified name.
	NamedType interface {
		Type
		// Name returns the qualified name of the type.
		// A nil name means that the name is unknown.
		Name() *QualifiedName
	}
)

// TensorType is the type of arrays.
type TensorType struct {
	// Shape of the tensor. A nil shape means that the shape is unknown.
	Shape *shape.Shape
}

var _ Type = (*TensorType)(nil)

// Kind of the type.
func (*TensorType) Kind() TypeKind {
	return TensorKind
}

// DType returns the element type of the tensor, or dtype.Invalid if unknown.
func (t *TensorType) DType() dtype.DataType {
	if t.Shape == nil {
		return dtype.Invalid
	}
	return t.Shape.DType
}

func (t *TensorType) String() string {
	if t.Shape == nil {
		return "Tensor"
	}
	return "Tensor(" + t.Shape.String() + ")"
}

type basicType struct {
	kind TypeKind
	name string
}

func (t *basicType) Kind() TypeKind {
	return t.kind
}

func (t *basicType) String() string {
	return t.name
}

// Scalar types.
var (
	IntType    Type = &basicType{kind: IntKind, name: "int"}
	FloatType  Type = &basicType{kind: FloatKind, name: "float"}
	BoolType   Type = &basicType{kind: BoolKind, name: "bool"}
	StringType Type = &basicType{kind: StringKind, name: "str"}
	NoneType   Type = &basicType{kind: NoneKind, name: "NoneType"}
)

// ListType is a homogeneous list.
type ListType struct {
	Elem Type
}

// Kind of the type.
func (*ListType) Kind() TypeKind {
	return ListKind
}

func (t *ListType) String() string {
	return "List[" + t.Elem.String() + "]"
}

// TupleType is a fixed-size heterogeneous sequence.
type TupleType struct {
	Elems []Type
}

// Kind of the type.
func (*TupleType) Kind() TypeKind {
	return TupleKind
}

func (t *TupleType) String() string {
	return "Tuple[" + stringseq.JoinStringer(slices.Values(t.Elems), ", ") + "]"
}

// ClassType is the type of user-defined objects.
// A class owns methods, some of which may not have a graph body.
type ClassType struct {
	name       *QualifiedName
	methods    *ordered.Map[string, Function]
	attributes *ordered.Map[string, Type]
}

var _ NamedType = (*ClassType)(nil)

// NewClassType returns a new class with no methods and no attributes.
func NewClassType(name *QualifiedName) *ClassType {
	return &ClassType{
		name:       name,
		methods:    ordered.NewMap[string, Function](),
		attributes: ordered.NewMap[string, Type](),
	}
}

// Kind of the type.
func (*ClassType) Kind() TypeKind {
	return ClassKind
}

// Name of the class.
func (t *ClassType) Name() *QualifiedName {
	return t.name
}

// AddMethod adds a method to the class. The method is named after the function.
func (t *ClassType) AddMethod(fn Function) {
	t.methods.Store(fn.Name(), fn)
}

// Method returns the method given its name.
func (t *ClassType) Method(name string) (Function, bool) {
	return t.methods.Load(name)
}

// Methods iterates over the methods in declaration order.
func (t *ClassType) Methods() iter.Seq[Function] {
	return t.methods.Values()
}

// AddAttribute declares an attribute of the class.
func (t *ClassType) AddAttribute(name string, typ Type) {
	t.attributes.Store(name, typ)
}

// Attribute returns the type of an attribute given its name.
func (t *ClassType) Attribute(name string) (Type, bool) {
	return t.attributes.Load(name)
}

func (t *ClassType) String() string {
	if t.name == nil {
		return "<unnamed class>"
	}
	return t.name.QualifiedName()
}

// FunctionType is the type of a function value.
type FunctionType struct {
	fn Function
}

var _ NamedType = (*FunctionType)(nil)

// NewFunctionType returns the type of a given function.
func NewFunctionType(fn Function) *FunctionType {
	return &FunctionType{fn: fn}
}

// Kind of the type.
func (*FunctionType) Kind() TypeKind {
	return FunctionKind
}

// Function returns the function of the type.
func (t *FunctionType) Function() Function {
	return t.fn
}

// Name of the function.
func (t *FunctionType) Name() *QualifiedName {
	return t.fn.QualName()
}

func (t *FunctionType) String() string {
	return "Function(" + t.fn.QualName().QualifiedName() + ")"
}
