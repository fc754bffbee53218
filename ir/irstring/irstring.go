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

// Package irstring builds human-readable representations of graphs.
//
// A graph is printed as:
//
//	graph(%self : __torch__.Net, %x : Tensor):
//	  %2 : Tensor = aten::relu(%x), scope: Net::
//	  return (%2)
package irstring

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	irfmt "github.com/gx-org/exportpass/base/fmt"
	"github.com/gx-org/exportpass/base/iter"
	"github.com/gx-org/exportpass/base/stringseq"
	"github.com/gx-org/exportpass/ir"
)

func valueDecl(v *ir.Value) string {
	if v.Type() == nil {
		return v.String() + " : <notype>"
	}
	return v.String() + " : " + v.Type().String()
}

func valueDecls(vals []*ir.Value) string {
	return stringseq.Join(iter.Map(valueDecl, slices.Values(vals)), ", ")
}

func valueRefs(vals []*ir.Value) string {
	return stringseq.JoinStringer(slices.Values(vals), ", ")
}

func attrValue(val any) string {
	switch valT := val.(type) {
	case string:
		return strconv.Quote(valT)
	case int64:
		return strconv.FormatInt(valT, 10)
	case float64:
		return strconv.FormatFloat(valT, 'g', -1, 64)
	case ir.Type:
		return valT.String()
	default:
		return fmt.Sprint(valT)
	}
}

func attributes(n *ir.Node) string {
	names := n.AttributeNames()
	attrs := make([]string, len(names))
	for i, name := range names {
		val, _ := n.Attribute(name)
		attrs[i] = name.Unqual() + "=" + attrValue(val)
	}
	return strings.Join(attrs, ", ")
}

func writeNode(b *strings.Builder, n *ir.Node) {
	if outs := n.Outputs(); len(outs) > 0 {
		b.WriteString(valueDecls(outs))
		b.WriteString(" = ")
	}
	b.WriteString(n.Kind().String())
	if attrs := attributes(n); attrs != "" {
		b.WriteString("[" + attrs + "]")
	}
	b.WriteString("(" + valueRefs(n.Inputs()) + ")")
	if scope := n.ScopeName(); scope != "" {
		b.WriteString(", scope: " + scope)
	}
	b.WriteString("\n")
	for i, blk := range n.Blocks() {
		b.WriteString(irfmt.Indent(block(i, blk)))
	}
}

func body(blk *ir.Block) string {
	var b strings.Builder
	for n := range blk.Nodes() {
		writeNode(&b, n)
	}
	return b.String()
}

func block(i int, blk *ir.Block) string {
	return fmt.Sprintf("block%d(%s):\n%s  -> (%s)\n",
		i,
		valueDecls(blk.Inputs()),
		irfmt.Indent(body(blk)),
		valueRefs(blk.Outputs()),
	)
}

// Node returns the representation of a node, including its nested blocks.
func Node(n *ir.Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// Graph returns the representation of a graph.
func Graph(g *ir.Graph) string {
	return fmt.Sprintf("graph(%s):\n%s  return (%s)\n",
		valueDecls(g.Inputs()),
		irfmt.Indent(body(g.Block())),
		valueRefs(g.Outputs()),
	)
}
