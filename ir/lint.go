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
	"maps"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type linter struct {
	g    *Graph
	errs error
}

// Lint checks the structural invariants of a graph:
//   - every node belongs to the block it is listed in and has not been destroyed,
//   - inputs are defined before being used, in the same block or an enclosing one,
//   - use lists match exactly the inputs referencing each value.
//
// All the violations found are returned.
func Lint(g *Graph) error {
	l := &linter{g: g}
	l.block(g.block, make(map[*Value]bool))
	return l.errs
}

func (l *linter) errorf(format string, a ...any) {
	l.errs = multierr.Append(l.errs, errors.Errorf(format, a...))
}

func (l *linter) block(b *Block, visible map[*Value]bool) {
	if b.param.next == nil || b.ret.prev == nil {
		l.errorf("block owned by %s is not terminated", owner(b))
		return
	}
	l.node(b, b.param, visible)
	for n := b.param.next; n != b.ret; n = n.next {
		if n == nil {
			l.errorf("node list of block owned by %s is broken", owner(b))
			return
		}
		if n.next == nil || n.next.prev != n {
			l.errorf("node %s is not linked to its successor", n.kind)
		}
		l.node(b, n, visible)
	}
	l.node(b, b.ret, visible)
}

func (l *linter) node(b *Block, n *Node, visible map[*Value]bool) {
	if n.destroyed {
		l.errorf("destroyed node %s is still in a block", n.kind)
	}
	if n.owningBlock != b {
		l.errorf("node %s is listed in a block that does not own it", n.kind)
	}
	if n.graph != l.g {
		l.errorf("node %s belongs to another graph", n.kind)
	}
	for i, in := range n.inputs {
		l.input(n, i, in, visible)
	}
	for _, nested := range n.blocks {
		if nested.owningNode != n {
			l.errorf("block of node %s is owned by another node", n.kind)
		}
		l.block(nested, maps.Clone(visible))
	}
	for i, out := range n.outputs {
		l.output(n, i, out)
		visible[out] = true
	}
}

func (l *linter) input(n *Node, i int, in *Value, visible map[*Value]bool) {
	if in.node.destroyed {
		l.errorf("input %d of %s is produced by destroyed node %s", i, n.kind, in.node.kind)
	}
	if !visible[in] {
		l.errorf("input %d of %s: value %s is used before being defined", i, n.kind, in)
	}
	for _, use := range in.uses {
		if use.User == n && use.Offset == i {
			return
		}
	}
	l.errorf("input %d of %s: value %s does not record the use", i, n.kind, in)
}

func (l *linter) output(n *Node, i int, out *Value) {
	if out.node != n || out.offset != i {
		l.errorf("output %d of %s does not point back to its producer", i, n.kind)
	}
	for _, use := range out.uses {
		if use.User.destroyed {
			l.errorf("value %s is used by destroyed node %s", out, use.User.kind)
			continue
		}
		if use.User.owningBlock == nil {
			l.errorf("value %s is used by %s which is not in a block", out, use.User.kind)
			continue
		}
		if use.Offset >= len(use.User.inputs) || use.User.inputs[use.Offset] != out {
			l.errorf("value %s records a stale use by %s at input %d", out, use.User.kind, use.Offset)
		}
	}
}

func owner(b *Block) string {
	if b.owningNode == nil {
		return "the graph"
	}
	return b.owningNode.kind.String()
}
