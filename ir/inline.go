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

import "github.com/pkg/errors"

// InlineCallTo replaces a call node by the body of the callee.
//
// The inputs of the call are substituted for the inputs of the callee and
// the consumers of the outputs of the call are redirected to the values
// returned by the callee. The call node is destroyed.
// It returns the values replacing the outputs of the call.
func InlineCallTo(call *Node, callee *Graph) ([]*Value, error) {
	g := call.graph
	restore := g.WithInsertPoint(call)
	defer restore()
	outputs, err := g.InsertGraph(callee, call.inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot inline %s", call.kind)
	}
	if len(outputs) != len(call.outputs) {
		return nil, errors.Errorf("cannot inline %s: call has %d output(s) but the callee returns %d value(s)", call.kind, len(call.outputs), len(outputs))
	}
	for i, out := range call.outputs {
		out.ReplaceAllUsesWith(outputs[i])
	}
	call.RemoveAllInputs()
	if err := call.Destroy(); err != nil {
		return nil, err
	}
	return outputs, nil
}
