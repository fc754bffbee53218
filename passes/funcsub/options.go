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

import "log/slog"

type (
	// Option configures the substitution pass.
	Option func(*options)

	options struct {
		logger      *slog.Logger
		lint        bool
		scopedNames bool
	}
)

func newOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger receiving the diagnostics of the pass.
// Graph dumps are logged at the debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLint checks the invariants of the graph before and after the pass.
func WithLint() Option {
	return func(o *options) {
		o.lint = true
	}
}

// WithScopedNames names the nodes of the graph after their scope once the pass is done.
// See naming.AssignScopedNames.
func WithScopedNames() Option {
	return func(o *options) {
		o.scopedNames = true
	}
}
