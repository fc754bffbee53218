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

// Package iter provides common iterators.
package iter

import "iter"

// Filter iterates over the elements of seq for which f returns true.
func Filter[T any](f func(T) bool, seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for el := range seq {
			if !f(el) {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

// Map iterates over the result of f applied to the elements of seq.
func Map[T, U any](f func(T) U, seq iter.Seq[T]) iter.Seq[U] {
	return func(yield func(U) bool) {
		for el := range seq {
			if !yield(f(el)) {
				return
			}
		}
	}
}
