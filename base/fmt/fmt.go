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

// Package fmt provides utility methods for building string representations of IR objects.
package fmt

import "strings"

// IndentSkip skips some lines and indent the rest with prefix.
func IndentSkip(skip int, prefix, x string) string {
	var y strings.Builder
	n := 0
	for line := range strings.Lines(x) {
		if n >= skip && line != "\n" {
			y.WriteString(prefix)
		}
		y.WriteString(line)
		n++
	}
	return y.String()
}

// Indent every non-empty line of the given string by two spaces.
func Indent(x string) string {
	return IndentSkip(0, "  ", x)
}
