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

// Package uname provides unique names.
package uname

import (
	"strconv"
	"strings"
)

// DefaultSeparator is placed between a base name and its unique suffix.
const DefaultSeparator = "."

// Unique generates unique names.
type Unique struct {
	sep   string
	taken map[string]bool
	next  map[string]int
}

// New name generator using the default separator.
func New() *Unique {
	return NewWithSeparator(DefaultSeparator)
}

// NewWithSeparator returns a name generator appending suffixes after sep.
func NewWithSeparator(sep string) *Unique {
	return &Unique{
		sep:   sep,
		taken: make(map[string]bool),
		next:  make(map[string]int),
	}
}

// Base returns a name without its unique suffix, if any.
// For example, the base of x.3 is x.
func (n *Unique) Base(name string) string {
	pos := strings.LastIndex(name, n.sep)
	if pos <= 0 {
		return name
	}
	if _, err := strconv.Atoi(name[pos+len(n.sep):]); err != nil {
		return name
	}
	return name[:pos]
}

// Name returns a unique name given a desired name.
// Suffixes already present in the desired name are replaced.
func (n *Unique) Name(name string) string {
	root := n.Base(name)
	if !n.taken[root] {
		n.taken[root] = true
		return root
	}
	for {
		n.next[root]++
		candidate := root + n.sep + strconv.Itoa(n.next[root])
		if !n.taken[candidate] {
			n.taken[candidate] = true
			return candidate
		}
	}
}

// Register marks a name as used.
func (n *Unique) Register(name string) {
	n.taken[name] = true
}

// Release makes a name available again.
func (n *Unique) Release(name string) {
	delete(n.taken, name)
}
