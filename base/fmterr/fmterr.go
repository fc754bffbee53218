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

// Package fmterr marks and formats errors reported by graph passes.
package fmterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// internalError is an error caused by an IR violating the contract of a pass.
// It is never recovered from: the export pipeline aborts.
type internalError struct {
	err error
}

// Internal marks an error as internal.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return &internalError{err: err}
}

// Internalf returns a formatted internal error.
func Internalf(format string, a ...any) error {
	return Internal(errors.Errorf(format, a...))
}

// IsInternal returns true if err, or any error it wraps, is an internal error.
func IsInternal(err error) bool {
	var ie *internalError
	return errors.As(err, &ie)
}

func (e *internalError) Error() string {
	return "internal error: " + e.err.Error()
}

func (e *internalError) Unwrap() error {
	return e.err
}

// Format writes the error into the state of the formatter.
// The %+v verb includes the stack trace recorded by the wrapped error.
func (e *internalError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "internal error: %+v", e.err)
		return
	}
	fmt.Fprint(s, e.Error())
}
