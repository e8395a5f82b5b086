// Copyright 2026 The magicring Authors.
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

// Package mapping constructs the double mapping: a 2N-byte virtual
// range whose first and second N-byte halves are backed by the same
// physical pages. One file per OS family implements MapDouble against
// that platform's native API directly; there is no shared trait for
// "double-map" because the error-unwinding sequences differ
// structurally across platforms.
package mapping

// Release tears down a double mapping. It is infallible from the
// caller's perspective: any OS error encountered during teardown is
// recorded through the platform's diagnostic channel, never returned.
type Release func()
