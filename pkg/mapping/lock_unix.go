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

//go:build linux || darwin

package mapping

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Lock pins the n bytes starting at base in physical memory so the
// caller never takes a page fault touching them.
func Lock(base uintptr, n int) error {
	return unix.Mlock(unsafe.Slice((*byte)(unsafe.Pointer(base)), n))
}

// Unlock reverses a prior Lock.
func Unlock(base uintptr, n int) error {
	return unix.Munlock(unsafe.Slice((*byte)(unsafe.Pointer(base)), n))
}
