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

//go:build windows

package mapping

import "golang.org/x/sys/windows"

// Lock pins the n bytes starting at base in physical memory.
func Lock(base uintptr, n int) error {
	return windows.VirtualLock(base, uintptr(n))
}

// Unlock reverses a prior Lock.
func Unlock(base uintptr, n int) error {
	return windows.VirtualUnlock(base, uintptr(n))
}
