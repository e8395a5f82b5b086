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

package hostarch

import "golang.org/x/sys/unix"

// MinLen returns the minimum valid buffer length: the OS allocation
// granularity, which on Linux and Darwin equals the page size (4 KiB
// on most Linux and Intel-Darwin systems, 16 KiB on Apple Silicon).
func MinLen() int {
	return unix.Getpagesize()
}
