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

package hostarch

import "golang.org/x/sys/windows"

// defaultAllocationGranularity is the historical, and still typical,
// Windows allocation granularity. It is used only if GetSystemInfo
// ever reports zero.
const defaultAllocationGranularity = 65536

// MinLen returns the minimum valid buffer length: the Windows
// allocation granularity (64 KiB on all currently shipping hardware),
// queried through GetSystemInfo rather than hardcoded, since
// VirtualAlloc2 operates in units of this granularity, not the much
// smaller page size.
func MinLen() int {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	if info.AllocationGranularity == 0 {
		return defaultAllocationGranularity
	}
	return int(info.AllocationGranularity)
}
