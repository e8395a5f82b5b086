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

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"

	"github.com/maxnasonov/magicring/pkg/hostarch"
)

// Flags undocumented in golang.org/x/sys/windows at the time of
// writing; VirtualAlloc2 and MapViewOfFile3 themselves are loaded
// dynamically below for the same reason.
const (
	memReservePlaceholder  = 0x00040000 // MEM_RESERVE_PLACEHOLDER
	memReplacePlaceholder  = 0x00004000 // MEM_REPLACE_PLACEHOLDER
	memPreservePlaceholder = 0x00000400 // MEM_PRESERVE_PLACEHOLDER
)

// VirtualAlloc2 and MapViewOfFile3 live in KernelBase.dll and are
// absent on Windows versions predating the placeholder mechanism;
// they are loaded lazily rather than linked so that the failure mode
// on an old Windows is a clean OsMapping error, not a load-time crash.
var (
	modKernelBase      = windows.NewLazySystemDLL("KernelBase.dll")
	procVirtualAlloc2  = modKernelBase.NewProc("VirtualAlloc2")
	procMapViewOfFile3 = modKernelBase.NewProc("MapViewOfFile3")

	procsOnce sync.Once
	procsErr  error
)

func ensureProcs() error {
	procsOnce.Do(func() {
		if err := procVirtualAlloc2.Find(); err != nil {
			procsErr = err
			return
		}
		if err := procMapViewOfFile3.Find(); err != nil {
			procsErr = err
		}
	})
	return procsErr
}

func virtualAlloc2(process windows.Handle, addr, size uintptr, allocType, protect uint32) (uintptr, error) {
	r1, _, e1 := procVirtualAlloc2.Call(
		uintptr(process), addr, size, uintptr(allocType), uintptr(protect), 0, 0, 0)
	if r1 == 0 {
		return 0, e1
	}
	return r1, nil
}

func mapViewOfFile3(section, process windows.Handle, baseAddr uintptr, offset uint64, size uintptr, allocType, protect uint32) (uintptr, error) {
	r1, _, e1 := procMapViewOfFile3.Call(
		uintptr(section), uintptr(process), baseAddr, uintptr(offset), size, uintptr(allocType), uintptr(protect), 0, 0)
	if r1 == 0 {
		return 0, e1
	}
	return r1, nil
}

// MapDouble implements the Windows strategy from the design: split a
// 2N placeholder reservation into two adjacent N-sized placeholders,
// then replace each with a view of the same pagefile-backed section.
func MapDouble(n int) (uintptr, Release, error) {
	if err := hostarch.Validate(n); err != nil {
		return 0, nil, err
	}
	if err := ensureProcs(); err != nil {
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("load VirtualAlloc2/MapViewOfFile3: %v", err)}
	}

	proc := windows.CurrentProcess()
	total := uintptr(2 * n)

	placeholder, err := virtualAlloc2(proc, 0, total,
		windows.MEM_RESERVE|memReservePlaceholder, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, nil, &hostarch.Error{Kind: hostarch.OsAllocation, Msg: fmt.Sprintf("VirtualAlloc2 placeholder: %v", err)}
	}

	if err := windows.VirtualFree(placeholder, uintptr(n), windows.MEM_RELEASE|memPreservePlaceholder); err != nil {
		windows.VirtualFree(placeholder, 0, windows.MEM_RELEASE)
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("split placeholder: %v", err)}
	}
	lower := placeholder
	upper := placeholder + uintptr(n)
	freeHalves := func() {
		windows.VirtualFree(lower, 0, windows.MEM_RELEASE)
		windows.VirtualFree(upper, 0, windows.MEM_RELEASE)
	}

	section, err := windows.CreateFileMapping(windows.InvalidHandle, nil,
		windows.PAGE_READWRITE, uint32(uint64(n)>>32), uint32(n), nil)
	if err != nil {
		freeHalves()
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("CreateFileMapping: %v", err)}
	}
	defer windows.CloseHandle(section)

	lowerView, err := mapViewOfFile3(section, proc, lower, 0, uintptr(n),
		memReplacePlaceholder, windows.PAGE_READWRITE)
	if err != nil {
		freeHalves()
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("MapViewOfFile3 lower: %v", err)}
	}

	upperView, err := mapViewOfFile3(section, proc, upper, 0, uintptr(n),
		memReplacePlaceholder, windows.PAGE_READWRITE)
	if err != nil {
		windows.UnmapViewOfFile(lowerView)
		windows.VirtualFree(upper, 0, windows.MEM_RELEASE)
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("MapViewOfFile3 upper: %v", err)}
	}

	release := func() {
		fields := logrus.Fields{"base": fmt.Sprintf("%#x", lowerView), "len": n, "platform": "windows"}
		failed := false
		if err := windows.UnmapViewOfFile(lowerView); err != nil {
			logrus.WithFields(fields).Warn("magicring: UnmapViewOfFile (lower) failed during release")
			failed = true
		}
		if err := windows.UnmapViewOfFile(upperView); err != nil {
			logrus.WithFields(fields).Warn("magicring: UnmapViewOfFile (upper) failed during release")
			failed = true
		}
		if failed {
			return
		}
		logrus.WithFields(fields).Debug("magicring: released double mapping")
	}
	return lowerView, release, nil
}
