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

//go:build darwin

package mapping

/*
#include <mach/mach.h>
#include <mach/mach_vm.h>

static kern_return_t magicring_vm_allocate(vm_size_t size, mach_vm_address_t *addr) {
	return mach_vm_allocate(mach_task_self(), addr, size, VM_FLAGS_ANYWHERE);
}

// magicring_vm_remap installs the object backing [src, src+size) a
// second time at dst, the preferred form from the design notes: one
// vm_allocate reserves the full 2N anchor, then vm_remap overlays the
// lower half's object onto the upper half, avoiding the address-space
// race a second independent reservation could hit.
static kern_return_t magicring_vm_remap(mach_vm_address_t src, vm_size_t size, mach_vm_address_t dst) {
	mach_vm_address_t target = dst;
	vm_prot_t cur, max;
	return mach_vm_remap(mach_task_self(), &target, size, 0,
		VM_FLAGS_FIXED | VM_FLAGS_OVERWRITE,
		mach_task_self(), src, 0, &cur, &max, VM_INHERIT_NONE);
}

static kern_return_t magicring_vm_deallocate(mach_vm_address_t addr, vm_size_t size) {
	return mach_vm_deallocate(mach_task_self(), addr, size);
}
*/
import "C"

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maxnasonov/magicring/pkg/hostarch"
)

// MapDouble implements the Darwin strategy from the design: a single
// vm_allocate reserves the 2N anchor, and vm_remap with copy=false
// installs the lower half's object over the upper half.
func MapDouble(n int) (uintptr, Release, error) {
	if err := hostarch.Validate(n); err != nil {
		return 0, nil, err
	}

	var base C.mach_vm_address_t
	if kr := C.magicring_vm_allocate(C.vm_size_t(2*n), &base); kr != C.KERN_SUCCESS {
		return 0, nil, &hostarch.Error{Kind: hostarch.OsAllocation, Msg: fmt.Sprintf("mach_vm_allocate: kern_return_t %d", kr)}
	}
	deallocateAll := func() {
		C.magicring_vm_deallocate(base, C.vm_size_t(2*n))
	}

	upper := base + C.mach_vm_address_t(n)
	if kr := C.magicring_vm_remap(base, C.vm_size_t(n), upper); kr != C.KERN_SUCCESS {
		deallocateAll()
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("mach_vm_remap: kern_return_t %d", kr)}
	}

	release := func() {
		fields := logrus.Fields{"base": fmt.Sprintf("%#x", uintptr(base)), "len": n, "platform": "darwin"}
		if kr := C.magicring_vm_deallocate(base, C.vm_size_t(2*n)); kr != C.KERN_SUCCESS {
			logrus.WithFields(fields).Warn("magicring: vm_deallocate failed during release")
			return
		}
		logrus.WithFields(fields).Debug("magicring: released double mapping")
	}
	return uintptr(base), release, nil
}
