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

//go:build linux

package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cilium/ebpf/rlimit"
	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/maxnasonov/magicring/pkg/hostarch"
)

var raiseMemlockOnce sync.Once

// raiseMemlock lifts RLIMIT_MEMLOCK once per process, the same
// courtesy cilium/ebpf performs before pinning kernel maps. A locked
// double mapping (see Lock in lock_unix.go) must not be silently
// capped by the default memlock limit. Failure here is logged, not
// propagated: raising the limit is hygiene, not a precondition for
// MapDouble to succeed.
func raiseMemlock() {
	raiseMemlockOnce.Do(func() {
		if err := rlimit.RemoveMemlock(); err != nil {
			logrus.WithError(err).Debug("magicring: could not raise RLIMIT_MEMLOCK")
		}
	})
}

// createSharedMemory returns a file descriptor for an empty shared
// memory object that can be mapped MAP_SHARED more than once; MapDouble
// sizes it to N with ftruncate. memfd_create is tried
// first; on kernels predating it (ENOSYS), a POSIX-style shm_open
// fallback creates a uniquely named tmpfs file under /dev/shm,
// unlinking the name immediately so only the descriptor survives.
// gofrs/flock guards the fallback's name-generation window against a
// second caller racing the same namespace.
func createSharedMemory(n int) (int, error) {
	fd, err := unix.MemfdCreate("magicring", unix.MFD_CLOEXEC)
	if err == nil {
		return fd, nil
	}
	if err != unix.ENOSYS {
		return -1, err
	}

	lock := flock.New(filepath.Join(os.TempDir(), "magicring.shm.lock"))
	if err := lock.Lock(); err != nil {
		return -1, fmt.Errorf("lock shm namespace: %w", err)
	}
	defer lock.Unlock()

	path := filepath.Join("/dev/shm", fmt.Sprintf("magicring-%d-%d", os.Getpid(), time.Now().UnixNano()))
	fd, err = unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0600)
	if err != nil {
		return -1, fmt.Errorf("shm_open fallback: %w", err)
	}
	if err := unix.Unlink(path); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("unlink shm_open fallback: %w", err)
	}
	return fd, nil
}

// MapDouble implements the Linux strategy from the design: reserve a
// 2N virtual range, then replace both halves with MAP_FIXED|MAP_SHARED
// mappings of a single N-byte shared object.
func MapDouble(n int) (uintptr, Release, error) {
	if err := hostarch.Validate(n); err != nil {
		return 0, nil, err
	}
	raiseMemlock()

	fd, err := createSharedMemory(n)
	if err != nil {
		return 0, nil, &hostarch.Error{Kind: hostarch.OsAllocation, Msg: fmt.Sprintf("create shared memory: %v", err)}
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(n)); err != nil {
		return 0, nil, &hostarch.Error{Kind: hostarch.OsAllocation, Msg: fmt.Sprintf("ftruncate: %v", err)}
	}

	total := uintptr(2 * n)
	base, _, errno := unix.Syscall6(unix.SYS_MMAP, 0, total,
		unix.PROT_NONE, unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_NORESERVE, ^uintptr(0), 0)
	if errno != 0 {
		return 0, nil, &hostarch.Error{Kind: hostarch.OsAllocation, Msg: fmt.Sprintf("reserve virtual range: %v", errno)}
	}
	unmapReservation := func() {
		unix.Syscall6(unix.SYS_MUNMAP, base, total, 0, 0, 0, 0)
	}

	if _, _, errno := unix.Syscall6(unix.SYS_MMAP, base, uintptr(n),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, uintptr(fd), 0); errno != 0 {
		unmapReservation()
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("map lower half: %v", errno)}
	}
	if _, _, errno := unix.Syscall6(unix.SYS_MMAP, base+uintptr(n), uintptr(n),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, uintptr(fd), 0); errno != 0 {
		unmapReservation()
		return 0, nil, &hostarch.Error{Kind: hostarch.OsMapping, Msg: fmt.Sprintf("map upper half: %v", errno)}
	}

	release := func() {
		fields := logrus.Fields{"base": fmt.Sprintf("%#x", base), "len": n, "platform": "linux"}
		if _, _, errno := unix.Syscall6(unix.SYS_MUNMAP, base, total, 0, 0, 0, 0); errno != 0 {
			logrus.WithFields(fields).Warn("magicring: munmap failed during release")
			return
		}
		logrus.WithFields(fields).Debug("magicring: released double mapping")
	}
	return base, release, nil
}
