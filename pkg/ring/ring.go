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

// Package ring is the safe facade over pkg/mapping: a thin, indexable
// byte buffer with wrap-around semantics and clean release on
// destruction. It holds no read or write cursor — that bookkeeping
// belongs to the caller.
package ring

import (
	"runtime"
	"unsafe"

	"github.com/maxnasonov/magicring/pkg/hostarch"
	"github.com/maxnasonov/magicring/pkg/mapping"
	"github.com/maxnasonov/magicring/pkg/registry"
)

// Buffer is a virtual ring buffer: a handle to an N-byte backing
// store mapped twice, back to back, so that byte i and byte i+N
// observe the same underlying storage for every i in [0, N).
//
// A Buffer is exclusively owned and must be released exactly once,
// with Close; it must not be used afterward. The mapping itself is
// safe to dereference from any thread once constructed, but
// concurrent mutation of the same byte from multiple goroutines is a
// data race and the caller's responsibility.
type Buffer struct {
	base    uintptr
	len     int
	release mapping.Release
}

// New allocates a Buffer of logical capacity n. n must be a positive
// multiple of hostarch.MinLen() and small enough to leave room for its
// own double mapping in the process address space.
func New(n int) (*Buffer, error) {
	if err := hostarch.Validate(n); err != nil {
		return nil, err
	}
	base, release, err := mapping.MapDouble(n)
	if err != nil {
		return nil, err
	}
	if err := registry.Default.Register(base, uintptr(2*n)); err != nil {
		release()
		panic(err)
	}

	b := &Buffer{base: base, len: n, release: release}
	runtime.SetFinalizer(b, (*Buffer).Close)
	return b, nil
}

// Len returns the logical capacity N.
func (b *Buffer) Len() int {
	return b.len
}

// Lock pins the full 2N-byte mapping in physical memory, so a
// producer/consumer built on top never takes a page fault mid-transfer.
func (b *Buffer) Lock() error {
	return mapping.Lock(b.base, 2*b.len)
}

// Unlock reverses a prior Lock.
func (b *Buffer) Unlock() error {
	return mapping.Unlock(b.base, 2*b.len)
}

// At returns a pointer to the byte at offset i in [0, 2N). Go has no
// separate immutable-reference type, so this single accessor serves
// both the read and write roles described for this position in the
// design. Indexing out of range is a programmer error and panics.
func (b *Buffer) At(i int) *byte {
	b.checkOpen()
	if i < 0 || i >= 2*b.len {
		panic("magicring: index out of range")
	}
	return (*byte)(unsafe.Pointer(b.base + uintptr(i)))
}

// Slice returns a byte slice over [a, c). The slice aliases the
// Buffer's storage and is only valid for the Buffer's lifetime; it
// must not be retained past Close. 0 <= a <= c <= 2N and c-a <= N
// must hold, or this panics: beyond one full wrap the double mapping
// provides no further aliasing, so a longer slice would silently
// repeat bytes without saying so.
func (b *Buffer) Slice(a, c int) []byte {
	b.checkOpen()
	if a < 0 || c < a || c > 2*b.len || c-a > b.len {
		panic("magicring: invalid slice bounds")
	}
	if c == a {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(b.base+uintptr(a))), c-a)
}

func (b *Buffer) checkOpen() {
	if b.release == nil {
		panic("magicring: use of Buffer after Close")
	}
}

// Close unmaps the buffer and returns all OS resources. Close is
// infallible from the caller's perspective: OS errors during teardown
// are recorded through the platform's logging channel, not returned,
// since destruction happens on paths that cannot fail. Close is
// idempotent.
func (b *Buffer) Close() error {
	if b.release == nil {
		return nil
	}
	registry.Default.Unregister(b.base)
	b.release()
	b.release = nil
	runtime.SetFinalizer(b, nil)
	return nil
}
