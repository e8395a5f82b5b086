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

package ring

import (
	"testing"

	"github.com/maxnasonov/magicring/pkg/hostarch"
	"github.com/maxnasonov/magicring/pkg/registry"
)

func TestAliasIdentity(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	defer b.Close()

	*b.At(0) = 0xAB
	if got := *b.At(n); got != 0xAB {
		t.Fatalf("byte at offset N = %#x, want 0xAB", got)
	}

	*b.At(n - 1) = 0xCD
	if got := *b.At(2*n - 1); got != 0xCD {
		t.Fatalf("byte at offset 2N-1 = %#x, want 0xCD", got)
	}
}

func TestSliceIdentityAcrossWrap(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	defer b.Close()

	*b.At(0) = 0x5A
	got := b.Slice(1, n+1)
	if len(got) != n {
		t.Fatalf("len(Slice(1, N+1)) = %d, want %d", len(got), n)
	}
	if got[len(got)-1] != 0x5A {
		t.Fatalf("last byte of wrapped slice = %#x, want 0x5A", got[len(got)-1])
	}
}

func TestSliceCyclicShift(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	defer b.Close()

	base := b.Slice(0, n)
	for i := range base {
		base[i] = byte(i)
	}

	shift := n / 2
	shifted := b.Slice(shift, shift+n)
	for i := 0; i < n; i++ {
		want := byte((i + shift) % n)
		if shifted[i] != want {
			t.Fatalf("shifted[%d] = %#x, want %#x", i, shifted[i], want)
		}
	}
}

func TestNewRejectsZero(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("New(0) succeeded, want InvalidLength")
	}
}

func TestNewRejectsNonMultiple(t *testing.T) {
	n := hostarch.MinLen()
	if _, err := New(n + 1); err == nil {
		t.Fatalf("New(%d) succeeded, want InvalidLength", n+1)
	}
}

func TestOverLengthSlicePanics(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	defer b.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("Slice(0, 2N) did not panic")
		}
	}()
	b.Slice(0, 2*n)
}

func TestOutOfRangeBytePanics(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	defer b.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("At(2N) did not panic")
		}
	}()
	b.At(2 * n)
}

func TestCloseIsIdempotent(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}

func TestUseAfterClosePanics(t *testing.T) {
	n := hostarch.MinLen()
	b, err := New(n)
	if err != nil {
		t.Fatalf("New(%d) = %v", n, err)
	}
	b.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("At after Close did not panic")
		}
	}()
	b.At(0)
}

func TestRepeatedConstructionDoesNotLeakRegistrations(t *testing.T) {
	n := hostarch.MinLen()
	before := registry.Default.Len()
	for i := 0; i < 256; i++ {
		b, err := New(n)
		if err != nil {
			t.Fatalf("iteration %d: New(%d) = %v", i, n, err)
		}
		if err := b.Close(); err != nil {
			t.Fatalf("iteration %d: Close() = %v", i, err)
		}
	}
	if got := registry.Default.Len(); got != before {
		t.Fatalf("registry.Default.Len() = %d after the loop, want %d", got, before)
	}
}
