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

package registry

import "testing"

func TestRegisterRejectsOverlap(t *testing.T) {
	r := New()
	if err := r.Register(0x1000, 0x2000); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(0x1500, 0x1000); err == nil {
		t.Fatal("expected overlap to be rejected")
	}
	if err := r.Register(0x3000, 0x1000); err != nil {
		t.Fatalf("adjacent, non-overlapping Register failed: %v", err)
	}
	if got, want := r.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
}

func TestUnregisterFreesRange(t *testing.T) {
	r := New()
	if err := r.Register(0x1000, 0x2000); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	r.Unregister(0x1000)
	if got, want := r.Len(), 0; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if err := r.Register(0x1000, 0x2000); err != nil {
		t.Fatalf("Register after Unregister failed: %v", err)
	}
}

func TestDumpOrdersByBase(t *testing.T) {
	r := New()
	for _, base := range []uintptr{0x5000, 0x1000, 0x3000} {
		if err := r.Register(base, 0x800); err != nil {
			t.Fatalf("Register(%#x) failed: %v", base, err)
		}
	}
	dump := r.Dump()
	if len(dump) != 3 {
		t.Fatalf("Dump() returned %d entries, want 3", len(dump))
	}
	for i := 1; i < len(dump); i++ {
		if dump[i-1].Base >= dump[i].Base {
			t.Fatalf("Dump() not sorted by base: %v", dump)
		}
	}
}
