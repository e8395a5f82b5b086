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

// Package registry is a non-owning bookkeeping layer over live double
// mappings. It exists to make two of the testable properties in the
// design — non-overlap and leak-freedom — observable from tests and
// from the diagnostics CLI; it never participates in the accessor hot
// path of pkg/ring.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/btree"
)

// Range describes a live mapping's address span for diagnostic
// purposes.
type Range struct {
	Base   uintptr
	Length uintptr
}

func (r Range) end() uintptr { return r.Base + r.Length }

func less(a, b Range) bool { return a.Base < b.Base }

// Registry indexes live ranges by base address so overlap queries run
// in O(log n) instead of a linear scan.
type Registry struct {
	mu   sync.Mutex
	tree *btree.BTreeG[Range]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{tree: btree.NewG(32, less)}
}

// Default is the package-level registry pkg/ring registers handles
// into.
var Default = New()

// Register records a newly constructed range, failing if it overlaps
// a range already registered. An overlap here means the OS handed out
// aliasing address space, which violates the mapper's contract; it is
// not expected to happen in practice.
func (r *Registry) Register(base, length uintptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := Range{Base: base, Length: length}
	var conflict *Range
	r.tree.DescendLessOrEqual(candidate, func(item Range) bool {
		if item.end() > base {
			c := item
			conflict = &c
		}
		return false
	})
	if conflict == nil {
		r.tree.AscendGreaterOrEqual(candidate, func(item Range) bool {
			if item.Base < candidate.end() {
				c := item
				conflict = &c
			}
			return false
		})
	}
	if conflict != nil {
		return fmt.Errorf("registry: range [%#x, %#x) overlaps existing range [%#x, %#x)",
			base, candidate.end(), conflict.Base, conflict.end())
	}
	r.tree.ReplaceOrInsert(candidate)
	return nil
}

// Unregister drops the range starting at base. It is a no-op if no
// such range is registered.
func (r *Registry) Unregister(base uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree.Delete(Range{Base: base})
}

// Len returns the number of currently live ranges.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Len()
}

// Dump returns a snapshot of all currently live ranges, ordered by
// base address.
func (r *Registry) Dump() []Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Range, 0, r.tree.Len())
	r.tree.Ascend(func(item Range) bool {
		out = append(out, item)
		return true
	})
	return out
}
