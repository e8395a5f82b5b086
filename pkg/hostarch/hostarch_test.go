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

package hostarch

import "testing"

func TestValidateRejectsZero(t *testing.T) {
	err := Validate(0)
	if err == nil {
		t.Fatal("expected an error for N = 0")
	}
	var e *Error
	if !asError(err, &e) || e.Kind != InvalidLength {
		t.Fatalf("expected InvalidLength, got %v", err)
	}
}

func TestValidateRejectsNonMultiple(t *testing.T) {
	err := Validate(1)
	if err == nil {
		t.Fatal("expected an error for N = 1 on a system with a larger granularity")
	}
}

func TestValidateAcceptsMultiple(t *testing.T) {
	n := MinLen()
	if err := Validate(n); err != nil {
		t.Fatalf("Validate(%d) = %v, want nil", n, err)
	}
	if err := Validate(4 * n); err != nil {
		t.Fatalf("Validate(%d) = %v, want nil", 4*n, err)
	}
}

func TestValidateRejectsOversizedLength(t *testing.T) {
	n := MinLen()
	huge := (int(addressSpaceHalf()) / n) * n
	if huge <= 0 {
		t.Skip("address space bound too small to overflow on this platform")
	}
	// One more granularity step past the bound must be rejected.
	err := Validate(huge + n)
	if err == nil {
		t.Fatalf("Validate(%d) = nil, want InvalidLength", huge+n)
	}
}

func TestMinLenIsPositive(t *testing.T) {
	if MinLen() <= 0 {
		t.Fatalf("MinLen() = %d, want > 0", MinLen())
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}
