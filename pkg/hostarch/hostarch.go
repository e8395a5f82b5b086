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

import (
	"fmt"
	"math/bits"
)

// Validate reports whether n is an acceptable buffer length: positive,
// a multiple of MinLen, and no larger than half of the address space
// a 2N double mapping could occupy on this process.
//
// Power-of-two N is common in practice but is not required; only the
// multiple-of-granularity constraint is enforced.
func Validate(n int) error {
	if n <= 0 {
		return &Error{Kind: InvalidLength, Msg: "length must be positive"}
	}
	m := MinLen()
	if n%m != 0 {
		return &Error{Kind: InvalidLength, Msg: fmt.Sprintf(
			"length %d is not a multiple of the allocation granularity %d", n, m)}
	}
	if uintptr(n) > addressSpaceHalf() {
		return &Error{Kind: InvalidLength, Msg: fmt.Sprintf(
			"length %d exceeds half of the representable address space", n)}
	}
	return nil
}

// addressSpaceHalf bounds N so that a 2N mapping stays comfortably
// inside the canonical user address space on every supported
// platform; it is intentionally conservative rather than exact.
func addressSpaceHalf() uintptr {
	if bits.UintSize == 32 {
		return uintptr(1) << 31
	}
	return uintptr(1) << 46
}
