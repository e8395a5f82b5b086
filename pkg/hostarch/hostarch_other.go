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

//go:build !linux && !darwin && !windows

package hostarch

import "os"

// MinLen falls back to the standard library's page-size report on
// platforms without a dedicated allocation-granularity probe above;
// the OS conflates the two here.
func MinLen() int {
	return os.Getpagesize()
}
