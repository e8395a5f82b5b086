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

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/maxnasonov/magicring/pkg/registry"
	"github.com/maxnasonov/magicring/pkg/ring"
)

type inspectCmd struct {
	n int
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "allocate one buffer and print the live registry" }
func (*inspectCmd) Usage() string {
	return "inspect [-n bytes]:\n  allocate a buffer, print its registered range, release it, print again.\n"
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 65536, "buffer length in bytes")
}

func (c *inspectCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("before:")
	dumpRegistry()

	b, err := ring.New(c.n)
	if err != nil {
		fmt.Println("New:", err)
		return subcommands.ExitFailure
	}
	fmt.Println("after New:")
	dumpRegistry()

	b.Close()
	fmt.Println("after Close:")
	dumpRegistry()
	return subcommands.ExitSuccess
}

func dumpRegistry() {
	for _, r := range registry.Default.Dump() {
		fmt.Printf("  [%#x, %#x) len=%d\n", r.Base, r.Base+r.Length, r.Length)
	}
}
