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
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

// config holds the harness's own tunables. It has nothing to do with
// the library's construction contract (which takes only N) — this is
// ambient configuration for the CLI's subcommands.
type config struct {
	DefaultLen int    `toml:"default_len"`
	Iterations int    `toml:"iterations"`
	LogLevel   string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		DefaultLen: 65536,
		Iterations: 1000,
		LogLevel:   "info",
	}
}

// loadConfig reads an optional TOML file. A missing file is not an
// error; the harness just runs with defaultConfig(). The read holds a
// shared flock on path+".lock"; that keeps out only a writer which
// takes the same lock exclusively, and magicring itself never writes
// the config file.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return cfg, err
	}
	defer lock.Unlock()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
