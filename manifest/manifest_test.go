// Copyright 2025 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	r := require.New(t)

	src := `
benchmark "dining" {
  contenders   = 20
  acquisitions = 10000
  iterations   = 3
}

benchmark "small" {
  contenders = 3
}
`
	path := filepath.Join(t.TempDir(), "bench.hcl")
	r.NoError(os.WriteFile(path, []byte(src), 0o644))

	f, err := Load(path)
	r.NoError(err)
	r.Len(f.Benchmarks, 2)

	dining := f.Benchmarks[0]
	r.Equal("dining", dining.Name)
	r.Equal(20, dining.Contenders)
	r.Equal(10000, dining.Acquisitions)
	r.Equal(3, dining.Iterations)
	r.Zero(dining.Parallelism)

	small := f.Benchmarks[1]
	r.Equal("small", small.Name)
	r.Equal(3, small.Contenders)
	r.Zero(small.Acquisitions)
}

func TestLoadMissingFile(t *testing.T) {
	r := require.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	r.Error(err)
}

func TestEnvInterpolation(t *testing.T) {
	r := require.New(t)
	t.Setenv("RINGBENCH_CONTENDERS", "7")

	f, err := LoadBytes([]byte(`
benchmark "from_env" {
  contenders = env.RINGBENCH_CONTENDERS
}
`), "env.hcl")
	r.NoError(err)
	r.Equal(7, f.Benchmarks[0].Contenders)
}

func TestValidation(t *testing.T) {
	r := require.New(t)

	_, err := LoadBytes([]byte(``), "empty.hcl")
	r.ErrorContains(err, "no benchmark blocks")

	_, err = LoadBytes([]byte(`
benchmark "dup" {}
benchmark "dup" {}
`), "dup.hcl")
	r.ErrorContains(err, `duplicate benchmark "dup"`)

	_, err = LoadBytes([]byte(`
benchmark "bad" {
  contenders = -2
}
`), "bad.hcl")
	r.ErrorContains(err, "contenders must not be negative")

	_, err = LoadBytes([]byte(`
benchmark "syntax" {
`), "syntax.hcl")
	r.Error(err)

	_, err = LoadBytes([]byte(`
benchmark "unknown" {
  flavor = "spicy"
}
`), "unknown.hcl")
	r.Error(err)
}
