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

// Package manifest loads benchmark suite definitions from HCL files.
//
// A manifest contains one or more benchmark blocks:
//
//	benchmark "dining" {
//	  contenders   = 20
//	  acquisitions = 10000
//	  iterations   = 3
//	  parallelism  = 1
//	}
//
// Attribute expressions may reference process environment variables
// through the env object, e.g. contenders = env.CONTENDERS. Omitted
// attributes fall back to the protocol defaults.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Benchmark is one benchmark block of a manifest. Zero-valued fields
// were omitted from the manifest and defer to downstream defaults.
type Benchmark struct {
	Name          string `hcl:"name,label"`
	Contenders    int    `hcl:"contenders,optional"`
	Acquisitions  int    `hcl:"acquisitions,optional"`
	InitialOffset int    `hcl:"initial_offset,optional"`
	Iterations    int    `hcl:"iterations,optional"`
	Parallelism   int    `hcl:"parallelism,optional"`
}

// File is a parsed and validated manifest.
type File struct {
	Benchmarks []*Benchmark `hcl:"benchmark,block"`
}

// Load reads and decodes the manifest at the given path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	src, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	return decode(path, src.Body)
}

// LoadBytes decodes an in-memory manifest. The filename is only used
// in diagnostics.
func LoadBytes(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}
	return decode(filename, file.Body)
}

func decode(path string, body hcl.Body) (*File, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}
	f := &File{}
	if diags := gohcl.DecodeBody(body, evalCtx, f); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *File) validate() error {
	if len(f.Benchmarks) == 0 {
		return fmt.Errorf("manifest defines no benchmark blocks")
	}
	seen := make(map[string]struct{}, len(f.Benchmarks))
	for _, b := range f.Benchmarks {
		if _, dup := seen[b.Name]; dup {
			return fmt.Errorf("duplicate benchmark %q", b.Name)
		}
		seen[b.Name] = struct{}{}
		if b.Contenders < 0 {
			return fmt.Errorf("benchmark %q: contenders must not be negative", b.Name)
		}
		if b.Acquisitions < 0 {
			return fmt.Errorf("benchmark %q: acquisitions must not be negative", b.Name)
		}
		if b.Iterations < 0 {
			return fmt.Errorf("benchmark %q: iterations must not be negative", b.Name)
		}
		if b.Parallelism < 0 {
			return fmt.Errorf("benchmark %q: parallelism must not be negative", b.Name)
		}
	}
	return nil
}

// envObject exposes the process environment as a cty object so that
// manifest expressions can read configuration from the environment.
func envObject() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
