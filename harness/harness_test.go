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

package harness

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/field-eng-ringbench/ringlock"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Run(ctx, Config{
		Contenders:   5,
		Acquisitions: 10,
		Iterations:   3,
	})
	r.NoError(err)
	r.Len(s.Iterations, 3)
	for _, it := range s.Iterations {
		r.Equal(s.TotalDenials, it.Result.TotalDenials)
		r.Equal(s.Rounds, it.Result.Rounds)
	}
}

// Parallel iterations must produce the same totals as sequential ones:
// each arbiter is independent and internally deterministic.
func TestRunParallel(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sequential, err := Run(ctx, Config{
		Contenders:   10,
		Acquisitions: 200,
		Iterations:   4,
	})
	r.NoError(err)

	parallel, err := Run(ctx, Config{
		Contenders:   10,
		Acquisitions: 200,
		Iterations:   4,
		Parallelism:  4,
	})
	r.NoError(err)
	r.Equal(sequential.TotalDenials, parallel.TotalDenials)
	r.Equal(sequential.Rounds, parallel.Rounds)
}

func TestRunValidation(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	_, err := Run(ctx, Config{Contenders: -1})
	r.ErrorIs(err, ringlock.ErrNoContenders)

	_, err = Run(ctx, Config{Iterations: -1})
	r.Error(err)
}

func TestRunCancel(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Contenders: 10, Acquisitions: 5000})
	r.ErrorIs(err, context.Canceled)
}
