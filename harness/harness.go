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

// Package harness drives repeated, measured iterations of the
// ringlock arbitration protocol.
//
// Each iteration constructs a fresh [ringlock.Arbiter], runs it to
// completion, and validates the conservation property of the run.
// Iterations are independent, so they may execute in parallel while
// each arbiter stays single-threaded; the denial totals must still
// agree across iterations because the core has no source of
// randomness.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/field-eng-ringbench/ringlock"
	"golang.org/x/sync/errgroup"
)

// ErrConservation is returned when an iteration's acquisition counts
// do not sum to contenders times target. This indicates a defect in
// the core, not a condition the caller can recover from.
var ErrConservation = errors.New("conservation violated")

// ErrUnstableDenials is returned when two iterations of the same
// configuration disagree on the total denial count.
var ErrUnstableDenials = errors.New("denial total is not deterministic")

// Config controls a benchmark run.
type Config struct {
	// Contenders, Acquisitions, and InitialOffset are passed through
	// to [ringlock.Config].
	Contenders    int
	Acquisitions  int
	InitialOffset int
	// Iterations is the number of fully independent runs to perform.
	// A zero value selects one iteration.
	Iterations int
	// Parallelism bounds the number of iterations in flight. A zero
	// value selects one, preserving strict sequential execution.
	Parallelism int
	// Logger receives per-iteration progress at debug level. A nil
	// value selects [slog.Default].
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Iterations == 0 {
		c.Iterations = 1
	}
	if c.Parallelism == 0 {
		c.Parallelism = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Iteration records one complete run of the protocol.
type Iteration struct {
	Index   int
	Result  *ringlock.Result
	Elapsed time.Duration
}

// Summary aggregates a benchmark run.
type Summary struct {
	Iterations []Iteration
	// TotalDenials is the denial total common to every iteration.
	TotalDenials int
	// Rounds is the per-iteration round count, also common to every
	// iteration.
	Rounds int
	// Elapsed is the wall time for the whole run.
	Elapsed time.Duration
}

// Run executes the configured number of iterations and returns their
// aggregate. The first iteration failure, conservation violation, or
// cross-iteration disagreement aborts the run.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	cfg = cfg.withDefaults()
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("iterations must not be negative: %d", cfg.Iterations)
	}

	// Validate the arbiter configuration once, up front, so a bad
	// configuration fails before any work is scheduled.
	if _, err := ringlock.New(ringlock.Config{
		Contenders:    cfg.Contenders,
		Acquisitions:  cfg.Acquisitions,
		InitialOffset: cfg.InitialOffset,
	}); err != nil {
		return nil, err
	}

	start := time.Now()
	iterations := make([]Iteration, cfg.Iterations)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Parallelism)
	for i := range iterations {
		i := i
		eg.Go(func() error {
			res, elapsed, err := runOne(egCtx, cfg)
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			cfg.Logger.DebugContext(egCtx, "iteration complete",
				"iteration", i,
				"denials", res.TotalDenials,
				"rounds", res.Rounds,
				"elapsed", elapsed,
			)
			iterations[i] = Iteration{Index: i, Result: res, Elapsed: elapsed}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	first := iterations[0].Result
	for _, it := range iterations[1:] {
		if it.Result.TotalDenials != first.TotalDenials {
			return nil, fmt.Errorf("%w: iteration %d saw %d, iteration 0 saw %d",
				ErrUnstableDenials, it.Index, it.Result.TotalDenials, first.TotalDenials)
		}
	}

	return &Summary{
		Iterations:   iterations,
		TotalDenials: first.TotalDenials,
		Rounds:       first.Rounds,
		Elapsed:      time.Since(start),
	}, nil
}

func runOne(ctx context.Context, cfg Config) (*ringlock.Result, time.Duration, error) {
	arb, err := ringlock.New(ringlock.Config{
		Contenders:    cfg.Contenders,
		Acquisitions:  cfg.Acquisitions,
		InitialOffset: cfg.InitialOffset,
	})
	if err != nil {
		return nil, 0, err
	}

	begin := time.Now()
	res, err := arb.Run(ctx)
	if err != nil {
		return nil, 0, err
	}
	elapsed := time.Since(begin)

	sum := 0
	for j := 0; j < res.Contenders; j++ {
		sum += arb.Successes(j)
	}
	if want := res.Contenders * res.Acquisitions; sum != want {
		return nil, 0, fmt.Errorf("%w: %d acquisitions, want %d", ErrConservation, sum, want)
	}
	return res, elapsed, nil
}
