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

// ringbench runs the ring-resource arbitration benchmark, either from
// an HCL manifest or from direct flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/field-eng-ringbench/harness"
	"github.com/cockroachdb/field-eng-ringbench/manifest"
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string { return e.Message }

func main() {
	if err := run(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the program logic for easier testing and error
// handling.
func run(ctx context.Context, out io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("ringbench", flag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.Usage = func() {
		fmt.Fprint(out, `
ringbench - round-synchronous ring-resource arbitration benchmark

Usage:
  ringbench [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to an HCL benchmark manifest. Overrides the direct flags.")
	nFlag := flagSet.Int("n", 0, "Number of contenders in the ring. 0 selects the default of 20.")
	rFlag := flagSet.Int("r", 0, "Acquisitions per contender. 0 selects the default of 10000.")
	offsetFlag := flagSet.Int("offset", 0, "Initial rotation offset.")
	iterationsFlag := flagSet.Int("iterations", 1, "Number of independent iterations per benchmark.")
	parallelismFlag := flagSet.Int("parallelism", 1, "Number of iterations in flight at once.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}

	logger, err := newLogger(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	slog.SetDefault(logger)

	benchmarks := []*manifest.Benchmark{{
		Name:          "default",
		Contenders:    *nFlag,
		Acquisitions:  *rFlag,
		InitialOffset: *offsetFlag,
		Iterations:    *iterationsFlag,
		Parallelism:   *parallelismFlag,
	}}
	if *manifestFlag != "" {
		file, err := manifest.Load(*manifestFlag)
		if err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
		benchmarks = file.Benchmarks
	}

	for _, b := range benchmarks {
		logger.Info("starting benchmark", "name", b.Name)
		summary, err := harness.Run(ctx, harness.Config{
			Contenders:    b.Contenders,
			Acquisitions:  b.Acquisitions,
			InitialOffset: b.InitialOffset,
			Iterations:    b.Iterations,
			Parallelism:   b.Parallelism,
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("benchmark %q: %w", b.Name, err)
		}
		fmt.Fprintf(out, "%s: %d iteration(s), %d denials, %d rounds, %v total\n",
			b.Name, len(summary.Iterations), summary.TotalDenials, summary.Rounds, summary.Elapsed)
		for _, it := range summary.Iterations {
			fmt.Fprintf(out, "  iteration %d: %v\n", it.Index, it.Elapsed)
		}
	}
	return nil
}

func newLogger(format, level string) (*slog.Logger, error) {
	var leveler slog.Level
	switch strings.ToLower(level) {
	case "debug":
		leveler = slog.LevelDebug
	case "info":
		leveler = slog.LevelInfo
	case "warn":
		leveler = slog.LevelWarn
	case "error":
		leveler = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	opts := &slog.HandlerOptions{Level: leveler}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log-format: must be 'text' or 'json'")
	}
}
