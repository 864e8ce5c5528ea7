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

package ringlock

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/field-eng-ringbench/notify"
)

// ErrAcquisitionTarget is returned when a non-positive acquisition
// target is requested.
var ErrAcquisitionTarget = errors.New("acquisition target must be positive")

// DefaultContenders is the ring size used when [Config.Contenders] is
// zero.
const DefaultContenders = 20

// DefaultAcquisitions is the per-contender acquisition target used
// when [Config.Acquisitions] is zero.
const DefaultAcquisitions = 10000

// Config controls an [Arbiter].
type Config struct {
	// Contenders is the ring size N. A zero value selects
	// DefaultContenders; negative values are rejected.
	Contenders int
	// Acquisitions is the number of granted acquisitions each
	// contender must accumulate before it finishes. A zero value
	// selects DefaultAcquisitions; negative values are rejected.
	Acquisitions int
	// InitialOffset is the rotation offset restored by Start. It must
	// be in [0, Contenders).
	InitialOffset int
}

func (c Config) withDefaults() Config {
	if c.Contenders == 0 {
		c.Contenders = DefaultContenders
	}
	if c.Acquisitions == 0 {
		c.Acquisitions = DefaultAcquisitions
	}
	return c
}

// Result is the aggregate emitted exactly once per iteration, when the
// last contender reports completion.
type Result struct {
	// TotalDenials is the sum of every contender's denial count.
	TotalDenials int
	// Rounds is the number of rounds the iteration took.
	Rounds int
	// Contenders and Acquisitions echo the effective configuration.
	Contenders   int
	Acquisitions int
}

// An Arbiter grants mutually-exclusive access to a ring of
// pairwise-shared forks using a batched, round-synchronous protocol.
// Each round it collects the pending requests, decides the whole batch
// in rotation order, and defers the replies to the next round.
//
// An Arbiter is not internally synchronized: [Arbiter.Start],
// [Arbiter.Tick], and [Arbiter.Run] must be driven from a single
// goroutine. The [Arbiter.Outcome] variable is safe to read from other
// goroutines.
type Arbiter struct {
	cfg        Config
	ledger     *Ledger
	contenders []*contender
	pending    []bool // Requests visible to this round's decision pass.
	events     *Events

	rounds       int
	finished     int
	totalDenials int
	outcome      *notify.Var[*Result]
}

// New constructs an Arbiter and performs the initial [Arbiter.Start].
func New(cfg Config) (*Arbiter, error) {
	cfg = cfg.withDefaults()
	if cfg.Acquisitions < 0 {
		return nil, fmt.Errorf("%w: %d", ErrAcquisitionTarget, cfg.Acquisitions)
	}
	ledger, err := NewLedger(cfg.Contenders, cfg.InitialOffset)
	if err != nil {
		return nil, err
	}
	a := &Arbiter{
		cfg:        cfg,
		ledger:     ledger,
		contenders: make([]*contender, cfg.Contenders),
		pending:    make([]bool, cfg.Contenders),
		outcome:    notify.VarOf[*Result](nil),
	}
	a.Start()
	return a, nil
}

// SetEvents allows monitoring callbacks to be injected into the
// Arbiter. This method should be called prior to any call to
// [Arbiter.Tick] or [Arbiter.Run].
func (a *Arbiter) SetEvents(events *Events) {
	a.events = events
}

// Start resets every ledger, counter, and contender state for a fresh
// iteration and clears the completion signal. Every contender begins
// hungry, with a request pending for the first round.
func (a *Arbiter) Start() {
	a.ledger.Reset()
	for i := range a.contenders {
		a.contenders[i] = &contender{index: i, target: a.cfg.Acquisitions}
	}
	for i := range a.pending {
		a.pending[i] = true
	}
	a.rounds = 0
	a.finished = 0
	a.totalDenials = 0
	a.outcome.Set(nil)
}

// Outcome returns the completion signal. The same variable is used for
// the Arbiter's whole lifetime: [Arbiter.Start] resets it to nil, and
// it is then set exactly once per iteration, when the last contender
// finishes, with the iteration's [Result].
func (a *Arbiter) Outcome() *notify.Var[*Result] {
	return a.outcome
}

// Tick advances the protocol by one round and reports whether every
// contender has finished.
//
// A round has two phases. The delivery phase makes the previous
// round's replies observable, in contender-index order: a granted
// contender releases its fork pair, counts the success, and either
// re-requests or reports completion; a denied contender counts the
// denial and re-requests. The decision phase then runs the batch grant
// pass over the requests that accumulated during delivery. Splitting
// the round this way realizes the one-tick deferral that breaks the
// request/reply dependency cycle: no decision from the current round
// is observable within it.
func (a *Arbiter) Tick() bool {
	if a.finished == len(a.contenders) {
		return true
	}
	a.rounds++

	for j, c := range a.contenders {
		r := a.ledger.Reply(j)
		switch r {
		case ReplyNone:
			continue
		case ReplyGranted:
			a.events.doGrant(j, a.rounds)
			// The contender eats and reports the release before its
			// next action; the release is processed ahead of this
			// round's decision pass.
			a.ledger.Release(j)
			a.events.doRelease(j, a.rounds)
		case ReplyDenied:
			a.events.doDeny(j, a.rounds)
		}
		if c.observe(r) {
			a.pending[j] = true
		} else {
			a.finished++
			a.totalDenials += c.denials
			a.events.doFinished(j, c.denials)
		}
	}
	a.ledger.ClearReplies()

	if a.finished == len(a.contenders) {
		a.outcome.Set(&Result{
			TotalDenials: a.totalDenials,
			Rounds:       a.rounds,
			Contenders:   a.cfg.Contenders,
			Acquisitions: a.cfg.Acquisitions,
		})
		return true
	}

	a.ledger.Decide(a.pending)
	for i := range a.pending {
		a.pending[i] = false
	}
	a.events.doRound(a.rounds, a.ledger.Offset())
	return false
}

// Run performs a fresh [Arbiter.Start] and drives rounds until every
// contender has finished or the context is canceled.
func (a *Arbiter) Run(ctx context.Context) (*Result, error) {
	a.Start()
	for !a.Tick() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return a.outcome.Peek(), nil
}

// Successes returns contender j's acquisition count.
func (a *Arbiter) Successes(j int) int {
	return a.contenders[j].successes
}

// Denials returns contender j's denial count.
func (a *Arbiter) Denials(j int) int {
	return a.contenders[j].denials
}

// Finished reports whether contender j has reached its target.
func (a *Arbiter) Finished(j int) bool {
	return a.contenders[j].done
}

// Rounds returns the number of rounds advanced this iteration.
func (a *Arbiter) Rounds() int {
	return a.rounds
}

// Offset returns the ledger's rotation offset.
func (a *Arbiter) Offset() int {
	return a.ledger.Offset()
}
