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
	"errors"
	"fmt"
)

// ErrNoContenders is returned when a ring of size zero is requested.
var ErrNoContenders = errors.New("ring must have at least one contender")

// ErrOffsetRange is returned when an initial rotation offset falls
// outside the ring.
var ErrOffsetRange = errors.New("rotation offset out of range")

// A Ledger is the ground truth of fork ownership for a ring of n
// contenders. Fork i is shared by contenders i and (i+1) mod n, so
// contender j requires the fork pair {j, (j+1) mod n}. The Ledger also
// owns the per-contender reply slots and the rotation offset that
// spreads grant priority across rounds.
//
// A Ledger is not internally synchronized: it is designed to sit
// behind a single writer, normally an [Arbiter].
type Ledger struct {
	held          []bool  // Fork ownership, indexed by fork.
	replies       []Reply // Undelivered decisions, indexed by contender.
	offset        int     // Start of the next visitation order.
	initialOffset int     // Offset restored by Reset.
}

// NewLedger constructs a Ledger for a ring of n contenders whose first
// decision pass starts at the given rotation offset.
func NewLedger(n, offset int) (*Ledger, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoContenders, n)
	}
	if offset < 0 || offset >= n {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOffsetRange, offset, n)
	}
	return &Ledger{
		held:          make([]bool, n),
		replies:       make([]Reply, n),
		offset:        offset,
		initialOffset: offset,
	}, nil
}

// Decide runs one batch decision pass over the pending request set,
// which must have one entry per contender. Contenders are visited in
// (offset, offset+1, ...) mod n order; entries that are false are
// skipped. A visited contender is granted its fork pair all-or-nothing
// and its reply slot is filled. The rotation offset advances by one
// if at least one request was visited, even if every request was
// denied.
//
// Decide is a total function of the ledger state and the pending set.
// It panics if a visited reply slot was not cleared after the previous
// round, since an undelivered reply means a protocol invariant has
// been broken.
func (l *Ledger) Decide(pending []bool) {
	n := len(l.held)
	if len(pending) != n {
		panic(fmt.Sprintf("pending set has %d entries for a ring of %d", len(pending), n))
	}
	visited := false
	for k := 0; k < n; k++ {
		j := (l.offset + k) % n
		if !pending[j] {
			continue
		}
		visited = true
		if l.replies[j] != ReplyNone {
			panic(fmt.Sprintf("contender %d has an undelivered %s reply", j, l.replies[j]))
		}
		left, right := j, (j+1)%n
		if l.held[left] || l.held[right] {
			l.replies[j] = ReplyDenied
			continue
		}
		l.held[left] = true
		l.held[right] = true
		l.replies[j] = ReplyGranted
	}
	if visited {
		l.offset = (l.offset + 1) % n
	}
}

// Release returns contender j's fork pair to the table. A contender
// only reports a release for forks it was granted, so no ownership
// check is performed.
func (l *Ledger) Release(j int) {
	n := len(l.held)
	l.held[j] = false
	l.held[(j+1)%n] = false
}

// Reply returns the undelivered decision for contender j, or
// [ReplyNone].
func (l *Ledger) Reply(j int) Reply {
	return l.replies[j]
}

// ClearReplies resets every reply slot to [ReplyNone]. It is called
// once the replies for a round have been delivered.
func (l *Ledger) ClearReplies() {
	for i := range l.replies {
		l.replies[i] = ReplyNone
	}
}

// Held returns true if fork i is currently granted.
func (l *Ledger) Held(i int) bool {
	return l.held[i]
}

// Offset returns the rotation offset for the next decision pass.
func (l *Ledger) Offset() int {
	return l.offset
}

// Len returns the ring size.
func (l *Ledger) Len() int {
	return len(l.held)
}

// Reset returns every fork, clears every reply slot, and restores the
// rotation offset to its initial value.
func (l *Ledger) Reset() {
	for i := range l.held {
		l.held[i] = false
	}
	for i := range l.replies {
		l.replies[i] = ReplyNone
	}
	l.offset = l.initialOffset
}
