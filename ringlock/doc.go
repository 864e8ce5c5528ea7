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

/*
Package ringlock implements a round-synchronous arbiter for a ring of
exclusive, pairwise-shared resources.

The classic rendition is a table of dining philosophers: N contenders
sit in a ring and fork i sits between contenders i and (i+1) mod N, so
contender j must acquire forks j and (j+1) mod N before it can eat. A
single Arbiter owns the ground truth of fork ownership and decides the
whole batch of simultaneously hungry contenders once per round:

	arb, _ := ringlock.New(ringlock.Config{
		Contenders:   20,
		Acquisitions: 10000,
	})

	// Drive rounds until every contender has eaten 10000 times.
	result, _ := arb.Run(context.Background())
	fmt.Println(result.TotalDenials)

Deciding over the whole batch before any reply is observable keeps the
message volume linear in rounds: each contender submits at most one
request per round and receives exactly one reply, rather than spinning
in a per-message retry storm. Acquisition is all-or-nothing per
contender, and forks are only ever released in pairs, so no contender
can hold one fork indefinitely while blocked on the other; the protocol
is structurally deadlock-free. Fairness is amortized by a rotating
visitation offset and is not a strict bounded-waiting guarantee.

Replies decided in round t become observable in round t+1. This
one-tick deferral breaks the request/reply dependency cycle between the
Arbiter and its contenders, and it is the only form of suspension in
the core: the grant pass itself is a pure function of the ledger state
and the pending set.

Also included in this package is Ledger, which implements the batch
grant pass in isolation and could be used by other schedulers with
similar ring-adjacency needs.
*/
package ringlock
