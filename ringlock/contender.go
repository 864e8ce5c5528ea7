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

import "fmt"

// A contender is one participant in the ring. It cycles hungry ->
// (eating | thinking) -> hungry until it has eaten target times, then
// becomes done and emits no further requests. The contender owns its
// own counters; only its reactions to delivered replies mutate them.
type contender struct {
	index     int
	target    int
	successes int
	denials   int
	done      bool
}

// observe applies one delivered reply and reports whether the
// contender wants to submit another request this round. Eating and
// thinking are nominal: neither consumes time, so a contender
// re-requests immediately unless it has reached its target.
func (c *contender) observe(r Reply) (again bool) {
	switch r {
	case ReplyGranted:
		c.successes++
		if c.successes >= c.target {
			c.done = true
			return false
		}
		return true
	case ReplyDenied:
		c.denials++
		return true
	default:
		panic(fmt.Sprintf("contender %d observed %s", c.index, r))
	}
}
