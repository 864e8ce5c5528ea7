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

// Events provides an [Arbiter] with optional callbacks to observe the
// protocol as it runs. Grant, deny, and release callbacks fire during
// the delivery phase, when the decision becomes observable to the
// contender.
//
// See [Arbiter.SetEvents].
type Events struct {
	OnDeny     func(contender, round int)
	OnFinished func(contender, denials int)
	OnGrant    func(contender, round int)
	OnRelease  func(contender, round int)
	OnRound    func(round, offset int)
}

func (e *Events) doDeny(contender, round int) {
	if e != nil && e.OnDeny != nil {
		e.OnDeny(contender, round)
	}
}

func (e *Events) doFinished(contender, denials int) {
	if e != nil && e.OnFinished != nil {
		e.OnFinished(contender, denials)
	}
}

func (e *Events) doGrant(contender, round int) {
	if e != nil && e.OnGrant != nil {
		e.OnGrant(contender, round)
	}
}

func (e *Events) doRelease(contender, round int) {
	if e != nil && e.OnRelease != nil {
		e.OnRelease(contender, round)
	}
}

func (e *Events) doRound(round, offset int) {
	if e != nil && e.OnRound != nil {
		e.OnRound(round, offset)
	}
}
