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

// Reply is the decision delivered to a contender in response to an
// acquisition request. A reply slot is non-None only between the
// decision phase of one round and the delivery phase of the next.
type Reply int8

const (
	// ReplyNone indicates that no decision is pending for the slot.
	ReplyNone Reply = iota
	// ReplyGranted indicates that both forks were acquired.
	ReplyGranted
	// ReplyDenied indicates that at least one fork was unavailable.
	ReplyDenied
)

func (r Reply) String() string {
	switch r {
	case ReplyNone:
		return "none"
	case ReplyGranted:
		return "granted"
	case ReplyDenied:
		return "denied"
	default:
		return fmt.Sprintf("reply(%d)", int8(r))
	}
}
