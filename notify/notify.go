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

// Package notify contains a utility type for tracking a variable
// whose readers want to be notified when the value changes.
package notify

import "sync"

// A Var is a variable that emits change notifications. The current
// value and a channel that is closed on the next update are available
// through [Var.Get], allowing callers to either poll or block.
//
// A Var is internally synchronized and the zero value is ready to use.
// A Var should not be copied after first use.
type Var[T any] struct {
	mu struct {
		sync.Mutex
		data    T
		updated chan struct{}
	}
}

// VarOf returns a [Var] that has been initialized to the given value.
func VarOf[T any](val T) *Var[T] {
	v := &Var[T]{}
	v.mu.data = val
	return v
}

// Get returns the current value and a channel that will be closed the
// next time [Var.Set] or [Var.Update] is called.
func (v *Var[T]) Get() (T, <-chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mu.updated == nil {
		v.mu.updated = make(chan struct{})
	}
	return v.mu.data, v.mu.updated
}

// Peek returns the current value without the notification channel.
func (v *Var[T]) Peek() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mu.data
}

// Set stores a new value and notifies any waiting readers.
func (v *Var[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mu.data = val
	v.notifyLocked()
}

// Update atomically applies the function to the variable. If the
// function returns an error, no update takes place and no
// notifications are sent. The final value of the variable is returned.
func (v *Var[T]) Update(fn func(old T) (T, error)) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	next, err := fn(v.mu.data)
	if err != nil {
		return v.mu.data, err
	}
	v.mu.data = next
	v.notifyLocked()
	return next, nil
}

func (v *Var[T]) notifyLocked() {
	if v.mu.updated != nil {
		close(v.mu.updated)
		v.mu.updated = nil
	}
}
