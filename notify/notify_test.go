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

package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestZeroValue(t *testing.T) {
	r := require.New(t)

	var v Var[int]
	val, changed := v.Get()
	r.Zero(val)

	v.Set(42)
	select {
	case <-changed:
	case <-time.After(time.Second):
		r.Fail("notification channel never closed")
	}
	r.Equal(42, v.Peek())
}

func TestVarOf(t *testing.T) {
	r := require.New(t)

	v := VarOf("hello")
	val, _ := v.Get()
	r.Equal("hello", val)
}

func TestUpdate(t *testing.T) {
	r := require.New(t)

	v := VarOf(1)
	_, changed := v.Get()

	next, err := v.Update(func(old int) (int, error) {
		return old + 1, nil
	})
	r.NoError(err)
	r.Equal(2, next)
	select {
	case <-changed:
	default:
		r.Fail("update did not notify")
	}

	// A failed update must neither change the value nor notify.
	_, changed = v.Get()
	boom := errors.New("boom")
	val, err := v.Update(func(int) (int, error) {
		return -1, boom
	})
	r.ErrorIs(err, boom)
	r.Equal(2, val)
	select {
	case <-changed:
		r.Fail("failed update sent a notification")
	default:
	}
}

func TestWaitLoop(t *testing.T) {
	r := require.New(t)

	v := VarOf(0)
	done := make(chan int, 1)
	go func() {
		for {
			val, changed := v.Get()
			if val >= 10 {
				done <- val
				return
			}
			<-changed
		}
	}()

	for i := 1; i <= 10; i++ {
		v.Set(i)
	}

	select {
	case val := <-done:
		r.Equal(10, val)
	case <-time.After(5 * time.Second):
		r.Fail("waiter never observed the final value")
	}
}
