/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package syncx

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// backOffSpinLock spins on a CAS, yielding with runtime.Gosched between
// attempts; the number of yields doubles after each failed attempt, up to
// maxBackOff. Cheaper than sync.Mutex under the short, frequent critical
// sections a per-connection writer lock sees.
type backOffSpinLock struct {
	state uint32
}

const maxBackOff = 16

func (sl *backOffSpinLock) Lock() {
	backOff := 1
	for !atomic.CompareAndSwapUint32(&sl.state, 0, 1) {
		for i := 0; i < backOff; i++ {
			runtime.Gosched()
		}
		if backOff < maxBackOff {
			backOff <<= 1
		}
	}
}

func (sl *backOffSpinLock) Unlock() {
	atomic.StoreUint32(&sl.state, 0)
}

// NewSpinLock returns a non-reentrant sync.Locker suited to short critical
// sections, such as serializing writes on a WebSocket connection.
func NewSpinLock() sync.Locker {
	return &backOffSpinLock{}
}
