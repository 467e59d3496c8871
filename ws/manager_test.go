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

package ws

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_TrackAndUntrack(t *testing.T) {
	m := NewManager(nil)
	_, server := net.Pipe()
	defer server.Close()

	session := NewSession(server, nil, time.Hour, time.Hour, nil, nil)
	untrack := m.Track(session)
	assert.Equal(t, 1, m.Count())

	untrack()
	assert.Equal(t, 0, m.Count())
}

func TestManager_CloseBroadcastsGoingAway(t *testing.T) {
	m := NewManager(nil)
	client, server := net.Pipe()

	session := NewSession(server, nil, time.Hour, time.Hour, nil, nil)
	m.Track(session)

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 64)
		_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _ = client.Read(buf)
		close(done)
	}()

	m.Close()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for going-away close frame")
	}
	client.Close()
}
