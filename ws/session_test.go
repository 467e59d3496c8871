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

// maskedClientFrame is defined in frame_test.go and reused here to drive
// a Session over an in-memory net.Pipe the way a real client would.

func TestSession_EchoesTextViaHandler(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	echo := func(f *Frame) *Frame {
		return TextFrame(f.Text)
	}
	session := NewSession(server, echo, time.Hour, time.Hour, nil, nil)
	go session.Serve()

	_, err := client.Write(maskedClientFrame(OpText, true, []byte("ping")))
	assert.Nil(t, err)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, err := client.Read(buf)
	assert.Nil(t, err)

	frame, _, derr := Decode(buf[:n])
	assert.Nil(t, derr)
	assert.Equal(t, "ping", frame.Text)

	session.Close()
}

func TestSession_RespondsToPingWithPong(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	session := NewSession(server, nil, time.Hour, time.Hour, nil, nil)
	go session.Serve()

	_, err := client.Write(maskedClientFrame(OpPing, true, []byte("x")))
	assert.Nil(t, err)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, err := client.Read(buf)
	assert.Nil(t, err)

	frame, _, derr := Decode(buf[:n])
	assert.Nil(t, derr)
	assert.Equal(t, OpPong, frame.Opcode)

	session.Close()
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	session := NewSession(server, nil, time.Hour, time.Hour, nil, nil)
	session.Close()
	session.Close()
}
