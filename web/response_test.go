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

package web

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponse_SerializeInjectsMandatoryHeaders(t *testing.T) {
	resp := NewResponse(200).Text("hi")
	out := string(resp.Serialize(KeepAliveDecision{KeepAlive: true, TimeoutSecs: 5, MaxRequests: 100}, time.Now()))

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, out, "Content-Length: 2\r\n")
	assert.Contains(t, out, "Connection: keep-alive\r\n")
	assert.Contains(t, out, "Keep-Alive: timeout=5, max=100\r\n")
	assert.True(t, strings.HasSuffix(out, "hi"))
}

func TestResponse_SerializeOverridesCallerMandatoryHeaders(t *testing.T) {
	resp := NewResponse(200).Text("hi")
	resp.SetHeader("Content-Length", "9999")
	resp.SetHeader("Connection", "keep-alive")
	resp.SetHeader("Date", "bogus")

	out := string(resp.Serialize(KeepAliveDecision{KeepAlive: false}, time.Now()))
	assert.Contains(t, out, "Content-Length: 2\r\n")
	assert.Contains(t, out, "Connection: close\r\n")
	assert.NotContains(t, out, "Date: bogus")
}

func TestResponse_SerializeCloseOmitsKeepAliveLine(t *testing.T) {
	resp := NewResponse(400).Text("bad")
	out := string(resp.Serialize(KeepAliveDecision{KeepAlive: false}, time.Now()))
	assert.Contains(t, out, "Connection: close\r\n")
	assert.NotContains(t, out, "Keep-Alive:")
}

func TestResponse_SerializeUpgradePreservesHandshakeHeaders(t *testing.T) {
	resp := NewResponse(101)
	resp.SetHeader("Upgrade", "websocket")
	resp.SetHeader("Connection", "Upgrade")
	resp.SetHeader("Sec-WebSocket-Accept", "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")

	out := string(resp.SerializeUpgrade(time.Now()))
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 101 Switching Protocols\r\n"))
	assert.Contains(t, out, "Upgrade: websocket\r\n")
	assert.Contains(t, out, "Connection: Upgrade\r\n")
	assert.Contains(t, out, "Content-Length: 0\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n"))
}

func TestResponse_JSONFallsBackOn500OnMarshalError(t *testing.T) {
	resp := NewResponse(200).JSON(make(chan int))
	assert.Equal(t, 500, resp.StatusCode)
}
