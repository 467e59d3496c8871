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
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/caiflower/httpws/config"
	"github.com/stretchr/testify/assert"
)

func newTestServer(handler Handler) (*NetpollHttpServer, net.Conn) {
	cfg := config.Default()
	cfg.KeepAliveTimeoutSecs = 2
	cfg.HeaderReadTimeoutSecs = 2
	cfg.BodyReadTimeoutSecs = 2
	server := NewNetpollHttpServer(cfg, handler, nil)

	client, serverConn := net.Pipe()
	h := &NetpollHttpHandler{server: server, conn: serverConn}
	go h.ServeHTTP()
	return server, client
}

func TestNetpollHttpHandler_SimpleRequestResponse(t *testing.T) {
	_, client := newTestServer(func(req *Request) *Response {
		assert.Equal(t, "/hello", req.Target)
		return NewResponse(200).Text("world")
	})
	defer client.Close()

	_, err := client.Write([]byte("GET /hello HTTP/1.1\r\nHost: h\r\nConnection: close\r\n\r\n"))
	assert.Nil(t, err)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(client)
	statusLine, err := reader.ReadString('\n')
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(statusLine, "HTTP/1.1 200"))
}

func TestNetpollHttpHandler_NotFoundWithNilHandler(t *testing.T) {
	_, client := newTestServer(nil)
	defer client.Close()

	_, err := client.Write([]byte("GET /missing HTTP/1.1\r\nHost: h\r\nConnection: close\r\n\r\n"))
	assert.Nil(t, err)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(client)
	statusLine, err := reader.ReadString('\n')
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(statusLine, "HTTP/1.1 404"))
}

func TestNetpollHttpHandler_KeepAliveServesSecondRequest(t *testing.T) {
	count := 0
	_, client := newTestServer(func(req *Request) *Response {
		count++
		return NewResponse(200).Text("ok")
	})
	defer client.Close()

	_, err := client.Write([]byte("GET /a HTTP/1.1\r\nHost: h\r\n\r\n"))
	assert.Nil(t, err)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(client)
	line, err := reader.ReadString('\n')
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(line, "HTTP/1.1 200"))

	for {
		l, err := reader.ReadString('\n')
		assert.Nil(t, err)
		if l == "\r\n" {
			break
		}
	}
	_, err = reader.Discard(2)
	assert.Nil(t, err)

	_, err = client.Write([]byte("GET /b HTTP/1.1\r\nHost: h\r\nConnection: close\r\n\r\n"))
	assert.Nil(t, err)

	line2, err := reader.ReadString('\n')
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(line2, "HTTP/1.1 200"))
	assert.Equal(t, 2, count)
}
