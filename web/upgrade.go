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
	"github.com/caiflower/httpws/httperr"
	"github.com/caiflower/httpws/ws"
)

// NegotiateUpgrade validates every WebSocket upgrade precondition named
// against req and, on success, builds the 101 handshake response. It
// writes nothing; the caller serializes the response with
// Response.SerializeUpgrade and then transfers the connection to a
// ws.Session.
func NegotiateUpgrade(req *Request) (*Response, *httperr.CoreError) {
	if !req.IsWebSocketUpgrade() {
		return nil, httperr.NewMalformedRequest("missing websocket upgrade preconditions")
	}

	version, ok := req.Header.Get("Sec-WebSocket-Version")
	if !ok || version != ws.ProtocolVersion {
		return nil, httperr.New(httperr.UpgradeRequired, "unsupported Sec-WebSocket-Version")
	}

	key, ok := req.Header.Get("Sec-WebSocket-Key")
	if !ok || !ws.IsValidKey(key) {
		return nil, httperr.NewMalformedRequest("missing or malformed Sec-WebSocket-Key")
	}

	resp := NewResponse(101)
	resp.SetHeader("Upgrade", "websocket")
	resp.SetHeader("Connection", "Upgrade")
	resp.SetHeader("Sec-WebSocket-Accept", ws.ComputeAccept(key))
	return resp, nil
}
