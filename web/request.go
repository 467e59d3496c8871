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

// Request is the parsed form of one HTTP/1.1 request. It is created by
// the parser, handed to the external handler, and dropped once the
// response has been serialized.
type Request struct {
	Method  Method
	Target  string
	Version string
	Header  *Header
	Body    []byte
}

// IsKeepAliveRequested reports whether the request itself asked for the
// connection to stay open, accounting for the HTTP/1.0 vs 1.1 default.
func (r *Request) IsKeepAliveRequested() bool {
	if r.Header.HasToken("Connection", "close") {
		return false
	}
	if r.Version == "HTTP/1.0" {
		return r.Header.HasToken("Connection", "keep-alive")
	}
	return true
}

// IsWebSocketUpgrade reports whether the request asks for a WebSocket
// upgrade: a GET with an Upgrade header carrying the websocket token and
// a Connection header carrying the Upgrade token. It does not look at
// Sec-WebSocket-Version or Sec-WebSocket-Key; NegotiateUpgrade checks
// those.
func (r *Request) IsWebSocketUpgrade() bool {
	if r.Method != MethodGet {
		return false
	}
	if !r.Header.HasToken("Upgrade", "websocket") {
		return false
	}
	if !r.Header.HasToken("Connection", "Upgrade") {
		return false
	}
	return true
}
