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

// Package ws implements the server side of RFC 6455: the handshake
// cryptographic derivation, the frame codec, and the post-upgrade
// session loop with its heartbeat and close negotiation.
package ws

import (
	"crypto/sha1"
	"encoding/base64"

	"github.com/caiflower/httpws/pkg/tools"
)

// magicGUID is the fixed RFC 6455 §1.3 handshake constant.
const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// ProtocolVersion is the only Sec-WebSocket-Version this core accepts.
const ProtocolVersion = "13"

// ComputeAccept derives the Sec-WebSocket-Accept value for a given
// Sec-WebSocket-Key: concatenate with the magic GUID, SHA-1 the ASCII
// bytes, base64-encode the 20-byte digest.
func ComputeAccept(key string) string {
	sum := sha1.Sum([]byte(key + magicGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// IsValidKey checks that key base64-decodes to exactly 16 raw bytes, per
// RFC 6455 §4.1's requirement that Sec-WebSocket-Key be a randomly
// selected 16-byte nonce.
func IsValidKey(key string) bool {
	decoded, err := tools.Base64Decoding(key)
	if err != nil {
		return false
	}
	return len(decoded) == 16
}
