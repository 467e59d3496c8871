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
	"bytes"
	"strconv"
	"time"

	"github.com/caiflower/httpws/pkg/tools"
)

const ServerHeaderValue = "http-rs/0.1.0"

// httpDateFormat is RFC 7231's IMF-fixdate, e.g. "Sun, 06 Nov 1994 08:49:37 GMT".
const httpDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Response is a fluent builder for an outgoing HTTP response. Mandatory
// headers are never stored on it; Serialize injects them at write time
// so a caller-set Date/Server/Content-Length/Connection can never stick.
type Response struct {
	StatusCode int
	Header     *Header
	Body       []byte
}

// NewResponse starts a builder at the given status with an empty header
// set and body.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status, Header: NewHeader()}
}

func (r *Response) SetStatus(status int) *Response {
	r.StatusCode = status
	return r
}

func (r *Response) SetHeader(name, value string) *Response {
	r.Header.Set(name, value)
	return r
}

func (r *Response) SetBody(body []byte) *Response {
	r.Body = body
	return r
}

// Text sets the body to s and Content-Type to text/plain.
func (r *Response) Text(s string) *Response {
	r.SetHeader("Content-Type", "text/plain; charset=utf-8")
	r.Body = []byte(s)
	return r
}

// JSON marshals v with the module's json-iterator codec and sets
// Content-Type to application/json.
func (r *Response) JSON(v interface{}) *Response {
	r.SetHeader("Content-Type", "application/json")
	b, err := tools.Marshal(v)
	if err != nil {
		r.StatusCode = 500
		r.Body = []byte(`{"type":"InternalError"}`)
		return r
	}
	r.Body = b
	return r
}

// HTML sets the body to s and Content-Type to text/html.
func (r *Response) HTML(s string) *Response {
	r.SetHeader("Content-Type", "text/html; charset=utf-8")
	r.Body = []byte(s)
	return r
}

// KeepAliveDecision carries the session's keep-alive verdict into the
// serializer, which uses it to pick the Connection header and whether
// to emit a Keep-Alive line.
type KeepAliveDecision struct {
	KeepAlive   bool
	TimeoutSecs uint
	MaxRequests uint
}

// Serialize renders the full response, injecting Date, Server,
// Content-Length, and Connection in that fixed order ahead of any
// caller-supplied headers of the same name, which are dropped.
func (r *Response) Serialize(decision KeepAliveDecision, now time.Time) []byte {
	var buf bytes.Buffer

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(r.StatusCode))
	buf.WriteByte(' ')
	buf.WriteString(ReasonPhrase(r.StatusCode))
	buf.WriteString("\r\n")

	injected := map[string]bool{
		"date":           true,
		"server":         true,
		"content-length": true,
		"connection":     true,
	}
	if decision.KeepAlive {
		injected["keep-alive"] = true
	}

	writeHeaderLine(&buf, "Date", now.UTC().Format(httpDateFormat))
	writeHeaderLine(&buf, "Server", ServerHeaderValue)
	writeHeaderLine(&buf, "Content-Length", strconv.Itoa(len(r.Body)))
	if decision.KeepAlive {
		writeHeaderLine(&buf, "Connection", "keep-alive")
		writeHeaderLine(&buf, "Keep-Alive", "timeout="+strconv.Itoa(int(decision.TimeoutSecs))+", max="+strconv.Itoa(int(decision.MaxRequests)))
	} else {
		writeHeaderLine(&buf, "Connection", "close")
	}

	r.Header.Range(func(key, value string) {
		if !injected[toLowerASCII(key)] {
			writeHeaderLine(&buf, key, value)
		}
	})

	buf.WriteString("\r\n")
	buf.Write(r.Body)

	return buf.Bytes()
}

// SerializeUpgrade renders a 101 Switching Protocols response. Unlike
// Serialize, it never injects a Connection line of its own: the
// handshake has already set Connection/Upgrade/Sec-WebSocket-Accept and
// those must reach the wire untouched. Content-Length is always 0 and
// no body is written, per the handshake contract.
func (r *Response) SerializeUpgrade(now time.Time) []byte {
	var buf bytes.Buffer

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(r.StatusCode))
	buf.WriteByte(' ')
	buf.WriteString(ReasonPhrase(r.StatusCode))
	buf.WriteString("\r\n")

	writeHeaderLine(&buf, "Date", now.UTC().Format(httpDateFormat))
	writeHeaderLine(&buf, "Server", ServerHeaderValue)
	writeHeaderLine(&buf, "Content-Length", "0")

	injected := map[string]bool{"date": true, "server": true, "content-length": true}
	r.Header.Range(func(key, value string) {
		if !injected[toLowerASCII(key)] {
			writeHeaderLine(&buf, key, value)
		}
	})

	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeHeaderLine(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
